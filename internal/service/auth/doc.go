// Package auth holds the authentication primitives: HMAC-signed session
// tokens, bcrypt password hashing, the password policy and CSRF tokens.
// Login and logout flows that combine them with the user store and the
// session registry live in package service.
package auth
