// Package config loads server settings from defaults, an optional config
// file, a .env file and BLOG_-prefixed environment variables, in increasing
// order of precedence, and validates them with struct tags.
package config
