// Package domain contains the core business entities of the blog: users and
// their author profiles, categories, tags, posts and media files. It also
// holds the rules that are independent of any transport or storage concern,
// such as slug derivation, field validation and the error taxonomy shared by
// the service and API layers.
package domain
