// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Stores return fully loaded entities: a post comes back with its author,
// category, tags, media files and statistics; a user with its profile,
// social accounts and posts. Creations that span several rows run in one
// transaction inside the store.
package store
