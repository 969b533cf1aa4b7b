// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. Schema changes are embedded goose
// migrations.
//
// MapError turns unique violations on known constraints into
// *store.DuplicateError values naming the offending field and missing rows
// into not-found sentinels.
package postgres
