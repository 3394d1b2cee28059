// Package migrations embeds the versioned schema for the local audit
// database. Migrations are additive only: a version bump may create tables,
// columns or indexes but never drops existing collections or records.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
