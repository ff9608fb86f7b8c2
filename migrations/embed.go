// Package migrations embeds the SQL schema applied at startup.
// Every file must run unchanged on both SQLite and Postgres.
package migrations

import "embed"

// FS holds the up and down migrations at its root.
//
//go:embed *.sql
var FS embed.FS
