// Package migrations holds the numbered schema changes for the SQLite store.
// Files are named NNN_description.up.sql and applied in version order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
