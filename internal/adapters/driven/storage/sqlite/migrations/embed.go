// Package migrations holds the numbered schema files for the trace store.
// Each NNN_name.up.sql is applied once, in order; .down.sql files are kept
// for manual rollback.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
