// Package migrations holds the numbered SQL files that build the records,
// admins, sessions and semesters tables.
package migrations

import "embed"

// FS holds NNN_name.up.sql and NNN_name.down.sql pairs.
//
//go:embed *.sql
var FS embed.FS
