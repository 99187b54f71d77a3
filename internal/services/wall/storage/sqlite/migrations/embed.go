package migrations

import "embed"

// FS contains embedded SQLite migrations for wall storage.
//
//go:embed *.sql
var FS embed.FS
