package migrations

import "embed"

// FS contains embedded SQLite migrations for balloting storage.
//
//go:embed *.sql
var FS embed.FS
