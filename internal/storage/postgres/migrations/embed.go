package migrations

import "embed"

// FS contains embedded PostgreSQL migrations for article storage.
//
//go:embed *.sql
var FS embed.FS
