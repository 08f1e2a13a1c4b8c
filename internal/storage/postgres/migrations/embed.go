package migrations

import "embed"

// FS contains the goose migrations for the Postgres schema.
//
//go:embed *.sql
var FS embed.FS
