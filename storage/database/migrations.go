package database

import "embed"

// MigrationsFS holds the goose SQL migrations, under "migrations".
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
