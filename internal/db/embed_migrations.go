package db

import "embed"

// MigrationFS embeds the schema for boards, rosters, live sessions and audit logs.
// cmd/migrate applies it through the migrate runner.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
