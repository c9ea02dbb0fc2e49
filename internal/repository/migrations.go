package repository

import "embed"

// Migrations holds the schema, applied at startup by common/database.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"
