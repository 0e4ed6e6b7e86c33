// Package migrations embeds SQL migration files.
package migrations

import "embed"

// AuthFS contains the migrations for the session/verification tables of the pg adapter.
//
//go:embed auth/*.sql
var AuthFS embed.FS

// AuthDir is the directory within AuthFS where migrations live.
const AuthDir = "auth"
