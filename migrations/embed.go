// Package migrations holds the PostgreSQL schema as ordered SQL files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
