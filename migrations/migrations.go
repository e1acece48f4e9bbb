// Package migrations embeds the schema migration files so the API server
// can bring the database up to date at startup.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
