// Package migrations embeds the versioned PostgreSQL schema of the namespace
// store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
