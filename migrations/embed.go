// Package migrations embeds the SQL schema applied by goose at startup.
package migrations

import "embed"

// FS holds every *.sql migration of this directory.
//
//go:embed *.sql
var FS embed.FS
