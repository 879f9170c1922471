// Package migrations embeds the goose SQL migrations for the vss_items
// table so the server can run them at boot without a separate tool.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
