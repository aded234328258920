// Package migrations holds the goose SQL migrations of the chart store.
package migrations

import "embed"

// FS contains every migration file, for goose.SetBaseFS
//
//go:embed *.sql
var FS embed.FS
