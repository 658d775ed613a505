// Package migrations embeds the SQL migration files for both storage
// backends. Each backend applies the files from its own subdirectory.
package migrations

import "embed"

// FS embeds all SQL migration files, split per dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
