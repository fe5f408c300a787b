// Package migrations embeds the SQL schema migrations for every supported driver.
package migrations

import "embed"

// FS holds one sub-directory per driver (sqlite, postgres) with NNN_name.sql files.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
