// Package migrations embeds the SQL schema of the records service and the local cache.
package migrations

import "embed"

// FS holds the PostgreSQL migrations under postgres/ and the SQLite cache migrations under sqlite/.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Directories inside FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
