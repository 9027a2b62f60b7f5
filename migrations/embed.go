package migrations

import "embed"

// FS holds the schema migrations for every SQL backend, one subdirectory
// per driver.
//
//go:embed sqlite postgres
var FS embed.FS
