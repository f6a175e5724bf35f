// Package localdeals holds assets embedded into the service binary.
package localdeals

import "embed"

//go:embed migrations/*.sql
var MigrationsFS embed.FS
