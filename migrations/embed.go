// Package migrations embeds the SQL migration files into the binary.
//
// Importing this package for its side effect registers the files with the
// database package, so ccsd needs no SQL on the filesystem.
package migrations

import (
	"embed"

	"github.com/nerrad567/ccsd/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.Migrations = migrationsFS
	database.MigrationsDir = "."
}
