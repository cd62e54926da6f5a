package migrations

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"notifier/internal/config"
)

//go:embed sql
var migrationFiles embed.FS

// sourceFor returns the embedded migration set matching the database driver.
func sourceFor(driver string) (source.Driver, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	sub, err := fs.Sub(migrationFiles, "sql")
	if err != nil {
		return nil, err
	}

	return iofs.New(sub, driver)
}
