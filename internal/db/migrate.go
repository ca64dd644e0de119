// Package db applies the embedded SQL migrations at startup.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date over the already-open pool.
func Migrate(pool *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("falha ao carregar migrações embutidas: %w", err)
	}

	driver, err := migratemysql.WithInstance(pool, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("falha ao preparar driver de migração: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return fmt.Errorf("falha ao inicializar migrações: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("falha ao aplicar migrações: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Printf("[DB] action=migrate version=%d dirty=%v", version, dirty)
	return nil
}
