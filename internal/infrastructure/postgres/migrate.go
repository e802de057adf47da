package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations aplica las migraciones pendientes de sourceURL (p. ej. file://migrations).
// Devuelve la versión final; sin cambios no es error.
func RunMigrations(sourceURL, dsn string) (uint, error) {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return 0, fmt.Errorf("crear migrador: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate up: %w", err)
	}
	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("versión de migración: %w", err)
	}
	return version, nil
}
