package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SequenceCounter the next number a display-name namespace will issue
type SequenceCounter struct {
	Code       string
	Prefix     string
	NextNumber int64
}

// RunMigrations applies every pending migration, then logs where each
// display-name counter stands. A dirty schema is refused: the counters it
// seeds cannot be trusted until the failed step is repaired.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema is dirty at version %d", version)
	}
	logger.Info("database migrated", zap.Uint("version", version))

	counters, err := SequenceCounters(db)
	if err != nil {
		return err
	}
	for _, sc := range counters {
		logger.Info("sequence ready",
			zap.String("code", sc.Code),
			zap.String("prefix", sc.Prefix),
			zap.Int64("next_number", sc.NextNumber))
	}
	return nil
}

// SequenceCounters lists every display-name namespace ordered by code
func SequenceCounters(db *sql.DB) ([]SequenceCounter, error) {
	rows, err := db.Query(`SELECT code, prefix, next_number FROM sequences ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("read sequences: %w", err)
	}
	defer rows.Close()

	var out []SequenceCounter
	for rows.Next() {
		var sc SequenceCounter
		if err := rows.Scan(&sc.Code, &sc.Prefix, &sc.NextNumber); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
