package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"playdeck/shared/go/config"
	"playdeck/shared/go/logging"
)

const usage = "usage: migrate [up|down|version]"

func main() {
	logging.SetGlobal(logging.New(logging.Config{Format: "text"}))

	if len(os.Args) != 2 {
		log.Fatal().Msg(usage)
	}
	command := os.Args[1]

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("load database config")
	}

	db, err := sql.Open("postgres", dbCfg.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("create postgres driver")
	}

	sourceURL, err := migrationsSource()
	if err != nil {
		log.Fatal().Err(err).Msg("locate migrations")
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		log.Fatal().Err(err).Msg("create migrate instance")
	}

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		log.Info().Msg("migrations applied")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("roll back migrations")
		}
		log.Info().Msg("migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("read migration version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current schema version")
	default:
		log.Fatal().Msg(usage)
	}
}

// migrationsSource resolves MIGRATIONS_DIR, defaulting to ./migrations.
func migrationsSource() (string, error) {
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", fmt.Errorf("migrations directory %s: %w", absPath, err)
	}
	return "file://" + filepath.ToSlash(absPath), nil
}
