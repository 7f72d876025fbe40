package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	"github.com/noah-isme/ecom-api/db/migrations"
	"github.com/noah-isme/ecom-api/internal/obs"
)

func main() {
	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info").With().Str("component", "migrate").Logger()

	steps := flag.Int("steps", 0, "apply N migrations (negative rolls back); 0 migrates to latest")
	down := flag.Bool("down", false, "roll back every migration")
	flag.Parse()

	dbURL, err := driverURL(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal().Err(err).Msg("database url")
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logger.Fatal().Err(err).Msg("open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise migrate")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Error().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrate")
		}
	}()

	switch {
	case *down:
		err = m.Down()
	case *steps != 0:
		err = m.Steps(*steps)
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Msg("migrate")
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		logger.Fatal().Err(verr).Msg("read version")
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
}

// driverURL rewrites a postgres URL to the scheme registered by the pgx/v5 driver.
func driverURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("DATABASE_URL is not set")
	}
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(raw, prefix) {
			return "pgx5://" + strings.TrimPrefix(raw, prefix), nil
		}
	}
	if strings.HasPrefix(raw, "pgx5://") {
		return raw, nil
	}
	return "", fmt.Errorf("unsupported database url scheme in %q", raw)
}
