package main

import (
	"flag"
	"os"

	"github.com/barsamweb/reviews/internal/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Pretty console output for an operator-facing tool
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		command       string
		steps         int
		migrationsDir string
		databaseURL   string
	)

	flag.StringVar(&command, "command", "up", "Migration command: up, down")
	flag.IntVar(&steps, "steps", 1, "Number of migrations to roll back with -command down")
	flag.StringVar(&migrationsDir, "dir", "migrations", "Path to migrations directory")
	flag.StringVar(&databaseURL, "database", "", "Database URL (overrides DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable or -database flag is required")
	}

	log.Info().
		Str("dir", migrationsDir).
		Str("command", command).
		Msg("Starting migration")

	switch command {
	case "up":
		if err := database.RunMigrationsFromPath(databaseURL, migrationsDir); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "down":
		if err := database.RollbackMigration(databaseURL, migrationsDir, steps); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
	default:
		log.Fatal().Str("command", command).Msg("Unknown migration command")
	}
}
