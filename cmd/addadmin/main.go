package main

import (
	"context"
	"flag"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/barsamweb/reviews/internal/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Seeds a moderation operator account. Passwords are hashed with argon2id
// before they touch the database.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		email       string
		password    string
		databaseURL string
	)

	flag.StringVar(&email, "email", "", "Admin email address")
	flag.StringVar(&password, "password", "", "Admin password")
	flag.StringVar(&databaseURL, "database", "", "Database URL (overrides DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable or -database flag is required")
	}
	if email == "" || password == "" {
		log.Fatal().Msg("-email and -password are required")
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	db, err := database.New(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	_, err = db.Pool.Exec(context.Background(), `
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, email, hash)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert admin")
	}

	log.Info().Str("email", email).Msg("Admin account ready")
}
