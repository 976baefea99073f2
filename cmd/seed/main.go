// Command seed fills the configured store with demo users, courses, purchases and
// reviews, then prints a bearer token for every demo user.
//
// Running it twice is safe: existing users and courses are reused.
//
//	go run ./cmd/seed
//	API_TOKEN=<learner token> go run ./cmd/explore
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/config"
	"github.com/sakif/course-marketplace/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, cfg.Environment, cfg.LogLevel)

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		logger.Error("failed to create token service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	s := &seeder{store: store, tokens: tokens, logger: logger}
	if err := s.run(ctx, os.Stdout); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		store.Close()
		os.Exit(1)
	}
}
