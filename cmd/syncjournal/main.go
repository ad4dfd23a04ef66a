// Command syncjournal replays the local cashier journal into the database,
// for registers that kept working while the database was unreachable.
//
//	go run ./cmd/syncjournal -path /var/lib/beautypos/journal.db
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beautypos/internal/config"
	"beautypos/internal/infra"
	"beautypos/internal/journal"
	"beautypos/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	path := flag.String("path", cfg.JournalPath, "journal file (defaults to JOURNAL_PATH)")
	batch := flag.Int("batch", 100, "entries per round trip")
	flag.Parse()
	if *path == "" {
		log.Fatal().Msg("no journal: set -path or JOURNAL_PATH")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jnl, err := journal.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("failed to open journal")
	}
	defer jnl.Close()

	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	pushed, err := jnl.Sync(ctx, repository.NewCashierRepository(db), *batch)
	if err != nil {
		log.Error().Err(err).Int("pushed", pushed).Msg("journal sync stopped")
		os.Exit(1)
	}
	log.Info().Int("pushed", pushed).Msg("journal synced")
}
