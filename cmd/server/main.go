package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beautypos/internal/config"
	"beautypos/internal/infra"
	"beautypos/internal/journal"
	"beautypos/internal/repository"
	"beautypos/internal/router"
	"beautypos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	var jnl *journal.Journal
	if cfg.JournalPath != "" {
		jnl, err = journal.Open(cfg.JournalPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.JournalPath).Msg("failed to open cashier journal")
		}
		defer jnl.Close()
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has access to every infrastructure dependency.
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	mailer := infra.NewMailer(cfg, mailCB)
	dispatcher := worker.NewDispatcher(rdb)
	orderRepo := repository.NewOrderRepository(db)

	pool := worker.NewPool(rdb, cfg.WorkerPoolSize, map[string]worker.Handler{
		worker.QueueReceipt: worker.NewReceiptWorker(orderRepo, dispatcher, cfg.StoreName, cfg.PDFStoragePath).Process,
		worker.QueueClosing: worker.NewClosingReportWorker(dispatcher, cfg.StoreName, cfg.PDFStoragePath, cfg.ReportEmail).Process,
		worker.QueueEmail:   worker.NewEmailWorker(mailer).Process,
	})
	pool.Start(ctx)

	r := router.New(cfg, db, rdb, mailCB, jnl)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("beautypos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	pool.Wait()
	log.Info().Msg("server exited")
}
