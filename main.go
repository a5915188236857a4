package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/antiXlive/Expense/internal/app"
	"github.com/antiXlive/Expense/internal/backup"
	"github.com/antiXlive/Expense/internal/bus"
	"github.com/antiXlive/Expense/internal/config"
	"github.com/antiXlive/Expense/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	// .env overrides are optional
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fallback := logger.New("info")
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Boot(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("boot")
	}
	if a.Degraded() {
		log.Warn().Msg("running in snapshot-only mode; writes disabled")
	}

	// log every notification the data layer fans out
	unsubscribe := a.Bus.Subscribe(func(e bus.Event) {
		log.Debug().Str("event", bus.Kind(e)).Msg("notification")
	})
	defer unsubscribe()

	if !a.Degraded() {
		scheduler := backup.NewScheduler(a.Backup, cfg.Backup)
		go scheduler.Run(ctx)
	}

	log.Info().Msg("expense data layer ready")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	cancel()
	a.Shutdown()
	log.Info().Msg("stopped")
}
