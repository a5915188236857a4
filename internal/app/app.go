// Package app wires the data layer together: the explicit handle object
// constructed once at boot and handed to every collaborator. Boot follows
// the snapshot-first sequence: render state from the snapshot immediately,
// then supersede it once the real store load resolves.
package app

import (
	"context"
	"fmt"

	"github.com/antiXlive/Expense/internal/backup"
	"github.com/antiXlive/Expense/internal/bus"
	"github.com/antiXlive/Expense/internal/cache"
	"github.com/antiXlive/Expense/internal/config"
	"github.com/antiXlive/Expense/internal/database"
	"github.com/antiXlive/Expense/internal/ledger"
	"github.com/antiXlive/Expense/internal/models"
	"github.com/antiXlive/Expense/internal/snapshot"
	"github.com/antiXlive/Expense/internal/state"
	"github.com/antiXlive/Expense/internal/store"
	"github.com/antiXlive/Expense/internal/taxonomy"
	"github.com/antiXlive/Expense/internal/util"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type App struct {
	log   zerolog.Logger
	cfg   *config.Config
	db    *gorm.DB
	snap  *snapshot.Store
	state *state.State

	Bus      *bus.Bus
	Cache    *cache.Cache
	Store    *store.Store
	Ledger   *ledger.Ledger
	Taxonomy *taxonomy.Manager
	Backup   *backup.Service

	degraded bool
}

// Boot builds the data layer. When the schema store cannot be opened the
// app comes up degraded: snapshot state is served read-only, auto-backup
// and all writes stay disabled, and the process keeps running.
func Boot(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{
		log:   log,
		cfg:   cfg,
		snap:  snapshot.New(cfg.Snapshot.Path),
		state: state.New(),
		Bus:   bus.New(log),
		Cache: cache.New(cfg.Cache.TTL()),
	}

	// snapshot first, for instant rendering before the store load resolves
	data, err := a.snap.Load()
	if err != nil {
		log.Warn().Err(err).Msg("snapshot load failed, starting from defaults")
	}
	a.state.Restore(data)

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("schema store unavailable, degrading to snapshot-only")
		a.degraded = true
		return a, nil
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Error().Err(err).Msg("schema migration failed, degrading to snapshot-only")
		a.degraded = true
		return a, nil
	}
	a.db = db
	a.Store = store.New(db)

	a.Taxonomy = taxonomy.NewManager(log, a.Store, a.state, a.Cache, a.snap, a.Bus)
	a.Ledger = ledger.New(log, a.Store, a.state, a.Cache, a.snap, a.Bus)
	a.Backup = backup.NewService(log, a.Store, a.state, a.Cache, a.snap, a.Bus)

	// taxonomy must be trusted before any ledger read
	if err := a.Taxonomy.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	if err := a.reload(ctx); err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}
	return a, nil
}

// Degraded reports snapshot-only mode: the store never opened and writes
// are disabled.
func (a *App) Degraded() bool { return a.degraded }

// State exposes the in-memory mirror for collaborators that render it.
func (a *App) State() *state.State { return a.state }

// reload replaces the snapshot-seeded mirror with fresh store state and
// persists the superseding snapshot.
func (a *App) reload(ctx context.Context) error {
	tx, err := a.Store.AllTransactions(ctx)
	if err != nil {
		return err
	}
	settingRows, err := a.Store.AllSettings(ctx)
	if err != nil {
		return err
	}
	settings, lastBackup, lastScreen := models.SettingsFromRows(settingRows)

	a.state.SetTransactions(tx)
	a.state.SetSettings(settings)
	a.state.SetLastBackup(lastBackup)
	if lastScreen != "" {
		a.state.SetLastScreen(lastScreen)
	}

	if err := a.snap.Save(a.state.Export()); err != nil {
		a.log.Error().Err(err).Msg("snapshot save failed")
	}
	a.Bus.Publish(bus.TransactionsReloaded{Tx: tx})
	return nil
}

// Shutdown flushes the snapshot and closes the store.
func (a *App) Shutdown() {
	if err := a.snap.Save(a.state.Export()); err != nil {
		a.log.Error().Err(err).Msg("snapshot save failed on shutdown")
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// ---------- settings ----------

func (a *App) Settings() models.Settings {
	return a.state.Settings()
}

// UpdateSettings persists the typed settings and notifies subscribers.
func (a *App) UpdateSettings(ctx context.Context, settings models.Settings) error {
	if a.degraded {
		return store.ErrUnavailable
	}
	rows := models.SettingsRows(settings, a.state.LastBackup(), a.state.LastScreen())
	for _, row := range rows {
		if err := a.Store.PutSetting(ctx, row.Key, row.Value); err != nil {
			return err
		}
	}
	a.state.SetSettings(settings)
	if err := a.snap.Save(a.state.Export()); err != nil {
		a.log.Error().Err(err).Msg("snapshot save failed")
	}
	a.Bus.Publish(bus.SettingsUpdated{Settings: settings})
	return nil
}

// SetPIN stores a bcrypt hash of the unlock PIN.
func (a *App) SetPIN(ctx context.Context, pin string) error {
	hash, err := util.HashPIN(pin)
	if err != nil {
		return err
	}
	settings := a.state.Settings()
	settings.PINHash = hash
	return a.UpdateSettings(ctx, settings)
}

// VerifyPIN checks a plaintext PIN against the stored hash.
func (a *App) VerifyPIN(pin string) bool {
	return util.CheckPIN(pin, a.state.Settings().PINHash)
}

// SetLastScreen records the screen to restore on next boot.
func (a *App) SetLastScreen(ctx context.Context, screen string) error {
	if a.degraded {
		return store.ErrUnavailable
	}
	if err := a.Store.PutSetting(ctx, models.SettingLastScreen, screen); err != nil {
		return err
	}
	a.state.SetLastScreen(screen)
	if err := a.snap.Save(a.state.Export()); err != nil {
		a.log.Error().Err(err).Msg("snapshot save failed")
	}
	return nil
}
