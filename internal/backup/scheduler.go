package backup

import (
	"context"
	"strconv"
	"time"

	"github.com/antiXlive/Expense/internal/config"
	"github.com/antiXlive/Expense/internal/models"
)

// Scheduler runs the periodic auto-backup loop. It only ever fires while
// the user has autoBackup enabled; the setting is re-read on every tick so
// toggling it takes effect without a restart.
type Scheduler struct {
	svc *Service
	cfg config.BackupConfig
}

func NewScheduler(svc *Service, cfg config.BackupConfig) *Scheduler {
	return &Scheduler{svc: svc, cfg: cfg}
}

// Run blocks until ctx is cancelled, checking once a minute whether a
// backup is due. Call it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.maybeBackup(ctx)
		}
	}
}

func (s *Scheduler) maybeBackup(ctx context.Context) {
	if !s.svc.state.Settings().AutoBackup {
		return
	}
	now := time.Now().Unix()
	elapsed := time.Duration(now-s.svc.state.LastBackup()) * time.Second
	if elapsed < s.cfg.Interval() {
		return
	}

	path, err := s.svc.WriteFile(ctx, s.cfg.Dir, s.cfg.EncryptionKey)
	if err != nil {
		s.svc.log.Error().Err(err).Msg("auto-backup failed")
		return
	}

	s.svc.state.SetLastBackup(now)
	if err := s.svc.store.PutSetting(ctx, models.SettingLastBackup, strconv.FormatInt(now, 10)); err != nil {
		s.svc.log.Error().Err(err).Msg("persist lastBackup failed")
	}
	if err := s.svc.snap.Save(s.svc.state.Export()); err != nil {
		s.svc.log.Error().Err(err).Msg("snapshot save failed")
	}
	s.svc.log.Info().Str("path", path).Msg("auto-backup written")
}
