package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultSweepGrace = time.Hour

// SweepReport summarises one sweep.
type SweepReport struct {
	Scanned int      `json:"scanned"`
	Kept    int      `json:"kept"`
	Recent  int      `json:"recent"`
	Deleted []string `json:"deleted"`
	Failed  int      `json:"failed"`
}

// MediaSweeper deletes stored uploads that no database row references. Files younger
// than the grace period are left alone so in-flight writes are never touched.
type MediaSweeper struct {
	db     database.Database
	store  media.Store
	grace  time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

func NewMediaSweeper(db database.Database, store media.Store, grace time.Duration) *MediaSweeper {
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	return &MediaSweeper{
		db:     db,
		store:  store,
		grace:  grace,
		now:    time.Now,
		logger: log.With().Str("serviceName", "mediaSweeper").Logger(),
	}
}

func (m *MediaSweeper) Sweep(ctx context.Context) (SweepReport, error) {
	report := SweepReport{Deleted: []string{}}

	objects, err := m.store.List(ctx, media.UploadPrefix)
	if err != nil {
		return report, err
	}
	refs, err := m.db.ReferencedMediaPaths(ctx)
	if err != nil {
		return report, err
	}

	cutoff := m.now().Add(-m.grace)
	for _, obj := range objects {
		report.Scanned++
		switch {
		case refs[obj.Path]:
			report.Kept++
		case obj.ModTime.After(cutoff):
			report.Recent++
		default:
			if err := m.store.Delete(ctx, obj.Path); err != nil {
				m.logger.Warn().Err(err).Str("path", obj.Path).Msg("could not delete orphaned media")
				report.Failed++
				continue
			}
			report.Deleted = append(report.Deleted, obj.Path)
		}
	}

	m.logger.Info().
		Int("scanned", report.Scanned).
		Int("kept", report.Kept).
		Int("recent", report.Recent).
		Int("deleted", len(report.Deleted)).
		Int("failed", report.Failed).
		Msg("media sweep finished")
	return report, nil
}

// SweepScheduler runs the sweeper on a cron schedule.
type SweepScheduler struct {
	cron    *cron.Cron
	sweeper *MediaSweeper
	logger  zerolog.Logger
}

// NewSweepScheduler registers the sweep under spec, a standard five field cron expression
// or a descriptor such as "@hourly".
func NewSweepScheduler(sweeper *MediaSweeper, spec string) (*SweepScheduler, error) {
	s := &SweepScheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  log.With().Str("serviceName", "sweepScheduler").Logger(),
	}
	entryID, err := s.cron.AddFunc(spec, func() {
		if _, err := s.sweeper.Sweep(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("scheduled media sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("cron", spec).Int("entryID", int(entryID)).Msg("media sweep scheduled")
	return s, nil
}

func (s *SweepScheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("media sweep scheduler stopped")
}
