package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/config"
)

const jobTimeout = 2 * time.Minute

// SessionCloser ends selling sessions of vendors that went offline.
type SessionCloser interface {
	CloseStaleSessions(ctx context.Context) (int, error)
}

// TokenPurger drops expired auth sessions.
type TokenPurger interface {
	PurgeExpired() int
}

// StockExporter appends a stock snapshot to the report sheet.
type StockExporter interface {
	ExportStock(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionCloser
	tokens   TokenPurger
	exporter StockExporter
	cfg      config.SchedulerConfig
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
// exporter may be nil when spreadsheet export is disabled.
func NewScheduler(cfg config.SchedulerConfig, sessions SessionCloser, tokens TokenPurger, exporter StockExporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		sessions: sessions,
		tokens:   tokens,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger.Named("scheduler"),
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.SessionSweepSchedule, s.sweep); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}

	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.ReportSchedule, s.exportStock); err != nil {
			return fmt.Errorf("schedule stock report: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	closed, err := s.sessions.CloseStaleSessions(ctx)
	if err != nil {
		s.logger.Error("failed to close stale sessions", zap.Error(err))
	} else if closed > 0 {
		s.logger.Info("closed stale sessions", zap.Int("count", closed))
	}

	if purged := s.tokens.PurgeExpired(); purged > 0 {
		s.logger.Debug("purged expired tokens", zap.Int("count", purged))
	}
}

func (s *Scheduler) exportStock() {
	s.logger.Info("exporting stock report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.exporter.ExportStock(ctx); err != nil {
		s.logger.Error("failed to export stock report", zap.Error(err))
	}
}
