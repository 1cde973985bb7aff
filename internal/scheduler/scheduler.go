// Package scheduler runs the long-lived background jobs: refreshing cached
// metal prices and logging the Hawl countdown.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/hawl"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/store"
)

// Default schedules, standard five-field cron.
const (
	DefaultRefreshSchedule  = "0 * * * *"
	DefaultReminderSchedule = "0 9 * * *"
)

// ReminderWindow is how close to the anniversary the reminder escalates to Warn.
const ReminderWindow = 30

const jobTimeout = 2 * time.Minute

// Options configures the jobs.
type Options struct {
	RefreshSchedule  string
	ReminderSchedule string
	Currency         string
	HawlStart        *time.Time
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	provider *rates.Provider
	store    store.Store
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a scheduler. Empty schedules take the defaults.
func New(opts Options, provider *rates.Provider, st store.Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RefreshSchedule == "" {
		opts.RefreshSchedule = DefaultRefreshSchedule
	}
	if opts.ReminderSchedule == "" {
		opts.ReminderSchedule = DefaultReminderSchedule
	}
	return &Scheduler{
		cron:     cron.New(),
		provider: provider,
		store:    st,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("refresh", s.opts.RefreshSchedule),
		zap.String("reminder", s.opts.ReminderSchedule))

	if _, err := s.cron.AddFunc(s.opts.RefreshSchedule, s.refreshJob); err != nil {
		return fmt.Errorf("scheduling price refresh %q: %w", s.opts.RefreshSchedule, err)
	}
	if s.opts.HawlStart != nil {
		if _, err := s.cron.AddFunc(s.opts.ReminderSchedule, s.RemindHawl); err != nil {
			return fmt.Errorf("scheduling hawl reminder %q: %w", s.opts.ReminderSchedule, err)
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

func (s *Scheduler) refreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.RefreshPrices(ctx); err != nil {
		s.logger.Error("failed to refresh prices", zap.Error(err))
	}
}

// RefreshPrices fetches both metal quotes and persists the provider cache.
func (s *Scheduler) RefreshPrices(ctx context.Context) error {
	quotes, err := s.provider.Refresh(ctx, s.opts.Currency)
	if err != nil {
		return err
	}
	for _, q := range quotes {
		s.logger.Info("metal price",
			zap.String("metal", string(q.Metal)),
			zap.String("price", q.Price.String()),
			zap.String("currency", q.Currency),
			zap.String("provenance", string(q.Provenance)),
			zap.Int("sources", q.SourceCount))
	}
	for _, a := range s.provider.Advisories() {
		s.logger.Warn("price fallback", zap.String("advisory", a.String()))
	}
	if s.store == nil {
		return nil
	}
	if err := store.SaveJSON(ctx, s.store, rates.CacheKey, s.provider.Cache()); err != nil {
		return fmt.Errorf("saving rate cache: %w", err)
	}
	return nil
}

// RemindHawl logs the days left in the current holding period.
func (s *Scheduler) RemindHawl() {
	if s.opts.HawlStart == nil {
		return
	}
	now := s.now()
	days := hawl.DaysUntil(*s.opts.HawlStart, now)
	info := hawl.Info(*s.opts.HawlStart, now)
	fields := []zap.Field{
		zap.Int("days_remaining", days),
		zap.Time("anniversary", info.EndDate),
	}
	if days <= ReminderWindow {
		s.logger.Warn("hawl anniversary approaching", fields...)
		return
	}
	s.logger.Info("hawl countdown", fields...)
}
