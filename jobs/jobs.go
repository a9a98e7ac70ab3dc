// Package jobs declares the background jobs of fin and runs them on cron
// schedules.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/insight"
	"github.com/etnz/finance/internal/config"
	"github.com/etnz/finance/market"
	"github.com/etnz/finance/store"
	"github.com/robfig/cron/v3"
)

// Job is a named task with its cron schedule.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Job names.
const (
	SubscriptionsSync = "subscriptions-sync"
	PriceRefresh      = "price-refresh"
	Insights          = "insights"
	Notifications     = "notifications"
)

// SyncSubscriptions appends the subscription charges due up to asOf that are
// not in the ledger yet, and returns how many were appended.
func SyncSubscriptions(ctx context.Context, s store.Store, asOf date.Date) (int, error) {
	ledger, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	charges := finance.Charges(ledger, asOf)
	records := make([]finance.Record, len(charges))
	for i, tx := range charges {
		records[i] = tx
	}
	return len(records), s.Append(ctx, records...)
}

// RefreshPrices appends the prices published since the last refresh. Prices
// retrieved before a provider failure are still appended.
func RefreshPrices(ctx context.Context, s store.Store, providers market.Providers, asOf date.Date) (int, error) {
	ledger, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	prices, refreshErr := market.Refresh(ctx, ledger, providers, asOf)
	records := make([]finance.Record, len(prices))
	for i, p := range prices {
		records[i] = p
	}
	if err := s.Append(ctx, records...); err != nil {
		return 0, err
	}
	return len(records), refreshErr
}

// RaiseNotifications appends the notifications raised on asOf.
func RaiseNotifications(ctx context.Context, s store.Store, asOf date.Date) ([]finance.Notification, error) {
	ledger, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	notes := finance.Notify(ledger, asOf)
	records := make([]finance.Record, len(notes))
	for i, n := range notes {
		records[i] = n
	}
	return notes, s.Append(ctx, records...)
}

// Deps are what the jobs work with.
type Deps struct {
	Store     store.Store
	Providers market.Providers
	Insights  *insight.Service
	Logger    *slog.Logger
	Today     func() date.Date
}

// Declare returns the jobs of fin with their schedules from cfg.
func Declare(cfg config.JobsConfig, deps Deps) []Job {
	today := deps.Today
	if today == nil {
		today = date.Today
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return []Job{
		{Name: SubscriptionsSync, Schedule: cfg.SubscriptionsSync, Run: func(ctx context.Context) error {
			n, err := SyncSubscriptions(ctx, deps.Store, today())
			logger.Info("subscription charges appended", "count", n)
			return err
		}},
		{Name: PriceRefresh, Schedule: cfg.PriceRefresh, Run: func(ctx context.Context) error {
			n, err := RefreshPrices(ctx, deps.Store, deps.Providers, today())
			logger.Info("prices appended", "count", n)
			return err
		}},
		{Name: Insights, Schedule: cfg.Insights, Run: func(ctx context.Context) error {
			if deps.Insights == nil {
				return fmt.Errorf("insight service not configured")
			}
			r, err := deps.Insights.Get(ctx, true)
			if err != nil {
				return err
			}
			logger.Info("insights generated", "count", len(r.Insights), "stale", r.Stale)
			return nil
		}},
		{Name: Notifications, Schedule: cfg.Notifications, Run: func(ctx context.Context) error {
			notes, err := RaiseNotifications(ctx, deps.Store, today())
			for _, n := range notes {
				logger.Info("notification", "kind", n.Kind, "message", n.Message)
			}
			return err
		}},
	}
}

// Runner runs jobs on their schedule. A failed run is logged and the job
// runs again at its next tick.
type Runner struct {
	cron   *cron.Cron
	jobs   []Job
	logger *slog.Logger
}

// NewRunner registers every job with a schedule.
func NewRunner(logger *slog.Logger, jobs ...Job) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{cron: cron.New(), jobs: jobs, logger: logger}
	for _, job := range jobs {
		if job.Schedule == "" {
			logger.Info("job disabled", "job", job.Name)
			continue
		}
		if _, err := r.cron.AddFunc(job.Schedule, func() { r.run(context.Background(), job) }); err != nil {
			return nil, fmt.Errorf("job %s: invalid schedule %q: %w", job.Name, job.Schedule, err)
		}
		logger.Info("job scheduled", "job", job.Name, "schedule", job.Schedule)
	}
	return r, nil
}

func (r *Runner) run(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		r.logger.Error("job failed", "job", job.Name, "duration", time.Since(start), "error", err)
		return err
	}
	r.logger.Info("job done", "job", job.Name, "duration", time.Since(start))
	return nil
}

// Start runs the scheduler in the background.
func (r *Runner) Start() { r.cron.Start() }

// Stop stops the scheduler, the returned context is done when running jobs
// have completed.
func (r *Runner) Stop() context.Context { return r.cron.Stop() }

// Names returns the declared job names.
func (r *Runner) Names() []string {
	names := make([]string, len(r.jobs))
	for i, job := range r.jobs {
		names[i] = job.Name
	}
	return names
}

// RunOnce runs the job name now, scheduled or not.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	i := slices.IndexFunc(r.jobs, func(j Job) bool { return j.Name == name })
	if i < 0 {
		return fmt.Errorf("job %q: %w", name, finance.ErrNotFound)
	}
	return r.run(ctx, r.jobs[i])
}
