package insight

import (
	"context"
	"log/slog"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
)

// Source loads the ledger.
type Source interface {
	Load(ctx context.Context) (*finance.Ledger, error)
}

// DefaultTTL is how long a cached report is served before being regenerated.
const DefaultTTL = 6 * time.Hour

// Service serves insight reports, regenerating them when the cached one is
// older than TTL.
//
// When the narrator fails the previous summary is served, marked stale, and
// the cache is left untouched so the next call tries again.
type Service struct {
	Source   Source
	Narrator Narrator // optional
	Cache    Cache
	Table    finance.NWITable // DefaultNWITable when nil
	TTL      time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Get returns the current report. force bypasses the cache.
func (s *Service) Get(ctx context.Context, force bool) (Report, error) {
	now := s.now()
	cached, err := s.Cache.Load()
	hasCache := err == nil
	if err != nil && !isMissing(err) {
		s.logger().Warn("ignoring insight cache", "path", s.Cache.Path, "error", err)
	}
	ttl := s.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if !force && hasCache && now.Sub(cached.Generated) < ttl {
		cached.Cached = true
		return cached, nil
	}

	ledger, err := s.Source.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	report := Report{Generated: now, AsOf: date.FromTime(now), Insights: Generate(ledger, date.FromTime(now), s.Table)}
	if s.Narrator == nil {
		return report, s.save(report)
	}

	summary, err := s.Narrator.Narrate(ctx, report.Insights)
	if err != nil {
		s.logger().Warn("insight narration failed", "error", err)
		if hasCache && cached.Summary != "" {
			report.Summary, report.Stale = cached.Summary, true
		}
		return report, nil
	}
	report.Summary = summary
	return report, s.save(report)
}

func (s *Service) save(r Report) error {
	if s.Cache.Path == "" {
		return nil
	}
	return s.Cache.Save(r)
}
