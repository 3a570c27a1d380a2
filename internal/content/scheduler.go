// internal/content/scheduler.go
//
// Periodic auto-content runs.
//
// Context
// -------
// Sites carry two opt-in flags: auto_articles queues a bonus-guide article
// per cycle, auto_news a sports piece.  The scheduler wakes on a fixed
// interval, loads the opted-in sites, and drives the generator once per
// flag.  Duplicate-topic protection lives in the generator, so a cycle
// that lands on an already-covered topic stores nothing and moves on.
//
// A per-site failure is logged and the sweep continues; one tenant's
// provider error must not starve the rest.
package content

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/guncelgiris/platform/internal/article"
	"github.com/guncelgiris/platform/internal/site"
)

const defaultInterval = 6 * time.Hour

// articleSource is the slice of Generator the scheduler needs.
type articleSource interface {
	Enabled() bool
	Generate(ctx context.Context, siteID *string, topic, category string) (*article.Record, error)
}

// Scheduler sweeps opted-in sites on a fixed interval.
type Scheduler struct {
	db       *sqlx.DB
	gen      articleSource
	interval time.Duration
}

func NewScheduler(db *sqlx.DB, gen articleSource, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{db: db, gen: gen, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.  Meant to
// run on its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	zap.S().Infow("content scheduler online", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stored, err := s.runOnce(ctx)
			if err != nil {
				zap.S().Warnw("content sweep failed", "error", err)
				continue
			}
			if stored > 0 {
				zap.S().Infow("content sweep done", "stored", stored)
			}
		}
	}
}

// runOnce generates for every opted-in site and returns how many articles
// were stored.  A disabled generator makes the sweep a no-op.
func (s *Scheduler) runOnce(ctx context.Context) (int, error) {
	if !s.gen.Enabled() {
		return 0, nil
	}

	sites, err := site.AutoContentEnabled(ctx, s.db)
	if err != nil {
		return 0, err
	}

	var stored int
	for i := range sites {
		st := &sites[i]
		id := st.ID
		if st.AutoArticles {
			if n, err := s.generate(ctx, &id, "bonus"); err != nil {
				zap.S().Warnw("auto article failed", "host", st.Host, "error", err)
			} else {
				stored += n
			}
		}
		if st.AutoNews {
			if n, err := s.generate(ctx, &id, "spor-haberleri"); err != nil {
				zap.S().Warnw("auto news failed", "host", st.Host, "error", err)
			} else {
				stored += n
			}
		}
	}
	return stored, nil
}

func (s *Scheduler) generate(ctx context.Context, siteID *string, category string) (int, error) {
	rec, err := s.gen.Generate(ctx, siteID, "", category)
	if err != nil {
		return 0, err
	}
	if rec == nil { // duplicate topic, skipped
		return 0, nil
	}
	return 1, nil
}
