package workers

import (
	"context"
	"time"

	"snippets/internal/metrics"

	"go.uber.org/zap"
)

// Counter reports table totals.
type Counter interface {
	Totals(ctx context.Context) (posts, profiles int64, err error)
}

// Sweeper drops expired entries from an in-process table.
type Sweeper interface {
	Sweep() int
}

type StatsWorker struct {
	Counter  Counter
	Sweepers []Sweeper
	Interval time.Duration
	Logger   *zap.Logger
}

// NewStatsWorker ticks every interval; sweepers run after each collection.
func NewStatsWorker(counter Counter, interval time.Duration, logger *zap.Logger, sweepers ...Sweeper) *StatsWorker {
	return &StatsWorker{
		Counter:  counter,
		Sweepers: sweepers,
		Interval: interval,
		Logger:   logger,
	}
}

// Run collects once immediately and then on every tick until ctx is done.
func (w *StatsWorker) Run(ctx context.Context) {
	w.Logger.Info("StatsWorker started", zap.Duration("interval", w.Interval))
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("StatsWorker stopped")
			return
		case <-ticker.C:
			w.collect(ctx)
		}
	}
}

func (w *StatsWorker) collect(ctx context.Context) {
	posts, profiles, err := w.Counter.Totals(ctx)
	if err != nil {
		w.Logger.Error("Error collecting totals", zap.Error(err))
	} else {
		metrics.PostsTotal.Set(float64(posts))
		metrics.ProfilesTotal.Set(float64(profiles))
		w.Logger.Debug("Totals collected", zap.Int64("posts", posts), zap.Int64("profiles", profiles))
	}

	for _, s := range w.Sweepers {
		if n := s.Sweep(); n > 0 {
			w.Logger.Debug("Swept expired entries", zap.Int("count", n))
		}
	}
}
