// Package jobs holds the periodic background work of the API process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/modules/reservation"
)

type StatsSource interface {
	Stats(ctx context.Context) (reservation.Stats, error)
}

// Digest logs the admin counters on every tick. It never mutates
// reservations.
type Digest struct {
	source  StatsSource
	logger  *zap.Logger
	timeout time.Duration
}

func NewDigest(source StatsSource, logger *zap.Logger) *Digest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Digest{source: source, logger: logger, timeout: 30 * time.Second}
}

// Run implements cron.Job.
func (d *Digest) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if _, err := d.RunOnce(ctx); err != nil {
		d.logger.Error("digest job failed", zap.Error(err))
	}
}

func (d *Digest) RunOnce(ctx context.Context) (reservation.Stats, error) {
	st, err := d.source.Stats(ctx)
	if err != nil {
		return reservation.Stats{}, fmt.Errorf("digest: load stats: %w", err)
	}

	d.logger.Info("reservation digest",
		zap.Int("total", st.Total),
		zap.Int("pending", st.Pending),
		zap.Int("confirmed", st.Confirmed),
		zap.Int("today", st.Today),
	)
	return st, nil
}

// Schedule registers d on a new cron scheduler using a standard five-field
// spec. The caller starts and stops the returned scheduler.
func Schedule(spec string, loc *time.Location, d *Digest) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddJob(spec, d); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return c, nil
}
