package data

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Prefetcher is the part of the guide the refresher drives.
type Prefetcher interface {
	Prefetch(ctx context.Context, start, end time.Time) error
}

// Refresher keeps the cached guide window current in the background so that
// guide requests are served without waiting on the provider.
type Refresher struct {
	guide    Prefetcher
	window   time.Duration
	interval time.Duration
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewRefresher creates a new refresh manager. An interval of 0 disables it.
func NewRefresher(guide Prefetcher, window, interval time.Duration, logger logrus.FieldLogger) *Refresher {
	return &Refresher{
		guide:    guide,
		window:   window,
		interval: interval,
		now:      time.Now,
		logger:   logger.WithField("component", "refresher"),
	}
}

// Start warms the guide once, then on every tick until the context is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("Guide refresh disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.refresh(ctx); err != nil {
		ticker.Reset(r.scheduleNextRefresh(err))
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Refresh manager shutting down")
			return
		case <-ticker.C:
			err := r.refresh(ctx)
			ticker.Reset(r.scheduleNextRefresh(err))
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) error {
	// one interval past the window keeps [now, now+window) requests covered
	// until the next tick
	start := r.now()
	end := start.Add(r.window + r.interval)

	r.logger.WithFields(logrus.Fields{
		"start": start,
		"end":   end,
	}).Debug("Starting guide refresh")

	if err := r.guide.Prefetch(ctx, start, end); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.logger.WithError(err).Error("Failed to refresh guide")
		return err
	}

	r.logger.Debug("Guide refresh completed successfully")
	return nil
}

func (r *Refresher) scheduleNextRefresh(lastError error) time.Duration {
	if lastError == nil {
		return r.interval
	}

	// retry sooner, at most 5 minutes out
	backoffDuration := r.interval / 2
	if backoffDuration > 5*time.Minute {
		backoffDuration = 5 * time.Minute
	}

	r.logger.WithField("interval", backoffDuration).Warn("Using backoff interval due to refresh error")
	return backoffDuration
}
