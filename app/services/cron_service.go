package services

import (
	"context"
	"log/slog"
	"time"

	"matchcall/app/models"

	"golang.org/x/sync/errgroup"
)

// WaitSource reads wait estimates published by the matcher
type WaitSource interface {
	GetInt(ctx context.Context, key string) (int, bool, error)
}

// CronSchedule holds the intervals of the background jobs
type CronSchedule struct {
	WaitPollInterval time.Duration
	CleanupInterval  time.Duration
	MaxIdle          time.Duration
}

// CronService handles scheduled background tasks
type CronService struct {
	sessions *SessionService
	waits    WaitSource
	presence Presence
	log      *slog.Logger
}

// NewCronService creates a new cron service instance
func NewCronService(sessions *SessionService, waits WaitSource, presence Presence, logger *slog.Logger) *CronService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CronService{
		sessions: sessions,
		waits:    waits,
		presence: presence,
		log:      logger.With("component", "cron"),
	}
}

// Run starts every job and blocks until ctx is cancelled
func (c *CronService) Run(ctx context.Context, schedule CronSchedule) error {
	g, ctx := errgroup.WithContext(ctx)

	if schedule.WaitPollInterval > 0 {
		c.log.Info("starting wait estimate poller", "interval", schedule.WaitPollInterval.String())
		g.Go(func() error {
			c.every(ctx, schedule.WaitPollInterval, func() { c.PollWaitEstimates(ctx) })
			return nil
		})
	}
	if schedule.CleanupInterval > 0 && schedule.MaxIdle > 0 {
		c.log.Info("starting idle session cleanup", "interval", schedule.CleanupInterval.String(), "max_idle", schedule.MaxIdle.String())
		g.Go(func() error {
			c.every(ctx, schedule.CleanupInterval, func() {
				if n := c.sessions.ExpireIdle(ctx, schedule.MaxIdle, c.presence); n > 0 {
					c.log.Info("expired idle queue sessions", "count", n)
				}
			})
			return nil
		})
	}

	return g.Wait()
}

func (c *CronService) every(ctx context.Context, interval time.Duration, job func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job()
		}
	}
}

// PollWaitEstimates applies the current estimate of each queue to its searching
// sessions and returns how many sessions were updated
func (c *CronService) PollWaitEstimates(ctx context.Context) int {
	type estimate struct {
		seconds int
		ok      bool
	}
	byKey := make(map[string]estimate)
	updated := 0

	for _, session := range c.sessions.ActiveSessions() {
		if session.State() != models.StateSearching {
			continue
		}
		key := WaitKey(session.Options())
		est, seen := byKey[key]
		if !seen {
			seconds, ok, err := c.waits.GetInt(ctx, key)
			if err != nil {
				c.log.Warn("wait estimate unavailable", "key", key, "error", err)
			}
			est = estimate{seconds: seconds, ok: ok && err == nil}
			byKey[key] = est
		}
		if !est.ok {
			continue
		}
		if err := c.sessions.UpdateWait(ctx, session.UserID(), est.seconds); err != nil {
			c.log.Debug("wait estimate not applied", "user_id", session.UserID(), "error", err)
			continue
		}
		updated++
	}
	return updated
}
