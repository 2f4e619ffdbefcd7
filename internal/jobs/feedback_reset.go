// Package jobs holds the bot's background maintenance loops.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/absence-bot/internal/infra/metrics"
)

// FeedbackCounter is the slice of the user repository the reset job needs.
type FeedbackCounter interface {
	ResetFeedbackCounts(ctx context.Context) (int64, error)
}

// FeedbackReset zeroes every user's daily feedback counter once a day.
type FeedbackReset struct {
	users FeedbackCounter
	log   *slog.Logger
	loc   *time.Location
	hour  int
	min   int
	now   func() time.Time
}

// NewFeedbackReset schedules the reset at "HH:MM" in loc.
func NewFeedbackReset(users FeedbackCounter, log *slog.Logger, loc *time.Location, at string) (*FeedbackReset, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("reset time %q: %w", at, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &FeedbackReset{
		users: users,
		log:   log,
		loc:   loc,
		hour:  t.Hour(),
		min:   t.Minute(),
		now:   time.Now,
	}, nil
}

// NextRun returns the first reset moment strictly after now.
func (j *FeedbackReset) NextRun(now time.Time) time.Time {
	local := now.In(j.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), j.hour, j.min, 0, 0, j.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is cancelled.
func (j *FeedbackReset) Run(ctx context.Context) error {
	for {
		next := j.NextRun(j.now())
		j.log.Debug("feedback reset scheduled", "at", next)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		j.resetOnce(ctx)
	}
}

func (j *FeedbackReset) resetOnce(ctx context.Context) {
	n, err := j.users.ResetFeedbackCounts(ctx)
	if err != nil {
		j.log.Error("feedback reset failed", "err", err)
		return
	}
	metrics.FeedbackReset()
	j.log.Info("feedback counters reset", "users", n)
}
