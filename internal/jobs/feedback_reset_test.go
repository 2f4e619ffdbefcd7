package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	calls int
	err   error
}

func (f *fakeCounter) ResetFeedbackCounts(context.Context) (int64, error) {
	f.calls++
	return 3, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNextRun(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	j, err := NewFeedbackReset(&fakeCounter{}, discard(), msk, "04:00")
	require.NoError(t, err)

	before := time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC) // 03:30 MSK
	assert.Equal(t, time.Date(2024, 3, 1, 4, 0, 0, 0, msk), j.NextRun(before))

	exact := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC) // ровно 04:00 MSK
	assert.Equal(t, time.Date(2024, 3, 2, 4, 0, 0, 0, msk), j.NextRun(exact))

	after := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 4, 0, 0, 0, msk), j.NextRun(after))
}

func TestNewFeedbackResetRejectsBadTime(t *testing.T) {
	_, err := NewFeedbackReset(&fakeCounter{}, discard(), time.UTC, "25:99")
	assert.Error(t, err)
}

func TestResetOnce(t *testing.T) {
	c := &fakeCounter{}
	j, err := NewFeedbackReset(c, discard(), nil, "00:00")
	require.NoError(t, err)
	j.resetOnce(context.Background())
	assert.Equal(t, 1, c.calls)

	c.err = errors.New("db is down")
	j.resetOnce(context.Background())
	assert.Equal(t, 2, c.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	c := &fakeCounter{}
	j, err := NewFeedbackReset(c, discard(), time.UTC, "00:00")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, j.Run(ctx))
	assert.Equal(t, 0, c.calls)
}
