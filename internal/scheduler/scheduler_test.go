package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publishDueRecorder implements repository.PostRepository for sweep tests.
type publishDueRecorder struct {
	mu    sync.Mutex
	calls []time.Time
	ret   int64
	err   error
}

func (r *publishDueRecorder) PublishDue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, now)
	return r.ret, r.err
}

func (r *publishDueRecorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *publishDueRecorder) Create(context.Context, *models.Post) error { return nil }
func (r *publishDueRecorder) GetByID(context.Context, uint) (*models.Post, error) {
	return nil, nil
}
func (r *publishDueRecorder) ListPublished(context.Context, int) ([]*models.Post, error) {
	return nil, nil
}
func (r *publishDueRecorder) ListByAuthor(context.Context, string) ([]*models.Post, error) {
	return nil, nil
}
func (r *publishDueRecorder) Update(context.Context, *models.Post) error { return nil }
func (r *publishDueRecorder) Delete(context.Context, uint) error         { return nil }

var _ repository.PostRepository = (*publishDueRecorder)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTickPassesNowToStore(t *testing.T) {
	repo := &publishDueRecorder{ret: 2}
	s := New(repo, time.Minute, quietLogger())

	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	s.Tick(context.Background(), now)

	require.Equal(t, 1, repo.callCount())
	assert.Equal(t, now, repo.calls[0], "selection and update share one coherent instant")
}

func TestTickSwallowsStoreError(t *testing.T) {
	repo := &publishDueRecorder{err: errors.New("store down")}
	s := New(repo, time.Minute, quietLogger())

	// Must not panic or propagate; the next tick retries naturally.
	s.Tick(context.Background(), time.Now().UTC())
	s.Tick(context.Background(), time.Now().UTC())
	assert.Equal(t, 2, repo.callCount())
}

func TestStartSweepsOnInterval(t *testing.T) {
	repo := &publishDueRecorder{}
	s := New(repo, 10*time.Millisecond, quietLogger())

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return repo.callCount() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStopHaltsSweep(t *testing.T) {
	repo := &publishDueRecorder{}
	s := New(repo, 5*time.Millisecond, quietLogger())

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	after := repo.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, repo.callCount(), "no ticks after Stop")
}

func TestStopBeforeStartIsSilent(t *testing.T) {
	var logs bytes.Buffer
	s := New(&publishDueRecorder{}, time.Minute, slog.New(slog.NewTextHandler(&logs, nil)))

	s.Stop()

	assert.Zero(t, logs.Len(), "no lifecycle log for a sweep that never ran")
}

func TestStartIsIdempotent(t *testing.T) {
	repo := &publishDueRecorder{}
	s := New(repo, time.Hour, quietLogger())

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	s.Stop()
	s.Stop()
}
