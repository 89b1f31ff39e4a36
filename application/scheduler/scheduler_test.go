package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyAtNextRun(t *testing.T) {
	s := DailyAt(21, 0)

	before := time.Date(2026, 3, 10, 20, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC), s.nextRun(before))

	exact := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 21, 0, 0, 0, time.UTC), s.nextRun(exact))

	// не-UTC время приводится к UTC
	msk := time.FixedZone("MSK", 3*3600)
	local := time.Date(2026, 3, 10, 23, 30, 0, 0, msk) // 20:30 UTC
	assert.Equal(t, time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC), s.nextRun(local))
}

func TestEveryNextRun(t *testing.T) {
	from := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, from.Add(time.Minute), Every(time.Minute).nextRun(from))
}

func TestTickSkipsRunningJob(t *testing.T) {
	s := New()
	job := &Job{Name: "scan", Schedule: Every(time.Minute), Handler: func(ctx context.Context) error { return nil }}
	s.Register(job)

	job.mu.Lock()
	job.running = true
	job.nextRun = time.Now().Add(-time.Second)
	job.mu.Unlock()

	s.tick(context.Background())
	st := job.Status()
	assert.Equal(t, 1, st.Skipped)
	assert.Equal(t, 0, st.Runs)
}

func TestRunOnStartAndRepeat(t *testing.T) {
	s := New()
	var runs int32
	s.Register(&Job{
		Name:       "scan",
		Schedule:   Every(10 * time.Millisecond),
		RunOnStart: true,
		Handler: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	statuses := s.Jobs()
	require.Len(t, statuses, 1)
	assert.GreaterOrEqual(t, statuses[0].Runs, 3)
	assert.NoError(t, statuses[0].LastErr)
}

func TestRunsNeverOverlap(t *testing.T) {
	s := New()
	var active, maxActive, runs int32
	s.Register(&Job{
		Name:       "slow",
		Schedule:   Every(time.Millisecond),
		RunOnStart: true,
		Handler: func(ctx context.Context) error {
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			atomic.AddInt32(&runs, 1)
			return nil
		},
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
}

func TestHandlerErrorIsRecorded(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	job := &Job{
		Name:       "fail",
		Schedule:   Every(time.Hour),
		RunOnStart: true,
		Handler:    func(ctx context.Context) error { return boom },
	}
	s.Register(job)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return job.Status().Runs == 1 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	assert.ErrorIs(t, job.Status().LastErr, boom)
}

func TestContextCancelStopsLoop(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	s.Register(&Job{Name: "idle", Schedule: Every(time.Hour), Handler: func(ctx context.Context) error { return nil }})
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
