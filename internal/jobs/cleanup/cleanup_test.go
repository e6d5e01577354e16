package cleanup

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRunSweepsRegistry(t *testing.T) {
	sweeper := &fakeSweeper{removed: 3}

	job := New(sweeper, 24*time.Hour, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
	if sweeper.lastRetention != 24*time.Hour {
		t.Fatalf("unexpected retention: %v", sweeper.lastRetention)
	}
}

func TestNewDefaultsRetention(t *testing.T) {
	sweeper := &fakeSweeper{}

	job := New(sweeper, 0, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if sweeper.lastRetention != 24*time.Hour {
		t.Fatalf("expected default retention, got %v", sweeper.lastRetention)
	}
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	sweeper := &fakeSweeper{}
	job := New(sweeper, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- job.RunLoop(ctx, time.Hour)
	}()

	deadline := time.After(2 * time.Second)
	for sweeper.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("initial sweep never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run loop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run loop did not stop after cancel")
	}
}

type fakeSweeper struct {
	mu            sync.Mutex
	removed       int
	calls         int
	lastRetention time.Duration
}

func (f *fakeSweeper) Sweep(retention time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastRetention = retention
	return f.removed
}

func (f *fakeSweeper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
