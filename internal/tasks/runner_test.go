package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"petradar/internal/platform/logger"
)

func waitStatus(t *testing.T, r *Runner, id string, want Status) Info {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if in, ok := r.Get(id); ok && in.Status == want {
			return in
		}
		time.Sleep(5 * time.Millisecond)
	}
	in, _ := r.Get(id)
	t.Fatalf("task %s never reached %s (last: %+v)", id, want, in)
	return Info{}
}

func TestRunner_CompletesWithResult(t *testing.T) {
	r := NewRunner(2, 8, logger.New(logger.Options{Level: logger.Error}))
	r.Start(context.Background())
	defer r.Stop()

	id, err := r.Enqueue("demo", func(ctx context.Context) (any, error) {
		return map[string]any{"answer": 42}, nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	in := waitStatus(t, r, id, StatusCompleted)
	if in.Result == nil || in.Error != "" {
		t.Fatalf("expected result without error, got %+v", in)
	}
	if in.StartedAt == nil || in.CompletedAt == nil {
		t.Fatalf("expected timestamps, got %+v", in)
	}
}

func TestRunner_FailurePropagatesError(t *testing.T) {
	r := NewRunner(1, 8, logger.New(logger.Options{Level: logger.Error}))
	r.Start(context.Background())
	defer r.Stop()

	id, err := r.Enqueue("boom", func(ctx context.Context) (any, error) {
		return nil, errors.New("pipeline exploded")
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	in := waitStatus(t, r, id, StatusFailed)
	if in.Error != "pipeline exploded" {
		t.Fatalf("expected error message, got %q", in.Error)
	}
}

func TestRunner_QueueFullNeverBlocks(t *testing.T) {
	// Sin Start: nadie consume la cola
	r := NewRunner(1, 1, logger.New(logger.Options{Level: logger.Error}))

	fn := func(ctx context.Context) (any, error) { return nil, nil }

	if _, err := r.Enqueue("first", fn); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if _, err := r.Enqueue("second", fn); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestRunner_StopDrainsInFlight(t *testing.T) {
	r := NewRunner(1, 8, logger.New(logger.Options{Level: logger.Error}))
	r.Start(context.Background())

	done := make(chan struct{})
	id, err := r.Enqueue("slow", func(ctx context.Context) (any, error) {
		defer close(done)
		time.Sleep(50 * time.Millisecond)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	r.Stop()

	select {
	case <-done:
	default:
		t.Fatal("Stop returned before the in-flight task finished")
	}

	in, ok := r.Get(id)
	if !ok || in.Status != StatusCompleted {
		t.Fatalf("expected completed after Stop, got %+v", in)
	}

	if _, err := r.Enqueue("late", func(ctx context.Context) (any, error) { return nil, nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after Stop, got %v", err)
	}
}

func TestRunner_GetUnknownID(t *testing.T) {
	r := NewRunner(1, 1, logger.New(logger.Options{Level: logger.Error}))
	if _, ok := r.Get("nope"); ok {
		t.Fatal("expected not found for unknown task id")
	}
}
