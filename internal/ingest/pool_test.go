package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueProcessesAllJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[uuid.UUID]int)

	q := NewQueue(func(_ context.Context, id uuid.UUID) error {
		mu.Lock()
		seen[id]++
		mu.Unlock()
		return nil
	}, discardLogger(), WithWorkers(3), WithQueueSize(8))

	ids := make([]uuid.UUID, 20)
	for i := range ids {
		ids[i] = uuid.New()
		if err := q.Enqueue(context.Background(), Job{DocumentID: ids[i], SubmittedAt: time.Now()}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(ids) {
		t.Fatalf("processed %d distinct jobs, want %d", len(seen), len(ids))
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Errorf("job %s processed %d times, want 1", id, seen[id])
		}
	}
}

func TestQueueSurvivesProcessorErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	q := NewQueue(func(_ context.Context, _ uuid.UUID) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n%2 == 0 {
			return errors.New("boom")
		}
		return nil
	}, discardLogger(), WithWorkers(1))

	for i := 0; i < 6; i++ {
		if err := q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	if calls != 6 {
		t.Fatalf("processed %d jobs, want 6", calls)
	}
}

func TestQueueEnqueueAfterShutdownIsNoop(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	q := NewQueue(func(_ context.Context, _ uuid.UUID) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}, discardLogger(), WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if err := q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}); err != nil {
		t.Fatalf("enqueue after shutdown: %v", err)
	}
	// second shutdown must not panic on a closed channel
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("processed %d jobs after shutdown, want 0", calls)
	}
}

func TestQueueProcessTimeoutIsApplied(t *testing.T) {
	deadlineSeen := make(chan bool, 1)

	q := NewQueue(func(ctx context.Context, _ uuid.UUID) error {
		_, ok := ctx.Deadline()
		deadlineSeen <- ok
		return nil
	}, discardLogger(), WithWorkers(1), WithProcessTimeout(50*time.Millisecond))

	if err := q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case ok := <-deadlineSeen:
		if !ok {
			t.Fatal("job context has no deadline")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job was never processed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
}
