package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeInvalidator struct {
	calls chan struct{}
	err   error
}

func (f *fakeInvalidator) InvalidateTrending(ctx context.Context) error {
	f.calls <- struct{}{}
	return f.err
}

func TestScoreWorker_SubmitBackpressure(t *testing.T) {
	// No Run loop: the queue fills up.
	w := NewScoreWorker(&fakeInvalidator{calls: make(chan struct{}, 8)}, 2)

	if err := w.Submit(ScoreTask{ProductID: "p1"}); err != nil {
		t.Fatalf("first submit should succeed: %v", err)
	}
	if err := w.Submit(ScoreTask{ProductID: "p2"}); err != nil {
		t.Fatalf("second submit should succeed: %v", err)
	}

	if err := w.Submit(ScoreTask{ProductID: "p3"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("saturated queue must reject with ErrQueueFull, got %v", err)
	}
}

func TestScoreWorker_ProcessesTasks(t *testing.T) {
	invalidator := &fakeInvalidator{calls: make(chan struct{}, 8)}
	w := NewScoreWorker(invalidator, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := w.Submit(ScoreTask{UserID: "u1", ProductID: "p1", QueuedAt: time.Now()}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := w.Submit(ScoreTask{UserID: "u1", ProductID: "p2", QueuedAt: time.Now()}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-invalidator.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("task %d was never processed", i)
		}
	}
}

func TestScoreWorker_FailureDoesNotStopLoop(t *testing.T) {
	invalidator := &fakeInvalidator{calls: make(chan struct{}, 8), err: errors.New("redis down")}
	w := NewScoreWorker(invalidator, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 3; i++ {
		if err := w.Submit(ScoreTask{ProductID: "p"}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case <-invalidator.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("worker stopped processing after a failure (task %d)", i)
		}
	}
}
