package pool

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestRunSiblingsVisitsEveryTask(t *testing.T) {
	p := New(4)
	var visited int32
	tasks := make([]Task, 6)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			atomic.AddInt32(&visited, 1)
			return i, nil
		}
	}
	scores, err := p.RunSiblings(context.Background(), tasks)
	if err != nil {
		t.Fatalf("RunSiblings: %v", err)
	}
	if int(visited) != len(tasks) {
		t.Fatalf("visited %d tasks, want %d", visited, len(tasks))
	}
	for i, s := range scores {
		if s != i {
			t.Errorf("scores[%d] = %d, want %d", i, s, i)
		}
	}
}

func TestStopShortCircuitsFurtherSplits(t *testing.T) {
	p := New(2)
	p.Stop()
	if _, ok := p.TryAcquire(); ok {
		t.Fatal("TryAcquire should refuse tickets once stopped")
	}
	if !p.Stopped() {
		t.Fatal("Stopped should report true after Stop")
	}
	p.Reset()
	if p.Stopped() {
		t.Fatal("Reset should clear the stop flag")
	}
}

func TestTryAcquireRespectsCapacity(t *testing.T) {
	p := New(1)
	release, ok := p.TryAcquire()
	if !ok {
		t.Fatal("first TryAcquire should succeed")
	}
	if _, ok := p.TryAcquire(); ok {
		t.Fatal("second TryAcquire should fail when the single ticket is held")
	}
	release()
	if _, ok := p.TryAcquire(); !ok {
		t.Fatal("TryAcquire should succeed again after release")
	}
}
