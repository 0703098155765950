package tuner

import (
	"context"
	"testing"
	"time"

	"github.com/ekmadsen/chesscore/internal/engine"
)

func TestRunSearchesEveryTaskInOrder(t *testing.T) {
	tasks := []Task{
		{FEN: "startpos placeholder", Limits: engine.SearchLimits{Depth: 3}}, // intentionally invalid, exercises Err path
		{FEN: "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", Limits: engine.SearchLimits{Depth: 3}},
		{FEN: "6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1", Limits: engine.SearchLimits{Depth: 4}},
	}
	tasks[0].FEN = "not a fen"

	results, err := Run(context.Background(), tasks, Options{Workers: 2, HashSizeMB: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(tasks) {
		t.Fatalf("got %d results, want %d", len(results), len(tasks))
	}

	if results[0].Err == nil {
		t.Errorf("expected Err for malformed FEN, got nil")
	}
	for i := 1; i < len(tasks); i++ {
		if results[i].Err != nil {
			t.Errorf("task %d: unexpected error: %v", i, results[i].Err)
		}
		if results[i].Move == 0 {
			t.Errorf("task %d: expected a move, got none", i)
		}
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{
			FEN:    "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
			Limits: engine.SearchLimits{MoveTime: 50 * time.Millisecond},
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, tasks, Options{Workers: 4, HashSizeMB: 1}); err == nil {
		t.Errorf("expected an error from a pre-cancelled context")
	}
}

func TestRunEmptyTaskListReturnsNoResults(t *testing.T) {
	results, err := Run(context.Background(), nil, Options{Workers: 4, HashSizeMB: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}
