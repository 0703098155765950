// Package tuner runs many independent, fully-isolated searches over a
// worklist of positions concurrently. It fans out one engine.Engine per
// goroutine — never shares a position or a transposition table across
// goroutines — since the search itself stays single-threaded per the
// engine's own design.
package tuner

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ekmadsen/chesscore/internal/board"
	"github.com/ekmadsen/chesscore/internal/engine"
)

// Task describes one position to search and the limits to search it under.
type Task struct {
	FEN    string
	Limits engine.SearchLimits
}

// Result is the outcome of searching one Task.
type Result struct {
	FEN   string
	Move  board.Move
	Score int
	Nodes uint64
	Err   error
}

// Options configures a Run.
type Options struct {
	// Workers is the number of concurrent engine.Engine instances. Zero
	// or negative means one worker per task (capped by errgroup's
	// default unlimited behavior, i.e. len(tasks) goroutines).
	Workers int
	// HashSizeMB is the transposition table size given to every worker
	// engine. Each worker gets its own table; nothing is shared.
	HashSizeMB int
}

// Run searches every task in tasks, returning one Result per task in the
// same order tasks were given. A worker's search failing to produce a
// legal move (e.g. a malformed FEN) is reported in that Result's Err
// field rather than aborting the whole run.
func Run(ctx context.Context, tasks []Task, opts Options) ([]Result, error) {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	var next int64 = -1
	worklist := func() (int, bool) {
		i := int(atomic.AddInt64(&next, 1))
		if i >= len(tasks) {
			return 0, false
		}
		return i, true
	}

	workerCount := opts.Workers
	if workerCount <= 0 || workerCount > len(tasks) {
		workerCount = len(tasks)
	}

	for w := 0; w < workerCount; w++ {
		g.Go(func() error {
			eng := engine.NewEngine(opts.HashSizeMB)
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				i, ok := worklist()
				if !ok {
					return nil
				}

				results[i] = runOne(eng, tasks[i])
			}
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runOne(eng *engine.Engine, task Task) Result {
	pos, err := board.ParseFEN(task.FEN)
	if err != nil {
		return Result{FEN: task.FEN, Err: err}
	}

	eng.Clear()
	limits := task.Limits
	if limits.Depth == 0 && limits.Nodes == 0 && limits.MoveTime == 0 && !limits.Infinite {
		limits.Depth = 6
	}

	move := eng.SearchWithLimits(pos, limits)
	_, score, _ := eng.LastResult()
	return Result{FEN: task.FEN, Move: move, Score: score, Nodes: eng.NodeCount()}
}
