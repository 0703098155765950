package engine

import (
	"testing"
	"time"

	"github.com/ekmadsen/chesscore/internal/board"
	"github.com/ekmadsen/chesscore/internal/eval"
)

func TestPerftStartPosition(t *testing.T) {
	e := NewEngine(1)
	pos := board.NewPosition()

	cases := []struct {
		depth int
		want  uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	for _, c := range cases {
		got := e.Perft(pos, c.depth)
		if got != c.want {
			t.Errorf("Perft(depth=%d) = %d, want %d", c.depth, got, c.want)
		}
	}
}

func TestPerftKiwipete(t *testing.T) {
	e := NewEngine(1)
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if got := e.Perft(pos, 1); got != 48 {
		t.Errorf("Perft(depth=1) = %d, want 48", got)
	}
	if got := e.Perft(pos, 2); got != 2039 {
		t.Errorf("Perft(depth=2) = %d, want 2039", got)
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	e := NewEngine(4)
	// White to move, a simple back-rank mate: Ra8# with the white rook on
	// a1, black king on g8 boxed in by its own pawns.
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	best := e.SearchWithLimits(pos, SearchLimits{Depth: 4})
	if best == board.NoMove {
		t.Fatalf("expected a move, got NoMove")
	}
	if !eval.IsMateScore(e.rootScore) {
		t.Fatalf("expected a mate score, got %d for move %s", e.rootScore, best)
	}
}

func TestSearchRespectsNodeLimit(t *testing.T) {
	e := NewEngine(4)
	pos := board.NewPosition()
	best := e.SearchWithLimits(pos, SearchLimits{Depth: MaxHorizon, Nodes: 500})
	if best == board.NoMove {
		t.Fatalf("expected a move even under a tight node budget")
	}
	if e.bd.Nodes < 500 {
		// A tiny overshoot past the limit is expected (checked every
		// nodePollMask+1 nodes), but it must not stop before the limit.
		t.Fatalf("search stopped after %d nodes, before the 500-node limit", e.bd.Nodes)
	}
}

func TestSearchSingleLegalMoveIsInstant(t *testing.T) {
	e := NewEngine(1)
	// Black king in the corner with exactly one legal move (Kg8 forced by
	// check from the rook, everything else covered).
	pos, err := board.ParseFEN("7k/8/6K1/8/8/8/8/7R b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	start := time.Now()
	best := e.SearchWithLimits(pos, SearchLimits{Depth: MaxHorizon})
	if time.Since(start) > time.Second {
		t.Fatalf("single-legal-move search should return immediately")
	}
	if best == board.NoMove {
		t.Fatalf("expected the single legal move to be returned")
	}
}

func TestClearResetsCacheAndHeuristics(t *testing.T) {
	e := NewEngine(4)
	pos := board.NewPosition()
	e.SearchWithLimits(pos, SearchLimits{Depth: 3})
	if _, ok := e.Cache.Probe(pos.Hash); !ok {
		t.Fatalf("expected the root position to be cached after a search")
	}
	e.Clear()
	if _, ok := e.Cache.Probe(pos.Hash); ok {
		t.Fatalf("expected Clear to empty the cache")
	}
}

func TestSetPositionHistoryDetectsRepetitionAcrossSearchBoundary(t *testing.T) {
	e := NewEngine(4)
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 6 5")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	// Matching hashes must sit an even number of plies back (same side to
	// move as pos); two prior occurrences plus pos itself is the true
	// third occurrence required for a threefold draw.
	e.SetPositionHistory([]uint64{pos.Hash, 0xdead, pos.Hash, 0xbeef})
	if !e.isRepetition(pos) {
		t.Fatalf("expected a position matching the pre-root history twice to be flagged as a repetition")
	}
}

func TestSetPositionHistorySingleMatchIsNotRepetition(t *testing.T) {
	e := NewEngine(4)
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 6 5")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	e.SetPositionHistory([]uint64{0xdead, pos.Hash, 0xbeef})
	if e.isRepetition(pos) {
		t.Fatalf("a single prior occurrence is only a twofold repetition, not a draw")
	}
}
