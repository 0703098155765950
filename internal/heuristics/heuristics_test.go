package heuristics

import (
	"testing"

	"github.com/ekmadsen/chesscore/internal/board"
)

func TestKillersUpdateAndShift(t *testing.T) {
	k := NewKillers()
	wn := board.NewPiece(board.Knight, board.White)
	wb := board.NewPiece(board.Bishop, board.White)

	k.Update(3, wn, board.F3)
	if k.Value(3, wn, board.F3) != 2 {
		t.Fatalf("first killer should rank 2")
	}

	k.Update(3, wb, board.C4)
	if k.Value(3, wb, board.C4) != 2 {
		t.Fatalf("newest killer should take slot 0 (rank 2)")
	}
	if k.Value(3, wn, board.F3) != 1 {
		t.Fatalf("displaced killer should shift to slot 1 (rank 1)")
	}

	// Re-recording the current slot-0 killer must not duplicate it into
	// slot 1.
	k.Update(3, wb, board.C4)
	if k.Value(3, wn, board.F3) != 1 {
		t.Fatalf("re-recording slot 0 should not disturb slot 1")
	}
}

func TestKillersShiftTowardRoot(t *testing.T) {
	k := NewKillers()
	wn := board.NewPiece(board.Knight, board.White)
	k.Update(5, wn, board.F3)

	k.ShiftTowardRoot(2)
	if k.Value(3, wn, board.F3) != 2 {
		t.Fatalf("killer at ply 5 should have shifted to ply 3")
	}

	k.ShiftTowardRoot(MaxPly) // out of range -> full reset
	if k.Value(3, wn, board.F3) != 0 {
		t.Fatalf("out-of-range shift should reset the table entirely")
	}
}

func TestHistoryAsymptotesTowardMax(t *testing.T) {
	h := NewHistory()
	p := board.NewPiece(board.Pawn, board.White)

	for i := 0; i < 100000; i++ {
		h.Update(p, board.E4, 400)
	}
	if v := h.Value(p, board.E4); v <= 0 || v > MaxHistory {
		t.Fatalf("history should saturate within (0, MaxHistory], got %d", v)
	}

	// Negative updates should pull the score down.
	before := h.Value(p, board.E4)
	h.Update(p, board.E4, -400)
	if h.Value(p, board.E4) >= before {
		t.Fatalf("negative increment should decrease the score")
	}
}

func TestHistoryAge(t *testing.T) {
	h := NewHistory()
	p := board.NewPiece(board.Queen, board.Black)
	h.Update(p, board.D5, 1000)
	before := h.Value(p, board.D5)

	h.Age()
	after := h.Value(p, board.D5)
	if after >= before {
		t.Fatalf("Age should shrink the score toward zero: before=%d after=%d", before, after)
	}
}
