package engine

import (
	"testing"

	"github.com/ekmadsen/chesscore/internal/board"
)

func TestQuiescenceResolvesHangingQueenCapture(t *testing.T) {
	e := NewEngine(4)
	// White to move; the undefended black queen on d8 hangs to the white
	// queen on d1 (the black king on h8 cannot recapture). A search that
	// didn't resolve the capture in quiescence would misjudge the position
	// as roughly balanced.
	pos, err := board.ParseFEN("3q3k/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	e.bd = board.NewBoardFromPosition(pos)
	score := e.quiescence(0, -MateScore, MateScore)
	if score < 800 {
		t.Fatalf("expected quiescence to find the queen win, got %d", score)
	}
}

func TestNegamaxReturnsDrawScoreForStalemate(t *testing.T) {
	e := NewEngine(4)
	// Classic stalemate: black king a8 has no legal move, not in check.
	pos, err := board.ParseFEN("k7/8/1QK5/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if !pos.IsStalemate() {
		t.Fatalf("setup error: expected FEN position to be stalemate")
	}
	e.bd = board.NewBoardFromPosition(pos)
	score := e.negamax(1, 4, -MateScore, MateScore, board.NoMove, false)
	if score != 0 {
		t.Fatalf("expected a draw score of 0 for stalemate, got %d", score)
	}
}

func TestNegamaxFindsForcedMate(t *testing.T) {
	e := NewEngine(4)
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	e.bd = board.NewBoardFromPosition(pos)
	score := e.negamax(0, 3, -MateScore, MateScore, board.NoMove, false)
	if score < MateScore-10 {
		t.Fatalf("expected a near-immediate mate score, got %d", score)
	}
}

func TestPVTableRecordsPrincipalVariation(t *testing.T) {
	e := NewEngine(4)
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	e.bd = board.NewBoardFromPosition(pos)
	e.negamax(0, 3, -MateScore, MateScore, board.NoMove, false)
	pv := e.pv.line(0)
	if len(pv) == 0 {
		t.Fatalf("expected a non-empty principal variation")
	}
	if !pos.GenerateLegalMoves().Contains(pv[0]) {
		t.Fatalf("PV's first move %s is not a legal root move", pv[0])
	}
}
