package eval

import (
	"testing"

	"github.com/ekmadsen/chesscore/internal/board"
)

func TestStaticScoreSymmetric(t *testing.T) {
	c := NewClassical()
	pos := board.NewPosition()
	score, drawn, phase := c.StaticScore(pos)
	if drawn {
		t.Fatalf("start position must not be a drawn endgame")
	}
	if score != 0 {
		t.Fatalf("start position should be balanced, got %d", score)
	}
	if phase != Phase(phaseMax) {
		t.Fatalf("start position should be at full phase, got %d", phase)
	}
}

func TestStaticScoreFavorsMaterial(t *testing.T) {
	c := NewClassical()
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	score, _, _ := c.StaticScore(pos)
	if score <= 0 {
		t.Fatalf("extra pawn should score positive for white, got %d", score)
	}
}

func TestIsDrawnEndgameBareKings(t *testing.T) {
	c := NewClassical()
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	_, drawn, _ := c.StaticScore(pos)
	if !drawn {
		t.Fatalf("bare kings should be a drawn endgame")
	}
}

func TestMateScoreConversions(t *testing.T) {
	s := MatingScore(3)
	if !IsMateScore(s) {
		t.Fatalf("MatingScore(3) should be recognized as a mate score")
	}
	if got := MateMoveCount(s); got != 2 {
		t.Fatalf("MateMoveCount(MatingScore(3)) = %d, want 2", got)
	}

	s = MatedScore(4)
	if !IsMateScore(s) {
		t.Fatalf("MatedScore(4) should be recognized as a mate score")
	}
	if got := MateMoveCount(s); got >= 0 {
		t.Fatalf("MateMoveCount for a mated score should be negative, got %d", got)
	}
}

func TestPieceLocationDeltaRewardsCentralization(t *testing.T) {
	c := NewClassical()
	pos := board.NewPosition()
	m := board.NewDoublePawnPush(board.E2, board.E4)
	delta := c.PieceLocationDelta(pos, m, Phase(phaseMax))
	if delta <= 0 {
		t.Fatalf("advancing a pawn to the center should have a positive PST delta, got %d", delta)
	}
}
