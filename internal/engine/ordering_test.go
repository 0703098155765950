package engine

import (
	"testing"

	"github.com/ekmadsen/chesscore/internal/board"
)

func TestMoveSourceRejectsStaleHashMove(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	// A hash move reconstructed from a stale or hash-collided cache entry
	// whose From() holds no friendly piece (e7 is empty here) must never
	// be yielded as the best move — the unguarded stageBest branch would
	// otherwise hand it straight back without consulting the position at
	// all.
	stale := board.NewMove(board.E7, board.E6)

	src := NewMoveSource(pos, 0, stale, board.Universe, nil, nil)
	m, ok := src.Next()
	if !ok {
		t.Fatalf("expected at least one legal king move from the lone-king position")
	}
	if m.Equal(stale) || m.IsBest() {
		t.Fatalf("MoveSource yielded a stale hash move with no friendly piece at its From() square: %s", m)
	}
}
