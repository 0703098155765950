package board

import "testing"

func TestPseudoLegalAcceptsGeneratedMove(t *testing.T) {
	pos := NewPosition()
	m := NewDoublePawnPush(E2, E4)
	if !pos.PseudoLegal(m) {
		t.Fatalf("e2e4 should be pseudo-legal from the start position")
	}
}

func TestPseudoLegalRejectsNoMove(t *testing.T) {
	pos := NewPosition()
	if pos.PseudoLegal(NoMove) {
		t.Fatalf("the null move must never be reported pseudo-legal")
	}
}

func TestPseudoLegalRejectsWrongSideToMove(t *testing.T) {
	// It's White to move; a move word whose From() holds Black's pawn
	// must be rejected outright, as it would be if reconstructed from a
	// stale or hash-collided transposition-cache entry.
	pos := NewPosition()
	m := NewMove(E7, E6)
	if pos.PseudoLegal(m) {
		t.Fatalf("a move starting from a square the side to move doesn't own must be rejected")
	}
}

func TestPseudoLegalRejectsEmptyFromSquare(t *testing.T) {
	pos := NewPosition()
	m := NewMove(E4, E5)
	if pos.PseudoLegal(m) {
		t.Fatalf("a move starting from an empty square must be rejected")
	}
}

func TestPseudoLegalRejectsBlockedSlidingPath(t *testing.T) {
	// White rook on a1 behind its own pawn on a2: a1a4 is not pseudo-legal.
	pos, err := ParseFEN("4k3/8/8/8/8/8/P7/R3K3 w Q - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	m := NewMove(A1, A4)
	if pos.PseudoLegal(m) {
		t.Fatalf("a rook move through its own blocking pawn must be rejected")
	}
}

func TestPseudoLegalRejectsBadPromotionSquare(t *testing.T) {
	// White pawn on e4: e4e5q is not a promotion (not the back rank).
	pos, err := ParseFEN("4k3/8/8/8/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	m := NewPromotion(E4, E5, Queen)
	if pos.PseudoLegal(m) {
		t.Fatalf("a promotion move to a non-back-rank square must be rejected")
	}
}

func TestPseudoLegalRejectsStaleCastleAfterRightsLost(t *testing.T) {
	// White king already moved (no castling rights left), but a move
	// word encoding e1g1 could still be reconstructed from a stale cache
	// entry predating the rook/king move.
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K2R w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	m := NewCastling(E1, G1)
	if pos.PseudoLegal(m) {
		t.Fatalf("castling without rights must be rejected")
	}
}

func TestCanonicalizeRestoresCastlingFlag(t *testing.T) {
	// A move reconstructed from a packed cache record carries only its
	// from/to/promotion fields; NewMove(E1, G1) looks identical to a king
	// sliding two squares. Canonicalize must return the generated move
	// (which does carry the castling flag), not the flagless input.
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	flagless := NewMove(E1, G1)
	canon, ok := pos.Canonicalize(flagless)
	if !ok {
		t.Fatalf("kingside castle should canonicalize successfully")
	}
	if !canon.IsCastling() {
		t.Fatalf("Canonicalize returned a move without the castling flag: %s", canon)
	}
}

func TestCanonicalizeRestoresEnPassantFlag(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	flagless := NewMove(E5, D6)
	canon, ok := pos.Canonicalize(flagless)
	if !ok {
		t.Fatalf("en passant capture should canonicalize successfully")
	}
	if !canon.IsEnPassant() {
		t.Fatalf("Canonicalize returned a move without the en-passant flag: %s", canon)
	}
}
