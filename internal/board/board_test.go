package board

import "testing"

func TestBoardMakeUnmakeRestoresState(t *testing.T) {
	b := NewBoard()
	before := *b.Current()

	m := NewDoublePawnPush(E2, E4)
	legal, _ := b.MakeMove(m)
	if !legal {
		t.Fatalf("e2e4 should be legal from the start position")
	}
	if b.Ply() != 1 {
		t.Fatalf("Ply() = %d, want 1", b.Ply())
	}
	if b.Current().EnPassant != E3 {
		t.Fatalf("EnPassant = %v, want E3", b.Current().EnPassant)
	}

	b.UnmakeMove()
	if b.Ply() != 0 {
		t.Fatalf("Ply() after unmake = %d, want 0", b.Ply())
	}
	after := *b.Current()
	if after.Hash != before.Hash || after.AllOccupied != before.AllOccupied {
		t.Fatalf("position not restored by unmake: got %+v, want %+v", after, before)
	}
}

func TestBoardRejectsIllegalMove(t *testing.T) {
	// White king on e1, white rook pinned on e2 by the black rook on e8.
	pos, err := ParseFEN("4r3/8/8/8/8/8/4R3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	b := NewBoardFromPosition(pos)

	legal, _ := b.MakeMove(NewMove(E2, A2))
	if legal {
		t.Fatalf("moving the pinned rook off the e-file should be illegal")
	}
	if b.Ply() != 0 {
		t.Fatalf("rejected move must not advance the stack, Ply() = %d", b.Ply())
	}
}

func TestBoardMakeUnmakeNullMove(t *testing.T) {
	b := NewBoard()
	before := *b.Current()

	undo := b.MakeNullMove()
	if b.Ply() != 1 {
		t.Fatalf("Ply() after null move = %d, want 1", b.Ply())
	}
	if b.Current().SideToMove != Black {
		t.Fatalf("side to move after null move = %v, want Black", b.Current().SideToMove)
	}

	b.UnmakeNullMove(undo)
	if b.Ply() != 0 {
		t.Fatalf("Ply() after unmake null move = %d, want 0", b.Ply())
	}
	if b.Current().Hash != before.Hash {
		t.Fatalf("hash not restored after null-move unmake")
	}
}

func TestBoardRepetition(t *testing.T) {
	b := NewBoard()

	moves := []Move{
		NewMove(G1, F3), NewMove(G8, F6),
		NewMove(F3, G1), NewMove(F6, G8),
		NewMove(G1, F3), NewMove(G8, F6),
		NewMove(F3, G1), NewMove(F6, G8),
	}
	for _, m := range moves {
		legal, _ := b.MakeMove(m)
		if !legal {
			t.Fatalf("move %s should be legal", m)
		}
	}

	if !b.IsRepetition() {
		t.Fatalf("expected repetition after returning to the start position twice")
	}
}
