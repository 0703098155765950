package board

import "testing"

func TestWithCapturePanicsOnKingVictimWhenDebugEnabled(t *testing.T) {
	Debug = true
	defer func() { Debug = false }()

	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic capturing the king with Debug enabled")
		}
	}()

	m := NewMove(E2, E4)
	m.WithCapture(King, Queen)
}

func TestWithCaptureAllowedWhenDebugDisabled(t *testing.T) {
	Debug = false

	m := NewMove(E2, E4).WithCapture(Queen, Pawn)
	if !m.Equal(NewMove(E2, E4)) {
		t.Errorf("WithCapture changed move identity")
	}
}
