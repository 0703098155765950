package engine

import "github.com/ekmadsen/chesscore/internal/board"

// pvTable is the triangular principal-variation table used by the
// search: one row per ply, sized MaxPly+2, where an improving
// move at ply p is recorded followed by a copy of the continuation already
// recorded one ply deeper.
type pvTable struct {
	moves  [MaxPly + 2][MaxPly + 2]board.Move
	length [MaxPly + 2]int
}

// clear empties every row. The search does not call it; each node resets
// its own row's length on entry.
func (t *pvTable) clear() {
	for i := range t.length {
		t.length[i] = 0
	}
}

// update records m as the best move at ply, followed by the continuation
// already recorded at ply+1.
func (t *pvTable) update(ply int, m board.Move) {
	if ply < 0 || ply >= len(t.moves) {
		return
	}
	t.moves[ply][0] = m
	childLen := 0
	if ply+1 < len(t.length) {
		childLen = t.length[ply+1]
		copy(t.moves[ply][1:1+childLen], t.moves[ply+1][:childLen])
	}
	t.length[ply] = childLen + 1
}

// line returns the recorded principal variation starting at ply.
func (t *pvTable) line(ply int) []board.Move {
	if ply < 0 || ply >= len(t.length) {
		return nil
	}
	return append([]board.Move(nil), t.moves[ply][:t.length[ply]]...)
}
