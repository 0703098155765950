package heuristics

import "github.com/ekmadsen/chesscore/internal/board"

// MaxHistory mirrors board.MaxHistory, the asymptote this table's values
// saturate toward in either direction — the same bound the packed move's
// history field biases against.
const MaxHistory = board.MaxHistory

// gravityDivisor is chosen so the update formula's fixed point lands
// exactly on ±MaxHistory: at equilibrium, increment*1024 == h*|increment|/
// gravityDivisor, i.e. h == 1024*gravityDivisor. Solving for gravityDivisor
// so h saturates at MaxHistory gives MaxHistory/1024.
const gravityDivisor = MaxHistory / 1024

// History is the piece×to-square history table: a signed score of how
// often a (piece, destination) pair has caused a beta-cutoff, updated with
// decay toward an asymptote so no single bonus swamps the whole table.
type History struct {
	scores [12][64]int32
}

// NewHistory creates an empty history table.
func NewHistory() *History {
	return &History{}
}

// Clear zeroes every entry, called on "new game".
func (h *History) Clear() {
	*h = History{}
}

// Update applies the gravity-decay formula for (piece, to):
//
//	h ← h + increment·1024 − h·|increment|/gravityDivisor
//
// Positive increment rewards a cutoff move; negative increment penalizes a
// quiet move that was tried and failed to cut before the cutoff move was
// found, so that move ends up ranked below moves that have never been
// tried there at all.
func (h *History) Update(piece board.Piece, to board.Square, increment int) {
	if piece == board.NoPiece {
		return
	}
	cur := int64(h.scores[piece][to])
	inc := int64(increment)
	abs := inc
	if abs < 0 {
		abs = -abs
	}
	next := cur + inc*1024 - cur*abs/gravityDivisor
	if next > MaxHistory {
		next = MaxHistory
	}
	if next < -MaxHistory {
		next = -MaxHistory
	}
	h.scores[piece][to] = int32(next)
}

// Value returns the current signed history score for (piece, to).
func (h *History) Value(piece board.Piece, to board.Square) int {
	if piece == board.NoPiece {
		return 0
	}
	return int(h.scores[piece][to])
}

// Age shrinks every entry toward zero by 244/256 between iterative-
// deepening iterations, so history accumulated in shallow, fast early
// iterations does not permanently dominate move ordering in deep ones.
func (h *History) Age() {
	for p := range h.scores {
		for sq := range h.scores[p] {
			h.scores[p][sq] = int32(int64(h.scores[p][sq]) * 244 / 256)
		}
	}
}
