package board

// MaxPositionStack bounds how many plies a single search can make/unmake
// without unwinding — generous headroom over MaxHorizon plus quiescence.
const MaxPositionStack = 256

// Board owns the ordered stack of positions a search walks while it plays
// and unplays moves. It is the single owner of position storage: Position
// values borrowed from it by index are never copied out and back by the
// search, only mutated in place through MakeMove/UnmakeMove.
//
// Alongside the stack it holds the node counter and the "next time to
// examine time" watermark the search polls against, since both are
// properties of one board-in-use, not of any single position.
type Board struct {
	stack [MaxPositionStack]Position
	ply   int // index of the current position in stack

	Nodes uint64 // total nodes visited since the last ResetNodes

	// NextTimeCheck is the node count at which the search should next
	// examine elapsed time; advanced by the caller after each check so
	// the poll only happens every few thousand nodes.
	NextTimeCheck uint64
}

// NewBoard creates a Board whose current position is the standard start.
func NewBoard() *Board {
	b := &Board{}
	b.stack[0] = *NewPosition()
	return b
}

// NewBoardFromPosition creates a Board whose current position is pos.
func NewBoardFromPosition(pos *Position) *Board {
	b := &Board{}
	b.stack[0] = *pos
	return b
}

// Current returns the position at the top of the stack.
func (b *Board) Current() *Position {
	return &b.stack[b.ply]
}

// Ply returns the number of moves made since the board was created (the
// current stack depth).
func (b *Board) Ply() int {
	return b.ply
}

// History returns the position that was current n plies ago (n=0 is the
// current position), for repetition detection over the position stack.
func (b *Board) History(n int) *Position {
	idx := b.ply - n
	if idx < 0 {
		idx = 0
	}
	return &b.stack[idx]
}

// MakeMove copies the current position into the next stack slot, mutates
// it in place via Position.MakeMove, and advances the stack pointer.
// Returns whether the move left the mover's king safe (legal) and whether
// it gives check (givesCheck).
func (b *Board) MakeMove(m Move) (legal, givesCheck bool) {
	us := b.Current().SideToMove
	b.stack[b.ply+1] = b.stack[b.ply]
	b.ply++
	cur := b.Current()
	undo := cur.MakeMove(m)
	if !undo.Valid {
		b.ply--
		return false, false
	}
	if cur.IsSquareAttacked(cur.KingSquare[us], cur.SideToMove) {
		cur.UnmakeMove(m, undo)
		b.ply--
		return false, false
	}
	givesCheck = cur.InCheck()
	b.Nodes++
	return true, givesCheck
}

// UnmakeMove decrements the stack pointer, discarding the mutated slot and
// restoring the prior position. The move itself is not replayed backwards:
// the previous slot already holds the pre-move state.
func (b *Board) UnmakeMove() {
	if b.ply > 0 {
		b.ply--
	}
}

// MakeNullMove plays a null move onto the stack the same way MakeMove does,
// returning the undo token Position.MakeNullMove produces.
func (b *Board) MakeNullMove() NullMoveUndo {
	b.stack[b.ply+1] = b.stack[b.ply]
	b.ply++
	return b.Current().MakeNullMove()
}

// UnmakeNullMove undoes a null move made with MakeNullMove.
func (b *Board) UnmakeNullMove(undo NullMoveUndo) {
	if b.ply > 0 {
		b.ply--
	}
}

// ResetNodes zeroes the node counter, called at the start of each new
// search.
func (b *Board) ResetNodes() {
	b.Nodes = 0
	b.NextTimeCheck = 0
}

// CountRepetitions returns how many times the current position's hash has
// occurred already earlier in the stack, back to the last irreversible
// move (halfmove clock reset).
func (b *Board) CountRepetitions() int {
	cur := b.Current()
	count := 0
	limit := cur.HalfMoveClock
	if limit > b.ply {
		limit = b.ply
	}
	for i := 2; i <= limit; i += 2 {
		if b.stack[b.ply-i].Hash == cur.Hash {
			count++
		}
	}
	return count
}

// IsRepetition reports whether the current position's hash has occurred
// at least twice already earlier in the stack — i.e. the current
// position is itself the third occurrence. Used for threefold-repetition
// detection.
func (b *Board) IsRepetition() bool {
	return b.CountRepetitions() >= 2
}
