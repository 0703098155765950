// Package heuristics implements the move-ordering heuristics the search
// consults but does not itself generate moves from: per-ply killer-move
// slots and a piece×to-square history table with decaying updates.
package heuristics

import "github.com/ekmadsen/chesscore/internal/board"

// MaxPly bounds the number of search plies the killer table tracks —
// generous headroom over the engine's MaxHorizon plus quiescence.
const MaxPly = 128

// killerEntry is the (colored piece, to-square) pair a killer slot stores;
// board.Move equality already ignores ordering-key bits, but a slot only
// ever needs to compare piece+to, not the full move, since that is all
// MVV/LVA-free quiet-move identity requires.
type killerEntry struct {
	piece board.Piece
	to    board.Square
}

// noKiller is the zero value every empty slot holds (a white pawn to a8,
// which always promotes and so is never stored as a quiet killer).
var noKiller = killerEntry{}

// Killers holds two killer slots per ply: quiet moves that caused a
// beta-cutoff at a sibling node at the same ply, tried early at other
// siblings before falling back to history-ordered quiet moves.
type Killers struct {
	slots [MaxPly][2]killerEntry
}

// NewKillers creates an empty killer table.
func NewKillers() *Killers {
	return &Killers{}
}

// Clear resets every slot, called on a new game (Engine.Clear).
func (k *Killers) Clear() {
	*k = Killers{}
}

// Update records m (made by the mover of piece to square to) as the newest
// killer at ply: slot 0 shifts into slot 1 and m takes slot 0, unless m
// already equals slot 0 (a move is never stored twice at one ply).
func (k *Killers) Update(ply int, piece board.Piece, to board.Square) {
	if ply < 0 || ply >= MaxPly {
		return
	}
	entry := killerEntry{piece: piece, to: to}
	if k.slots[ply][0] == entry {
		return
	}
	k.slots[ply][1] = k.slots[ply][0]
	k.slots[ply][0] = entry
}

// Value returns 2 if (piece, to) is the ply's first killer, 1 if it is the
// second, 0 otherwise.
func (k *Killers) Value(ply int, piece board.Piece, to board.Square) int {
	if ply < 0 || ply >= MaxPly {
		return 0
	}
	entry := killerEntry{piece: piece, to: to}
	if k.slots[ply][0] == entry && entry != noKiller {
		return 2
	}
	if k.slots[ply][1] == entry && entry != noKiller {
		return 1
	}
	return 0
}

// Rank returns the killer rank (0, 1 or 2) for packing onto a board.Move's
// KillerRank ordering field: 2 for the first slot, 1 for the second, 0
// otherwise — the same priority Value reports, just pre-shifted for the
// packed-move convention where 0 means "not a killer".
func (k *Killers) Rank(ply int, piece board.Piece, to board.Square) int {
	return k.Value(ply, piece, to)
}

// ShiftTowardRoot is called when a new iterative-deepening iteration
// begins: slide each ply's killers depth plies toward the root (the engine
// passes 2: the next iteration searches the same subtrees one ply
// shallower, so a killer found at ply p+2 in the last iteration is likely
// to still cut at ply p). An out-of-range shift (requesting a shift whose
// source ply would fall off the end of the table) resets the whole table
// rather than guessing at a partial copy.
func (k *Killers) ShiftTowardRoot(depth int) {
	if depth <= 0 || depth >= MaxPly {
		k.Clear()
		return
	}
	for ply := 0; ply+depth < MaxPly; ply++ {
		k.slots[ply] = k.slots[ply+depth]
	}
	for ply := MaxPly - depth; ply < MaxPly; ply++ {
		k.slots[ply] = [2]killerEntry{}
	}
}
