package engine

import (
	"github.com/ekmadsen/chesscore/internal/board"
	"github.com/ekmadsen/chesscore/internal/heuristics"
)

// stage is the staged move-generation state machine: best move
// first, then captures (MVV/LVA-sorted via the packed move's numeric
// ordering), then quiet moves (killer/history-sorted), then done.
type stage int

const (
	stageBest stage = iota
	stageCaptures
	stageQuiet
	stageDone
)

// MoveSource is the staged move-generation capability the main search
// consults: a small state machine, modeled as a tagged variant rather than
// a dynamically-dispatched interface. It yields the hash-table best move
// first, then captures, then quiet moves, each stage internally sorted by
// the packed move's numeric priority.
//
// toMask restricts every stage to moves landing on a destination square in
// toMask — a single-square mask restricts the source to one target square;
// the main search and quiescence's in-check nodes pass board.Universe.
type MoveSource struct {
	pos      *board.Position
	ply      int
	hashMove board.Move
	toMask   board.Bitboard
	killers  *heuristics.Killers
	history  *heuristics.History

	st   stage
	list *board.MoveList
	idx  int
}

// NewMoveSource creates a staged move source for the main search at ply,
// with hashMove (board.NoMove if none cached) tried first and captures/
// quiets restricted to toMask.
func NewMoveSource(pos *board.Position, ply int, hashMove board.Move, toMask board.Bitboard, killers *heuristics.Killers, history *heuristics.History) *MoveSource {
	return &MoveSource{pos: pos, ply: ply, hashMove: hashMove, toMask: toMask, killers: killers, history: history, st: stageBest}
}

// Next returns the next move in staged priority order, or (NoMove, false)
// once every stage is exhausted. The returned move carries its ordering
// bits set (best/capture/killer/history) but these do not affect
// move.Equal or identity — only board.MoveList.SortDescending's priority.
func (s *MoveSource) Next() (board.Move, bool) {
	for {
		switch s.st {
		case stageBest:
			s.st = stageCaptures
			if s.hashMove != board.NoMove && board.SquareBB(s.hashMove.To())&s.toMask != 0 {
				if canon, ok := s.pos.Canonicalize(s.hashMove); ok {
					return canon.WithBest(), true
				}
			}

		case stageCaptures:
			if s.list == nil {
				s.list = filterToMask(s.pos.GenerateCaptures(), s.toMask)
				tagOrdering(s.pos, s.list, s.ply, s.killers, s.history)
				s.list.SortDescending()
				s.idx = 0
			}
			if s.idx < s.list.Len() {
				m := s.list.Get(s.idx)
				s.idx++
				if m.Equal(s.hashMove) {
					continue
				}
				return m, true
			}
			s.st = stageQuiet
			s.list = nil

		case stageQuiet:
			if s.list == nil {
				s.list = filterToMask(quietMoves(s.pos), s.toMask)
				tagOrdering(s.pos, s.list, s.ply, s.killers, s.history)
				s.list.SortDescending()
				s.idx = 0
			}
			if s.idx < s.list.Len() {
				m := s.list.Get(s.idx)
				s.idx++
				if m.Equal(s.hashMove) {
					continue
				}
				return m, true
			}
			s.st = stageDone

		case stageDone:
			return board.NoMove, false
		}
	}
}

// QuiescenceSource is the quiescence-search variant of MoveSource: it only
// ever yields captures, optionally restricted to a single
// destination square for recapture continuation.
type QuiescenceSource struct {
	list *board.MoveList
	idx  int
}

// NewQuiescenceSource generates and sorts the capture list for pos,
// restricted to toMask (board.Universe for a normal quiescence node, or a
// single square for a forced-recapture continuation).
func NewQuiescenceSource(pos *board.Position, toMask board.Bitboard) *QuiescenceSource {
	list := filterToMask(pos.GenerateCaptures(), toMask)
	tagOrdering(pos, list, 0, nil, nil)
	list.SortDescending()
	return &QuiescenceSource{list: list}
}

// Next returns the next capture, or (NoMove, false) once exhausted.
func (q *QuiescenceSource) Next() (board.Move, bool) {
	if q.idx >= q.list.Len() {
		return board.NoMove, false
	}
	m := q.list.Get(q.idx)
	q.idx++
	return m, true
}

func filterToMask(list *board.MoveList, mask board.Bitboard) *board.MoveList {
	if mask == board.Universe {
		return list
	}
	out := board.NewMoveList()
	for i := 0; i < list.Len(); i++ {
		m := list.Get(i)
		if board.SquareBB(m.To())&mask != 0 {
			out.Add(m)
		}
	}
	return out
}

// quietMoves returns every pseudo-legal move that is neither a capture nor
// a promotion (which GenerateCaptures already covers, including
// non-capturing promotion pushes).
func quietMoves(pos *board.Position) *board.MoveList {
	all := pos.GeneratePseudoLegalMoves()
	out := board.NewMoveList()
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if !m.IsCapture(pos) && !m.IsPromotion() {
			out.Add(m)
		}
	}
	return out
}

// tagOrdering fills in the packed move's ordering-key bits (capture MVV/
// LVA, killer rank, history score, direct-check flag) for every move in
// list, in place. killers/history may be nil (quiescence tagging skips
// killer/history scoring, since quiescence has neither table).
func tagOrdering(pos *board.Position, list *board.MoveList, ply int, killers *heuristics.Killers, history *heuristics.History) {
	for i := 0; i < list.Len(); i++ {
		m := list.Get(i)
		piece := pos.PieceAt(m.From())

		if m.IsCapture(pos) {
			var victim board.PieceType
			if m.IsEnPassant() {
				victim = board.Pawn
			} else {
				victim = pos.PieceAt(m.To()).Type()
			}
			attacker := board.NoPieceType
			if piece != board.NoPiece {
				attacker = piece.Type()
			}
			m = m.WithCapture(victim, attacker)
		}

		if killers != nil && piece != board.NoPiece {
			m = m.WithKillerRank(killers.Rank(ply, piece, m.To()))
		}
		if history != nil && piece != board.NoPiece {
			m = m.WithHistoryScore(history.Value(piece, m.To()))
		}
		m = m.WithCheck(givesDirectCheck(pos, m))

		list.Set(i, m)
	}
}

// givesDirectCheck is a cheap, direction-from-destination heuristic: it
// reports whether the moving piece, from its destination square, directly
// attacks the enemy king. It does not detect discovered checks; it exists
// purely as a move-ordering/search signal, not an authoritative
// check test — Position.InCheck after the move is authoritative.
func givesDirectCheck(pos *board.Position, m board.Move) bool {
	piece := pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return false
	}
	pt := piece.Type()
	if m.IsPromotion() {
		pt = m.Promotion()
	}

	them := pos.SideToMove.Other()
	ksq := pos.KingSquare[them]
	kingBB := board.SquareBB(ksq)

	occ := (pos.AllOccupied &^ board.SquareBB(m.From())) | board.SquareBB(m.To())

	switch pt {
	case board.Pawn:
		return board.PawnAttacks(m.To(), pos.SideToMove)&kingBB != 0
	case board.Knight:
		return board.KnightAttacks(m.To())&kingBB != 0
	case board.Bishop:
		return board.BishopAttacks(m.To(), occ)&kingBB != 0
	case board.Rook:
		return board.RookAttacks(m.To(), occ)&kingBB != 0
	case board.Queen:
		return board.QueenAttacks(m.To(), occ)&kingBB != 0
	default:
		return false
	}
}
