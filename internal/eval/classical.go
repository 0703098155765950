package eval

import "github.com/ekmadsen/chesscore/internal/board"

// pieceValue holds midgame material values, indexed by piece type.
var pieceValue = [6]int{100, 320, 330, 500, 900, 20000}

// pieceValueEG is the same table for the endgame phase: rooks and queens
// gain a little relative value as mating material thins out, bishops and
// knights lose a little as they have fewer pawns to leverage.
var pieceValueEG = [6]int{120, 300, 320, 530, 920, 20000}

// pst holds middlegame/endgame piece-square tables indexed [pieceType][sq],
// White's perspective, each table written rank 1 first (row 0 is rank 1,
// row 7 is rank 8). board.Square numbers A8=0, so a White square is
// mirrored before lookup and a Black square is looked up as is.
var pstMG = [6][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST,
}
var pstEG = [6][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST, kingEndgamePST,
}

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var kingEndgamePST = [64]int{
	-50, -30, -30, -30, -30, -30, -30, -50,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-50, -40, -30, -20, -20, -30, -40, -50,
}

// mirror flips a square vertically (a8 <-> a1), converting between
// board.Square's A8=0 numbering and the tables' rank-1-first rows.
func mirror(sq board.Square) board.Square {
	return sq ^ 56
}

func interp(mg, eg int, phase Phase) int {
	return (mg*int(phase) + eg*(phaseMax-int(phase))) / phaseMax
}

// Classical is a minimal material+PST evaluator satisfying Evaluator. It
// is illustrative, not tuned: the evaluator is treated as a swappable
// oracle, and the search's own heuristics are this repo's focus.
type Classical struct{}

// NewClassical creates a Classical evaluator.
func NewClassical() *Classical { return &Classical{} }

// StaticScore implements Evaluator.
func (c *Classical) StaticScore(pos *board.Position) (int, bool, Phase) {
	phase := ComputePhase(pos)
	mg, eg := 0, 0

	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[color][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				lookup := mirror(sq)
				if color == board.Black {
					lookup = sq
				}
				mg += sign * (pieceValue[pt] + pstMG[pt][lookup])
				eg += sign * (pieceValueEG[pt] + pstEG[pt][lookup])
			}
		}
	}

	score := interp(mg, eg, phase)
	if pos.SideToMove == board.Black {
		score = -score
	}

	drawn := isDrawnEndgame(pos)
	if score > MaxNonMate {
		score = MaxNonMate
	}
	if score < -MaxNonMate {
		score = -MaxNonMate
	}
	return score, drawn, phase
}

// isDrawnEndgame recognizes the simplest drawn material classes: no pawns,
// rooks or queens, and at most one minor piece per side (bare kings, a
// lone king facing a minor piece, or one minor piece each).
func isDrawnEndgame(pos *board.Position) bool {
	if pos.Pieces[board.White][board.Pawn] != 0 || pos.Pieces[board.Black][board.Pawn] != 0 {
		return false
	}
	if pos.Pieces[board.White][board.Rook] != 0 || pos.Pieces[board.Black][board.Rook] != 0 {
		return false
	}
	if pos.Pieces[board.White][board.Queen] != 0 || pos.Pieces[board.Black][board.Queen] != 0 {
		return false
	}

	minors := func(c board.Color) int {
		return pos.Pieces[c][board.Knight].PopCount() + pos.Pieces[c][board.Bishop].PopCount()
	}
	return minors(board.White) <= 1 && minors(board.Black) <= 1
}

// PieceMaterial implements Evaluator.
func (c *Classical) PieceMaterial(pt board.PieceType, phase Phase) int {
	if pt >= board.NoPieceType {
		return 0
	}
	return interp(pieceValue[pt], pieceValueEG[pt], phase)
}

// PieceLocationDelta implements Evaluator.
func (c *Classical) PieceLocationDelta(pos *board.Position, m board.Move, phase Phase) int {
	piece := pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return 0
	}
	pt := piece.Type()
	color := piece.Color()

	from, to := m.From(), m.To()
	if color == board.White {
		from, to = mirror(from), mirror(to)
	}

	mgDelta := pstMG[pt][to] - pstMG[pt][from]
	egDelta := pstEG[pt][to] - pstEG[pt][from]
	return interp(mgDelta, egDelta, phase)
}
