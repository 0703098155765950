// Package eval implements the evaluation contract the search engine
// consumes: a static score and game phase for a position, plus the
// material/location helpers futility pruning needs and the mate-score
// conversion utilities shared across the cache and search.
//
// The evaluator's internals are explicitly not part of the core contract;
// it is an external oracle. This package ships one concrete, minimal
// classical evaluator (material + piece-square tables) behind that
// interface, purely to give the search something real to call; a driver
// is free to swap in a different Evaluator.
package eval

import "github.com/ekmadsen/chesscore/internal/board"

// MaxNonMate bounds every non-mate score the evaluator may return: outputs
// are always in [-MaxNonMate, +MaxNonMate] except for mate scores.
const MaxNonMate = 28000

// MateScore is the score awarded for delivering mate on the current move;
// MatingScore/MatedScore offset it by search depth so a shallower mate is
// always preferred over a deeper one.
const MateScore = 30000

// MaxMateDepth bounds how many plies below MateScore still count as a
// "mate score" for AdjustScoreToTT/FromTT and for MateMoveCount.
const MaxMateDepth = 128

// Phase is a scalar in [0, 256] measuring closeness to the endgame: 256 is
// the full material of the opening position, 0 is a bare-kings endgame.
// PST and material terms interpolate between their middlegame and endgame
// values using Phase/256.
type Phase int

const phaseMax = 256

var phaseWeight = [7]int{0, 1, 1, 2, 4, 0, 0} // pawn, knight, bishop, rook, queen, king, none
var totalPhaseUnits = phaseWeight[board.Knight]*4 + phaseWeight[board.Bishop]*4 +
	phaseWeight[board.Rook]*4 + phaseWeight[board.Queen]*2

// ComputePhase derives the game phase from the material remaining on the
// board.
func ComputePhase(pos *board.Position) Phase {
	units := 0
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Knight; pt <= board.Queen; pt++ {
			units += pos.Pieces[c][pt].PopCount() * phaseWeight[pt]
		}
	}
	if units > totalPhaseUnits {
		units = totalPhaseUnits
	}
	return Phase(units * phaseMax / totalPhaseUnits)
}

// Evaluator is the contract the search consumes. StaticScore returns the
// score from the side-to-move's perspective (positive is good for the
// side to move), whether the position is a drawn endgame class the search
// should special-case (e.g. KvK, KvKN), and the position's phase.
type Evaluator interface {
	StaticScore(pos *board.Position) (score int, drawnEndgame bool, phase Phase)

	// PieceMaterial returns the material value of pt interpolated by
	// phase, used by futility pruning's gain estimate for a capture.
	PieceMaterial(pt board.PieceType, phase Phase) int

	// PieceLocationDelta estimates the positional (PST) swing of playing
	// m, interpolated by phase — used by futility pruning alongside
	// PieceMaterial so the margin accounts for more than raw material.
	PieceLocationDelta(pos *board.Position, m board.Move, phase Phase) int
}

// MatingScore returns the score for delivering mate at search depth ply
// (ply plies below the root): shallower mates score higher.
func MatingScore(ply int) int {
	return MateScore - ply
}

// MatedScore returns the score for being mated at search depth ply.
func MatedScore(ply int) int {
	return -MateScore + ply
}

// IsMateScore reports whether score represents a forced mate (for or
// against the side to move) rather than a positional evaluation.
func IsMateScore(score int) bool {
	return score > MateScore-MaxMateDepth || score < -MateScore+MaxMateDepth
}

// MateMoveCount converts a mate score into the number of moves (not
// plies) to deliver or receive mate; positive favors the side to move,
// negative means the side to move is being mated.
func MateMoveCount(score int) int {
	if score > MateScore-MaxMateDepth {
		return (MateScore - score + 1) / 2
	}
	if score < -MateScore+MaxMateDepth {
		return -(MateScore + score + 1) / 2
	}
	return 0
}
