package engine

import (
	"github.com/ekmadsen/chesscore/internal/board"
	"github.com/ekmadsen/chesscore/internal/cache"
	"github.com/ekmadsen/chesscore/internal/eval"
)

// nodePollMask bounds how often (in nodes) the main search checks the
// clock/stop flag/node budget — checking every node would be wasteful
// except under strength-limit throttling, where Limiter.PollInterval
// forces it to 1.
const nodePollMask = 0x7FF

// negamax is the alpha-beta search core for one interior node: ply is the
// distance from the search root, toHorizon is the remaining planned
// depth, excluded is the move singular-extension verification must skip
// (board.NoMove otherwise), and inCheck tells the node whether it was
// reached by a move giving check (used for check extension).
//
// The return value is the score from the side-to-move's perspective. If
// the search is interrupted partway through, the returned score is not
// meaningful; callers must check e.stopRequested() (or rely on the root
// loop's own check) before trusting it.
func (e *Engine) negamax(ply, toHorizon int, alpha, beta int, excluded board.Move, inCheck bool) int {
	e.pv.length[ply] = 0
	if ply > e.selDepth {
		e.selDepth = ply
	}

	if e.bd.Nodes%e.Limiter.PollInterval(nodePollMask+1) == 0 && e.pollInterrupt() {
		return 0
	}

	pos := e.bd.Current()

	if ply > 0 {
		if pos.IsDraw() || e.isRepetition(pos) {
			return 0
		}
		// Mate-distance pruning: a mate found deeper than one already
		// guaranteed by alpha/beta can't improve the result.
		mateAlpha := eval.MatedScore(ply)
		if mateAlpha > alpha {
			alpha = mateAlpha
		}
		mateBeta := eval.MatingScore(ply + 1)
		if mateBeta < beta {
			beta = mateBeta
		}
		if alpha >= beta {
			return alpha
		}
	}

	if toHorizon <= 0 {
		return e.quiescence(ply, alpha, beta)
	}

	isPV := beta-alpha > 1

	var hashMove board.Move = board.NoMove
	var rec cache.Record
	var haveRec bool
	if excluded == board.NoMove {
		rec, haveRec = e.Cache.Probe(pos.Hash)
		if haveRec {
			if rec.BestMove != board.NoMove {
				if canon, ok := pos.Canonicalize(rec.BestMove); ok {
					hashMove = canon
				}
			}
			if rec.ToHorizon >= toHorizon && !isPV {
				score := cache.AdjustScoreFromTT(rec.Score, ply)
				switch rec.Precision {
				case cache.Exact:
					return score
				case cache.LowerBound:
					if score >= beta {
						return score
					}
				case cache.UpperBound:
					if score <= alpha {
						return score
					}
				}
			}
		}
	}

	staticEval := e.Evaluate(pos)

	// Null-move pruning: skip our move entirely and see if the opponent
	// is still in trouble at a reduced depth. Disabled in check, near
	// mate scores, and in pure pawn endgames (zugzwang risk).
	if !isPV && !inCheck && toHorizon >= 3 && excluded == board.NoMove &&
		staticEval >= beta && pos.HasNonPawnMaterial() &&
		!eval.IsMateScore(beta) {
		reduction := 3 + toHorizon/6
		undo := e.bd.MakeNullMove()
		score := -e.negamax(ply+1, toHorizon-1-reduction, -beta, -beta+1, board.NoMove, false)
		e.bd.UnmakeNullMove(undo)
		if e.stopRequested() {
			return 0
		}
		if score >= beta {
			return score
		}
	}

	// Internal iterative deepening: no hash move in a PV node at
	// reasonable depth means the move ordering would otherwise be blind,
	// so spend a shallow search just to seed one.
	if isPV && hashMove == board.NoMove && toHorizon >= 6 {
		e.negamax(ply, toHorizon-2, alpha, beta, board.NoMove, inCheck)
		if rec, ok := e.Cache.Probe(pos.Hash); ok && rec.BestMove != board.NoMove {
			if canon, ok := pos.Canonicalize(rec.BestMove); ok {
				hashMove = canon
			}
		}
	}

	src := NewMoveSource(pos, ply, hashMove, board.Universe, e.Killers, e.History)

	bestScore := -eval.MateScore - 1
	bestMove := board.NoMove
	movesSearched := 0
	originalAlpha := alpha

	futilityMargin := 100 + 150*toHorizon
	futilityPrune := !isPV && !inCheck && toHorizon <= 6 &&
		staticEval+futilityMargin <= alpha && !eval.IsMateScore(alpha)

	var quietsTried []board.Move

	for {
		m, ok := src.Next()
		if !ok {
			break
		}
		if m.Equal(excluded) {
			continue
		}

		isCapture := m.IsCapture(pos)
		isQuiet := !isCapture && !m.IsPromotion()

		// Late-move pruning: once many quiet moves have been tried at
		// shallow depth without improving anything, stop bothering.
		if !isPV && isQuiet && !inCheck && toHorizon <= 8 &&
			movesSearched >= 4+toHorizon*toHorizon && !eval.IsMateScore(bestScore) {
			continue
		}

		if futilityPrune && isQuiet && movesSearched > 0 {
			continue
		}

		extension := 0
		if inCheck {
			extension = 1
		} else if haveRec && m.Equal(hashMove) && toHorizon >= 8 && excluded == board.NoMove &&
			rec.Precision != cache.UpperBound && rec.ToHorizon >= toHorizon-3 && !eval.IsMateScore(rec.Score) {
			// Singular extension: verify the hash move is the only move
			// that holds up; if nothing else comes close, it's "singular"
			// and the search digs one ply deeper along it.
			singularBeta := rec.Score - 2*toHorizon
			singularScore := e.negamax(ply, (toHorizon-1)/2, singularBeta-1, singularBeta, m, inCheck)
			if singularScore < singularBeta {
				extension = 1
			}
		}

		legal, givesCheck := e.bd.MakeMove(m)
		if !legal {
			continue
		}

		childHorizon := toHorizon - 1 + extension

		reduction := 0
		if !isPV && isQuiet && !inCheck && !givesCheck && toHorizon >= 3 && movesSearched >= 3 {
			reduction = 1 + toHorizon/6 + movesSearched/10
			if reduction > childHorizon-1 {
				reduction = childHorizon - 1
			}
			if reduction < 0 {
				reduction = 0
			}
		}

		var score int
		if movesSearched == 0 {
			score = -e.negamax(ply+1, childHorizon, -beta, -alpha, board.NoMove, givesCheck)
		} else {
			score = -e.negamax(ply+1, childHorizon-reduction, -alpha-1, -alpha, board.NoMove, givesCheck)
			if score > alpha && reduction > 0 {
				score = -e.negamax(ply+1, childHorizon, -alpha-1, -alpha, board.NoMove, givesCheck)
			}
			if score > alpha && score < beta {
				score = -e.negamax(ply+1, childHorizon, -beta, -alpha, board.NoMove, givesCheck)
			}
		}

		e.bd.UnmakeMove()
		movesSearched++

		if e.stopRequested() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			e.pv.update(ply, m)
		}
		if alpha >= beta {
			if isQuiet {
				piece := pos.PieceAt(m.From())
				e.Killers.Update(ply, piece, m.To())
				e.History.Update(piece, m.To(), toHorizon*toHorizon)
				for _, prev := range quietsTried {
					e.History.Update(pos.PieceAt(prev.From()), prev.To(), -toHorizon*toHorizon)
				}
			}
			break
		}
		if isQuiet {
			quietsTried = append(quietsTried, m)
		}
	}

	if movesSearched == 0 {
		if excluded != board.NoMove {
			// Every legal move except the excluded one failed; the
			// excluded move is confirmed singular.
			return alpha
		}
		if inCheck {
			return eval.MatedScore(ply)
		}
		return 0
	}

	if excluded == board.NoMove {
		precision := cache.Exact
		if bestScore <= originalAlpha {
			precision = cache.UpperBound
		} else if bestScore >= beta {
			precision = cache.LowerBound
		}
		e.Cache.Store(pos.Hash, cache.Record{
			ToHorizon: toHorizon,
			BestMove:  bestMove,
			Score:     cache.AdjustScoreToTT(bestScore, ply),
			Precision: precision,
		})
	}

	return bestScore
}

// quiescence resolves tactical noise at the horizon: it keeps searching
// captures (and, while in check, every evasion) until the position is
// "quiet", returning a stand-pat static evaluation as the floor
// whenever the side to move isn't in check.
func (e *Engine) quiescence(ply, alpha, beta int) int {
	e.pv.length[ply] = 0
	if ply > e.selDepth {
		e.selDepth = ply
	}

	if e.bd.Nodes%e.Limiter.PollInterval(nodePollMask+1) == 0 && e.pollInterrupt() {
		return 0
	}

	pos := e.bd.Current()
	inCheck := pos.InCheck()

	if pos.IsDraw() || e.isRepetition(pos) {
		return 0
	}

	var standPat int
	if !inCheck {
		standPat = e.Evaluate(pos)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	} else {
		standPat = -eval.MateScore + ply
	}

	if ply >= MaxPly-1 {
		return standPat
	}

	var src interface{ Next() (board.Move, bool) }
	if inCheck {
		src = NewMoveSource(pos, ply, board.NoMove, board.Universe, nil, nil)
	} else {
		src = NewQuiescenceSource(pos, board.Universe)
	}

	bestScore := standPat
	movesSearched := 0

	for {
		m, ok := src.Next()
		if !ok {
			break
		}

		// Delta pruning: a capture that can't possibly close the gap to
		// alpha even with a generous margin isn't worth searching.
		if !inCheck && m.IsCaptureFlag() {
			victimValue := pieceTypeValue(m.VictimType())
			if standPat+victimValue+150 <= alpha && !m.IsPromotion() {
				continue
			}
		}

		legal, _ := e.bd.MakeMove(m)
		if !legal {
			continue
		}
		movesSearched++
		score := -e.quiescence(ply+1, -beta, -alpha)
		e.bd.UnmakeMove()

		if e.stopRequested() {
			return 0
		}

		if score > bestScore {
			bestScore = score
		}
		if score > alpha {
			alpha = score
			e.pv.update(ply, m)
		}
		if alpha >= beta {
			break
		}
	}

	if inCheck && movesSearched == 0 {
		return eval.MatedScore(ply)
	}

	return bestScore
}

func pieceTypeValue(pt board.PieceType) int {
	values := [7]int{100, 320, 330, 500, 900, 0, 0}
	if int(pt) < 0 || int(pt) >= len(values) {
		return 0
	}
	return values[pt]
}

// pollInterrupt checks the stop flag, move-time budget, and node cap.
// Called only every nodePollMask+1 nodes outside of strength-limit
// throttling, where the Limiter forces a check on every node.
func (e *Engine) pollInterrupt() bool {
	if e.stopRequested() {
		return true
	}
	if e.nodeLimit > 0 && e.bd.Nodes >= e.nodeLimit {
		return true
	}
	return e.tm.ShouldStop()
}

// isRepetition reports whether pos's hash has occurred at least twice
// before, combining matches within this search's own make/unmake stack
// with matches in the game history recorded before the search began
// (SetPositionHistory) — i.e. pos is itself the third occurrence.
// Scanning back stops at the halfmove clock boundary (an irreversible
// move before that point makes an earlier repeat impossible).
func (e *Engine) isRepetition(pos *board.Position) bool {
	count := e.bd.CountRepetitions()
	if count >= 2 {
		return true
	}

	limit := pos.HalfMoveClock
	steps := e.bd.Ply()
	if steps > limit {
		steps = limit
	}
	remaining := limit - steps
	n := len(e.gameHistory)
	for i := 2; i <= remaining && i <= n; i += 2 {
		if e.gameHistory[n-i] == pos.Hash {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}
