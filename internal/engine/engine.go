// Package engine implements the iterative-deepening alpha-beta search
// engine: the selectivity heuristics, the shared transposition cache and
// move-ordering heuristics it consults, and the messenger/time-manager
// surface the (out-of-scope) driver drives it through.
package engine

import (
	"sync/atomic"
	"time"

	"github.com/ekmadsen/chesscore/internal/board"
	"github.com/ekmadsen/chesscore/internal/cache"
	"github.com/ekmadsen/chesscore/internal/eval"
	"github.com/ekmadsen/chesscore/internal/heuristics"
)

// MaxHorizon bounds the iterative-deepening loop's search depth.
const MaxHorizon = 64

// MaxPly bounds search-tree depth including quiescence and extensions —
// shared with heuristics.MaxPly so killer/PV tables line up.
const MaxPly = heuristics.MaxPly

// MateScore is re-exported from eval so callers (the driver, tests) don't
// need to import both packages for score interpretation.
const MateScore = eval.MateScore

// SearchInfo is one progress line the engine emits through OnInfo: depth,
// selective depth, elapsed time, node count, score, and principal
// variation, matching the driver protocol's info-line fields.
type SearchInfo struct {
	Depth          int
	SelDepth       int
	Elapsed        time.Duration
	Nodes          uint64
	Score          int
	PV             []board.Move
	HashFull       int
	CurrMove       board.Move
	CurrMoveNumber int
}

// SearchLimits is the configuration surface for a single, already-decoded
// search request (as opposed to UCILimits, which is the driver's raw "go"
// parameters before they've been turned into per-color time budgets).
type SearchLimits struct {
	Depth        int    // 0 = no depth cap
	Nodes        uint64 // 0 = no node cap
	MoveTime     time.Duration
	Infinite     bool
	MateDepth    int // stop once a mate in this many moves is found
	AnalysisMode bool
	MultiPV      int
	SearchMoves  []board.Move // restrict the root to these moves, if non-empty
}

// SearchResult is one root move's finished score and PV, as returned by
// SearchMultiPV.
type SearchResult struct {
	Move  board.Move
	Score int
	PV    []board.Move
}

// Engine owns everything one single-threaded search needs: the board
// (and its owned position stack), the shared transposition cache, the
// killer/history heuristics, the evaluator, the time manager, and the
// strength limiter. One Engine runs one search at a time.
type Engine struct {
	bd      *board.Board
	Cache   *cache.Table
	Killers *heuristics.Killers
	History *heuristics.History
	Eval    eval.Evaluator
	Limiter *Limiter
	tm      *TimeManager

	gameHistory []uint64 // zobrist hashes of positions before the search root

	limits    UCILimits
	nodeLimit uint64
	stopping  int32 // atomic bool: set by Stop() from another goroutine

	searchesRun uint64

	pv         pvTable
	rootPV     []board.Move
	rootBest   board.Move
	rootScore  int
	selDepth   int
	pvExcluded [][]board.Move // multi-PV exclusion set, re-sliced per PV line

	OnInfo func(SearchInfo)
}

// NewEngine creates an Engine with a ttSizeMB-sized transposition cache, a
// classical evaluator, and a deterministically-seeded strength limiter
// (disabled by default).
func NewEngine(ttSizeMB int) *Engine {
	return &Engine{
		bd:      board.NewBoard(),
		Cache:   cache.New(ttSizeMB),
		Killers: heuristics.NewKillers(),
		History: heuristics.NewHistory(),
		Eval:    eval.NewClassical(),
		Limiter: NewLimiter(1),
		tm:      NewTimeManager(),
	}
}

// SetEvaluator swaps in a different Evaluator (evaluation is treated as
// an external, swappable oracle).
func (e *Engine) SetEvaluator(ev eval.Evaluator) {
	e.Eval = ev
}

// SetHashSizeMB replaces the transposition cache with a freshly sized,
// empty one — the driver's "setoption name Hash" handler.
func (e *Engine) SetHashSizeMB(sizeMB int) {
	e.Cache = cache.New(sizeMB)
}

// SearchMultiPV runs k independent searches, each excluding the root
// moves already reported by a higher-ranked line, and returns the lines
// in descending score order. k is clamped to the number of legal root
// moves.
func (e *Engine) SearchMultiPV(pos *board.Position, limits SearchLimits, k int) []SearchResult {
	root := pos.GenerateLegalMoves()
	if k > root.Len() {
		k = root.Len()
	}
	if k <= 0 {
		return nil
	}

	var results []SearchResult
	var exclude []board.Move

	for i := 0; i < k; i++ {
		lineLimits := limits
		lineLimits.SearchMoves = remainingMoves(root, exclude)
		lineLimits.AnalysisMode = true

		best := e.runSearch(pos, lineLimits, false)
		if best == board.NoMove {
			break
		}
		results = append(results, SearchResult{
			Move:  best,
			Score: e.rootScore,
			PV:    append([]board.Move(nil), e.rootPV...),
		})
		exclude = append(exclude, best)
	}

	return results
}

func remainingMoves(root *board.MoveList, exclude []board.Move) []board.Move {
	var out []board.Move
	for i := 0; i < root.Len(); i++ {
		m := root.Get(i)
		excluded := false
		for _, x := range exclude {
			if m.Equal(x) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, m)
		}
	}
	return out
}

// SetPositionHistory records the zobrist hashes of every position reached
// earlier in the game (before the search root), so repetition detection
// can see across the search boundary, not just within one search's own
// make/unmake stack.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.gameHistory = hashes
}

// Clear implements the "new game" protocol event: reset cache, killers,
// and history.
func (e *Engine) Clear() {
	e.Cache.Clear()
	e.Killers.Clear()
	e.History.Clear()
	e.gameHistory = nil
}

// Stop requests graceful termination of the in-progress search; safe to
// call from another goroutine (the driver's stdin-reading thread).
func (e *Engine) Stop() {
	atomic.StoreInt32(&e.stopping, 1)
}

func (e *Engine) resetStop() {
	atomic.StoreInt32(&e.stopping, 0)
}

func (e *Engine) stopRequested() bool {
	return atomic.LoadInt32(&e.stopping) != 0
}

// LastResult returns the move, score, and principal variation recorded by
// the most recently completed search.
func (e *Engine) LastResult() (board.Move, int, []board.Move) {
	return e.rootBest, e.rootScore, e.rootPV
}

// NodeCount returns the number of nodes visited by the most recently run
// search.
func (e *Engine) NodeCount() uint64 {
	return e.bd.Nodes
}

// Evaluate returns the static evaluation of pos from the side-to-move's
// perspective, matching the sign convention negamax needs throughout the
// search.
func (e *Engine) Evaluate(pos *board.Position) int {
	score, _, _ := e.Eval.StaticScore(pos)
	return score
}

// Perft counts leaf nodes at depth — the move-generator ground truth test.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// Search runs with sensible defaults (no explicit limits): depth capped
// at MaxHorizon, no time limit.
func (e *Engine) Search(pos *board.Position) board.Move {
	return e.SearchWithLimits(pos, SearchLimits{Depth: MaxHorizon})
}

// SearchWithUCILimits adapts the driver's raw "go" parameters (UCILimits)
// into a time budget via the TimeManager, then runs the iterative-deepening
// search with that clock enabled.
// ply is the current game ply, used to estimate moves-to-go under sudden
// death.
func (e *Engine) SearchWithUCILimits(pos *board.Position, limits UCILimits, ply int) board.Move {
	e.tm.Init(limits, pos.SideToMove, ply)

	sl := SearchLimits{
		Depth:    limits.Depth,
		Nodes:    limits.Nodes,
		Infinite: limits.Infinite,
	}
	if sl.Depth == 0 {
		sl.Depth = MaxHorizon
	}
	return e.runSearch(pos, sl, true)
}

// SearchWithLimits runs one iterative-deepening search to completion (or
// until a limit/stop fires) and returns the best move found.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	if limits.MoveTime > 0 {
		e.tm.optimumTime = limits.MoveTime
		e.tm.maximumTime = limits.MoveTime
		e.tm.startTime = time.Now()
	} else if !limits.Infinite && limits.Depth == 0 && limits.Nodes == 0 {
		e.tm.optimumTime = time.Hour
		e.tm.maximumTime = time.Hour
		e.tm.startTime = time.Now()
	} else {
		e.tm.startTime = time.Now()
		e.tm.optimumTime = time.Hour
		e.tm.maximumTime = time.Hour
	}
	return e.runSearch(pos, limits, false)
}

// runSearch is the shared iterative-deepening driver behind
// SearchWithLimits/SearchWithUCILimits/SearchMultiPV's single-PV path.
func (e *Engine) runSearch(pos *board.Position, limits SearchLimits, useClock bool) board.Move {
	e.resetStop()
	e.bd = board.NewBoardFromPosition(pos)
	e.nodeLimit = limits.Nodes
	e.bd.ResetNodes()
	e.searchesRun++
	e.Cache.Tick()

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxHorizon {
		maxDepth = MaxHorizon
	}

	root := pos.GenerateLegalMoves()
	if root.Len() == 0 {
		return board.NoMove
	}
	root = restrictToSearchMoves(root, limits.SearchMoves)
	if root.Len() == 1 && !limits.AnalysisMode {
		e.rootBest = root.Get(0)
		return e.rootBest
	}

	rootScores := make([]int, root.Len())
	e.rootBest = root.Get(0)

	var lastScore int
	var stability, instability int
	var prevBest board.Move

	for depth := 1; depth <= maxDepth; depth++ {
		e.History.Age()
		e.Killers.ShiftTowardRoot(2)
		e.selDepth = 0

		alpha, beta := -eval.MateScore, eval.MateScore
		if depth >= 4 {
			window := 25
			alpha = lastScore - window
			beta = lastScore + window
		}

		var bestMove board.Move
		var bestScore int
		interrupted := false

		for {
			bestMove, bestScore, interrupted = e.searchRoot(root, rootScores, depth, alpha, beta)
			if interrupted {
				break
			}
			if bestScore <= alpha {
				alpha = -eval.MateScore
				continue
			}
			if bestScore >= beta {
				beta = eval.MateScore
				continue
			}
			break
		}

		if interrupted && depth > 1 {
			break
		}

		e.rootBest = bestMove
		e.rootScore = bestScore
		e.rootPV = append([]board.Move(nil), e.pv.line(0)...)

		if bestMove == prevBest {
			stability++
			instability = 0
		} else {
			instability++
			stability = 0
		}
		prevBest = bestMove
		lastScore = bestScore

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				SelDepth: e.selDepth,
				Elapsed:  e.tm.Elapsed(),
				Nodes:    e.bd.Nodes,
				Score:    bestScore,
				PV:       e.rootPV,
				HashFull: e.Cache.HashFull(),
			})
		}

		if limits.MateDepth > 0 && eval.IsMateScore(bestScore) {
			if mc := eval.MateMoveCount(bestScore); mc > 0 && mc <= limits.MateDepth {
				break
			}
		}
		if useClock {
			e.tm.AdjustForStability(stability)
			e.tm.AdjustForInstability(instability)
			if e.tm.PastOptimum() {
				break
			}
		}
		if limits.Infinite {
			continue
		}
	}

	return e.rootBest
}

func restrictToSearchMoves(root *board.MoveList, searchMoves []board.Move) *board.MoveList {
	if len(searchMoves) == 0 {
		return root
	}
	out := board.NewMoveList()
	for i := 0; i < root.Len(); i++ {
		m := root.Get(i)
		for _, sm := range searchMoves {
			if m.Equal(sm) {
				out.Add(m)
				break
			}
		}
	}
	if out.Len() == 0 {
		return root
	}
	return out
}

// searchRoot scores every root move once at the given horizon and window,
// returning the best move/score found and whether the search was
// interrupted partway through (in which case the returned values reflect
// only the moves completed so far and must not be trusted as final).
func (e *Engine) searchRoot(root *board.MoveList, scores []int, horizon int, alpha, beta int) (board.Move, int, bool) {
	pos := e.bd.Current()
	originalAlpha := alpha
	bestMove := root.Get(0)
	bestScore := -eval.MateScore - 1
	first := true

	for i := 0; i < root.Len(); i++ {
		m := root.Get(i)

		legal, givesCheck := e.bd.MakeMove(m)
		if !legal {
			continue
		}

		var score int
		if first {
			score = -e.negamax(1, horizon-1, -beta, -alpha, board.NoMove, givesCheck)
		} else {
			score = -e.negamax(1, horizon-1, -alpha-1, -alpha, board.NoMove, givesCheck)
			if score > alpha && score < beta {
				score = -e.negamax(1, horizon-1, -beta, -alpha, board.NoMove, givesCheck)
			}
		}
		e.bd.UnmakeMove()

		if e.stopRequested() || e.timeExceeded() || (e.nodeLimit > 0 && e.bd.Nodes >= e.nodeLimit) {
			return bestMove, bestScore, true
		}

		scores[i] = score
		if first || score > bestScore {
			bestScore = score
			bestMove = m
			e.pv.update(0, m)
		}
		first = false

		if score > alpha {
			alpha = score
		}
	}

	precision := cache.Exact
	if bestScore <= originalAlpha {
		precision = cache.UpperBound
	} else if bestScore >= beta {
		precision = cache.LowerBound
	}
	e.Cache.Store(pos.Hash, cache.Record{ToHorizon: horizon, BestMove: bestMove, Score: cache.AdjustScoreToTT(bestScore, 0), Precision: precision})

	root.SortDescending() // cosmetic only; ordering bits aren't authoritative here
	return bestMove, bestScore, false
}

func (e *Engine) timeExceeded() bool {
	if e.bd.Nodes&0xFFF != 0 {
		return false
	}
	return e.tm.ShouldStop()
}
