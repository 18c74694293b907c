// Package search implements Edax's principal variation search over
// Reversi positions (spec.md §3, §4.4): iterative deepening with a
// stability cutoff, transposition lookup/store, move ordering, a
// null-window scout re-search, and a root-level YBWC split across the
// worker pool once the eldest (best-ordered) child has returned.
package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edaxgo/edax/internal/board"
	"github.com/edaxgo/edax/internal/eval"
	"github.com/edaxgo/edax/internal/hashtable"
	"github.com/edaxgo/edax/internal/ordering"
	"github.com/edaxgo/edax/internal/pool"
	"github.com/edaxgo/edax/internal/stability"
)

// Observer receives progress reports as iterative deepening advances
// (spec.md §6 "search_observer").
type Observer interface {
	OnIteration(depth, selectivity, score int, best board.Square, nodes int64, elapsed time.Duration)
}

// nullObserver discards every report; New installs it so SetObserver
// is optional.
type nullObserver struct{}

func (nullObserver) OnIteration(int, int, int, board.Square, int64, time.Duration) {}

// checkEvery bounds how often Run samples the wall clock against its
// deadline, matching the teacher's time-check throttling so the
// search does not call time.Now() on every single node.
const checkEvery = 2048

// Search holds one engine instance's mutable state: the position under
// analysis, its incremental evaluator, the shared transposition table
// and weight set, and the worker pool used for root-level splitting
// (spec.md §6 "search_init"/"search_free").
type Search struct {
	root  board.Board
	ev    *eval.Eval
	tt    *hashtable.Table
	w     *eval.Weights
	pool  *pool.Pool
	level int

	observer Observer
	nodes    int64
	deadline time.Time
	stopped  atomic.Bool
}

// New constructs a Search bound to a shared transposition table,
// evaluation weight set, and worker pool (spec.md §6 search_init).
func New(tt *hashtable.Table, w *eval.Weights, p *pool.Pool) *Search {
	return &Search{tt: tt, w: w, pool: p, observer: nullObserver{}, level: 10}
}

// SetBoard installs the position to analyze (search_set_board).
func (s *Search) SetBoard(b board.Board) {
	s.root = b
	s.ev = eval.Set(b)
}

// SetLevel sets the engine's playing strength level, which governs
// both the iterative deepening target depth and the selectivity
// (probabilistic pruning) tier applied at each depth (search_set_level
// ). Edax's published LEVEL table was not available in the retrieved
// corpus, so level maps to depth/selectivity via a simple monotonic
// rule documented in DESIGN.md rather than a reproduction of the
// original table.
func (s *Search) SetLevel(level int) {
	if level < 1 {
		level = 1
	}
	s.level = level
}

// SetObserver installs a progress observer (search_observer).
func (s *Search) SetObserver(o Observer) {
	if o == nil {
		o = nullObserver{}
	}
	s.observer = o
}

// Stop requests cooperative termination of the in-flight Run; its
// result becomes the best result found so far (search_stop).
func (s *Search) Stop() {
	s.stopped.Store(true)
	s.pool.Stop()
}

// Cleanup resets per-search state between iterative-deepening runs
// (search_cleanup): the transposition table's generation advances so
// this run's entries become replaceable without being invalidated.
func (s *Search) Cleanup() {
	s.stopped.Store(false)
	s.pool.Reset()
	s.tt.NewSearch()
}

func (s *Search) targetDepth() int {
	return s.level
}

func (s *Search) selectivity() int {
	sel := s.level / 10
	if sel > 5 {
		sel = 5
	}
	return sel
}

// Run performs iterative deepening up to the level's target depth (or
// until the position is solved to the end of the game, whichever comes
// first), reporting each completed iteration to the observer, and
// returns the final best move and its score (search_run).
func (s *Search) Run(ctx context.Context, budget time.Duration) (board.Square, int) {
	s.Cleanup()
	s.nodes = 0
	if budget > 0 {
		s.deadline = time.Now().Add(budget)
	} else {
		s.deadline = time.Time{}
	}

	maxDepth := s.targetDepth()
	if empties := s.root.NEmpties(); empties < maxDepth {
		maxDepth = empties
	}
	sel := s.selectivity()

	best := board.NOMOVE
	bestScore := 0
	start := time.Now()
	for depth := 1; depth <= maxDepth; depth++ {
		score, move := s.searchRoot(ctx, depth, sel)
		if s.stopped.Load() || ctx.Err() != nil {
			break
		}
		best, bestScore = move, score
		s.observer.OnIteration(depth, sel, score, move, s.nodes, time.Since(start))
	}
	return best, bestScore
}

func (s *Search) outOfTime() bool {
	if s.deadline.IsZero() {
		return false
	}
	return time.Now().After(s.deadline)
}

func (s *Search) checkStop(ctx context.Context) bool {
	s.nodes++
	if s.nodes%checkEvery == 0 && s.outOfTime() {
		s.stopped.Store(true)
	}
	return s.stopped.Load() || ctx.Err() != nil
}

// finalScore scores a terminal position by the standard tournament
// convention: the side with more discs is credited every empty square
// (spec.md §4.4's exact endgame score, range [-64,+64]).
func finalScore(b board.Board) int {
	my := b.P.PopCount()
	opp := b.O.PopCount()
	diff := my - opp
	empties := 64 - my - opp
	switch {
	case diff > 0:
		diff += empties
	case diff < 0:
		diff -= empties
	}
	return diff
}

// searchRoot runs one iterative-deepening depth at the root: the
// best-ordered (eldest) move is searched first and alone to establish
// a working window, then the remaining moves are offered to the
// worker pool as a YBWC split (spec.md §4.6) — each either runs
// concurrently against a shared, mutex-guarded alpha, or inline if no
// helper is free.
func (s *Search) searchRoot(ctx context.Context, depth, selectivity int) (int, board.Square) {
	var ml board.MoveList
	board.GenerateMoves(s.root, &ml)
	if ml.Empty() {
		return finalScore(s.root), board.NOMOVE
	}

	hashMove := board.NOMOVE
	if data, ok := s.tt.Get(s.root, s.root.HashCode()); ok {
		hashMove = data.Best1
	}
	ordering.ScoreMoves(s.root, &ml, hashMove, s.ev, s.w)
	ml.Sort()

	if ml.First().IsPass() {
		nb := s.root
		nb.Pass()
		nev := s.ev.Copy()
		nev.Pass()
		sc := s.negamax(ctx, nb, nev, -hashtable.ScoreInf, hashtable.ScoreInf, depth, selectivity)
		return -sc, board.PASS
	}

	type rootMove struct {
		sq      board.Square
		flipped board.Bitboard
	}
	var moves []rootMove
	for m := ml.First(); m != nil; m = m.Next {
		moves = append(moves, rootMove{m.Sq, m.Flipped})
	}

	var mu sync.Mutex
	alpha := -hashtable.ScoreInf
	best := moves[0].sq

	play := func(m rootMove) (board.Board, *eval.Eval) {
		nb := s.root
		nb.Update(&board.Move{Sq: m.sq, Flipped: m.flipped})
		nev := s.ev.Copy()
		nev.Update(m.sq, m.flipped)
		return nb, nev
	}

	eldestBoard, eldestEv := play(moves[0])
	eldestScore := -s.negamax(ctx, eldestBoard, eldestEv, -hashtable.ScoreInf, hashtable.ScoreInf, depth-1, selectivity)
	alpha = eldestScore

	if len(moves) > 1 {
		tasks := make([]pool.Task, len(moves)-1)
		for i := 1; i < len(moves); i++ {
			m := moves[i]
			tasks[i-1] = func(ctx context.Context) (int, error) {
				nb, nev := play(m)
				mu.Lock()
				a := alpha
				mu.Unlock()
				sc := -s.negamax(ctx, nb, nev, -a-1, -a, depth-1, selectivity)
				if sc > a {
					sc = -s.negamax(ctx, nb, nev, -hashtable.ScoreInf, -a, depth-1, selectivity)
				}
				mu.Lock()
				if sc > alpha {
					alpha = sc
					best = m.sq
				}
				mu.Unlock()
				return sc, nil
			}
		}
		_, _ = s.pool.RunSiblings(ctx, tasks)
	}

	if s.stopped.Load() || ctx.Err() != nil {
		return alpha, best
	}
	s.tt.Force(s.root, s.root.HashCode(), int(s.nodes), depth, selectivity, alpha, alpha, best)
	return alpha, best
}

// etcMinDepth gates the enhanced transposition cutoff scan: below it a
// per-child hash probe costs more than the recursion it might save
// (spec.md §4.4 "ETC").
const etcMinDepth = 3

// iidMinDepth and iidReduction gate internal iterative deepening: a
// node deep enough to be worth ordering well, but with no hash move to
// order by, is first searched at a reduced depth purely to populate
// the transposition table with a best move (spec.md §4.4 "IID").
const (
	iidMinDepth  = 5
	iidReduction = 2
)

// probCutMinDepth/probCutReduction/probCutT parameterize ProbCut
// (spec.md §4.4): a reduced-depth, shifted-window search stands in for
// the full-depth one, accepting eval.Sigma's estimated error at the
// given empty count times a fixed multiplier as the statistical risk.
// probCutT is a simplified constant rather than Edax's published
// per-depth table of z-scores (see DESIGN.md).
const (
	probCutMinDepth  = 6
	probCutReduction = 4
	probCutT         = 1.5
)

// negamax is the recursive PVS core (spec.md §4.4): it applies the
// stability cutoff, probes and stores the shared transposition table,
// runs ETC/IID/ProbCut, and otherwise visits moves in ordered
// best-first sequence with a null-window scout re-search for every
// move after the first. Near the end of the game it hands off to
// negamaxEndgame, which walks the empties list directly instead of
// building and scoring a MoveList.
func (s *Search) negamax(ctx context.Context, b board.Board, ev *eval.Eval, alpha, beta, depth, selectivity int) int {
	if s.checkStop(ctx) {
		return alpha
	}

	if st := 64 - 2*stability.Count(b.O, b.P); st <= alpha {
		return st
	}

	hashCode := b.HashCode()
	origAlpha, origBeta := alpha, beta
	hashMove := board.NOMOVE
	if data, ok := s.tt.Get(b, hashCode); ok {
		hashMove = data.Best1
		if int(data.Depth) >= depth && int(data.Selectivity) >= selectivity {
			lower, upper := int(data.Lower), int(data.Upper)
			if lower >= beta {
				return lower
			}
			if upper <= alpha {
				return upper
			}
			if lower == upper {
				return lower
			}
			if lower > alpha {
				alpha = lower
			}
			if upper < beta {
				beta = upper
			}
		}
	}

	if depth <= 0 {
		return eval.Score(ev, s.w)
	}

	if empties := b.NEmpties(); empties <= endgameEmptiesThreshold && depth >= empties {
		return s.negamaxEndgame(ctx, b, ev, alpha, beta)
	}

	if hashMove == board.NOMOVE && depth >= iidMinDepth {
		s.negamax(ctx, b, ev, alpha, beta, depth-iidReduction, selectivity)
		if data, ok := s.tt.Get(b, hashCode); ok {
			hashMove = data.Best1
		}
	}

	if selectivity > 0 && depth >= probCutMinDepth {
		if sc, cut := s.probCut(ctx, b, ev, alpha, beta, depth, selectivity); cut {
			return sc
		}
	}

	var ml board.MoveList
	board.GenerateMoves(b, &ml)
	if ml.Empty() {
		return finalScore(b)
	}
	if ml.First().IsPass() {
		nb := b
		nb.Pass()
		nev := ev.Copy()
		nev.Pass()
		return -s.negamax(ctx, nb, nev, -beta, -alpha, depth, selectivity)
	}

	ordering.ScoreMoves(b, &ml, hashMove, ev, s.w)
	ml.Sort()

	if depth >= etcMinDepth {
		if sc, cut := s.probeETC(&ml, b, beta, depth, selectivity); cut {
			return sc
		}
	}

	best := board.NOMOVE
	bestScore := -hashtable.ScoreInf
	a := alpha
	first := true
	for m := ml.First(); m != nil; m = m.Next {
		nb := b
		nb.Update(m)
		nev := ev.Copy()
		nev.Update(m.Sq, m.Flipped)

		var sc int
		if first {
			sc = -s.negamax(ctx, nb, nev, -beta, -a, depth-1, selectivity)
			first = false
		} else {
			sc = -s.negamax(ctx, nb, nev, -a-1, -a, depth-1, selectivity)
			if sc > a && sc < beta {
				sc = -s.negamax(ctx, nb, nev, -beta, -sc, depth-1, selectivity)
			}
		}

		if sc > bestScore {
			bestScore = sc
			best = m.Sq
		}
		if sc > a {
			a = sc
		}
		if a >= beta {
			break
		}
		if s.stopped.Load() || ctx.Err() != nil {
			break
		}
	}

	// A search cut short by a stop never stores its partial result.
	if s.stopped.Load() || ctx.Err() != nil {
		return bestScore
	}

	lower, upper := -hashtable.ScoreInf, hashtable.ScoreInf
	switch {
	case bestScore >= origBeta:
		lower = bestScore
	case bestScore <= origAlpha:
		upper = bestScore
	default:
		lower, upper = bestScore, bestScore
	}
	s.tt.Store(b, hashCode, int(s.nodes), depth, selectivity, lower, upper, best)

	return bestScore
}

// probeETC scans ml for a child already resolved in the transposition
// table tightly enough to prove a beta cutoff at the parent without
// recursing into it (spec.md §4.4 "ETC"): if some child's stored upper
// bound is low enough that its negation already reaches beta, the
// parent fails high immediately.
func (s *Search) probeETC(ml *board.MoveList, b board.Board, beta, depth, selectivity int) (int, bool) {
	for m := ml.First(); m != nil; m = m.Next {
		nb := b
		nb.Update(m)
		data, ok := s.tt.Get(nb, nb.HashCode())
		if !ok || int(data.Depth) < depth-1 || int(data.Selectivity) < selectivity {
			continue
		}
		if int(data.Upper) <= -beta {
			return beta, true
		}
	}
	return 0, false
}

// probCut attempts to prove a cutoff at (alpha, beta, depth) using a
// reduced-depth, shifted-window search sized by eval.Sigma's estimated
// scoring error (spec.md §4.4 "ProbCut"/"Multi-ProbCut"). It reports
// (score, true) when it proves one; callers still fall back to the
// full-width search otherwise.
func (s *Search) probCut(ctx context.Context, b board.Board, ev *eval.Eval, alpha, beta, depth, selectivity int) (int, bool) {
	margin := int(probCutT * eval.Sigma(b.NEmpties()))
	if margin < 1 {
		margin = 1
	}
	probeDepth := depth - probCutReduction
	if probeDepth < 1 {
		return 0, false
	}

	if probBeta := beta + margin; probBeta <= hashtable.ScoreInf {
		if sc := s.negamax(ctx, b, ev, probBeta-1, probBeta, probeDepth, selectivity); sc >= probBeta {
			return beta, true
		}
	}
	if probAlpha := alpha - margin; probAlpha >= -hashtable.ScoreInf {
		if sc := s.negamax(ctx, b, ev, probAlpha, probAlpha+1, probeDepth, selectivity); sc <= probAlpha {
			return alpha, true
		}
	}
	return 0, false
}

// endgameEmptiesThreshold bounds when negamax stops generating and
// scoring a full MoveList and instead walks the empties list directly
// (spec.md §3 "SquareList", §4.4's endgame solve): cheap enough here
// that testing Flip at each ring entry beats building and sorting a
// MoveList, and the position is close enough to the end of the game
// that an exact solve (depth == empties) is affordable.
const endgameEmptiesThreshold = 10

// negamaxEndgame exact-solves b by walking its empties list in
// parity-interleaved order, testing each square's legality with
// board.Flip directly (spec.md §3: "maintained so endgame can iterate
// over empty squares in parity-interleaved order"). It does not probe
// or store the transposition table — a documented performance-only
// simplification (see DESIGN.md), not a correctness one: every score
// it returns is still exact within (alpha, beta).
func (s *Search) negamaxEndgame(ctx context.Context, b board.Board, ev *eval.Eval, alpha, beta int) int {
	if s.checkStop(ctx) {
		return alpha
	}
	if st := 64 - 2*stability.Count(b.O, b.P); st <= alpha {
		return st
	}

	empties := board.NewEmptyList(b)
	a := alpha
	bestScore := -hashtable.ScoreInf
	played := false

	for sq := empties.First(); sq != board.NOMOVE; sq = empties.Next(sq) {
		flipped := board.Flip(sq, b.P, b.O)
		if flipped == 0 {
			continue
		}
		played = true

		nb := b
		nb.Update(&board.Move{Sq: sq, Flipped: flipped})
		nev := ev.UpdateLeaf(sq, flipped)

		empties.Remove(sq)
		sc := -s.negamaxEndgame(ctx, nb, nev, -beta, -a)
		empties.Restore(sq)

		if sc > bestScore {
			bestScore = sc
		}
		if sc > a {
			a = sc
		}
		if a >= beta {
			break
		}
		if s.stopped.Load() || ctx.Err() != nil {
			break
		}
	}

	if !played {
		if board.Moves(b.O, b.P) == 0 {
			return finalScore(b)
		}
		nb := b
		nb.Pass()
		nev := ev.Copy()
		nev.Pass()
		return -s.negamaxEndgame(ctx, nb, nev, -beta, -alpha)
	}

	return bestScore
}
