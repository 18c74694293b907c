package eval

import "github.com/edaxgo/edax/internal/board"

const (
	digitEmpty = 0
	digitMine  = 1
	digitOpp   = 2
)

// squareFeature names one (feature, place-value) pair a square
// contributes to.
type squareFeature struct {
	feature int
	weight  int // 3^position within that feature's digit string
}

// squareFeatures[sq] lists every feature instance sq participates in,
// built once at init so Update touches only the features a move
// actually changed (spec.md §4.2 "maintained incrementally as the
// search plays and unplays moves").
var squareFeatures [64][]squareFeature

func init() {
	for i, feat := range Features {
		w := 1
		for _, sq := range feat.Squares {
			squareFeatures[sq] = append(squareFeatures[sq], squareFeature{feature: i, weight: w})
			w *= 3
		}
	}
}

// swapTable[k] maps a Kind-k raw index to the index obtained by
// exchanging every mine/opp digit (1<->2, 0 fixed) — the perspective
// flip applied once per ply so "mine" always means "the side to move"
// (spec.md §4.2).
var swapTable [nKind][]int32

func init() {
	for k := Kind(0); k < nKind; k++ {
		n := kindSize[k]
		size := pow3(n)
		t := make([]int32, size)
		for idx := 0; idx < size; idx++ {
			t[idx] = int32(swapDigits(idx, n))
		}
		swapTable[k] = t
	}
}

func swapDigits(idx, n int) int {
	out, place := 0, 1
	for i := 0; i < n; i++ {
		d := idx % 3
		idx /= 3
		if d == digitMine {
			d = digitOpp
		} else if d == digitOpp {
			d = digitMine
		}
		out += d * place
		place *= 3
	}
	return out
}

// Eval is the maintained feature-index vector for one position, from
// the perspective of the side to move (spec.md §3 "Eval").
type Eval struct {
	Indices  [NFeatures]int
	NEmpties int
}

// Set computes an Eval from scratch (eval_set, spec.md §4.2), reading
// b.P as "mine" and b.O as "opp" per board.Board's side-to-move
// convention.
func Set(b board.Board) *Eval {
	e := &Eval{NEmpties: b.NEmpties()}
	for i, feat := range Features {
		idx, place := 0, 1
		for _, sq := range feat.Squares {
			d := digitEmpty
			switch {
			case b.P.IsSet(sq):
				d = digitMine
			case b.O.IsSet(sq):
				d = digitOpp
			}
			idx += d * place
			place *= 3
		}
		e.Indices[i] = idx
	}
	return e
}

// Copy returns an independent snapshot, used by the search to save a
// restore point before trying a move (eval_restore's companion).
func (e *Eval) Copy() *Eval {
	out := *e
	return &out
}

func (e *Eval) applySquare(sq board.Square, oldDigit, newDigit int) {
	delta := newDigit - oldDigit
	for _, sf := range squareFeatures[sq] {
		e.Indices[sf.feature] += delta * sf.weight
	}
}

func (e *Eval) swapPerspective() {
	for i := range e.Indices {
		k := Features[i].Kind
		e.Indices[i] = int(swapTable[k][e.Indices[i]])
	}
}

// Update advances e past a move: played goes from empty to mine, every
// square in flips goes from opp to mine, the empty count drops by one,
// and perspective flips to the new side to move (eval_update, spec.md
// §4.2). It mutates e in place; callers needing to undo should snapshot
// with Copy first.
func (e *Eval) Update(played board.Square, flips board.Bitboard) {
	e.applySquare(played, digitEmpty, digitMine)
	rest := flips
	for rest != 0 {
		sq := rest.PopLSB()
		e.applySquare(sq, digitOpp, digitMine)
	}
	e.NEmpties--
	e.swapPerspective()
}

// UpdateLeaf is Update specialized for a move made only to read the
// resulting score, without continuing the search from it: it computes
// the post-move feature vector into a fresh Eval, leaving e untouched
// (eval_update_leaf, spec.md §4.2 — avoids disturbing the incumbent
// incremental state at a leaf that will not be searched further).
func (e *Eval) UpdateLeaf(played board.Square, flips board.Bitboard) *Eval {
	leaf := e.Copy()
	leaf.Update(played, flips)
	return leaf
}

// Pass flips perspective with no board change (eval_pass): used when
// the side to move has no legal move.
func (e *Eval) Pass() {
	e.swapPerspective()
}

// Restore copies src back into e, the undo half of the Copy/Update
// pair (eval_restore, spec.md §4.2).
func (e *Eval) Restore(src *Eval) {
	*e = *src
}

// scoreMax mirrors hashtable.ScoreMax: a midgame heuristic score must
// stay strictly inside [-ScoreMax,+ScoreMax] so it is never confused
// with an exact win/loss bound (spec.md §4.2 eval_score).
const scoreMax = 64

// weightScale is the fixed-point factor the int16 weight table is
// stored at (spec.md §4.2 "eval_score divides the raw feature sum by
// 128" to recover a disc-difference-scaled score).
const weightScale = 128

func clampScore(v int) int {
	if v > scoreMax-1 {
		return scoreMax - 1
	}
	if v < -(scoreMax - 1) {
		return -(scoreMax - 1)
	}
	return v
}

func plyRow(empties int) int {
	if empties < 0 {
		return 0
	}
	if empties >= EvalNPly {
		return EvalNPly - 1
	}
	return empties
}

// Score sums e's feature weights at the current ply, rescales by
// weightScale back to disc-difference units, and clamps to the legal
// score range (eval_score, spec.md §4.2). The result is from the
// perspective of the side to move.
func Score(e *Eval, w *Weights) int {
	row := w.Rows[plyRow(e.NEmpties)]
	sum := 0
	for i, idx := range e.Indices {
		sum += int(row[kindOffset[Features[i].Kind]+idx])
	}
	return clampScore(sum / weightScale)
}

// Sigma estimates the standard deviation of Score's error at the given
// empty-square count, used by ProbCut/Multi-ProbCut (spec.md §4.4) to
// size its selective-search safety margin. It is a cubic polynomial in
// empties, floored at 0.5; over 0..60 empties it stays between about
// 1.47 (at 60) and 1.8 (at 0), with a dip to about 1.51 near 15
// empties and a second peak of about 1.77 near 45. The exact trained coefficients were not present in the
// retrieved corpus, so the coefficients here are a documented
// placeholder rather than a bit-identical reproduction (see DESIGN.md).
func Sigma(empties int) float64 {
	n := float64(plyRow(empties))
	const (
		a = -0.0000208
		b = 0.001866
		c = -0.04252
		d = 1.8
	)
	s := a*n*n*n + b*n*n + c*n + d
	if s < 0.5 {
		s = 0.5
	}
	return s
}
