// Package ordering scores and sorts a position's legal moves so the
// search visits the most promising ones first (spec.md §4.4 step 6).
package ordering

import (
	"github.com/edaxgo/edax/internal/board"
	"github.com/edaxgo/edax/internal/eval"
	"github.com/edaxgo/edax/internal/stability"
)

// Move ordering priorities, composited into one Move.Score so the
// list's existing selection Sort (spec.md §3 MoveList.Sort) places
// them correctly without a second sorting pass.
const (
	HashMoveScore  = 1 << 24 // the position's stored best move always goes first
	cornerBonus    = 6000
	xSquarePenalty = -3000
	cSquarePenalty = -1000
	mobilityWeight = -120 // fewer replies for the opponent is better
	stabilityGain  = 400  // per newly stabilized disc
	parityBonus    = 50
)

// ScoreMoves assigns Move.Score to every move in ml so MoveList.Sort
// orders the hash move first, then by a blend of mobility denial,
// corner/X-square/C-square placement, stable-disc gain, the quick
// incremental evaluation delta, and endgame region parity.
//
// cur is the mover's incremental Eval before any of ml's moves are
// played; w supplies the weight table UpdateLeaf's score needs.
func ScoreMoves(b board.Board, ml *board.MoveList, hashMove board.Square, cur *eval.Eval, w *eval.Weights) {
	for m := ml.First(); m != nil; m = m.Next {
		m.Score = scoreMove(b, m, hashMove, cur, w)
	}
}

func scoreMove(b board.Board, m *board.Move, hashMove board.Square, cur *eval.Eval, w *eval.Weights) int {
	if m.Sq == hashMove {
		return HashMoveScore
	}
	if m.IsPass() {
		return 0
	}

	score := 0
	score += squareBonus(m.Sq)

	nextP := b.O ^ m.Flipped
	nextO := b.P ^ m.Flipped ^ board.SquareBB(m.Sq)
	opponentReplies := board.Moves(nextO, nextP).PopCount()
	score += opponentReplies * mobilityWeight

	stableBefore := stability.Count(b.P, b.O)
	stableAfter := stability.Count(nextO, nextP)
	score += (stableAfter - stableBefore) * stabilityGain

	if w != nil && cur != nil {
		leaf := cur.UpdateLeaf(m.Sq, m.Flipped)
		score += eval.Score(leaf, w)
	}

	if b.NEmpties() <= parityRelevantEmpties {
		score += parity(b, m.Sq)
	}

	return score
}

func squareBonus(sq board.Square) int {
	switch {
	case board.Corners.IsSet(sq):
		return cornerBonus
	case board.XSquares.IsSet(sq):
		return xSquarePenalty
	case board.CSquares.IsSet(sq):
		return cSquarePenalty
	default:
		return 0
	}
}

// parityRelevantEmpties bounds region-parity scoring to the endgame,
// where it reliably predicts who gets the last move in a region (spec
// .md §4.4's endgame move ordering refinement).
const parityRelevantEmpties = 20

// parity rewards playing into an odd-sized empty region: the mover
// who is forced to move first into an even region typically hands the
// opponent the last move there, so odd regions are the safer target.
func parity(b board.Board, sq board.Square) int {
	empty := ^(b.P | b.O)
	region := floodFill(empty, sq)
	if region.PopCount()%2 == 1 {
		return parityBonus
	}
	return -parityBonus
}

func floodFill(empty board.Bitboard, seed board.Square) board.Bitboard {
	frontier := board.SquareBB(seed)
	visited := board.Bitboard(0)
	for frontier != 0 {
		visited |= frontier
		next := board.Bitboard(0)
		rest := frontier
		for rest != 0 {
			sq := rest.PopLSB()
			next |= neighbors(sq)
		}
		frontier = next & empty &^ visited
	}
	return visited
}

func neighbors(sq board.Square) board.Bitboard {
	b := board.SquareBB(sq)
	return b.North() | b.South() | b.East() | b.West() |
		b.NorthEast() | b.NorthWest() | b.SouthEast() | b.SouthWest()
}
