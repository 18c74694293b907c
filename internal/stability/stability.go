// Package stability implements Edax's precomputed edge-stability
// analysis and the full get_stability extension to interior discs
// (spec.md §4.5). It is a pure, thread-safe function of a position:
// nothing here mutates shared state after package initialization.
package stability

import (
	"sort"

	"github.com/edaxgo/edax/internal/board"
)

// line is an 8-cell slice of one edge (or any other length-8 line):
// each cell is emptyCell, mineCell, or oppCell.
type line [8]uint8

const (
	emptyCell uint8 = iota
	mineCell
	oppCell
)

func opposite(c uint8) uint8 {
	if c == mineCell {
		return oppCell
	}
	return mineCell
}

// applyIfLegal places color at pos on l and flips the brackets it
// creates, exactly as board.Flip does on the full 2D board but
// restricted to one 8-cell line; it reports false if pos is occupied
// or the placement brackets nothing (an illegal move).
func applyIfLegal(l line, pos int, color uint8) (line, bool) {
	if l[pos] != emptyCell {
		return l, false
	}
	opp := opposite(color)
	var flips []int
	for _, dir := range [2]int{-1, 1} {
		var run []int
		for i := pos + dir; i >= 0 && i < 8 && l[i] == opp; i += dir {
			run = append(run, i)
		}
		end := pos + dir*(len(run)+1)
		if len(run) > 0 && end >= 0 && end < 8 && l[end] == color {
			flips = append(flips, run...)
		}
	}
	if len(flips) == 0 {
		return l, false
	}
	next := l
	next[pos] = color
	for _, i := range flips {
		next[i] = color
	}
	return next, true
}

func legalPositions(l line, color uint8) []int {
	var out []int
	for i := 0; i < 8; i++ {
		if l[i] == emptyCell {
			if _, ok := applyIfLegal(l, i, color); ok {
				out = append(out, i)
			}
		}
	}
	return out
}

func numEmpties(l line) int {
	n := 0
	for _, c := range l {
		if c == emptyCell {
			n++
		}
	}
	return n
}

func oppMaskOf(l line) uint8 {
	var mask uint8
	for i, c := range l {
		if c == oppCell {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// reachableOppMask[s] is, for every one of the 3^8 possible line
// states s, the bitmask of cell indices that are OPP-colored in s or
// in any state reachable from s by legal line-local moves. Since a
// move strictly converts one empty cell to occupied, the state graph
// is a DAG layered by empty-cell count, so this is computed bottom-up
// (fewest empties first) with no recursion (spec.md §4.5: "iteratively
// expand from edge-stable seeds until fixed point").
var reachableOppMask = buildReachableOppMask()

func buildReachableOppMask() map[line]uint8 {
	var all []line
	var gen func(idx int, cur line)
	gen = func(idx int, cur line) {
		if idx == 8 {
			all = append(all, cur)
			return
		}
		for _, c := range [3]uint8{emptyCell, mineCell, oppCell} {
			cur[idx] = c
			gen(idx+1, cur)
		}
	}
	gen(0, line{})

	sort.Slice(all, func(i, j int) bool {
		return numEmpties(all[i]) < numEmpties(all[j])
	})

	memo := make(map[line]uint8, len(all))
	for _, s := range all {
		mask := oppMaskOf(s)
		for _, color := range [2]uint8{mineCell, oppCell} {
			for _, pos := range legalPositions(s, color) {
				next, _ := applyIfLegal(s, pos, color)
				mask |= memo[next] // next has strictly fewer empties
			}
		}
		memo[s] = mask
	}
	return memo
}

// lineStable returns the bitmask of cells in l that are mineCell and
// never become oppCell in any legal continuation restricted to this
// line.
func lineStable(l line) uint8 {
	never := reachableOppMask[l]
	var stable uint8
	for i, c := range l {
		if c == mineCell && never&(1<<uint(i)) == 0 {
			stable |= 1 << uint(i)
		}
	}
	return stable
}

func toLine(mine, opp Bitboard8) line {
	var l line
	for i := 0; i < 8; i++ {
		switch {
		case mine&(1<<uint(i)) != 0:
			l[i] = mineCell
		case opp&(1<<uint(i)) != 0:
			l[i] = oppCell
		}
	}
	return l
}

// Bitboard8 is an 8-bit line extracted from the board (one edge).
type Bitboard8 = uint8

var (
	bottomEdge = edgeSquares(board.A1, board.B1, board.C1, board.D1, board.E1, board.F1, board.G1, board.H1)
	topEdge    = edgeSquares(board.A8, board.B8, board.C8, board.D8, board.E8, board.F8, board.G8, board.H8)
	leftEdge   = edgeSquares(board.A1, board.A2, board.A3, board.A4, board.A5, board.A6, board.A7, board.A8)
	rightEdge  = edgeSquares(board.H1, board.H2, board.H3, board.H4, board.H5, board.H6, board.H7, board.H8)
	edges      = [4][8]board.Square{bottomEdge, topEdge, leftEdge, rightEdge}
)

func edgeSquares(sqs ...board.Square) [8]board.Square {
	var out [8]board.Square
	copy(out[:], sqs)
	return out
}

func extractLine(b board.Bitboard, squares [8]board.Square) Bitboard8 {
	var l Bitboard8
	for i, sq := range squares {
		if b.IsSet(sq) {
			l |= 1 << uint(i)
		}
	}
	return l
}

// EdgeStable returns the subset of mine's discs that are proven
// unflippable by the precomputed four-edge analysis alone (spec.md
// §4.5): discs on rank1, rank8, fileA or fileH that lineStable
// resolves as permanently mine for that edge.
func EdgeStable(mine, opp board.Bitboard) board.Bitboard {
	var stable board.Bitboard
	for _, edge := range edges {
		mineLine := extractLine(mine, edge)
		oppLine := extractLine(opp, edge)
		mask := lineStable(toLine(mineLine, oppLine))
		for i := 0; i < 8; i++ {
			if mask&(1<<uint(i)) != 0 {
				stable |= board.SquareBB(edge[i])
			}
		}
	}
	return stable
}

var (
	diagMask, antiDiagMask [64]board.Bitboard
)

func init() {
	for sq := board.Square(0); sq < 64; sq++ {
		f, r := sq.File(), sq.Rank()
		diagID := r - f // -7..7
		antiID := r + f // 0..14
		for other := board.Square(0); other < 64; other++ {
			of, or := other.File(), other.Rank()
			if or-of == diagID {
				diagMask[sq] |= board.SquareBB(other)
			}
			if or+of == antiID {
				antiDiagMask[sq] |= board.SquareBB(other)
			}
		}
	}
}

func linesThrough(sq board.Square) [4]board.Bitboard {
	return [4]board.Bitboard{
		board.RankMask[sq.Rank()],
		board.FileMask[sq.File()],
		diagMask[sq],
		antiDiagMask[sq],
	}
}

func isBorderLine(lm board.Bitboard) bool {
	return lm == board.Rank1 || lm == board.Rank8 || lm == board.FileA || lm == board.FileH
}

// Stable returns the bitboard of mine's fully stable discs: a disc is
// fully stable once, for every line through it (row, column, and both
// diagonals), it sits at one end of that line (nothing lies beyond it
// to bracket it), or the line is completely occupied — no empty square
// remains on it, so no future move can ever flip along it — or, for
// the four board edges specifically, the disc is proven stable by
// EdgeStable (spec.md §4.5's "for all eight lines through it, either
// the line is filled or the disc is stable on that line").
func Stable(mine, opp board.Bitboard) board.Bitboard {
	occupied := mine | opp
	edgeStable := EdgeStable(mine, opp)

	var stable board.Bitboard
	rest := mine
	for rest != 0 {
		sq := rest.PopLSB()
		ok := true
		for _, lm := range linesThrough(sq) {
			if occupied&lm == lm {
				continue
			}
			if isBorderLine(lm) && edgeStable.IsSet(sq) {
				continue
			}
			if bit := board.SquareBB(sq); lm&(bit-1) == 0 || lm&^(bit<<1-1) == 0 {
				continue
			}
			ok = false
			break
		}
		if ok {
			stable |= board.SquareBB(sq)
		}
	}
	return stable
}

// Count returns the number of mine's fully stable discs
// (get_stability, spec.md §4.5), used by PVS's stability cutoff
// (spec.md §4.4 step 1): the mover can score at most 64 minus twice the
// opponent's stable-disc count.
func Count(mine, opp board.Bitboard) int {
	return Stable(mine, opp).PopCount()
}
