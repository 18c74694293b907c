// Package eval implements Edax's pattern-weighted midgame evaluator
// (spec.md §4.2): 47 pattern features, each a small group of squares
// read into a base-3 digit string and looked up in a ply-keyed weight
// table, maintained incrementally as the search plays and unplays
// moves.
package eval

import "github.com/edaxgo/edax/internal/board"

// Kind identifies one of the thirteen distinct pattern shapes. Every
// one of the 47 feature instances is an occurrence of some Kind at a
// particular board location; instances of the same Kind share one
// weight sub-array (the "symmetry-packing" of spec.md §4.2 — the same
// weights are valid at every corner/edge/diagonal placement of a
// shape because each instance's square list is built in the same
// corner-relative reading order).
type Kind int

const (
	KindDiag3 Kind = iota
	KindDiag4
	KindDiag5
	KindDiag6
	KindDiag7
	KindDiag8
	KindCorner3x3
	KindEdge2X
	KindCorner2x5
	KindLine2
	KindLine3
	KindLine4
	KindCenter2x2
	nKind
)

// kindSize is the number of squares (and hence base-3 digits) in one
// instance of each Kind.
var kindSize = [nKind]int{
	KindDiag3:     3,
	KindDiag4:     4,
	KindDiag5:     5,
	KindDiag6:     6,
	KindDiag7:     7,
	KindDiag8:     8,
	KindCorner3x3: 9,
	KindEdge2X:    10,
	KindCorner2x5: 10,
	KindLine2:     8,
	KindLine3:     8,
	KindLine4:     8,
	KindCenter2x2: 4,
}

// Feature is one of the 47 pattern instances: its Kind (which weight
// sub-array it reads) and the ordered list of board squares it reads.
type Feature struct {
	Kind    Kind
	Squares []board.Square
}

// NFeatures is the total number of pattern instances (spec.md §3 Eval
// "vector of 47 feature indices").
const NFeatures = 47

// Features is the fixed catalogue of all 47 pattern instances, built
// once at package init.
var Features = buildFeatures()

func buildFeatures() [NFeatures]Feature {
	var fs []Feature

	// Diagonals of length 3..8 in both directions, at every offset
	// from the main diagonal (spec.md §4.2 "diagonals of length
	// 3..8").
	for length := 8; length >= 3; length-- {
		d := 8 - length
		if d == 0 {
			fs = append(fs, Feature{Kind: diagKind(length), Squares: diagForward(0)})
			fs = append(fs, Feature{Kind: diagKind(length), Squares: diagBackward(7)})
			continue
		}
		fs = append(fs, Feature{Kind: diagKind(length), Squares: diagForward(d)})
		fs = append(fs, Feature{Kind: diagKind(length), Squares: diagForward(-d)})
		fs = append(fs, Feature{Kind: diagKind(length), Squares: diagBackward(7 - d)})
		fs = append(fs, Feature{Kind: diagKind(length), Squares: diagBackward(7 + d)})
	}

	// One corner-3x3 block and one corner-2x5 block per corner.
	for _, c := range corners {
		fs = append(fs, Feature{Kind: KindCorner3x3, Squares: cornerBlock(c, 3, 3)})
	}
	for _, c := range corners {
		fs = append(fs, Feature{Kind: KindCorner2x5, Squares: cornerBlock(c, 5, 2)})
	}

	// One edge+2X pattern per edge.
	fs = append(fs, Feature{Kind: KindEdge2X, Squares: edgePattern(board.A1, board.B1, board.C1, board.D1, board.E1, board.F1, board.G1, board.H1, board.B2, board.G2)})
	fs = append(fs, Feature{Kind: KindEdge2X, Squares: edgePattern(board.A8, board.B8, board.C8, board.D8, board.E8, board.F8, board.G8, board.H8, board.B7, board.G7)})
	fs = append(fs, Feature{Kind: KindEdge2X, Squares: edgePattern(board.A1, board.A2, board.A3, board.A4, board.A5, board.A6, board.A7, board.A8, board.B2, board.B7)})
	fs = append(fs, Feature{Kind: KindEdge2X, Squares: edgePattern(board.H1, board.H2, board.H3, board.H4, board.H5, board.H6, board.H7, board.H8, board.G2, board.G7)})

	// Second, third and fourth row/column lines from each edge.
	fs = append(fs, Feature{Kind: KindLine2, Squares: rankLine(1)})
	fs = append(fs, Feature{Kind: KindLine2, Squares: rankLine(6)})
	fs = append(fs, Feature{Kind: KindLine2, Squares: fileLine(1)})
	fs = append(fs, Feature{Kind: KindLine2, Squares: fileLine(6)})

	fs = append(fs, Feature{Kind: KindLine3, Squares: rankLine(2)})
	fs = append(fs, Feature{Kind: KindLine3, Squares: rankLine(5)})
	fs = append(fs, Feature{Kind: KindLine3, Squares: fileLine(2)})
	fs = append(fs, Feature{Kind: KindLine3, Squares: fileLine(5)})

	fs = append(fs, Feature{Kind: KindLine4, Squares: rankLine(3)})
	fs = append(fs, Feature{Kind: KindLine4, Squares: rankLine(4)})
	fs = append(fs, Feature{Kind: KindLine4, Squares: fileLine(3)})
	fs = append(fs, Feature{Kind: KindLine4, Squares: fileLine(4)})

	// The four center squares.
	fs = append(fs, Feature{Kind: KindCenter2x2, Squares: []board.Square{board.D4, board.E4, board.D5, board.E5}})

	var out [NFeatures]Feature
	copy(out[:], fs)
	return out
}

func diagKind(length int) Kind {
	switch length {
	case 3:
		return KindDiag3
	case 4:
		return KindDiag4
	case 5:
		return KindDiag5
	case 6:
		return KindDiag6
	case 7:
		return KindDiag7
	default:
		return KindDiag8
	}
}

// diagForward collects squares on the "/" diagonal rank-file == d, in
// ascending file order.
func diagForward(d int) []board.Square {
	var out []board.Square
	for f := 0; f < 8; f++ {
		r := f + d
		if r >= 0 && r < 8 {
			out = append(out, board.NewSquare(f, r))
		}
	}
	return out
}

// diagBackward collects squares on the "\" diagonal rank+file == s, in
// ascending file order.
func diagBackward(s int) []board.Square {
	var out []board.Square
	for f := 0; f < 8; f++ {
		r := s - f
		if r >= 0 && r < 8 {
			out = append(out, board.NewSquare(f, r))
		}
	}
	return out
}

type corner struct {
	flipFile, flipRank bool
}

var corners = [4]corner{
	{false, false}, // A1
	{true, false},  // H1
	{false, true},  // A8
	{true, true},   // H8
}

// cornerBlock reads a w(files) x h(ranks) block anchored at the corner
// identified by c, reading files then ranks outward from the corner so
// every corner's instance shares the same canonical digit order.
func cornerBlock(c corner, w, h int) []board.Square {
	var out []board.Square
	for r := 0; r < h; r++ {
		for f := 0; f < w; f++ {
			ff, rr := f, r
			if c.flipFile {
				ff = 7 - f
			}
			if c.flipRank {
				rr = 7 - r
			}
			out = append(out, board.NewSquare(ff, rr))
		}
	}
	return out
}

func edgePattern(sqs ...board.Square) []board.Square {
	out := make([]board.Square, len(sqs))
	copy(out, sqs)
	return out
}

func rankLine(rank int) []board.Square {
	var out []board.Square
	for f := 0; f < 8; f++ {
		out = append(out, board.NewSquare(f, rank))
	}
	return out
}

func fileLine(file int) []board.Square {
	var out []board.Square
	for r := 0; r < 8; r++ {
		out = append(out, board.NewSquare(file, r))
	}
	return out
}
