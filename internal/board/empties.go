package board

// EmptyList threads a board's empty squares through a 66-entry doubly
// linked ring (spec.md §3 "SquareList"): indices 0..63 are board
// squares, PASS (64) is never linked, and NOMOVE (65) is the ring's own
// sentinel. It is rebuilt once per node from the live bitboards and
// then maintained by Remove/Restore as the search plays and unplays
// moves, so the endgame solver can iterate empty squares in a fixed,
// parity-biased order without re-deriving it from the bitboards at
// every ply.
type EmptyList struct {
	prev, next [NOMOVE + 1]Square
}

// quadrant partitions the board into four 4x4 regions: 0=a1-d4,
// 1=e1-h4, 2=a5-d8, 3=e5-h8 (the same quadrant split Eval's parity
// bitmask uses, spec.md §3).
func quadrant(sq Square) int {
	return (sq.Rank()/4)*2 + sq.File()/4
}

// NewEmptyList builds the ring from every empty square of b. Squares
// belonging to a quadrant with an odd count of empties are linked
// before every square of an even-parity quadrant (spec.md §3's
// "parity-interleaved order"); within one parity class squares are
// linked in increasing square order. This is a fixed, deterministic
// enumeration rather than Edax's hand-tuned square-value priority
// table, which was not recoverable from the retrieved corpus (see
// DESIGN.md).
func NewEmptyList(b Board) *EmptyList {
	e := &EmptyList{}
	occupied := b.P | b.O

	var quadCount [4]int
	for sq := Square(0); sq < 64; sq++ {
		if !occupied.IsSet(sq) {
			quadCount[quadrant(sq)]++
		}
	}

	cursor := NOMOVE
	link := func(sq Square) {
		e.next[cursor] = sq
		e.prev[sq] = cursor
		cursor = sq
	}
	for _, wantOdd := range [...]bool{true, false} {
		for sq := Square(0); sq < 64; sq++ {
			if occupied.IsSet(sq) {
				continue
			}
			if (quadCount[quadrant(sq)]%2 == 1) != wantOdd {
				continue
			}
			link(sq)
		}
	}
	e.next[cursor] = NOMOVE
	e.prev[NOMOVE] = cursor
	return e
}

// First returns the first square in enumeration order, or NOMOVE if
// the list is empty.
func (e *EmptyList) First() Square {
	return e.next[NOMOVE]
}

// Next returns the square following sq, or NOMOVE at the end of the
// ring.
func (e *EmptyList) Next(sq Square) Square {
	return e.next[sq]
}

// Remove unlinks sq, typically because it was just played; its own
// prev/next slots are left untouched so Restore can relink it in O(1)
// without searching the ring.
func (e *EmptyList) Remove(sq Square) {
	p, n := e.prev[sq], e.next[sq]
	e.next[p] = n
	e.prev[n] = p
}

// Restore relinks sq between its still-intact neighbors, the exact
// inverse of Remove given the same square (and no intervening Remove
// of a different square between sq's former neighbors).
func (e *EmptyList) Restore(sq Square) {
	p, n := e.prev[sq], e.next[sq]
	e.next[p] = sq
	e.prev[n] = sq
}

// Squares returns every empty square in enumeration order. Diagnostic
// and test use; the hot path walks the ring via First/Next instead so
// it never allocates.
func (e *EmptyList) Squares() []Square {
	out := make([]Square, 0, 64)
	for sq := e.First(); sq != NOMOVE; sq = e.Next(sq) {
		out = append(out, sq)
	}
	return out
}
