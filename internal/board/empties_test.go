package board

import "testing"

func TestNewEmptyListVisitsEveryEmptySquareExactlyOnce(t *testing.T) {
	b := NewBoard()
	e := NewEmptyList(b)

	got := e.Squares()
	if len(got) != b.NEmpties() {
		t.Fatalf("got %d squares, want %d", len(got), b.NEmpties())
	}
	seen := map[Square]bool{}
	for _, sq := range got {
		if seen[sq] {
			t.Fatalf("square %v visited twice", sq)
		}
		seen[sq] = true
		if b.P.IsSet(sq) || b.O.IsSet(sq) {
			t.Fatalf("square %v is occupied but appeared in the empty list", sq)
		}
	}
}

func TestNewEmptyListRingIsClosedByNOMOVE(t *testing.T) {
	e := NewEmptyList(NewBoard())
	last := e.First()
	for n := e.Next(last); n != NOMOVE; n = e.Next(n) {
		last = n
	}
	if e.Next(last) != NOMOVE {
		t.Fatalf("ring does not close at NOMOVE after the last square")
	}
	if e.prev[NOMOVE] != last {
		t.Errorf("NOMOVE.prev = %v, want %v", e.prev[NOMOVE], last)
	}
}

func TestOddParityQuadrantSquaresComeFirst(t *testing.T) {
	// Quadrant 0 (a1-d4) keeps 3 empties (odd); quadrant 1 (e1-h4) keeps
	// 2 empties (even); quadrants 2 and 3 are fully occupied (0, even).
	empty := SquareBB(A1) | SquareBB(B1) | SquareBB(C1) | SquareBB(E1) | SquareBB(F1)
	b := Board{P: Universe &^ empty}

	e := NewEmptyList(b)
	squares := e.Squares()
	if len(squares) != 5 {
		t.Fatalf("got %d empty squares, want 5", len(squares))
	}

	firstEvenIdx := -1
	for i, sq := range squares {
		if quadrant(sq) != 0 {
			firstEvenIdx = i
			break
		}
	}
	if firstEvenIdx != 3 {
		t.Fatalf("expected the 3 odd-quadrant squares first, got order %v", squares)
	}
	for i, sq := range squares {
		if quadrant(sq) == 0 && i >= firstEvenIdx {
			t.Fatalf("odd-quadrant square %v at index %d appears after an even-quadrant square", sq, i)
		}
	}
}

func TestRemoveThenRestoreRoundTripsTheRing(t *testing.T) {
	b := NewBoard()
	e := NewEmptyList(b)
	before := e.Squares()

	mid := before[len(before)/2]
	e.Remove(mid)
	afterRemove := e.Squares()
	if len(afterRemove) != len(before)-1 {
		t.Fatalf("after Remove: got %d squares, want %d", len(afterRemove), len(before)-1)
	}
	for _, sq := range afterRemove {
		if sq == mid {
			t.Fatalf("Remove did not unlink %v", mid)
		}
	}

	e.Restore(mid)
	afterRestore := e.Squares()
	if len(afterRestore) != len(before) {
		t.Fatalf("after Restore: got %d squares, want %d", len(afterRestore), len(before))
	}
	for i, sq := range before {
		if afterRestore[i] != sq {
			t.Fatalf("Restore did not reproduce the original order at index %d: got %v, want %v", i, afterRestore[i], sq)
		}
	}
}

func TestEmptyListOnAFullBoardIsEmpty(t *testing.T) {
	var full Board
	full.P = Universe
	e := NewEmptyList(full)
	if e.First() != NOMOVE {
		t.Errorf("First() on a full board = %v, want NOMOVE", e.First())
	}
	if len(e.Squares()) != 0 {
		t.Errorf("Squares() on a full board = %v, want empty", e.Squares())
	}
}
