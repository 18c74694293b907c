package board

import "testing"

func TestUpdateRestoreRoundTrip(t *testing.T) {
	b := NewBoard()
	var ml MoveList
	GenerateMoves(b, &ml)
	if ml.Empty() {
		t.Fatal("starting position has no legal moves")
	}
	for m := ml.First(); m != nil; m = m.Next {
		before := b
		mv := *m
		b.Update(&mv)
		b.Restore(&mv)
		if b != before {
			t.Errorf("restore(update(b, %v)) != b: got %+v want %+v", m, b, before)
		}
	}
}

func TestMovesLandOnEmptySquares(t *testing.T) {
	b := NewBoard()
	mask := Moves(b.P, b.O)
	if mask&(b.P|b.O) != 0 {
		t.Errorf("moves overlap occupied squares: %064b", uint64(mask))
	}
}

func TestMovesBackendsAgree(t *testing.T) {
	boards := []Board{NewBoard()}
	b := NewBoard()
	var ml MoveList
	GenerateMoves(b, &ml)
	for m := ml.First(); m != nil; m = m.Next {
		mv := *m
		child := b
		child.Update(&mv)
		boards = append(boards, child)
	}
	for _, pos := range boards {
		got := Moves(pos.P, pos.O)
		want := MovesReference(pos.P, pos.O)
		if got != want {
			t.Errorf("Moves/MovesReference disagree for %+v: got %064b want %064b", pos, uint64(got), uint64(want))
		}
	}
}

func TestFlipNonZeroIffLegal(t *testing.T) {
	b := NewBoard()
	legal := Moves(b.P, b.O)
	for sq := Square(0); sq < 64; sq++ {
		flipped := Flip(sq, b.P, b.O)
		isLegal := legal.IsSet(sq)
		if isLegal && flipped == 0 {
			t.Errorf("square %v is legal but Flip returned 0", sq)
		}
		if !isLegal && flipped != 0 {
			t.Errorf("square %v is illegal but Flip returned %v", sq, flipped)
		}
	}
}

func TestCountLastFlipMatchesFlip(t *testing.T) {
	// One empty square at H8; craft P/O so playing H8 flips exactly 5 discs.
	// Row 8 (rank index 7): P on B8 and O on C8..G8, so H8 brackets a run of O.
	var P, O Bitboard
	// G8=O F8=O E8=O D8=O C8=O all flip when P plays H8 bracketed by a P at B8.
	P |= SquareBB(B8)
	for _, sq := range []Square{C8, D8, E8, F8, G8} {
		O |= SquareBB(sq)
	}
	// Fill every other square so H8 is the only empty one.
	for sq := Square(0); sq < 64; sq++ {
		if sq == H8 {
			continue
		}
		bit := SquareBB(sq)
		if P&bit == 0 && O&bit == 0 {
			O |= bit
		}
	}
	got := CountLastFlip(H8, P)
	want := Flip(H8, P, ^P&^SquareBB(H8)).PopCount() * 2
	if got != want {
		t.Errorf("CountLastFlip(H8) = %d, want %d", got, want)
	}
	if want != 10 {
		t.Errorf("expected 10 (5 flips doubled), got %d", want)
	}
}

func TestPassEdgeCase(t *testing.T) {
	b := NewBoard()
	b.Pass()
	b.Pass()
	if b != NewBoard() {
		t.Error("double pass did not return to original board")
	}
}

func TestSymmetryUniqueIsFixed(t *testing.T) {
	b := NewBoard()
	uniqueB, _ := Unique(b)
	for k := 0; k < NSymmetry; k++ {
		sym := b.Symmetry(k)
		uniqueSym, _ := Unique(sym)
		if uniqueSym != uniqueB {
			t.Errorf("Unique(Symmetry(b,%d)) != Unique(b)", k)
		}
	}
}

func TestSymmetryInverseRoundTrips(t *testing.T) {
	b := NewBoard()
	// perturb the board so it is not itself symmetric
	var ml MoveList
	GenerateMoves(b, &ml)
	mv := *ml.First()
	b.Update(&mv)
	for k := 0; k < NSymmetry; k++ {
		sym := b.Symmetry(k)
		back := sym.Symmetry(inverseSymmetry(k))
		if back != b {
			t.Errorf("symmetry %d does not round-trip through its inverse: got %+v want %+v", k, back, b)
		}
	}
}

func TestBoardStringRoundTrip(t *testing.T) {
	b := NewBoard()
	s := b.String()
	got, err := SetString(s)
	if err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if got != b {
		t.Errorf("round trip mismatch: got %+v want %+v", got, b)
	}
}

func TestHashCodeStable(t *testing.T) {
	b := NewBoard()
	if b.HashCode() != b.HashCode() {
		t.Error("HashCode is not deterministic")
	}
	other := b
	other.Pass()
	if b.HashCode() == other.HashCode() {
		t.Error("distinct positions hashed identically")
	}
}
