package eval

import (
	"bytes"
	"testing"

	"github.com/edaxgo/edax/internal/board"
)

func TestFeatureCatalogueHasFortySeven(t *testing.T) {
	if len(Features) != NFeatures {
		t.Fatalf("got %d features, want %d", len(Features), NFeatures)
	}
	for i, f := range Features {
		n := len(f.Squares)
		if n != kindSize[f.Kind] {
			t.Errorf("feature %d: %d squares, kind wants %d", i, n, kindSize[f.Kind])
		}
	}
}

func TestSwapTableIsInvolution(t *testing.T) {
	for k := Kind(0); k < nKind; k++ {
		tbl := swapTable[k]
		for idx, swapped := range tbl {
			back := tbl[swapped]
			if int(back) != idx {
				t.Fatalf("kind %d: swap not involutive at %d: swap=%d, swap(swap)=%d", k, idx, swapped, back)
			}
		}
	}
}

func TestSetMatchesEmptyBoard(t *testing.T) {
	var empty board.Board
	e := Set(empty)
	for i, idx := range e.Indices {
		if idx != 0 {
			t.Errorf("feature %d on empty board: index %d, want 0", i, idx)
		}
	}
}

func TestUpdateThenSwapSwapIsSelfConsistent(t *testing.T) {
	b := board.NewBoard()
	e := Set(b)

	var ml board.MoveList
	board.GenerateMoves(b, &ml)
	mv := ml.First()
	if mv == nil {
		t.Fatal("opening position must have a legal move")
	}

	before := e.Copy()
	e.Update(mv.Sq, mv.Flipped)
	if e.NEmpties != before.NEmpties-1 {
		t.Errorf("NEmpties after Update = %d, want %d", e.NEmpties, before.NEmpties-1)
	}

	nb := b
	nb.Update(mv)
	want := Set(nb)
	if e.Indices != want.Indices {
		t.Errorf("incremental Update diverged from Set on fresh board:\n got  %v\n want %v", e.Indices, want.Indices)
	}
}

func TestRestoreUndoesUpdate(t *testing.T) {
	b := board.NewBoard()
	e := Set(b)
	saved := e.Copy()

	var ml board.MoveList
	board.GenerateMoves(b, &ml)
	mv := ml.First()
	e.Update(mv.Sq, mv.Flipped)
	e.Restore(saved)

	if e.Indices != saved.Indices || e.NEmpties != saved.NEmpties {
		t.Error("Restore did not fully undo Update")
	}
}

func TestScoreIsClamped(t *testing.T) {
	w := NewZeroWeights()
	for i := range w.Rows[60] {
		w.Rows[60][i] = 32000
	}
	e := Set(board.NewBoard())
	got := Score(e, w)
	if got != scoreMax-1 {
		t.Errorf("Score with saturated weights = %d, want %d", got, scoreMax-1)
	}
}

func TestWeightsRoundTripThroughReadWrite(t *testing.T) {
	w := NewZeroWeights()
	w.Version, w.Release, w.Build = 4, 4, 1
	w.Rows[10][kindOffset[KindCenter2x2]+5] = -1234

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Version != w.Version || got.Release != w.Release || got.Build != w.Build {
		t.Errorf("header mismatch: got %+v", got)
	}
	if got.Rows[10][kindOffset[KindCenter2x2]+5] != -1234 {
		t.Errorf("payload mismatch after round trip")
	}
}

func TestSigmaStaysPositiveAcrossGame(t *testing.T) {
	for empties := 0; empties <= 60; empties++ {
		if Sigma(empties) <= 0 {
			t.Fatalf("Sigma(%d) = %v, want > 0", empties, Sigma(empties))
		}
	}
}
