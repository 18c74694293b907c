package book

import (
	"os"
	"testing"

	"github.com/edaxgo/edax/internal/board"
	"github.com/edaxgo/edax/internal/hashstore"
)

func openTestStore(t *testing.T) *hashstore.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "edax-book-test")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := hashstore.Open(dir)
	if err != nil {
		t.Fatalf("hashstore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSeedThenLookupFindsTheMove(t *testing.T) {
	store := openTestStore(t)
	c := NewHashStoreClient(store)

	b := board.NewBoard()
	var ml board.MoveList
	board.GenerateMoves(b, &ml)
	want := ml.First().Sq

	if err := c.Seed(b, want); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	got, found := c.Lookup(b)
	if !found {
		t.Fatal("Lookup did not find the seeded move")
	}
	if got != want {
		t.Errorf("Lookup = %v, want %v", got, want)
	}
}

func TestLookupMissesAnUnseededPosition(t *testing.T) {
	store := openTestStore(t)
	c := NewHashStoreClient(store)

	_, found := c.Lookup(board.NewBoard())
	if found {
		t.Fatal("Lookup should miss a store with nothing seeded")
	}
}

func TestLookupFindsASymmetricEquivalent(t *testing.T) {
	store := openTestStore(t)
	c := NewHashStoreClient(store)

	// The opening position is its own SymDiagonal image, so play one
	// move first to get a position whose diagonal image is a different
	// board.
	b := board.NewBoard()
	var ml board.MoveList
	board.GenerateMoves(b, &ml)
	opening := *ml.First()
	b.Update(&opening)
	board.GenerateMoves(b, &ml)
	want := ml.First().Sq

	rotated := b.Symmetry(board.SymDiagonal)
	wantRotated := squareThroughSymmetry(board.SymDiagonal, want)
	if err := c.Seed(rotated, wantRotated); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	got, found := c.Lookup(b)
	if !found {
		t.Fatal("Lookup did not find the seeded symmetric equivalent")
	}
	if got != want {
		t.Errorf("Lookup = %v, want %v", got, want)
	}
}
