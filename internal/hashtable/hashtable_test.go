package hashtable

import (
	"sync"
	"testing"

	"github.com/edaxgo/edax/internal/board"
)

func TestStoreThenGet(t *testing.T) {
	tab := New(1 << 16)
	b := board.NewBoard()
	hc := b.HashCode()

	tab.Store(b, hc, 0, 10, 0, -4, 6, board.D4)

	got, ok := tab.Get(b, hc)
	if !ok {
		t.Fatal("expected hit after store")
	}
	if got.Depth != 10 || got.Selectivity != 0 || got.Lower != -4 || got.Upper != 6 || got.Best1 != board.D4 {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	tab := New(1 << 16)
	b := board.NewBoard()
	if _, ok := tab.Get(b, b.HashCode()); ok {
		t.Error("expected miss on empty table")
	}
}

func TestStoreKeepsLowerLEUpper(t *testing.T) {
	tab := New(1 << 16)
	b := board.NewBoard()
	hc := b.HashCode()

	tab.Store(b, hc, 0, 8, 0, -10, 20, board.NOMOVE)
	tab.Store(b, hc, 0, 8, 0, -2, 30, board.NOMOVE)

	got, ok := tab.Get(b, hc)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Lower > got.Upper {
		t.Errorf("invariant violated: lower %d > upper %d", got.Lower, got.Upper)
	}
}

func TestDeeperEntrySurvivesShallowerWrite(t *testing.T) {
	tab := New(1 << 12) // small table: 128 entries in 32 groups
	b := board.NewBoard()
	hc := b.HashCode()

	tab.Force(b, hc, 100, 20, 5, -1, 1, board.D4)
	tab.Store(b, hc, 1, 2, 0, -64, 64, board.E3)

	got, ok := tab.Get(b, hc)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Depth != 20 {
		t.Errorf("deep entry was overwritten by shallow store: depth=%d", got.Depth)
	}
}

func TestConcurrentStoresLeaveConsistentEntry(t *testing.T) {
	tab := New(1 << 16)
	b := board.NewBoard()
	hc := b.HashCode()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			tab.Store(b, hc, 0, d, 0, -int(int8(d)), int(int8(d)), board.NOMOVE)
		}(i % 20)
	}
	wg.Wait()

	got, ok := tab.Get(b, hc)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Lower > got.Upper {
		t.Errorf("race left inconsistent bounds: %+v", got)
	}
}

func TestCopy(t *testing.T) {
	src := New(1 << 16)
	dst := New(1 << 16)
	b := board.NewBoard()
	hc := b.HashCode()
	src.Store(b, hc, 0, 5, 0, -1, 1, board.D4)

	Copy(src, dst)

	got, ok := dst.Get(b, hc)
	if !ok || got.Depth != 5 {
		t.Errorf("copy did not replicate entry: ok=%v got=%+v", ok, got)
	}
}
