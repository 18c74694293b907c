// Package book defines the minimal opening-book client the search
// façade consults before falling back to its own analysis (spec.md
// §1 Non-goals excludes book construction and maintenance from this
// module's scope, but the façade still needs something to query).
package book

import (
	"github.com/edaxgo/edax/internal/board"
	"github.com/edaxgo/edax/internal/hashstore"
	"github.com/edaxgo/edax/internal/hashtable"
)

// Client looks up a recommended move for a position, typically backed
// by a precomputed opening database.
type Client interface {
	Lookup(b board.Board) (board.Square, bool)
}

// HashStoreClient answers Lookup from a hashstore.Store seeded ahead
// of time via hash_feed (spec.md §4.3): every stored record's Best1
// move is treated as the book recommendation for that exact position,
// canonicalized through the board's symmetry group so the book only
// needs to carry one orientation per position.
type HashStoreClient struct {
	store *hashstore.Store
}

// NewHashStoreClient wraps an already-open hashstore.Store.
func NewHashStoreClient(store *hashstore.Store) *HashStoreClient {
	return &HashStoreClient{store: store}
}

// Lookup reports the book's recommended move for b, trying every
// symmetry of b in turn and mapping a hit's move back through the
// inverse of that symmetry (spec.md §4.1) — every symmetry is its own
// inverse except the two quarter-turns, which undo each other.
func (c *HashStoreClient) Lookup(b board.Board) (board.Square, bool) {
	for k := 0; k < board.NSymmetry; k++ {
		sym := b.Symmetry(k)
		data, found, err := c.store.Get(sym)
		if err != nil || !found || data.Best1 == board.NOMOVE || data.Best1 == board.PASS {
			continue
		}
		back := k
		switch k {
		case board.SymDiagonalHorizontal:
			back = board.SymDiagonalVertical
		case board.SymDiagonalVertical:
			back = board.SymDiagonalHorizontal
		}
		return squareThroughSymmetry(back, data.Best1), true
	}
	return board.NOMOVE, false
}

// squareThroughSymmetry maps a single square through the k-th board
// symmetry by routing it through board.Board.Symmetry on a synthetic
// one-disc board, reusing the board package's own flip logic rather
// than duplicating it here.
func squareThroughSymmetry(k int, sq board.Square) board.Square {
	synthetic := board.Board{P: board.SquareBB(sq)}
	mapped := synthetic.Symmetry(k).P
	return mapped.PopLSB()
}

// Seed stores move as the book recommendation for b (feeding the
// hashstore the way an offline book-building tool would, kept here so
// the client and its write path share one record format).
func (c *HashStoreClient) Seed(b board.Board, move board.Square) error {
	return c.store.Put(b, hashtable.HashData{
		Depth:       0,
		Selectivity: 0,
		Lower:       -hashtable.ScoreMax,
		Upper:       hashtable.ScoreMax,
		Best1:       move,
		Best2:       board.NOMOVE,
	})
}
