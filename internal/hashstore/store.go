package hashstore

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/edaxgo/edax/internal/board"
	"github.com/edaxgo/edax/internal/hashtable"
)

// Store wraps a BadgerDB database keyed by Zobrist hash code, each
// value a little-endian encoded (Board, HashData) pair (spec.md §9's
// "specify all I/O as little-endian explicitly" guidance, carried over
// from the weight-file format to this enrichment as well).
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the BadgerDB database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("hashstore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the database in the platform default data
// directory (HashDBDir).
func OpenDefault() (*Store, error) {
	dir, err := HashDBDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const recordLen = 22

func encodeRecord(b board.Board, d hashtable.HashData) [recordLen]byte {
	var buf [recordLen]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(b.P))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(b.O))
	buf[16] = byte(d.Depth)
	buf[17] = byte(d.Selectivity)
	buf[18] = byte(d.Lower)
	buf[19] = byte(d.Upper)
	buf[20] = byte(d.Best1)
	buf[21] = byte(d.Best2)
	return buf
}

func decodeRecord(buf []byte) (board.Board, hashtable.HashData, error) {
	if len(buf) != recordLen {
		return board.Board{}, hashtable.HashData{}, fmt.Errorf("hashstore: bad record length %d", len(buf))
	}
	b := board.Board{
		P: board.Bitboard(binary.LittleEndian.Uint64(buf[0:8])),
		O: board.Bitboard(binary.LittleEndian.Uint64(buf[8:16])),
	}
	d := hashtable.HashData{
		Depth:       int8(buf[16]),
		Selectivity: int8(buf[17]),
		Lower:       int8(buf[18]),
		Upper:       int8(buf[19]),
		Best1:       board.Square(buf[20]),
		Best2:       board.Square(buf[21]),
	}
	return b, d, nil
}

func keyFor(hashCode uint64) []byte {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], hashCode)
	return key[:]
}

// SaveSnapshot writes every live entry of tab to the database in a
// single transaction batch.
func (s *Store) SaveSnapshot(tab *hashtable.Table) (int, error) {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	n := 0
	var walkErr error
	tab.Each(func(b board.Board, d hashtable.HashData) {
		if walkErr != nil {
			return
		}
		rec := encodeRecord(b, d)
		if err := wb.Set(keyFor(b.HashCode()), rec[:]); err != nil {
			walkErr = err
			return
		}
		n++
	})
	if walkErr != nil {
		return n, fmt.Errorf("hashstore: snapshot: %w", walkErr)
	}
	if err := wb.Flush(); err != nil {
		return n, fmt.Errorf("hashstore: snapshot flush: %w", err)
	}
	return n, nil
}

// FeedInto restores every stored record into tab via Feed, the seed
// path spec.md §4.3 describes for loading a book's hash entries.
func (s *Store) FeedInto(tab *hashtable.Table) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				b, d, err := decodeRecord(val)
				if err != nil {
					return err
				}
				tab.Feed(b, b.HashCode(), int(d.Depth), int(d.Selectivity), int(d.Lower), int(d.Upper), d.Best1)
				n++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("hashstore: feed: %w", err)
	}
	return n, nil
}

// Put stores a single record directly, used by a book client seeding
// individual positions without a full Table round trip.
func (s *Store) Put(b board.Board, d hashtable.HashData) error {
	rec := encodeRecord(b, d)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyFor(b.HashCode()), rec[:])
	})
}

// Get looks up a single record by board.
func (s *Store) Get(b board.Board) (hashtable.HashData, bool, error) {
	var out hashtable.HashData
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyFor(b.HashCode()))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			_, d, err := decodeRecord(val)
			if err != nil {
				return err
			}
			out = d
			found = true
			return nil
		})
	})
	if err != nil {
		return hashtable.HashData{}, false, fmt.Errorf("hashstore: get: %w", err)
	}
	return out, found, nil
}
