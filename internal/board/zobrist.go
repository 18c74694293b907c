package board

import (
	"encoding/binary"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Zobrist keys for position hashing: one 64-bit key per (square, which
// side occupies it) pair. Built once with a fixed seed so hash codes
// are reproducible across runs (spec.md §9's "process-wide mutables"
// guidance folds this into a one-shot, read-only table).
var zobristP, zobristO [64]uint64

func init() {
	r := rand.New(rand.NewSource(0x45444158455641)) // "EDAXEVA" in hex-ish, fixed seed
	for sq := 0; sq < 64; sq++ {
		zobristP[sq] = r.Uint64()
		zobristO[sq] = r.Uint64()
	}
}

// HashCode returns the board's Zobrist-style hash: the XOR of each
// occupied square's per-side contribution. It is translation-invariant
// only insofar as the caller canonicalizes with Unique first
// (spec.md §4.1).
func (b Board) HashCode() uint64 {
	var h uint64
	p, o := b.P, b.O
	for p != 0 {
		sq := p.PopLSB()
		h ^= zobristP[sq]
	}
	for o != 0 {
		sq := o.PopLSB()
		h ^= zobristO[sq]
	}
	return h
}

// CollisionKey returns a second, independently-derived 64-bit digest
// of the position, used by the hash table as the stored verification
// key distinct from the Zobrist HashCode used to index the table
// (spec.md §3 HashEntry "optional collision-check key"). Mixing the
// raw (P, O) words through xxhash rather than reusing the Zobrist
// value means an index collision and a key collision are extremely
// unlikely to coincide.
func (b Board) CollisionKey() uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(b.P))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(b.O))
	return xxhash.Sum64(buf[:])
}
