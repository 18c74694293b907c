// Package hashtable implements Edax's shared, concurrent, dated,
// multi-way transposition cache (spec.md §3, §4.3). It stores score
// bounds and up to two best moves per position, replaces entries by a
// priority that favors recent, deep, expensive work, and serializes
// access through one mutex per HashNWay-wide group (capped at 1<<14
// mutexes, beyond which groups share a mutex by index).
package hashtable

import (
	"sync"

	"github.com/edaxgo/edax/internal/board"
)

// HashNWay is the bucket width: each hash index selects a group of
// this many slots, and the store/evict decision is made within the
// group (spec.md §3 "Buckets are HASH_N_WAY-wide").
const HashNWay = 4

// dateStaleThreshold (K in spec.md §4.3): an incumbent entry deeper
// and at least as selective as a new write is only evicted once its
// date falls behind the table's current date by more than this.
const dateStaleThreshold = 2

// ScoreInf is used by the search as +/-infinity; it exceeds any legal
// score (spec.md §4.4 caps the legal range at +/-ScoreMax, with
// ScoreMax == 64 since Edax's midgame evaluation is expressed in the
// same disc-difference units as the exact endgame score).
const (
	ScoreMax = 64
	ScoreInf = 99
)

// HashData is the payload of a HashEntry (spec.md §3).
type HashData struct {
	Depth       int8
	Selectivity int8
	Cost        int32
	Date        uint8
	Lower       int8
	Upper       int8
	Best1       board.Square
	Best2       board.Square
}

// hashEntry is a HashEntry (spec.md §3): a collision-check key, the
// full Board (for an exact match after an index collision), and its
// HashData.
type hashEntry struct {
	key   uint64
	board board.Board
	data  HashData
	valid bool
}

// Table is the shared transposition table (spec.md §3 HashTable).
type Table struct {
	entries []hashEntry
	locks   []sync.Mutex

	hashMask uint64
	lockMask uint64
	nGroup   uint64 // number of HashNWay-wide groups == len(entries)/HashNWay

	date uint8
}

// New allocates a table sized to the largest power-of-two entry count
// whose total size does not exceed sizeBytes, with one lock per
// HashNWay-wide group up to 1<<14 locks (spec.md §4.3 hash_init). A
// fixed approximate per-entry footprint is used for sizing, matching
// the teacher's TranspositionTable.NewTranspositionTable budget
// calculation (internal/engine/transposition.go in the teacher).
func New(sizeBytes int) *Table {
	const approxEntryBytes = 24
	nEntries := roundDownPow2(uint64(sizeBytes) / approxEntryBytes)
	if nEntries < HashNWay {
		nEntries = HashNWay
	}
	nGroups := nEntries / HashNWay
	nLocks := nGroups
	const maxLocks = 1 << 14
	if nLocks > maxLocks {
		nLocks = maxLocks
	}
	if nLocks < 1 {
		nLocks = 1
	}

	return &Table{
		entries:  make([]hashEntry, nGroups*HashNWay),
		locks:    make([]sync.Mutex, nLocks),
		hashMask: nGroups*HashNWay - 1,
		lockMask: nLocks - 1,
		nGroup:   nGroups,
	}
}

func roundDownPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (t *Table) groupStart(hashCode uint64) uint64 {
	return (hashCode & t.hashMask) &^ (HashNWay - 1)
}

func (t *Table) lockFor(groupStart uint64) *sync.Mutex {
	return &t.locks[(groupStart/HashNWay)&t.lockMask]
}

// Clear zeroes every entry and bumps the date so stale probes from a
// previous search never match (spec.md §4.3 hash_clear).
func (t *Table) Clear() {
	for i := range t.locks {
		t.locks[i].Lock()
	}
	for i := range t.entries {
		t.entries[i] = hashEntry{}
	}
	t.date++
	for i := range t.locks {
		t.locks[i].Unlock()
	}
}

// NewSearch bumps the generation counter between iterative-deepening
// iterations (spec.md §6 search_cleanup), making last-iteration
// entries candidates for replacement without invalidating them.
func (t *Table) NewSearch() {
	t.date++
}

// Get probes the table for b. On a match it copies the stored data
// and returns true; a miss returns false (spec.md §4.3 hash_get).
func (t *Table) Get(b board.Board, hashCode uint64) (HashData, bool) {
	key := b.CollisionKey()
	start := t.groupStart(hashCode)
	lock := t.lockFor(start)
	lock.Lock()
	defer lock.Unlock()

	for i := start; i < start+HashNWay; i++ {
		e := &t.entries[i]
		if e.valid && e.key == key && e.board == b {
			return e.data, true
		}
	}
	return HashData{}, false
}

// ageOf returns how many generations old an entry is relative to the
// table's current date, accounting for uint8 wraparound.
func (t *Table) ageOf(d uint8) uint8 {
	return t.date - d
}

// worstSlot returns the index within [start, start+HashNWay) least
// worth keeping: oldest generation first, then shallowest depth, then
// cheapest cost (spec.md §4.3 "worst" priority).
func (t *Table) worstSlot(start uint64) uint64 {
	worst := start
	for i := start + 1; i < start+HashNWay; i++ {
		if t.lessWorthKeeping(i, worst) {
			worst = i
		}
	}
	return worst
}

// lessWorthKeeping reports whether entry a should be evicted before
// entry b.
func (t *Table) lessWorthKeeping(a, b uint64) bool {
	ea, eb := &t.entries[a], &t.entries[b]
	if !ea.valid {
		return true
	}
	if !eb.valid {
		return false
	}
	ageA, ageB := t.ageOf(ea.data.Date), t.ageOf(eb.data.Date)
	if ageA != ageB {
		return ageA > ageB
	}
	if ea.data.Depth != eb.data.Depth {
		return ea.data.Depth < eb.data.Depth
	}
	return ea.data.Cost < eb.data.Cost
}

// intersect narrows [lower, upper] by a newly computed [newLower,
// newUpper], preserving the hash table's lower <= upper invariant
// (spec.md §3, §8).
func intersect(lower, upper, newLower, newUpper int8) (int8, int8) {
	if newLower > lower {
		lower = newLower
	}
	if newUpper < upper {
		upper = newUpper
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	return lower, upper
}

// Store records a search result for b, merging with a matching
// incumbent or evicting the group's worst slot (spec.md §4.3
// hash_store).
func (t *Table) Store(b board.Board, hashCode uint64, cost int, depth, selectivity int, lower, upper int, move board.Square) {
	t.store(b, hashCode, cost, depth, selectivity, lower, upper, move, false)
}

// Force unconditionally overwrites the target slot — used once the
// caller has completed a full search of the position (spec.md §4.3
// hash_force).
func (t *Table) Force(b board.Board, hashCode uint64, cost int, depth, selectivity int, lower, upper int, move board.Square) {
	t.store(b, hashCode, cost, depth, selectivity, lower, upper, move, true)
}

// Feed is a lightweight store used to seed the table from a book
// client (spec.md §4.3 hash_feed); it behaves like Store with no
// search cost attached.
func (t *Table) Feed(b board.Board, hashCode uint64, depth, selectivity int, lower, upper int, move board.Square) {
	t.store(b, hashCode, 0, depth, selectivity, lower, upper, move, false)
}

func (t *Table) store(b board.Board, hashCode uint64, cost int, depth, selectivity int, lower, upper int, move board.Square, force bool) {
	key := b.CollisionKey()
	start := t.groupStart(hashCode)
	lock := t.lockFor(start)
	lock.Lock()
	defer lock.Unlock()

	for i := start; i < start+HashNWay; i++ {
		e := &t.entries[i]
		if e.valid && e.key == key && e.board == b {
			t.mergeInto(e, cost, depth, selectivity, lower, upper, move, force)
			return
		}
	}

	victim := start
	if !force {
		victim = t.worstSlot(start)
		if t.entries[victim].valid && !t.replaces(&t.entries[victim], depth, selectivity) {
			return
		}
	} else {
		victim = t.worstSlot(start)
	}
	t.entries[victim] = hashEntry{
		key:   key,
		board: b,
		valid: true,
		data: HashData{
			Depth:       int8(depth),
			Selectivity: int8(selectivity),
			Cost:        int32(cost),
			Date:        t.date,
			Lower:       int8(lower),
			Upper:       int8(upper),
			Best1:       move,
			Best2:       board.NOMOVE,
		},
	}
}

// replaces implements the replacement invariant of spec.md §4.3: an
// incumbent with depth d and selectivity s is kept over a shallower,
// less selective write unless it is older than the stale threshold.
func (t *Table) replaces(incumbent *hashEntry, depth, selectivity int) bool {
	deeper := depth > int(incumbent.data.Depth)
	moreSelective := selectivity >= int(incumbent.data.Selectivity)
	if deeper && moreSelective {
		return true
	}
	return t.ageOf(incumbent.data.Date) > dateStaleThreshold
}

func (t *Table) mergeInto(e *hashEntry, cost int, depth, selectivity int, lower, upper int, move board.Square, force bool) {
	d := &e.data
	switch {
	case force || depth > int(d.Depth):
		d.Depth = int8(depth)
		d.Selectivity = int8(selectivity)
		d.Lower = int8(lower)
		d.Upper = int8(upper)
		d.Best1 = move
		d.Best2 = board.NOMOVE
	case depth == int(d.Depth) && selectivity == int(d.Selectivity):
		d.Lower, d.Upper = intersect(d.Lower, d.Upper, int8(lower), int8(upper))
		if move != board.NOMOVE {
			d.Best2 = d.Best1
			d.Best1 = move
		}
	default:
		// A shallower, less compatible write only refreshes the
		// generation so the deeper entry survives replacement.
	}
	if int32(cost) > d.Cost {
		d.Cost = int32(cost)
	}
	d.Date = t.date
}

// ExcludeMove clears a stored best move that the caller has determined
// should not be revisited (spec.md §4.3 "hash_exclude_move").
func (t *Table) ExcludeMove(b board.Board, hashCode uint64, move board.Square) {
	key := b.CollisionKey()
	start := t.groupStart(hashCode)
	lock := t.lockFor(start)
	lock.Lock()
	defer lock.Unlock()
	for i := start; i < start+HashNWay; i++ {
		e := &t.entries[i]
		if e.valid && e.key == key && e.board == b {
			if e.data.Best1 == move {
				e.data.Best1 = e.data.Best2
				e.data.Best2 = board.NOMOVE
			} else if e.data.Best2 == move {
				e.data.Best2 = board.NOMOVE
			}
			return
		}
	}
}

// Copy bulk-copies src's entries into dst (spec.md §4.3 hash_copy),
// used to promote a scratch table to the PV table. The caller must
// ensure src is not concurrently written during the copy.
func Copy(src, dst *Table) {
	n := len(src.entries)
	if len(dst.entries) < n {
		n = len(dst.entries)
	}
	copy(dst.entries[:n], src.entries[:n])
	dst.date = src.date
}

// Each calls fn for every live entry. The caller must ensure no
// concurrent writer is active during the walk (the same requirement
// Copy places on its caller); it is used to snapshot the table to
// hashstore and to restore a snapshot via Feed.
func (t *Table) Each(fn func(b board.Board, data HashData)) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.valid {
			fn(e.board, e.data)
		}
	}
}

// HashFull reports the permille of sampled slots in current use,
// matching the teacher's TranspositionTable.HashFull sampling
// diagnostic.
func (t *Table) HashFull() int {
	sample := 1000
	if sample > len(t.entries) {
		sample = len(t.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		e := &t.entries[i]
		if e.valid && t.ageOf(e.data.Date) == 0 {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}
