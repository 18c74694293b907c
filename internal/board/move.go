package board

import "fmt"

// Square index for a pass, and for "no move at all" (an unset slot).
// A pass is only ever synthesized by the caller after observing that
// Moves(P, O) is empty while Moves(O, P) is not; it is never stored as
// a distinct Square bit since PASS does not correspond to a board bit.
const (
	PASS   Square = 64
	NOMOVE Square = 65
)

// Move is one entry in a MoveList: an intrusively linked node so the
// list can be selection-sorted in place without allocation (at most
// 33 legal moves ever exist in a position, per spec.md §3).
type Move struct {
	Sq      Square   // destination square, or PASS
	Flipped Bitboard // opponent discs this play reverses
	Score   int      // ordering key, set by the move orderer
	Next    *Move    // intrusive singly linked list
}

// IsPass reports whether this move is a pass.
func (m *Move) IsPass() bool {
	return m.Sq == PASS
}

func (m *Move) String() string {
	if m == nil || m.Sq == NOMOVE {
		return "(none)"
	}
	if m.Sq == PASS {
		return "PS"
	}
	return fmt.Sprintf("%c%d", 'A'+m.Sq.File(), m.Sq.Rank()+1)
}

// MoveList is a singly linked list rooted at a sentinel node whose Next
// points at the best-scored move so far. Moves are added unsorted and
// then selection-sorted once scores are known (spec.md §3).
type MoveList struct {
	sentinel Move
	storage  [34]Move // backing array for the moves; the sentinel is a separate field
	n        int
}

// Reset empties the list.
func (ml *MoveList) Reset() {
	ml.sentinel = Move{}
	ml.n = 0
}

// Push inserts a move at the head of the list (unsorted).
func (ml *MoveList) Push(sq Square, flipped Bitboard) *Move {
	m := &ml.storage[ml.n]
	ml.n++
	*m = Move{Sq: sq, Flipped: flipped}
	m.Next = ml.sentinel.Next
	ml.sentinel.Next = m
	return m
}

// Len returns the number of moves currently in the list.
func (ml *MoveList) Len() int {
	return ml.n
}

// Empty reports whether the list has no moves.
func (ml *MoveList) Empty() bool {
	return ml.n == 0
}

// First returns the head of the list (nil if empty).
func (ml *MoveList) First() *Move {
	return ml.sentinel.Next
}

// Sort orders the list by descending Score using selection sort: with
// n_moves <= 33 this beats any asymptotically better sort in practice
// and needs no allocation (spec.md §3).
func (ml *MoveList) Sort() {
	prevBest := &ml.sentinel
	for cur := ml.sentinel.Next; cur != nil && cur.Next != nil; cur = prevBest.Next {
		best := cur
		bestPrev := prevBest
		for prev, node := cur, cur.Next; node != nil; prev, node = node, node.Next {
			if node.Score > best.Score {
				best = node
				bestPrev = prev
			}
		}
		if best != cur {
			bestPrev.Next = best.Next
			best.Next = cur
			prevBest.Next = best
		}
		prevBest = best
	}
}

// Remove removes the given move from the list (used to exclude a hash
// move already tried, or for root move exclusion).
func (ml *MoveList) Remove(target *Move) {
	for prev := &ml.sentinel; prev.Next != nil; prev = prev.Next {
		if prev.Next == target {
			prev.Next = target.Next
			return
		}
	}
}

// Find returns the move playing the given square, or nil.
func (ml *MoveList) Find(sq Square) *Move {
	for m := ml.sentinel.Next; m != nil; m = m.Next {
		if m.Sq == sq {
			return m
		}
	}
	return nil
}
