package ordering

import (
	"testing"

	"github.com/edaxgo/edax/internal/board"
	"github.com/edaxgo/edax/internal/eval"
)

func TestHashMoveSortsFirst(t *testing.T) {
	b := board.NewBoard()
	var ml board.MoveList
	board.GenerateMoves(b, &ml)
	if ml.Len() < 2 {
		t.Fatal("opening position should have multiple legal moves")
	}

	hashMove := ml.First().Next.Sq
	cur := eval.Set(b)
	w := eval.NewZeroWeights()

	ScoreMoves(b, &ml, hashMove, cur, w)
	ml.Sort()

	if ml.First().Sq != hashMove {
		t.Errorf("hash move %v did not sort first, got %v", hashMove, ml.First().Sq)
	}
}

func TestCornerMoveOutscoresXSquare(t *testing.T) {
	// Compare the corner and X-square (B2) placement bonuses directly,
	// without building a position where both are legal, since a full
	// game rarely offers both at once.
	if board.Corners.IsSet(board.A1) == false {
		t.Fatal("A1 must be a corner")
	}
	cornerScore := squareBonus(board.A1)
	xScore := squareBonus(board.B2)
	if cornerScore <= xScore {
		t.Errorf("corner bonus %d should exceed X-square score %d", cornerScore, xScore)
	}
}

func TestNoLegalMovesScoresPassAsZero(t *testing.T) {
	var ml board.MoveList
	ml.Push(board.PASS, 0)
	b := board.NewBoard()
	ScoreMoves(b, &ml, board.NOMOVE, nil, nil)
	if ml.First().Score != 0 {
		t.Errorf("pass move score = %d, want 0", ml.First().Score)
	}
}
