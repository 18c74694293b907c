package stability

import (
	"testing"

	"github.com/edaxgo/edax/internal/board"
)

func TestCornerAlwaysStable(t *testing.T) {
	var mine board.Bitboard = board.SquareBB(board.A1)
	var opp board.Bitboard
	stable := Stable(mine, opp)
	if !stable.IsSet(board.A1) {
		t.Error("a lone occupied corner must be stable")
	}
}

func TestFilledBoardFullyStable(t *testing.T) {
	// Fill every square so every line is full: all discs must be stable.
	var mine board.Bitboard
	for sq := board.Square(0); sq < 32; sq++ {
		mine |= board.SquareBB(sq)
	}
	var opp board.Bitboard
	for sq := board.Square(32); sq < 64; sq++ {
		opp |= board.SquareBB(sq)
	}
	stable := Stable(mine, opp)
	if stable != mine {
		t.Errorf("on a completely full board every disc is stable: got %d of %d", stable.PopCount(), mine.PopCount())
	}
}

func TestEmptyBoardNoStability(t *testing.T) {
	if Count(0, 0) != 0 {
		t.Error("empty board has no stable discs")
	}
}

func TestFourCornersOwnedIsAtLeastFourStable(t *testing.T) {
	mine := board.Corners
	var opp board.Bitboard
	if Count(mine, opp) < 4 {
		t.Errorf("all four corners occupied must give at least 4 stable discs, got %d", Count(mine, opp))
	}
}
