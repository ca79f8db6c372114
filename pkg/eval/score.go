// Package eval contains position evaluation logic and utilities.
package eval

import (
	"fmt"

	"github.com/herohde/lucena/pkg/board"
)

// Score is a signed position or move score in centipawns from the side to
// move's perspective. Normal scores fit in +/- 30000; the band up to Inf is
// reserved for mate scores, where a mate delivered at ply n scores Inf-n.
type Score int32

const (
	// Inf is the infinity bound for the search window. Mate scores live in
	// [Inf-MaxPly; Inf].
	Inf Score = 32000
	// MaxPly is the deepest ply the search can reach.
	MaxPly = 256
)

// IsMate returns true iff the score is a mate score for either side.
func IsMate(s Score) bool {
	return s >= Inf-MaxPly || s <= -Inf+MaxPly
}

// MovesToMate returns the signed number of full moves to mate, if the score is
// a mate score. Negative means the side to move is being mated.
func MovesToMate(s Score) (int, bool) {
	switch {
	case s >= Inf-MaxPly:
		return (int(Inf-s) + 1) / 2, true
	case s <= -Inf+MaxPly:
		return -(int(Inf+s) + 1) / 2, true
	default:
		return 0, false
	}
}

func (s Score) String() string {
	if m, ok := MovesToMate(s); ok {
		return fmt.Sprintf("#%d", m)
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}

// pointValue holds the intrinsic point value of each piece type in the
// centipawn scale, ordered least to most valuable.
var pointValue = [board.NumPieceTypes]Score{
	board.Pawn:   100,
	board.Knight: 325,
	board.Bishop: 350,
	board.Rook:   500,
	board.Queen:  1000,
	board.King:   10000,
}

// PieceValue returns the intrinsic centipawn value of a piece type.
func PieceValue(pt board.PieceType) Score {
	return pointValue[pt]
}
