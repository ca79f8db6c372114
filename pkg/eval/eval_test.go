package eval_test

import (
	"testing"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/eval"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateSymmetry(t *testing.T) {
	// Mirrored positions with flipped side to move must evaluate identically:
	// the score is from the side to move's perspective.
	tests := [][2]string{
		{
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1",
		},
		{
			"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
			"4k3/4p3/8/8/8/8/8/4K3 b - - 0 1",
		},
		{
			"r3k3/8/8/8/8/8/8/4K2R w K - 0 1",
			"4k2r/8/8/8/8/8/8/R3K3 b k - 0 1",
		},
	}

	for _, tt := range tests {
		white := position(t, tt[0])
		black := position(t, tt[1])
		assert.Equal(t, eval.Evaluate(white), eval.Evaluate(black), "%v vs %v", tt[0], tt[1])
	}
}

func TestEvaluateMaterial(t *testing.T) {
	// An extra queen dominates any positional term.
	up := position(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	assert.Greater(t, eval.Evaluate(up), eval.Score(800))

	down := position(t, "4k3/8/8/8/8/8/8/Q3K3 b - - 0 1")
	assert.Less(t, eval.Evaluate(down), eval.Score(-800))

	// The starting position is balanced.
	initial := position(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	assert.Equal(t, eval.Score(0), eval.Evaluate(initial))
}

func TestEvaluateRange(t *testing.T) {
	tests := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"QQQQk3/8/8/8/8/8/8/4K3 w - - 0 1",
	}

	for _, tt := range tests {
		s := eval.Evaluate(position(t, tt))
		assert.Greater(t, s, -eval.Inf+eval.MaxPly, "%v", tt)
		assert.Less(t, s, eval.Inf-eval.MaxPly, "%v", tt)
	}
}

func TestPieceValue(t *testing.T) {
	assert.Equal(t, eval.Score(100), eval.PieceValue(board.Pawn))
	assert.Equal(t, eval.Score(325), eval.PieceValue(board.Knight))
	assert.Equal(t, eval.Score(350), eval.PieceValue(board.Bishop))
	assert.Equal(t, eval.Score(500), eval.PieceValue(board.Rook))
	assert.Equal(t, eval.Score(1000), eval.PieceValue(board.Queen))
}

func TestMovesToMate(t *testing.T) {
	tests := []struct {
		score    eval.Score
		mate     int
		expected bool
	}{
		{eval.Inf - 1, 1, true},
		{eval.Inf - 2, 1, true},
		{eval.Inf - 3, 2, true},
		{-(eval.Inf - 2), -1, true},
		{-(eval.Inf - 4), -2, true},
		{0, 0, false},
		{2500, 0, false},
		{-2500, 0, false},
	}

	for _, tt := range tests {
		mate, ok := eval.MovesToMate(tt.score)
		assert.Equal(t, tt.expected, ok, "score %v", tt.score)
		assert.Equal(t, tt.mate, mate, "score %v", tt.score)
	}
}

// TestEvaluateMoveCaptureOrder verifies the MVV-LVA property: taking the big
// piece with the small piece scores best.
func TestEvaluateMoveCaptureOrder(t *testing.T) {
	// Both the pawn and the rook can take the queen; the knight has only
	// quiet moves.
	pos := position(t, "4k3/8/2q2p2/3P4/8/5N2/2R5/4K3 w - - 0 1")

	pxq := eval.EvaluateMove(mustParse(t, pos, "d5c6"), pos)
	rxq := eval.EvaluateMove(mustParse(t, pos, "c2c6"), pos)
	nxp := eval.EvaluateMove(mustParse(t, pos, "f3g5"), pos) // quiet knight move

	assert.Greater(t, pxq, rxq, "pawn takes queen beats rook takes queen")
	assert.Greater(t, rxq, nxp, "any queen capture beats a quiet move")
}
