package search_test

import (
	"context"
	"testing"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/eval"
	"github.com/herohde/lucena/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionTable(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1)

	hash := uint64(0x1234567890abcdef)

	_, ok := tt.Probe(hash, 0)
	assert.False(t, ok)

	m := board.NewMove(board.G1, board.F3, board.Quiet)
	tt.Store(hash, 25, 6, search.ExactBound, m, 0)

	e, ok := tt.Probe(hash, 0)
	require.True(t, ok)
	assert.Equal(t, int16(25), e.Score)
	assert.Equal(t, uint8(6), e.Depth)
	assert.Equal(t, search.ExactBound, e.Bound)
	assert.Equal(t, m, e.Move)

	_, ok = tt.Probe(hash^0xff, 0)
	assert.False(t, ok)

	// Always-replace: a shallower store overwrites.
	tt.Store(hash, -3, 2, search.UpperBound, board.NoMove, 0)
	e, ok = tt.Probe(hash, 0)
	require.True(t, ok)
	assert.Equal(t, int16(-3), e.Score)
	assert.Equal(t, uint8(2), e.Depth)

	tt.Clear()
	_, ok = tt.Probe(hash, 0)
	assert.False(t, ok)
}

// TestMateScoreNormalization: a mate score stored at ply p1 and probed at ply
// p2 reports the distance from the probing node.
func TestMateScoreNormalization(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1)

	hash := uint64(42)

	// Mate 5 plies below a node at ply 3.
	p1, d1 := 3, 5
	s1 := eval.Inf - eval.Score(p1+d1)
	tt.Store(hash, s1, 8, search.ExactBound, board.NoMove, p1)

	// Probing at ply 7: the mate is still 5 plies below the node.
	p2 := 7
	e, ok := tt.Probe(hash, p2)
	require.True(t, ok)
	assert.Equal(t, eval.Inf-eval.Score(p2+d1), eval.Score(e.Score))

	// The same entry probed from the storing ply returns the original score.
	e, ok = tt.Probe(hash, p1)
	require.True(t, ok)
	assert.Equal(t, s1, eval.Score(e.Score))

	// Negative mate scores adjust the other way.
	s2 := -(eval.Inf - eval.Score(p1+d1))
	tt.Store(hash, s2, 8, search.ExactBound, board.NoMove, p1)

	e, ok = tt.Probe(hash, p2)
	require.True(t, ok)
	assert.Equal(t, -(eval.Inf - eval.Score(p2+d1)), eval.Score(e.Score))

	// Non-mate scores pass through unchanged.
	tt.Store(hash, 117, 4, search.LowerBound, board.NoMove, p1)
	e, ok = tt.Probe(hash, p2)
	require.True(t, ok)
	assert.Equal(t, eval.Score(117), eval.Score(e.Score))
}

func TestResize(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1)

	tt.Store(7, 10, 3, search.ExactBound, board.NoMove, 0)
	tt.Resize(ctx, 2)

	// Resize drops all entries and grows the capacity.
	_, ok := tt.Probe(7, 0)
	assert.False(t, ok)
	assert.Greater(t, tt.Size(), uint64(1<<20))
}
