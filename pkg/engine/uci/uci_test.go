package uci

import (
	"testing"
	"time"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/eval"
	"github.com/herohde/lucena/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimits(t *testing.T) {
	tests := []struct {
		args     []string
		expected search.Limits
	}{
		{
			args:     []string{"depth", "6"},
			expected: search.Limits{Depth: lang.Some(6)},
		},
		{
			args:     []string{"nodes", "100000"},
			expected: search.Limits{Nodes: lang.Some(uint64(100000))},
		},
		{
			args:     []string{"mate", "3"},
			expected: search.Limits{Mate: lang.Some(3)},
		},
		{
			args:     []string{"movetime", "2500"},
			expected: search.Limits{MoveTime: lang.Some(2500 * time.Millisecond)},
		},
		{
			args: []string{"infinite"},
			expected: search.Limits{
				Infinite: true,
			},
		},
		{
			args: []string{"wtime", "60000", "btime", "55000", "winc", "1000", "binc", "1000", "movestogo", "20"},
			expected: search.Limits{
				TimeControl: lang.Some(search.TimeControl{
					Time:      [board.NumColors]time.Duration{time.Minute, 55 * time.Second},
					Increment: [board.NumColors]time.Duration{time.Second, time.Second},
					MovesToGo: 20,
				}),
			},
		},
	}

	for _, tt := range tests {
		limits, err := parseLimits(tt.args)
		require.NoError(t, err, "args %v", tt.args)
		assert.Equal(t, tt.expected, limits, "args %v", tt.args)
	}

	_, err := parseLimits([]string{"depth"})
	assert.Error(t, err, "missing argument")
	_, err = parseLimits([]string{"depth", "x"})
	assert.Error(t, err, "bad argument")
}

func TestPrintInfo(t *testing.T) {
	info := search.Info{
		Depth: 8,
		Nodes: 123456,
		NPS:   100000,
		Time:  1242 * time.Millisecond,
		CP:    lang.Some(eval.Score(13)),
	}
	assert.Equal(t, "info depth 8 nodes 123456 nps 100000 time 1242 score cp 13", printInfo(info))

	mate := search.Info{
		Depth: 8,
		Nodes: 123456,
		NPS:   100000,
		Time:  1242 * time.Millisecond,
		Mate:  lang.Some(-2),
	}
	assert.Equal(t, "info depth 8 nodes 123456 nps 100000 time 1242 score mate -2", printInfo(mate))

	mate.LowerBound = true
	assert.Equal(t, "info depth 8 nodes 123456 nps 100000 time 1242 score mate -2 lowerbound", printInfo(mate))
}
