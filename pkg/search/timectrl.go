package search

import (
	"math"
	"time"
)

// averageGameLength is the number of moves we assume remain in the game when
// the time control does not say.
const averageGameLength = 40

// SearchTime returns how much of the remaining time the next search may spend.
//
// The remaining time has to be divided among the moves still to be played, and
// that number shrinks as the game progresses. We interpolate linearly between
// the average game length and a small floor of moves by the game phase, and
// divide the remaining time by the interpolated value: the engine spends more
// time per move late in the game.
//
// If movestogo is 1 the next move starts a fresh time control, so nearly all
// remaining time is available. It is not safe to use all of it: the engine
// needs a buffer between noticing time is up and sending the move. The factor
//
//	f(x) = (x/1000)^1.1 / (x/1000 + 1)^1.1
//
// over milliseconds approaches 1 as the remaining time grows but leaves a
// margin when the clock is short.
func SearchTime(phase int, remaining time.Duration, movestogo int) time.Duration {
	if movestogo == 1 {
		x := float64(remaining.Milliseconds()) / 1000
		factor := math.Pow(x, 1.1) / math.Pow(x+1, 1.1)
		return time.Duration(float64(remaining) * factor)
	}

	max := float64(averageGameLength)
	if movestogo > 0 && movestogo < averageGameLength {
		max = float64(movestogo)
	}
	divisor := (max*float64(256-phase) + 8*float64(phase)) / 256
	return time.Duration(float64(remaining) / divisor)
}
