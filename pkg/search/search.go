// Package search contains the iterative-deepening alpha-beta search and its
// supporting transposition table, move picker and time policy.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/eval"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// TimeControl represents the per-side wall clock state.
type TimeControl struct {
	// Time is the remaining time on each side's clock.
	Time [board.NumColors]time.Duration
	// Increment is the per-move increment for each side.
	Increment [board.NumColors]time.Duration
	// MovesToGo is the number of moves to the next time control, or 0 if the
	// rest of the game must be played on the remaining time.
	MovesToGo int
}

func (t TimeControl) String() string {
	if t.MovesToGo == 0 {
		return fmt.Sprintf("%.1f<>%.1f", t.Time[board.White].Seconds(), t.Time[board.Black].Seconds())
	}
	return fmt.Sprintf("%.1f<>%.1f[moves=%v]", t.Time[board.White].Seconds(), t.Time[board.Black].Seconds(), t.MovesToGo)
}

// Limits hold the dynamic limits for a single search. Unset limits do not
// constrain the search.
type Limits struct {
	// Depth, if set, limits the search to the given ply depth.
	Depth lang.Optional[int]
	// Nodes, if set, limits the search to the given node count.
	Nodes lang.Optional[uint64]
	// Mate, if set, searches for a mate in the given number of moves.
	Mate lang.Optional[int]
	// MoveTime, if set, searches for the fixed duration.
	MoveTime lang.Optional[time.Duration]
	// TimeControl, if set, derives the search deadline from the clock state.
	TimeControl lang.Optional[TimeControl]
	// Infinite searches until stopped, ignoring the time limits.
	Infinite bool
}

func (l Limits) String() string {
	var ret []string
	if v, ok := l.Depth.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := l.Nodes.V(); ok {
		ret = append(ret, fmt.Sprintf("nodes=%v", v))
	}
	if v, ok := l.Mate.V(); ok {
		ret = append(ret, fmt.Sprintf("mate=%v", v))
	}
	if v, ok := l.MoveTime.V(); ok {
		ret = append(ret, fmt.Sprintf("movetime=%v", v))
	}
	if v, ok := l.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	if l.Infinite {
		ret = append(ret, "infinite")
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Info is a search progress record, emitted after each completed depth. The
// optional fields select what is present; CP and Mate are mutually exclusive.
type Info struct {
	Depth int
	Nodes uint64
	NPS   uint64
	Time  time.Duration
	// CP is the score in centipawns, if the score is not a mate score.
	CP lang.Optional[eval.Score]
	// Mate is the signed number of full moves to mate.
	Mate lang.Optional[int]
	// LowerBound is set iff the search failed high at the root at this depth.
	LowerBound bool
}

func (i Info) String() string {
	score := "?"
	if v, ok := i.CP.V(); ok {
		score = fmt.Sprintf("cp %v", v)
	}
	if v, ok := i.Mate.V(); ok {
		score = fmt.Sprintf("mate %v", v)
	}
	if i.LowerBound {
		score += " lowerbound"
	}
	return fmt.Sprintf("depth=%v score=%v nodes=%v nps=%v time=%v", i.Depth, score, i.Nodes, i.NPS, i.Time)
}

// InfoSender consumes search progress records. Called on the search goroutine;
// it must handle its own synchronization to output.
type InfoSender func(Info)

// BestMoveSender consumes the final best move. Called once, on the search
// goroutine, when the search ends.
type BestMoveSender func(board.Move)

// Argument bundles everything a search needs.
type Argument struct {
	// Position is the base position. The search does not mutate it.
	Position *board.Position
	// Moves are applied to Position first, in order; the positions they pass
	// through seed repetition detection.
	Moves []board.Move
	// Limits bound the search.
	Limits Limits
	// TT is the shared transposition table. Required.
	TT *TranspositionTable
	// Info receives a progress record after each completed depth.
	Info InfoSender
	// BestMove receives the final best move.
	BestMove BestMoveSender
	// Stop requests cooperative termination when set. Polled at node-count
	// boundaries. Optional.
	Stop *atomic.Bool
}

// Search runs an iterative-deepening search and reports the best move of the
// last completed depth (or of depth 1, if even that is cut short). It never
// reports a zero move while a legal move exists. Synchronous: the caller is
// expected to run it on a dedicated goroutine and end it early with the stop
// flag or by cancelling the context.
func Search(ctx context.Context, arg Argument) {
	r := newRunner(ctx, arg)

	logw.Debugf(ctx, "Search %v, limits=%v", r.pos, arg.Limits)

	depthLimit := eval.MaxPly
	if v, ok := arg.Limits.Depth.V(); ok && v < depthLimit {
		depthLimit = v
	} else if m, ok := arg.Limits.Mate.V(); ok && 2*m < depthLimit {
		depthLimit = 2 * m
	}

	best := board.NoMove
	start := time.Now()
	for depth := 1; depth <= depthLimit; depth++ {
		t1 := time.Now()
		nodes := r.nodes

		score := r.negamax(0, depth, -eval.Inf, eval.Inf)
		if r.stopped() {
			// If the search stops in the first iteration we use its best
			// move anyway since we have no choice.
			if depth == 1 {
				best = r.rootMove
			}
			break
		}
		best = r.rootMove

		elapsed := time.Since(start)
		if arg.Info != nil {
			arg.Info(newInfo(depth, score, r.nodes, r.nodes-nodes, elapsed, time.Since(t1)))
		}

		if mate, ok := eval.MovesToMate(score); ok {
			// A forced mate within the horizon is an exact result; deeper
			// searches cannot improve on it.
			if abs(2*mate) <= depth {
				break
			}
		}
		if r.limited && time.Now().After(r.deadline) {
			break
		}
	}

	// A stopped search may not have tried a single move yet; fall back to the
	// first available move rather than reporting "no move" while moves exist.
	// Without legal moves (mate or stalemate) the zero move stands.
	if best == board.NoMove && r.stopped() {
		best = r.firstMove()
	}

	logw.Debugf(ctx, "Search done: bestmove=%v nodes=%v", best, r.nodes)

	if arg.BestMove != nil {
		arg.BestMove(best)
	}
}

func newInfo(depth int, score eval.Score, nodes, depthNodes uint64, elapsed, depthTime time.Duration) Info {
	info := Info{
		Depth: depth,
		Nodes: nodes,
		Time:  elapsed,
	}

	ms := depthTime.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	info.NPS = depthNodes * 1000 / uint64(ms)

	// A mate score carries the distance in plies; the record wants full moves.
	if mate, ok := eval.MovesToMate(score); ok {
		info.Mate = lang.Some(mate)
	} else {
		info.CP = lang.Some(score)
	}
	return info
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
