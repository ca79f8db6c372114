package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

const (
	// nodeCheckInterval is how often, in nodes, the wall clock and node limit
	// are checked. Checking per node would drown the search in system calls.
	nodeCheckInterval = 1024

	// nullMinDepth is the minimum remaining depth for null-move pruning and
	// nullReduction the depth reduction of the null search.
	nullMinDepth  = 5
	nullReduction = 4

	// futilityFactor is the per-depth margin for reverse and shallow futility
	// pruning.
	futilityFactor = 150

	// maxHalfmoveClock is the fifty-move-rule limit in plies.
	maxHalfmoveClock = 100
)

// frame is the per-ply search stack element.
type frame struct {
	ply         int
	hash        uint64
	refutations [2]board.Move
	nullMove    bool
}

// runner is the state of one search. It owns a private copy of the position;
// the transposition table, the stop flag and the context are shared with the
// controller.
type runner struct {
	ctx context.Context

	pos     *board.Position
	tt      *TranspositionTable
	history History
	stack   [eval.MaxPly + 1]frame

	// hashes holds the position hashes from the start of the game through the
	// current search node, one per ply, for repetition detection.
	hashes []uint64

	nodes     uint64
	nodeLimit uint64
	rootMove  board.Move

	deadline time.Time
	limited  bool

	stop *atomic.Bool
}

func newRunner(ctx context.Context, arg Argument) *runner {
	r := &runner{
		ctx:  ctx,
		pos:  arg.Position.Copy(),
		tt:   arg.TT,
		stop: arg.Stop,
	}
	if r.stop == nil {
		r.stop = &atomic.Bool{}
	}
	r.stop.Store(false)

	r.hashes = make([]uint64, 0, eval.MaxPly+len(arg.Moves)+1)
	r.hashes = append(r.hashes, r.pos.Hash())
	for _, m := range arg.Moves {
		r.pos.DoMove(m)
		r.hashes = append(r.hashes, r.pos.Hash())
	}

	if v, ok := arg.Limits.Nodes.V(); ok {
		r.nodeLimit = v
	}
	if !arg.Limits.Infinite {
		if v, ok := arg.Limits.MoveTime.V(); ok {
			r.limited = true
			r.deadline = time.Now().Add(v)
		} else if tc, ok := arg.Limits.TimeControl.V(); ok {
			c := r.pos.SideToMove()
			if tc.Time[c] > 0 {
				r.limited = true
				r.deadline = time.Now().Add(SearchTime(r.pos.Phase(), tc.Time[c], tc.MovesToGo))
			}
		}
	}

	for i := range r.stack {
		r.stack[i].ply = i
	}
	return r
}

func (r *runner) stopped() bool {
	return r.stop.Load()
}

// checkLimits polls the context, the wall clock and the node limit every
// nodeCheckInterval nodes and raises the stop flag when any of them says to
// quit. Context cancellation is how the controller side winds a search down.
func (r *runner) checkLimits() {
	if r.nodes%nodeCheckInterval != 0 {
		return
	}
	if contextx.IsCancelled(r.ctx) {
		r.stop.Store(true)
	}
	if r.limited && time.Now().After(r.deadline) {
		r.stop.Store(true)
	}
	if r.nodeLimit > 0 && r.nodes >= r.nodeLimit {
		r.stop.Store(true)
	}
}

// isDraw reports a twofold repetition within the reversible window, or a
// halfmove clock at the fifty-move limit. The hash stack covers both the
// search ancestors and the pre-search game history, so a single backwards scan
// two plies at a time handles both cases.
func (r *runner) isDraw() bool {
	if r.pos.HalfmoveClock() >= maxHalfmoveClock {
		return true
	}

	top := len(r.hashes) - 1
	cur := r.hashes[top]
	limit := top - r.pos.HalfmoveClock()
	if limit < 0 {
		limit = 0
	}
	for i := top - 2; i >= limit; i -= 2 {
		if r.hashes[i] == cur {
			return true
		}
	}
	return false
}

// negamax is the fail-soft alpha-beta search. Interior nodes may prune; the
// root (ply 0) always searches at least its first legal move and records it,
// so a best move exists whenever a legal move exists.
func (r *runner) negamax(ply, depth int, alpha, beta eval.Score) eval.Score {
	r.checkLimits()
	// Non-root nodes quit immediately on stop. The returned 0 is never
	// trusted: every caller re-checks the flag after recursing.
	if ply > 0 && r.stopped() {
		return 0
	}

	if depth <= 0 || ply >= eval.MaxPly {
		return r.qsearch(ply, alpha, beta)
	}

	pos := r.pos
	us := pos.SideToMove()
	r.stack[ply].hash = pos.Hash()

	// The twofold heuristic treats a repeated position as a draw. The root
	// itself may already be a repetition of the game history; it still has to
	// search for a move to play, but its score is a draw.
	rootDraw := false
	if r.isDraw() {
		if ply > 0 {
			return 0
		}
		rootDraw = true
	}
	if ply > 0 {
		r.nodes++
	}

	// Probe the transposition table. Sufficiently deep entries cut off
	// directly, except at the root where the best move must come from a real
	// search. The stored move seeds the picker either way.
	ttMove := board.NoMove
	if e, ok := r.tt.Probe(pos.Hash(), ply); ok {
		if pos.IsPseudoLegal(e.Move) {
			ttMove = e.Move
		}
		if ply > 0 && int(e.Depth) >= depth {
			score := eval.Score(e.Score)
			switch e.Bound {
			case ExactBound:
				return score
			case LowerBound:
				if score >= beta {
					return score
				}
			case UpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	inCheck := pos.IsChecked(us)

	var staticEval eval.Score
	if !inCheck {
		staticEval = eval.Evaluate(pos)
	}

	// Reverse futility pruning: if the static evaluation beats beta by a
	// depth-scaled margin, the node is almost certainly a fail-high.
	if ply > 0 && !inCheck && !eval.IsMate(beta) {
		if margin := staticEval - eval.Score(depth)*futilityFactor; margin >= beta {
			return margin
		}
	}

	// Null-move pruning: if passing the turn still beats beta at reduced
	// depth, the position is too good to need a full search. Guarded against
	// back-to-back null moves and pawn-only endgames (zugzwang).
	if ply > 0 && !inCheck && depth >= nullMinDepth && !r.stack[ply-1].nullMove &&
		pos.HasNonPawnMaterial(us) && staticEval >= beta {
		r.stack[ply].nullMove = true
		pos.DoNullMove()
		r.hashes = append(r.hashes, pos.Hash())

		score := -r.negamax(ply+1, depth-nullReduction, -beta, -beta+1)

		r.hashes = r.hashes[:len(r.hashes)-1]
		pos.UndoNullMove()
		r.stack[ply].nullMove = false

		if r.stopped() {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	var picker Picker
	picker.Init(ttMove, r.stack[ply].refutations, &r.history, false)

	var quietsTried []board.Move
	alphaOrig := alpha
	bestScore := -eval.Inf
	bestMove := board.NoMove
	searched := 0

	for m := picker.Next(pos); m != board.NoMove; m = picker.Next(pos) {
		if !pos.IsLegal(m) {
			continue
		}

		// Shallow futility pruning: once one move has been searched, the first
		// quiet move of a hopeless node ends the loop; no later move (quiet or
		// losing capture) is searched.
		if ply > 0 && searched > 0 && m.IsQuiet() && !inCheck && !eval.IsMate(alpha) &&
			staticEval+eval.Score(depth)*futilityFactor <= alpha {
			break
		}

		pos.DoMove(m)
		r.tt.Prefetch(pos.Hash())
		r.hashes = append(r.hashes, pos.Hash())
		score := -r.negamax(ply+1, depth-1, -beta, -alpha)
		r.hashes = r.hashes[:len(r.hashes)-1]
		pos.UndoMove(m)
		searched++

		if r.stopped() {
			if ply > 0 {
				return 0
			}
			// The root completes its current move before stopping, so the
			// first legal move searched is always available.
			if bestMove == board.NoMove {
				bestMove = m
			}
			break
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
			}
		}
		if score >= beta {
			if m.IsQuiet() {
				r.recordRefutation(ply, m)
				r.history.Update(us, m, quietsTried, depth)
			}
			break
		}
		if m.IsQuiet() {
			quietsTried = append(quietsTried, m)
		}
	}

	if searched == 0 {
		if r.stopped() {
			return 0
		}
		// No legal moves: checkmate or stalemate. Preferring shorter mates
		// falls out of the ply adjustment.
		if inCheck {
			return -eval.Inf + eval.Score(ply)
		}
		return 0
	}

	if ply == 0 {
		r.rootMove = bestMove
		if rootDraw {
			return 0
		}
		return bestScore
	}

	if !r.stopped() {
		bound := ExactBound
		switch {
		case bestScore >= beta:
			bound = LowerBound
		case bestScore <= alphaOrig:
			bound = UpperBound
		}
		r.tt.Store(pos.Hash(), bestScore, depth, bound, bestMove, ply)
	}
	return bestScore
}

// qsearch resolves captures until the position is quiet, bounding the static
// evaluation of tactically unstable leaves. Stand-pat cuts off unless in
// check; only captures are searched.
func (r *runner) qsearch(ply int, alpha, beta eval.Score) eval.Score {
	r.checkLimits()
	if r.stopped() {
		return 0
	}

	pos := r.pos
	us := pos.SideToMove()

	r.nodes++

	standPat := eval.Evaluate(pos)
	if !pos.IsChecked(us) && standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	ttMove := board.NoMove
	if e, ok := r.tt.Probe(pos.Hash(), ply); ok {
		if pos.IsPseudoLegal(e.Move) {
			ttMove = e.Move
		}
		score := eval.Score(e.Score)
		switch e.Bound {
		case ExactBound:
			return score
		case LowerBound:
			if score >= beta {
				return score
			}
		case UpperBound:
			if score <= alpha {
				return score
			}
		}
	}

	var picker Picker
	picker.Init(ttMove, [2]board.Move{}, &r.history, true)

	alphaOrig := alpha
	bestScore := standPat
	bestMove := board.NoMove

	for m := picker.Next(pos); m != board.NoMove; m = picker.Next(pos) {
		// The TT move may be quiet; the quiescence search only wants captures.
		// Testing before the legality check avoids the expensive make/unmake
		// for moves we would skip anyway.
		if !m.IsCapture() {
			continue
		}
		if !pos.IsLegal(m) {
			continue
		}

		pos.DoMove(m)
		score := -r.qsearch(ply+1, -beta, -alpha)
		pos.UndoMove(m)

		if r.stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
			}
		}
		if score >= beta {
			break
		}
	}

	if !r.stopped() {
		bound := ExactBound
		switch {
		case bestScore >= beta:
			bound = LowerBound
		case bestScore <= alphaOrig:
			bound = UpperBound
		}
		r.tt.Store(pos.Hash(), bestScore, 0, bound, bestMove, ply)
	}
	return bestScore
}

// firstMove returns the first legal move of the current position, falling back
// to the first pseudo-legal move. Used when a search is stopped before even
// depth 1 could try a move: we never report "no move" while moves exist.
func (r *runner) firstMove() board.Move {
	var list board.MoveList
	r.pos.GeneratePseudoLegal(&list, board.Captures)
	r.pos.GeneratePseudoLegal(&list, board.Quiets)

	for _, ms := range list.Slice() {
		if r.pos.IsLegal(ms.Move) {
			return ms.Move
		}
	}
	if list.Len() > 0 {
		return list.At(0).Move
	}
	return board.NoMove
}

// recordRefutation pushes a quiet beta-cutoff move into the ply's refutation
// slots, keeping the two most recent distinct moves.
func (r *runner) recordRefutation(ply int, m board.Move) {
	refs := &r.stack[ply].refutations
	if refs[0] == m {
		return
	}
	refs[1] = refs[0]
	refs[0] = m
}
