package search

import (
	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/eval"
)

// pickerStage enumerates the move picker stages in yield order. Empty stages
// fall through to the next; the picker is called hundreds of millions of
// times, so it is a flat state machine rather than a function per stage.
type pickerStage uint8

const (
	stageTT pickerStage = iota
	stageCaptureInit
	stageGoodCapture
	stageRefutation
	stageQuietInit
	stageQuiet
	stageBadCapture
	stageDone
)

// Picker yields the pseudo-legal moves of a position in an order that
// maximizes alpha-beta cutoffs: the transposition table move, then winning
// captures by MVV-LVA and SEE, refutation (killer) moves, quiet moves by
// piece-square delta and history, and finally the losing captures. The picker
// never yields the TT move twice and never mutates the position.
type Picker struct {
	ttMove      board.Move
	refutations [2]board.Move
	history     *History
	skipQuiets  bool

	stage pickerStage
	index int

	capturesEnd    int
	quietsEnd      int
	badCapturesEnd int
	refIndex       int

	moves board.MoveList
}

// Init readies the picker for a fresh position. The TT move must be vetted by
// the caller (it is yielded unchecked); refutations are vetted for
// pseudo-legality here. With skipQuiets, the refutation and quiet stages are
// skipped, as the quiescence search wants.
func (p *Picker) Init(ttMove board.Move, refutations [2]board.Move, history *History, skipQuiets bool) {
	p.ttMove = ttMove
	p.refutations = refutations
	p.history = history
	p.skipQuiets = skipQuiets

	p.stage = stageTT
	if ttMove == board.NoMove {
		p.stage = stageCaptureInit
	}
	p.index = 0
	p.capturesEnd = 0
	p.quietsEnd = 0
	p.badCapturesEnd = 0
	p.refIndex = 0
	p.moves.Reset()
}

// Next returns the next move, or NoMove when exhausted.
func (p *Picker) Next(pos *board.Position) board.Move {
	for {
		switch p.stage {
		case stageTT:
			p.stage = stageCaptureInit
			return p.ttMove

		case stageCaptureInit:
			pos.GeneratePseudoLegal(&p.moves, board.Captures)
			p.capturesEnd = p.moves.Len()
			for i := 0; i < p.capturesEnd; i++ {
				ms := p.moves.At(i)
				ms.Score = clampScore(eval.EvaluateMove(ms.Move, pos))
				p.moves.Set(i, ms)
			}
			// The good- and bad-capture stages return moves in sorted order;
			// sorting once here is cheaper than selecting the best each call.
			insertionSort(p.moves.Slice()[:p.capturesEnd])
			p.stage = stageGoodCapture

		case stageGoodCapture:
			for ; p.index < p.capturesEnd; p.index++ {
				ms := p.moves.At(p.index)
				if ms.Move == p.ttMove {
					continue
				}
				if eval.WinsExchange(ms.Move, -eval.Score(ms.Score)/8, pos) {
					p.index++
					return ms.Move
				}
				// Compact losing captures to the front of the buffer for the
				// final stage. This preserves their sorted order.
				p.moves.Set(p.badCapturesEnd, ms)
				p.badCapturesEnd++
			}
			if p.skipQuiets {
				p.index = 0
				p.stage = stageBadCapture
			} else {
				p.stage = stageRefutation
			}

		case stageRefutation:
			for p.refIndex < len(p.refutations) {
				m := p.refutations[p.refIndex]
				p.refIndex++
				if m != board.NoMove && m != p.ttMove && pos.IsPseudoLegalQuiet(m) {
					return m
				}
			}
			p.stage = stageQuietInit

		case stageQuietInit:
			// The quiet moves go after the compacted bad captures,
			// overwriting the good captures that have already been returned.
			p.index = p.badCapturesEnd
			p.moves.Truncate(p.badCapturesEnd)
			pos.GeneratePseudoLegal(&p.moves, board.Quiets)
			p.quietsEnd = p.moves.Len()
			for i := p.index; i < p.quietsEnd; i++ {
				ms := p.moves.At(i)
				ms.Score = clampScore(eval.EvaluateMove(ms.Move, pos) + p.history.Bonus(pos.SideToMove(), ms.Move))
				p.moves.Set(i, ms)
			}
			insertionSort(p.moves.Slice()[p.index:p.quietsEnd])
			p.stage = stageQuiet

		case stageQuiet:
			for ; p.index < p.quietsEnd; p.index++ {
				m := p.moves.At(p.index).Move
				if m == p.ttMove || m == p.refutations[0] || m == p.refutations[1] {
					continue
				}
				p.index++
				return m
			}
			p.index = 0
			p.stage = stageBadCapture

		case stageBadCapture:
			for ; p.index < p.badCapturesEnd; p.index++ {
				m := p.moves.At(p.index).Move
				if m == p.ttMove {
					continue
				}
				p.index++
				return m
			}
			p.stage = stageDone

		default:
			return board.NoMove
		}
	}
}

func clampScore(s eval.Score) int16 {
	switch {
	case s > 32000:
		return 32000
	case s < -32000:
		return -32000
	default:
		return int16(s)
	}
}

// insertionSort sorts the moves by descending score. The segments are small
// and mostly sorted-ish, so insertion sort beats the generic sort.
func insertionSort(moves []board.MoveWithScore) {
	for i := 1; i < len(moves); i++ {
		m := moves[i]
		j := i - 1
		for ; j >= 0 && moves[j].Score < m.Score; j-- {
			moves[j+1] = moves[j]
		}
		moves[j+1] = m
	}
}

// History is the butterfly history heuristic: a per-side, per-(from, to) score
// of how often a quiet move caused a beta cutoff, aged with the standard
// gravity formula so it adapts as the search moves on.
type History [board.NumColors][board.NumSquares][board.NumSquares]int32

// historyLimit bounds the absolute history value via the gravity term.
const historyLimit = 16384

// Bonus returns the move-ordering term for a quiet move.
func (h *History) Bonus(c board.Color, m board.Move) eval.Score {
	return eval.Score(h[c][m.From()][m.To()] / 64)
}

// Update rewards the quiet move that caused a beta cutoff and punishes the
// quiet moves tried before it, both with magnitude 150·depth and gravity
// pulling values back toward zero.
func (h *History) Update(c board.Color, good board.Move, tried []board.Move, depth int) {
	bonus := int32(150 * depth)
	h.apply(c, good, bonus)
	for _, m := range tried {
		h.apply(c, m, -bonus)
	}
}

func (h *History) apply(c board.Color, m board.Move, bonus int32) {
	entry := &h[c][m.From()][m.To()]
	abs := bonus
	if abs < 0 {
		abs = -abs
	}
	*entry += bonus - *entry*abs/historyLimit
}
