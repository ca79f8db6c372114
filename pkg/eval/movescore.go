package eval

import (
	"github.com/herohde/lucena/pkg/board"
)

// EvaluateMove guesses how good a move is without searching it: the tapered
// piece-square delta of the moving piece plus MVV-LVA for captures, with the
// same outpost and pawn-structure terms the static evaluation uses. The better
// the guess, the more nodes the alpha-beta search prunes.
func EvaluateMove(m board.Move, pos *board.Position) Score {
	phase := pos.Phase()
	piece := pos.PieceAt(m.From())

	var s score
	if m.IsCapture() {
		v := mvvLVA(m, pos)
		s.mg += v
		s.eg += v
	}
	s.add(evaluatePieceMove(m, piece, pos))

	return s.blend(phase)
}

// mvvLVA scores a capture by "Most Valuable Victim - Least Valuable Aggressor":
// capturing a valuable piece with a cheap one is generally good, even if the
// attacker is lost on the next move.
func mvvLVA(m board.Move, pos *board.Position) Score {
	attacker := pos.PieceAt(m.From())

	var victim board.PieceType
	if m.Type() == board.EnPassant {
		victim = board.Pawn
	} else {
		victim = pos.PieceAt(m.To()).Type()
	}

	// The point values are ordered least to most valuable, so indexing from
	// the back turns the attacker value into an aggressor penalty.
	return pointValue[board.NumPieceTypes-1-attacker.Type()] + pointValue[victim]
}

func evaluatePieceMove(m board.Move, piece board.Piece, pos *board.Position) score {
	from, to := m.From(), m.To()
	side := piece.Color()

	var s score
	s.mg = squareValue(piece, to, true) - squareValue(piece, from, true)
	s.eg = squareValue(piece, to, false) - squareValue(piece, from, false)

	switch piece.Type() {
	case board.Knight:
		if isOutpost(pos, to, side) {
			s.add(knightOutpostBonus)
		}
		if isOutpost(pos, from, side) {
			s.sub(knightOutpostBonus)
		}
	case board.Bishop:
		if isOutpost(pos, to, side) {
			s.add(bishopOutpostBonus)
		}
		if isOutpost(pos, from, side) {
			s.sub(bishopOutpostBonus)
		}
	case board.Pawn:
		s.add(evaluatePawnMove(m, side, pos))
	}

	return s
}

func evaluatePawnMove(m board.Move, side board.Color, pos *board.Position) score {
	from, to := m.From(), m.To()

	var s score
	if m.IsPromotion() {
		s.mg += pointValue[board.Queen] - pointValue[board.Pawn]
		// Promotions are more promising in the endgame.
		s.eg += pointValue[board.Queen]
	}

	if enemyPawnStoppers(pos, from, side) == 0 {
		// Pushing a passed pawn.
		s.add(movingPassedBonus)
	} else if enemyPawnStoppers(pos, to, side) == 0 {
		// The move creates a passed pawn.
		s.add(passedPawnBonus)
	}

	if m.IsCapture() && !m.IsPromotion() {
		if friendlyPawnBlockers(pos, to, side) != 0 {
			s.sub(doubledPawnPenalty)
		}
		if adjacentFriendlyPawns(pos, to, side) == 0 {
			s.sub(isolatedPawnPenalty)
		}
	}

	return s
}
