package eval

import (
	"github.com/herohde/lucena/pkg/board"
)

// WinsExchange returns true iff the side to move wins the exchange started by
// the capturing move by strictly more than the threshold, assuming both sides
// keep capturing on the target square with their least valuable attacker.
// Static Exchange Evaluation (SEE).
//
// The exchange is won when:
//   - the running score stays above the threshold even if the opponent gets to
//     capture the last attacker we used;
//   - the score is above the threshold and the opponent runs out of attackers;
//   - the score is above the threshold and the opponent's only attacker is the
//     king but the square is still defended, so the king cannot recapture.
func WinsExchange(m board.Move, threshold Score, pos *board.Position) bool {
	from, to := m.From(), m.To()
	initialSide := pos.SideToMove()

	attackers := pos.GetAttackers(to)

	var victim board.Piece
	if m.Type() == board.EnPassant {
		_, victim = board.EnPassantVictim(initialSide, to)
	} else {
		victim = pos.PieceAt(to)
	}

	side := initialSide
	firstCapture := true
	var gain Score

	// Simulate the capture sequence until one side runs out of attackers.
	for attackers&pos.ColorBitboard(side) != 0 {
		gain += pointValue[victim.Type()]

		var attackerType board.PieceType
		if firstCapture {
			piece := pos.PieceAt(from)
			attackerType = piece.Type()

			if attackerType == board.King && attackers&pos.ColorBitboard(side.Opponent()) != 0 {
				return side != initialSide
			}

			attackers &^= board.BitMask(from)
			victim = piece
			firstCapture = false
		} else {
			// Find the least valuable attacker to recapture with.
			var bb board.Bitboard
			for attackerType = board.Pawn; attackerType <= board.King; attackerType++ {
				bb = attackers & pos.PieceBitboard(side, attackerType)
				if bb != 0 {
					break
				}
			}

			// If the king is the only attacker left and the enemy still
			// defends the square, the king cannot capture and this side's
			// exchange ends here.
			if attackerType == board.King && attackers&pos.ColorBitboard(side.Opponent()) != 0 {
				return side != initialSide
			}

			// Any attacker of the type would do; use the least significant
			// bit.
			sq := bb.LSB()
			attackers &^= board.BitMask(sq)
			victim = board.NewPiece(attackerType, side)
		}

		// If the score stays above the threshold even supposing the attacker
		// is lost to a recapture, the exchange is already decided.
		if gain-pointValue[attackerType] > threshold {
			return side == initialSide
		}

		gain = -gain
		side = side.Opponent()
	}

	// The current side ran out of attackers.
	if side == initialSide {
		return gain > threshold
	}
	return -gain > threshold
}
