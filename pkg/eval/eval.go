package eval

import (
	"github.com/herohde/lucena/pkg/board"
)

// score is a middlegame/endgame pair, blended by the game phase at the end of
// an evaluation.
type score struct {
	mg, eg Score
}

func (s *score) add(o score) {
	s.mg += o.mg
	s.eg += o.eg
}

func (s *score) sub(o score) {
	s.mg -= o.mg
	s.eg -= o.eg
}

// blend interpolates linearly between (0, mg) and (256, eg) at the given phase.
func (s score) blend(phase int) Score {
	return (s.mg*Score(256-phase) + s.eg*Score(phase)) / 256
}

// Evaluate returns the static score of the position in centipawns, from the
// side to move's perspective. It is a tapered sum of middlegame and endgame
// components: material, piece-square bonuses, knight and bishop outposts, and
// pawn structure.
func Evaluate(pos *board.Position) Score {
	us := pos.SideToMove()
	phase := pos.Phase()

	var total score
	for c := board.ZeroColor; c < board.NumColors; c++ {
		for pt := board.ZeroPieceType; pt < board.NumPieceTypes; pt++ {
			bb := pos.PieceBitboard(c, pt)
			for bb != 0 {
				sq := bb.PopLSB()
				s := evaluatePiece(pos, board.NewPiece(pt, c), sq)
				if c == us {
					total.add(s)
				} else {
					total.sub(s)
				}
			}
		}
	}

	return total.blend(phase)
}

func evaluatePiece(pos *board.Position, piece board.Piece, sq board.Square) score {
	pt := piece.Type()
	side := piece.Color()

	s := score{mg: pointValue[pt], eg: pointValue[pt]}
	if pt == board.King {
		// The king's material value cancels out; only its placement counts.
		s = score{}
	}
	s.mg += squareValue(piece, sq, true)
	s.eg += squareValue(piece, sq, false)

	switch pt {
	case board.Knight:
		if isOutpost(pos, sq, side) {
			s.add(knightOutpostBonus)
		}
	case board.Bishop:
		if isOutpost(pos, sq, side) {
			s.add(bishopOutpostBonus)
		}
	case board.Pawn:
		if friendlyPawnBlockers(pos, sq, side) != 0 {
			s.sub(doubledPawnPenalty)
		}
		if enemyPawnStoppers(pos, sq, side) == 0 {
			s.add(passedPawnBonus)
		}
		if adjacentFriendlyPawns(pos, sq, side) == 0 {
			s.sub(isolatedPawnPenalty)
		}
	}

	return s
}

var (
	knightOutpostBonus  = score{mg: 30, eg: 18}
	bishopOutpostBonus  = score{mg: 26, eg: 14}
	doubledPawnPenalty  = score{mg: 8, eg: 12}
	passedPawnBonus     = score{mg: 10, eg: 22}
	isolatedPawnPenalty = score{mg: 5, eg: 15}
	movingPassedBonus   = score{mg: 4, eg: 7}
)

var (
	mgTables = [board.NumPieceTypes]*[64]Score{
		board.Pawn: &mgPawnTable, board.Knight: &mgKnightTable, board.Bishop: &mgBishopTable,
		board.Rook: &mgRookTable, board.Queen: &mgQueenTable, board.King: &mgKingTable,
	}
	egTables = [board.NumPieceTypes]*[64]Score{
		board.Pawn: &egPawnTable, board.Knight: &egKnightTable, board.Bishop: &egBishopTable,
		board.Rook: &egRookTable, board.Queen: &egQueenTable, board.King: &egKingTable,
	}
)

// squareValue returns the piece-square table value. The tables are from the
// point of view of black, so the square is mirrored for white.
func squareValue(piece board.Piece, sq board.Square, middlegame bool) Score {
	if piece.Color() == board.White {
		sq = sq.Flip()
	}
	if middlegame {
		return mgTables[piece.Type()][sq]
	}
	return egTables[piece.Type()][sq]
}

// isOutpost reports whether sq is an outpost for the given side: a square on
// the opponent-facing middle ranks that no enemy pawn attacks now, and that no
// enemy pawn can come to attack with a push unless a friendly pawn blocks it
// first.
func isOutpost(pos *board.Position, sq board.Square, side board.Color) bool {
	r := sq.Rank()
	if side == board.White {
		if r < board.Rank4 || r > board.Rank6 {
			return false
		}
	} else {
		if r < board.Rank3 || r > board.Rank5 {
			return false
		}
	}

	friendly := pos.PieceBitboard(side, board.Pawn)
	enemy := pos.PieceBitboard(side.Opponent(), board.Pawn)

	front := fillFront(sq, side)
	adjacentFront := [2]board.Bitboard{front.East(), front.West()}
	for _, mask := range adjacentFront {
		threats := enemy & mask
		if threats == 0 {
			continue
		}
		// The closest enemy pawn on the adjacent file. If it already attacks
		// sq, the blocker mask below is empty and the square is no outpost.
		threat := threats.LSB()
		if side == board.Black {
			threat = threats.MSB()
		}
		blockers := mask & fillFront(threat, side.Opponent())
		if friendly&blockers == 0 {
			return false
		}
	}
	return true
}

// adjacentFriendlyPawns returns the number of pawns of side on the files next
// to sq. Zero means a pawn on sq is isolated.
func adjacentFriendlyPawns(pos *board.Position, sq board.Square, side board.Color) int {
	file := board.BitFile(sq.File())
	adjacent := file.East() | file.West()
	return (pos.PieceBitboard(side, board.Pawn) & adjacent).PopCount()
}

// enemyPawnStoppers returns the number of enemy pawns that can stop a pawn of
// side on sq, i.e. enemy pawns in front of it on the same or adjacent files.
// Zero means the pawn is passed.
func enemyPawnStoppers(pos *board.Position, sq board.Square, side board.Color) int {
	front := fillFront(sq, side)
	mask := front | front.East() | front.West()
	return (pos.PieceBitboard(side.Opponent(), board.Pawn) & mask).PopCount()
}

// friendlyPawnBlockers returns the number of pawns of side in front of a pawn
// of side on sq. Non-zero means the pawn is doubled.
func friendlyPawnBlockers(pos *board.Position, sq board.Square, side board.Color) int {
	return (pos.PieceBitboard(side, board.Pawn) & fillFront(sq, side)).PopCount()
}

// fillFront returns the squares strictly in front of sq on its file, from the
// point of view of side.
func fillFront(sq board.Square, side board.Color) board.Bitboard {
	file := board.BitFile(sq.File())
	if side == board.White {
		shift := (int(sq) | 7) + 1
		if shift >= 64 {
			return 0
		}
		return file >> shift << shift
	}
	shift := 64 - (int(sq) & ^7)
	if shift >= 64 {
		return 0
	}
	return file << shift >> shift
}
