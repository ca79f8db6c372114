package board

// MoveType indicates the type of move. 4 bits.
type MoveType uint8

const (
	Quiet MoveType = iota
	DoublePush
	KingCastle
	QueenCastle
	Capture
	EnPassant
	KnightPromotion
	RookPromotion
	BishopPromotion
	QueenPromotion
	KnightPromotionCapture
	RookPromotionCapture
	BishopPromotionCapture
	QueenPromotionCapture
)

// Move represents a not-necessarily-legal move packed into 16 bits:
//
//	 0000   000000 000000
//	|____| |______|______|
//	  |       |      |
//	 type    to    from
//
// In en passant captures the "to" square is the square the capturing pawn moves
// to, and in castling moves it is the square the king moves to. The zero value
// is reserved as "no move".
type Move uint16

const NoMove Move = 0

func NewMove(from, to Square, t MoveType) Move {
	return Move(t&0xf)<<12 | Move(to&0x3f)<<6 | Move(from&0x3f)
}

func (m Move) From() Square {
	return Square(m & 0x3f)
}

func (m Move) To() Square {
	return Square(m >> 6 & 0x3f)
}

func (m Move) Type() MoveType {
	return MoveType(m >> 12 & 0xf)
}

// IsCapture returns true iff the move captures a piece, including en passant
// and capturing promotions.
func (m Move) IsCapture() bool {
	switch m.Type() {
	case Capture, EnPassant, KnightPromotionCapture, RookPromotionCapture,
		BishopPromotionCapture, QueenPromotionCapture:
		return true
	default:
		return false
	}
}

// IsPromotion returns true iff the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Type() >= KnightPromotion
}

// IsQuiet returns true iff the move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsCastling returns true iff the move castles.
func (m Move) IsCastling() bool {
	return m.Type() == KingCastle || m.Type() == QueenCastle
}

// PromotionPieceType returns the piece type a promoting move promotes to. It
// must only be called on promotion moves.
func (m Move) PromotionPieceType() PieceType {
	switch m.Type() {
	case KnightPromotion, KnightPromotionCapture:
		return Knight
	case RookPromotion, RookPromotionCapture:
		return Rook
	case BishopPromotion, BishopPromotionCapture:
		return Bishop
	case QueenPromotion, QueenPromotionCapture:
		return Queen
	default:
		panic("not a promotion")
	}
}

// String formats the move in long algebraic notation, such as "e2e4" or "e7e8q".
// NoMove formats as "0000".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	ret := m.From().String() + m.To().String()
	if m.IsPromotion() {
		ret += m.PromotionPieceType().String()
	}
	return ret
}

// MoveWithScore pairs a move with its ordering score. Move generation emits
// moves with a zero score; scoring is the move picker's concern.
type MoveWithScore struct {
	Move  Move
	Score int16
}

// MaxMoves is the most moves a MoveList can hold. The maximum number of moves
// in a chess position seems to be 218, but we use 256 just in case, and also
// because powers of 2 are cool.
const MaxMoves = 256

// MoveList is a fixed-capacity list of scored moves, sized to avoid allocation
// in the search.
type MoveList struct {
	moves [MaxMoves]MoveWithScore
	len   int
}

func (l *MoveList) Add(m Move) {
	l.moves[l.len] = MoveWithScore{Move: m}
	l.len++
}

func (l *MoveList) Len() int {
	return l.len
}

func (l *MoveList) At(i int) MoveWithScore {
	return l.moves[i]
}

func (l *MoveList) Set(i int, m MoveWithScore) {
	l.moves[i] = m
}

func (l *MoveList) Reset() {
	l.len = 0
}

// Truncate shortens the list to n moves.
func (l *MoveList) Truncate(n int) {
	l.len = n
}

// Slice returns the live backing slice of the list.
func (l *MoveList) Slice() []MoveWithScore {
	return l.moves[:l.len]
}
