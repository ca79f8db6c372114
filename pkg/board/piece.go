package board

// PieceType represents an uncolored chess piece (King, Pawn, etc), ordered by
// increasing nominal value. 3 bits.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

const (
	ZeroPieceType PieceType = 0
	NumPieceTypes PieceType = 6
)

func ParsePieceType(r rune) (PieceType, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'n', 'N':
		return Knight, true
	case 'b', 'B':
		return Bishop, true
	case 'r', 'R':
		return Rook, true
	case 'q', 'Q':
		return Queen, true
	case 'k', 'K':
		return King, true
	default:
		return 0, false
	}
}

func (p PieceType) IsValid() bool {
	return p <= King
}

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return "?"
	}
}

// Piece represents a colored chess piece. The encoding packs the type and color
// into 4 bits so that both are extractable in constant time. NoPiece is the
// sentinel for an empty square.
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn)<<1 | Piece(White)
	BlackPawn   Piece = Piece(Pawn)<<1 | Piece(Black)
	WhiteKnight Piece = Piece(Knight)<<1 | Piece(White)
	BlackKnight Piece = Piece(Knight)<<1 | Piece(Black)
	WhiteBishop Piece = Piece(Bishop)<<1 | Piece(White)
	BlackBishop Piece = Piece(Bishop)<<1 | Piece(Black)
	WhiteRook   Piece = Piece(Rook)<<1 | Piece(White)
	BlackRook   Piece = Piece(Rook)<<1 | Piece(Black)
	WhiteQueen  Piece = Piece(Queen)<<1 | Piece(White)
	BlackQueen  Piece = Piece(Queen)<<1 | Piece(Black)
	WhiteKing   Piece = Piece(King)<<1 | Piece(White)
	BlackKing   Piece = Piece(King)<<1 | Piece(Black)

	NoPiece Piece = 0xff
)

const NumPieces = 12

func NewPiece(pt PieceType, c Color) Piece {
	return Piece(pt)<<1 | Piece(c)
}

func ParsePiece(r rune) (Piece, bool) {
	pt, ok := ParsePieceType(r)
	if !ok {
		return NoPiece, false
	}
	if 'A' <= r && r <= 'Z' {
		return NewPiece(pt, White), true
	}
	return NewPiece(pt, Black), true
}

func (p Piece) IsValid() bool {
	return p <= BlackKing
}

func (p Piece) Type() PieceType {
	return PieceType(p >> 1)
}

func (p Piece) Color() Color {
	return Color(p & 0x1)
}

func (p Piece) String() string {
	if !p.IsValid() {
		return "?"
	}
	i := int(p.Type())
	if p.Color() == White {
		return "PNBRQK"[i : i+1]
	}
	return "pnbrqk"[i : i+1]
}
