// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/herohde/lucena/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

const counterLimit = 32767

// Decode returns a new position from a FEN description.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (*board.Position, error) {
	// A FEN record contains six whitespace-separated fields:

	parts := strings.Fields(strings.TrimSpace(fen))
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid number of sections in FEN: '%v'", fen)
	}

	// (1) Piece placement (from white's perspective). Each rank is described,
	// starting with rank 8 and ending with rank 1; within each rank, the
	// contents of each square are described from file a through file h.

	var pieces []board.Placement

	f, r := board.FileA, board.Rank8
	for _, ch := range parts[0] {
		switch {
		case ch == '/':
			if f != board.NumFiles || r == board.Rank1 {
				return nil, fmt.Errorf("invalid rank break in FEN: '%v'", fen)
			}
			f = board.FileA
			r--

		case unicode.IsDigit(ch):
			// Blank squares are noted using digits 1 through 8.

			n := board.File(ch - '0')
			if n < 1 || n > 8 || f+n > board.NumFiles {
				return nil, fmt.Errorf("invalid empty-square run in FEN: '%v'", fen)
			}
			f += n

		default:
			piece, ok := board.ParsePiece(ch)
			if !ok || f >= board.NumFiles {
				return nil, fmt.Errorf("invalid piece '%v' in FEN: '%v'", string(ch), fen)
			}
			pieces = append(pieces, board.Placement{Square: board.NewSquare(f, r), Piece: piece})
			f++
		}
	}
	if f != board.NumFiles || r != board.Rank1 {
		return nil, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
	}

	// (2) Active color. "w" means white moves next, "b" means black.

	var turn board.Color
	switch parts[1] {
	case "w":
		turn = board.White
	case "b":
		turn = board.Black
	default:
		return nil, fmt.Errorf("invalid active color in FEN: '%v'", fen)
	}

	// (3) Castling availability: "-" or a "KQkq" subset.

	castling, err := parseCastling(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid castling in FEN: '%v'", fen)
	}

	// (4) En passant target square, or "-". The position only retains the
	// square when a pawn of the side to move can actually capture; a dead en
	// passant square is normalized away.

	ep := board.NumSquares
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil || (sq.Rank() != board.Rank3 && sq.Rank() != board.Rank6) {
			return nil, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		ep = sq
	}

	// (5) Halfmove clock: the number of plies since the last pawn advance or
	// capture, used for the fifty-move rule.

	np, err := strconv.Atoi(parts[4])
	if err != nil || np < 0 || np > counterLimit {
		return nil, fmt.Errorf("invalid halfmove clock in FEN: '%v'", fen)
	}

	// (6) Fullmove number: starts at 1, incremented after Black's move.

	fm, err := strconv.Atoi(parts[5])
	if err != nil || fm < 0 || fm > counterLimit {
		return nil, fmt.Errorf("invalid fullmove counter in FEN: '%v'", fen)
	}

	return board.NewPosition(pieces, turn, castling, ep, np, fm)
}

// Encode encodes the position in canonical FEN notation.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for r := board.NumRanks; r > 0; r-- {
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			piece := pos.PieceAt(board.NewSquare(f, r-1))
			if piece == board.NoPiece {
				blanks++
				continue
			}

			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(piece.String())
		}

		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > 1 {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.SideToMove(), pos.Castling(), ep, pos.HalfmoveClock(), pos.FullMoves())
}

func parseCastling(str string) (board.Castling, error) {
	var ret board.Castling

	if str == "-" {
		return ret, nil
	}
	for _, r := range str {
		var right board.Castling
		switch r {
		case 'K':
			right = board.NewCastling(board.White, board.KingSide)
		case 'Q':
			right = board.NewCastling(board.White, board.QueenSide)
		case 'k':
			right = board.NewCastling(board.Black, board.KingSide)
		case 'q':
			right = board.NewCastling(board.Black, board.QueenSide)
		default:
			return 0, fmt.Errorf("invalid castling: %v", str)
		}
		if ret&right != 0 {
			return 0, fmt.Errorf("duplicate castling right: %v", str)
		}
		ret |= right
	}
	return ret, nil
}
