package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode is a test-local FEN reader to avoid an import cycle with the fen
// package. It assumes well-formed input.
func decode(t *testing.T, fen string) *Position {
	t.Helper()

	fields := strings.Fields(fen)
	require.Len(t, fields, 6, "bad test FEN: %v", fen)

	var pieces []Placement
	f, r := FileA, Rank8
	for _, ch := range fields[0] {
		switch {
		case ch == '/':
			f = FileA
			r--
		case '1' <= ch && ch <= '8':
			f += File(ch - '0')
		default:
			piece, ok := ParsePiece(ch)
			require.True(t, ok, "bad piece %c", ch)
			pieces = append(pieces, Placement{Square: NewSquare(f, r), Piece: piece})
			f++
		}
	}

	turn := White
	if fields[1] == "b" {
		turn = Black
	}

	var castling Castling
	for _, ch := range fields[2] {
		switch ch {
		case 'K':
			castling |= NewCastling(White, KingSide)
		case 'Q':
			castling |= NewCastling(White, QueenSide)
		case 'k':
			castling |= NewCastling(Black, KingSide)
		case 'q':
			castling |= NewCastling(Black, QueenSide)
		}
	}

	ep := NumSquares
	if fields[3] != "-" {
		sq, err := ParseSquareStr(fields[3])
		require.NoError(t, err)
		ep = sq
	}

	pos, err := NewPosition(pieces, turn, castling, ep, 0, 1)
	require.NoError(t, err)
	return pos
}

// TestMakeUnmakeRoundTrip plays every pseudo-legal move of a set of positions
// and verifies that undo restores the position bit-identically, including the
// hash, recursively for a few plies.
func TestMakeUnmakeRoundTrip(t *testing.T) {
	tests := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, tt := range tests {
		pos := decode(t, tt)
		roundtrip(t, pos, 2)
	}
}

func roundtrip(t *testing.T, pos *Position, depth int) {
	if depth == 0 {
		return
	}

	var list MoveList
	pos.GeneratePseudoLegal(&list, Captures)
	pos.GeneratePseudoLegal(&list, Quiets)

	for _, ms := range list.Slice() {
		before := pos.Copy()

		pos.DoMove(ms.Move)

		// The incremental hashes must agree with from-scratch computation
		// after every move.
		assert.Equal(t, hashReversibleFromScratch(pos), pos.hash, "reversible hash mismatch after %v on %v", ms.Move, before)
		assert.Equal(t, hashIrreversibleFromScratch(pos), pos.top().hash, "irreversible hash mismatch after %v on %v", ms.Move, before)

		if pos.IsSquareAttacked(pos.KingSquare(before.SideToMove()), pos.SideToMove()) {
			pos.UndoMove(ms.Move)
			assert.Equal(t, before, pos, "undo mismatch for illegal %v", ms.Move)
			continue
		}

		roundtrip(t, pos, depth-1)

		pos.UndoMove(ms.Move)
		assert.Equal(t, before, pos, "undo mismatch for %v", ms.Move)
		assert.Equal(t, before.Hash(), pos.Hash(), "hash mismatch for %v", ms.Move)
	}
}

func TestNullMoveRoundTrip(t *testing.T) {
	tests := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 3 7",
	}

	for _, tt := range tests {
		pos := decode(t, tt)
		before := pos.Copy()

		pos.DoNullMove()
		assert.Equal(t, before.SideToMove().Opponent(), pos.SideToMove())
		_, hasEP := pos.EnPassant()
		assert.False(t, hasEP)

		pos.UndoNullMove()
		assert.Equal(t, before, pos)
		assert.Equal(t, before.Hash(), pos.Hash())
	}
}

// TestHashIgnoresDeadEnPassant verifies that two positions identical except for
// an en passant flag no pawn can use compare and hash equal.
func TestHashIgnoresDeadEnPassant(t *testing.T) {
	// Black to move right after e2e4: the e3 square is flagged in raw FEN
	// terms, but no black pawn attacks it.
	dead := decode(t, "rnbqkbnr/1ppppppp/p7/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 2")
	plain := decode(t, "rnbqkbnr/1ppppppp/p7/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 2")

	_, hasEP := dead.EnPassant()
	assert.False(t, hasEP)
	assert.Equal(t, plain.Hash(), dead.Hash())
	assert.Equal(t, plain, dead)

	// With a black pawn on d4 the square is live and the flag is kept.
	live := decode(t, "rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 2")
	sq, hasEP := live.EnPassant()
	assert.True(t, hasEP)
	assert.Equal(t, E3, sq)
}

// TestHashSideToMove verifies that the side to move participates in the hash.
func TestHashSideToMove(t *testing.T) {
	white := decode(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	black := decode(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 1")

	assert.NotEqual(t, white.Hash(), black.Hash())
}

// TestCastlingRightsUpdates verifies rights are lost on king moves, rook moves
// and corner captures, and that the hash follows.
func TestCastlingRightsUpdates(t *testing.T) {
	pos := decode(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	// White king move loses both white rights.
	m := NewMove(E1, E2, Quiet)
	pos.DoMove(m)
	assert.Equal(t, NewCastling(Black, KingSide)|NewCastling(Black, QueenSide), pos.Castling())
	assert.Equal(t, hashIrreversibleFromScratch(pos), pos.top().hash)
	pos.UndoMove(m)
	assert.Equal(t, AllCastlingRights, pos.Castling())

	// Rook capture on h8 loses black's kingside right and white's own via the
	// h1 rook leaving.
	m = NewMove(H1, H8, Capture)
	pos.DoMove(m)
	assert.Equal(t, NewCastling(White, QueenSide)|NewCastling(Black, QueenSide), pos.Castling())
	assert.Equal(t, hashIrreversibleFromScratch(pos), pos.top().hash)
	pos.UndoMove(m)
	assert.Equal(t, AllCastlingRights, pos.Castling())
}

func TestPhase(t *testing.T) {
	initial := decode(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	assert.Equal(t, 0, initial.Phase())

	bare := decode(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.Equal(t, 256, bare.Phase())

	middle := decode(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	assert.Greater(t, middle.Phase(), 0)
	assert.Less(t, middle.Phase(), 256)
}
