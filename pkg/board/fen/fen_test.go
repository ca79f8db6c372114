package fen_test

import (
	"testing"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"4k3/2pppp2/8/4P1K1/4PP2/3P4/8/8 w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 2",
	}

	for _, tt := range tests {
		p, err := fen.Decode(tt)
		require.NoError(t, err)

		assert.Equal(t, tt, fen.Encode(p))
	}
}

// TestDeadEnPassantNormalized verifies that an en passant square no pawn can
// use is dropped: the canonical output emits "-" even when the input had a
// square.
func TestDeadEnPassantNormalized(t *testing.T) {
	p, err := fen.Decode("rnbqkbnr/1ppppppp/p7/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 2")
	require.NoError(t, err)

	assert.Equal(t, "rnbqkbnr/1ppppppp/p7/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 2", fen.Encode(p))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",            // missing fields
		"rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",          // missing rank
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",        // bad digit
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",        // bad piece
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",        // bad color
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KX - 0 1",          // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KKqk - 0 1",        // duplicate right
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e5 0 1",       // bad ep rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",       // bad clock
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 99999",    // counter too large
		"8/8/8/8/8/8/8/8 w - - 0 1",                                       // no kings
		"kk6/8/8/8/8/8/8/K7 w - - 0 1",                                    // two black kings
	}

	for _, tt := range tests {
		_, err := fen.Decode(tt)
		assert.Error(t, err, "expected rejection: '%v'", tt)
	}
}

func TestDecodeState(t *testing.T) {
	p, err := fen.Decode("r3k2r/8/8/8/8/8/8/R3K2R b Kq - 13 42")
	require.NoError(t, err)

	assert.Equal(t, board.Black, p.SideToMove())
	assert.Equal(t, board.NewCastling(board.White, board.KingSide)|board.NewCastling(board.Black, board.QueenSide), p.Castling())
	assert.Equal(t, 13, p.HalfmoveClock())
	assert.Equal(t, 42, p.FullMoves())
	assert.Equal(t, board.WhiteKing, p.PieceAt(board.E1))
	assert.Equal(t, board.BlackRook, p.PieceAt(board.A8))
}
