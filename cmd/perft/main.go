// perft is a movegen debugging tool. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/board/fen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	pos, err := fen.Decode(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()
		nodes := search(pos, i, *divide && i == *depth)
		duration := time.Since(start)

		println(fmt.Sprintf("perft,%v,%v,%v,%v", *position, i, nodes, duration.Microseconds()))
	}
}

func search(pos *board.Position, depth int, d bool) uint64 {
	if !d {
		return pos.Perft(depth)
	}

	var list board.MoveList
	pos.GeneratePseudoLegal(&list, board.Captures)
	pos.GeneratePseudoLegal(&list, board.Quiets)

	var nodes uint64
	for _, ms := range list.Slice() {
		if !pos.IsLegal(ms.Move) {
			continue
		}
		pos.DoMove(ms.Move)
		count := pos.Perft(depth - 1)
		pos.UndoMove(ms.Move)

		println(fmt.Sprintf("%v: %v", ms.Move, count))
		nodes += count
	}
	return nodes
}
