// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/board/fen"
	"github.com/herohde/lucena/pkg/engine"
	"github.com/herohde/lucena/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

const ProtocolName = "uci"

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
	ponder bool        // Ponder option: accepted, but ignored
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	// After "uci" the engine identifies itself, lists its options and
	// acknowledges with "uciok".

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", engine.DefaultHashMB, engine.MinHashMB, engine.MaxHashMB)
	d.out <- "option name Ponder type check default false"
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(strings.TrimSpace(line))
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				// "isready" synchronizes the GUI with the engine. Always
				// answered with "readyok", even while searching.

				d.out <- "readyok"

			case "debug":
				// Ignored: debug output goes to the log regardless.

			case "setoption":
				// setoption name <id> [value <x>]

				d.setOption(ctx, args)

			case "ucinewgame":
				// The next position will be from a different game: drop the
				// accumulated search state.

				d.ensureInactive(ctx)
				d.e.NewGame(ctx)

			case "position":
				// position [startpos | fen <fenstring>] [moves <move1> ...]

				d.ensureInactive(ctx)

				if err := d.position(ctx, args); err != nil {
					logw.Errorf(ctx, "Invalid position '%v': %v", line, err)
				}

			case "go":
				// go [searchmoves ...] [wtime x] [btime x] [winc x] [binc x]
				//    [movestogo x] [depth x] [nodes x] [mate x] [movetime x]
				//    [infinite]

				d.ensureInactive(ctx)

				limits, err := parseLimits(args)
				if err != nil {
					logw.Errorf(ctx, "Invalid go '%v': %v", line, err)
					break
				}
				d.analyze(ctx, limits)

			case "stop":
				d.e.Halt(ctx)

			case "ponderhit":
				// Pondering is not implemented, so there is nothing to do.

			case "quit":
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) setOption(ctx context.Context, args []string) {
	var name, value string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
			}
		case "value":
			if i+1 < len(args) {
				value = args[i+1]
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		mib, err := strconv.Atoi(value)
		if err != nil {
			logw.Errorf(ctx, "Invalid Hash value '%v'", value)
			return
		}
		d.ensureInactive(ctx)
		if err := d.e.SetHashSize(ctx, mib); err != nil {
			logw.Errorf(ctx, "Hash resize failed: %v", err)
		}

	case "ponder":
		d.ponder, _ = strconv.ParseBool(value)

	default:
		logw.Warningf(ctx, "Unknown option '%v'", name)
	}
}

func (d *Driver) position(ctx context.Context, args []string) error {
	position := fen.Initial
	rest := args

	if len(args) > 0 && args[0] == "fen" {
		if len(args) < 7 {
			return fmt.Errorf("truncated fen")
		}
		position = strings.Join(args[1:7], " ")
		rest = args[7:]
	} else if len(args) > 0 && args[0] == "startpos" {
		rest = args[1:]
	}

	if err := d.e.Reset(ctx, position); err != nil {
		return err
	}

	if len(rest) > 0 {
		if rest[0] != "moves" {
			return fmt.Errorf("unexpected token '%v'", rest[0])
		}
		return d.e.PlayMoves(ctx, rest[1:])
	}
	return nil
}

func (d *Driver) analyze(ctx context.Context, limits search.Limits) {
	infos, best, err := d.e.Analyze(ctx, limits)
	if err != nil {
		logw.Errorf(ctx, "Analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	// Forward progress records as they arrive and complete with "bestmove"
	// when the search ends.

	go func() {
		for info := range infos {
			d.out <- printInfo(info)
		}
		m, ok := <-best
		d.e.SearchDone()
		if d.active.CompareAndSwap(true, false) {
			if !ok {
				m = board.NoMove
			}
			d.out <- fmt.Sprintf("bestmove %v", m)
		}
	}()
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	d.e.Halt(ctx)
	d.e.SearchDone()
}

func parseLimits(args []string) (search.Limits, error) {
	var limits search.Limits
	tc := search.TimeControl{}
	hasTC := false

	for i := 0; i < len(args); i++ {
		cmd := args[i]

		if cmd == "infinite" {
			limits.Infinite = true
			continue
		}

		switch cmd {
		case "depth", "nodes", "mate", "movetime", "wtime", "btime", "winc", "binc", "movestogo":
			// These take an integer argument.
		default:
			// Silently ignore anything not handled, including "ponder" and
			// "searchmoves" with its move list.
			continue
		}

		i++
		if i == len(args) {
			return limits, fmt.Errorf("no argument for %v", cmd)
		}
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return limits, fmt.Errorf("invalid argument for %v: %v", cmd, err)
		}

		switch cmd {
		case "depth":
			limits.Depth = lang.Some(n)
		case "nodes":
			limits.Nodes = lang.Some(uint64(n))
		case "mate":
			limits.Mate = lang.Some(n)
		case "movetime":
			limits.MoveTime = lang.Some(time.Duration(n) * time.Millisecond)
		case "wtime":
			tc.Time[board.White] = time.Duration(n) * time.Millisecond
			hasTC = true
		case "btime":
			tc.Time[board.Black] = time.Duration(n) * time.Millisecond
			hasTC = true
		case "winc":
			tc.Increment[board.White] = time.Duration(n) * time.Millisecond
			hasTC = true
		case "binc":
			tc.Increment[board.Black] = time.Duration(n) * time.Millisecond
			hasTC = true
		case "movestogo":
			tc.MovesToGo = n
			hasTC = true
		}
	}

	if hasTC {
		limits.TimeControl = lang.Some(tc)
	}
	return limits, nil
}

// printInfo formats a progress record, e.g.
// "info depth 8 nodes 123456 nps 100000 time 1242 score cp 13".
func printInfo(info search.Info) string {
	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", info.Depth))
	parts = append(parts, fmt.Sprintf("nodes %v", info.Nodes))
	parts = append(parts, fmt.Sprintf("nps %v", info.NPS))
	parts = append(parts, fmt.Sprintf("time %v", info.Time.Milliseconds()))
	if mate, ok := info.Mate.V(); ok {
		parts = append(parts, fmt.Sprintf("score mate %v", mate))
	} else if cp, ok := info.CP.V(); ok {
		parts = append(parts, fmt.Sprintf("score cp %v", int(cp)))
	}
	if info.LowerBound {
		parts = append(parts, "lowerbound")
	}
	return strings.Join(parts, " ")
}
