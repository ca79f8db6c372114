// Package engine contains the game-facing controller: it owns the board state
// and the transposition table, and manages the single search worker.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/board/fen"
	"github.com/herohde/lucena/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

var version = build.NewVersion(0, 9, 0)

const (
	// DefaultHashMB is the default transposition table size in mebibytes.
	DefaultHashMB = 1
	// MinHashMB and MaxHashMB bound the Hash option.
	MinHashMB = 1
	MaxHashMB = 32768
)

// Options are engine creation options.
type Options struct {
	// Hash is the transposition table size in MB.
	Hash int
}

// Option is an engine creation option.
type Option func(*Options)

// WithHash configures the initial transposition table size in MB.
func WithHash(mib int) Option {
	return func(o *Options) {
		o.Hash = mib
	}
}

// Engine encapsulates game-playing logic: position bookkeeping, search and the
// transposition table lifecycle. The table is allocated here and passed
// explicitly into each search; the controller mutates it only between
// searches.
type Engine struct {
	name, author string

	pos   *board.Position // base position from the last reset
	moves []board.Move    // moves applied since, for repetition history

	tt     *search.TranspositionTable
	active *handle
	mu     sync.Mutex
}

// New returns a new engine at the standard starting position.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	opt := Options{Hash: DefaultHashMB}
	for _, fn := range opts {
		fn(&opt)
	}

	e := &Engine{
		name:   name,
		author: author,
		tt:     search.NewTranspositionTable(ctx, clampHash(opt.Hash)),
	}
	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v", e.Name())
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

// Position returns the current position in FEN format.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.currentPosition())
}

// Reset sets up a new position in FEN format, discarding the move history. No
// state is changed if the FEN is rejected.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltIfActive(ctx)

	pos, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.pos = pos
	e.moves = nil

	logw.Debugf(ctx, "Reset %v", position)
	return nil
}

// PlayMoves applies a list of moves in long algebraic notation to the current
// position. The list is validated as a whole: if any move is malformed or
// illegal, nothing is applied and the position is unchanged.
func (e *Engine) PlayMoves(ctx context.Context, lans []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltIfActive(ctx)

	pos := e.currentPosition()
	parsed := make([]board.Move, 0, len(lans))
	for _, lan := range lans {
		m, err := pos.ParseLANMove(lan)
		if err != nil {
			return fmt.Errorf("invalid move list: %v", err)
		}
		if !pos.IsLegal(m) {
			return fmt.Errorf("invalid move list: illegal move '%v'", lan)
		}
		pos.DoMove(m)
		parsed = append(parsed, m)
	}

	e.moves = append(e.moves, parsed...)
	return nil
}

// NewGame prepares for a new game: any active search is halted and the
// transposition table is cleared.
func (e *Engine) NewGame(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltIfActive(ctx)
	e.tt.Clear()

	logw.Debugf(ctx, "New game")
}

// SetHashSize resizes the transposition table to the given size in MB,
// clearing it. Rejected while a search is active.
func (e *Engine) SetHashSize(ctx context.Context, mib int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return fmt.Errorf("search active")
	}
	e.tt.Resize(ctx, clampHash(mib))
	return nil
}

// Analyze searches the current position under the given limits on a dedicated
// worker goroutine. It returns channels of progress records and of the final
// best move; both are closed when the search ends.
func (e *Engine) Analyze(ctx context.Context, limits search.Limits) (<-chan search.Info, <-chan board.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, nil, fmt.Errorf("search already active")
	}

	logw.Debugf(ctx, "Analyze %v, limits=%v", fen.Encode(e.currentPosition()), limits)

	h := &handle{
		stop: &atomic.Bool{},
		quit: iox.NewAsyncCloser(),
		done: make(chan struct{}),
	}
	infos := make(chan search.Info, 64)
	best := make(chan board.Move, 1)

	arg := search.Argument{
		Position: e.pos.Copy(),
		Moves:    append([]board.Move(nil), e.moves...),
		Limits:   limits,
		TT:       e.tt,
		Info: func(info search.Info) {
			// Never let a slow consumer block the search.
			select {
			case infos <- info:
			default:
			}
		},
		BestMove: func(m board.Move) {
			best <- m
		},
		Stop: h.stop,
	}

	// The search context is cancelled when the handle quits, so the worker
	// winds down through the usual context path as well as the stop flag.
	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())

	go func() {
		defer close(h.done)
		defer close(best)
		defer close(infos)
		defer cancel()

		search.Search(wctx, arg)
	}()

	e.active = h
	return infos, best, nil
}

// Halt halts the active search, if any, and waits for it to complete. The
// best move is still delivered on the Analyze channel.
func (e *Engine) Halt(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltIfActive(ctx)
}

// SearchDone clears the active search once its best move has been consumed.
func (e *Engine) SearchDone() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = nil
}

func (e *Engine) haltIfActive(ctx context.Context) {
	if e.active == nil {
		return
	}
	e.active.stop.Store(true)
	e.active.quit.Close()
	<-e.active.done
	e.active = nil

	logw.Debugf(ctx, "Search halted")
}

// currentPosition returns a copy of the base position with the move history
// applied.
func (e *Engine) currentPosition() *board.Position {
	pos := e.pos.Copy()
	for _, m := range e.moves {
		pos.DoMove(m)
	}
	return pos
}

// handle tracks one running search.
type handle struct {
	stop *atomic.Bool
	quit iox.AsyncCloser
	done chan struct{}
}

func clampHash(mib int) int {
	switch {
	case mib < MinHashMB:
		return MinHashMB
	case mib > MaxHashMB:
		return MaxHashMB
	default:
		return mib
	}
}
