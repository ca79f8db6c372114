package search

import (
	"context"
	"unsafe"

	"github.com/herohde/lucena/pkg/board"
	"github.com/herohde/lucena/pkg/eval"
	"github.com/seekerror/logw"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	LowerBound Bound = iota
	UpperBound
	ExactBound
)

func (b Bound) String() string {
	switch b {
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	case ExactBound:
		return "Exact"
	default:
		return "?"
	}
}

// Entry is a transposition table entry. Mate scores are stored normalized to
// "plies from this node to mate", so the same position reached at different
// plies agrees on the mate distance.
type Entry struct {
	Hash  uint64
	Score int16
	Move  board.Move
	Depth uint8
	Bound Bound
}

// TranspositionTable is a fixed-slot hash table keyed by the Zobrist hash,
// shared across the searches of a game. Direct-mapped, always-replace. A slot
// is empty iff its stored hash is zero; a position whose hash is genuinely zero
// loses its entries, which is an acceptable loss. The table is owned by the
// controller, which clears and resizes it between searches; during a search
// only the search worker mutates it. It is not safe for concurrent mutation.
type TranspositionTable struct {
	entries  []Entry
	capacity uint64
}

// NewTranspositionTable allocates a table of the given size in mebibytes. For
// collision behavior the capacity is the greatest prime that fits the size.
func NewTranspositionTable(ctx context.Context, mib int) *TranspositionTable {
	capacity := computeCapacity(mib)

	logw.Infof(ctx, "Allocating %vMB TT with %v entries", mib, capacity)

	return &TranspositionTable{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Probe returns the entry for the position hash, if present. The score is
// re-normalized from "plies to mate from the stored node" to the probing
// node's ply.
func (t *TranspositionTable) Probe(hash uint64, ply int) (Entry, bool) {
	e := t.entries[hash%t.capacity]
	if e.Hash != hash || hash == 0 {
		return Entry{}, false
	}
	e.Score = int16(scoreFromTT(eval.Score(e.Score), ply))
	return e, true
}

// Store writes the entry for the position hash, overwriting any previous
// occupant. Mate scores are normalized by the storing node's ply.
func (t *TranspositionTable) Store(hash uint64, score eval.Score, depth int, bound Bound, move board.Move, ply int) {
	t.entries[hash%t.capacity] = Entry{
		Hash:  hash,
		Score: int16(scoreToTT(score, ply)),
		Move:  move,
		Depth: uint8(depth),
		Bound: bound,
	}
}

// Prefetch hints that the slot for the hash will be probed soon. Best-effort;
// a no-op without hardware prefetch support.
func (t *TranspositionTable) Prefetch(hash uint64) {
	_ = t.entries[hash%t.capacity]
}

// Clear zeroes the table.
func (t *TranspositionTable) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
}

// Resize reallocates the table with the given size in mebibytes, dropping all
// entries. Must not be called while a search is running.
func (t *TranspositionTable) Resize(ctx context.Context, mib int) {
	capacity := computeCapacity(mib)

	logw.Infof(ctx, "Resizing TT to %vMB with %v entries", mib, capacity)

	t.entries = make([]Entry, capacity)
	t.capacity = capacity
}

// Size returns the size of the table in bytes.
func (t *TranspositionTable) Size() uint64 {
	return t.capacity * uint64(unsafe.Sizeof(Entry{}))
}

// scoreToTT normalizes a mate score to be relative to the storing node.
func scoreToTT(score eval.Score, ply int) eval.Score {
	switch {
	case score >= eval.Inf-eval.MaxPly:
		return score + eval.Score(ply)
	case score <= -eval.Inf+eval.MaxPly:
		return score - eval.Score(ply)
	default:
		return score
	}
}

// scoreFromTT re-normalizes a stored mate score to the probing node.
func scoreFromTT(score eval.Score, ply int) eval.Score {
	switch {
	case score >= eval.Inf-eval.MaxPly:
		return score - eval.Score(ply)
	case score <= -eval.Inf+eval.MaxPly:
		return score + eval.Score(ply)
	default:
		return score
	}
}

// computeCapacity returns the greatest prime capacity whose table fits in the
// given number of mebibytes.
func computeCapacity(mib int) uint64 {
	if mib < 1 {
		mib = 1
	}
	n := uint64(mib) << 20 / uint64(unsafe.Sizeof(Entry{}))
	return findPrime(n)
}

// findPrime returns the greatest prime less than or equal to n.
func findPrime(n uint64) uint64 {
	for p := n; p > 1; p-- {
		if isPrime(p) {
			return p
		}
	}
	return 2
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for m := uint64(3); m*m <= n; m += 2 {
		if n%m == 0 {
			return false
		}
	}
	return true
}
