package translation

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// A Backend receives the blocks of a compilation run. MaterializeBlock is called exactly
// once per block and run, after the block and all its successors have been created.
type Backend interface {
	MaterializeBlock(b *Block)
}

// A Signature identifies a unit of code (test, fixture) that is translated at most once per run.
type Signature interface {
	QualifiedName() string
}

var ErrCodeAlreadySet = errors.New("code already set")

// A Run is the state of one compilation run: the arena of its blocks, the set of
// translated signatures with their compiled code and the set of blocks already handed
// to the backend.
// A Run is not safe for concurrent use.
type Run struct {
	ID     ulid.ULID
	Arena  *Arena
	Logger zerolog.Logger

	translated map[Signature]struct{}
	code       map[Signature]*Block
	visited    *bitset.BitSet
}

func NewRun(logger zerolog.Logger) *Run {
	id := ulid.Make()
	return &Run{
		ID:         id,
		Arena:      NewArena(),
		Logger:     logger.With().Str("run", id.String()).Logger(),
		translated: map[Signature]struct{}{},
		code:       map[Signature]*Block{},
		visited:    bitset.New(64),
	}
}

// MarkTranslated adds sig to the set of translated signatures, it returns false if sig
// was already present.
func (r *Run) MarkTranslated(sig Signature) bool {
	if _, ok := r.translated[sig]; ok {
		return false
	}
	r.translated[sig] = struct{}{}
	return true
}

func (r *Run) IsTranslated(sig Signature) bool {
	_, ok := r.translated[sig]
	return ok
}

// SetCode records the root block of the compiled code of sig, it panics if the code of
// sig has already been set during the run.
func (r *Run) SetCode(sig Signature, root *Block) {
	if _, ok := r.code[sig]; ok {
		panic(fmt.Errorf("%w: %s", ErrCodeAlreadySet, sig.QualifiedName()))
	}
	r.Arena.mustOwn(root)
	r.code[sig] = root
}

// Code returns the root block of the compiled code of sig, ok is false if sig has not
// been translated during the run.
func (r *Run) Code(sig Signature) (root *Block, ok bool) {
	root, ok = r.code[sig]
	return
}

// IsVisited reports whether b has already been handed to the backend.
func (r *Run) IsVisited(b *Block) bool {
	return r.visited.Test(uint(b.id))
}

// VisitedCount returns the number of blocks handed to the backend so far.
func (r *Run) VisitedCount() int {
	return int(r.visited.Count())
}

// EmitReachable hands every block reachable from root that has not been visited during
// the run to the backend, successors first. It returns the number of newly visited blocks.
func (r *Run) EmitReachable(root *Block, backend Backend) int {
	r.Arena.mustOwn(root)
	return r.emit(root, backend)
}

func (r *Run) emit(b *Block, backend Backend) int {
	if r.visited.Test(uint(b.id)) {
		return 0
	}
	r.visited.Set(uint(b.id))

	count := 1
	for _, next := range b.next {
		count += r.emit(next, backend)
	}

	backend.MaterializeBlock(b)
	r.Logger.Debug().Uint32("block", uint32(b.id)).Int("instructions", len(b.code)).Msg("block materialized")
	return count
}
