package translation

import (
	"errors"
	"fmt"
)

var (
	ErrBlockAlreadyLinked = errors.New("block already has successors")
	ErrForeignBlock       = errors.New("block belongs to another arena")
)

type BlockId uint32

// A Block is a node of a control-flow graph: a sequence of instructions followed by zero,
// one or two successors. A block without successors must end with a RETURN. A block with
// two successors ends with a branch on Cond, the first successor is taken when Cond holds.
//
// Blocks are allocated in an Arena and addressed by their id; a block may be reached from
// several predecessors and from loop back-edges, traversals must not assume a tree.
type Block struct {
	id    BlockId
	arena *Arena
	code  []Instruction
	cond  Cond
	next  []*Block
	preds int
}

// An Arena allocates the blocks of one compilation run.
type Arena struct {
	blocks []*Block
}

func NewArena() *Arena {
	return &Arena{}
}

// NewBlock creates a block without successors containing code.
func (a *Arena) NewBlock(code ...Instruction) *Block {
	b := &Block{
		id:    BlockId(len(a.blocks)),
		arena: a,
		code:  append([]Instruction(nil), code...),
	}
	a.blocks = append(a.blocks, b)
	return b
}

// Jump creates a block containing code that continues with next.
func (a *Arena) Jump(next *Block, code ...Instruction) *Block {
	b := a.NewBlock(code...)
	b.LinkTo(next)
	return b
}

// Branch creates an empty block that continues with yes if cond holds and with no otherwise.
func (a *Arena) Branch(cond Cond, yes, no *Block) *Block {
	if cond == NO_COND {
		panic(errors.New("a branch requires a condition"))
	}
	b := a.NewBlock()
	a.mustOwn(yes)
	a.mustOwn(no)
	b.cond = cond
	b.next = []*Block{yes, no}
	yes.preds++
	no.preds++
	return b
}

func (a *Arena) Get(id BlockId) (*Block, bool) {
	if int(id) >= len(a.blocks) {
		return nil, false
	}
	return a.blocks[id], true
}

// Len returns the number of allocated blocks, ids are in [0, Len()).
func (a *Arena) Len() int {
	return len(a.blocks)
}

func (a *Arena) mustOwn(b *Block) {
	if b.arena != a {
		panic(fmt.Errorf("%w: block %d", ErrForeignBlock, b.id))
	}
}

func (b *Block) Id() BlockId {
	return b.id
}

// Code returns the instructions of the block, the result should not be modified.
func (b *Block) Code() []Instruction {
	return b.code
}

func (b *Block) Cond() Cond {
	return b.cond
}

// Successors returns the successors of the block, the result should not be modified.
func (b *Block) Successors() []*Block {
	return b.next
}

func (b *Block) IsExit() bool {
	return len(b.next) == 0
}

// IsShared reports whether more than one edge leads to the block.
func (b *Block) IsShared() bool {
	return b.preds > 1
}

// LinkTo makes next the only successor of b. It is used to close loops: the pivot of a
// loop is created first and linked once the loop body exists.
func (b *Block) LinkTo(next *Block) {
	if len(b.next) != 0 {
		panic(fmt.Errorf("%w: block %d", ErrBlockAlreadyLinked, b.id))
	}
	b.arena.mustOwn(next)
	b.next = []*Block{next}
	next.preds++
}

// PrefixedBy returns a block that executes code and then b. b is left untouched so
// its other predecessors are not affected.
func (b *Block) PrefixedBy(code ...Instruction) *Block {
	if len(code) == 0 {
		return b
	}
	return b.arena.Jump(b, code...)
}

func (b *Block) String() string {
	return fmt.Sprintf("block %d (%d instructions, %d successors)", b.id, len(b.code), len(b.next))
}
