package codegen

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/kittenlang/kitten/internal/translation"
)

var jumpOpcodes = map[translation.Cond]bytecode.Opcode{
	translation.IF_TRUE: bytecode.OpJumpIfTrue,
	translation.IF_EQ:   bytecode.OpJumpIfEQ,
	translation.IF_NE:   bytecode.OpJumpIfNE,
	translation.IF_LT:   bytecode.OpJumpIfLT,
	translation.IF_LE:   bytecode.OpJumpIfLE,
	translation.IF_GT:   bytecode.OpJumpIfGT,
	translation.IF_GE:   bytecode.OpJumpIfGE,
}

// layout returns the blocks reachable from root in code order. Blocks are laid out depth
// first: a block is followed by its only successor or by the successor taken when its
// condition does not hold, so that most transfers are fallthroughs.
func (g *ClassGenerator) layout(root *translation.Block) []*translation.Block {
	placed := bitset.New(uint(g.run.Arena.Len()))
	var order []*translation.Block
	var pending []*translation.Block

	current := root
	for current != nil {
		for current != nil && !placed.Test(uint(current.Id())) {
			placed.Set(uint(current.Id()))
			order = append(order, current)

			next := current.Successors()
			switch len(next) {
			case 0:
				current = nil
			case 1:
				current = next[0]
			default:
				pending = append(pending, next[0])
				current = next[1]
			}
		}

		current = nil
		for len(pending) > 0 && current == nil {
			candidate := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			if !placed.Test(uint(candidate.Id())) {
				current = candidate
			}
		}
	}
	return order
}

// linearize assembles the materialized blocks reachable from root into the code of a
// routine. Jump targets are absolute addresses.
func (g *ClassGenerator) linearize(root *translation.Block) []byte {
	order := g.layout(root)

	fallsTo := func(i int, b *translation.Block) bool {
		return i+1 < len(order) && order[i+1] == b
	}

	addresses := make(map[translation.BlockId]int, len(order))
	address := 0
	for i, b := range order {
		code, ok := g.blocks[b.Id()]
		if !ok {
			panic(fmt.Errorf("%w: %s", ErrNotMaterialized, b))
		}
		addresses[b.Id()] = address
		address += len(code)

		next := b.Successors()
		switch len(next) {
		case 1:
			if !fallsTo(i, next[0]) {
				address += bytecode.InstructionSize(bytecode.OpJump)
			}
		case 2:
			address += bytecode.InstructionSize(jumpOpcodes[b.Cond()])
			if !fallsTo(i, next[1]) {
				address += bytecode.InstructionSize(bytecode.OpJump)
			}
		}
	}

	routine := make([]byte, 0, address)
	for i, b := range order {
		routine = append(routine, g.blocks[b.Id()]...)

		next := b.Successors()
		switch len(next) {
		case 1:
			if !fallsTo(i, next[0]) {
				routine = append(routine, bytecode.MakeInstruction(bytecode.OpJump, addresses[next[0].Id()])...)
			}
		case 2:
			op, ok := jumpOpcodes[b.Cond()]
			if !ok {
				panic(fmt.Errorf("no jump for condition %s", b.Cond()))
			}
			routine = append(routine, bytecode.MakeInstruction(op, addresses[next[0].Id()])...)
			if !fallsTo(i, next[1]) {
				routine = append(routine, bytecode.MakeInstruction(bytecode.OpJump, addresses[next[1].Id()])...)
			}
		}
	}
	return routine
}
