package codegen

import (
	"errors"
	"fmt"

	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
	"github.com/rs/zerolog"
)

var (
	ErrMissingReturn    = errors.New("exit block does not end with a return")
	ErrMisplacedReturn  = errors.New("return in the middle of a block")
	ErrDanglingBlock    = errors.New("successor has not been visited")
	ErrNotMaterialized  = errors.New("block has not been materialized")
	ErrUnknownOperation = errors.New("unknown operation")
)

// A ClassGenerator is the backend of a compilation run for one class image: every block
// handed to MaterializeBlock is lowered to bytecode once, routines are then assembled
// from the lowered blocks.
type ClassGenerator struct {
	run    *translation.Run
	image  *bytecode.Class
	logger zerolog.Logger

	blocks map[translation.BlockId][]byte
}

func NewClassGenerator(run *translation.Run, name string) *ClassGenerator {
	return &ClassGenerator{
		run:    run,
		image:  bytecode.NewClass(name),
		logger: run.Logger.With().Str("class", name).Logger(),
		blocks: map[translation.BlockId][]byte{},
	}
}

// Image returns the class image being generated.
func (g *ClassGenerator) Image() *bytecode.Class {
	return g.image
}

// MaterializeBlock lowers the intermediate code of b, it panics if b has already been
// materialized or if b is not well formed.
func (g *ClassGenerator) MaterializeBlock(b *translation.Block) {
	if _, ok := g.blocks[b.Id()]; ok {
		panic(fmt.Errorf("block %d materialized twice", b.Id()))
	}
	for _, next := range b.Successors() {
		if !g.run.IsVisited(next) {
			panic(fmt.Errorf("%w: %s -> %s", ErrDanglingBlock, b, next))
		}
	}

	code := b.Code()
	var lowered []byte

	for i, instr := range code {
		if instr.Op == translation.RETURN && (i != len(code)-1 || !b.IsExit()) {
			panic(fmt.Errorf("%w: %s", ErrMisplacedReturn, b))
		}
		lowered = append(lowered, g.lower(instr)...)
	}

	if b.IsExit() && (len(code) == 0 || code[len(code)-1].Op != translation.RETURN) {
		panic(fmt.Errorf("%w: %s", ErrMissingReturn, b))
	}

	g.blocks[b.Id()] = lowered
}

func (g *ClassGenerator) lower(instr translation.Instruction) []byte {
	switch instr.Op {
	case translation.CONST:
		index := g.image.AddConstant(bytecode.Constant{Kind: bytecode.IntConstant, Int: instr.Int})
		return bytecode.MakeInstruction(bytecode.OpPushConstant, index)
	case translation.NEWSTRING:
		return bytecode.MakeInstruction(bytecode.OpPushConstant, g.stringConstant(instr.Str))
	case translation.LOAD:
		return bytecode.MakeInstruction(bytecode.OpLoad, instr.Var)
	case translation.GETFIELD:
		return bytecode.MakeInstruction(bytecode.OpGetField, g.stringConstant(instr.Name))
	case translation.PUTFIELD:
		return bytecode.MakeInstruction(bytecode.OpSetField, g.stringConstant(instr.Name))
	case translation.ADD:
		return bytecode.MakeInstruction(bytecode.OpAdd)
	case translation.SUB:
		return bytecode.MakeInstruction(bytecode.OpSub)
	case translation.MUL:
		return bytecode.MakeInstruction(bytecode.OpMul)
	case translation.VIRTUALCALL:
		index := g.methodConstant(instr.Class, instr.Name, instr.Args, KindOf(instr.Returns))
		return bytecode.MakeInstruction(bytecode.OpInvokeVirtual, index)
	case translation.RETURN:
		if instr.Returns == translation.VOID {
			return bytecode.MakeInstruction(bytecode.OpReturn)
		}
		return bytecode.MakeInstruction(bytecode.OpReturnValue)
	}
	panic(fmt.Errorf("%w: %s", ErrUnknownOperation, instr.Op))
}

func (g *ClassGenerator) stringConstant(s string) int {
	return g.image.AddConstant(bytecode.Constant{Kind: bytecode.StringConstant, Str: s})
}

func (g *ClassGenerator) methodConstant(class, name string, args int, returns bytecode.Kind) int {
	return g.image.AddConstant(bytecode.Constant{
		Kind:   bytecode.MethodConstant,
		Method: &bytecode.MethodRef{Class: class, Name: name, Args: args, Returns: returns},
	})
}

// addRoutine assembles the routine whose code starts at root and adds it to the image.
func (g *ClassGenerator) addRoutine(name string, params int, returns bytecode.Kind, root *translation.Block) *bytecode.Routine {
	routine := &bytecode.Routine{
		Name:         name,
		Static:       true,
		Params:       params,
		Locals:       params,
		Returns:      returns,
		Instructions: g.linearize(root),
	}
	if err := g.image.AddRoutine(routine); err != nil {
		panic(err)
	}
	g.logger.Debug().Str("routine", name).Int("size", len(routine.Instructions)).Msg("routine generated")
	return routine
}

// GenerateFields adds the fields of class to the image.
func (g *ClassGenerator) GenerateFields(class *types.ClassType) {
	for _, field := range class.Fields() {
		g.image.Fields = append(g.image.Fields, bytecode.Field{
			Name: field.Name(),
			Kind: KindOf(field.Type().Kind()),
		})
	}
}

// KindOf returns the bytecode kind of values of kind k.
func KindOf(k translation.ValueKind) bytecode.Kind {
	switch k {
	case translation.VOID:
		return bytecode.KindVoid
	case translation.INT:
		return bytecode.KindInt
	case translation.FLOAT:
		return bytecode.KindFloat
	case translation.REFERENCE:
		return bytecode.KindRef
	}
	panic(fmt.Errorf("unknown value kind %s", k))
}
