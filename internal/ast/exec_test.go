package ast

import (
	"testing"

	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	TEST_SOURCE_NAME = "foo.kit.yaml"
	MAX_STEPS        = 10_000
)

func pos(line, col int) sourcecode.Position {
	return sourcecode.MakePosition(TEST_SOURCE_NAME, line, col)
}

type recordingBackend struct {
	materialized []translation.BlockId
}

func (b *recordingBackend) MaterializeBlock(block *translation.Block) {
	b.materialized = append(b.materialized, block.Id())
}

type receiver struct{}

// execution interprets the intermediate code of a routine whose receiver has the
// fields of execution.
type execution struct {
	fields map[string]int64
	output []string
}

func newExecution() *execution {
	return &execution{fields: map[string]int64{}}
}

// run executes the code starting at root and returns the returned value, 0 if the
// routine returns nothing.
func (e *execution) run(t *testing.T, root *translation.Block) int64 {
	t.Helper()

	var stack []any
	pop := func() any {
		require.NotEmpty(t, stack, "stack underflow")
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	popInt := func() int64 {
		v := pop()
		i, ok := v.(int64)
		require.True(t, ok, "int expected, found %T", v)
		return i
	}

	b := root
	for steps := 0; ; steps++ {
		require.Less(t, steps, MAX_STEPS, "too many steps")

		for _, instr := range b.Code() {
			switch instr.Op {
			case translation.CONST:
				stack = append(stack, instr.Int)
			case translation.NEWSTRING:
				stack = append(stack, instr.Str)
			case translation.LOAD:
				require.Equal(t, types.RECEIVER_LOCAL_INDEX, instr.Var)
				stack = append(stack, receiver{})
			case translation.GETFIELD:
				require.IsType(t, receiver{}, pop())
				stack = append(stack, e.fields[instr.Name])
			case translation.PUTFIELD:
				value := popInt()
				require.IsType(t, receiver{}, pop())
				e.fields[instr.Name] = value
			case translation.ADD, translation.SUB, translation.MUL:
				right, left := popInt(), popInt()
				switch instr.Op {
				case translation.ADD:
					stack = append(stack, left+right)
				case translation.SUB:
					stack = append(stack, left-right)
				default:
					stack = append(stack, left*right)
				}
			case translation.VIRTUALCALL:
				require.Equal(t, types.STRING_CLASS_NAME, instr.Class)
				require.Equal(t, types.OUTPUT_METHOD_NAME, instr.Name)
				s, ok := pop().(string)
				require.True(t, ok)
				e.output = append(e.output, s)
			case translation.RETURN:
				if instr.Returns == translation.VOID {
					require.Empty(t, stack)
					return 0
				}
				result := popInt()
				require.Empty(t, stack)
				return result
			default:
				t.Fatalf("unexpected instruction %s", instr)
			}
		}

		next := b.Successors()
		switch len(next) {
		case 0:
			t.Fatalf("%s has no successor and does not return", b)
		case 1:
			b = next[0]
		default:
			var holds bool
			if b.Cond() == translation.IF_TRUE {
				holds = popInt() != 0
			} else {
				right, left := popInt(), popInt()
				holds = compare(b.Cond(), left, right)
			}
			if holds {
				b = next[0]
			} else {
				b = next[1]
			}
		}
	}
}

func compare(cond translation.Cond, left, right int64) bool {
	switch cond {
	case translation.IF_EQ:
		return left == right
	case translation.IF_NE:
		return left != right
	case translation.IF_LT:
		return left < right
	case translation.IF_LE:
		return left <= right
	case translation.IF_GT:
		return left > right
	case translation.IF_GE:
		return left >= right
	}
	panic("unexpected condition")
}

// checkedClass checks decl and fails the test if errors have been reported.
func checkedClass(t *testing.T, decl *ClassDeclaration) *types.ClassType {
	t.Helper()
	class := decl.Check(zerolog.Nop())
	require.NoError(t, class.Diagnostics().Err())
	return class
}

func newTestRun() *translation.Run {
	return translation.NewRun(zerolog.Nop())
}

func compiledCode(t *testing.T, run *translation.Run, sig translation.Signature) *translation.Block {
	code, ok := run.Code(sig)
	require.True(t, ok, "%s has not been translated", sig.QualifiedName())
	return code
}
