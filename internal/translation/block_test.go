package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock(t *testing.T) {
	t.Parallel()

	t.Run("new block", func(t *testing.T) {
		a := NewArena()
		b := a.NewBlock(Const(0), Return(INT))

		assert.Equal(t, BlockId(0), b.Id())
		assert.Equal(t, []Instruction{Const(0), Return(INT)}, b.Code())
		assert.True(t, b.IsExit())
		assert.False(t, b.IsShared())
		assert.Equal(t, 1, a.Len())
	})

	t.Run("prefixing does not modify the prefixed block", func(t *testing.T) {
		a := NewArena()
		exit := a.NewBlock(Return(INT))
		prefixed := exit.PrefixedBy(Const(0))

		require.NotSame(t, exit, prefixed)
		assert.Equal(t, []Instruction{Return(INT)}, exit.Code())
		assert.Equal(t, []Instruction{Const(0)}, prefixed.Code())
		assert.Equal(t, []*Block{exit}, prefixed.Successors())
	})

	t.Run("prefixing with no code", func(t *testing.T) {
		a := NewArena()
		exit := a.NewBlock(Return(VOID))
		assert.Same(t, exit, exit.PrefixedBy())
	})

	t.Run("a block reached twice is shared", func(t *testing.T) {
		a := NewArena()
		join := a.NewBlock(Return(VOID))
		left := join.PrefixedBy(Const(1))
		assert.False(t, join.IsShared())

		right := join.PrefixedBy(Const(2))
		branch := a.Branch(IF_TRUE, left, right)

		assert.True(t, join.IsShared())
		assert.Equal(t, IF_TRUE, branch.Cond())
		assert.Equal(t, []*Block{left, right}, branch.Successors())
	})

	t.Run("loop pivot", func(t *testing.T) {
		a := NewArena()
		pivot := a.NewBlock()
		exit := a.NewBlock(Return(VOID))
		body := pivot.PrefixedBy(Const(1))
		test := a.Branch(IF_LT, body, exit)
		pivot.LinkTo(test)

		assert.Equal(t, []*Block{test}, pivot.Successors())
		assert.Equal(t, []*Block{pivot}, body.Successors())
		assert.Panics(t, func() {
			pivot.LinkTo(exit)
		})
	})

	t.Run("blocks of another arena are rejected", func(t *testing.T) {
		a := NewArena()
		other := NewArena().NewBlock(Return(VOID))

		assert.Panics(t, func() {
			a.Jump(other)
		})
	})

	t.Run("branch without condition", func(t *testing.T) {
		a := NewArena()
		exit := a.NewBlock(Return(VOID))

		assert.Panics(t, func() {
			a.Branch(NO_COND, exit, exit)
		})
	})
}

func TestInstructionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "const 1", Const(1).String())
	assert.Equal(t, `newstring "passed"`, NewString("passed").String())
	assert.Equal(t, "virtualcall String.output/0:void", VirtualCall("String", "output", 0, VOID).String())
	assert.Equal(t, "return int", Return(INT).String())
	assert.Equal(t, "getfield Foo.count", GetField("Foo", "count").String())
	assert.Equal(t, "iflt", IF_LT.String())
	assert.Equal(t, 2, IF_GE.Operands())
	assert.Equal(t, 1, IF_TRUE.Operands())
	assert.Panics(t, func() {
		Arithmetic(RETURN)
	})
}
