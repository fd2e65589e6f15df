package translation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingBackend struct {
	materialized []BlockId
}

func (b *recordingBackend) MaterializeBlock(block *Block) {
	b.materialized = append(b.materialized, block.Id())
}

type testSignature string

func (s testSignature) QualifiedName() string {
	return string(s)
}

func TestRunEmitReachable(t *testing.T) {
	t.Parallel()

	t.Run("single block", func(t *testing.T) {
		run := NewRun(zerolog.Nop())
		backend := &recordingBackend{}
		exit := run.Arena.NewBlock(Return(VOID))

		assert.Equal(t, 1, run.EmitReachable(exit, backend))
		assert.Equal(t, []BlockId{exit.Id()}, backend.materialized)
		assert.True(t, run.IsVisited(exit))
	})

	t.Run("shared block is materialized once", func(t *testing.T) {
		run := NewRun(zerolog.Nop())
		backend := &recordingBackend{}
		a := run.Arena

		join := a.NewBlock(Return(VOID))
		left := join.PrefixedBy(Const(1))
		right := join.PrefixedBy(Const(2))
		root := a.Branch(IF_TRUE, left, right)

		assert.Equal(t, 4, run.EmitReachable(root, backend))
		assert.ElementsMatch(t, []BlockId{join.Id(), left.Id(), right.Id(), root.Id()}, backend.materialized)
		//successors first
		assert.Equal(t, root.Id(), backend.materialized[3])
		assert.Equal(t, join.Id(), backend.materialized[0])
	})

	t.Run("cycles terminate", func(t *testing.T) {
		run := NewRun(zerolog.Nop())
		backend := &recordingBackend{}
		a := run.Arena

		pivot := a.NewBlock()
		exit := a.NewBlock(Return(VOID))
		body := pivot.PrefixedBy(Const(1))
		test := a.Branch(IF_TRUE, body, exit)
		pivot.LinkTo(test)
		root := pivot.PrefixedBy(Const(0))

		assert.Equal(t, 5, run.EmitReachable(root, backend))
		assert.Len(t, backend.materialized, 5)
	})

	t.Run("second emission of the same graph is a no-op", func(t *testing.T) {
		run := NewRun(zerolog.Nop())
		backend := &recordingBackend{}
		root := run.Arena.NewBlock(Return(VOID)).PrefixedBy(Const(0))

		assert.Equal(t, 2, run.EmitReachable(root, backend))
		assert.Equal(t, 0, run.EmitReachable(root, backend))
		assert.Len(t, backend.materialized, 2)
		assert.Equal(t, 2, run.VisitedCount())
	})

	t.Run("unreachable blocks are not emitted", func(t *testing.T) {
		run := NewRun(zerolog.Nop())
		backend := &recordingBackend{}
		unreachable := run.Arena.NewBlock(Return(VOID))
		root := run.Arena.NewBlock(Return(INT))

		run.EmitReachable(root, backend)
		assert.False(t, run.IsVisited(unreachable))
	})
}

func TestRunTranslatedSet(t *testing.T) {
	t.Parallel()

	run := NewRun(zerolog.Nop())
	sig := testSignature("FooTest.t1")

	assert.False(t, run.IsTranslated(sig))
	assert.True(t, run.MarkTranslated(sig))
	assert.False(t, run.MarkTranslated(sig))
	assert.True(t, run.IsTranslated(sig))
	assert.NotEqual(t, NewRun(zerolog.Nop()).ID, run.ID)
}

func TestRunCode(t *testing.T) {
	t.Parallel()

	t.Run("set once per run", func(t *testing.T) {
		run := NewRun(zerolog.Nop())
		sig := testSignature("FooTest.t1")
		root := run.Arena.NewBlock(Return(INT))

		_, ok := run.Code(sig)
		assert.False(t, ok)

		run.SetCode(sig, root)
		code, ok := run.Code(sig)
		assert.True(t, ok)
		assert.Same(t, root, code)

		assert.PanicsWithError(t, "code already set: FooTest.t1", func() {
			run.SetCode(sig, root)
		})
	})

	t.Run("runs do not share code", func(t *testing.T) {
		sig := testSignature("FooTest.t1")

		first := NewRun(zerolog.Nop())
		first.SetCode(sig, first.Arena.NewBlock(Return(INT)))

		second := NewRun(zerolog.Nop())
		_, ok := second.Code(sig)
		assert.False(t, ok)

		root := second.Arena.NewBlock(Return(INT))
		second.SetCode(sig, root)
		code, _ := second.Code(sig)
		assert.Same(t, root, code)
	})

	t.Run("foreign block", func(t *testing.T) {
		run := NewRun(zerolog.Nop())
		assert.Panics(t, func() {
			run.SetCode(testSignature("FooTest.t1"), NewArena().NewBlock(Return(INT)))
		})
	})
}
