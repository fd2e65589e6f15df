package ast

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleClass() *ClassDeclaration {
	return &ClassDeclaration{
		Name:   "Foo",
		Fields: []*FieldDeclaration{{Name: "count", TypeName: "int"}},
		Fixtures: []*FixtureDeclaration{
			{Name: "init", Body: increment(3)},
		},
		Tests: []*TestDeclaration{
			{Name: "t1", Body: NewAssert(pos(5, 5), NewBooleanLiteral(pos(5, 12), true))},
			{Name: "t2", Body: NewSeq(
				NewAssert(pos(7, 5), NewNot(pos(7, 12), NewBooleanLiteral(pos(7, 16), false))),
				&If{
					Condition: NewBooleanLiteral(pos(8, 8), true),
					Then:      NewAssert(pos(9, 7), NewBooleanLiteral(pos(9, 14), true)),
				},
			)},
		},
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()

	t.Run("count asserts", func(t *testing.T) {
		assert.Equal(t, 3, CountAsserts(sampleClass()))
	})

	t.Run("prune", func(t *testing.T) {
		var visited []Node
		err := Walk(sampleClass(), func(node, parent Node, ancestorChain []Node, after bool) (TraversalAction, error) {
			visited = append(visited, node)
			if _, ok := node.(*TestDeclaration); ok {
				return Prune, nil
			}
			return ContinueTraversal, nil
		}, nil)

		assert.NoError(t, err)
		for _, node := range visited {
			_, isAssert := node.(*Assert)
			assert.False(t, isAssert)
		}
	})

	t.Run("stop", func(t *testing.T) {
		count := 0
		err := Walk(sampleClass(), func(node, parent Node, ancestorChain []Node, after bool) (TraversalAction, error) {
			count++
			return StopTraversal, nil
		}, nil)

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("error", func(t *testing.T) {
		handlerErr := errors.New("handler error")
		err := Walk(sampleClass(), func(node, parent Node, ancestorChain []Node, after bool) (TraversalAction, error) {
			return ContinueTraversal, handlerErr
		}, nil)

		assert.ErrorIs(t, err, handlerErr)
	})
}

func TestWriteDot(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	assert.NoError(t, WriteDot(buf, sampleClass()))

	dot := buf.String()
	assert.Contains(t, dot, `digraph "ast" {`)
	assert.Contains(t, dot, `n0 [label="ClassDeclaration Foo"];`)
	assert.Contains(t, dot, `[label="TestDeclaration t2"];`)
	assert.Contains(t, dot, "n0 -> n1;")
}
