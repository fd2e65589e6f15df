package ast

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

type TraversalAction int

const (
	ContinueTraversal TraversalAction = iota
	Prune
	StopTraversal
)

type NodeHandler = func(node Node, parent Node, ancestorChain []Node, after bool) (TraversalAction, error)

// This functions performs a pre-order traversal on an AST (depth first).
// postHandle is called on a node after all its descendants have been visited.
func Walk(node Node, handle, postHandle NodeHandler) (err error) {
	defer func() {
		v := recover()

		switch val := v.(type) {
		case error:
			err = fmt.Errorf("%s:%w", debug.Stack(), val)
		case nil:
		case TraversalAction:
		default:
			panic(v)
		}
	}()

	ancestorChain := make([]Node, 0)
	walk(node, nil, &ancestorChain, handle, postHandle)
	return
}

func walk(node, parent Node, ancestorChain *[]Node, fn, afterFn NodeHandler) {

	if node == nil || reflect.ValueOf(node).IsNil() {
		return
	}

	if ancestorChain != nil {
		*ancestorChain = append((*ancestorChain), parent)
		defer func() {
			*ancestorChain = (*ancestorChain)[:len(*ancestorChain)-1]
		}()
	}

	if fn != nil {
		action, err := fn(node, parent, *ancestorChain, false)

		if err != nil {
			panic(err)
		}

		switch action {
		case StopTraversal:
			panic(StopTraversal)
		case Prune:
			return
		}
	}

	switch n := node.(type) {
	case *ClassDeclaration:
		for _, field := range n.Fields {
			walk(field, node, ancestorChain, fn, afterFn)
		}
		for _, fixture := range n.Fixtures {
			walk(fixture, node, ancestorChain, fn, afterFn)
		}
		for _, test := range n.Tests {
			walk(test, node, ancestorChain, fn, afterFn)
		}
	case *FixtureDeclaration:
		walk(n.Body, node, ancestorChain, fn, afterFn)
	case *TestDeclaration:
		walk(n.Body, node, ancestorChain, fn, afterFn)
	case *Seq:
		walk(n.First, node, ancestorChain, fn, afterFn)
		walk(n.Second, node, ancestorChain, fn, afterFn)
	case *If:
		walk(n.Condition, node, ancestorChain, fn, afterFn)
		walk(n.Then, node, ancestorChain, fn, afterFn)
		walk(n.Else, node, ancestorChain, fn, afterFn)
	case *While:
		walk(n.Condition, node, ancestorChain, fn, afterFn)
		walk(n.Body, node, ancestorChain, fn, afterFn)
	case *FieldAssign:
		walk(n.Value, node, ancestorChain, fn, afterFn)
	case *Assert:
		walk(n.Condition, node, ancestorChain, fn, afterFn)
	case *Binary:
		walk(n.Left, node, ancestorChain, fn, afterFn)
		walk(n.Right, node, ancestorChain, fn, afterFn)
	case *Comparison:
		walk(n.Left, node, ancestorChain, fn, afterFn)
		walk(n.Right, node, ancestorChain, fn, afterFn)
	case *Not:
		walk(n.Operand, node, ancestorChain, fn, afterFn)
	case *And:
		walk(n.Left, node, ancestorChain, fn, afterFn)
		walk(n.Right, node, ancestorChain, fn, afterFn)
	case *Or:
		walk(n.Left, node, ancestorChain, fn, afterFn)
		walk(n.Right, node, ancestorChain, fn, afterFn)
	}

	if afterFn != nil {
		action, err := afterFn(node, parent, *ancestorChain, true)

		if err != nil {
			panic(err)
		}

		switch action {
		case StopTraversal:
			panic(StopTraversal)
		}
	}
}

// CountAsserts returns the number of assert commands in node.
func CountAsserts(node Node) int {
	count := 0
	Walk(node, func(node, parent Node, ancestorChain []Node, after bool) (TraversalAction, error) {
		if _, ok := node.(*Assert); ok {
			count++
		}
		return ContinueTraversal, nil
	}, nil)
	return count
}
