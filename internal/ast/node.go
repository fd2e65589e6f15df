package ast

import (
	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
)

type Node interface {
	Position() sourcecode.Position
}

// A Command is a statement of a test or fixture body.
type Command interface {
	Node

	// TypeCheck checks the command and returns the checker to use for the commands that
	// follow it. Errors are reported through the checker, checking never stops.
	TypeCheck(checker *types.TypeChecker) *types.TypeChecker

	// Terminates reports whether every execution path of the command ends with a return.
	Terminates() bool

	// IsDeadCodeFree reports whether every part of the command can be reached.
	IsDeadCodeFree() bool

	// Translate returns the root of the code executing the command and then continuation.
	Translate(where *Unit, continuation *translation.Block) *translation.Block
}

// An Expression computes a value, its static type is known once it has been type-checked.
type Expression interface {
	Node

	TypeCheck(checker *types.TypeChecker) types.Type

	StaticType() types.Type

	// Translate returns the root of the code pushing the value of the expression and then
	// executing continuation.
	Translate(where *Unit, continuation *translation.Block) *translation.Block

	// TranslateAsTest returns the root of the code evaluating a boolean expression and
	// then executing yes if the value is true and no otherwise. Exactly one of yes and
	// no is executed and nothing is left on the stack.
	TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block
}

// A Unit is the routine whose code is being translated.
type Unit struct {
	Signature *types.CodeSignature
	Arena     *translation.Arena

	// Exit is the code executed by return commands.
	Exit *translation.Block
}

type NodeBase struct {
	Pos sourcecode.Position
}

func (n NodeBase) Position() sourcecode.Position {
	return n.Pos
}

type expressionBase struct {
	NodeBase
	staticType types.Type
}

func (e *expressionBase) StaticType() types.Type {
	return e.staticType
}

// translateAsTestFromValue is the lowering of boolean expressions that have no better
// way to branch: the value is computed and tested.
func translateAsTestFromValue(e Expression, where *Unit, yes, no *translation.Block) *translation.Block {
	return e.Translate(where, where.Arena.Branch(translation.IF_TRUE, yes, no))
}

// translateValueFromTest pushes 1 if the boolean expression holds, 0 otherwise.
func translateValueFromTest(e Expression, where *Unit, continuation *translation.Block) *translation.Block {
	yes := continuation.PrefixedBy(translation.Const(1))
	no := continuation.PrefixedBy(translation.Const(0))
	return e.TranslateAsTest(where, yes, no)
}
