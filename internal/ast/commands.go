package ast

import (
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
)

var (
	_ = []Command{(*Skip)(nil), (*Seq)(nil), (*If)(nil), (*While)(nil), (*Return)(nil), (*FieldAssign)(nil), (*Assert)(nil)}
)

// Skip does nothing.
type Skip struct {
	NodeBase
}

func (c *Skip) TypeCheck(checker *types.TypeChecker) *types.TypeChecker {
	return checker
}

func (c *Skip) Terminates() bool {
	return false
}

func (c *Skip) IsDeadCodeFree() bool {
	return true
}

func (c *Skip) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return continuation
}

// Seq executes First and then Second.
type Seq struct {
	NodeBase
	First  Command
	Second Command
}

// NewSeq chains commands from left to right, it returns a Skip if there are none.
func NewSeq(commands ...Command) Command {
	switch len(commands) {
	case 0:
		return &Skip{}
	case 1:
		return commands[0]
	}
	first := commands[0]
	return &Seq{
		NodeBase: NodeBase{Pos: first.Position()},
		First:    first,
		Second:   NewSeq(commands[1:]...),
	}
}

func (c *Seq) TypeCheck(checker *types.TypeChecker) *types.TypeChecker {
	return c.Second.TypeCheck(c.First.TypeCheck(checker))
}

func (c *Seq) Terminates() bool {
	return c.First.Terminates() || c.Second.Terminates()
}

func (c *Seq) IsDeadCodeFree() bool {
	return !c.First.Terminates() && c.First.IsDeadCodeFree() && c.Second.IsDeadCodeFree()
}

func (c *Seq) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return c.First.Translate(where, c.Second.Translate(where, continuation))
}

// If executes Then if Condition holds, Else otherwise. Else can be nil.
type If struct {
	NodeBase
	Condition Expression
	Then      Command
	Else      Command
}

func (c *If) elseBranch() Command {
	if c.Else == nil {
		return &Skip{NodeBase: c.NodeBase}
	}
	return c.Else
}

func (c *If) TypeCheck(checker *types.TypeChecker) *types.TypeChecker {
	checker.RequireBoolean(c.Condition.Position(), c.Condition.TypeCheck(checker))
	c.Then.TypeCheck(checker)
	c.elseBranch().TypeCheck(checker)
	return checker
}

func (c *If) Terminates() bool {
	return c.Then.Terminates() && c.elseBranch().Terminates()
}

func (c *If) IsDeadCodeFree() bool {
	return c.Then.IsDeadCodeFree() && c.elseBranch().IsDeadCodeFree()
}

func (c *If) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	yes := c.Then.Translate(where, continuation)
	no := c.elseBranch().Translate(where, continuation)
	return c.Condition.TranslateAsTest(where, yes, no)
}

// While executes Body as long as Condition holds.
type While struct {
	NodeBase
	Condition Expression
	Body      Command
}

func (c *While) TypeCheck(checker *types.TypeChecker) *types.TypeChecker {
	checker.RequireBoolean(c.Condition.Position(), c.Condition.TypeCheck(checker))
	c.Body.TypeCheck(checker)
	return checker
}

// Terminates returns false: the condition may be false from the start.
func (c *While) Terminates() bool {
	return false
}

func (c *While) IsDeadCodeFree() bool {
	return c.Body.IsDeadCodeFree()
}

func (c *While) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	pivot := where.Arena.NewBlock()
	test := c.Condition.TranslateAsTest(where, c.Body.Translate(where, pivot), continuation)
	pivot.LinkTo(test)
	return pivot
}

// Return ends the routine. In a test it continues with the success tail.
type Return struct {
	NodeBase
}

func (c *Return) TypeCheck(checker *types.TypeChecker) *types.TypeChecker {
	if checker.ReturnType() != types.VOID {
		checker.ReportError(c.Pos, NON_VOID_RETURN)
	}
	return checker
}

func (c *Return) Terminates() bool {
	return true
}

func (c *Return) IsDeadCodeFree() bool {
	return true
}

func (c *Return) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return where.Exit
}

// FieldAssign stores the value of Value in the field Field of the receiver.
type FieldAssign struct {
	NodeBase
	Field string
	Value Expression

	signature *types.FieldSignature
}

func (c *FieldAssign) TypeCheck(checker *types.TypeChecker) *types.TypeChecker {
	valueType := c.Value.TypeCheck(checker)

	field, ok := lookupReceiverField(c.Pos, c.Field, checker)
	if !ok {
		return checker
	}
	c.signature = field
	checker.RequireAssignable(c.Value.Position(), valueType, field.Type())
	return checker
}

func (c *FieldAssign) Terminates() bool {
	return false
}

func (c *FieldAssign) IsDeadCodeFree() bool {
	return true
}

func (c *FieldAssign) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	mustBeChecked(c, c.signature != nil)
	store := continuation.PrefixedBy(translation.PutField(c.signature.DefiningClass().Name(), c.Field))
	return c.Value.Translate(where, store).PrefixedBy(translation.Load(types.RECEIVER_LOCAL_INDEX))
}

// FirstUnreachable returns the first command of cmd that can never be executed.
func FirstUnreachable(cmd Command) (Command, bool) {
	switch c := cmd.(type) {
	case *Seq:
		if unreachable, ok := FirstUnreachable(c.First); ok {
			return unreachable, true
		}
		if c.First.Terminates() {
			return firstCommand(c.Second), true
		}
		return FirstUnreachable(c.Second)
	case *If:
		if unreachable, ok := FirstUnreachable(c.Then); ok {
			return unreachable, true
		}
		return FirstUnreachable(c.elseBranch())
	case *While:
		return FirstUnreachable(c.Body)
	}
	return nil, false
}

func firstCommand(cmd Command) Command {
	if seq, ok := cmd.(*Seq); ok {
		return firstCommand(seq.First)
	}
	return cmd
}
