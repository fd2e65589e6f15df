package ast

import (
	"fmt"

	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
)

var (
	_ = []Expression{
		(*IntLiteral)(nil), (*BooleanLiteral)(nil), (*FieldAccess)(nil),
		(*Binary)(nil), (*Comparison)(nil), (*Not)(nil), (*And)(nil), (*Or)(nil),
	}
)

type IntLiteral struct {
	expressionBase
	Value int64
}

func NewIntLiteral(pos sourcecode.Position, value int64) *IntLiteral {
	return &IntLiteral{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Value: value}
}

func (e *IntLiteral) TypeCheck(checker *types.TypeChecker) types.Type {
	e.staticType = types.INT
	return e.staticType
}

func (e *IntLiteral) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return continuation.PrefixedBy(translation.Const(e.Value))
}

func (e *IntLiteral) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	return translateAsTestFromValue(e, where, yes, no)
}

// BooleanLiteral is true or false, as a test it jumps directly to the right continuation.
type BooleanLiteral struct {
	expressionBase
	Value bool
}

func NewBooleanLiteral(pos sourcecode.Position, value bool) *BooleanLiteral {
	return &BooleanLiteral{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Value: value}
}

func (e *BooleanLiteral) TypeCheck(checker *types.TypeChecker) types.Type {
	e.staticType = types.BOOLEAN
	return e.staticType
}

func (e *BooleanLiteral) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	if e.Value {
		return continuation.PrefixedBy(translation.Const(1))
	}
	return continuation.PrefixedBy(translation.Const(0))
}

func (e *BooleanLiteral) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	if e.Value {
		return yes
	}
	return no
}

// FieldAccess reads a field of the receiver.
type FieldAccess struct {
	expressionBase
	Field string

	signature *types.FieldSignature
}

func NewFieldAccess(pos sourcecode.Position, field string) *FieldAccess {
	return &FieldAccess{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Field: field}
}

func (e *FieldAccess) TypeCheck(checker *types.TypeChecker) types.Type {
	field, ok := lookupReceiverField(e.Pos, e.Field, checker)
	if !ok {
		//the error is already reported, int limits the number of follow-up errors.
		e.staticType = types.INT
		return e.staticType
	}
	e.signature = field
	e.staticType = field.Type()
	return e.staticType
}

func (e *FieldAccess) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	mustBeChecked(e, e.signature != nil)
	return continuation.PrefixedBy(
		translation.Load(types.RECEIVER_LOCAL_INDEX),
		translation.GetField(e.signature.DefiningClass().Name(), e.Field),
	)
}

func (e *FieldAccess) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	return translateAsTestFromValue(e, where, yes, no)
}

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Sub
	Mul
)

func (op BinaryOperator) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(op))
}

func (op BinaryOperator) op() translation.Op {
	switch op {
	case Add:
		return translation.ADD
	case Sub:
		return translation.SUB
	default:
		return translation.MUL
	}
}

// Binary is an arithmetic operation on integers.
type Binary struct {
	expressionBase
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

func NewBinary(pos sourcecode.Position, operator BinaryOperator, left, right Expression) *Binary {
	return &Binary{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Operator: operator, Left: left, Right: right}
}

func (e *Binary) TypeCheck(checker *types.TypeChecker) types.Type {
	checker.RequireAssignable(e.Left.Position(), e.Left.TypeCheck(checker), types.INT)
	checker.RequireAssignable(e.Right.Position(), e.Right.TypeCheck(checker), types.INT)
	e.staticType = types.INT
	return e.staticType
}

func (e *Binary) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	operation := continuation.PrefixedBy(translation.Arithmetic(e.Operator.op()))
	return e.Left.Translate(where, e.Right.Translate(where, operation))
}

func (e *Binary) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	return translateAsTestFromValue(e, where, yes, no)
}

type ComparisonOperator int

const (
	LessThan ComparisonOperator = iota
	LessOrEqual
	GreaterThan
	GreaterOrEqual
	Equal
	NotEqual
)

func (op ComparisonOperator) String() string {
	switch op {
	case LessThan:
		return "<"
	case LessOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	}
	return fmt.Sprintf("ComparisonOperator(%d)", int(op))
}

func (op ComparisonOperator) cond() translation.Cond {
	switch op {
	case LessThan:
		return translation.IF_LT
	case LessOrEqual:
		return translation.IF_LE
	case GreaterThan:
		return translation.IF_GT
	case GreaterOrEqual:
		return translation.IF_GE
	case Equal:
		return translation.IF_EQ
	default:
		return translation.IF_NE
	}
}

func (op ComparisonOperator) isEquality() bool {
	return op == Equal || op == NotEqual
}

// Comparison compares two integers, or two booleans for == and !=.
type Comparison struct {
	expressionBase
	Operator ComparisonOperator
	Left     Expression
	Right    Expression
}

func NewComparison(pos sourcecode.Position, operator ComparisonOperator, left, right Expression) *Comparison {
	return &Comparison{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Operator: operator, Left: left, Right: right}
}

func (e *Comparison) TypeCheck(checker *types.TypeChecker) types.Type {
	leftType := e.Left.TypeCheck(checker)
	rightType := e.Right.TypeCheck(checker)
	e.staticType = types.BOOLEAN

	if types.IsBoolean(leftType) && e.Operator.isEquality() {
		checker.RequireBoolean(e.Right.Position(), rightType)
		return e.staticType
	}

	if !types.IsInt(leftType) {
		checker.ReportError(e.Left.Position(), fmtComparisonNotSupported(e.Operator, leftType))
		return e.staticType
	}
	checker.RequireAssignable(e.Right.Position(), rightType, types.INT)
	return e.staticType
}

func (e *Comparison) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return translateValueFromTest(e, where, continuation)
}

func (e *Comparison) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	branch := where.Arena.Branch(e.Operator.cond(), yes, no)
	return e.Left.Translate(where, e.Right.Translate(where, branch))
}

type Not struct {
	expressionBase
	Operand Expression
}

func NewNot(pos sourcecode.Position, operand Expression) *Not {
	return &Not{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Operand: operand}
}

func (e *Not) TypeCheck(checker *types.TypeChecker) types.Type {
	checker.RequireBoolean(e.Operand.Position(), e.Operand.TypeCheck(checker))
	e.staticType = types.BOOLEAN
	return e.staticType
}

func (e *Not) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return translateValueFromTest(e, where, continuation)
}

func (e *Not) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	return e.Operand.TranslateAsTest(where, no, yes)
}

// And is the short-circuit conjunction: Right is not evaluated if Left is false.
type And struct {
	expressionBase
	Left  Expression
	Right Expression
}

func NewAnd(pos sourcecode.Position, left, right Expression) *And {
	return &And{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Left: left, Right: right}
}

func (e *And) TypeCheck(checker *types.TypeChecker) types.Type {
	checker.RequireBoolean(e.Left.Position(), e.Left.TypeCheck(checker))
	checker.RequireBoolean(e.Right.Position(), e.Right.TypeCheck(checker))
	e.staticType = types.BOOLEAN
	return e.staticType
}

func (e *And) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return translateValueFromTest(e, where, continuation)
}

func (e *And) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	return e.Left.TranslateAsTest(where, e.Right.TranslateAsTest(where, yes, no), no)
}

// Or is the short-circuit disjunction: Right is not evaluated if Left is true.
type Or struct {
	expressionBase
	Left  Expression
	Right Expression
}

func NewOr(pos sourcecode.Position, left, right Expression) *Or {
	return &Or{expressionBase: expressionBase{NodeBase: NodeBase{Pos: pos}}, Left: left, Right: right}
}

func (e *Or) TypeCheck(checker *types.TypeChecker) types.Type {
	checker.RequireBoolean(e.Left.Position(), e.Left.TypeCheck(checker))
	checker.RequireBoolean(e.Right.Position(), e.Right.TypeCheck(checker))
	e.staticType = types.BOOLEAN
	return e.staticType
}

func (e *Or) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	return translateValueFromTest(e, where, continuation)
}

func (e *Or) TranslateAsTest(where *Unit, yes, no *translation.Block) *translation.Block {
	return e.Left.TranslateAsTest(where, yes, e.Right.TranslateAsTest(where, yes, no))
}

func lookupReceiverField(pos sourcecode.Position, name string, checker *types.TypeChecker) (*types.FieldSignature, bool) {
	receiverType, _, ok := checker.Lookup(types.RECEIVER_NAME)
	if !ok {
		checker.ReportError(pos, RECEIVER_NOT_IN_SCOPE)
		return nil, false
	}
	class, ok := receiverType.(*types.ClassType)
	if !ok {
		checker.ReportError(pos, RECEIVER_NOT_IN_SCOPE)
		return nil, false
	}
	field, ok := class.Field(name)
	if !ok {
		checker.ReportError(pos, fmtUnknownField(class, name))
		return nil, false
	}
	return field, true
}

func mustBeChecked(node Node, checked bool) {
	if !checked {
		panic(fmt.Errorf("%T at %s translated before being type-checked", node, node.Position()))
	}
}
