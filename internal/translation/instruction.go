package translation

import (
	"fmt"
	"strconv"
)

// An Op is an operation of the intermediate code stored in blocks. The backend lowers
// each op to one or more bytecode instructions.
type Op uint8

const (
	CONST       Op = iota + 1 // push Int
	NEWSTRING                 // push the string literal Str
	LOAD                      // push local Var
	GETFIELD                  // pop object, push its field Name
	PUTFIELD                  // pop value & object, store value in field Name
	ADD                       // pop two ints, push sum
	SUB                       // pop two ints, push difference
	MUL                       // pop two ints, push product
	VIRTUALCALL               // call Class.Name on a receiver followed by Args arguments
	RETURN                    // return from the routine, with a value if Returns != VOID
)

var opNames = [...]string{
	CONST:       "const",
	NEWSTRING:   "newstring",
	LOAD:        "load",
	GETFIELD:    "getfield",
	PUTFIELD:    "putfield",
	ADD:         "add",
	SUB:         "sub",
	MUL:         "mul",
	VIRTUALCALL: "virtualcall",
	RETURN:      "return",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

// ValueKind is the kind of value produced by a call or a return.
type ValueKind uint8

const (
	VOID ValueKind = iota
	INT
	FLOAT
	REFERENCE
)

func (k ValueKind) String() string {
	switch k {
	case VOID:
		return "void"
	case INT:
		return "int"
	case FLOAT:
		return "float"
	case REFERENCE:
		return "ref"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

type Instruction struct {
	Op      Op
	Int     int64
	Str     string
	Var     int
	Class   string
	Name    string
	Args    int
	Returns ValueKind
}

func Const(n int64) Instruction {
	return Instruction{Op: CONST, Int: n}
}

func NewString(s string) Instruction {
	return Instruction{Op: NEWSTRING, Str: s}
}

func Load(local int) Instruction {
	return Instruction{Op: LOAD, Var: local}
}

func GetField(class, field string) Instruction {
	return Instruction{Op: GETFIELD, Class: class, Name: field}
}

func PutField(class, field string) Instruction {
	return Instruction{Op: PUTFIELD, Class: class, Name: field}
}

func Arithmetic(op Op) Instruction {
	switch op {
	case ADD, SUB, MUL:
	default:
		panic(fmt.Errorf("%s is not an arithmetic operation", op))
	}
	return Instruction{Op: op}
}

func VirtualCall(class, method string, args int, returns ValueKind) Instruction {
	return Instruction{Op: VIRTUALCALL, Class: class, Name: method, Args: args, Returns: returns}
}

func Return(kind ValueKind) Instruction {
	return Instruction{Op: RETURN, Returns: kind}
}

func (i Instruction) String() string {
	switch i.Op {
	case CONST:
		return fmt.Sprintf("%s %d", i.Op, i.Int)
	case NEWSTRING:
		return fmt.Sprintf("%s %q", i.Op, i.Str)
	case LOAD:
		return fmt.Sprintf("%s %d", i.Op, i.Var)
	case GETFIELD, PUTFIELD:
		return fmt.Sprintf("%s %s.%s", i.Op, i.Class, i.Name)
	case VIRTUALCALL:
		return fmt.Sprintf("%s %s.%s/%d:%s", i.Op, i.Class, i.Name, i.Args, i.Returns)
	case RETURN:
		return fmt.Sprintf("%s %s", i.Op, i.Returns)
	default:
		return i.Op.String()
	}
}

// A Cond is the condition of a two-way branch at the end of a block, the first successor
// is taken when the condition holds.
type Cond uint8

const (
	NO_COND Cond = iota
	IF_TRUE      // pops an int, holds if it is not 0
	IF_EQ        // pops two ints
	IF_NE
	IF_LT
	IF_LE
	IF_GT
	IF_GE
)

var condNames = [...]string{
	NO_COND: "none",
	IF_TRUE: "iftrue",
	IF_EQ:   "ifeq",
	IF_NE:   "ifne",
	IF_LT:   "iflt",
	IF_LE:   "ifle",
	IF_GT:   "ifgt",
	IF_GE:   "ifge",
}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "cond(" + strconv.Itoa(int(c)) + ")"
}

// Operands returns the number of stack values consumed by the branch.
func (c Cond) Operands() int {
	switch c {
	case NO_COND:
		return 0
	case IF_TRUE:
		return 1
	default:
		return 2
	}
}
