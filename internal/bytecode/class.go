package bytecode

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnknownClass   = errors.New("unknown class")
	ErrUnknownRoutine = errors.New("unknown routine")
)

type Kind uint8

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindRef:
		return "ref"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

type ConstantKind uint8

const (
	IntConstant ConstantKind = iota + 1
	FloatConstant
	StringConstant
	MethodConstant
)

type MethodRef struct {
	Class   string `json:"class"`
	Name    string `json:"name"`
	Args    int    `json:"args"`
	Returns Kind   `json:"returns"`
}

func (m MethodRef) String() string {
	return fmt.Sprintf("%s.%s/%d:%s", m.Class, m.Name, m.Args, m.Returns)
}

// A Constant is an entry of the constant pool of a class. Class and field names are
// string constants.
type Constant struct {
	Kind   ConstantKind `json:"kind"`
	Int    int64        `json:"int,omitempty"`
	Float  float64      `json:"float,omitempty"`
	Str    string       `json:"str,omitempty"`
	Method *MethodRef   `json:"method,omitempty"`
}

func (c Constant) String() string {
	switch c.Kind {
	case IntConstant:
		return strconv.FormatInt(c.Int, 10)
	case FloatConstant:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case StringConstant:
		return strconv.Quote(c.Str)
	case MethodConstant:
		return c.Method.String()
	}
	return "?"
}

type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

type Routine struct {
	Name         string `json:"name"`
	Static       bool   `json:"static"`
	Params       int    `json:"params"`
	Locals       int    `json:"locals"`
	Returns      Kind   `json:"returns"`
	Instructions []byte `json:"instructions"`
}

// A Class is the compiled image of a class: its fields, its routines and the constant
// pool shared by the routines.
type Class struct {
	Name      string     `json:"name"`
	Fields    []Field    `json:"fields"`
	Constants []Constant `json:"constants"`
	Routines  []*Routine `json:"routines"`

	constantIndex map[Constant]int
}

func NewClass(name string) *Class {
	return &Class{Name: name, constantIndex: map[Constant]int{}}
}

// AddConstant adds c to the constant pool if an equal constant is not already present
// and returns its index.
func (c *Class) AddConstant(constant Constant) int {
	key := constantKey(constant)

	if c.constantIndex == nil {
		c.constantIndex = map[Constant]int{}
		for i, existing := range c.Constants {
			c.constantIndex[constantKey(existing)] = i
		}
	}

	if index, ok := c.constantIndex[key]; ok {
		return index
	}
	index := len(c.Constants)
	c.Constants = append(c.Constants, constant)
	c.constantIndex[key] = index
	return index
}

// constantKey returns a comparable version of c, methods are compared by value.
func constantKey(c Constant) Constant {
	if c.Method != nil {
		return Constant{Kind: MethodConstant, Str: c.Method.String()}
	}
	return c
}

func (c *Class) AddRoutine(routine *Routine) error {
	if _, ok := c.Routine(routine.Name); ok {
		return fmt.Errorf("routine %s.%s already exists", c.Name, routine.Name)
	}
	c.Routines = append(c.Routines, routine)
	return nil
}

func (c *Class) Routine(name string) (*Routine, bool) {
	for _, routine := range c.Routines {
		if routine.Name == name {
			return routine, true
		}
	}
	return nil, false
}

type EntryPoint struct {
	Class   string `json:"class"`
	Routine string `json:"routine"`
}

// A Program is a set of classes with an entry point.
type Program struct {
	ID      string            `json:"id"`
	Entry   EntryPoint        `json:"entry"`
	Classes map[string]*Class `json:"classes"`
}

func NewProgram(id string, entry EntryPoint) *Program {
	return &Program{ID: id, Entry: entry, Classes: map[string]*Class{}}
}

func (p *Program) AddClass(class *Class) {
	p.Classes[class.Name] = class
}

// LookupRoutine returns a routine and the class defining it.
func (p *Program) LookupRoutine(className, name string) (*Class, *Routine, error) {
	class, ok := p.Classes[className]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownClass, className)
	}
	routine, ok := class.Routine(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownRoutine, className, name)
	}
	return class, routine, nil
}
