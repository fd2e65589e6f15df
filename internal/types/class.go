package types

import (
	"fmt"

	"github.com/kittenlang/kitten/internal/translation"
)

const (
	TEST_CLASS_SUFFIX    = "Test"
	MAIN_ROUTINE_NAME    = "main"
	STRING_CLASS_NAME    = "String"
	OUTPUT_METHOD_NAME   = "output"
	RECEIVER_NAME        = "this"
	RECEIVER_LOCAL_INDEX = 0
)

var (
	// STRING is the builtin string class, its output method prints the receiver.
	STRING = newStringClass()
)

// A ClassType is a class of the compiled program. It is the registry of the fields,
// fixtures and tests declared by the class, in declaration order.
type ClassType struct {
	name        string
	diagnostics *Diagnostics

	fields     []*FieldSignature
	fieldIndex map[string]*FieldSignature

	methods map[string]*MethodSignature

	fixtures     []*FixtureSignature
	fixtureIndex map[string]*FixtureSignature

	tests     []*TestSignature
	testIndex map[string]*TestSignature
}

func NewClassType(name string, diagnostics *Diagnostics) *ClassType {
	return &ClassType{
		name:         name,
		diagnostics:  diagnostics,
		fieldIndex:   map[string]*FieldSignature{},
		methods:      map[string]*MethodSignature{},
		fixtureIndex: map[string]*FixtureSignature{},
		testIndex:    map[string]*TestSignature{},
	}
}

func newStringClass() *ClassType {
	class := NewClassType(STRING_CLASS_NAME, nil)
	class.methods[OUTPUT_METHOD_NAME] = &MethodSignature{
		class:      class,
		name:       OUTPUT_METHOD_NAME,
		returnType: VOID,
	}
	return class
}

func (c *ClassType) Name() string {
	return c.name
}

func (c *ClassType) String() string {
	return c.name
}

func (c *ClassType) Kind() translation.ValueKind {
	return translation.REFERENCE
}

func (c *ClassType) CanBeAssignedTo(other Type) bool {
	return c == other
}

// TestClassName returns the name of the generated class containing the fixtures, the
// tests and the harness of the class.
func (c *ClassType) TestClassName() string {
	return c.name + TEST_CLASS_SUFFIX
}

// Diagnostics returns the sink of the errors found in the declaration of the class.
func (c *ClassType) Diagnostics() *Diagnostics {
	return c.diagnostics
}

func (c *ClassType) AddField(name string, typ Type) (*FieldSignature, error) {
	if _, ok := c.fieldIndex[name]; ok {
		return nil, fmt.Errorf("%w: field %s.%s", ErrDuplicateMember, c.name, name)
	}
	field := &FieldSignature{class: c, name: name, typ: typ}
	c.fields = append(c.fields, field)
	c.fieldIndex[name] = field
	return field, nil
}

func (c *ClassType) Field(name string) (*FieldSignature, bool) {
	field, ok := c.fieldIndex[name]
	return field, ok
}

// Fields returns the fields in declaration order, the result should not be modified.
func (c *ClassType) Fields() []*FieldSignature {
	return c.fields
}

// LookupMethod returns the method with the given name whose parameters accept args.
func (c *ClassType) LookupMethod(name string, args []Type) (*MethodSignature, bool) {
	method, ok := c.methods[name]
	if !ok || len(method.params) != len(args) {
		return nil, false
	}
	for i, arg := range args {
		if !arg.CanBeAssignedTo(method.params[i]) {
			return nil, false
		}
	}
	return method, true
}

// RegisterTest adds a test to the registry, tests and fixtures share a namespace since
// they become routines of the same generated class.
func (c *ClassType) RegisterTest(sig *TestSignature) error {
	if err := c.checkRoutineName(sig.name); err != nil {
		return err
	}
	c.tests = append(c.tests, sig)
	c.testIndex[sig.name] = sig
	return nil
}

func (c *ClassType) RegisterFixture(sig *FixtureSignature) error {
	if err := c.checkRoutineName(sig.name); err != nil {
		return err
	}
	c.fixtures = append(c.fixtures, sig)
	c.fixtureIndex[sig.name] = sig
	return nil
}

func (c *ClassType) checkRoutineName(name string) error {
	if name == MAIN_ROUTINE_NAME {
		return fmt.Errorf("%w: %s", ErrReservedRoutineName, name)
	}
	_, isTest := c.testIndex[name]
	_, isFixture := c.fixtureIndex[name]
	if isTest || isFixture {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateMember, c.name, name)
	}
	return nil
}

// Tests returns the tests in declaration order, the result should not be modified.
func (c *ClassType) Tests() []*TestSignature {
	return c.tests
}

func (c *ClassType) Test(name string) (*TestSignature, bool) {
	sig, ok := c.testIndex[name]
	return sig, ok
}

// Fixtures returns the fixtures in declaration order, the result should not be modified.
func (c *ClassType) Fixtures() []*FixtureSignature {
	return c.fixtures
}

func (c *ClassType) Fixture(name string) (*FixtureSignature, bool) {
	sig, ok := c.fixtureIndex[name]
	return sig, ok
}
