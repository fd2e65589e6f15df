package types

import (
	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/translation"
)

// A CodeDeclaration is the abstract syntax of a unit of code (test or fixture).
type CodeDeclaration interface {
	Position() sourcecode.Position

	// Translate translates the declaration and hands its blocks to backend, it has no
	// effect if the declaration has already been translated during run.
	Translate(run *translation.Run, backend translation.Backend)
}

type FieldSignature struct {
	class *ClassType
	name  string
	typ   Type
}

func (f *FieldSignature) DefiningClass() *ClassType {
	return f.class
}

func (f *FieldSignature) Name() string {
	return f.name
}

func (f *FieldSignature) Type() Type {
	return f.typ
}

type MethodSignature struct {
	class      *ClassType
	name       string
	params     []Type
	returnType Type
}

func (m *MethodSignature) DefiningClass() *ClassType {
	return m.class
}

func (m *MethodSignature) Name() string {
	return m.name
}

func (m *MethodSignature) Params() []Type {
	return m.params
}

func (m *MethodSignature) ReturnType() Type {
	return m.returnType
}

// CodeSignature contains what tests and fixtures have in common: a receiver of the
// defining class as only parameter and a void declared return type. The compiled code
// belongs to the translation run, see translation.Run.Code.
type CodeSignature struct {
	class *ClassType
	name  string
	decl  CodeDeclaration
}

func (s *CodeSignature) DefiningClass() *ClassType {
	return s.class
}

func (s *CodeSignature) Name() string {
	return s.name
}

func (s *CodeSignature) QualifiedName() string {
	return s.class.TestClassName() + "." + s.name
}

func (s *CodeSignature) Declaration() CodeDeclaration {
	return s.decl
}

// ReturnType returns the declared return type, return commands in the body must be void.
func (s *CodeSignature) ReturnType() Type {
	return VOID
}

// A TestSignature is the signature of a test of a class. The compiled code of a test
// returns an integer status: 0 if the test passed, 1 if it failed.
type TestSignature struct {
	CodeSignature
}

func NewTestSignature(class *ClassType, name string, decl CodeDeclaration) *TestSignature {
	return &TestSignature{
		CodeSignature: CodeSignature{class: class, name: name, decl: decl},
	}
}

// ResultKind returns the kind of the value returned by the compiled code.
func (s *TestSignature) ResultKind() translation.ValueKind {
	return translation.INT
}

func (s *TestSignature) String() string {
	return "test " + s.QualifiedName()
}

// A FixtureSignature is the signature of a setup routine applied to the instance under
// test before the body of each test of the class runs.
type FixtureSignature struct {
	CodeSignature
}

func NewFixtureSignature(class *ClassType, name string, decl CodeDeclaration) *FixtureSignature {
	return &FixtureSignature{
		CodeSignature: CodeSignature{class: class, name: name, decl: decl},
	}
}

func (s *FixtureSignature) ResultKind() translation.ValueKind {
	return translation.VOID
}

func (s *FixtureSignature) String() string {
	return "fixture " + s.QualifiedName()
}
