package types

import (
	"slices"

	"github.com/kittenlang/kitten/internal/sourcecode"
)

type binding struct {
	name string
	typ  Type
}

// A TypeChecker is the context in which commands and expressions are type-checked: the
// variables in scope, the type that return commands must have and whether assert
// commands are permitted. Binding a variable returns a new TypeChecker, errors are
// reported to the shared Diagnostics.
type TypeChecker struct {
	returnType      Type
	vars            []binding
	diagnostics     *Diagnostics
	assertPermitted bool
}

func NewTypeChecker(returnType Type, diagnostics *Diagnostics, assertPermitted bool) *TypeChecker {
	return &TypeChecker{
		returnType:      returnType,
		diagnostics:     diagnostics,
		assertPermitted: assertPermitted,
	}
}

// Bind returns a checker where name has type typ. The variable gets the next local
// index, the first bound variable (the receiver) has index 0.
func (c *TypeChecker) Bind(name string, typ Type) *TypeChecker {
	checker := *c
	checker.vars = append(slices.Clone(c.vars), binding{name: name, typ: typ})
	return &checker
}

// Lookup returns the type and the local index of a variable.
func (c *TypeChecker) Lookup(name string) (Type, int, bool) {
	for i := len(c.vars) - 1; i >= 0; i-- {
		if c.vars[i].name == name {
			return c.vars[i].typ, i, true
		}
	}
	return nil, -1, false
}

func (c *TypeChecker) ReturnType() Type {
	return c.returnType
}

func (c *TypeChecker) AssertPermitted() bool {
	return c.assertPermitted
}

func (c *TypeChecker) Diagnostics() *Diagnostics {
	return c.diagnostics
}

// ReportError records a semantic error and returns its diagnostic line ("<msg> -> <location>").
func (c *TypeChecker) ReportError(pos sourcecode.Position, msg string) string {
	return c.diagnostics.Report(pos, msg)
}

// Diagnostic returns the diagnostic line for pos without recording an error.
func (c *TypeChecker) Diagnostic(pos sourcecode.Position, msg string) string {
	return FormatDiagnostic(pos, msg)
}

// RequireBoolean reports an error if typ is not the boolean type.
func (c *TypeChecker) RequireBoolean(pos sourcecode.Position, typ Type) bool {
	if IsBoolean(typ) {
		return true
	}
	c.ReportError(pos, fmtBooleanExpected(typ))
	return false
}

// RequireAssignable reports an error if a value of type actual cannot be stored where a
// value of type expected is expected.
func (c *TypeChecker) RequireAssignable(pos sourcecode.Position, actual, expected Type) bool {
	if actual.CanBeAssignedTo(expected) {
		return true
	}
	c.ReportError(pos, fmtTypeMismatch(expected, actual))
	return false
}
