package ast

import (
	"errors"

	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
	"github.com/rs/zerolog"
)

const PASSED_MESSAGE = "passed"

// A ClassDeclaration is the abstract syntax of a class: its fields, fixtures and tests in
// declaration order.
type ClassDeclaration struct {
	NodeBase
	Name     string
	Fields   []*FieldDeclaration
	Fixtures []*FixtureDeclaration
	Tests    []*TestDeclaration

	class *types.ClassType
}

// Check registers the members of the class in a new class type and type-checks the
// fixtures and the tests. The returned class type is usable even if errors have been
// reported to its diagnostics.
func (d *ClassDeclaration) Check(logger zerolog.Logger) *types.ClassType {
	if d.class != nil {
		return d.class
	}

	diagnostics := types.NewDiagnostics(logger)
	class := types.NewClassType(d.Name, diagnostics)
	d.class = class

	for _, field := range d.Fields {
		field.addTo(class)
	}
	for _, fixture := range d.Fixtures {
		fixture.AddTo(class)
	}
	for _, test := range d.Tests {
		test.AddTo(class)
	}

	for _, fixture := range d.Fixtures {
		if fixture.signature != nil {
			fixture.TypeCheck(class)
		}
	}
	for _, test := range d.Tests {
		if test.signature != nil {
			test.TypeCheck(class)
		}
	}

	logger.Debug().Str("class", d.Name).Int("errors", len(diagnostics.Errors())).Msg("class checked")
	return class
}

// ClassType returns the class type built by Check, nil if Check has not been called.
func (d *ClassDeclaration) ClassType() *types.ClassType {
	return d.class
}

type FieldDeclaration struct {
	NodeBase
	Name     string
	TypeName string
}

func (d *FieldDeclaration) addTo(class *types.ClassType) {
	typ, ok := types.PRIMITIVE_TYPES[d.TypeName]
	if !ok {
		class.Diagnostics().Report(d.Pos, fmtUnknownType(d.TypeName))
		return
	}
	if _, err := class.AddField(d.Name, typ); err != nil {
		class.Diagnostics().Report(d.Pos, err.Error())
	}
}

// A TestDeclaration is a test of a class: a body without parameters that is checked with
// only the receiver in scope and compiled into a routine returning 0 if the test passed
// and 1 if it failed.
type TestDeclaration struct {
	NodeBase
	Name string
	Body Command

	signature *types.TestSignature
}

// Signature returns the signature created by AddTo, nil if AddTo has not been called or failed.
func (d *TestDeclaration) Signature() *types.TestSignature {
	return d.signature
}

// AddTo adds the signature of the test to the test registry of class.
func (d *TestDeclaration) AddTo(class *types.ClassType) {
	sig := types.NewTestSignature(class, d.Name, d)
	if err := class.RegisterTest(sig); err != nil {
		class.Diagnostics().Report(d.Pos, err.Error())
		return
	}
	d.signature = sig
}

// TypeCheck checks the body in a checker where only the receiver is in scope, only void
// returns are permitted and asserts are permitted. It then checks that the body has no
// unreachable commands.
func (d *TestDeclaration) TypeCheck(class *types.ClassType) {
	checker := types.NewTypeChecker(types.VOID, class.Diagnostics(), true).Bind(types.RECEIVER_NAME, class)
	checkBody(d.Body, d, checker)
}

// Translate translates the body followed by the success tail, the compiled code is set
// once per run and every block reachable from it is handed to backend.
func (d *TestDeclaration) Translate(run *translation.Run, backend translation.Backend) {
	if d.signature == nil {
		panic(errors.New("test translated before being added to a class"))
	}
	if !run.MarkTranslated(d.signature) {
		return
	}

	arena := run.Arena
	success := arena.NewBlock(
		translation.NewString(PASSED_MESSAGE),
		outputCall(),
		translation.Const(PASSED_STATUS),
		translation.Return(translation.INT),
	)

	where := &Unit{Signature: &d.signature.CodeSignature, Arena: arena, Exit: success}
	code := d.Body.Translate(where, success)
	run.SetCode(d.signature, code)

	count := run.EmitReachable(code, backend)
	run.Logger.Debug().Str("test", d.signature.QualifiedName()).Int("blocks", count).Msg("test translated")
}

// A FixtureDeclaration is a setup routine of a class, it is applied to the instance under
// test before the body of every test of the class.
type FixtureDeclaration struct {
	NodeBase
	Name string
	Body Command

	signature *types.FixtureSignature
}

func (d *FixtureDeclaration) Signature() *types.FixtureSignature {
	return d.signature
}

func (d *FixtureDeclaration) AddTo(class *types.ClassType) {
	sig := types.NewFixtureSignature(class, d.Name, d)
	if err := class.RegisterFixture(sig); err != nil {
		class.Diagnostics().Report(d.Pos, err.Error())
		return
	}
	d.signature = sig
}

// TypeCheck checks the body like the body of a test except that asserts are not permitted.
func (d *FixtureDeclaration) TypeCheck(class *types.ClassType) {
	checker := types.NewTypeChecker(types.VOID, class.Diagnostics(), false).Bind(types.RECEIVER_NAME, class)
	checkBody(d.Body, d, checker)
}

func (d *FixtureDeclaration) Translate(run *translation.Run, backend translation.Backend) {
	if d.signature == nil {
		panic(errors.New("fixture translated before being added to a class"))
	}
	if !run.MarkTranslated(d.signature) {
		return
	}

	exit := run.Arena.NewBlock(translation.Return(translation.VOID))
	where := &Unit{Signature: &d.signature.CodeSignature, Arena: run.Arena, Exit: exit}
	code := d.Body.Translate(where, exit)
	run.SetCode(d.signature, code)

	count := run.EmitReachable(code, backend)
	run.Logger.Debug().Str("fixture", d.signature.QualifiedName()).Int("blocks", count).Msg("fixture translated")
}

func checkBody(body Command, decl Node, checker *types.TypeChecker) {
	body.TypeCheck(checker)

	if !body.IsDeadCodeFree() {
		pos := decl.Position()
		if unreachable, ok := FirstUnreachable(body); ok {
			pos = unreachable.Position()
		}
		checker.ReportError(pos, types.UNREACHABLE_CODE)
	}
}

// outputCall returns the call of the output method of the builtin string class.
func outputCall() translation.Instruction {
	method, ok := types.STRING.LookupMethod(types.OUTPUT_METHOD_NAME, nil)
	if !ok {
		panic(errors.New("the string class has no output method"))
	}
	return translation.VirtualCall(method.DefiningClass().Name(), method.Name(), len(method.Params()), method.ReturnType().Kind())
}
