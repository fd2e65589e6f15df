package codegen

import (
	"fmt"

	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
)

const (
	NANOS_PER_MILLI = 1_000_000

	// locals of the main routine
	ARGS_LOCAL        = 0
	FAILURES_LOCAL    = 1
	TOTAL_START_LOCAL = 2
	TEST_START_LOCAL  = 3
	MAIN_LOCALS       = 4
)

// A MemberSet is a set of tests and fixtures, a nil set contains every member.
type MemberSet map[translation.Signature]struct{}

func (s MemberSet) Includes(sig translation.Signature) bool {
	if s == nil {
		return true
	}
	_, ok := s[sig]
	return ok
}

// Restrict returns the set made of the tests of class named in names and of every
// fixture of class.
func Restrict(class *types.ClassType, names []string) (MemberSet, error) {
	set := MemberSet{}
	for _, fixture := range class.Fixtures() {
		set[fixture] = struct{}{}
	}
	for _, name := range names {
		test, ok := class.Test(name)
		if !ok {
			return nil, fmt.Errorf("%s has no test named %q", class.Name(), name)
		}
		set[test] = struct{}{}
	}
	return set, nil
}

// A TestClassGenerator generates the test class of a class: one static routine per
// fixture and per test, and a main routine running every test and reporting the results.
type TestClassGenerator struct {
	*ClassGenerator
	class       *types.ClassType
	restriction MemberSet
}

func NewTestClassGenerator(run *translation.Run, class *types.ClassType, restriction MemberSet) *TestClassGenerator {
	return &TestClassGenerator{
		ClassGenerator: NewClassGenerator(run, class.TestClassName()),
		class:          class,
		restriction:    restriction,
	}
}

func (g *TestClassGenerator) fixtures() (fixtures []*types.FixtureSignature) {
	for _, fixture := range g.class.Fixtures() {
		if g.restriction.Includes(fixture) {
			fixtures = append(fixtures, fixture)
		}
	}
	return
}

func (g *TestClassGenerator) tests() (tests []*types.TestSignature) {
	for _, test := range g.class.Tests() {
		if g.restriction.Includes(test) {
			tests = append(tests, test)
		}
	}
	return
}

// Generate generates the routines of the included fixtures and tests, followed by main.
func (g *TestClassGenerator) Generate() *bytecode.Class {
	fixtures := g.fixtures()
	tests := g.tests()

	for _, fixture := range fixtures {
		g.createFixture(fixture)
	}
	for _, test := range tests {
		g.createTest(test)
	}
	g.createMain(fixtures, tests)
	return g.image
}

func (g *TestClassGenerator) createFixture(sig *types.FixtureSignature) {
	sig.Declaration().Translate(g.run, g)
	g.addRoutine(sig.Name(), 1, KindOf(sig.ResultKind()), g.code(sig))
}

func (g *TestClassGenerator) createTest(sig *types.TestSignature) {
	sig.Declaration().Translate(g.run, g)
	g.addRoutine(sig.Name(), 1, KindOf(sig.ResultKind()), g.code(sig))
}

func (g *TestClassGenerator) code(sig translation.Signature) *translation.Block {
	code, ok := g.run.Code(sig)
	if !ok {
		panic(fmt.Errorf("%s has not been translated", sig.QualifiedName()))
	}
	return code
}

func (g *TestClassGenerator) staticCall(name string, returns bytecode.Kind) []byte {
	index := g.methodConstant(g.image.Name, name, 1, returns)
	return bytecode.MakeInstruction(bytecode.OpInvokeStatic, index)
}

// createMain generates the entry point of the test class:
//
//	total = now
//	print "Test execution for class <class>:\n"
//	failures = 0
//	for each test:
//		start = now
//		print "\t- <test>: "
//		obj = new <class>
//		apply each fixture to obj
//		failures += <test>(obj)
//		print " [ <elapsed> ms ]\n"
//	print <count - failures> " passed, " <failures> " failed "
//	print " [ <elapsed since total> ms ]\n"
//
// tests and fixtures are the members included by the restriction, so count is the number
// of included tests and excluded tests are neither run nor counted.
func (g *TestClassGenerator) createMain(fixtures []*types.FixtureSignature, tests []*types.TestSignature) {
	a := &assembler{image: g.image}

	a.emit(bytecode.OpNanoTime)
	a.emit(bytecode.OpStore, TOTAL_START_LOCAL)
	a.printString(fmt.Sprintf("Test execution for class %s:\n", g.class.Name()))

	a.pushInt(0)
	a.emit(bytecode.OpStore, FAILURES_LOCAL)

	for _, test := range tests {
		a.emit(bytecode.OpNanoTime)
		a.emit(bytecode.OpStore, TEST_START_LOCAL)
		a.printString(fmt.Sprintf("\t- %s: ", test.Name()))

		a.emit(bytecode.OpNew, a.stringConstant(g.class.Name()))
		for _, fixture := range fixtures {
			a.emit(bytecode.OpDup)
			a.code = append(a.code, g.staticCall(fixture.Name(), bytecode.KindVoid)...)
		}
		a.code = append(a.code, g.staticCall(test.Name(), bytecode.KindInt)...)

		a.emit(bytecode.OpLoad, FAILURES_LOCAL)
		a.emit(bytecode.OpAdd)
		a.emit(bytecode.OpStore, FAILURES_LOCAL)

		a.printElapsed(TEST_START_LOCAL)
	}

	a.pushInt(int64(len(tests)))
	a.emit(bytecode.OpLoad, FAILURES_LOCAL)
	a.emit(bytecode.OpSub)
	a.emit(bytecode.OpPrint)
	a.printString(" passed, ")
	a.emit(bytecode.OpLoad, FAILURES_LOCAL)
	a.emit(bytecode.OpPrint)
	a.printString(" failed ")
	a.printElapsed(TOTAL_START_LOCAL)
	a.emit(bytecode.OpReturn)

	routine := &bytecode.Routine{
		Name:         types.MAIN_ROUTINE_NAME,
		Static:       true,
		Params:       1,
		Locals:       MAIN_LOCALS,
		Returns:      bytecode.KindVoid,
		Instructions: a.code,
	}
	if err := g.image.AddRoutine(routine); err != nil {
		panic(err)
	}
	g.logger.Debug().Str("routine", routine.Name).Int("tests", len(tests)).Int("fixtures", len(fixtures)).Msg("main generated")
}

// An assembler appends straight-line code to a routine.
type assembler struct {
	image *bytecode.Class
	code  []byte
}

func (a *assembler) emit(op bytecode.Opcode, operands ...int) {
	a.code = append(a.code, bytecode.MakeInstruction(op, operands...)...)
}

func (a *assembler) stringConstant(s string) int {
	return a.image.AddConstant(bytecode.Constant{Kind: bytecode.StringConstant, Str: s})
}

func (a *assembler) pushInt(n int64) {
	a.emit(bytecode.OpPushConstant, a.image.AddConstant(bytecode.Constant{Kind: bytecode.IntConstant, Int: n}))
}

func (a *assembler) pushFloat(f float64) {
	a.emit(bytecode.OpPushConstant, a.image.AddConstant(bytecode.Constant{Kind: bytecode.FloatConstant, Float: f}))
}

// printString prints s with the output method of the builtin string class.
func (a *assembler) printString(s string) {
	a.emit(bytecode.OpPushConstant, a.stringConstant(s))
	output := a.image.AddConstant(bytecode.Constant{
		Kind: bytecode.MethodConstant,
		Method: &bytecode.MethodRef{
			Class:   types.STRING_CLASS_NAME,
			Name:    types.OUTPUT_METHOD_NAME,
			Returns: bytecode.KindVoid,
		},
	})
	a.emit(bytecode.OpInvokeVirtual, output)
}

// printElapsed prints the number of milliseconds elapsed since the time stored in local.
func (a *assembler) printElapsed(local int) {
	a.printString(" [ ")
	a.emit(bytecode.OpNanoTime)
	a.emit(bytecode.OpLoad, local)
	a.emit(bytecode.OpSub)
	a.emit(bytecode.OpIntToFloat)
	a.pushFloat(NANOS_PER_MILLI)
	a.emit(bytecode.OpFloatDiv)
	a.emit(bytecode.OpPrint)
	a.printString(" ms ]\n")
}
