package ast

import (
	"testing"

	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertLowering(t *testing.T) {
	t.Parallel()

	boolean := func(v bool) Expression {
		return NewBooleanLiteral(pos(4, 15), v)
	}
	integer := func(v int64) Expression {
		return NewIntLiteral(pos(4, 15), v)
	}

	testCases := []struct {
		name      string
		condition Expression
		holds     bool
	}{
		{"true", boolean(true), true},
		{"false", boolean(false), false},
		{"less than", NewComparison(pos(4, 15), LessThan, integer(1), integer(2)), true},
		{"not less than", NewComparison(pos(4, 15), LessThan, integer(2), integer(1)), false},
		{"greater or equal", NewComparison(pos(4, 15), GreaterOrEqual, integer(2), integer(2)), true},
		{"boolean equality", NewComparison(pos(4, 15), Equal, boolean(true), boolean(false)), false},
		{"not", NewNot(pos(4, 15), boolean(false)), true},
		{"and", NewAnd(pos(4, 15), boolean(true), boolean(false)), false},
		{"or", NewOr(pos(4, 15), boolean(false), boolean(true)), true},
		{"nested", NewAnd(pos(4, 15),
			NewOr(pos(4, 15), boolean(false), NewComparison(pos(4, 15), NotEqual, integer(1), integer(2))),
			NewNot(pos(4, 15), NewComparison(pos(4, 15), Equal, NewBinary(pos(4, 15), Mul, integer(2), integer(3)), integer(7))),
		), true},
		{"field", NewComparison(pos(4, 15), Equal, NewFieldAccess(pos(4, 15), "count"), integer(0)), true},
		{"comparison value tested", NewComparison(pos(4, 15), Equal,
			NewComparison(pos(4, 15), LessThan, integer(1), integer(2)),
			NewComparison(pos(4, 15), LessThan, integer(2), integer(1)),
		), false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			test := &TestDeclaration{
				NodeBase: NodeBase{Pos: pos(3, 5)},
				Name:     "t",
				Body:     NewAssert(pos(4, 7), testCase.condition),
			}
			class := checkedClass(t, &ClassDeclaration{
				Name:   "Foo",
				Fields: []*FieldDeclaration{{Name: "count", TypeName: "int"}},
				Tests:  []*TestDeclaration{test},
			})

			run := newTestRun()
			test.Translate(run, &recordingBackend{})

			sig, ok := class.Test("t")
			require.True(t, ok)

			exec := newExecution()
			status := exec.run(t, compiledCode(t, run, sig))

			if testCase.holds {
				assert.EqualValues(t, PASSED_STATUS, status)
				assert.Equal(t, []string{PASSED_MESSAGE}, exec.output)
			} else {
				assert.EqualValues(t, FAILED_STATUS, status)
				assert.Equal(t, []string{"failed at foo.kit.yaml:4:7"}, exec.output)
			}
		})
	}
}

func TestAssertTypeCheck(t *testing.T) {
	t.Parallel()

	t.Run("failure message", func(t *testing.T) {
		a := NewAssert(pos(2, 3), NewBooleanLiteral(pos(2, 10), true))
		assert.Empty(t, a.FailureMessage())

		diagnostics := types.NewDiagnostics(zerolog.Nop())
		a.TypeCheck(types.NewTypeChecker(types.VOID, diagnostics, true))

		assert.Equal(t, "failed at foo.kit.yaml:2:3", a.FailureMessage())
		assert.False(t, diagnostics.HasErrors())
	})

	t.Run("not permitted", func(t *testing.T) {
		diagnostics := types.NewDiagnostics(zerolog.Nop())
		checker := types.NewTypeChecker(types.VOID, diagnostics, false)

		a := NewAssert(pos(2, 3), NewBooleanLiteral(pos(2, 10), true))
		assert.Same(t, checker, a.TypeCheck(checker))

		require.Len(t, diagnostics.Errors(), 1)
		assert.Equal(t, "assert only permitted inside a test -> foo.kit.yaml:2:3", diagnostics.Errors()[0].Error())
	})

	t.Run("condition is not a boolean", func(t *testing.T) {
		diagnostics := types.NewDiagnostics(zerolog.Nop())
		checker := types.NewTypeChecker(types.VOID, diagnostics, true)

		NewAssert(pos(2, 3), NewIntLiteral(pos(2, 10), 1)).TypeCheck(checker)

		require.Len(t, diagnostics.Errors(), 1)
		assert.Equal(t, "boolean expected, found int -> foo.kit.yaml:2:10", diagnostics.Errors()[0].Error())
	})

	t.Run("checking continues after an error", func(t *testing.T) {
		fixture := &FixtureDeclaration{
			NodeBase: NodeBase{Pos: pos(2, 3)},
			Name:     "init",
			Body: NewSeq(
				NewAssert(pos(3, 5), NewBooleanLiteral(pos(3, 12), true)),
				&FieldAssign{NodeBase: NodeBase{Pos: pos(4, 5)}, Field: "count", Value: NewBooleanLiteral(pos(4, 12), true)},
			),
		}
		test := &TestDeclaration{
			NodeBase: NodeBase{Pos: pos(6, 3)},
			Name:     "t",
			Body:     NewAssert(pos(7, 5), NewIntLiteral(pos(7, 12), 3)),
		}

		class := (&ClassDeclaration{
			Name:     "Foo",
			Fields:   []*FieldDeclaration{{Name: "count", TypeName: "int"}},
			Fixtures: []*FixtureDeclaration{fixture},
			Tests:    []*TestDeclaration{test},
		}).Check(zerolog.Nop())

		var messages []string
		for _, err := range class.Diagnostics().Errors() {
			messages = append(messages, err.Error())
		}
		assert.Equal(t, []string{
			"assert only permitted inside a test -> foo.kit.yaml:3:5",
			"int expected, found boolean -> foo.kit.yaml:4:12",
			"boolean expected, found int -> foo.kit.yaml:7:12",
		}, messages)
	})
}

func TestAssertNeverTerminates(t *testing.T) {
	t.Parallel()

	failing := NewAssert(pos(2, 3), NewBooleanLiteral(pos(2, 10), false))
	assert.False(t, failing.Terminates())
	assert.True(t, failing.IsDeadCodeFree())

	body := NewSeq(failing, NewAssert(pos(3, 3), NewBooleanLiteral(pos(3, 10), true)))
	assert.True(t, body.IsDeadCodeFree())

	_, found := FirstUnreachable(body)
	assert.False(t, found)
}

func TestAssertTranslate(t *testing.T) {
	t.Parallel()

	t.Run("failure path", func(t *testing.T) {
		test := &TestDeclaration{
			NodeBase: NodeBase{Pos: pos(3, 3)},
			Name:     "t",
			Body:     NewAssert(pos(4, 5), NewFieldAccess(pos(4, 12), "ready")),
		}
		checkedClass(t, &ClassDeclaration{
			Name:   "Foo",
			Fields: []*FieldDeclaration{{Name: "ready", TypeName: "boolean"}},
			Tests:  []*TestDeclaration{test},
		})

		run := newTestRun()
		test.Translate(run, &recordingBackend{})

		branch := compiledCode(t, run, test.Signature())
		for len(branch.Successors()) == 1 {
			branch = branch.Successors()[0]
		}
		require.Equal(t, translation.IF_TRUE, branch.Cond())

		fail := branch.Successors()[1]
		assert.Equal(t, []string{
			`newstring "failed at foo.kit.yaml:4:5"`,
			"virtualcall String.output/0:void",
			"const 1",
			"return int",
		}, instructionStrings(fail))
		assert.True(t, fail.IsExit())
	})

	t.Run("unchecked", func(t *testing.T) {
		run := newTestRun()
		exit := run.Arena.NewBlock(translation.Return(translation.INT))
		where := &Unit{Arena: run.Arena, Exit: exit}

		assert.Panics(t, func() {
			NewAssert(pos(1, 1), NewBooleanLiteral(pos(1, 1), true)).Translate(where, exit)
		})
	})
}

func instructionStrings(b *translation.Block) (strings []string) {
	for _, instr := range b.Code() {
		strings = append(strings, instr.String())
	}
	return
}
