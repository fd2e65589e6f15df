package codegen

import (
	"testing"

	"github.com/kittenlang/kitten/internal/ast"
	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/vm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearize(t *testing.T) {
	t.Parallel()

	t.Run("fallthrough", func(t *testing.T) {
		run := translation.NewRun(zerolog.Nop())
		g := NewClassGenerator(run, "FooTest")

		exit := run.Arena.NewBlock(translation.Const(7), translation.Return(translation.INT))
		root := exit.PrefixedBy(translation.Const(1), translation.Const(2), translation.Arithmetic(translation.ADD))
		run.EmitReachable(root, g)

		assert.Equal(t, []*translation.Block{root, exit}, g.layout(root))

		routine := g.addRoutine("r", 0, bytecode.KindInt, root)
		assert.Equal(t, []string{
			"0000 PUSH_CONST 1 (1)",
			"0003 PUSH_CONST 2 (2)",
			"0006 ADD",
			"0007 PUSH_CONST 0 (7)",
			"0010 RETURN_VALUE",
		}, g.image.DisassembleRoutine(routine))
	})

	t.Run("branch", func(t *testing.T) {
		run := translation.NewRun(zerolog.Nop())
		g := NewClassGenerator(run, "FooTest")

		yes := run.Arena.NewBlock(translation.Const(1), translation.Return(translation.INT))
		no := run.Arena.NewBlock(translation.Const(0), translation.Return(translation.INT))
		branch := run.Arena.Branch(translation.IF_LT, yes, no)
		root := branch.PrefixedBy(translation.Load(0), translation.Const(10))
		run.EmitReachable(root, g)

		assert.Equal(t, []*translation.Block{root, branch, no, yes}, g.layout(root))

		routine := g.addRoutine("lessThanTen", 1, bytecode.KindInt, root)
		program := bytecode.NewProgram("p", bytecode.EntryPoint{Class: "FooTest", Routine: "lessThanTen"})
		program.AddClass(g.image)

		machine, err := vm.New(vm.Config{Program: program, Out: &nopWriter{}})
		require.NoError(t, err)

		for input, expected := range map[int64]int64{3: 1, 10: 0, 12: 0} {
			result, err := machine.Call("FooTest", routine.Name, input)
			require.NoError(t, err)
			assert.Equal(t, expected, result, "input %d", input)
		}
	})

	t.Run("loop", func(t *testing.T) {
		fixture := &ast.FixtureDeclaration{
			Name: "init",
			Body: &ast.While{
				Condition: ast.NewComparison(pos(3, 11), ast.LessThan, ast.NewFieldAccess(pos(3, 11), "count"), ast.NewIntLiteral(pos(3, 20), 3)),
				Body: &ast.FieldAssign{
					Field: "count",
					Value: ast.NewBinary(pos(4, 9), ast.Add, ast.NewFieldAccess(pos(4, 9), "count"), ast.NewIntLiteral(pos(4, 17), 1)),
				},
			},
		}
		test := assertTest("t1", 6, ast.NewComparison(pos(7, 14), ast.Equal, ast.NewFieldAccess(pos(7, 14), "count"), ast.NewIntLiteral(pos(7, 24), 3)))

		class := check(t, &ast.ClassDeclaration{
			Name:     "Foo",
			Fields:   []*ast.FieldDeclaration{{Name: "count", TypeName: "int"}},
			Fixtures: []*ast.FixtureDeclaration{fixture},
			Tests:    []*ast.TestDeclaration{test},
		})

		program, err := Compile(class, Options{})
		require.NoError(t, err)
		assert.Contains(t, execute(t, program), "1 passed, 0 failed")
	})

	t.Run("self loop", func(t *testing.T) {
		run := translation.NewRun(zerolog.Nop())
		g := NewClassGenerator(run, "FooTest")

		pivot := run.Arena.NewBlock()
		pivot.LinkTo(pivot)
		run.EmitReachable(pivot, g)

		routine := g.addRoutine("spin", 0, bytecode.KindVoid, pivot)
		assert.Equal(t, []string{"0000 JUMP 0"}, g.image.DisassembleRoutine(routine))
	})
}

func TestMaterializeBlock(t *testing.T) {
	t.Parallel()

	t.Run("exit without return", func(t *testing.T) {
		run := translation.NewRun(zerolog.Nop())
		g := NewClassGenerator(run, "FooTest")
		block := run.Arena.NewBlock(translation.Const(1))

		assert.Panics(t, func() {
			run.EmitReachable(block, g)
		})
	})

	t.Run("return before the end of a block", func(t *testing.T) {
		run := translation.NewRun(zerolog.Nop())
		g := NewClassGenerator(run, "FooTest")
		block := run.Arena.NewBlock(translation.Return(translation.VOID), translation.Const(1))

		assert.Panics(t, func() {
			run.EmitReachable(block, g)
		})
	})

	t.Run("dangling successor", func(t *testing.T) {
		run := translation.NewRun(zerolog.Nop())
		g := NewClassGenerator(run, "FooTest")
		exit := run.Arena.NewBlock(translation.Return(translation.VOID))
		block := exit.PrefixedBy(translation.Const(1))

		assert.Panics(t, func() {
			g.MaterializeBlock(block)
		})
	})

	t.Run("constants are shared", func(t *testing.T) {
		run := translation.NewRun(zerolog.Nop())
		g := NewClassGenerator(run, "FooTest")
		exit := run.Arena.NewBlock(translation.NewString("passed"), translation.Const(0), translation.Return(translation.INT))
		root := exit.PrefixedBy(translation.NewString("passed"), translation.Const(0), translation.Arithmetic(translation.ADD))
		run.EmitReachable(root, g)
		assert.Len(t, g.image.Constants, 2)
	})
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
