package kitfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kittenlang/kitten/internal/ast"
	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const FOO = `class: Foo
fields:
  count: int
  ready: bool
fixtures:
  - name: init
    body:
      - assign: { field: count, value: { int: 1 } }
tests:
  - name: t1
    body:
      - assert: { lt: [ { field: count }, { int: 2 } ] }
  - name: t2
    body:
      - if:
          cond: { not: { field: ready } }
          then:
            - return
      - assert: { and: [ { bool: true }, { eq: [ { add: [ { int: -1 }, { int: 1 } ] }, { int: 0 } ] } ] }
`

func TestParse(t *testing.T) {
	t.Parallel()

	class, err := Parse("foo.kit.yaml", []byte(FOO))
	require.NoError(t, err)

	assert.Equal(t, "Foo", class.Name)
	assert.Equal(t, sourcecode.MakePosition("foo.kit.yaml", 1, 1), class.Position())

	require.Len(t, class.Fields, 2)
	assert.Equal(t, "count", class.Fields[0].Name)
	assert.Equal(t, "int", class.Fields[0].TypeName)
	assert.Equal(t, "ready", class.Fields[1].Name)
	assert.Equal(t, "bool", class.Fields[1].TypeName)
	assert.Equal(t, int32(3), class.Fields[0].Position().Line)

	require.Len(t, class.Fixtures, 1)
	assign, ok := class.Fixtures[0].Body.(*ast.FieldAssign)
	require.True(t, ok)
	assert.Equal(t, "count", assign.Field)
	assert.Equal(t, int64(1), assign.Value.(*ast.IntLiteral).Value)

	require.Len(t, class.Tests, 2)
	assert.Equal(t, "t1", class.Tests[0].Name)
	assertion, ok := class.Tests[0].Body.(*ast.Assert)
	require.True(t, ok)
	assert.Equal(t, sourcecode.MakePosition("foo.kit.yaml", 12, 9), assertion.Position())

	comparison, ok := assertion.Condition.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.LessThan, comparison.Operator)
	assert.IsType(t, &ast.FieldAccess{}, comparison.Left)

	seq, ok := class.Tests[1].Body.(*ast.Seq)
	require.True(t, ok)
	ifCmd, ok := seq.First.(*ast.If)
	require.True(t, ok)
	assert.IsType(t, &ast.Not{}, ifCmd.Condition)
	assert.IsType(t, &ast.Return{}, ifCmd.Then)
	assert.Nil(t, ifCmd.Else)
	assert.Equal(t, 2, ast.CountAsserts(class))
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	class, err := Parse("foo.json", []byte(`{
  "class": "Foo",
  "tests": [
    {"name": "t1", "body": [{"assert": {"bool": true}}, "skip"]}
  ]
}`))
	require.NoError(t, err)

	assert.Equal(t, "Foo", class.Name)
	require.Len(t, class.Tests, 1)
	assert.IsType(t, &ast.Seq{}, class.Tests[0].Body)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		source  string
		message string
		line    int32
	}{
		{"missing class name", "fields: { count: int }\n", "missing class name", 1},
		{"unknown class key", "class: Foo\nmethods: []\n", `unknown key "methods" in class description`, 2},
		{"unknown command", "class: Foo\ntests:\n  - name: t\n    body:\n      - print: 1\n", `unknown command "print"`, 5},
		{"unknown expression", "class: Foo\ntests:\n  - name: t\n    body:\n      - assert: { xor: [] }\n", `unknown expression "xor"`, 5},
		{"operand count", "class: Foo\ntests:\n  - name: t\n    body:\n      - assert: { lt: [ { int: 1 } ] }\n", "lt expects 2 operands, got 1", 5},
		{"missing test name", "class: Foo\ntests:\n  - body: []\n", "missing test name", 3},
		{"two keys in an expression", "class: Foo\ntests:\n  - name: t\n    body:\n      - assert: { int: 1, bool: true }\n", "expression should have a single key", 5},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse("foo.kit.yaml", []byte(testCase.source))

			var decodingErr *sourcecode.DecodingError
			require.ErrorAs(t, err, &decodingErr)
			assert.Equal(t, testCase.message, decodingErr.Message)
			assert.Equal(t, testCase.line, decodingErr.Position.Line)
			assert.Equal(t, "foo.kit.yaml", decodingErr.Position.SourceName)
		})
	}

	t.Run("syntax error", func(t *testing.T) {
		_, err := Parse("foo.kit.yaml", []byte("class: [Foo\n"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "foo.kit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(FOO), 0o600))

	class, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, class.Position().SourceName)

	_, err = Load(filepath.Join(t.TempDir(), "missing.kit.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
