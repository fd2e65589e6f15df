// Package kitfile decodes class descriptions written in YAML (or JSON) into class
// declarations. Every node keeps the position of its key in the source.
package kitfile

import (
	"fmt"
	"math"
	"os"

	yamlast "github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/kittenlang/kitten/internal/ast"
	"github.com/kittenlang/kitten/internal/sourcecode"
)

const (
	CLASS_KEY    = "class"
	FIELDS_KEY   = "fields"
	FIXTURES_KEY = "fixtures"
	TESTS_KEY    = "tests"
	NAME_KEY     = "name"
	BODY_KEY     = "body"

	ASSIGN_KEY = "assign"
	ASSERT_KEY = "assert"
	IF_KEY     = "if"
	WHILE_KEY  = "while"
	RETURN_KEY = "return"
	SKIP_KEY   = "skip"

	FIELD_KEY = "field"
	VALUE_KEY = "value"
	COND_KEY  = "cond"
	THEN_KEY  = "then"
	ELSE_KEY  = "else"

	INT_KEY  = "int"
	BOOL_KEY = "bool"
	NOT_KEY  = "not"
	AND_KEY  = "and"
	OR_KEY   = "or"
)

var (
	binaryOperators = map[string]ast.BinaryOperator{
		"add": ast.Add,
		"sub": ast.Sub,
		"mul": ast.Mul,
	}
	comparisonOperators = map[string]ast.ComparisonOperator{
		"lt": ast.LessThan,
		"le": ast.LessOrEqual,
		"gt": ast.GreaterThan,
		"ge": ast.GreaterOrEqual,
		"eq": ast.Equal,
		"ne": ast.NotEqual,
	}
)

// Load reads and decodes the class description at path.
func Load(path string) (*ast.ClassDeclaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes a class description, name is the source name of the positions.
func Parse(name string, data []byte) (*ast.ClassDeclaration, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	d := &decoder{sourceName: name}

	if len(file.Docs) != 1 || file.Docs[0].Body == nil {
		return nil, sourcecode.NewDecodingError(sourcecode.MakePosition(name, 0, 0), "a single document describing a class is expected")
	}
	return d.class(file.Docs[0].Body)
}

type decoder struct {
	sourceName string
}

func (d *decoder) pos(node yamlast.Node) sourcecode.Position {
	token := node.GetToken()
	if token == nil || token.Position == nil {
		return sourcecode.MakePosition(d.sourceName, 0, 0)
	}
	return sourcecode.MakePosition(d.sourceName, token.Position.Line, token.Position.Column)
}

func (d *decoder) errorf(node yamlast.Node, format string, args ...any) error {
	return sourcecode.NewDecodingError(d.pos(node), format, args...)
}

type entry struct {
	key   string
	node  *yamlast.MappingValueNode
	value yamlast.Node
}

// mapping returns the entries of a mapping node in source order.
func (d *decoder) mapping(node yamlast.Node, what string) ([]entry, error) {
	var values []*yamlast.MappingValueNode

	switch n := node.(type) {
	case *yamlast.MappingNode:
		values = n.Values
	case *yamlast.MappingValueNode:
		values = []*yamlast.MappingValueNode{n}
	default:
		return nil, d.errorf(node, "%s should be a mapping", what)
	}

	entries := make([]entry, 0, len(values))
	seen := map[string]bool{}
	for _, value := range values {
		key, err := d.scalarString(value.Key, "key")
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, d.errorf(value.Key, "duplicate key %q", key)
		}
		seen[key] = true
		entries = append(entries, entry{key: key, node: value, value: value.Value})
	}
	return entries, nil
}

// singleEntry returns the only entry of a mapping node.
func (d *decoder) singleEntry(node yamlast.Node, what string) (entry, error) {
	entries, err := d.mapping(node, what)
	if err != nil {
		return entry{}, err
	}
	if len(entries) != 1 {
		return entry{}, d.errorf(node, "%s should have a single key", what)
	}
	return entries[0], nil
}

func (d *decoder) sequence(node yamlast.Node, what string) ([]yamlast.Node, error) {
	switch n := node.(type) {
	case *yamlast.SequenceNode:
		return n.Values, nil
	case *yamlast.NullNode:
		return nil, nil
	}
	return nil, d.errorf(node, "%s should be a sequence", what)
}

func (d *decoder) scalarString(node yamlast.Node, what string) (string, error) {
	if node == nil {
		return "", fmt.Errorf("%s: missing %s", d.sourceName, what)
	}
	if s, ok := node.(*yamlast.StringNode); ok {
		return s.Value, nil
	}
	return "", d.errorf(node, "%s should be a string", what)
}

func (d *decoder) class(node yamlast.Node) (*ast.ClassDeclaration, error) {
	entries, err := d.mapping(node, "class description")
	if err != nil {
		return nil, err
	}
	class := &ast.ClassDeclaration{NodeBase: ast.NodeBase{Pos: d.pos(node)}}

	for _, e := range entries {
		switch e.key {
		case CLASS_KEY:
			class.Name, err = d.scalarString(e.value, "class name")
			class.Pos = d.pos(e.node.Key)
		case FIELDS_KEY:
			class.Fields, err = d.fields(e.value)
		case FIXTURES_KEY:
			err = d.members(e.value, "fixture", func(pos sourcecode.Position, name string, body ast.Command) {
				class.Fixtures = append(class.Fixtures, &ast.FixtureDeclaration{NodeBase: ast.NodeBase{Pos: pos}, Name: name, Body: body})
			})
		case TESTS_KEY:
			err = d.members(e.value, "test", func(pos sourcecode.Position, name string, body ast.Command) {
				class.Tests = append(class.Tests, &ast.TestDeclaration{NodeBase: ast.NodeBase{Pos: pos}, Name: name, Body: body})
			})
		default:
			err = d.errorf(e.node.Key, "unknown key %q in class description", e.key)
		}
		if err != nil {
			return nil, err
		}
	}

	if class.Name == "" {
		return nil, d.errorf(node, "missing class name")
	}
	return class, nil
}

func (d *decoder) fields(node yamlast.Node) ([]*ast.FieldDeclaration, error) {
	if _, ok := node.(*yamlast.NullNode); ok {
		return nil, nil
	}
	entries, err := d.mapping(node, "fields")
	if err != nil {
		return nil, err
	}

	fields := make([]*ast.FieldDeclaration, 0, len(entries))
	for _, e := range entries {
		typeName, err := d.scalarString(e.value, "field type")
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldDeclaration{
			NodeBase: ast.NodeBase{Pos: d.pos(e.node.Key)},
			Name:     e.key,
			TypeName: typeName,
		})
	}
	return fields, nil
}

func (d *decoder) members(node yamlast.Node, kind string, add func(pos sourcecode.Position, name string, body ast.Command)) error {
	items, err := d.sequence(node, kind+"s")
	if err != nil {
		return err
	}

	for _, item := range items {
		entries, err := d.mapping(item, kind)
		if err != nil {
			return err
		}

		var name string
		var body ast.Command = &ast.Skip{NodeBase: ast.NodeBase{Pos: d.pos(item)}}
		for _, e := range entries {
			switch e.key {
			case NAME_KEY:
				name, err = d.scalarString(e.value, kind+" name")
			case BODY_KEY:
				body, err = d.block(e.value)
			default:
				err = d.errorf(e.node.Key, "unknown key %q in %s", e.key, kind)
			}
			if err != nil {
				return err
			}
		}
		if name == "" {
			return d.errorf(item, "missing %s name", kind)
		}
		add(d.pos(item), name, body)
	}
	return nil
}

// block decodes a sequence of commands.
func (d *decoder) block(node yamlast.Node) (ast.Command, error) {
	items, err := d.sequence(node, "body")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &ast.Skip{NodeBase: ast.NodeBase{Pos: d.pos(node)}}, nil
	}

	commands := make([]ast.Command, 0, len(items))
	for _, item := range items {
		cmd, err := d.command(item)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return ast.NewSeq(commands...), nil
}

func (d *decoder) command(node yamlast.Node) (ast.Command, error) {
	if keyword, ok := node.(*yamlast.StringNode); ok {
		base := ast.NodeBase{Pos: d.pos(node)}
		switch keyword.Value {
		case RETURN_KEY:
			return &ast.Return{NodeBase: base}, nil
		case SKIP_KEY:
			return &ast.Skip{NodeBase: base}, nil
		}
		return nil, d.errorf(node, "unknown command %q", keyword.Value)
	}

	e, err := d.singleEntry(node, "command")
	if err != nil {
		return nil, err
	}
	pos := d.pos(e.node.Key)
	base := ast.NodeBase{Pos: pos}

	switch e.key {
	case RETURN_KEY:
		return &ast.Return{NodeBase: base}, nil
	case SKIP_KEY:
		return &ast.Skip{NodeBase: base}, nil
	case ASSERT_KEY:
		condition, err := d.expression(e.value)
		if err != nil {
			return nil, err
		}
		return ast.NewAssert(pos, condition), nil
	case ASSIGN_KEY:
		assign := &ast.FieldAssign{NodeBase: base}
		if err := d.forEachEntry(e.value, "assign", map[string]func(yamlast.Node) error{
			FIELD_KEY: func(n yamlast.Node) (err error) {
				assign.Field, err = d.scalarString(n, "field name")
				return
			},
			VALUE_KEY: func(n yamlast.Node) (err error) {
				assign.Value, err = d.expression(n)
				return
			},
		}); err != nil {
			return nil, err
		}
		if assign.Field == "" || assign.Value == nil {
			return nil, d.errorf(e.node.Key, "assign requires a field and a value")
		}
		return assign, nil
	case IF_KEY:
		cmd := &ast.If{NodeBase: base}
		if err := d.forEachEntry(e.value, "if", map[string]func(yamlast.Node) error{
			COND_KEY: func(n yamlast.Node) (err error) {
				cmd.Condition, err = d.expression(n)
				return
			},
			THEN_KEY: func(n yamlast.Node) (err error) {
				cmd.Then, err = d.block(n)
				return
			},
			ELSE_KEY: func(n yamlast.Node) (err error) {
				cmd.Else, err = d.block(n)
				return
			},
		}); err != nil {
			return nil, err
		}
		if cmd.Condition == nil {
			return nil, d.errorf(e.node.Key, "if requires a condition")
		}
		if cmd.Then == nil {
			cmd.Then = &ast.Skip{NodeBase: base}
		}
		return cmd, nil
	case WHILE_KEY:
		cmd := &ast.While{NodeBase: base}
		if err := d.forEachEntry(e.value, "while", map[string]func(yamlast.Node) error{
			COND_KEY: func(n yamlast.Node) (err error) {
				cmd.Condition, err = d.expression(n)
				return
			},
			BODY_KEY: func(n yamlast.Node) (err error) {
				cmd.Body, err = d.block(n)
				return
			},
		}); err != nil {
			return nil, err
		}
		if cmd.Condition == nil {
			return nil, d.errorf(e.node.Key, "while requires a condition")
		}
		if cmd.Body == nil {
			cmd.Body = &ast.Skip{NodeBase: base}
		}
		return cmd, nil
	}
	return nil, d.errorf(e.node.Key, "unknown command %q", e.key)
}

// forEachEntry calls the handler of each key of a mapping node, unknown keys are errors.
func (d *decoder) forEachEntry(node yamlast.Node, what string, handlers map[string]func(yamlast.Node) error) error {
	entries, err := d.mapping(node, what)
	if err != nil {
		return err
	}
	for _, e := range entries {
		handle, ok := handlers[e.key]
		if !ok {
			return d.errorf(e.node.Key, "unknown key %q in %s", e.key, what)
		}
		if err := handle(e.value); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) expression(node yamlast.Node) (ast.Expression, error) {
	e, err := d.singleEntry(node, "expression")
	if err != nil {
		return nil, err
	}
	pos := d.pos(e.node.Key)

	switch e.key {
	case INT_KEY:
		switch n := e.value.(type) {
		case *yamlast.IntegerNode:
			switch value := n.Value.(type) {
			case int64:
				return ast.NewIntLiteral(pos, value), nil
			case uint64:
				if value > math.MaxInt64 {
					return nil, d.errorf(n, "integer out of range")
				}
				return ast.NewIntLiteral(pos, int64(value)), nil
			}
		}
		return nil, d.errorf(e.value, "int should be an integer")
	case BOOL_KEY:
		if n, ok := e.value.(*yamlast.BoolNode); ok {
			return ast.NewBooleanLiteral(pos, n.Value), nil
		}
		return nil, d.errorf(e.value, "bool should be true or false")
	case FIELD_KEY:
		name, err := d.scalarString(e.value, "field name")
		if err != nil {
			return nil, err
		}
		return ast.NewFieldAccess(pos, name), nil
	case NOT_KEY:
		operand, err := d.expression(e.value)
		if err != nil {
			return nil, err
		}
		return ast.NewNot(pos, operand), nil
	}

	binaryOperator, isBinary := binaryOperators[e.key]
	comparisonOperator, isComparison := comparisonOperators[e.key]
	if !isBinary && !isComparison && e.key != AND_KEY && e.key != OR_KEY {
		return nil, d.errorf(e.node.Key, "unknown expression %q", e.key)
	}

	left, right, err := d.operands(e.value, e.key)
	if err != nil {
		return nil, err
	}

	switch {
	case e.key == AND_KEY:
		return ast.NewAnd(pos, left, right), nil
	case e.key == OR_KEY:
		return ast.NewOr(pos, left, right), nil
	case isBinary:
		return ast.NewBinary(pos, binaryOperator, left, right), nil
	default:
		return ast.NewComparison(pos, comparisonOperator, left, right), nil
	}
}

func (d *decoder) operands(node yamlast.Node, operator string) (ast.Expression, ast.Expression, error) {
	items, err := d.sequence(node, "operands of "+operator)
	if err != nil {
		return nil, nil, err
	}
	if len(items) != 2 {
		return nil, nil, d.errorf(node, "%s expects 2 operands, got %d", operator, len(items))
	}
	left, err := d.expression(items[0])
	if err != nil {
		return nil, nil, err
	}
	right, err := d.expression(items[1])
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
