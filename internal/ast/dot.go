package ast

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteDot writes a Graphviz representation of the tree rooted at node, it is only used
// for debugging.
func WriteDot(w io.Writer, node Node) error {
	bw := bufio.NewWriter(w)
	ids := map[Node]int{}

	fmt.Fprintln(bw, "digraph \"ast\" {")
	fmt.Fprintln(bw, "  node [shape=box];")

	err := Walk(node, func(node, parent Node, ancestorChain []Node, after bool) (TraversalAction, error) {
		id := len(ids)
		ids[node] = id
		fmt.Fprintf(bw, "  n%d [label=%q];\n", id, dotLabel(node))
		if parent != nil {
			fmt.Fprintf(bw, "  n%d -> n%d;\n", ids[parent], id)
		}
		return ContinueTraversal, nil
	}, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotLabel(node Node) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast.")

	switch n := node.(type) {
	case *ClassDeclaration:
		return name + " " + n.Name
	case *FieldDeclaration:
		return name + " " + n.Name + ": " + n.TypeName
	case *TestDeclaration:
		return name + " " + n.Name
	case *FixtureDeclaration:
		return name + " " + n.Name
	case *FieldAssign:
		return name + " " + n.Field
	case *FieldAccess:
		return name + " " + n.Field
	case *IntLiteral:
		return fmt.Sprint(n.Value)
	case *BooleanLiteral:
		return fmt.Sprint(n.Value)
	case *Binary:
		return n.Operator.String()
	case *Comparison:
		return n.Operator.String()
	}
	return name
}
