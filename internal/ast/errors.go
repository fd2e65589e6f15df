package ast

import (
	"fmt"

	"github.com/kittenlang/kitten/internal/types"
)

const (
	FAILURE_MESSAGE_PREFIX = "failed at "

	RECEIVER_NOT_IN_SCOPE = "'this' is not in scope"
	NON_VOID_RETURN       = "return is only permitted in routines returning void"
)

func fmtUnknownField(class *types.ClassType, name string) string {
	return fmt.Sprintf("unknown field %s.%s", class.Name(), name)
}

func fmtUnknownType(name string) string {
	return fmt.Sprintf("unknown type %q", name)
}

func fmtComparisonNotSupported(operator ComparisonOperator, typ types.Type) string {
	return fmt.Sprintf("operator %s cannot compare values of type %s", operator, typ)
}
