package ast

import (
	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
)

const (
	FAILED_STATUS = 1
	PASSED_STATUS = 0
)

// Assert continues if Condition holds, otherwise it prints "failed at <location>" and
// makes the test return the failed status.
type Assert struct {
	NodeBase
	Condition Expression

	failureMessage string //set during type checking
}

func NewAssert(pos sourcecode.Position, condition Expression) *Assert {
	return &Assert{NodeBase: NodeBase{Pos: pos}, Condition: condition}
}

// FailureMessage returns the message printed when the assertion fails, it is empty
// before type checking.
func (c *Assert) FailureMessage() string {
	return c.failureMessage
}

func (c *Assert) TypeCheck(checker *types.TypeChecker) *types.TypeChecker {
	if !checker.AssertPermitted() {
		checker.ReportError(c.Pos, types.ASSERT_ONLY_PERMITTED_IN_TESTS)
	}

	checker.RequireBoolean(c.Condition.Position(), c.Condition.TypeCheck(checker))

	diagnostic := checker.Diagnostic(c.Pos, "assertion")
	c.failureMessage = FAILURE_MESSAGE_PREFIX + types.DiagnosticLocation(diagnostic)
	return checker
}

// Terminates returns false even though the failure path returns: the continuation is
// reachable whenever the condition holds.
func (c *Assert) Terminates() bool {
	return false
}

func (c *Assert) IsDeadCodeFree() bool {
	return true
}

func (c *Assert) Translate(where *Unit, continuation *translation.Block) *translation.Block {
	mustBeChecked(c, c.failureMessage != "")

	fail := where.Arena.NewBlock(
		translation.NewString(c.failureMessage),
		outputCall(),
		translation.Const(FAILED_STATUS),
		translation.Return(translation.INT),
	)

	return c.Condition.TranslateAsTest(where, continuation, fail)
}
