package types

import "errors"

const (
	DIAGNOSTIC_LOCATION_SEP = " -> "

	ASSERT_ONLY_PERMITTED_IN_TESTS = "assert only permitted inside a test"
	UNREACHABLE_CODE               = "unreachable code"
)

var (
	ErrDuplicateMember     = errors.New("duplicate class member")
	ErrReservedRoutineName = errors.New("reserved routine name")
)

func fmtBooleanExpected(actual Type) string {
	return "boolean expected, found " + actual.String()
}

func fmtTypeMismatch(expected, actual Type) string {
	return expected.String() + " expected, found " + actual.String()
}
