package types

import "github.com/kittenlang/kitten/internal/translation"

// A Type is the static type of an expression, a field or the result of a routine.
type Type interface {
	String() string

	// Kind returns the kind of the runtime values of the type.
	Kind() translation.ValueKind

	// CanBeAssignedTo reports whether a value of the type can be stored where a value of
	// type other is expected.
	CanBeAssignedTo(other Type) bool
}

type PrimitiveType struct {
	name string
	kind translation.ValueKind
}

var (
	INT     = &PrimitiveType{name: "int", kind: translation.INT}
	BOOLEAN = &PrimitiveType{name: "boolean", kind: translation.INT}
	FLOAT   = &PrimitiveType{name: "float", kind: translation.FLOAT}
	VOID    = &PrimitiveType{name: "void", kind: translation.VOID}

	PRIMITIVE_TYPES = map[string]*PrimitiveType{
		INT.name:     INT,
		BOOLEAN.name: BOOLEAN,
		"bool":       BOOLEAN,
		FLOAT.name:   FLOAT,
	}
)

func (t *PrimitiveType) String() string {
	return t.name
}

func (t *PrimitiveType) Kind() translation.ValueKind {
	return t.kind
}

func (t *PrimitiveType) CanBeAssignedTo(other Type) bool {
	return t == other
}

func IsBoolean(t Type) bool {
	return t == BOOLEAN
}

func IsInt(t Type) bool {
	return t == INT
}
