package sourcecode

import "fmt"

// A DecodingError is returned when a source document has a valid syntax but does not
// describe a class (unknown keys, wrong shapes, missing names).
type DecodingError struct {
	Position Position `json:"position"`
	Message  string   `json:"message"`
}

func (err *DecodingError) Error() string {
	return fmt.Sprintf("%s: %s", err.Position, err.Message)
}

func NewDecodingError(pos Position, format string, args ...any) *DecodingError {
	return &DecodingError{
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	}
}
