package sourcecode

import "fmt"

// A Position locates a node in a named source (usually a file path).
// Lines and columns start at 1, the zero Position is unknown.
type Position struct {
	SourceName string `json:"sourceName"`
	Line       int32  `json:"line"`
	Column     int32  `json:"column"`
}

func MakePosition(sourceName string, line, column int) Position {
	return Position{SourceName: sourceName, Line: int32(line), Column: int32(column)}
}

func (pos Position) IsKnown() bool {
	return pos.Line > 0
}

func (pos Position) String() string {
	name := pos.SourceName
	if name == "" {
		name = "??"
	}
	if !pos.IsKnown() {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, pos.Line, pos.Column)
}
