package types

import (
	"strings"

	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/utils"
	"github.com/rs/zerolog"
)

// A CheckingError is a semantic error found during type checking, it does not stop the
// checking of the rest of the program.
type CheckingError struct {
	Position sourcecode.Position `json:"position"`
	Message  string              `json:"message"`
}

func (err CheckingError) Error() string {
	return FormatDiagnostic(err.Position, err.Message)
}

// FormatDiagnostic returns a line of the form "<message> -> <location>".
func FormatDiagnostic(pos sourcecode.Position, msg string) string {
	return msg + DIAGNOSTIC_LOCATION_SEP + pos.String()
}

// DiagnosticLocation returns the location part of a diagnostic line, the whole line if
// it has no location part.
func DiagnosticLocation(diagnostic string) string {
	i := strings.LastIndex(diagnostic, DIAGNOSTIC_LOCATION_SEP)
	if i < 0 {
		return strings.TrimSpace(diagnostic)
	}
	return strings.TrimSpace(diagnostic[i+len(DIAGNOSTIC_LOCATION_SEP):])
}

// Diagnostics accumulates the semantic errors of a compilation.
type Diagnostics struct {
	errors []CheckingError
	logger zerolog.Logger
}

func NewDiagnostics(logger zerolog.Logger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

// Report records an error and returns its formatted diagnostic line.
func (d *Diagnostics) Report(pos sourcecode.Position, msg string) string {
	err := CheckingError{Position: pos, Message: msg}
	d.errors = append(d.errors, err)
	d.logger.Debug().Str("position", pos.String()).Msg(msg)
	return err.Error()
}

// Errors returns the recorded errors in report order, the result should not be modified.
func (d *Diagnostics) Errors() []CheckingError {
	return d.errors
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.errors) != 0
}

// Err combines the recorded errors, it returns nil if there are none.
func (d *Diagnostics) Err() error {
	if len(d.errors) == 0 {
		return nil
	}
	errs := make([]error, len(d.errors))
	for i, err := range d.errors {
		errs[i] = err
	}
	return utils.CombineErrors(errs...)
}
