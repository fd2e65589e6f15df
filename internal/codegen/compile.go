package codegen

import (
	"fmt"

	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/kittenlang/kitten/internal/translation"
	"github.com/kittenlang/kitten/internal/types"
	"github.com/rs/zerolog"
)

type Options struct {
	Logger zerolog.Logger

	// Only restricts the tests and fixtures of the test class, nil includes every member.
	Only MemberSet
}

// Compile generates a program made of the image of class and of its test class, the
// entry point is the main routine of the test class. class should have been checked
// without errors.
func Compile(class *types.ClassType, opts Options) (*bytecode.Program, error) {
	if diagnostics := class.Diagnostics(); diagnostics != nil && diagnostics.HasErrors() {
		return nil, fmt.Errorf("%s cannot be compiled:\n%w", class.Name(), diagnostics.Err())
	}

	run := translation.NewRun(opts.Logger)
	run.Logger.Debug().Str("class", class.Name()).Msg("compilation started")

	target := NewClassGenerator(run, class.Name())
	target.GenerateFields(class)

	testClass := NewTestClassGenerator(run, class, opts.Only).Generate()

	program := bytecode.NewProgram(run.ID.String(), bytecode.EntryPoint{
		Class:   testClass.Name,
		Routine: types.MAIN_ROUTINE_NAME,
	})
	program.AddClass(target.Image())
	program.AddClass(testClass)

	run.Logger.Debug().Int("blocks", run.VisitedCount()).Msg("compilation finished")
	return program, nil
}
