package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/kittenlang/kitten/internal/ast"
	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/kittenlang/kitten/internal/codegen"
	"github.com/kittenlang/kitten/internal/kitfile"
	"github.com/kittenlang/kitten/internal/slog"
	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/types"
	"github.com/kittenlang/kitten/internal/utils"
	"github.com/muesli/termenv"
)

var errMissingClassFile = errors.New("missing class file path")

// parseSubcommandFlags parses args and returns the class file path, ok is false if the
// help has been shown or if args are invalid.
func parseSubcommandFlags(flags *flag.FlagSet, args []string, env *environment) (fpath string, statusCode int, ok bool) {
	flags.SetOutput(env.errW)

	if showHelp(flags, args, env.outW) {
		return "", 0, false
	}

	if err := flags.Parse(args); err != nil {
		return "", ERROR_STATUS_CODE, false
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(env.errW, errMissingClassFile)
		return "", ERROR_STATUS_CODE, false
	}
	return flags.Arg(0), 0, true
}

// loadClass decodes and checks the class described by the file at fpath. decodingErr is
// set if the file is a valid document that does not describe a class.
func loadClass(fpath string, env *environment) (class *types.ClassType, decodingErr *sourcecode.DecodingError, err error) {
	decl, err := kitfile.Load(fpath)
	if err != nil {
		if errors.As(err, &decodingErr) {
			return nil, decodingErr, nil
		}
		return nil, nil, err
	}

	class = decl.Check(slog.ChildLoggerForSource(env.logger, "check"))
	env.logger.Debug().Str("class", class.Name()).Int("asserts", ast.CountAsserts(decl)).Msg("class loaded")
	return class, nil, nil
}

// compileClass loads, checks and compiles a class file, it prints the errors and returns
// a non-zero status code if the class cannot be compiled.
func compileClass(fpath string, only []string, env *environment) (_ *compilation, statusCode int) {
	class, decodingErr, err := loadClass(fpath, env)
	if err != nil {
		fmt.Fprintln(env.errW, err)
		return nil, ERROR_STATUS_CODE
	}
	if decodingErr != nil {
		printErrors(env.errOut, []error{decodingErr})
		return nil, ERROR_STATUS_CODE
	}

	if diagnostics := class.Diagnostics(); diagnostics.HasErrors() {
		printCheckingErrors(env.errOut, diagnostics.Errors())
		return nil, ERROR_STATUS_CODE
	}

	opts := codegen.Options{Logger: slog.ChildLoggerForSource(env.logger, "codegen")}
	if len(only) > 0 {
		opts.Only, err = codegen.Restrict(class, only)
		if err != nil {
			fmt.Fprintln(env.errW, err)
			return nil, ERROR_STATUS_CODE
		}
	}

	program, err := compileRecovering(class, opts)
	if err != nil {
		fmt.Fprintln(env.errW, err)
		return nil, ERROR_STATUS_CODE
	}
	return &compilation{class: class, program: program}, 0
}

func printCheckingErrors(out *termenv.Output, checkingErrors []types.CheckingError) {
	errs := make([]error, len(checkingErrors))
	for i, err := range checkingErrors {
		errs[i] = err
	}
	printErrors(out, errs)
}

func printErrors(out *termenv.Output, errs []error) {
	for _, err := range errs {
		fmt.Fprintln(out, out.String(err.Error()).Foreground(termenv.ANSIRed))
	}

	summary := fmt.Sprintf("%d error(s)", len(errs))
	fmt.Fprintln(out, out.String(summary).Bold())
}

// compileRecovering turns the panics of the code generator into errors.
func compileRecovering(class *types.ClassType, opts codegen.Options) (program *bytecode.Program, err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("internal error: %w", utils.ConvertPanicValueToError(e))
		}
	}()
	return codegen.Compile(class, opts)
}
