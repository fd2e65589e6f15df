package main

import (
	"flag"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/kittenlang/kitten/internal/bytecode"
	"github.com/kittenlang/kitten/internal/types"
)

type compilation struct {
	class   *types.ClassType
	program *bytecode.Program
}

func CompileClass(mainSubCommand string, mainSubCommandArgs []string, env *environment) (statusCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	var printJSON bool
	var only string
	flags.BoolVar(&printJSON, "json", false, "print the program as JSON instead of its disassembly")
	flags.StringVar(&only, "only", "", "comma separated names of the tests to include, the fixtures are always included")

	fpath, statusCode, ok := parseSubcommandFlags(flags, mainSubCommandArgs, env)
	if !ok {
		return statusCode
	}

	result, statusCode := compileClass(fpath, splitNames(only), env)
	if result == nil {
		return statusCode
	}

	if printJSON {
		data, err := json.MarshalIndent(result.program, "", "  ")
		if err != nil {
			fmt.Fprintln(env.errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintf(env.outW, "%s\n", data)
		return
	}

	if err := result.program.Disassemble(env.outW); err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}
	return
}
