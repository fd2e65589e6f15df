package main

import (
	"flag"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/kittenlang/kitten/internal/sourcecode"
	"github.com/kittenlang/kitten/internal/types"
)

type checkReport struct {
	File          string                    `json:"file"`
	Class         string                    `json:"class,omitempty"`
	DecodingError *sourcecode.DecodingError `json:"decodingError,omitempty"`
	Errors        []types.CheckingError     `json:"errors"`
}

func CheckClass(mainSubCommand string, mainSubCommandArgs []string, env *environment) (statusCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	var printJSON bool
	flags.BoolVar(&printJSON, "json", false, "print the errors as JSON")

	fpath, statusCode, ok := parseSubcommandFlags(flags, mainSubCommandArgs, env)
	if !ok {
		return statusCode
	}

	class, decodingErr, err := loadClass(fpath, env)
	if err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}

	report := checkReport{
		File:          fpath,
		DecodingError: decodingErr,
		Errors:        []types.CheckingError{},
	}
	if class != nil {
		report.Class = class.Name()
		report.Errors = append(report.Errors, class.Diagnostics().Errors()...)
	}

	failed := report.DecodingError != nil || len(report.Errors) > 0
	if failed {
		statusCode = ERROR_STATUS_CODE
	}

	if printJSON {
		data, err := json.Marshal(report)
		if err != nil {
			fmt.Fprintln(env.errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintf(env.outW, "%s\n", data)
		return
	}

	switch {
	case report.DecodingError != nil:
		printErrors(env.errOut, []error{report.DecodingError})
	case failed:
		printCheckingErrors(env.errOut, report.Errors)
	default:
		fmt.Fprintf(env.outW, "%s: no errors\n", report.Class)
	}
	return
}
