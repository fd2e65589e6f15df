package main

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	CHECK_SUBCMD                 = "check"
	COMPILE_SUBCMD               = "compile"
	TEST_SUBCMD                  = "test"
	INSTALL_COMPLETIONS_SUBCMD   = "install-completions"
	UNINSTALL_COMPLETIONS_SUBCMD = "uninstall-completions"
	HELP_SUBCMD                  = "help"
)

var (
	SUBCOMMANDS = []string{
		CHECK_SUBCMD, COMPILE_SUBCMD, TEST_SUBCMD, HELP_SUBCMD,
		INSTALL_COMPLETIONS_SUBCMD, UNINSTALL_COMPLETIONS_SUBCMD,
	}

	SUBCOMMAND_DESCRIPTIONS = [][2]string{
		{CHECK_SUBCMD, "check a class description and print the errors"},
		{COMPILE_SUBCMD, "compile a class description and print the generated classes"},
		{TEST_SUBCMD, "compile a class description and run its tests"},
		{INSTALL_COMPLETIONS_SUBCMD, "install CLI completions by adding the completion command to the detected rc file (bash, zsh and fish)"},
		{UNINSTALL_COMPLETIONS_SUBCMD, "uninstall CLI completions by removing the completion command from the detected rc file"},
		{HELP_SUBCMD, "show the general help or command-specific help"},
	}

	SUBCOMMAND_DESCRIPTION_MAP = map[string]string{}

	KITTEN_CMD_HELP = "commands:\n"
)

func init() {
	for _, entry := range SUBCOMMAND_DESCRIPTIONS {
		cmd, desc := entry[0], entry[1]
		SUBCOMMAND_DESCRIPTION_MAP[cmd] = desc
		KITTEN_CMD_HELP += "\t" + cmd + " - " + desc + "\n"
	}
	KITTEN_CMD_HELP += "\nType `kitten help <command>` to get command-specific help.\n"
}

func showHelp(flags *flag.FlagSet, args []string, out io.Writer) bool {
	//only show help
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {

		cmd := flags.Name()
		if desc, ok := SUBCOMMAND_DESCRIPTION_MAP[cmd]; ok {
			fmt.Fprintln(out, desc)
		}

		flags.SetOutput(out)
		fmt.Fprint(out, "\noptions:\n")
		flags.PrintDefaults()

		return true
	}

	return false
}

// splitNames splits a comma separated list of names, empty names are ignored.
func splitNames(list string) (names []string) {
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return
}
