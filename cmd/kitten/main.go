package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"unicode"

	"github.com/kittenlang/kitten/internal/config"
	"github.com/kittenlang/kitten/internal/slog"
	"github.com/kittenlang/kitten/internal/utils"
	"github.com/muesli/termenv"
	"github.com/posener/complete/v2/install"
	"github.com/rs/zerolog"
)

const (
	ERROR_STATUS_CODE = 1
	COMMAND_NAME      = "kitten"
)

func main() {
	//handle completions
	cmd.Complete(COMMAND_NAME)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	statusCode := _main(ctx, os.Args, os.Stdout, os.Stderr)
	stop()

	if statusCode != 0 {
		os.Exit(statusCode)
	}
}

// environment holds what every subcommand needs.
type environment struct {
	config config.Config
	logger zerolog.Logger
	outW   io.Writer
	errW   io.Writer

	// styled error output
	errOut *termenv.Output
}

func newEnvironment(cfg config.Config, outW, errW io.Writer) (*environment, error) {
	logger, err := slog.NewLogger(errW, cfg.LogLevel, cfg.Colorize)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return &environment{
		config: cfg,
		logger: logger,
		outW:   outW,
		errW:   errW,
		errOut: termenv.NewOutput(errW, termenv.WithProfile(cfg.Profile())),
	}, nil
}

func _main(ctx context.Context, args []string, outW io.Writer, errW io.Writer) (statusCode int) {
	if len(args) == 1 { //no subcommand specified
		fmt.Fprint(outW, KITTEN_CMD_HELP)
		return
	}

	mainSubCommand := args[1]
	mainSubCommandArgs := args[2:]

	//if the command has the shape help <subcommand> ... we modify the arguments to ask the subcommand to print its help message.
	if mainSubCommand == HELP_SUBCMD && len(mainSubCommandArgs) > 0 && mainSubCommandArgs[0] != "" && unicode.IsLetter(rune(mainSubCommandArgs[0][0])) {
		mainSubCommand = mainSubCommandArgs[0]
		mainSubCommandArgs = []string{"-h"}
	}

	switch mainSubCommand {
	case HELP_SUBCMD, "--help", "-h":
		fmt.Fprint(outW, KITTEN_CMD_HELP)
		return
	}

	//unknown command
	if !slices.Contains(SUBCOMMANDS, mainSubCommand) {
		fmt.Fprintf(errW, "unknown command '%s'", mainSubCommand)

		closest, _, ok := utils.FindClosestString(ctx, SUBCOMMANDS, mainSubCommand, 2)
		if ok {
			fmt.Fprintf(errW, ", did you mean '%s' ?\n", closest)
		} else {
			fmt.Fprint(errW, "\n"+KITTEN_CMD_HELP)
		}
		return ERROR_STATUS_CODE
	}

	switch mainSubCommand {
	case INSTALL_COMPLETIONS_SUBCMD:
		err := install.Install(COMMAND_NAME)
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintln(outW, "installed")
		return
	case UNINSTALL_COMPLETIONS_SUBCMD:
		err := install.Uninstall(COMMAND_NAME)
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintln(outW, "uninstalled")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	env, err := newEnvironment(cfg, outW, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	switch mainSubCommand {
	case CHECK_SUBCMD:
		return CheckClass(mainSubCommand, mainSubCommandArgs, env)
	case COMPILE_SUBCMD:
		return CompileClass(mainSubCommand, mainSubCommandArgs, env)
	case TEST_SUBCMD:
		return TestClass(ctx, mainSubCommand, mainSubCommandArgs, env)
	default:
		panic(fmt.Errorf("subcommand %s not handled", mainSubCommand))
	}
}
