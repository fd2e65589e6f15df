package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/kittenlang/kitten/internal/slog"
	"github.com/kittenlang/kitten/internal/vm"
	"github.com/muesli/termenv"
)

var (
	summaryRegex = regexp.MustCompile(`(\d+) passed, (\d+) failed`)

	errNoSummary = errors.New("the test harness did not print a summary")
)

func TestClass(ctx context.Context, mainSubCommand string, mainSubCommandArgs []string, env *environment) (statusCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	var watch bool
	var only string
	flags.BoolVar(&watch, "watch", false, "run the tests again each time the file is written")
	flags.StringVar(&only, "only", "", "comma separated names of the tests to run, the fixtures are always included")

	fpath, statusCode, ok := parseSubcommandFlags(flags, mainSubCommandArgs, env)
	if !ok {
		return statusCode
	}

	if watch {
		return watchTests(ctx, fpath, splitNames(only), env)
	}
	return runTests(fpath, splitNames(only), env)
}

// runTests compiles the class file and runs the generated harness, the status code is
// non-zero if the class cannot be compiled or if a test fails.
func runTests(fpath string, only []string, env *environment) (statusCode int) {
	result, statusCode := compileClass(fpath, only, env)
	if result == nil {
		return statusCode
	}

	if env.config.ShowBytecode {
		result.program.Disassemble(env.errW)
	}

	var output bytes.Buffer

	machine, err := vm.New(vm.Config{
		Program: result.program,
		Out:     io.MultiWriter(env.outW, &output),
		Logger:  slog.ChildLoggerForSource(env.logger, "vm"),
	})
	if err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}

	if err := machine.Run([]string{fpath}); err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}

	passed, failed, err := parseSummary(output.Bytes())
	if err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}

	printVerdict(env.errOut, passed, failed)
	if failed > 0 {
		return ERROR_STATUS_CODE
	}
	return 0
}

// parseSummary extracts the counts of the last summary line printed by a harness.
func parseSummary(output []byte) (passed, failed int, err error) {
	matches := summaryRegex.FindAllSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, 0, errNoSummary
	}
	last := matches[len(matches)-1]

	passed, err = strconv.Atoi(string(last[1]))
	if err != nil {
		return
	}
	failed, err = strconv.Atoi(string(last[2]))
	return
}

func printVerdict(out *termenv.Output, passed, failed int) {
	if failed > 0 {
		fmt.Fprintln(out, out.String("FAIL").Foreground(termenv.ANSIRed).Bold())
		return
	}
	if passed == 0 {
		fmt.Fprintln(out, out.String("NO TESTS").Foreground(termenv.ANSIYellow))
		return
	}
	fmt.Fprintln(out, out.String("PASS").Foreground(termenv.ANSIGreen).Bold())
}

// watchTests runs the tests once and then each time the class file is written, it returns
// when ctx is done.
func watchTests(ctx context.Context, fpath string, only []string, env *environment) (statusCode int) {
	absPath, err := filepath.Abs(fpath)
	if err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}
	defer watcher.Close()

	//editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		fmt.Fprintln(env.errW, err)
		return ERROR_STATUS_CODE
	}

	logger := slog.ChildLoggerForSource(env.logger, "watch")
	rerun := make(chan struct{}, 1)
	debounced := debounce.New(env.config.WatchDebounce)
	requestRerun := func() {
		select {
		case rerun <- struct{}{}:
		default:
		}
	}

	runTests(fpath, only, env)

	for {
		select {
		case <-ctx.Done():
			return 0
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if filepath.Clean(event.Name) != absPath || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug().Str("op", event.Op.String()).Msg("class file changed")
			debounced(requestRerun)
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			logger.Err(err).Msg("watcher error")
		case <-rerun:
			fmt.Fprintln(env.outW)
			runTests(fpath, only, env)
		}
	}
}
