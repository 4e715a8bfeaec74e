// Command a11ycorpus builds the accessibility fixture corpus and verifies
// audit rules against it.
//
//	a11ycorpus build  [--manifest tests.json] [--fixtures test/fixtures]
//	a11ycorpus verify [--rules rules.d] [--concurrency 8] [--metrics run.prom]
//	a11ycorpus list   [--fixtures test/fixtures]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/waftester/a11ycorpus/pkg/config"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/logger"
	"github.com/waftester/a11ycorpus/pkg/ui"
)

// globalOptions apply to every command.
type globalOptions struct {
	Config    string `short:"c" long:"config" description:"YAML configuration file"`
	Verbose   bool   `short:"v" long:"verbose" description:"debug logging"`
	LogFormat string `long:"log-format" description:"log format" choice:"auto" choice:"text" choice:"json" choice:"tint"`
	NoColor   bool   `long:"no-color" description:"disable colored output"`
	Version   bool   `long:"version" description:"print the version and exit"`
}

type options struct {
	globalOptions

	Build  buildCommand  `command:"build" description:"capture every manifest test case into the fixture corpus"`
	Verify verifyCommand `command:"verify" description:"run the declared cases against the corpus"`
	List   listCommand   `command:"list" description:"list the fixtures in the corpus"`
}

// env is what a command runs with.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "a11ycorpus"
	parser.SubcommandsOptional = true

	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err)
			return defaults.ExitSuccess
		}
		fmt.Fprintln(stderr, err)
		return defaults.ExitUserError
	}

	if opts.Version {
		fmt.Fprintf(stdout, "a11ycorpus %s\n", defaults.Version)
		return defaults.ExitSuccess
	}
	if parser.Active == nil {
		if ui.IsTerminal(os.Stderr) {
			ui.PrintBanner(stderr)
		}
		parser.WriteHelp(stderr)
		return defaults.ExitUserError
	}

	cfg, err := loadConfig(opts.globalOptions)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return defaults.ExitUserError
	}

	if opts.NoColor {
		ui.SetNoColor(true)
	}
	e := &env{cfg: cfg, stdout: stdout, stderr: stderr, logger: newLogger(stderr, cfg, opts.globalOptions)}
	slog.SetDefault(e.logger)

	switch parser.Active.Name {
	case "build":
		return opts.Build.run(ctx, e)
	case "verify":
		return opts.Verify.run(ctx, e)
	case "list":
		return opts.List.run(ctx, e)
	}
	return defaults.ExitUserError
}

func loadConfig(g globalOptions) (*config.Config, error) {
	if g.Config == "" {
		return config.Default(), nil
	}
	return config.Load(g.Config)
}

func newLogger(w io.Writer, cfg *config.Config, g globalOptions) *slog.Logger {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if g.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Log.Format
	if g.LogFormat != "" {
		format = g.LogFormat
	}
	return logger.New(w, logger.Options{Level: level, Format: format, NoColor: g.NoColor})
}

// override replaces dst with v when v is set.
func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func exitCode(err error, userErrs ...error) int {
	for _, target := range userErrs {
		if errors.Is(err, target) {
			return defaults.ExitUserError
		}
	}
	return defaults.ExitInternalError
}
