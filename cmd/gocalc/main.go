package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/podhmo/gocalc/internal/codegen"
	"github.com/podhmo/gocalc/internal/config"
	"github.com/podhmo/gocalc/internal/evaluator"
	"github.com/podhmo/gocalc/internal/help"
	"github.com/podhmo/gocalc/internal/interpreter"
	"github.com/podhmo/gocalc/internal/loader"
	"github.com/podhmo/gocalc/internal/metadata"
)

// Exit codes.
const (
	exitOK      = 0
	exitRuntime = 1 // Evaluation failed at run time
	exitUsage   = 2 // Bad arguments or a line that does not parse
	exitConfig  = 3 // Configuration could not be loaded or is invalid
)

const description = "Evaluate a single line of Go and print its value.\nPackages referenced as pkg.Name are imported automatically."

// Options holds the global command-line flags.
type Options struct {
	ConfigFile string        // Path to a YAML configuration file
	Timeout    time.Duration // Overrides the configured timeout when set
	Quiet      bool          // Silences unresolved-name diagnostics
	LogLevel   string        // Overrides the configured log level when set
	LogFormat  string        // Overrides the configured log format when set
}

var commands = []*metadata.CommandMetadata{
	{Name: "eval", Usage: "<source>", Description: "Evaluate the line and print its value"},
	{Name: "show", Usage: "<source>", Description: "Print the rewritten program without running it"},
	{Name: "imports", Usage: "<source>", Description: "Print the resolved imports and display decision as JSON"},
	{Name: "help", Description: "Show this help message"},
}

var globalOptions = []*metadata.OptionMetadata{
	{CliName: "config", TypeName: "string", HelpText: "YAML configuration file"},
	{CliName: "timeout", TypeName: "time.Duration", HelpText: "Abort evaluation after this duration (0 means no limit)"},
	{CliName: "quiet", TypeName: "bool", HelpText: "Do not report names that could not be resolved to packages"},
	{CliName: "log-level", TypeName: "string", HelpText: "Log level", EnumValues: []any{"debug", "info", "warn", "error"}},
	{CliName: "log-format", TypeName: "string", HelpText: "Log format", EnumValues: []any{"text", "json"}},
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	usage := help.GenerateHelp("gocalc", description+"\n"+displayNote(metadata.FmtDialect()), globalOptions, commands)

	opts := &Options{}
	fs := flag.NewFlagSet("gocalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	fs.DurationVar(&opts.Timeout, "timeout", 0, "Abort evaluation after this duration")
	fs.BoolVar(&opts.Quiet, "quiet", false, "Do not report unresolved names")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&opts.LogFormat, "log-format", "", "Log format")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cmd, rest := splitCommand(fs.Args())
	if cmd == "help" {
		fmt.Fprint(stdout, usage)
		return exitOK
	}
	if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
		fmt.Fprintln(stderr, "Error: exactly one non-empty source argument is required.")
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	src := rest[0]

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfig
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format, stderr)
	if _, ok := os.LookupEnv("DEBUG"); ok {
		logger = newLogger("debug", cfg.Log.Format, stderr)
	}

	ev, err := evaluator.New(cfg,
		evaluator.WithStdin(stdin),
		evaluator.WithStdout(stdout),
		evaluator.WithStderr(stderr),
		evaluator.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if config.IsValidationError(err) {
			return exitConfig
		}
		return exitRuntime
	}

	switch cmd {
	case "show":
		prog, err := ev.Prepare(ctx, src)
		if err != nil {
			return report(stderr, logger, err)
		}
		fmt.Fprint(stdout, string(prog.Tree.Source))
	case "imports":
		prog, err := ev.Prepare(ctx, src)
		if err != nil {
			return report(stderr, logger, err)
		}
		jsonData, err := json.MarshalIndent(newAnalysisReport(prog), "", "  ")
		if err != nil {
			logger.Error("Error marshalling analysis to JSON", "error", err)
			return exitRuntime
		}
		fmt.Fprintln(stdout, string(jsonData))
	default:
		if err := ev.Eval(ctx, src); err != nil {
			return report(stderr, logger, err)
		}
	}
	return exitOK
}

// displayNote describes which lines get a display call.
func displayNote(d *metadata.Dialect) string {
	return fmt.Sprintf("A lone expression is printed with %s, except calls to: %s.",
		d.DisplayTarget(), strings.Join(d.SelfDisplaying(), ", "))
}

// splitCommand separates a leading subcommand from its arguments.
// A lone argument is always a source line, except "help".
func splitCommand(args []string) (string, []string) {
	if len(args) == 1 && args[0] == "help" {
		return "help", nil
	}
	if len(args) > 1 {
		switch args[0] {
		case "eval", "show", "imports":
			return args[0], args[1:]
		}
	}
	return "eval", args
}

// loadConfig reads the configuration file, if any, and applies the flags that were set explicitly.
func loadConfig(fs *flag.FlagSet, opts *Options) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Timeout = opts.Timeout
		case "quiet":
			if opts.Quiet {
				cfg.Diagnostics = config.DiagnosticsSilent
			}
		case "log-level":
			cfg.Log.Level = opts.LogLevel
		case "log-format":
			cfg.Log.Format = opts.LogFormat
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// report prints err and maps it to an exit code.
func report(stderr io.Writer, logger *slog.Logger, err error) int {
	var (
		perr *loader.ParseError
		rerr *interpreter.RuntimeError
		werr *codegen.RewriteError
	)
	switch {
	case errors.Is(err, loader.ErrEmptySource), errors.As(err, &perr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	case errors.As(err, &rerr):
		fmt.Fprintf(stderr, "Error: %v\n", rerr.Err)
		return exitRuntime
	case errors.As(err, &werr):
		logger.Error("Error rewriting program", "source", werr.Source, "error", werr.Err)
		return exitRuntime
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitRuntime
	}
}

type unresolvedReport struct {
	Name  string `json:"name"`
	Chain string `json:"chain"`
	Error string `json:"error"`
}

type analysisReport struct {
	Source     string                   `json:"source"`
	Imports    *metadata.ImportSet      `json:"imports"`
	Unresolved []unresolvedReport       `json:"unresolved"`
	Decision   metadata.DisplayDecision `json:"decision"`
}

func newAnalysisReport(prog *metadata.Program) *analysisReport {
	r := &analysisReport{
		Source:     prog.Tree.Label,
		Imports:    prog.Analysis.Imports,
		Unresolved: []unresolvedReport{},
		Decision:   prog.Decision,
	}
	for _, u := range prog.Analysis.Unresolved {
		ur := unresolvedReport{Name: u.Name, Chain: u.Chain}
		if u.Err != nil {
			ur.Error = u.Err.Error()
		}
		r.Unresolved = append(r.Unresolved, ur)
	}
	return r
}
