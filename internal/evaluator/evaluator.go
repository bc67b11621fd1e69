// Package evaluator wires the stages of a single evaluation together:
// parse, resolve imports, decide on display, rewrite, finalize and execute.
package evaluator

import (
	"context"
	"go/token"
	"io"
	"log/slog"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/podhmo/gocalc/internal/analyzer"
	"github.com/podhmo/gocalc/internal/codegen"
	"github.com/podhmo/gocalc/internal/config"
	"github.com/podhmo/gocalc/internal/interpreter"
	"github.com/podhmo/gocalc/internal/loader"
	"github.com/podhmo/gocalc/internal/metadata"
)

// Evaluator evaluates source lines. It holds no per-evaluation state, so one value can serve many calls.
type Evaluator struct {
	dialect  *metadata.Dialect
	locator  *loader.SymbolsLocator
	analyzer *analyzer.ImportAnalyzer
	executor *interpreter.Executor
	logger   *slog.Logger
}

type options struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	cache   *loader.Cache
	exports interp.Exports
}

// Option configures an Evaluator.
type Option func(*options)

// WithStdin sets the reader programs read from.
func WithStdin(r io.Reader) Option { return func(o *options) { o.stdin = r } }

// WithStdout sets the writer that receives program output.
func WithStdout(w io.Writer) Option { return func(o *options) { o.stdout = w } }

// WithStderr sets the writer that receives the program's standard error.
func WithStderr(w io.Writer) Option { return func(o *options) { o.stderr = w } }

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithCache replaces the probe cache. Without it, a cache of cfg.CacheSize entries
// is used, or the process-wide one when the size is the default.
func WithCache(c *loader.Cache) Option { return func(o *options) { o.cache = c } }

// WithExports restricts the packages available to programs.
func WithExports(exports interp.Exports) Option { return func(o *options) { o.exports = exports } }

// New builds an Evaluator from a validated configuration. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) (*Evaluator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{exports: stdlib.Symbols}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.cache == nil && cfg.CacheSize != loader.DefaultCacheSize {
		o.cache = loader.NewCache(cfg.CacheSize)
	}

	dialect, err := cfg.NewDialect()
	if err != nil {
		return nil, err
	}
	locator := loader.NewSymbolsLocator(o.exports, cfg.Imports, o.cache)
	return &Evaluator{
		dialect: dialect,
		locator: locator,
		analyzer: &analyzer.ImportAnalyzer{
			Locator: locator,
			Logger:  o.logger,
			Quiet:   cfg.Diagnostics == config.DiagnosticsSilent,
		},
		executor: &interpreter.Executor{
			Exports: o.exports,
			Stdin:   o.stdin,
			Stdout:  o.stdout,
			Stderr:  o.stderr,
			Timeout: cfg.Timeout,
			Logger:  o.logger,
		},
		logger: o.logger,
	}, nil
}

// Prepare runs every stage except execution and returns the finalized program.
// Unresolved names do not fail preparation; they are reported in the analysis.
func (e *Evaluator) Prepare(ctx context.Context, src string) (*metadata.Program, error) {
	tree, err := loader.ParseLine(token.NewFileSet(), src)
	if err != nil {
		return nil, err
	}

	analysis := e.analyzer.Analyze(ctx, tree)
	policy := &analyzer.DisplayPolicy{Dialect: e.dialect, Symbols: e.locator, Imports: analysis.Imports}
	decision := policy.Decide(tree)
	e.logger.DebugContext(ctx, "display decision", "source", tree.Label, "wrap", decision.Wrap, "reason", decision.Reason)

	if err := codegen.Rewrite(tree, analysis, decision, e.dialect); err != nil {
		return nil, err
	}
	if err := codegen.Finalize(tree); err != nil {
		return nil, err
	}
	return &metadata.Program{Tree: tree, Analysis: analysis, Decision: decision}, nil
}

// Eval prepares src and executes it in a fresh interpreter.
// Nothing is returned on success; output goes to the configured stdout.
func (e *Evaluator) Eval(ctx context.Context, src string) error {
	prog, err := e.Prepare(ctx, src)
	if err != nil {
		return err
	}
	return e.Execute(ctx, prog)
}

// Execute runs a prepared program.
func (e *Evaluator) Execute(ctx context.Context, prog *metadata.Program) error {
	return e.executor.Execute(ctx, prog.Tree)
}
