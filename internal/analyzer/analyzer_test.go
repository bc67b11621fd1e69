package analyzer

import (
	"bytes"
	"context"
	"errors"
	"go/token"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/traefik/yaegi/stdlib"

	"github.com/podhmo/gocalc/internal/loader"
	"github.com/podhmo/gocalc/internal/metadata"
)

// parseLine is a helper that fails the test on a parse error.
func parseLine(t *testing.T, src string) *metadata.Tree {
	t.Helper()
	tree, err := loader.ParseLine(token.NewFileSet(), src)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", src, err)
	}
	return tree
}

func newTestLocator() *loader.SymbolsLocator {
	return loader.NewSymbolsLocator(stdlib.Symbols, map[string]string{"rand": "math/rand"}, loader.NewCache(0))
}

func newTestAnalyzer(buf *bytes.Buffer) *ImportAnalyzer {
	return &ImportAnalyzer{
		Locator: newTestLocator(),
		Logger:  slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

func TestAnalyze_Imports(t *testing.T) {
	testCases := []struct {
		name       string
		src        string
		imports    []metadata.ImportRequest
		unresolved []string
	}{
		{
			name: "arithmetic",
			src:  "2 * 2",
		},
		{
			name:    "package function",
			src:     "math.Pow(2, 3)",
			imports: []metadata.ImportRequest{{Name: "math", Path: "math"}},
		},
		{
			name: "already displayed",
			src:  "fmt.Println(math.Pow(2, 3))",
			imports: []metadata.ImportRequest{
				{Name: "fmt", Path: "fmt"},
				{Name: "math", Path: "math"},
			},
		},
		{
			name:    "nested import path",
			src:     `filepath.Clean("")`,
			imports: []metadata.ImportRequest{{Name: "filepath", Path: "path/filepath"}},
		},
		{
			name:    "method on call result",
			src:     "time.Now().Unix()",
			imports: []metadata.ImportRequest{{Name: "time", Path: "time"}},
		},
		{
			name:    "type conversion",
			src:     "time.Duration(90) * time.Second",
			imports: []metadata.ImportRequest{{Name: "time", Path: "time"}},
		},
		{
			name:    "override",
			src:     "rand.Intn(1)",
			imports: []metadata.ImportRequest{{Name: "rand", Path: "math/rand"}},
		},
		{
			name:       "unknown root",
			src:        "foo.Bar()",
			unresolved: []string{"foo"},
		},
		{
			name:       "local variable",
			src:        "x := strings.Builder{}; x.Len()",
			imports:    []metadata.ImportRequest{{Name: "strings", Path: "strings"}},
			unresolved: []string{"x"},
		},
		{
			name: "bare identifier is never a candidate",
			src:  "math",
		},
		{
			name: "bare call is never a candidate",
			src:  "Sqrt(2)",
		},
		{
			name: "write target is skipped",
			src:  "os.Args = nil",
		},
		{
			name:    "inner read of a write target",
			src:     "os.Stdout.Name = nil",
			imports: []metadata.ImportRequest{{Name: "os", Path: "os"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			a := newTestAnalyzer(&logs)
			result := a.Analyze(context.Background(), parseLine(t, tc.src))

			if diff := cmp.Diff(tc.imports, result.Imports.Requests(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("imports mismatch (-want +got):\n%s", diff)
			}
			var gotUnresolved []string
			for _, u := range result.Unresolved {
				gotUnresolved = append(gotUnresolved, u.Name)
				if !bytesContains(logs.Bytes(), "name="+u.Name) {
					t.Errorf("expected a warning naming %q, got logs:\n%s", u.Name, logs.String())
				}
			}
			if diff := cmp.Diff(tc.unresolved, gotUnresolved, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func bytesContains(b []byte, s string) bool {
	return bytes.Contains(b, []byte(s))
}

func TestAnalyze_UnresolvedError(t *testing.T) {
	var logs bytes.Buffer
	a := newTestAnalyzer(&logs)
	a.Quiet = true

	result := a.Analyze(context.Background(), parseLine(t, "foo.Bar.Baz"))
	if len(result.Unresolved) != 1 {
		t.Fatalf("expected one unresolved root, got %d", len(result.Unresolved))
	}
	u := result.Unresolved[0]
	if u.Chain != "foo.Bar.Baz" {
		t.Errorf("expected chain foo.Bar.Baz, got %q", u.Chain)
	}
	var nf *loader.PackageNotFoundError
	if !errors.As(u.Err, &nf) {
		t.Errorf("expected *loader.PackageNotFoundError, got %T", u.Err)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no logs in quiet mode, got:\n%s", logs.String())
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	var logs bytes.Buffer
	a := newTestAnalyzer(&logs)
	policy := &DisplayPolicy{Dialect: metadata.FmtDialect()}

	src := "math.Floor(math.Pi) + float64(time.Now().Year())"
	first := a.Analyze(context.Background(), parseLine(t, src))
	second := a.Analyze(context.Background(), parseLine(t, src))

	if diff := cmp.Diff(first.Imports.Requests(), second.Imports.Requests()); diff != "" {
		t.Errorf("imports differ between runs (-first +second):\n%s", diff)
	}
	if got, want := policy.Decide(parseLine(t, src)), policy.Decide(parseLine(t, src)); got != want {
		t.Errorf("decisions differ between runs: %+v vs %+v", got, want)
	}
}
