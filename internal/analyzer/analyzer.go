package analyzer

import (
	"context"
	"go/ast"
	"log/slog"

	"github.com/podhmo/gocalc/internal/loader"
	"github.com/podhmo/gocalc/internal/metadata"
	"github.com/podhmo/gocalc/internal/utils/astutils"
	"github.com/podhmo/gocalc/internal/utils/stringutils"
)

// ImportAnalyzer finds the packages a line needs at run time but does not import.
// Only selector chains (`pkg.Name`, `pkg.Name.Field`) are candidates; a bare identifier never is.
type ImportAnalyzer struct {
	Locator loader.Locator
	Logger  *slog.Logger // Receives one warning per unresolved chain root; nil means slog.Default()
	Quiet   bool         // Suppress unresolved-root warnings (they are still recorded in the result)
}

// Analyze walks every read-mode selector expression of the tree once and probes the root of each
// reconstructed chain. It never fails: roots that cannot be located are recorded as Unresolved.
func (a *ImportAnalyzer) Analyze(ctx context.Context, tree *metadata.Tree) *metadata.ImportAnalysis {
	result := &metadata.ImportAnalysis{Imports: metadata.NewImportSet()}
	fn := tree.Main()
	if fn == nil || fn.Body == nil {
		return result
	}

	writes := astutils.WriteTargets(fn.Body)
	seen := map[string]bool{} // roots already probed in this pass

	ast.Inspect(fn.Body, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if astutils.AccessOf(sel, writes) == astutils.AccessWrite {
			return true // inner selectors of a write target are still reads
		}

		chain, ok := astutils.SelectorChain(sel)
		if !ok {
			return true
		}
		root := stringutils.Head(chain)
		if seen[root] {
			return true
		}
		seen[root] = true

		path, err := a.Locator.Locate(root)
		if err != nil {
			result.Unresolved = append(result.Unresolved, metadata.Unresolved{Name: root, Chain: chain, Err: err})
			if !a.Quiet {
				a.logger().WarnContext(ctx, "unresolved import root", "name", root, "chain", chain, "error", err)
			}
			return true
		}
		result.Imports.Add(metadata.ImportRequest{Name: root, Path: path})
		a.logger().DebugContext(ctx, "resolved import root", "name", root, "path", path, "chain", chain)
		return true
	})
	return result
}

func (a *ImportAnalyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
