package codegen

import (
	"errors"
	"fmt"
	"go/ast"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/podhmo/gocalc/internal/metadata"
	"github.com/podhmo/gocalc/internal/utils/stringutils"
)

// ErrAlreadyRewritten is returned when Rewrite is applied to a tree twice.
var ErrAlreadyRewritten = errors.New("tree is already rewritten")

// RewriteError indicates that the rewritten tree is not a valid program.
// It is an internal failure, distinct from parse errors in the source and run-time errors.
type RewriteError struct {
	Source string
	Err    error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("rewriting %q: %v", e.Source, e.Err)
}

func (e *RewriteError) Unwrap() error {
	return e.Err
}

// Rewrite applies the display decision and the resolved imports to tree, in place.
// When the decision wraps, the dialect's display package is imported as well.
// The analysis' import set is not modified.
func Rewrite(tree *metadata.Tree, analysis *metadata.ImportAnalysis, decision metadata.DisplayDecision, dialect *metadata.Dialect) error {
	if tree.Rewritten() {
		return ErrAlreadyRewritten
	}
	fn := tree.Main()
	if fn == nil || fn.Body == nil {
		return &RewriteError{Source: tree.Label, Err: errors.New("main function not found")}
	}
	if dialect == nil {
		dialect = metadata.FmtDialect()
	}

	var imports *metadata.ImportSet
	if analysis != nil {
		imports = metadata.NewImportSet(analysis.Imports.Requests()...)
	} else {
		imports = metadata.NewImportSet()
	}

	if decision.Wrap {
		if err := wrapDisplay(fn.Body, dialect); err != nil {
			return &RewriteError{Source: tree.Label, Err: err}
		}
		imports.Add(metadata.ImportRequest{Name: dialect.DisplayPackage, Path: dialect.DisplayPath})
	}

	for _, req := range imports.Requests() {
		if stringutils.LastPathPart(req.Path) == req.Name {
			astutil.AddImport(tree.Fset, tree.File, req.Path)
		} else {
			astutil.AddNamedImport(tree.Fset, tree.File, req.Name, req.Path)
		}
	}

	tree.MarkRewritten()
	return nil
}

// wrapDisplay replaces the sole expression statement of body with `<pkg>.<Func>(<expr>)`.
// The replacement is not visited again.
func wrapDisplay(body *ast.BlockStmt, dialect *metadata.Dialect) error {
	replaced := 0
	astutil.Apply(body, func(c *astutil.Cursor) bool {
		if c.Node() == body {
			return true
		}
		stmt, ok := c.Node().(*ast.ExprStmt)
		if !ok {
			return false
		}
		c.Replace(&ast.ExprStmt{X: &ast.CallExpr{
			Fun: &ast.SelectorExpr{
				X:   ast.NewIdent(dialect.DisplayPackage),
				Sel: ast.NewIdent(dialect.DisplayFunc),
			},
			Args: []ast.Expr{stmt.X},
		}})
		replaced++
		return false
	}, nil)

	if replaced != 1 || len(body.List) != 1 {
		return fmt.Errorf("display wrapper expects exactly one expression statement, found %d of %d statements", replaced, len(body.List))
	}
	return nil
}
