package analyzer

import (
	"go/ast"
	"reflect"

	"github.com/podhmo/gocalc/internal/loader"
	"github.com/podhmo/gocalc/internal/metadata"
	"github.com/podhmo/gocalc/internal/utils/astutils"
)

// Builtins that produce no value and so cannot be passed to a display call.
var valuelessBuiltins = map[string]bool{
	"panic":  true,
	"close":  true,
	"delete": true,
	"clear":  true,
}

// DisplayPolicy decides whether the sole top-level statement is a bare expression whose value
// must be displayed explicitly.
type DisplayPolicy struct {
	Dialect *metadata.Dialect
	Symbols loader.SymbolTable // Optional; used to detect package functions without results
	Imports *metadata.ImportSet
}

// Decide inspects the top-level statements of tree. It does not modify the tree.
func (p *DisplayPolicy) Decide(tree *metadata.Tree) metadata.DisplayDecision {
	stmts := tree.Stmts()
	if len(stmts) != 1 {
		return metadata.DisplayDecision{Reason: "statement count is not 1"}
	}

	stmt, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		return metadata.DisplayDecision{Reason: "not an expression statement"}
	}

	call, ok := ast.Unparen(stmt.X).(*ast.CallExpr)
	if !ok {
		return metadata.DisplayDecision{Wrap: true, Reason: "bare expression"}
	}

	target := astutils.CallTarget(call)
	if target != "" && p.dialect().Displays(target) {
		return metadata.DisplayDecision{Reason: "already displayed by " + target}
	}
	if p.isValueless(call) {
		return metadata.DisplayDecision{Reason: "call produces no value"}
	}
	return metadata.DisplayDecision{Wrap: true, Reason: "bare expression"}
}

func (p *DisplayPolicy) dialect() *metadata.Dialect {
	if p.Dialect != nil {
		return p.Dialect
	}
	return metadata.FmtDialect()
}

func (p *DisplayPolicy) isValueless(call *ast.CallExpr) bool {
	name, pkg := astutils.GetFullFunctionName(call.Fun)
	if name == "" {
		return false
	}
	if pkg == "" {
		return valuelessBuiltins[name]
	}
	if p.Symbols == nil || p.Imports == nil {
		return false
	}

	for _, req := range p.Imports.Requests() {
		if req.Name != pkg {
			continue
		}
		v, ok := p.Symbols.Symbol(req.Path, name)
		if !ok || v.Kind() != reflect.Func {
			return false
		}
		return v.Type().NumOut() == 0
	}
	return false
}
