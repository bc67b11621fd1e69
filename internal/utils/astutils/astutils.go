package astutils

import (
	"go/ast"
	"go/token"

	"github.com/podhmo/gocalc/internal/utils/stringutils"
)

// Access is how an expression is used at its position in the tree.
type Access int

const (
	AccessRead  Access = iota // Value is read (the default)
	AccessWrite               // Expression is the target of an assignment or ++/--
)

func (a Access) String() string {
	if a == AccessWrite {
		return "write"
	}
	return "read"
}

// SelectorChain reconstructs the dotted path of a selector expression by following its
// owner (X) recursively. The chain ends at a plain identifier (the root).
// Any other owner shape (call, index, literal, parenthesized, ...) abandons the chain.
// Example: `os.path.curdir` -> ("os.path.curdir", true), `f().x` -> ("", false)
func SelectorChain(expr ast.Expr) (string, bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name, true
	case *ast.SelectorExpr:
		owner, ok := SelectorChain(e.X)
		if !ok {
			return "", false
		}
		return stringutils.JoinDotted(owner, e.Sel.Name), true
	default:
		return "", false
	}
}

// GetFullFunctionName extracts package alias and function name from a call expression's Fun field.
// Example: for `pkg.MyFunc()`, returns ("MyFunc", "pkg"). For `MyFunc()`, returns ("MyFunc", "").
func GetFullFunctionName(funExpr ast.Expr) (name string, pkgAlias string) {
	switch f := funExpr.(type) {
	case *ast.Ident: // Local or builtin function call
		return f.Name, ""
	case *ast.SelectorExpr: // Package function call (e.g. fmt.Println)
		if xIdent, ok := f.X.(*ast.Ident); ok {
			return f.Sel.Name, xIdent.Name
		}
	case *ast.ParenExpr: // (fmt.Println)(x)
		return GetFullFunctionName(f.X)
	}
	return "", ""
}

// CallTarget returns the qualified call target of a call expression, e.g. "fmt.Println" or "println".
// It returns "" when the callee is not a plain or package-qualified name.
func CallTarget(call *ast.CallExpr) string {
	name, pkg := GetFullFunctionName(call.Fun)
	if name == "" {
		return ""
	}
	return stringutils.JoinDotted(pkg, name)
}

// WriteTargets returns the selector expressions under root that are written to:
// assignment left-hand sides (plain and compound), ++/-- operands, and range key/value
// targets of a `range` with `=`.
func WriteTargets(root ast.Node) map[*ast.SelectorExpr]bool {
	targets := map[*ast.SelectorExpr]bool{}
	mark := func(exprs ...ast.Expr) {
		for _, e := range exprs {
			if sel, ok := ast.Unparen(e).(*ast.SelectorExpr); ok {
				targets[sel] = true
			}
		}
	}
	ast.Inspect(root, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.AssignStmt:
			if s.Tok != token.DEFINE {
				mark(s.Lhs...)
			}
		case *ast.IncDecStmt:
			mark(s.X)
		case *ast.RangeStmt:
			if s.Tok == token.ASSIGN {
				mark(s.Key, s.Value)
			}
		}
		return true
	})
	return targets
}

// AccessOf reports how sel is used, given the write targets computed by WriteTargets.
func AccessOf(sel *ast.SelectorExpr, writes map[*ast.SelectorExpr]bool) Access {
	if writes[sel] {
		return AccessWrite
	}
	return AccessRead
}
