package astutils

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func parseBody(t *testing.T, body string) *ast.File {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", "package main\nfunc main() {\n"+body+"\n}\n", 0)
	if err != nil {
		t.Fatalf("Failed to parse code: %v", err)
	}
	return f
}

func firstExpr(t *testing.T, body string) ast.Expr {
	t.Helper()
	f := parseBody(t, body)
	stmt, ok := f.Decls[0].(*ast.FuncDecl).Body.List[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("first statement of %q is not an expression", body)
	}
	return stmt.X
}

func TestSelectorChain(t *testing.T) {
	testCases := []struct {
		name     string
		code     string
		expected string
		ok       bool
	}{
		{"Ident", `x`, "x", true},
		{"Selector", `math.Pi`, "math.Pi", true},
		{"Nested", `os.path.curdir`, "os.path.curdir", true},
		{"CallOwner", `time.Now().Unix`, "", false},
		{"IndexOwner", `xs[0].Name`, "", false},
		{"ParenOwner", `(a).b`, "", false},
		{"LiteralOwner", `"s".x`, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, ok := SelectorChain(firstExpr(t, tc.code))
			if actual != tc.expected || ok != tc.ok {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tc.expected, tc.ok, actual, ok)
			}
		})
	}
}

func TestGetFullFunctionName(t *testing.T) {
	testCases := []struct {
		name         string
		code         string
		expectedName string
		expectedPkg  string
		target       string
	}{
		{"LocalFunc", `local()`, "local", "", "local"},
		{"PkgFunc", `fmt.Println(1)`, "Println", "fmt", "fmt.Println"},
		{"Paren", `(fmt.Println)(1)`, "Println", "fmt", "fmt.Println"},
		{"MethodOnCall", `time.Now().String()`, "", "", ""},
		{"FuncLit", `func() {}()`, "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			call, ok := firstExpr(t, tc.code).(*ast.CallExpr)
			if !ok {
				t.Fatalf("%q is not a call", tc.code)
			}
			actualName, actualPkg := GetFullFunctionName(call.Fun)
			if actualName != tc.expectedName || actualPkg != tc.expectedPkg {
				t.Errorf("Expected (%s, %s), got (%s, %s)", tc.expectedName, tc.expectedPkg, actualName, actualPkg)
			}
			if got := CallTarget(call); got != tc.target {
				t.Errorf("Expected target %q, got %q", tc.target, got)
			}
		})
	}
}

func TestWriteTargets(t *testing.T) {
	f := parseBody(t, `
a.b = 1
c.d += 2
e.f++
for g.h = range xs {}
x := y.z
use(p.q)
`)
	writes := WriteTargets(f)

	got := map[string]Access{}
	ast.Inspect(f, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			chain, _ := SelectorChain(sel)
			got[chain] = AccessOf(sel, writes)
		}
		return true
	})

	expected := map[string]Access{
		"a.b": AccessWrite,
		"c.d": AccessWrite,
		"e.f": AccessWrite,
		"g.h": AccessWrite,
		"y.z": AccessRead,
		"p.q": AccessRead,
	}
	for chain, want := range expected {
		if got[chain] != want {
			t.Errorf("%s: expected %s, got %s", chain, want, got[chain])
		}
	}
}
