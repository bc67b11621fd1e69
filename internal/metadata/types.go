package metadata

import (
	"go/ast"
	"go/token"
)

// Tree is the parsed form of a single source line.
// The line is held as the body of a synthesized `func main` inside `package main`,
// so the top-level statement sequence is the body of that function.
type Tree struct {
	Label  string         // Original (trimmed) source text; used as the filename for positions and diagnostics
	Fset   *token.FileSet // FileSet the File was parsed into
	File   *ast.File      // Synthesized file: package main + func main
	Source []byte         // Serialized program, set once the tree has been finalized

	rewritten bool
}

// Main returns the synthesized main function declaration, or nil if the file does not have one.
func (t *Tree) Main() *ast.FuncDecl {
	if t == nil || t.File == nil {
		return nil
	}
	for _, decl := range t.File.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil && fn.Name.Name == "main" {
			return fn
		}
	}
	return nil
}

// Stmts returns the top-level statement sequence of the line.
func (t *Tree) Stmts() []ast.Stmt {
	fn := t.Main()
	if fn == nil || fn.Body == nil {
		return nil
	}
	return fn.Body.List
}

// Rewritten reports whether the tree has already been through the rewriter.
func (t *Tree) Rewritten() bool { return t.rewritten }

// MarkRewritten records that imports and the display wrapper have been applied.
func (t *Tree) MarkRewritten() { t.rewritten = true }

// Finalized reports whether the tree has been serialized for execution.
func (t *Tree) Finalized() bool { return len(t.Source) > 0 }

// Unresolved records a selector chain whose root could not be located as a package.
type Unresolved struct {
	Name  string `json:"name"`  // Root identifier, e.g. "foo" for foo.Bar.Baz
	Chain string `json:"chain"` // Full dotted chain, e.g. "foo.Bar.Baz"
	Err   error  `json:"-"`
}

// ImportAnalysis is the result of the single reference-resolution pass over a tree.
type ImportAnalysis struct {
	Imports    *ImportSet   // Packages that must be imported before execution
	Unresolved []Unresolved // Chain roots that looked like package references but could not be located
}

// DisplayDecision tells the rewriter whether the sole statement must be wrapped in a display call.
type DisplayDecision struct {
	Wrap   bool   `json:"wrap"`
	Reason string `json:"reason"` // Short, human-readable explanation; for logs and `gocalc imports`
}

// Program bundles everything the pipeline produced for one line before execution.
type Program struct {
	Tree     *Tree
	Analysis *ImportAnalysis
	Decision DisplayDecision
}

// CommandMetadata describes a CLI subcommand, for help output.
type CommandMetadata struct {
	Name        string            // Subcommand name (e.g., "eval")
	Usage       string            // Argument placeholder (e.g., "<source>")
	Description string            // One-line description
	Options     []*OptionMetadata // Flags accepted by the command
}

// OptionMetadata holds information about a single command-line flag.
type OptionMetadata struct {
	CliName      string // Flag name without dashes (e.g., "timeout")
	TypeName     string // Go type of the flag value (e.g., "string", "bool", "time.Duration")
	HelpText     string // Description of the flag
	DefaultValue any    // Default value, omitted from help if nil or ""
	EnumValues   []any  // Allowed values, if restricted
}
