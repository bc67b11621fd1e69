package loader

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/podhmo/gocalc/internal/metadata"
)

// The line is parsed as the body of main, the same way the interpreter's REPL mode treats statements.
const (
	prologue      = "package main\n\nfunc main() {\n"
	epilogue      = "\n}\n"
	prologueLines = 3
)

// ParseLine parses one line of Go source into a Tree.
// The source is trimmed; its trimmed text becomes the tree's label and the filename of every position.
func ParseLine(fset *token.FileSet, src string) (*metadata.Tree, error) {
	label := strings.TrimSpace(src)
	if label == "" {
		return nil, ErrEmptySource
	}

	file, err := parser.ParseFile(fset, label, prologue+label+epilogue, parser.SkipObjectResolution)
	if err != nil {
		return nil, newParseError(label, err)
	}

	tree := &metadata.Tree{Label: label, Fset: fset, File: file}
	if len(file.Decls) != 1 || tree.Main() == nil {
		return nil, &ParseError{Source: label, Msg: "declarations are not allowed; expected an expression or statements"}
	}
	return tree, nil
}

// LoadSource parses a complete Go file held in memory and returns its AST.
func LoadSource(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}
	return file, nil
}

// newParseError converts a parser error into a ParseError whose position is relative to the source line.
func newParseError(label string, err error) *ParseError {
	pe := &ParseError{Source: label, Msg: err.Error(), Err: err}

	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return pe
	}
	first := list[0]
	pe.Msg = first.Msg

	lines := strings.Split(label, "\n")
	line := first.Pos.Line - prologueLines
	switch {
	case line < 1:
		// the error is in the wrapper itself; no useful position
		return pe
	case line > len(lines):
		// reported at the closing brace: point just past the end of the input
		pe.Line = len(lines)
		pe.Column = len(lines[len(lines)-1]) + 1
	default:
		pe.Line = line
		pe.Column = first.Pos.Column
	}
	return pe
}
