package codegen

import (
	"bytes"
	"errors"
	"go/format"

	"golang.org/x/tools/imports"

	"github.com/podhmo/gocalc/internal/loader"
	"github.com/podhmo/gocalc/internal/metadata"
)

// Finalize serializes a rewritten tree and parses it back, so that every node, including the
// synthesized ones, carries a valid position under the tree's label. The serialized program is
// stored in tree.Source.
func Finalize(tree *metadata.Tree) error {
	if !tree.Rewritten() {
		return &RewriteError{Source: tree.Label, Err: errors.New("tree has not been rewritten")}
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, tree.Fset, tree.File); err != nil {
		return &RewriteError{Source: tree.Label, Err: err}
	}

	// FormatOnly: imports are decided by the analyzer, goimports must not add or drop any
	src, err := imports.Process(tree.Label, buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return &RewriteError{Source: tree.Label, Err: err}
	}

	file, err := loader.LoadSource(tree.Fset, tree.Label, src)
	if err != nil {
		return &RewriteError{Source: tree.Label, Err: err}
	}
	tree.File = file
	tree.Source = src
	return nil
}
