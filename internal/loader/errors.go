package loader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySource is returned when the source line is empty after trimming.
var ErrEmptySource = errors.New("empty source")

// PackageNotFoundError indicates that no importable package has the given name.
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q not found", e.Name)
}

// AmbiguousPackageError indicates that several import paths provide a package with the
// given name and no override picks one.
type AmbiguousPackageError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousPackageError) Error() string {
	return fmt.Sprintf("package %q is ambiguous: %s", e.Name, strings.Join(e.Candidates, ", "))
}

// ParseError indicates that the source line is not valid Go.
// Line and Column are relative to the source line itself (1-based).
type ParseError struct {
	Source string
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse %q: %d:%d: %s", e.Source, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("failed to parse %q: %s", e.Source, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
