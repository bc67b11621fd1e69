package metadata

import (
	"fmt"
	"sort"
	"strings"
)

// Dialect describes how a value is displayed and which call targets already display their arguments.
type Dialect struct {
	Name           string // Dialect name as used in config (e.g., "fmt")
	DisplayPackage string // Package name of the display call (e.g., "fmt")
	DisplayPath    string // Import path of the display package (e.g., "fmt")
	DisplayFunc    string // Function of the display call (e.g., "Println")

	selfDisplaying map[string]bool // Qualified call targets ("fmt.Printf", "println") that render their arguments
}

// FmtDialect displays values with fmt.Println, and treats the fmt print family and
// the legacy builtins print/println as already displaying.
func FmtDialect() *Dialect {
	return NewDialect("fmt", "fmt", "fmt", "Println",
		"fmt.Print", "fmt.Println", "fmt.Printf",
		"fmt.Fprint", "fmt.Fprintln", "fmt.Fprintf",
		"print", "println",
	)
}

// NewDialect builds a dialect; the display call itself is always part of the self-displaying set.
func NewDialect(name, pkg, path, fn string, selfDisplaying ...string) *Dialect {
	d := &Dialect{
		Name:           name,
		DisplayPackage: pkg,
		DisplayPath:    path,
		DisplayFunc:    fn,
		selfDisplaying: map[string]bool{pkg + "." + fn: true},
	}
	d.Also(selfDisplaying...)
	return d
}

// LookupDialect returns a built-in dialect by name.
func LookupDialect(name string) (*Dialect, error) {
	switch name {
	case "", "fmt":
		return FmtDialect(), nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// Also adds call targets that should be recognized as already displaying.
func (d *Dialect) Also(targets ...string) {
	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t != "" {
			d.selfDisplaying[t] = true
		}
	}
}

// Displays reports whether a call to target (e.g., "fmt.Println" or "println") renders its arguments.
func (d *Dialect) Displays(target string) bool {
	return d.selfDisplaying[target]
}

// DisplayTarget returns the qualified display call, e.g. "fmt.Println".
func (d *Dialect) DisplayTarget() string {
	return d.DisplayPackage + "." + d.DisplayFunc
}

// SelfDisplaying returns the recognized call targets, sorted.
func (d *Dialect) SelfDisplaying() []string {
	targets := make([]string, 0, len(d.selfDisplaying))
	for t := range d.selfDisplaying {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
