package loader

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"

	"github.com/podhmo/gocalc/internal/utils/stringutils"
)

// Locator resolves a package name, as written in source, to an import path.
type Locator interface {
	Locate(name string) (path string, err error)
}

// SymbolTable looks up exported symbols of importable packages.
type SymbolTable interface {
	Symbol(path, name string) (reflect.Value, bool)
}

// SymbolsLocator resolves package names against the interpreter's binary symbol registry,
// i.e. the packages the interpreter can import without sources.
type SymbolsLocator struct {
	exports   interp.Exports
	byName    map[string][]string // package name -> import paths providing it (sorted)
	byPath    map[string]string   // import path -> symbol key
	overrides map[string]string   // package name -> import path
	scope     string              // cache key prefix; distinguishes locators with different export sets or overrides
	cache     *Cache
}

// NewSymbolsLocator indexes exports by package name.
// overrides pins a name to an import path, which also resolves ambiguous names (e.g. "rand").
// A nil cache means SharedCache().
func NewSymbolsLocator(exports interp.Exports, overrides map[string]string, cache *Cache) *SymbolsLocator {
	if cache == nil {
		cache = SharedCache()
	}
	l := &SymbolsLocator{
		exports:   exports,
		byName:    map[string][]string{},
		byPath:    map[string]string{},
		overrides: map[string]string{},
		cache:     cache,
	}
	keys := make([]string, 0, len(exports))
	for key := range exports {
		keys = append(keys, key)
		path, name, ok := stringutils.SplitSymbolKey(key)
		if !ok {
			continue
		}
		l.byName[name] = append(l.byName[name], path)
		l.byPath[path] = key
	}
	for _, paths := range l.byName {
		sort.Strings(paths)
	}

	pins := make([]string, 0, len(overrides))
	for name, path := range overrides {
		l.overrides[name] = path
		pins = append(pins, name+"="+path)
	}
	sort.Strings(pins)
	l.scope = exportsFingerprint(keys) + "|" + strings.Join(pins, ",")
	return l
}

// exportsFingerprint identifies an export set by its symbol keys, so that locators over
// different package sets never share probe results.
func exportsFingerprint(keys []string) string {
	sort.Strings(keys)
	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Locate returns the import path for the package name.
// It returns *PackageNotFoundError or *AmbiguousPackageError when the name cannot be resolved.
func (l *SymbolsLocator) Locate(name string) (string, error) {
	return l.cache.Lookup(l.scope+"\x00"+name, func() (string, error) {
		return l.probe(name)
	})
}

func (l *SymbolsLocator) probe(name string) (string, error) {
	if path, ok := l.overrides[name]; ok {
		if _, ok := l.byPath[path]; !ok {
			return "", &PackageNotFoundError{Name: path}
		}
		return path, nil
	}

	candidates := l.byName[name]
	switch len(candidates) {
	case 0:
		return "", &PackageNotFoundError{Name: name}
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousPackageError{Name: name, Candidates: append([]string(nil), candidates...)}
	}
}

// Symbol returns the exported symbol name of the package at import path.
func (l *SymbolsLocator) Symbol(path, name string) (reflect.Value, bool) {
	key, ok := l.byPath[path]
	if !ok {
		return reflect.Value{}, false
	}
	v, ok := l.exports[key][name]
	return v, ok
}
