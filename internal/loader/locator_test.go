package loader

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

func fakeExports() interp.Exports {
	return interp.Exports{
		"math/math": {
			"Pow": reflect.ValueOf(math.Pow),
			"Pi":  reflect.ValueOf(math.Pi),
		},
		"path/filepath/filepath": {
			"Clean": reflect.ValueOf(filepath.Clean),
		},
		"time/time": {
			"Sleep": reflect.ValueOf(time.Sleep),
		},
		"math/rand/rand":    {},
		"crypto/rand/rand":  {},
		"math/rand/v2/rand": {},
	}
}

func TestSymbolsLocator_Locate(t *testing.T) {
	loc := NewSymbolsLocator(fakeExports(), nil, NewCache(0))

	testCases := []struct {
		name     string
		expected string
	}{
		{"math", "math"},
		{"filepath", "path/filepath"},
		{"time", "time"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path, err := loc.Locate(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, path)
		})
	}

	t.Run("not found", func(t *testing.T) {
		_, err := loc.Locate("os")
		var nf *PackageNotFoundError
		require.True(t, errors.As(err, &nf), "expected *PackageNotFoundError, got %T", err)
		assert.Equal(t, "os", nf.Name)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := loc.Locate("rand")
		var amb *AmbiguousPackageError
		require.True(t, errors.As(err, &amb), "expected *AmbiguousPackageError, got %T", err)
		assert.Equal(t, []string{"crypto/rand", "math/rand", "math/rand/v2"}, amb.Candidates)
	})
}

func TestSymbolsLocator_Overrides(t *testing.T) {
	loc := NewSymbolsLocator(fakeExports(), map[string]string{
		"rand": "crypto/rand",
		"fp":   "path/filepath",
		"bad":  "does/not/exist",
	}, NewCache(0))

	path, err := loc.Locate("rand")
	require.NoError(t, err)
	assert.Equal(t, "crypto/rand", path)

	path, err = loc.Locate("fp")
	require.NoError(t, err)
	assert.Equal(t, "path/filepath", path)

	_, err = loc.Locate("bad")
	var nf *PackageNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "does/not/exist", nf.Name)
}

func TestSymbolsLocator_SharedCacheScopes(t *testing.T) {
	cache := NewCache(0)
	a := NewSymbolsLocator(fakeExports(), map[string]string{"rand": "math/rand"}, cache)
	b := NewSymbolsLocator(fakeExports(), map[string]string{"rand": "crypto/rand"}, cache)

	pa, err := a.Locate("rand")
	require.NoError(t, err)
	pb, err := b.Locate("rand")
	require.NoError(t, err)

	assert.Equal(t, "math/rand", pa)
	assert.Equal(t, "crypto/rand", pb)
	assert.Equal(t, 2, cache.Len())
}

func TestSymbolsLocator_SharedCacheExportSets(t *testing.T) {
	cache := NewCache(0)
	narrow := NewSymbolsLocator(interp.Exports{"fmt/fmt": {}}, nil, cache)
	full := NewSymbolsLocator(fakeExports(), nil, cache)

	_, err := narrow.Locate("math")
	var nf *PackageNotFoundError
	require.True(t, errors.As(err, &nf), "expected *PackageNotFoundError, got %T", err)

	path, err := full.Locate("math")
	require.NoError(t, err)
	assert.Equal(t, "math", path)

	// same export set, different map value: shares entries
	again := NewSymbolsLocator(fakeExports(), nil, cache)
	_, err = again.Locate("math")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestSymbolsLocator_Symbol(t *testing.T) {
	loc := NewSymbolsLocator(fakeExports(), nil, NewCache(0))

	v, ok := loc.Symbol("time", "Sleep")
	require.True(t, ok)
	assert.Equal(t, reflect.Func, v.Kind())
	assert.Equal(t, 0, v.Type().NumOut())

	_, ok = loc.Symbol("time", "Nope")
	assert.False(t, ok)
	_, ok = loc.Symbol("nope", "Sleep")
	assert.False(t, ok)
}

func TestSymbolsLocator_Stdlib(t *testing.T) {
	loc := NewSymbolsLocator(stdlib.Symbols, map[string]string{"rand": "math/rand"}, NewCache(0))

	for name, want := range map[string]string{
		"math":     "math",
		"fmt":      "fmt",
		"filepath": "path/filepath",
		"time":     "time",
		"strings":  "strings",
		"rand":     "math/rand",
	} {
		got, err := loc.Locate(name)
		if assert.NoError(t, err, name) {
			assert.Equal(t, want, got, name)
		}
	}
}
