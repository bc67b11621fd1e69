package stringutils

import "strings"

// Head returns the first segment of a dotted path.
// Example: "os.path.curdir" -> "os", "math" -> "math"
func Head(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}

// JoinDotted joins non-empty segments with ".".
// Example: ("os", "", "path") -> "os.path"
func JoinDotted(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// LastPathPart returns the last element of a slash-separated import path.
// Example: "path/filepath" -> "filepath"
func LastPathPart(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// SplitSymbolKey splits an interpreter symbol key of the form "importpath/name"
// into its import path and package name.
// Example: "path/filepath/filepath" -> ("path/filepath", "filepath"),
// "math/rand/v2/rand" -> ("math/rand/v2", "rand")
func SplitSymbolKey(key string) (path, name string, ok bool) {
	i := strings.LastIndexByte(key, '/')
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
