package metadata

import (
	"encoding/json"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// ImportRequest is a package the program needs at run time but does not import itself.
type ImportRequest struct {
	Name string `json:"name"` // Package name as referenced in source (chain root)
	Path string `json:"path"` // Import path (e.g., "path/filepath")
}

// ImportSet is a set of ImportRequest keyed by package name.
// Iteration is ordered by name so that rewriting the same line twice yields the same file.
type ImportSet struct {
	set *treeset.Set
}

func compareImportRequests(a, b any) int {
	return strings.Compare(a.(ImportRequest).Name, b.(ImportRequest).Name)
}

// NewImportSet returns an empty set, optionally seeded with reqs.
func NewImportSet(reqs ...ImportRequest) *ImportSet {
	s := &ImportSet{set: treeset.NewWith(compareImportRequests)}
	for _, r := range reqs {
		s.Add(r)
	}
	return s
}

// Add inserts r unless a request with the same name is already present.
// It reports whether the set changed.
func (s *ImportSet) Add(r ImportRequest) bool {
	if s.set.Contains(r) {
		return false
	}
	s.set.Add(r)
	return true
}

// Has reports whether a request for the package name is present.
func (s *ImportSet) Has(name string) bool {
	return s.set.Contains(ImportRequest{Name: name})
}

// Len returns the number of requests.
func (s *ImportSet) Len() int {
	if s == nil {
		return 0
	}
	return s.set.Size()
}

// Requests returns the requests ordered by name.
func (s *ImportSet) Requests() []ImportRequest {
	if s == nil {
		return nil
	}
	values := s.set.Values()
	reqs := make([]ImportRequest, 0, len(values))
	for _, v := range values {
		reqs = append(reqs, v.(ImportRequest))
	}
	return reqs
}

// Names returns the package names ordered.
func (s *ImportSet) Names() []string {
	reqs := s.Requests()
	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.Name
	}
	return names
}

func (s *ImportSet) MarshalJSON() ([]byte, error) {
	reqs := s.Requests()
	if reqs == nil {
		reqs = []ImportRequest{}
	}
	return json.Marshal(reqs)
}
