package filter

import (
	"path"
	"strings"

	"golang.org/x/exp/slices"
)

// DefaultRejected lists build leftovers that never ship with a package.
var DefaultRejected = []string{"*.pyc", "*.pyo", "__pycache__", ".*"}

type Filter struct {
	Accepted []string `yaml:"accepted"`
	Rejected []string `yaml:"rejected"`
	active   bool
}

func (f *Filter) Activate() {
	if len(f.Accepted) != 0 || len(f.Rejected) != 0 {
		f.active = true
	}
}

// WithDefaults returns a copy of f that also rejects DefaultRejected.
func (f Filter) WithDefaults() Filter {
	out := Filter{
		Accepted: slices.Clone(f.Accepted),
		Rejected: slices.Clone(f.Rejected),
	}
	for _, p := range DefaultRejected {
		if !slices.Contains(out.Rejected, p) {
			out.Rejected = append(out.Rejected, p)
		}
	}
	out.Activate()
	return out
}

// Check if a package relative path should be shipped or not
// No patterns specified -> everything is accepted
// only Accepted are provided -> only matching paths are shipped
// only Rejected are specified -> everything is shipped except matching paths
// both are provided -> only accepted paths that were not rejected later are shipped
//
// Patterns containing a slash match the whole slash separated path, others
// match any single element of it.
func (f *Filter) EvaluateFilter(relPath string) (accepted bool) {
	if !f.active {
		return true
	}
	relPath = strings.TrimPrefix(path.Clean(strings.ReplaceAll(relPath, "\\", "/")), "./")

	if len(f.Accepted) == 0 {
		accepted = true
	}
	for _, pattern := range f.Accepted {
		if matches(pattern, relPath) {
			accepted = true
			break
		}
	}

	for _, pattern := range f.Rejected {
		if matches(pattern, relPath) {
			accepted = false
		}
	}
	return
}

func matches(pattern, relPath string) bool {
	if strings.Contains(pattern, "/") {
		ok, _ := path.Match(strings.TrimPrefix(pattern, "/"), relPath)
		return ok
	}
	for _, element := range strings.Split(relPath, "/") {
		if ok, _ := path.Match(pattern, element); ok {
			return true
		}
	}
	return false
}
