package requirements

import (
	"sort"
	"strings"
)

// Set is an unordered collection of requirement lines, used to compare
// persisted manifests against expected contents.
type Set map[string]struct{}

// NewSet builds a Set from lines, ignoring empty entries.
func NewSet(lines ...string) Set {
	s := make(Set, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		s[l] = struct{}{}
	}
	return s
}

// Contains reports whether the set holds the given line.
func (s Set) Contains(line string) bool {
	_, ok := s[line]
	return ok
}

// Superset reports whether every entry of other is present in s.
func (s Set) Superset(other Set) bool {
	for l := range other {
		if !s.Contains(l) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold exactly the same entries.
func (s Set) Equal(other Set) bool {
	return len(s) == len(other) && s.Superset(other)
}

// String renders the set sorted, for diagnostics on mismatch.
func (s Set) String() string {
	lines := make([]string, 0, len(s))
	for l := range s {
		lines = append(lines, l)
	}
	sort.Strings(lines)
	return "{" + strings.Join(lines, ", ") + "}"
}
