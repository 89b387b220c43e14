package profile

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Filter returns the names matching query, best match first.
// An empty query returns names unchanged.
func Filter(names []string, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]string, len(names))
		copy(out, names)
		return out
	}

	matches := fuzzy.Find(query, names)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, names[m.Index])
	}
	return out
}

// Find lists the store and filters by query
func (s *Store) Find(query string) ([]string, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	return Filter(names, query), nil
}
