package bcl

import (
	"fmt"
	"path"
	"strings"
)

// StoreSelector restricts an audit to the stores whose name matches one of
// a set of glob patterns. A selector without patterns selects every store.
type StoreSelector struct {
	patterns []string
}

// NewStoreSelector creates a selector from raw patterns.
// Blank patterns and patterns starting with '#' are skipped.
func NewStoreSelector(rawPatterns []string) (*StoreSelector, error) {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if _, err := path.Match(raw, ""); err != nil {
			return nil, fmt.Errorf("store pattern %q: %w", raw, err)
		}
		patterns = append(patterns, raw)
	}
	return &StoreSelector{patterns: patterns}, nil
}

// All reports whether the selector selects every store.
func (s *StoreSelector) All() bool {
	return s == nil || len(s.patterns) == 0
}

// Match reports whether the store name is selected.
func (s *StoreSelector) Match(name string) bool {
	if s.All() {
		return true
	}
	for _, p := range s.patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Select returns the ids of the selected stores.
func (s *StoreSelector) Select(stores *Stores) map[string]bool {
	selected := make(map[string]bool, stores.Len())
	for _, st := range stores.All() {
		selected[st.ID] = s.Match(st.Name)
	}
	return selected
}
