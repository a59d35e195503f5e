package domain

import (
	"strings"
	"sync"
)

// DefaultSubcategories seeds every new registry.
var DefaultSubcategories = []string{
	"Academic Study", "Read Book", "Smoke", "Household Chores", "Daily Essentials",
	"Sleep", "Relationship - Family", "Relationship - Friends", "Priyanka", "Workout",
	"Cooking", "Meditation", "Journaling", "Productivity Hacks", "Resting", "Random Work",
}

// SubcategoryRegistry is an ordered, grow-only set of known sub-category labels.
type SubcategoryRegistry struct {
	mu     sync.RWMutex
	labels []string
	seen   map[string]struct{}
}

// NewSubcategoryRegistry returns a registry seeded with the given labels, or the defaults when
// seed is empty.
func NewSubcategoryRegistry(seed []string) *SubcategoryRegistry {
	if len(seed) == 0 {
		seed = DefaultSubcategories
	}
	r := &SubcategoryRegistry{seen: make(map[string]struct{}, len(seed))}
	for _, label := range seed {
		r.Register(label)
	}
	return r
}

// Register adds label if it is not blank and not already known. It reports whether the label was
// added.
func (r *SubcategoryRegistry) Register(label string) bool {
	if strings.TrimSpace(label) == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[label]; ok {
		return false
	}
	r.seen[label] = struct{}{}
	r.labels = append(r.labels, label)
	return true
}

// Suggest returns every label containing prefix, case-insensitively, in registration order.
// An empty prefix yields no suggestions.
func (r *SubcategoryRegistry) Suggest(prefix string) []string {
	out := []string{}
	if prefix == "" {
		return out
	}
	needle := strings.ToLower(prefix)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, label := range r.labels {
		if strings.Contains(strings.ToLower(label), needle) {
			out = append(out, label)
		}
	}
	return out
}

// Labels returns a copy of all known labels in registration order.
func (r *SubcategoryRegistry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}
