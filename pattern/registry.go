package pattern

import (
	"sort"
	"sync"
)

// Registry records which identifiers have been seen across compilations.
// It answers membership questions only and has no effect on parsing.
type Registry struct {
	mutex sync.RWMutex
	seen  map[string]int
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]int)}
}

// Add records one occurrence of id and reports whether it was new.
func (r *Registry) Add(id string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.seen[id]++
	return r.seen[id] == 1
}

func (r *Registry) Contains(id string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.seen[id]
	return ok
}

// Count returns how many times id was seen.
func (r *Registry) Count(id string) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.seen[id]
}

// IDs returns the identifiers seen so far in sorted order.
func (r *Registry) IDs() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.seen))
	for id := range r.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
