package report

import "github.com/bnstruct/pebl/result"

// MemoryStore is the simplest Store: an in-memory map keyed by result ID,
// populated through Put.
type MemoryStore struct {
	results map[string]*result.Result
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]*result.Result)}
}

// Put registers res under its own ID.
func (m *MemoryStore) Put(res *result.Result) {
	m.results[res.ID] = res
}

// Get implements Store.
func (m *MemoryStore) Get(id string) (*result.Result, bool) {
	res, ok := m.results[id]
	return res, ok
}
