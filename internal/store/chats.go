package store

import (
	"encoding/json"
	"os"
	"sync"
)

// ChatRegistry is a durable, deduplicated set of recipient identifiers
// persisted as a JSON file. Writes rewrite the whole set; last writer wins.
type ChatRegistry struct {
	mu   sync.Mutex
	path string
	ids  []int64
}

// OpenChatRegistry loads the registry from path. A missing file starts an
// empty registry; a corrupt file is discarded and replaced on next write.
func OpenChatRegistry(path string) (*ChatRegistry, error) {
	r := &ChatRegistry{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &r.ids); err != nil {
		r.ids = nil
	}
	return r, nil
}

// Add appends the id if absent and persists the set. It reports whether the
// id was newly added.
func (r *ChatRegistry) Add(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.ids {
		if existing == id {
			return false, nil
		}
	}
	r.ids = append(r.ids, id)

	data, err := json.Marshal(r.ids)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// ListAll returns a copy of the registered ids.
func (r *ChatRegistry) ListAll() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, len(r.ids))
	copy(out, r.ids)
	return out
}
