// Package dedupe tracks ticket pick keys so the candidate pool never holds
// two tickets with the same picks.
package dedupe

import (
	"sync"

	"github.com/okian/progol/internal/domain/model"
)

// Deduper records seen pick keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(key string) bool

	// SeenTicket is SeenAndRecord on the ticket's pick key.
	SeenTicket(t model.Ticket) bool

	// Forget removes a key so the same picks may be admitted again.
	Forget(key string)

	Size() int
	Reset()
}

// inMemoryDeduper keeps keys in a map. In bounded mode a ring of insertion
// order evicts the oldest key once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> ring slot, -1 in unbounded mode
	ring    []string
	next    int
	maxSize int // 0 or negative = unbounded
}

// NewInMemoryDeduper creates a deduper. Unbounded by default; a candidate
// pool is at most a few thousand tickets.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.Reset()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}

	slot := d.next
	if old := d.ring[slot]; old != "" {
		if s, ok := d.seen[old]; ok && s == slot {
			delete(d.seen, old)
		}
	}
	d.ring[slot] = key
	d.seen[key] = slot
	d.next = (slot + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) SeenTicket(t model.Ticket) bool {
	return d.SeenAndRecord(t.Picks().Key())
}

func (d *inMemoryDeduper) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if slot >= 0 {
		d.ring[slot] = ""
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Reset drops every key.
func (d *inMemoryDeduper) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen = make(map[string]int)
	d.next = 0
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	} else {
		d.ring = nil
	}
}
