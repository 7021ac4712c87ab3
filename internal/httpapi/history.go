package httpapi

import (
	"strings"
	"sync"
)

// SearchHistory is a capacity-bounded, most-recent-first list of query
// strings. It is owned by the server; the search engine itself never reads
// it.
type SearchHistory struct {
	mu       sync.Mutex
	capacity int
	entries  []string
}

func NewSearchHistory(capacity int) *SearchHistory {
	return &SearchHistory{capacity: capacity}
}

// Record inserts a query at the front, deduplicating an earlier occurrence
// and evicting the oldest entry past capacity. Blank queries are ignored.
func (h *SearchHistory) Record(query string) {
	query = strings.TrimSpace(query)
	if query == "" || h.capacity == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := make([]string, 0, len(h.entries)+1)
	kept = append(kept, query)
	for _, e := range h.entries {
		if e == query {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > h.capacity {
		kept = kept[:h.capacity]
	}
	h.entries = kept
}

// Recent returns a copy of the history, newest first.
func (h *SearchHistory) Recent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
