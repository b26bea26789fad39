package wtman

import (
	"sort"
	"sync"
)

const (
	// DefaultHistoryLimit is the retained execution count per working
	// directory.
	DefaultHistoryLimit = 50
	// DefaultOutputLimit is the retained byte count per stream per
	// execution.
	DefaultOutputLimit = 1 << 20
)

// TruncationMarker is appended to stored output that was cut at the
// retention limit.
const TruncationMarker = "\n... [output truncated]\n"

// Stats summarizes retained history.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}

// History is a bounded in-memory log of finished executions, keyed by
// working directory. Each directory keeps the most recent Limit entries;
// the oldest is evicted first. Safe for concurrent use.
type History struct {
	limit       int
	outputLimit int

	mu        sync.RWMutex
	byWorkdir map[string][]Execution // oldest first
	byID      map[string]Execution
}

// NewHistory creates a history store. Non-positive arguments use
// DefaultHistoryLimit and DefaultOutputLimit.
func NewHistory(limit, outputLimit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if outputLimit <= 0 {
		outputLimit = DefaultOutputLimit
	}
	return &History{
		limit:       limit,
		outputLimit: outputLimit,
		byWorkdir:   make(map[string][]Execution),
		byID:        make(map[string]Execution),
	}
}

// Append records a finished execution, truncating oversized output and
// evicting the oldest entry for the working directory when full.
// Non-terminal executions are ignored.
func (h *History) Append(ex Execution) {
	if !ex.Status.Terminal() {
		return
	}
	ex.Stdout = truncateOutput(ex.Stdout, h.outputLimit)
	ex.Stderr = truncateOutput(ex.Stderr, h.outputLimit)

	h.mu.Lock()
	defer h.mu.Unlock()
	list := append(h.byWorkdir[ex.Workdir], ex)
	if len(list) > h.limit {
		delete(h.byID, list[0].ID)
		copy(list, list[1:])
		list = list[:h.limit]
	}
	h.byWorkdir[ex.Workdir] = list
	h.byID[ex.ID] = ex
}

// Get returns a finished execution by id.
func (h *History) Get(id string) (Execution, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ex, ok := h.byID[id]
	return ex, ok
}

// List returns finished executions for a working directory, newest first.
// A non-positive limit returns all retained entries.
func (h *History) List(workdir string, limit int) []Execution {
	h.mu.RLock()
	defer h.mu.RUnlock()
	list := h.byWorkdir[workdir]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]Execution, 0, limit)
	for i := len(list) - 1; i >= len(list)-limit; i-- {
		out = append(out, list[i])
	}
	return out
}

// ListAll returns finished executions across all working directories,
// newest first.
func (h *History) ListAll(limit int) []Execution {
	h.mu.RLock()
	out := make([]Execution, 0, len(h.byID))
	for _, list := range h.byWorkdir {
		out = append(out, list...)
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].EndTime.After(out[j].EndTime)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Clear drops all retained entries for a working directory.
func (h *History) Clear(workdir string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ex := range h.byWorkdir[workdir] {
		delete(h.byID, ex.ID)
	}
	delete(h.byWorkdir, workdir)
}

// ClearAll drops all retained entries.
func (h *History) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byWorkdir = make(map[string][]Execution)
	h.byID = make(map[string]Execution)
}

// Len returns the retained entry count for a working directory.
func (h *History) Len(workdir string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byWorkdir[workdir])
}

// Stats returns aggregate counts over all retained executions.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	stats := Stats{ByStatus: make(map[Status]int)}
	for _, ex := range h.byID {
		stats.Total++
		stats.ByStatus[ex.Status]++
	}
	return stats
}

func truncateOutput(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + TruncationMarker
}
