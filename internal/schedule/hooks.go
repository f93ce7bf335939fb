package schedule

import "sync"

// DayStoredFunc is called after a day was newly written by generation.
type DayStoredFunc func(babyID, dateISO string)

type storedHooks struct {
	mu  sync.RWMutex
	fns []DayStoredFunc
}

func (h *storedHooks) add(fn DayStoredFunc) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *storedHooks) fire(babyID, dateISO string) {
	h.mu.RLock()
	fns := h.fns
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(babyID, dateISO)
	}
}
