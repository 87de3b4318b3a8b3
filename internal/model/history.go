package model

import "time"

const defaultSyncHistoryCap = 60

// SyncPoint summarises one settled fleet sync.
type SyncPoint struct {
	Timestamp time.Time
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// SyncHistory is a fixed-size ring buffer of SyncPoints.
// When the buffer is full, new pushes overwrite the oldest entry.
type SyncHistory struct {
	buf  []SyncPoint
	head int // index of the next write position
	size int // number of valid entries
}

// NewSyncHistory creates a SyncHistory with the given capacity.
// If capacity <= 0, the default (60) is used.
func NewSyncHistory(capacity int) *SyncHistory {
	if capacity <= 0 {
		capacity = defaultSyncHistoryCap
	}
	return &SyncHistory{
		buf: make([]SyncPoint, capacity),
	}
}

// Push appends a new point to the history, overwriting the oldest if full.
func (h *SyncHistory) Push(p SyncPoint) {
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries in the history.
func (h *SyncHistory) Len() int {
	return h.size
}

// Last returns the most recent point.
func (h *SyncHistory) Last() (SyncPoint, bool) {
	if h.size == 0 {
		return SyncPoint{}, false
	}
	return h.buf[(h.head-1+len(h.buf))%len(h.buf)], true
}

// Points returns all valid points in chronological order (oldest first).
func (h *SyncHistory) Points() []SyncPoint {
	out := make([]SyncPoint, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Durations returns sync durations in milliseconds, oldest first, for the
// header sparkline.
func (h *SyncHistory) Durations() []float64 {
	pts := h.Points()
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = float64(p.Duration) / float64(time.Millisecond)
	}
	return out
}
