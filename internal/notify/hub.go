// ABOUTME: In-process event hub fanning notifications out to listeners
// ABOUTME: Publishing never blocks; slow listeners miss events

package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer is the listener channel size used when none is given.
const DefaultBuffer = 64

// Event is any notification published on the hub.
type Event interface {
	Kind() string
}

// SampleArrived is published for every accepted position sample.
type SampleArrived struct {
	Lat      float64
	Lng      float64
	Accuracy float64
	Heading  float64
}

// TripRecorded is published after a trip has been persisted.
type TripRecorded struct {
	TripID int64
}

// ReplayFinished is published once when a replay reaches its last point.
type ReplayFinished struct {
	TripID int64
}

// TargetReached is published the first time a session comes within range of the daily target.
type TargetReached struct {
	Name     string
	Distance float64
}

// Tick is published every UI tick while recording.
type Tick struct {
	Elapsed time.Duration
	Points  int
	Km      float64
}

func (SampleArrived) Kind() string  { return "sample-arrived" }
func (TripRecorded) Kind() string   { return "trip-recorded" }
func (ReplayFinished) Kind() string { return "replay-finished" }
func (TargetReached) Kind() string  { return "target-reached" }
func (Tick) Kind() string           { return "tick" }

// Listener receives events on C until unsubscribed.
type Listener struct {
	C chan Event
}

// Hub distributes events to registered listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	dropped   atomic.Int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: map[*Listener]struct{}{}}
}

// Subscribe registers a listener with the given channel buffer.
func (h *Hub) Subscribe(buffer int) *Listener {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	l := &Listener{C: make(chan Event, buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners[l] = struct{}{}
	return l
}

// Unsubscribe removes a listener and closes its channel. Repeated calls are ignored.
func (h *Hub) Unsubscribe(l *Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.listeners[l]; !ok {
		return
	}
	delete(h.listeners, l)
	close(l.C)
}

// Publish delivers ev to every listener with room in its buffer. Safe on a nil hub.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for l := range h.listeners {
		select {
		case l.C <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a listener was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
