package httpapi

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/processor"
)

const (
	subscriberBuffer = 64
	// historyTTL is how long a finished session's events stay replayable.
	historyTTL = 10 * time.Minute
)

// Hub fans progress events out to websocket subscribers. Each session keeps
// its event history so late subscribers see everything from the start.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*stream
	ttl      time.Duration
}

type stream struct {
	history []processor.Event
	subs    map[chan processor.Event]struct{}
	done    bool
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*stream), ttl: historyTTL}
}

// Reporter returns the processor reporter for session id.
func (h *Hub) Reporter(id string) processor.Reporter {
	return processor.ReporterFunc(func(ev processor.Event) { h.publish(id, ev) })
}

func (h *Hub) stream(id string) *stream {
	s, ok := h.sessions[id]
	if !ok {
		s = &stream{subs: make(map[chan processor.Event]struct{})}
		h.sessions[id] = s
	}
	return s
}

func (h *Hub) publish(id string, ev processor.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.stream(id)
	if s.done {
		return
	}
	s.history = append(s.history, ev)
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// slow subscriber; it still gets the final state from the session endpoint
		}
	}

	if ev.Final() {
		s.done = true
		for ch := range s.subs {
			close(ch)
		}
		s.subs = nil
		time.AfterFunc(h.ttl, func() { h.forget(id) })
	}
}

// Subscribe returns the events so far and a channel of the ones to come.
// The channel is closed after the final event. ok is false when the hub
// knows nothing about the session.
func (h *Hub) Subscribe(id string) (history []processor.Event, events <-chan processor.Event, cancel func(), ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return nil, nil, func() {}, false
	}
	history = append([]processor.Event(nil), s.history...)

	ch := make(chan processor.Event, subscriberBuffer)
	if s.done {
		close(ch)
		return history, ch, func() {}, true
	}
	s.subs[ch] = struct{}{}

	cancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return history, ch, cancel, true
}

// Track registers a session before its first event so subscribers can attach.
func (h *Hub) Track(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stream(id)
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}
