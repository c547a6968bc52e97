package event

import (
	"io"
	"sort"
	"sync"

	"github.com/BYTE-6D65/bigchart/pkg/clock"
)

// DefaultCapacity bounds a journal created without an explicit capacity.
const DefaultCapacity = 4096

// Journal keeps events ordered by At. When full, the oldest events are
// dropped.
type Journal struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

// NewJournal creates a journal holding at most capacity events.
// Non-positive capacities select DefaultCapacity.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{
		events:   make([]Event, 0, min(capacity, 256)),
		capacity: capacity,
	}
}

// Append records evt. Events usually arrive in order; a late one is inserted
// after every event with the same or an earlier time.
func (j *Journal) Append(evt Event) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.events) == 0 || evt.At >= j.events[len(j.events)-1].At {
		j.events = append(j.events, evt)
	} else {
		idx := sort.Search(len(j.events), func(i int) bool {
			return j.events[i].At > evt.At
		})
		j.events = append(j.events, Event{})
		copy(j.events[idx+1:], j.events[idx:])
		j.events[idx] = evt
	}

	if over := len(j.events) - j.capacity; over > 0 {
		j.events = append(j.events[:0], j.events[over:]...)
	}
}

// Range returns the events with start <= At < end.
func (j *Journal) Range(start, end clock.MonoTime) []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	lo := sort.Search(len(j.events), func(i int) bool { return j.events[i].At >= start })
	hi := sort.Search(len(j.events), func(i int) bool { return j.events[i].At >= end })
	if hi <= lo {
		return nil
	}
	out := make([]Event, hi-lo)
	copy(out, j.events[lo:hi])
	return out
}

// Last returns the n most recent events, oldest first.
func (j *Journal) Last(n int) []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if n <= 0 || len(j.events) == 0 {
		return nil
	}
	n = min(n, len(j.events))
	out := make([]Event, n)
	copy(out, j.events[len(j.events)-n:])
	return out
}

// All returns every event in order.
func (j *Journal) All() []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Event, len(j.events))
	copy(out, j.events)
	return out
}

// Filter returns the events of the given type in order.
func (j *Journal) Filter(typ Type) []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Event
	for _, e := range j.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// CausedBy returns the events whose CausationID is id.
func (j *Journal) CausedBy(id string) []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Event
	for _, e := range j.events {
		if e.CausationID == id {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of events held.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events)
}

// Clear removes all events.
func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = j.events[:0]
}

// Encode writes the journal to w as one encoded event per line.
func (j *Journal) Encode(w io.Writer, codec Codec) (int64, error) {
	var written int64
	for _, e := range j.All() {
		b, err := codec.Marshal(e)
		if err != nil {
			return written, err
		}
		n, err := w.Write(append(b, '\n'))
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
