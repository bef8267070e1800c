package interpreter

import (
	"sort"
	"sync"
	"time"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/value"
)

// EventType represents the type of an event.
type EventType string

// EventInterval is pushed by an interval timer on each firing.
const EventInterval EventType = "INTERVAL"

// Event is a unit of work for the interpreter goroutine.
type Event struct {
	Type      EventType
	Timestamp time.Time

	// Fn is the function to invoke for interval events.
	Fn *value.Function
	// Pos is the position of the OnInterval call that scheduled Fn.
	Pos ast.Pos
	// Seq counts firings of the originating timer, starting at 1.
	Seq int
}

// NewEvent creates a new event with the current time as its timestamp.
func NewEvent(eventType EventType) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// DefaultQueueSize is the default maximum size of the event queue.
const DefaultQueueSize = 1000

// EventQueue is a thread-safe queue of events in chronological order.
// When full, the oldest event is discarded. Ready signals pushes to a
// waiting consumer.
type EventQueue struct {
	events  []*Event
	maxSize int
	dropped int
	ready   chan struct{}
	mu      sync.Mutex
}

// NewEventQueue creates a new event queue with the default maximum size.
func NewEventQueue() *EventQueue {
	return NewEventQueueWithSize(DefaultQueueSize)
}

// NewEventQueueWithSize creates a new event queue with a custom maximum size.
func NewEventQueueWithSize(maxSize int) *EventQueue {
	if maxSize <= 0 {
		maxSize = DefaultQueueSize
	}
	return &EventQueue{
		events:  make([]*Event, 0, maxSize),
		maxSize: maxSize,
		ready:   make(chan struct{}, 1),
	}
}

// Push adds an event, keeping the queue sorted by timestamp.
func (eq *EventQueue) Push(event *Event) {
	eq.mu.Lock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if len(eq.events) >= eq.maxSize {
		eq.events = eq.events[1:]
		eq.dropped++
	}
	eq.events = append(eq.events, event)
	sort.SliceStable(eq.events, func(i, j int) bool {
		return eq.events[i].Timestamp.Before(eq.events[j].Timestamp)
	})
	eq.mu.Unlock()

	select {
	case eq.ready <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest event.
// Returns nil and false if the queue is empty.
func (eq *EventQueue) Pop() (*Event, bool) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if len(eq.events) == 0 {
		return nil, false
	}
	event := eq.events[0]
	eq.events = eq.events[1:]
	return event, true
}

// Len returns the number of events in the queue.
func (eq *EventQueue) Len() int {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return len(eq.events)
}

// Dropped returns how many events were discarded because the queue was full.
func (eq *EventQueue) Dropped() int {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return eq.dropped
}

// Clear removes all events from the queue.
func (eq *EventQueue) Clear() {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.events = eq.events[:0]
}

// Ready returns a channel that receives after a Push. It carries at most
// one pending signal, so consumers must drain the queue after each receive.
func (eq *EventQueue) Ready() <-chan struct{} {
	return eq.ready
}

// drainEvents dispatches every queued event. It is called only at points
// where the scope chain is at the root.
func (in *Interpreter) drainEvents() {
	for {
		ev, ok := in.queue.Pop()
		if !ok {
			return
		}
		if err := in.dispatch(ev); err != nil {
			in.log.Error("Event dispatch error", "type", ev.Type, "seq", ev.Seq, "error", err)
		}
	}
}

// dispatch runs the work carried by ev.
func (in *Interpreter) dispatch(ev *Event) error {
	switch ev.Type {
	case EventInterval:
		if !in.scope.IsRoot() {
			panic("interpreter: interval event dispatched outside the root scope")
		}
		in.log.Debug("Interval fired", "function", ev.Fn.Name, "seq", ev.Seq)
		_, err := in.invoke(ev.Fn, nil, ev.Pos)
		return err
	default:
		in.log.Warn("Unknown event type", "type", ev.Type)
		return nil
	}
}
