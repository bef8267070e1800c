package interpreter

import (
	"sync"
	"time"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/value"
)

// IntervalTimer pushes an interval event for fn after delay and then every
// interval until stopped. It runs in its own goroutine and never touches
// interpreter state other than the queue.
type IntervalTimer struct {
	fn       *value.Function
	pos      ast.Pos
	interval time.Duration
	delay    time.Duration
	queue    *EventQueue

	running bool
	fired   int
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
}

// NewIntervalTimer creates a stopped timer. interval must be positive and
// delay non-negative.
func NewIntervalTimer(fn *value.Function, pos ast.Pos, interval, delay time.Duration, queue *EventQueue) *IntervalTimer {
	return &IntervalTimer{
		fn:       fn,
		pos:      pos,
		interval: interval,
		delay:    delay,
		queue:    queue,
	}
}

// Start starts the timer goroutine. Starting a running timer does nothing.
func (t *IntervalTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})

	go t.run(t.stopCh, t.doneCh)
}

func (t *IntervalTimer) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	first := time.NewTimer(t.delay)
	defer first.Stop()
	select {
	case <-stopCh:
		return
	case <-first.C:
		t.fire()
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			t.fire()
		}
	}
}

func (t *IntervalTimer) fire() {
	t.mu.Lock()
	t.fired++
	seq := t.fired
	t.mu.Unlock()

	ev := NewEvent(EventInterval)
	ev.Fn = t.fn
	ev.Pos = t.pos
	ev.Seq = seq
	t.queue.Push(ev)
}

// Stop stops the timer and waits for its goroutine to exit.
// Stopping a stopped timer does nothing.
func (t *IntervalTimer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopCh)
	doneCh := t.doneCh
	t.mu.Unlock()

	<-doneCh
}

// IsRunning reports whether the timer goroutine is active.
func (t *IntervalTimer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Fired returns the number of events pushed so far.
func (t *IntervalTimer) Fired() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// schedule registers and starts a timer for fn. Timers are not started
// once the interpreter is closed.
func (in *Interpreter) schedule(fn *value.Function, pos ast.Pos, interval, delay time.Duration) {
	t := NewIntervalTimer(fn, pos, interval, delay, in.queue)

	in.timersMu.Lock()
	defer in.timersMu.Unlock()
	if in.closed {
		in.log.Warn("Interpreter closed, timer not started", "function", fn.Name)
		return
	}
	in.timers = append(in.timers, t)
	t.Start()
	in.log.Info("Interval scheduled", "function", fn.Name, "interval", interval, "delay", delay)
}
