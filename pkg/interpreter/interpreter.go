// Package interpreter executes eventscript syntax trees.
//
// It implements:
// - Expression evaluation with numeric promotion and time arithmetic
// - Statement execution with explicit break/continue/return signals
// - User function registration and invocation
// - Built-ins (Speak, toString, tuple extraction, datetime, duration)
// - OnInterval scheduling through timers and an event queue
//
// All interpreter state is owned by the goroutine that calls Exec and
// RunEvents. Timer goroutines only push events into the queue.
package interpreter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/logger"
	"github.com/zurustar/eventscript/pkg/scope"
	"github.com/zurustar/eventscript/pkg/value"
)

// MaxCallDepth is the default maximum depth of nested function calls.
const MaxCallDepth = 1000

// Speaker receives the display text emitted by the Speak built-in.
type Speaker interface {
	Speak(text string)
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(text string)

// Speak calls f(text).
func (f SpeakerFunc) Speak(text string) { f(text) }

// logSpeaker logs spoken text at info level.
type logSpeaker struct {
	log *slog.Logger
}

func (s logSpeaker) Speak(text string) {
	s.log.Info(text, "builtin", ast.BuiltinSpeak)
}

// writerSpeaker writes one line per spoken text.
type writerSpeaker struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSpeaker returns a Speaker that writes each text as a line to w.
func NewWriterSpeaker(w io.Writer) Speaker {
	return &writerSpeaker{w: w}
}

func (s *writerSpeaker) Speak(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, text)
}

// Interpreter executes one script. It is not safe for concurrent use;
// only Close may be called from another goroutine.
type Interpreter struct {
	scope     *scope.Chain
	speaker   Speaker
	formatter value.Formatter
	log       *slog.Logger
	now       func() time.Time

	maxDepth int
	depth    int

	queue     *EventQueue
	queueSize int

	timersMu sync.Mutex
	timers   []*IntervalTimer
	closed   bool
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(in *Interpreter) {
		in.log = log
	}
}

// WithSpeaker sets the receiver of Speak output.
func WithSpeaker(s Speaker) Option {
	return func(in *Interpreter) {
		in.speaker = s
	}
}

// WithLocale sets the locale used to display datetimes, as a BCP 47 tag.
func WithLocale(tag string) Option {
	return func(in *Interpreter) {
		in.formatter = value.FormatterForTag(tag)
	}
}

// WithQueueSize sets the capacity of the event queue.
func WithQueueSize(n int) Option {
	return func(in *Interpreter) {
		in.queueSize = n
	}
}

// WithMaxCallDepth sets the maximum depth of nested function calls.
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// WithClock sets the source of the current time used by datetime().
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) {
		in.now = now
	}
}

// New creates an Interpreter with an empty root scope.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		scope:     scope.NewChain(),
		formatter: value.DefaultFormatter,
		log:       logger.GetLogger(),
		now:       time.Now,
		maxDepth:  MaxCallDepth,
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.speaker == nil {
		in.speaker = logSpeaker{log: in.log}
	}
	in.queue = NewEventQueueWithSize(in.queueSize)
	return in
}

// Exec registers the script's functions and runs its top-level statements
// in order. It returns the values of top-level expression statements.
// Pending interval events are dispatched between statements.
func (in *Interpreter) Exec(script *ast.Script) ([]value.Value, error) {
	if err := in.registerFunctions(script.Functions); err != nil {
		return nil, err
	}

	var results []value.Value
	for _, stmt := range script.Statements {
		in.drainEvents()

		if es, ok := stmt.(*ast.ExpressionStatement); ok {
			v, err := in.eval(es.Expression)
			if err != nil {
				return results, err
			}
			results = append(results, v)
			continue
		}
		if _, err := in.exec(stmt); err != nil {
			return results, err
		}
	}
	in.drainEvents()

	in.log.Debug("Script executed", "statements", len(script.Statements), "symbols", in.scope.CountSymbols())
	return results, nil
}

// Eval evaluates a single expression in the current scope.
func (in *Interpreter) Eval(expr ast.Expression) (value.Value, error) {
	return in.eval(expr)
}

// Lookup returns the value bound to name as seen from the current scope.
func (in *Interpreter) Lookup(name string) (value.Value, bool) {
	d, ok := in.scope.Lookup(name)
	if !ok {
		return nil, false
	}
	switch x := d.(type) {
	case value.Value:
		return x, true
	case *value.Function:
		return value.FuncRef{Fn: x}, true
	}
	return nil, false
}

// CountSymbols returns the number of symbols visible from the current scope.
func (in *Interpreter) CountSymbols() int {
	return in.scope.CountSymbols()
}

// HasTimers reports whether OnInterval scheduled any timer.
func (in *Interpreter) HasTimers() bool {
	return in.timerCount() > 0
}

func (in *Interpreter) timerCount() int {
	in.timersMu.Lock()
	defer in.timersMu.Unlock()
	return len(in.timers)
}

// RunEvents dispatches interval events until ctx is done, then stops all
// timers. It returns immediately when nothing is scheduled.
func (in *Interpreter) RunEvents(ctx context.Context) error {
	if !in.HasTimers() && in.queue.Len() == 0 {
		in.log.Info("No timers scheduled, exiting event loop")
		return nil
	}

	in.log.Info("Event loop started", "timers", in.timerCount())
	defer in.Close()

	for {
		in.drainEvents()

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				in.log.Info("Event loop timed out")
			} else {
				in.log.Info("Event loop cancelled")
			}
			return nil
		case <-in.queue.Ready():
		}
	}
}

// Close stops every timer. Events already queued are discarded.
func (in *Interpreter) Close() {
	in.timersMu.Lock()
	timers := in.timers
	in.closed = true
	in.timersMu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	in.queue.Clear()
}
