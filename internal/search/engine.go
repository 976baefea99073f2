package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/sakif/course-marketplace/internal/model"
)

// ErrStopped is returned by Engine methods once Run has returned.
var ErrStopped = errors.New("search: engine stopped")

// Fetcher runs one search query. internal/client.Client implements it over HTTP.
type Fetcher interface {
	SearchCourses(ctx context.Context, query string) ([]model.Course, error)
}

// Snapshot is a read-only copy of the engine's visible state.
type Snapshot struct {
	State    State
	Filter   string
	Results  []model.Course
	Awaiting uint64
	// Shown is the sequence number of the query Results came from.
	Shown uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for debounce timers. Tests pass clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithDebounce sets the pause required before a query is sent.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.model.Delay = d
		}
	}
}

// WithObserver registers fn to be called on the event loop after every event,
// with the state that event produced. fn must not block or call back into the Engine.
func WithObserver(fn func(Event, Snapshot)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithLogger sets the logger used for failed queries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

type envelope struct {
	ev  Event
	ack chan struct{}
}

// Engine drives the search state machine.
//
// Every event (user input, timer fires, query results) is processed by the single
// goroutine running Run; timers and fetches only post events to it. The user-facing
// methods block until their event has been applied and its effects started.
type Engine struct {
	fetcher  Fetcher
	clock    clock.Clock
	logger   *slog.Logger
	observer func(Event, Snapshot)

	events chan envelope
	done   chan struct{}

	// Owned by the Run goroutine.
	model  Model
	timer  *clock.Timer
	runCtx context.Context

	mu   sync.RWMutex
	snap Snapshot
}

func New(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher: fetcher,
		clock:   clock.New(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		events:  make(chan envelope),
		done:    make(chan struct{}),
		model:   NewModel(DefaultDebounce),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snap = e.snapshot()
	return e
}

// Run processes events until ctx is cancelled. Queries in flight when Run returns are
// left to finish on their own; their results are dropped. Run must be called once.
func (e *Engine) Run(ctx context.Context) error {
	e.runCtx = ctx
	defer close(e.done)
	defer e.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-e.events:
			e.apply(env.ev)
			if env.ack != nil {
				close(env.ack)
			}
		}
	}
}

// Type records the full filter text after a keystroke.
func (e *Engine) Type(ctx context.Context, text string) error {
	return e.dispatch(ctx, FilterChanged{Text: text})
}

// SelectCategory replaces the filter with category.
func (e *Engine) SelectCategory(ctx context.Context, category string) error {
	return e.dispatch(ctx, CategorySelected{Category: category})
}

// Clear resets to the empty filter with no results.
func (e *Engine) Clear(ctx context.Context) error {
	return e.dispatch(ctx, Cleared{})
}

// Refresh re-runs the current filter without waiting for the debounce.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.dispatch(ctx, Refresh{})
}

// Snapshot returns the current visible state. It is safe to call from any goroutine.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := e.snap
	s.Results = slices.Clone(s.Results)
	return s
}

func (e *Engine) dispatch(ctx context.Context, ev Event) error {
	ack := make(chan struct{})
	select {
	case e.events <- envelope{ev: ev, ack: ack}:
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-e.done:
		return ErrStopped
	}
}

// post delivers an event from a timer or fetch goroutine without waiting for it to be
// processed. After Run returns the event is dropped.
func (e *Engine) post(ev Event) {
	select {
	case e.events <- envelope{ev: ev}:
	case <-e.done:
	}
}

func (e *Engine) apply(ev Event) {
	next, effects := Step(e.model, ev)
	e.model = next

	for _, eff := range effects {
		e.execute(eff)
	}

	snap := e.snapshot()
	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	if e.observer != nil {
		e.observer(ev, snap)
	}
}

func (e *Engine) execute(eff Effect) {
	switch eff := eff.(type) {
	case StartTimer:
		e.stopTimer()
		gen := eff.Gen
		e.timer = e.clock.AfterFunc(eff.Delay, func() {
			e.post(TimerFired{Gen: gen})
		})

	case StopTimer:
		e.stopTimer()

	case IssueQuery:
		ctx := e.runCtx
		go func() {
			courses, err := e.fetcher.SearchCourses(ctx, eff.Filter)
			if err != nil {
				e.post(FetchFailed{Seq: eff.Seq, Err: err})
				return
			}
			e.post(ResponseArrived{Seq: eff.Seq, Courses: courses})
		}()

	case ReportFailure:
		e.logger.Warn("search query failed",
			slog.String("filter", eff.Filter),
			slog.Uint64("seq", eff.Seq),
			slog.String("error", eff.Err.Error()),
		)
	}
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		State:    e.model.State,
		Filter:   e.model.Filter,
		Results:  e.model.Results,
		Awaiting: e.model.Awaiting(),
		Shown:    e.model.Shown(),
	}
}
