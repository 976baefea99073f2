// Package search implements the incremental course search used by the explore client.
//
// The behaviour is a state machine with pure transitions: Step takes the current Model
// and an Event and returns the next Model plus the Effects to run (start a timer, issue
// a query, report a failure). Step never blocks and never touches a clock or network,
// so every ordering of keystrokes, timer fires and responses can be tested directly.
// Engine (engine.go) owns one Model on a single goroutine and executes the effects.
//
// Two counters keep the machine consistent under rapid input:
//   - the timer generation: each keystroke restarts the debounce timer under a new
//     generation, and a TimerFired event from an older generation is ignored, so a
//     timer that fires just as it is being replaced cannot issue a query;
//   - the query sequence: every issued query gets the next sequence number and only
//     the response carrying the awaited number is applied. Typing while a query is in
//     flight stops awaiting it, so its late response is discarded without aborting it.
package search

import (
	"slices"
	"time"

	"github.com/sakif/course-marketplace/internal/model"
)

// DefaultDebounce is how long input must pause before a query is sent.
const DefaultDebounce = 500 * time.Millisecond

// State is the visible phase of a search.
type State int

const (
	// Idle: no filter has been entered, or the filter was cleared.
	Idle State = iota
	// PendingDebounce: the filter changed and the debounce timer is running.
	PendingDebounce
	// Fetching: a query for the current filter is in flight.
	Fetching
	// SettledOk: the latest query returned at least one course.
	SettledOk
	// SettledEmpty: the latest query returned no courses.
	SettledEmpty
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingDebounce:
		return "pending"
	case Fetching:
		return "fetching"
	case SettledOk:
		return "settled"
	case SettledEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Event is an input to Step.
type Event interface{ isEvent() }

// FilterChanged is a keystroke: Text is the whole filter after the edit.
type FilterChanged struct{ Text string }

// CategorySelected replaces the filter with a category name.
type CategorySelected struct{ Category string }

// Cleared resets the search to the empty filter.
type Cleared struct{}

// Refresh re-runs the current filter immediately, skipping the debounce.
type Refresh struct{}

// TimerFired is posted when the debounce timer of generation Gen elapses.
type TimerFired struct{ Gen uint64 }

// ResponseArrived carries the result of query Seq.
type ResponseArrived struct {
	Seq     uint64
	Courses []model.Course
}

// FetchFailed reports that query Seq failed.
type FetchFailed struct {
	Seq uint64
	Err error
}

func (FilterChanged) isEvent()    {}
func (CategorySelected) isEvent() {}
func (Cleared) isEvent()          {}
func (Refresh) isEvent()          {}
func (TimerFired) isEvent()       {}
func (ResponseArrived) isEvent()  {}
func (FetchFailed) isEvent()      {}

// Effect is an action Step asks the driver to perform.
type Effect interface{ isEffect() }

// StartTimer (re)starts the debounce timer. Any running timer must be stopped first.
type StartTimer struct {
	Gen   uint64
	Delay time.Duration
}

// StopTimer cancels the running debounce timer, if any.
type StopTimer struct{}

// IssueQuery asks for the courses matching Filter; the result must be posted back as
// ResponseArrived or FetchFailed carrying Seq.
type IssueQuery struct {
	Seq    uint64
	Filter string
}

// ReportFailure surfaces a failed query. The previous results stay visible.
type ReportFailure struct {
	Seq    uint64
	Filter string
	Err    error
}

func (StartTimer) isEffect()    {}
func (StopTimer) isEffect()     {}
func (IssueQuery) isEffect()    {}
func (ReportFailure) isEffect() {}

// Model is the complete search state. The zero value is not ready; use NewModel.
type Model struct {
	State   State
	Filter  string
	Results []model.Course
	Delay   time.Duration

	timerGen uint64 // generation of the running (or last) debounce timer
	issued   uint64 // sequence number of the last issued query
	awaiting uint64 // sequence number whose response will be applied; 0 = none
	shown    uint64 // sequence number whose response is in Results; 0 = none
	settled  State  // state to fall back to when a query fails
}

// NewModel returns an Idle model that debounces input by delay.
func NewModel(delay time.Duration) Model {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return Model{State: Idle, Delay: delay, settled: Idle}
}

// Awaiting returns the sequence number of the in-flight query that will be applied,
// or 0 if no response is awaited.
func (m Model) Awaiting() uint64 { return m.awaiting }

// Shown returns the sequence number of the query whose response is in Results,
// or 0 after a Clear or before the first response.
func (m Model) Shown() uint64 { return m.shown }

// Issued returns the sequence number of the most recently issued query.
func (m Model) Issued() uint64 { return m.issued }

// Step applies ev to m. Events that do not apply in the current state (a stale timer,
// a response nobody awaits) return m unchanged and no effects.
func Step(m Model, ev Event) (Model, []Effect) {
	switch ev := ev.(type) {
	case FilterChanged:
		return m.debounce(ev.Text)

	case CategorySelected:
		return m.debounce(ev.Category)

	case Refresh:
		m.timerGen++
		next, issue := m.issue()
		return next, []Effect{StopTimer{}, issue}

	case Cleared:
		m.timerGen++
		m.awaiting = 0
		m.shown = 0
		m.Filter = ""
		m.Results = nil
		m.State = Idle
		m.settled = Idle
		return m, []Effect{StopTimer{}}

	case TimerFired:
		if m.State != PendingDebounce || ev.Gen != m.timerGen {
			return m, nil
		}
		next, issue := m.issue()
		return next, []Effect{issue}

	case ResponseArrived:
		if m.awaiting == 0 || ev.Seq != m.awaiting {
			return m, nil
		}
		m.awaiting = 0
		m.shown = ev.Seq
		m.Results = slices.Clone(ev.Courses)
		if len(m.Results) == 0 {
			m.State = SettledEmpty
		} else {
			m.State = SettledOk
		}
		m.settled = m.State
		return m, nil

	case FetchFailed:
		if m.awaiting == 0 || ev.Seq != m.awaiting {
			return m, nil
		}
		m.awaiting = 0
		m.State = m.settled
		return m, []Effect{ReportFailure{Seq: ev.Seq, Filter: m.Filter, Err: ev.Err}}
	}

	return m, nil
}

// debounce records a new filter and restarts the timer. Any in-flight query
// stops being awaited.
func (m Model) debounce(filter string) (Model, []Effect) {
	m.Filter = filter
	m.State = PendingDebounce
	m.awaiting = 0
	m.timerGen++
	return m, []Effect{StartTimer{Gen: m.timerGen, Delay: m.Delay}}
}

func (m Model) issue() (Model, IssueQuery) {
	m.issued++
	m.awaiting = m.issued
	m.State = Fetching
	return m, IssueQuery{Seq: m.issued, Filter: m.Filter}
}
