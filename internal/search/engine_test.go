package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/course-marketplace/internal/model"
)

const waitTimeout = 2 * time.Second

type reply struct {
	courses []model.Course
	err     error
}

type fetchCall struct {
	query string
	reply chan reply
}

// fakeFetcher hands every query to the test, which answers it whenever it wants.
// This lets a test deliver responses in any order.
type fakeFetcher struct {
	calls chan fetchCall
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(chan fetchCall, 16)}
}

func (f *fakeFetcher) SearchCourses(ctx context.Context, query string) ([]model.Course, error) {
	call := fetchCall{query: query, reply: make(chan reply, 1)}
	select {
	case f.calls <- call:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-call.reply:
		return r.courses, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFetcher) next(t *testing.T) fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a query")
		return fetchCall{}
	}
}

func (f *fakeFetcher) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected query %q", c.query)
	case <-time.After(50 * time.Millisecond):
	}
}

type observed struct {
	ev   Event
	snap Snapshot
}

type harness struct {
	engine  *Engine
	clock   *clock.Mock
	fetcher *fakeFetcher
	events  chan observed
	cancel  context.CancelFunc
	stopped chan error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:   clock.NewMock(),
		fetcher: newFakeFetcher(),
		events:  make(chan observed, 256),
		stopped: make(chan error, 1),
	}
	h.engine = New(h.fetcher,
		WithClock(h.clock),
		WithDebounce(DefaultDebounce),
		WithObserver(func(ev Event, s Snapshot) { h.events <- observed{ev, s} }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.stopped <- h.engine.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

// waitFor consumes observed events until match returns true.
func (h *harness) waitFor(t *testing.T, match func(Event, Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case o := <-h.events:
			if match(o.ev, o.snap) {
				return o.snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for engine event")
			return Snapshot{}
		}
	}
}

func isResponse(seq uint64) func(Event, Snapshot) bool {
	return func(ev Event, _ Snapshot) bool {
		r, ok := ev.(ResponseArrived)
		return ok && r.Seq == seq
	}
}

func TestEngine_DebounceCoalescing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, text := range []string{"g", "go", "gol", "gola"} {
		require.NoError(t, h.engine.Type(ctx, text))
		h.clock.Add(100 * time.Millisecond)
	}
	h.fetcher.none(t)
	assert.Equal(t, PendingDebounce, h.engine.Snapshot().State)

	h.clock.Add(DefaultDebounce)

	call := h.fetcher.next(t)
	assert.Equal(t, "gola", call.query)
	h.fetcher.none(t)

	call.reply <- reply{courses: courses("Golang")}
	snap := h.waitFor(t, isResponse(1))
	assert.Equal(t, SettledOk, snap.State)
	assert.Equal(t, courses("Golang"), h.engine.Snapshot().Results)
}

func TestEngine_StaleResponseSuppressed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.Type(ctx, "go"))
	h.clock.Add(DefaultDebounce)
	first := h.fetcher.next(t)

	require.NoError(t, h.engine.Type(ctx, "rust"))
	h.clock.Add(DefaultDebounce)
	second := h.fetcher.next(t)
	assert.Equal(t, "rust", second.query)

	// The newer query answers first, then the old one arrives late.
	second.reply <- reply{courses: courses("Rust")}
	h.waitFor(t, isResponse(2))
	first.reply <- reply{courses: courses("Go")}
	h.waitFor(t, isResponse(1))

	snap := h.engine.Snapshot()
	assert.Equal(t, SettledOk, snap.State)
	assert.Equal(t, "rust", snap.Filter)
	assert.Equal(t, courses("Rust"), snap.Results)
}

func TestEngine_EmptyResult(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Type(context.Background(), "cooking"))
	h.clock.Add(DefaultDebounce)
	h.fetcher.next(t).reply <- reply{courses: []model.Course{}}

	snap := h.waitFor(t, isResponse(1))
	assert.Equal(t, SettledEmpty, snap.State)
}

func TestEngine_FailureKeepsResults(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.Refresh(ctx))
	h.fetcher.next(t).reply <- reply{courses: courses("A", "B")}
	h.waitFor(t, isResponse(1))

	require.NoError(t, h.engine.Type(ctx, "b"))
	h.clock.Add(DefaultDebounce)
	h.fetcher.next(t).reply <- reply{err: errors.New("502 bad gateway")}

	snap := h.waitFor(t, func(ev Event, _ Snapshot) bool {
		_, ok := ev.(FetchFailed)
		return ok
	})
	assert.Equal(t, SettledOk, snap.State)
	assert.Equal(t, courses("A", "B"), snap.Results)
}

func TestEngine_ClearCancelsPendingTimer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.engine.Type(ctx, "go"))
	require.NoError(t, h.engine.Clear(ctx))
	h.clock.Add(2 * DefaultDebounce)

	h.fetcher.none(t)
	snap := h.engine.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Filter)
}

func TestEngine_CategorySelection(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.SelectCategory(context.Background(), "Design"))
	h.clock.Add(DefaultDebounce)

	assert.Equal(t, "Design", h.fetcher.next(t).query)
}

func TestEngine_Stopped(t *testing.T) {
	h := newHarness(t)
	h.cancel()

	select {
	case err := <-h.stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return after cancel")
	}

	assert.ErrorIs(t, h.engine.Type(context.Background(), "go"), ErrStopped)
}

func TestEngine_SnapshotIsACopy(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Refresh(context.Background()))
	h.fetcher.next(t).reply <- reply{courses: courses("A")}
	h.waitFor(t, isResponse(1))

	snap := h.engine.Snapshot()
	snap.Results[0].Title = "changed"
	assert.Equal(t, "A", h.engine.Snapshot().Results[0].Title)
}
