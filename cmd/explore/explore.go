package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/sakif/course-marketplace/internal/apperror"
	"github.com/sakif/course-marketplace/internal/model"
	"github.com/sakif/course-marketplace/internal/paginate"
	"github.com/sakif/course-marketplace/internal/search"
)

// catalog is the part of the API client the commands use.
type catalog interface {
	SaveCourse(ctx context.Context, courseID string) error
	UnsaveCourse(ctx context.Context, courseID string) error
	SavedCourses(ctx context.Context) ([]model.SavedCourse, error)
	Statistics(ctx context.Context) ([]model.CourseStatistic, error)
}

// searcher is implemented by *search.Engine.
type searcher interface {
	Type(ctx context.Context, text string) error
	SelectCategory(ctx context.Context, category string) error
	Clear(ctx context.Context) error
	Refresh(ctx context.Context) error
	Snapshot() search.Snapshot
}

const helpText = `type any text to filter courses; commands:
  :cat <category>   filter by category
  :clear            reset the filter
  :refresh          search again now
  :page <n>         jump to page n
  :next / :prev     move one page
  :save <id>        bookmark a course
  :unsave <id>      remove a bookmark
  :saved            list bookmarks
  :stats            course statistics (admin)
  :quit`

// explorer renders search results one page at a time and runs the commands.
// onEvent runs on the engine's goroutine and handle on the input goroutine; mu
// serialises their output and the current page.
type explorer struct {
	api      catalog
	engine   searcher
	pageSize int

	mu   sync.Mutex
	out  io.Writer
	page int
}

func newExplorer(api catalog, out io.Writer, pageSize int) *explorer {
	return &explorer{api: api, out: out, pageSize: pageSize, page: 1}
}

// onEvent is the engine observer. A freshly applied result set resets to page 1.
func (x *explorer) onEvent(ev search.Event, snap search.Snapshot) {
	switch ev := ev.(type) {
	case search.ResponseArrived:
		if ev.Seq != snap.Shown {
			return
		}
		x.mu.Lock()
		defer x.mu.Unlock()
		x.page = 1
		x.render(snap)
	case search.Cleared:
		x.mu.Lock()
		defer x.mu.Unlock()
		x.page = 1
		fmt.Fprintln(x.out, "filter cleared")
	}
}

// handle runs one input line. It reports whether the user asked to quit.
func (x *explorer) handle(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		return false, x.engine.Type(ctx, line)
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "quit", "q":
		return true, nil
	case "help", "h":
		x.println(helpText)
	case "cat":
		if arg == "" {
			x.println("usage: :cat <category>")
			return false, nil
		}
		return false, x.engine.SelectCategory(ctx, arg)
	case "clear":
		return false, x.engine.Clear(ctx)
	case "refresh":
		return false, x.engine.Refresh(ctx)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			x.println("usage: :page <n>")
			return false, nil
		}
		x.goTo(func(int) int { return n })
	case "next":
		x.goTo(func(p int) int { return p + 1 })
	case "prev":
		x.goTo(func(p int) int { return p - 1 })
	case "save":
		x.save(ctx, arg)
	case "unsave":
		x.unsave(ctx, arg)
	case "saved":
		x.listSaved(ctx)
	case "stats":
		x.stats(ctx)
	default:
		x.println("unknown command :" + cmd + " (try :help)")
	}
	return false, nil
}

// goTo moves to the page move returns. Out-of-range pages fall back to page 1.
func (x *explorer) goTo(move func(current int) int) {
	snap := x.engine.Snapshot()

	x.mu.Lock()
	defer x.mu.Unlock()
	x.page = move(x.page)
	x.render(snap)
}

// render prints the current page of snap. Callers hold mu.
func (x *explorer) render(snap search.Snapshot) {
	switch snap.State {
	case search.Idle:
		fmt.Fprintln(x.out, "no search yet")
		return
	case search.SettledEmpty:
		fmt.Fprintf(x.out, "no courses match %q\n", snap.Filter)
		return
	}

	p := paginate.Slice(snap.Results, x.pageSize, x.page)
	x.page = p.Number

	if snap.Filter == "" {
		fmt.Fprintf(x.out, "all courses (%d)\n", p.TotalItems)
	} else {
		fmt.Fprintf(x.out, "courses matching %q (%d)\n", snap.Filter, p.TotalItems)
	}
	offset := (p.Number - 1) * p.Size
	for i, c := range p.Items {
		fmt.Fprintf(x.out, "  %d. %s [%s] %s  id=%s\n", offset+i+1, c.Title, c.Category, formatPrice(c.PriceCents), c.ID)
	}
	if p.TotalPages > 0 {
		fmt.Fprintf(x.out, "page %d of %d\n", p.Number, p.TotalPages)
	}
}

func (x *explorer) save(ctx context.Context, id string) {
	if id == "" {
		x.println("usage: :save <id>")
		return
	}
	err := x.api.SaveCourse(ctx, id)
	switch {
	case err == nil:
		x.println("saved " + id)
	case errors.Is(err, apperror.ErrConflict):
		x.println(id + " is already saved")
	case errors.Is(err, apperror.ErrNotFound):
		x.println("no such course " + id)
	default:
		x.println("save failed: " + err.Error())
	}
}

func (x *explorer) unsave(ctx context.Context, id string) {
	if id == "" {
		x.println("usage: :unsave <id>")
		return
	}
	err := x.api.UnsaveCourse(ctx, id)
	switch {
	case err == nil:
		x.println("removed " + id)
	case errors.Is(err, apperror.ErrNotFound):
		x.println(id + " was not saved")
	default:
		x.println("unsave failed: " + err.Error())
	}
}

func (x *explorer) listSaved(ctx context.Context) {
	saved, err := x.api.SavedCourses(ctx)
	if err != nil {
		x.println("listing saved courses failed: " + err.Error())
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if len(saved) == 0 {
		fmt.Fprintln(x.out, "no saved courses")
		return
	}
	for _, s := range saved {
		fmt.Fprintf(x.out, "  %s  id=%s\n", s.Course.Title, s.CourseID)
	}
}

func (x *explorer) stats(ctx context.Context) {
	stats, err := x.api.Statistics(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			x.println("statistics need an admin token")
			return
		}
		x.println("statistics failed: " + err.Error())
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	tw := tabwriter.NewWriter(x.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COURSE\tPURCHASES\tRATING\tPRICE")
	for _, s := range stats {
		rating := "-"
		if s.AverageRating != nil {
			rating = strconv.FormatFloat(*s.AverageRating, 'f', 2, 64)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Title, s.PurchaseCount, rating, formatPrice(s.PriceCents))
	}
	tw.Flush()
}

func (x *explorer) println(s string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fmt.Fprintln(x.out, s)
}

func formatPrice(cents int64) string {
	if cents == 0 {
		return "free"
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
