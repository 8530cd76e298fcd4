package render

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aerissecure/drilldown"
	"github.com/aerissecure/drilldown/grid"
)

func book(pages ...*drilldown.Page) *drilldown.Book {
	b := &drilldown.Book{}
	b.Add(pages...)
	return b
}

func sheets(rec *grid.Recorder) []string {
	var out []string
	for _, op := range rec.Filter(grid.OpAddSheet) {
		out = append(out, op.Sheet)
	}
	return out
}

func TestSkipAndReport(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	rec := grid.NewRecorder()

	rep, err := RenderBook(context.Background(), book(flatPage("one", "a", "b"), brokenPage("two")), rec,
		WithPolicy(SkipAndReport), WithLogger(logger))
	if err != nil {
		t.Fatalf("RenderBook: %v", err)
	}
	if rec.Closes() != 1 {
		t.Errorf("Close called %d times, want 1", rec.Closes())
	}
	if diff := cmp.Diff([]string{"one"}, rep.Rendered); diff != "" {
		t.Errorf("Rendered (-want +got):\n%s", diff)
	}
	if len(rep.Failed) != 1 || rep.Failed[0].Page != "two" {
		t.Fatalf("Failed = %v, want page two", rep.Failed)
	}
	if !errors.Is(rep.Failed[0], drilldown.ErrIndexArity) {
		t.Errorf("failure = %v, want ErrIndexArity", rep.Failed[0])
	}
	if !errors.Is(rep.Err(), drilldown.ErrIndexArity) {
		t.Errorf("Report.Err = %v", rep.Err())
	}
	if diff := cmp.Diff([]string{"one"}, sheets(rec)); diff != "" {
		t.Errorf("sheets (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "skipped page") || !strings.Contains(logs.String(), "page=two") {
		t.Errorf("skip not logged:\n%s", logs.String())
	}
}

func TestFailFast(t *testing.T) {
	rec := grid.NewRecorder()
	rep, err := RenderBook(context.Background(), book(flatPage("one", "a"), brokenPage("bad"), flatPage("three", "c")), rec)

	var pe *PageError
	if !errors.As(err, &pe) || pe.Page != "bad" {
		t.Fatalf("err = %v, want *PageError for bad", err)
	}
	if !drilldown.IsStructural(err) {
		t.Errorf("err = %v, want structural", err)
	}
	if rec.Closes() != 1 {
		t.Errorf("Close called %d times, want 1", rec.Closes())
	}
	if diff := cmp.Diff([]string{"one"}, rep.Rendered); diff != "" {
		t.Errorf("Rendered (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"one"}, sheets(rec)); diff != "" {
		t.Errorf("sheets (-want +got):\n%s", diff)
	}
}

func TestBookStructuralErrors(t *testing.T) {
	orphan := flatPage("orphan", "a")
	orphan.Parent = "missing"
	lost := flatPage("lost", "a")
	lost.SetNavbar(&drilldown.Navbar{Links: []string{"nowhere"}})

	tests := []struct {
		name string
		book *drilldown.Book
		want error
	}{
		{"duplicate", book(flatPage("a", "x"), flatPage("a", "y")), drilldown.ErrDuplicatePage},
		{"unknown parent", book(orphan), drilldown.ErrUnknownParent},
		{"unknown navbar link", book(lost), drilldown.ErrUnknownPage},
		{"no table", book(&drilldown.Page{Name: "empty"}), drilldown.ErrNoTable},
		{"no name", book(flatPage("", "x")), drilldown.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := grid.NewRecorder()
			_, err := RenderBook(context.Background(), tt.book, rec)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if rec.Closes() != 1 {
				t.Errorf("Close called %d times, want 1", rec.Closes())
			}
		})
	}
}

func TestParentPageMayFollowChild(t *testing.T) {
	child := flatPage("child", "a")
	child.Parent = "root"
	rec := grid.NewRecorder()
	rep, err := RenderBook(context.Background(), book(child, flatPage("root", "b")), rec)
	if err != nil {
		t.Fatalf("RenderBook: %v", err)
	}
	if diff := cmp.Diff([]string{"child", "root"}, rep.Rendered); diff != "" {
		t.Errorf("Rendered (-want +got):\n%s", diff)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	newBook := func() *drilldown.Book {
		b := book()
		for _, name := range []string{"p1", "p2", "p3", "p4", "p5"} {
			p := flatPage(name, "a", "a", "b", "c", "c")
			p.Table.GroupLevel = 0
			if name != "p1" {
				p.Parent = "p1"
			}
			b.Add(p)
		}
		b.Add(brokenPage("p6"))
		return b
	}

	seq := grid.NewRecorder()
	seqRep, err := RenderBook(context.Background(), newBook(), seq, WithPolicy(SkipAndReport))
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par := grid.NewRecorder()
	parRep, err := RenderBook(context.Background(), newBook(), par, WithPolicy(SkipAndReport), WithParallelism(3))
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if diff := cmp.Diff(seq.Ops(), par.Ops()); diff != "" {
		t.Errorf("ops differ (-sequential +parallel):\n%s", diff)
	}
	if diff := cmp.Diff(seqRep.Rendered, parRep.Rendered); diff != "" {
		t.Errorf("rendered differ (-sequential +parallel):\n%s", diff)
	}
	if len(parRep.Failed) != 1 || parRep.Failed[0].Page != "p6" {
		t.Errorf("parallel Failed = %v", parRep.Failed)
	}
	if par.Closes() != 1 {
		t.Errorf("Close called %d times, want 1", par.Closes())
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, n := range []int{1, 4} {
		rec := grid.NewRecorder()
		_, err := RenderBook(ctx, book(flatPage("one", "a")), rec, WithParallelism(n))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("parallelism %d: err = %v, want context.Canceled", n, err)
		}
		if rec.Closes() != 1 {
			t.Errorf("parallelism %d: Close called %d times, want 1", n, rec.Closes())
		}
		if len(rec.Ops()) != 0 {
			t.Errorf("parallelism %d: got ops after cancel: %v", n, rec.Ops())
		}
	}
}

var errFinalize = errors.New("cannot flush")

type closeFailSink struct {
	*grid.Recorder
}

func (s closeFailSink) Close() error {
	_ = s.Recorder.Close()
	return errFinalize
}

func TestFinalizeErrorIsReported(t *testing.T) {
	sink := closeFailSink{grid.NewRecorder()}
	rep, err := RenderBook(context.Background(), book(flatPage("one", "a")), sink)
	if !errors.Is(err, errFinalize) {
		t.Fatalf("err = %v, want finalize error", err)
	}
	if sink.Closes() != 1 {
		t.Errorf("Close called %d times, want 1", sink.Closes())
	}
	if diff := cmp.Diff([]string{"one"}, rep.Rendered); diff != "" {
		t.Errorf("Rendered (-want +got):\n%s", diff)
	}

	// Both the page failure and the finalize failure surface.
	sink = closeFailSink{grid.NewRecorder()}
	_, err = RenderBook(context.Background(), book(brokenPage("bad")), sink)
	if !errors.Is(err, errFinalize) || !errors.Is(err, drilldown.ErrIndexArity) {
		t.Errorf("err = %v, want both failures", err)
	}
}

func TestPolicyString(t *testing.T) {
	if FailFast.String() != "fail-fast" || SkipAndReport.String() != "skip-and-report" {
		t.Errorf("got %s and %s", FailFast, SkipAndReport)
	}
}
