package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/aerissecure/drilldown"
	"github.com/aerissecure/drilldown/grid"
)

// Policy decides what RenderBook does when a page fails.
type Policy int

const (
	// FailFast stops at the first failing page and returns its error.
	FailFast Policy = iota
	// SkipAndReport logs the failure, records it in the Report and moves
	// on to the next page.
	SkipAndReport
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SkipAndReport:
		return "skip-and-report"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// PageError is the failure of one page.
type PageError struct {
	Page string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("render page %q: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Report summarizes a session.
type Report struct {
	Rendered []string     // pages fully written, in book order
	Failed   []*PageError // pages that failed, in book order
}

// Err joins the page failures, or returns nil.
func (r Report) Err() error {
	errs := make([]error, len(r.Failed))
	for i, pe := range r.Failed {
		errs[i] = pe
	}
	return errors.Join(errs...)
}

// RenderBook renders book with a Renderer built from opts.
func RenderBook(ctx context.Context, book *drilldown.Book, sink grid.Sink, opts ...Option) (Report, error) {
	return New(opts...).RenderBook(ctx, book, sink)
}

// RenderBook renders every page of book into sink and closes sink exactly
// once, on every return path.
//
// Each page is checked against the book before rendering (unique name,
// known parent and navbar targets). Under FailFast the first failure is
// returned as a *PageError; sheets written before it remain in the output.
// Under SkipAndReport failures are only recorded in the Report. A canceled
// ctx stops the session between pages and returns ctx.Err().
//
// With parallelism above 1, pages are rendered concurrently into private
// recorders that are then replayed into sink in book order, so sink never
// sees concurrent calls.
func (r *Renderer) RenderBook(ctx context.Context, book *drilldown.Book, sink grid.Sink) (rep Report, err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			r.log.Error("failed to finalize output", "error", cerr)
			err = errors.Join(err, fmt.Errorf("finalize: %w", cerr))
		}
	}()
	r.log.Info("rendering book",
		"pages", len(book.Pages),
		"policy", r.policy.String(),
		"parallelism", r.parallelism)

	if r.parallelism > 1 {
		err = r.renderParallel(ctx, book, sink, &rep)
	} else {
		err = r.renderSequential(ctx, book, sink, &rep)
	}
	if err == nil {
		r.log.Info("rendered book", "rendered", len(rep.Rendered), "failed", len(rep.Failed))
	}
	return rep, err
}

func (r *Renderer) renderSequential(ctx context.Context, book *drilldown.Book, sink grid.Sink, rep *Report) error {
	for i, page := range book.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.settle(rep, page.Name, r.renderChecked(book, i, sink)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderParallel(ctx context.Context, book *drilldown.Book, sink grid.Sink, rep *Report) error {
	recs := make([]*grid.Recorder, len(book.Pages))
	errs := make([]error, len(book.Pages))

	p := pool.New().WithMaxGoroutines(r.parallelism)
	for i := range book.Pages {
		i := i
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			rec := grid.NewRecorder()
			errs[i] = r.renderChecked(book, i, rec)
			recs[i] = rec
		})
	}
	p.Wait()

	for i, page := range book.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		perr := errs[i]
		if perr == nil {
			perr = recs[i].Replay(sink)
		}
		if err := r.settle(rep, page.Name, perr); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderChecked(book *drilldown.Book, i int, sink grid.Sink) error {
	if err := book.Check(i); err != nil {
		return err
	}
	return r.RenderPage(book.Pages[i], sink)
}

// settle applies the policy to the outcome of one page. It returns an
// error only when the session must stop.
func (r *Renderer) settle(rep *Report, page string, err error) error {
	if err == nil {
		rep.Rendered = append(rep.Rendered, page)
		return nil
	}
	pe := &PageError{Page: page, Err: err}
	rep.Failed = append(rep.Failed, pe)
	if r.policy == FailFast {
		return pe
	}
	r.log.Error("skipped page", "page", page, "error", err)
	return nil
}
