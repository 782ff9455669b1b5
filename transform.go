package deboiler

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/globality-corp/deboiler/dataset"
	"github.com/globality-corp/deboiler/dom"
	"github.com/globality-corp/deboiler/progress"
	"github.com/globality-corp/deboiler/workerpool"
	"golang.org/x/net/html"
)

// Transform removes every boilerplate subtree from each page in ds and
// yields the cleaned result. It must be called after Fit. iter.Seq has no
// channel to carry an error back to the caller, so a violation of that
// precondition — or any other failure TransformAll would have returned —
// panics on the sequence's first pull, before any page is yielded, rather
// than silently producing an empty sequence. Callers that want the error
// as a normal return value should call TransformAll directly instead of
// ranging over Transform.
//
// Transform stops doing work as soon as the caller stops ranging (a yield
// returning false ends the loop without visiting later pages), but it is
// not lazy end to end: every page is cleaned by the underlying
// TransformAll call before the first one is yielded, since worker fan-out
// needs every chunk's result before it can reassemble pages in order. A
// caller that wants to bound the pages actually cleaned, not just the
// pages consumed, should slice ds down first.
//
// Iteration follows the dataset's natural order (ds.URLs()), not the
// sorted order Fit uses internally. Pages that fail to parse are not
// skipped: they are emitted with CleanedHTML holding a best-effort UTF-8
// decode of the raw input and an empty CleanedText, and the parse failure
// is logged as a warning — dropping the record would desynchronize any index-based
// pairing a caller does against the original dataset.
func (d *Deboiler) Transform(ctx context.Context, ds dataset.Dataset) iter.Seq[CleanedPage] {
	return func(yield func(CleanedPage) bool) {
		pages, err := d.TransformAll(ctx, ds)
		if err != nil {
			panic(err)
		}
		for _, p := range pages {
			if !yield(p) {
				return
			}
		}
	}
}

// TransformAll runs Transform to completion and returns every CleanedPage
// (or the first error encountered). It exists alongside the Transform
// iterator for callers who want eager error handling as a normal return
// value instead of a panic, and is what Transform itself delegates to
// under the hood so that order preservation and worker fan-out share one
// implementation.
func (d *Deboiler) TransformAll(ctx context.Context, ds dataset.Dataset) ([]CleanedPage, error) {
	if err := d.requireFitted(); err != nil {
		return nil, err
	}

	n := ds.Len()
	report := func(processed int) {
		if d.cfg.Progress != nil {
			d.cfg.Progress.Report(progress.PhaseTransform, processed, n, len(d.boilerplate))
		}
	}
	report(0)

	if d.cfg.NProcesses <= 1 || n == 0 {
		pages := make([]CleanedPage, n)
		for i := 0; i < n; i++ {
			p, err := d.cleanPage(ds, i)
			if err != nil {
				return nil, &WorkerError{Err: err}
			}
			pages[i] = p
			report(i + 1)
		}
		return pages, nil
	}

	chunks := workerpool.Chunks(n, d.cfg.NProcesses)
	jobs := make([]workerpool.Job[workerpool.Chunk], len(chunks))
	for i, c := range chunks {
		jobs[i] = workerpool.Job[workerpool.Chunk]{Index: i, Payload: c}
	}

	pool := workerpool.New[workerpool.Chunk, []CleanedPage](d.cfg.NProcesses)
	results, err := pool.Run(ctx, jobs, func(ctx context.Context, c workerpool.Chunk) ([]CleanedPage, error) {
		out := make([]CleanedPage, 0, c.Len())
		for i := c.Start; i < c.End; i++ {
			p, err := d.cleanPage(ds, i)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	})
	if err != nil {
		return nil, &WorkerError{Err: err}
	}

	pages := make([]CleanedPage, 0, n)
	for _, r := range results {
		pages = append(pages, r.Value...)
	}
	report(n)
	return pages, nil
}

// cleanPage builds (or reuses, in ModePerformance) the DOM for dataset
// record i, strips every subtree whose signature is in the boilerplate
// set, and renders the result.
func (d *Deboiler) cleanPage(ds dataset.Dataset, i int) (CleanedPage, error) {
	url, raw, err := ds.Get(i)
	if err != nil {
		d.cfg.Logger.Warn("skip dataset record", "index", i, "error", err)
		return CleanedPage{}, nil
	}

	var root *html.Node
	if d.cfg.OperationMode == ModePerformance {
		if cached, ok := d.cache[url]; ok && cached.parsedDOM != nil {
			root = cloneTree(cached.parsedDOM)
		}
	}
	if root == nil {
		root, err = dom.Parse(bytes.NewReader(raw))
		if err != nil {
			d.cfg.Logger.Warn("page failed to parse during transform", "url", url, "error", err)
			return CleanedPage{
				URL:         url,
				CleanedHTML: bestEffortUTF8(raw),
				CleanedText: "",
			}, nil
		}
	}

	dom.RemoveMatching(root, d.tags, d.boilerplate)

	htmlOut, err := dom.Serialize(root)
	if err != nil {
		return CleanedPage{}, fmt.Errorf("serialize %s: %w", url, err)
	}

	return CleanedPage{
		URL:         url,
		CleanedHTML: htmlOut,
		CleanedText: dom.Text(root),
	}, nil
}

// cloneTree deep-copies a DOM tree so that transform never mutates the
// cache Fit retained: performance mode promises transform runs against a
// clone, never the cached original, so that Transform stays restartable
// (the cache survives repeated calls even though cleaning removes nodes).
func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneTree(c))
	}
	return clone
}

// bestEffortUTF8 decodes raw as UTF-8, replacing invalid sequences, for
// the pages-that-fail-to-parse policy documented on Transform.
func bestEffortUTF8(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}
