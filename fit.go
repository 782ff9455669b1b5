package deboiler

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/globality-corp/deboiler/dataset"
	"github.com/globality-corp/deboiler/dom"
	"github.com/globality-corp/deboiler/progress"
	"github.com/globality-corp/deboiler/workerpool"
)

// Fit discovers the domain's boilerplate signatures. It sorts the
// dataset's URLs lexicographically, compares every adjacent pair, and
// unions whatever signatures the pair comparator returns (subject to the
// IoU safeguard) into the frozen Boilerplate set.
//
// A dataset of zero or one page produces an empty boilerplate set; Fit
// never fails on a degenerate dataset. Given the same dataset contents,
// Fit produces the same result regardless of NProcesses, because
// signature union is commutative and each worker owns a disjoint set of
// adjacent pairs (see workerpool.Chunk.AdjacentPairs).
func (d *Deboiler) Fit(ctx context.Context, ds dataset.Dataset) error {
	urls := append([]string(nil), ds.URLs()...)
	sort.Strings(urls)

	index := buildURLIndex(ds)

	boilerplate := make(map[dom.Signature]struct{})

	if d.cfg.OperationMode == ModePerformance {
		d.cache = make(map[string]*pageRepresentation, len(urls))
	}

	report := func(processed int) {
		if d.cfg.Progress != nil {
			d.cfg.Progress.Report(progress.PhaseFit, processed, len(urls), len(boilerplate))
		}
	}
	report(0)

	if d.cfg.NProcesses <= 1 || len(urls) == 0 {
		processed := 0
		var prev *pageRepresentation
		for _, url := range urls {
			cur, err := d.buildPageRepresentation(ds, index, url)
			if err != nil {
				return &WorkerError{Err: err}
			}
			if prev != nil {
				for sig := range sharedSignatures(prev, cur, d.cfg.IoUMax) {
					boilerplate[sig] = struct{}{}
				}
			}
			prev = cur // slide the 2-wide window
			processed++
			report(processed)
		}
	} else {
		chunks := workerpool.Chunks(len(urls), d.cfg.NProcesses)

		type job struct {
			urls  []string
			pairs [][2]int
		}

		jobs := make([]workerpool.Job[job], len(chunks))
		for i, c := range chunks {
			jobs[i] = workerpool.Job[job]{
				Index: i,
				Payload: job{
					urls:  urls,
					pairs: c.AdjacentPairs(len(urls)),
				},
			}
		}

		pool := workerpool.New[job, map[dom.Signature]struct{}](d.cfg.NProcesses)
		results, err := pool.Run(ctx, jobs, func(ctx context.Context, payload job) (map[dom.Signature]struct{}, error) {
			local := make(map[dom.Signature]struct{})
			reps := make(map[int]*pageRepresentation)

			get := func(i int) (*pageRepresentation, error) {
				if rep, ok := reps[i]; ok {
					return rep, nil
				}
				rep, err := d.buildPageRepresentation(ds, index, payload.urls[i])
				if err != nil {
					return nil, err
				}
				reps[i] = rep
				return rep, nil
			}

			for _, pair := range payload.pairs {
				a, err := get(pair[0])
				if err != nil {
					return nil, err
				}
				b, err := get(pair[1])
				if err != nil {
					return nil, err
				}
				for sig := range sharedSignatures(a, b, d.cfg.IoUMax) {
					local[sig] = struct{}{}
				}
			}
			return local, nil
		})
		if err != nil {
			return &WorkerError{Err: err}
		}

		for _, r := range results {
			for sig := range r.Value {
				boilerplate[sig] = struct{}{}
			}
		}
		report(len(urls))
	}

	d.boilerplate = boilerplate
	d.fitted = true

	if d.cfg.OperationMode != ModePerformance {
		d.cache = nil // nothing to retain in memory mode
	}

	return nil
}

// urlIndex maps a URL back to its record index in the dataset, so that
// Fit (which works in sorted order) can still call ds.Get with the
// dataset's own indices.
type urlIndex map[string]int

func buildURLIndex(ds dataset.Dataset) urlIndex {
	idx := make(urlIndex, ds.Len())
	for i, url := range ds.URLs() {
		idx[url] = i
	}
	return idx
}

// buildPageRepresentation parses (or, in performance mode, re-uses) the
// page at url and computes its candidate signature set.
func (d *Deboiler) buildPageRepresentation(ds dataset.Dataset, index urlIndex, url string) (*pageRepresentation, error) {
	if d.cfg.OperationMode == ModePerformance {
		if cached, ok := d.cache[url]; ok {
			return cached, nil
		}
	}

	i, ok := index[url]
	if !ok {
		return nil, fmt.Errorf("url %q not found in dataset", url)
	}

	_, raw, err := ds.Get(i)
	if err != nil {
		d.cfg.Logger.Warn("skip dataset record", "url", url, "error", err)
		return &pageRepresentation{url: url, signatures: map[dom.Signature]struct{}{}}, nil
	}

	root, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		d.cfg.Logger.Warn("skip unparseable page", "url", url, "error", err)
		return &pageRepresentation{url: url, signatures: map[dom.Signature]struct{}{}}, nil
	}

	rep := &pageRepresentation{
		url:        url,
		signatures: dom.CandidateSignatures(root, d.tags),
	}
	if d.cfg.OperationMode == ModePerformance {
		rep.parsedDOM = root
		d.cache[url] = rep
	}
	return rep, nil
}

// sharedSignatures implements the pair comparator (C4): the intersection
// of two pages' candidate signatures, discarded entirely if the pages are
// near-duplicates (IoU strictly greater than iouMax).
func sharedSignatures(a, b *pageRepresentation, iouMax float64) map[dom.Signature]struct{} {
	if len(a.signatures) == 0 || len(b.signatures) == 0 {
		return map[dom.Signature]struct{}{}
	}

	shared := make(map[dom.Signature]struct{})
	for sig := range a.signatures {
		if _, ok := b.signatures[sig]; ok {
			shared[sig] = struct{}{}
		}
	}

	unionSize := len(a.signatures) + len(b.signatures) - len(shared)
	if unionSize == 0 {
		return map[dom.Signature]struct{}{}
	}

	iou := float64(len(shared)) / float64(unionSize)
	if iou > iouMax {
		return map[dom.Signature]struct{}{}
	}

	return shared
}
