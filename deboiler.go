// Package deboiler discovers recurring structural fragments — navigation
// bars, headers, footers, sidebars, cookie banners — shared across the
// pages of a single crawled domain, and removes them.
//
// Usage is a two-phase fit/transform cycle, the way a scikit-learn style
// estimator works: Fit scans the domain once and accumulates a set of
// boilerplate signatures; Transform then strips any subtree matching one
// of those signatures from each page and yields the cleaned result.
package deboiler

import (
	"io"
	"log/slog"

	"github.com/globality-corp/deboiler/dom"
	"github.com/globality-corp/deboiler/progress"
	"golang.org/x/net/html"
)

// Mode selects how Deboiler trades memory for speed.
type Mode int

const (
	// ModeMemory re-parses every page from scratch in both Fit and
	// Transform, never holding more than a couple of parsed DOMs at
	// once. It supports any number of workers.
	ModeMemory Mode = iota

	// ModePerformance parses each page once during Fit and caches the
	// DOM for reuse during Transform. It requires exactly one worker:
	// cached DOMs are not cheaply shareable across goroutines running
	// independent chunks, so the harness refuses to fan this mode out.
	ModePerformance
)

func (m Mode) String() string {
	switch m {
	case ModeMemory:
		return "memory"
	case ModePerformance:
		return "performance"
	default:
		return "unknown"
	}
}

// CleanedPage is the output of Transform: a page with its boilerplate
// subtrees removed.
type CleanedPage struct {
	URL         string
	CleanedHTML string
	CleanedText string
}

// Config configures a Deboiler instance.
type Config struct {
	// NProcesses is the number of concurrent workers used in ModeMemory.
	// Must be <= 1 in ModePerformance; New rejects larger values.
	NProcesses int

	// OperationMode selects the memory/performance tradeoff.
	OperationMode Mode

	// Domain is a label used only for diagnostics (log lines); it plays
	// no role in the algorithm.
	Domain string

	// IoUMax is the near-duplicate safeguard threshold. Page pairs whose
	// candidate-signature IoU exceeds IoUMax are discarded rather than
	// contributing to the boilerplate set. Defaults to 0.9.
	IoUMax float64

	// CandidateTags is the allow-list of element tags eligible to be
	// boilerplate. Defaults to dom.DefaultCandidateTags.
	CandidateTags []string

	// Logger receives diagnostic output for skipped pages and dataset
	// records. Defaults to a discard logger.
	Logger *slog.Logger

	// Progress, if set, receives live fit/transform progress events.
	Progress *progress.Feed
}

func (c Config) withDefaults() Config {
	if c.IoUMax == 0 {
		c.IoUMax = 0.9
	}
	if len(c.CandidateTags) == 0 {
		c.CandidateTags = dom.DefaultCandidateTags
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.NProcesses < 1 {
		c.NProcesses = 1
	}
	return c
}

// Deboiler discovers and removes boilerplate across the pages of a
// single domain.
type Deboiler struct {
	cfg  Config
	tags map[string]bool

	fitted      bool
	boilerplate map[dom.Signature]struct{}

	// cache holds parsed DOMs keyed by URL, populated only in
	// ModePerformance during Fit and consumed read-only by Transform.
	cache map[string]*pageRepresentation
}

// pageRepresentation is a page's candidate signatures plus, in
// ModePerformance only, its parsed DOM.
type pageRepresentation struct {
	url        string
	signatures map[dom.Signature]struct{}
	parsedDOM  *html.Node
}

// New constructs a Deboiler. It returns a *PreconditionError if cfg
// requests ModePerformance with more than one worker, since performance
// mode's cached DOMs are not cheaply shareable across chunk-parallel
// goroutines.
func New(cfg Config) (*Deboiler, error) {
	cfg = cfg.withDefaults()

	if cfg.OperationMode == ModePerformance && cfg.NProcesses > 1 {
		return nil, &PreconditionError{Msg: "performance mode does not support more than one worker"}
	}

	return &Deboiler{
		cfg:  cfg,
		tags: dom.TagSet(cfg.CandidateTags),
	}, nil
}

// Boilerplate returns the frozen set of boilerplate signatures discovered
// by Fit. It is empty until Fit has run.
func (d *Deboiler) Boilerplate() map[dom.Signature]struct{} {
	out := make(map[dom.Signature]struct{}, len(d.boilerplate))
	for s := range d.boilerplate {
		out[s] = struct{}{}
	}
	return out
}

// requireFitted is a small helper shared by Transform-adjacent code.
func (d *Deboiler) requireFitted() error {
	if !d.fitted {
		return &PreconditionError{Msg: "transform called before fit"}
	}
	return nil
}
