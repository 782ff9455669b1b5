package dom

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// DefaultCandidateTags is the fixed allow-list of element tags eligible
// to be considered boilerplate.
var DefaultCandidateTags = []string{
	"div", "nav", "navigation", "footer", "header",
	"aside", "section", "form", "ul", "ol",
}

// TagSet builds a lookup set from a list of tag names, lower-cased.
func TagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	return set
}

// IterSubtrees walks the tree rooted at root in document order and yields
// every descendant element node whose tag is in tags, paired with its
// canonical signature. Nested candidates are all yielded independently;
// the caller decides how to treat overlap (see the cleaner in the root
// package, which relies on top-down removal making nested candidates
// moot).
func IterSubtrees(root *html.Node, tags map[string]bool) iter.Seq2[*html.Node, Signature] {
	return func(yield func(*html.Node, Signature) bool) {
		var walk func(n *html.Node) bool
		walk = func(n *html.Node) bool {
			if n.Type == html.ElementNode && tags[n.Data] {
				if !yield(n, CanonicalString(n)) {
					return false
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

// CandidateSignatures collects the set of candidate subtree signatures
// present anywhere in root.
func CandidateSignatures(root *html.Node, tags map[string]bool) map[Signature]struct{} {
	sigs := make(map[Signature]struct{})
	for _, sig := range IterSubtrees(root, tags) {
		sigs[sig] = struct{}{}
	}
	return sigs
}
