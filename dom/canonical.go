// Package dom wraps golang.org/x/net/html to provide the deterministic,
// attribute-insensitive subtree representation the boilerplate detector
// hashes pages against, plus the handful of tree operations (iteration,
// removal, serialization) the rest of the module needs.
//
// The HTML parser itself is treated as a black box: Parse is a thin,
// tolerant wrapper around html.Parse, and every other function here
// operates on the *html.Node tree it returns.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Signature is a deterministic, attribute-insensitive fingerprint of a DOM
// subtree. Two subtrees that differ only in attribute values produce equal
// signatures; any difference in tag names, child order, child count, or
// visible text produces different ones.
//
// The canonical string is retained directly rather than hashed down to a
// fixed width: candidate sets in this domain rarely grow past a few
// thousand entries per process, and keeping the readable form makes
// mismatches easy to diagnose by eye. Implementations that need a smaller
// memory footprint can wrap Signature in their own hash at the call site
// without changing the algorithm below.
type Signature string

// Delimiter bytes used by CanonicalString. They are control characters
// (0x01-0x05) that ordinary tag names and page text do not contain. The
// tokenizer does pass such bytes through when a page has them, so tag
// names and text are written through escapeContent, which turns each of
// 0x01-0x06 into the escape byte 0x06 plus a letter; a canonical string
// therefore never collides between a structural marker and page content.
const (
	openMarker  = '\x01'
	afterOpen   = '\x02'
	closeMarker = '\x03'
	textMarker  = '\x04'
	afterText   = '\x05'
)

var escapeContent = strings.NewReplacer(
	"\x01", "\x06a", "\x02", "\x06b", "\x03", "\x06c",
	"\x04", "\x06d", "\x05", "\x06e", "\x06", "\x06f",
)

// CanonicalString computes the canonical, attribute-insensitive
// serialization of the subtree rooted at n. It is a recursive pre-order
// walk: each element emits an open marker carrying the tag name, then the
// canonical strings of its children in document order, then a close
// marker; each non-empty text node emits its whitespace-collapsed,
// trimmed content. Attributes, comments, and processing instructions are
// never emitted.
func CanonicalString(n *html.Node) Signature {
	var buf strings.Builder
	writeCanonical(&buf, n)
	return Signature(buf.String())
}

func writeCanonical(buf *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		buf.WriteByte(openMarker)
		escapeContent.WriteString(buf, n.Data)
		buf.WriteByte(afterOpen)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeCanonical(buf, c)
		}
		buf.WriteByte(closeMarker)
	case html.TextNode:
		text := collapseWhitespace(n.Data)
		if text == "" {
			return
		}
		buf.WriteByte(textMarker)
		escapeContent.WriteString(buf, text)
		buf.WriteByte(afterText)
	default:
		// Comments, doctypes, and processing instructions carry no
		// structural or visible-text information; they are omitted.
	}
}

// collapseWhitespace trims leading/trailing whitespace and collapses any
// interior run of whitespace to a single space.
func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Serialize renders root back to HTML.
func Serialize(root *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("serialize node: %w", err)
	}
	return buf.String(), nil
}

// Text returns the concatenation of root's visible text, with whitespace
// runs collapsed to single spaces and block-level boundaries preserved as
// newlines.
func Text(root *html.Node) string {
	var buf strings.Builder
	writeText(&buf, root)
	return collapseBlankLines(buf.String())
}

// blockLevelTags is the set of elements after which a paragraph boundary
// (newline) is inserted in extracted text, so that e.g. two adjacent <p>
// elements don't run their text together.
var blockLevelTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"header": true, "footer": true, "nav": true, "aside": true,
	"li": true, "tr": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "br": true, "hr": true,
	"blockquote": true, "pre": true, "table": true, "ul": true, "ol": true,
}

// nonVisibleTags holds elements whose text-node children are source code,
// not visible page content: script and style bodies arrive from the
// parser as plain TextNodes like any other, so they must be skipped
// explicitly or they'd leak into extracted text.
var nonVisibleTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
}

func writeText(buf *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		if nonVisibleTags[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(buf, c)
		}
		if blockLevelTags[n.Data] {
			buf.WriteByte('\n')
		}
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(buf, c)
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		collapsed := collapseWhitespace(line)
		if collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return strings.Join(out, "\n")
}

// Parse parses raw HTML into a DOM tree. It is tolerant of malformed
// markup the way real-world crawl output tends to be: html.Parse never
// fails on ill-formed-but-non-empty input, it just does its best. Parse
// only returns an error for a reader that yields nothing at all or that
// fails while being read.
func Parse(r io.Reader) (*html.Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("parse html: empty document")
	}
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if doc == nil || doc.FirstChild == nil {
		return nil, fmt.Errorf("parse html: empty document")
	}
	return doc, nil
}

// Remove detaches n from its parent. It is idempotent: removing an
// already-detached node (or a nil node) is a no-op.
func Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}
