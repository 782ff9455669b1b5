package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagSet(t *testing.T) {
	set := TagSet([]string{"div", "nav"})
	require.True(t, set["div"])
	require.True(t, set["nav"])
	require.False(t, set["span"])
}

func TestIterSubtrees_YieldsEveryCandidateInDocumentOrder(t *testing.T) {
	root, err := Parse(strings.NewReader(`
		<html><body>
			<nav>top nav</nav>
			<div><p>content</p></div>
			<footer><nav>footer nav</nav></footer>
		</body></html>
	`))
	require.NoError(t, err)

	tags := TagSet(DefaultCandidateTags)

	var seen []string
	for n := range IterSubtrees(root, tags) {
		seen = append(seen, n.Data)
	}

	// footer contains a nested nav: both are yielded independently,
	// nesting collapse is the cleaner's job, not the iterator's.
	require.Equal(t, []string{"nav", "div", "footer", "nav"}, seen)
}

func TestCandidateSignatures_DeduplicatesIdenticalSubtrees(t *testing.T) {
	root, err := Parse(strings.NewReader(`
		<html><body>
			<nav id="a"><a href="/">Home</a></nav>
			<div><p>unique content</p></div>
			<nav id="b"><a href="/">Home</a></nav>
		</body></html>
	`))
	require.NoError(t, err)

	sigs := CandidateSignatures(root, TagSet(DefaultCandidateTags))

	// the two <nav> subtrees are attribute-only variants of each other and
	// collapse to one signature; the <div> is a second, distinct one.
	require.Len(t, sigs, 2)
}

func TestIterSubtrees_IgnoresTagsNotInAllowList(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><span>not a candidate</span></body></html>`))
	require.NoError(t, err)

	count := 0
	for range IterSubtrees(root, TagSet(DefaultCandidateTags)) {
		count++
	}
	require.Equal(t, 0, count)
}
