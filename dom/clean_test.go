package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoveMatching_RemovesExactSignatureMatches(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><nav>Home</nav><div>content</div></body></html>`))
	require.NoError(t, err)

	tags := TagSet(DefaultCandidateTags)
	nav := findFirst(root, "nav")
	require.NotNil(t, nav)
	boilerplate := map[Signature]struct{}{CanonicalString(nav): {}}

	removed := RemoveMatching(root, tags, boilerplate)
	require.Equal(t, 1, removed)
	require.Nil(t, findFirst(root, "nav"))
	require.NotNil(t, findFirst(root, "div"))
}

func TestRemoveMatching_NestedCandidatesCollapseIntoOneRemoval(t *testing.T) {
	root, err := Parse(strings.NewReader(`
		<html><body>
			<header><nav>Home</nav></header>
			<div>content</div>
		</body></html>
	`))
	require.NoError(t, err)

	tags := TagSet(DefaultCandidateTags)
	header := findFirst(root, "header")
	nav := findFirst(root, "nav")
	require.NotNil(t, header)
	require.NotNil(t, nav)

	boilerplate := map[Signature]struct{}{
		CanonicalString(header): {},
		CanonicalString(nav):    {},
	}

	removed := RemoveMatching(root, tags, boilerplate)
	require.Equal(t, 1, removed, "removing the header must not also count its nested nav")
	require.Nil(t, findFirst(root, "header"))
	require.Nil(t, findFirst(root, "nav"))
}

func TestRemoveMatching_LeavesNonMatchingSubtreesInPlace(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><nav>Home</nav><div>content</div></body></html>`))
	require.NoError(t, err)

	removed := RemoveMatching(root, TagSet(DefaultCandidateTags), map[Signature]struct{}{})
	require.Equal(t, 0, removed)
	require.NotNil(t, findFirst(root, "nav"))
	require.NotNil(t, findFirst(root, "div"))
}

func TestRemoveMatching_IsIdempotentOnAlreadyCleanedTree(t *testing.T) {
	root, err := Parse(strings.NewReader(`<html><body><nav>Home</nav><div>content</div></body></html>`))
	require.NoError(t, err)

	tags := TagSet(DefaultCandidateTags)
	nav := findFirst(root, "nav")
	boilerplate := map[Signature]struct{}{CanonicalString(nav): {}}

	first := RemoveMatching(root, tags, boilerplate)
	second := RemoveMatching(root, tags, boilerplate)
	require.Equal(t, 1, first)
	require.Equal(t, 0, second)
}
