package dom

import "golang.org/x/net/html"

// RemoveMatching walks root top-down in document order and detaches every
// candidate subtree (tag in tags) whose canonical signature is a member of
// boilerplate. It reports how many subtrees were removed.
//
// The traversal is top-down and skips into a node's children only if the
// node itself survives: once a node is detached, its descendants are
// implicitly gone and are never visited or considered for removal, which
// is what makes nested candidates (e.g. <nav> inside <header>, both
// boilerplate) collapse into a single removal without any special-casing.
func RemoveMatching(root *html.Node, tags map[string]bool, boilerplate map[Signature]struct{}) int {
	removed := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		// Snapshot children up front: detaching a node mutates the
		// sibling linked list out from under a live iteration.
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}

		for _, c := range children {
			if c.Type == html.ElementNode && tags[c.Data] {
				sig := CanonicalString(c)
				if _, ok := boilerplate[sig]; ok {
					Remove(c)
					removed++
					continue // descendants are gone with it
				}
			}
			walk(c)
		}
	}
	walk(root)

	return removed
}
