// Package dataset defines the external collaborator the deboiler core
// depends on: a random-access store of (url, raw_html) records. The core
// never assumes anything about how records are stored; it only calls
// Len, Get, and URLs.
package dataset

// Dataset is a random-access collection of crawled pages belonging to one
// domain. Implementations are expected to be safe for concurrent readers:
// the fit and transform phases may call Get from multiple goroutines when
// running with more than one worker.
type Dataset interface {
	// Len returns the number of records in the dataset.
	Len() int

	// Get returns the URL and raw HTML bytes for record i. i must be in
	// [0, Len()).
	Get(i int) (url string, rawHTML []byte, err error)

	// URLs returns every URL in the dataset, in its natural (storage)
	// order, without loading any page bodies.
	URLs() []string
}
