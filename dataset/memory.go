package dataset

import "fmt"

// Record is a single (url, raw_html) pair.
type Record struct {
	URL     string
	RawHTML []byte
}

// InMemoryDataset is a slice-backed Dataset. It exists for tests and for
// callers that already hold parsed records in memory; it is the trivial
// implementation every consumer of the Dataset interface needs, the way
// chtml.ImporterFunc gives callers a zero-ceremony Importer in the teacher
// this module was adapted from.
type InMemoryDataset struct {
	records []Record
}

// NewInMemoryDataset builds a Dataset from records, preserving their order.
func NewInMemoryDataset(records []Record) *InMemoryDataset {
	return &InMemoryDataset{records: records}
}

func (d *InMemoryDataset) Len() int { return len(d.records) }

func (d *InMemoryDataset) Get(i int) (string, []byte, error) {
	if i < 0 || i >= len(d.records) {
		return "", nil, fmt.Errorf("record index %d out of range [0,%d)", i, len(d.records))
	}
	r := d.records[i]
	return r.URL, r.RawHTML, nil
}

func (d *InMemoryDataset) URLs() []string {
	urls := make([]string, len(d.records))
	for i, r := range d.records {
		urls[i] = r.URL
	}
	return urls
}
