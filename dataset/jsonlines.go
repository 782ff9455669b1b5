package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// JSONLinesOptions configures how JSONLinesDataset decodes each line.
type JSONLinesOptions struct {
	// URLField is the JSON key holding the page URL. Defaults to "url".
	URLField string

	// HTMLField is the JSON key holding the raw HTML body. Defaults to
	// "html".
	HTMLField string

	// StatusField is the JSON key holding the HTTP status code used by
	// Filter. Defaults to "status".
	StatusField string

	// Filter decides whether a record is included in the dataset, given
	// the value of StatusField (0 if the field is absent or not a
	// number). Defaults to "status == 200".
	Filter func(status int) bool
}

func (o JSONLinesOptions) withDefaults() JSONLinesOptions {
	if o.URLField == "" {
		o.URLField = "url"
	}
	if o.HTMLField == "" {
		o.HTMLField = "html"
	}
	if o.StatusField == "" {
		o.StatusField = "status"
	}
	if o.Filter == nil {
		o.Filter = func(status int) bool { return status == 200 }
	}
	return o
}

// record tracks where one accepted line lives in the source file.
type record struct {
	url    string
	offset int64
	length int
}

// JSONLinesDataset reads a JSON-lines file where each line is an object
// containing at least a URL field and an HTML field. An index of
// (offset, length) is built once at construction so that Get can open its
// own file handle and seek directly to the record, matching the
// concurrent-reader contract described by the execution harness: each
// worker gets its own handle rather than sharing one.
type JSONLinesDataset struct {
	path    string
	opts    JSONLinesOptions
	records []record
}

// OpenJSONLines builds a JSONLinesDataset from path, scanning it once to
// build the record index. Lines that fail to parse, or whose required
// fields are missing, are skipped, and their line number and an error
// describing them are passed to onSkip (which may be nil to discard
// diagnostics silently).
func OpenJSONLines(path string, opts JSONLinesOptions, onSkip func(lineNo int, err error)) (*JSONLinesDataset, error) {
	opts = opts.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonlines dataset %s: %w", path, err)
	}
	defer f.Close()

	ds := &JSONLinesDataset{path: path, opts: opts}

	var offset int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		lineLen := int64(len(line)) + 1 // account for the newline the scanner stripped
		start := offset
		offset += lineLen

		url, status, ok, err := parseLine(line, opts)
		if err != nil {
			if onSkip != nil {
				onSkip(lineNo, fmt.Errorf("decode line %d: %w", lineNo, err))
			}
			continue
		}
		if !ok {
			if onSkip != nil {
				onSkip(lineNo, fmt.Errorf("line %d missing required fields", lineNo))
			}
			continue
		}
		if !opts.Filter(status) {
			continue
		}

		ds.records = append(ds.records, record{
			url:    url,
			offset: start,
			length: len(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan jsonlines dataset %s: %w", path, err)
	}

	return ds, nil
}

func parseLine(line []byte, opts JSONLinesOptions) (url string, status int, ok bool, err error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(line, &obj); err != nil {
		return "", 0, false, err
	}

	urlRaw, hasURL := obj[opts.URLField]
	_, hasHTML := obj[opts.HTMLField]
	if !hasURL || !hasHTML {
		return "", 0, false, nil
	}
	if err := json.Unmarshal(urlRaw, &url); err != nil {
		return "", 0, false, err
	}

	if statusRaw, hasStatus := obj[opts.StatusField]; hasStatus {
		_ = json.Unmarshal(statusRaw, &status) // best-effort; 0 if not numeric
	}

	return url, status, true, nil
}

func (d *JSONLinesDataset) Len() int { return len(d.records) }

func (d *JSONLinesDataset) Get(i int) (string, []byte, error) {
	if i < 0 || i >= len(d.records) {
		return "", nil, fmt.Errorf("record index %d out of range [0,%d)", i, len(d.records))
	}
	r := d.records[i]

	f, err := os.Open(d.path)
	if err != nil {
		return "", nil, fmt.Errorf("open jsonlines dataset %s: %w", d.path, err)
	}
	defer f.Close()

	buf := make([]byte, r.length)
	if _, err := f.ReadAt(buf, r.offset); err != nil {
		return "", nil, fmt.Errorf("read record %d: %w", i, err)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(buf, &obj); err != nil {
		return "", nil, fmt.Errorf("decode record %d: %w", i, err)
	}
	var rawHTML string
	if err := json.Unmarshal(obj[d.opts.HTMLField], &rawHTML); err != nil {
		return "", nil, fmt.Errorf("decode html field in record %d: %w", i, err)
	}

	return r.url, []byte(rawHTML), nil
}

func (d *JSONLinesDataset) URLs() []string {
	urls := make([]string, len(d.records))
	for i, r := range d.records {
		urls[i] = r.url
	}
	return urls
}
