package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.jsonl")
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenJSONLines_ReadsAcceptedRecords(t *testing.T) {
	path := writeLines(t,
		`{"url":"http://a.example/","html":"<a/>","status":200}`,
		`{"url":"http://b.example/","html":"<b/>","status":200}`,
	)

	ds, err := OpenJSONLines(path, JSONLinesOptions{}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, []string{"http://a.example/", "http://b.example/"}, ds.URLs())

	url, raw, err := ds.Get(0)
	require.NoError(t, err)
	require.Equal(t, "http://a.example/", url)
	require.Equal(t, "<a/>", string(raw))
}

func TestOpenJSONLines_FiltersByStatus(t *testing.T) {
	path := writeLines(t,
		`{"url":"http://a.example/","html":"<a/>","status":200}`,
		`{"url":"http://b.example/","html":"<b/>","status":404}`,
	)

	ds, err := OpenJSONLines(path, JSONLinesOptions{}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	require.Equal(t, []string{"http://a.example/"}, ds.URLs())
}

func TestOpenJSONLines_SkipsMalformedLinesViaCallback(t *testing.T) {
	path := writeLines(t,
		`{"url":"http://a.example/","html":"<a/>","status":200}`,
		`not json at all`,
		`{"url":"http://b.example/","status":200}`, // missing html field
		`{"url":"http://c.example/","html":"<c/>","status":200}`,
	)

	var skipped []int
	ds, err := OpenJSONLines(path, JSONLinesOptions{}, func(lineNo int, _ error) {
		skipped = append(skipped, lineNo)
	})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, []int{2, 3}, skipped)
}

func TestOpenJSONLines_CustomFieldNamesAndFilter(t *testing.T) {
	path := writeLines(t,
		`{"page_url":"http://a.example/","body":"<a/>","code":500}`,
	)

	ds, err := OpenJSONLines(path, JSONLinesOptions{
		URLField:    "page_url",
		HTMLField:   "body",
		StatusField: "code",
		Filter:      func(status int) bool { return status >= 400 },
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	url, raw, err := ds.Get(0)
	require.NoError(t, err)
	require.Equal(t, "http://a.example/", url)
	require.Equal(t, "<a/>", string(raw))
}

func TestJSONLinesDataset_GetOutOfRange(t *testing.T) {
	path := writeLines(t, `{"url":"http://a.example/","html":"<a/>","status":200}`)

	ds, err := OpenJSONLines(path, JSONLinesOptions{}, nil)
	require.NoError(t, err)

	_, _, err = ds.Get(5)
	require.Error(t, err)
}

func TestOpenJSONLines_MissingFile(t *testing.T) {
	_, err := OpenJSONLines(filepath.Join(t.TempDir(), "nope.jsonl"), JSONLinesOptions{}, nil)
	require.Error(t, err)
}
