// Command deboiler runs the fit/transform cycle over a JSON-lines crawl
// dump and writes cleaned pages to an output directory. It exists to make
// the library runnable end to end; flags, exit codes, and help text are
// deliberately minimal and are not part of the library's tested contract.
package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/globality-corp/deboiler"
	"github.com/globality-corp/deboiler/dataset"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "deboiler:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		input      = flag.String("input", "", "path to a JSON-lines crawl dump")
		outputDir  = flag.String("output", "cleaned", "directory to write cleaned pages into")
		domain     = flag.String("domain", "", "domain label for diagnostics")
		nProcesses = flag.Int("workers", 1, "number of worker goroutines")
		mode       = flag.String("mode", "memory", "operating mode: memory or performance")
		iouMax     = flag.Float64("iou-max", 0.9, "near-duplicate IoU safeguard threshold")
	)
	flag.Parse()

	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	opMode := deboiler.ModeMemory
	if *mode == "performance" {
		opMode = deboiler.ModePerformance
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ds, err := dataset.OpenJSONLines(*input, dataset.JSONLinesOptions{}, func(lineNo int, err error) {
		logger.Warn("skip malformed record", "line", lineNo, "error", err)
	})
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}

	db, err := deboiler.New(deboiler.Config{
		NProcesses:    *nProcesses,
		OperationMode: opMode,
		Domain:        *domain,
		IoUMax:        *iouMax,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("construct deboiler: %w", err)
	}

	ctx := context.Background()

	if err := db.Fit(ctx, ds); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	logger.Info("fit complete", "boilerplate_signatures", len(db.Boilerplate()))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	count := 0
	for page := range db.Transform(ctx, ds) {
		if err := writePage(*outputDir, page); err != nil {
			return fmt.Errorf("write cleaned page %s: %w", page.URL, err)
		}
		count++
	}
	logger.Info("transform complete", "pages_written", count)

	return nil
}

// writePage writes a cleaned page's HTML and metadata into outputDir,
// keyed by a hash of the URL so that arbitrary URL strings are always
// safe filenames.
func writePage(outputDir string, page deboiler.CleanedPage) error {
	sum := sha1.Sum([]byte(page.URL))
	base := hex.EncodeToString(sum[:])

	htmlPath := filepath.Join(outputDir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(page.CleanedHTML), 0o644); err != nil {
		return err
	}

	meta := struct {
		URL  string `json:"url"`
		Text string `json:"text"`
	}{URL: page.URL, Text: page.CleanedText}

	metaPath := filepath.Join(outputDir, base+".json")
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(metaPath, metaBytes, 0o644)
}
