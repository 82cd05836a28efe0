package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/worker"
)

// PageFetcher builds a document from a URL
type PageFetcher interface {
	Page(ctx context.Context, baseDir, rawURL string) (*model.NewDocument, error)
}

// pageJob fetches a single URL
type pageJob struct {
	url     string
	baseDir string
	fetcher PageFetcher
}

func (j *pageJob) Execute(ctx context.Context) worker.Result {
	doc, err := j.fetcher.Page(ctx, j.baseDir, j.url)
	return &PageResult{URL: j.url, Document: doc, Error: err}
}

// PageResult is the outcome of fetching one URL in a batch
type PageResult struct {
	URL      string
	Document *model.NewDocument
	Error    error
}

// GetError returns the error from the fetch
func (r *PageResult) GetError() error {
	return r.Error
}

// Pages fetches urls concurrently with the given number of workers.
// Results are in input order; a failed URL does not stop the others.
func Pages(ctx context.Context, fetcher PageFetcher, baseDir string, urls []string, workers int) []*PageResult {
	if len(urls) == 0 {
		return []*PageResult{}
	}

	jobs := make([]worker.Job, len(urls))
	for i, u := range urls {
		jobs[i] = &pageJob{url: u, baseDir: baseDir, fetcher: fetcher}
	}

	results := worker.Run(ctx, workers, jobs)
	out := make([]*PageResult, len(urls))
	for i := range urls {
		if i < len(results) {
			if pr, ok := results[i].(*PageResult); ok {
				out[i] = pr
				continue
			}
		}
		// The pool was cancelled before this job ran
		out[i] = &PageResult{URL: urls[i], Error: &FetchError{URL: urls[i], Err: ctx.Err()}}
	}
	return out
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
