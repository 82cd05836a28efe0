package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/savoir/internal/ingest"
)

var (
	textTitle    string
	fileMIME     string
	batchWorkers int
	batchTimeout time.Duration
)

// addCmd groups the ingestion commands
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add documents to the knowledge base",
	Long: `Add documents from files, pasted text or web pages.

Saved revision sheets are regenerated after each new document.

Example:
  savoir add file notes.pdf
  savoir add text --title "Cours 3" < cours3.txt
  savoir add url https://fr.wikipedia.org/wiki/Guerre_froide
  savoir add urls reading-list.txt --workers 4`,
}

var addFileCmd = &cobra.Command{
	Use:   "file <path>...",
	Short: "Add .txt, .md, .rtf, .docx or .pdf files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAddFile,
}

var addTextCmd = &cobra.Command{
	Use:   "text [text]",
	Short: "Add pasted text (argument or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAddText,
}

var addURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Add the text of a web page",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddURL,
}

var addURLsCmd = &cobra.Command{
	Use:   "urls <file>",
	Short: "Add many web pages listed in a file (one URL per line)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddURLs,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.AddCommand(addFileCmd, addTextCmd, addURLCmd, addURLsCmd)

	addFileCmd.Flags().StringVar(&fileMIME, "mime", "", "MIME type used to guess the extension of files without one")
	addTextCmd.Flags().StringVar(&textTitle, "title", "", "document title (default: first line)")
	addURLsCmd.Flags().IntVar(&batchWorkers, "workers", 0, "number of concurrent fetches (default: concurrency.workers)")
	addURLsCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
}

func runAddFile(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		mimeType := fileMIME
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(path))
		}

		doc, err := ingest.File(a.cfg.Data.Dir, filepath.Base(path), data, mimeType)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		id, err := a.addDocument(cmd.Context(), doc)
		if err != nil {
			return err
		}
		fmt.Printf("✓ [%d] %s\n", id, doc.Title)
	}
	return nil
}

func runAddText(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	doc, err := ingest.Text(text, textTitle)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	id, err := a.addDocument(cmd.Context(), doc)
	if err != nil {
		return err
	}
	fmt.Printf("✓ [%d] %s\n", id, doc.Title)
	return nil
}

func runAddURL(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	doc, err := a.web.Page(cmd.Context(), a.cfg.Data.Dir, strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}
	id, err := a.addDocument(cmd.Context(), doc)
	if err != nil {
		return err
	}
	fmt.Printf("✓ [%d] %s\n", id, doc.Title)
	return nil
}

func runAddURLs(cmd *cobra.Command, args []string) error {
	urls, err := ingest.ReadURLsFromFile(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	workers := batchWorkers
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "⚙️  Fetching %d URLs with %d workers...\n\n", len(urls), workers)
	results := ingest.Pages(ctx, a.web, a.cfg.Data.Dir, urls, workers)

	// Pages are fetched concurrently; documents are stored one at a time
	successCount, failureCount := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.URL, r.Error)
			continue
		}
		id, err := a.addDocument(ctx, r.Document)
		if err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.URL, err)
			continue
		}
		successCount++
		fmt.Printf("✓ [%d] %s\n", id, r.Document.Title)
	}

	fmt.Fprintf(os.Stderr, "\n  Total:     %d URLs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n\n", failureCount)

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("no URL could be added")
	}
	return nil
}
