package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		docs, err := a.service.ListDocuments(cmd.Context())
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Fprintln(os.Stderr, "No documents yet. Add one with 'savoir add'.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tADDED\tTITLE")
		for _, d := range docs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.ID, d.SourceType, d.CreatedAt.Local().Format("2006-01-02 15:04"), d.Title)
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		doc, err := a.service.GetDocument(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("# %s\n\n", doc.Title)
		fmt.Printf("Source: %s", doc.SourceType)
		if doc.URL != "" {
			fmt.Printf(" (%s)", doc.URL)
		} else if doc.SourcePath != "" {
			fmt.Printf(" (%s)", doc.SourcePath)
		}
		fmt.Printf("\n\n%s\n", doc.TextContent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document id %q", s)
	}
	return id, nil
}
