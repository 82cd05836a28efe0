package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reviseCmd = &cobra.Command{
	Use:   "revise <theme>",
	Short: "Generate the revision sheet of a theme",
	Long: `Generate a revision sheet for a theme from the whole corpus: synthesis
bullets, sources, bibliography and essay topics. The sheet is printed as
Markdown, exported under data/revision_sheets and saved so that it is
regenerated whenever a document is added.

Example:
  savoir revise "guerre froide"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := strings.Join(args, " ")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		sheet, err := a.service.GenerateRevisionSheet(cmd.Context(), theme)
		if err != nil {
			return err
		}
		if sheet == nil {
			fmt.Fprintln(os.Stderr, "The corpus is empty. Add documents with 'savoir add' first.")
			return nil
		}

		fmt.Println(sheet.Markdown)
		fmt.Fprintf(os.Stderr, "\n✓ PDF: %s\n", sheet.PDFPath)
		return nil
	},
}

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List saved revision sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		sheets, err := a.service.ListRevisionSheets(cmd.Context())
		if err != nil {
			return err
		}
		if len(sheets) == 0 {
			fmt.Fprintln(os.Stderr, "No revision sheet saved yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "THEME\tUPDATED\tSOURCES\tPDF")
		for _, s := range sheets {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.Theme, s.UpdatedAt.Local().Format("2006-01-02 15:04"), len(s.Sources), s.PDFPath)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reviseCmd, sheetsCmd)
}
