package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summarySentences int

var summarizeCmd = &cobra.Command{
	Use:   "summarize <id>",
	Short: "Build the extractive summary of a document",
	Long: `Build the extractive summary of a document, export it as PDF under
data/summaries and refresh data/reports/document_summaries_overview.csv.`,
	Args: cobra.ExactArgs(1),
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

		sentences := summarySentences
		if sentences <= 0 {
			sentences = a.cfg.Summary.MaxSentences
		}

		summary, err := a.service.BuildSummary(cmd.Context(), id, sentences)
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().IntVarP(&summarySentences, "sentences", "n", 0, "maximum number of sentences (default: summary.max_sentences)")
}
