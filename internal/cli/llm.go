package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the optional generative bullet provider",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured provider is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if !a.bullets.IsEnabled() {
			fmt.Println("No provider configured: synthesis uses the extractive fallback.")
			fmt.Println("Set llm.provider (openai, anthropic, ollama) to enable it.")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if err := a.bullets.Check(ctx); err != nil {
			return fmt.Errorf("provider %s is not available: %w", a.bullets.ProviderName(), err)
		}
		fmt.Printf("✓ %s is available (model: %s)\n", a.bullets.ProviderName(), a.bullets.ModelName())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(llmCmd)
	llmCmd.AddCommand(llmCheckCmd)
}
