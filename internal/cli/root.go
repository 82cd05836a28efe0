package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	dataDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "savoir",
	Short: "Savoir - personal knowledge base with summaries and revision sheets",
	Long: `Savoir stores the documents you collect (files, pasted text, web pages)
and derives two artifacts from them:

  - an extractive summary of a single document
  - a revision sheet for a theme: synthesis bullets, corpus sources,
    bibliography and essay topics

Both are exported as PDF under the data directory and tracked in CSV reports.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command; cancelling ctx stops network and
// store operations in progress
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("savoir v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.savoir/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base directory of the knowledge base (default: current directory)")

	// Bind flags to viper
	_ = viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// A missing .env is normal
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".savoir"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// SAVOIR_LLM_PROVIDER maps to llm.provider
	viper.SetEnvPrefix("SAVOIR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := registerDefaults(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
