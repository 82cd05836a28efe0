package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/savoir/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the reference lookup cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached Wikipedia lookups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		dir := cache.Dir(cfg.Cache, cfg.Data.Dir)
		if err := cache.NewDiskCache(dir, cfg.Cache.DiskTTL).Clear(); err != nil {
			return err
		}
		fmt.Printf("✓ Cleared %s\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
