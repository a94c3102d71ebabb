// BourseLens compares stock exchanges across regions in a single currency.
package main

import (
	"fmt"
	"log"
	"os"

	"BourseLens/internal/config"

	"github.com/spf13/cobra"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var cfg *config.Config

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bourselens",
	Short: "Cross-market stock exchange comparison in USD",
	Long: `BourseLens converts exchange-level figures (market cap, traded value, YTD change)
into USD under one FX policy per report and derives comparative insights.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = "configs/config.yaml"
			if v := os.Getenv("CONFIG_PATH"); v != "" {
				path = v
			}
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: configs/config.yaml or $CONFIG_PATH)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pegsCmd)
	rootCmd.AddCommand(templateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("BourseLens %s (%s)\n", version, commit)
	},
}
