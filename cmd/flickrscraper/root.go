package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"flickrscraper/pkg/ui"
)

var (
	// Version information, set with -ldflags at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "flickrscraper",
	Short: "Download geotagged Flickr photos by year",
	Long: `flickrscraper searches Flickr for geotagged photos taken in a given year,
downloads each image and writes a metadata table next to them.

Output layout:
  <output>/<year>/<photo id>.jpg
  <output>/<year>/metadata.csv      id,latitude,longitude,url,year

Photos already on disk are not downloaded again, so an interrupted run can
simply be restarted.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
		if verbose && !cmd.Flags().Changed("log-level") {
			logLevel = "debug"
		}
	},
}

// Execute runs the command tree and returns the process exit code
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default searches ./.flickrscraper.yaml and ~/.config/flickrscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.SetVersionTemplate(`flickrscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
