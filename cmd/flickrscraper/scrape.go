package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"flickrscraper/pkg/auth"
	"flickrscraper/pkg/config"
	errs "flickrscraper/pkg/errors"
	"flickrscraper/pkg/logger"
	"flickrscraper/pkg/scraper"
	"flickrscraper/pkg/ui"
)

var scrapeFlags struct {
	total       int
	perPage     int
	rpm         int
	output      string
	delay       time.Duration
	timeout     time.Duration
	profile     string
	apiKey      string
	inspectExif bool
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <year|start-end>",
	Short: "Download geotagged photos taken in a year or range of years",
	Long: `Search Flickr for geotagged photos taken in each requested year, download
them and write <output>/<year>/metadata.csv.

The API key is taken from, in order: --api-key, FLICKR_API_KEY, the config
file, then stored credentials ('flickrscraper auth login').`,
	Example: `  # 1000 photos from 2015
  flickrscraper scrape 2015

  # 500 photos per year from 2000 to 2021 into ./data
  flickrscraper scrape 2000-2021 -n 500 --output ./data

  # Slow down between downloads and use a stored profile
  flickrscraper scrape 2010 --delay 2s --profile research`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	f := scrapeCmd.Flags()
	f.IntVarP(&scrapeFlags.total, "total", "n", 1000, "number of photos to fetch per year")
	f.IntVar(&scrapeFlags.perPage, "per-page", 250, "search results per request (1-500)")
	f.IntVar(&scrapeFlags.rpm, "requests-per-minute", 60, "search request rate limit")
	f.StringVarP(&scrapeFlags.output, "output", "o", "./images", "base output directory")
	f.DurationVar(&scrapeFlags.delay, "delay", time.Second, "pause after each image request")
	f.DurationVar(&scrapeFlags.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	f.StringVarP(&scrapeFlags.profile, "profile", "p", "", "stored credentials profile")
	f.StringVar(&scrapeFlags.apiKey, "api-key", "", "Flickr API key")
	f.BoolVar(&scrapeFlags.inspectExif, "inspect-exif", false, "log EXIF capture time and GPS presence of each download")
}

// changedFlags collects only the flags the user set so that defaults do not
// override the config file or environment.
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if cmd.Flags().Changed(name) {
			flags[name] = value
		}
	}

	set("total", scrapeFlags.total)
	set("per-page", scrapeFlags.perPage)
	set("requests-per-minute", scrapeFlags.rpm)
	set("output", scrapeFlags.output)
	set("delay", scrapeFlags.delay)
	set("timeout", scrapeFlags.timeout)
	set("api-key", scrapeFlags.apiKey)
	set("inspect-exif", scrapeFlags.inspectExif)

	if cmd.Flags().Changed("log-level") || verbose {
		flags["log-level"] = logLevel
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	years, err := scraper.ParseYears(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile, changedFlags(cmd))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithField("version", version)

	if err := resolveCredentials(cfg, scrapeFlags.profile); err != nil {
		return err
	}

	ui.PrintBanner()
	ui.PrintInfo("Years", args[0])
	ui.PrintInfo("Photos per year", strconv.Itoa(cfg.Fetch.Total))
	ui.PrintInfo("Output", cfg.Output.BaseDirectory)

	s, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	log.InfoWithFields("Starting scrape", map[string]interface{}{
		"years": len(years),
		"total": cfg.Fetch.Total,
	})

	results, err := s.ScrapeYears(cmd.Context(), years)
	if err != nil {
		log.WithError(err).ErrorWithFields("Scrape failed", map[string]interface{}{
			"completed_years": len(results),
			"error_type":      errs.TypeOf(err),
		})
		return err
	}

	downloaded, skipped := 0, 0
	for _, r := range results {
		downloaded += r.Download.Downloaded
		skipped += r.Download.Skipped
	}
	ui.PrintSuccess(fmt.Sprintf("Done: %d years, %d new photos, %d skipped", len(results), downloaded, skipped))
	return nil
}

// resolveCredentials fills the API key from the credential stores when the
// config, environment and flags did not provide one, or when a profile is
// named explicitly.
func resolveCredentials(cfg *config.Config, profile string) error {
	if cfg.Flickr.APIKey != "" && profile == "" {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.Retrieve(profile)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			auth.ShowAPIKeyGuide(rootCmd.ErrOrStderr())
		}
		return err
	}

	cfg.Flickr.APIKey = creds.APIKey
	if creds.APISecret != "" {
		cfg.Flickr.APISecret = creds.APISecret
	}
	logger.WithField("profile", creds.Profile).Info("Using stored credentials")
	return nil
}
