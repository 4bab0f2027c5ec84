package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const cacheDir = "tritondata/web-cache"

var (
	limit   int
	useCache bool
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tritondata",
	Short: "A tool for scraping historical course data from UCSD",
	Long: `Scrapes the UCSD grade distribution archive and the CAPE course
evaluations of every course found there into a format suitable for
analysis. Results can be written to CSV and SQLite or sent to BigQuery.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		// A missing .env is fine, the environment may already be set
		if err := godotenv.Load(); err == nil {
			logrus.Debug("Loaded environment from .env")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("tritondata failed")
		stop()
		os.Exit(1)
	}
}

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rootCmd.PersistentFlags().IntVar(&limit, "limit", scrape.DefaultLimit, "Maximum number of pages fetched at once")
	rootCmd.PersistentFlags().BoolVar(&useCache, "cache", false, "Reuse pages saved by earlier runs; failed pages are never kept (default: false)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every fetched page")
}

// newClient builds a scrape client from the persistent flags
func newClient() (*scrape.Client, error) {
	opts := scrape.FetcherOptions{
		UserAgent:   scrape.UserAgent,
		Parallelism: limit,
		Timeout:     scrape.RequestTimeout,
	}
	if useCache {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		opts.CacheDir = filepath.Join(userCacheDir, cacheDir)
	}
	fetcher, err := scrape.NewFetcher(opts)
	if err != nil {
		return nil, err
	}
	return scrape.NewClient(fetcher, scrape.DefaultSources()), nil
}
