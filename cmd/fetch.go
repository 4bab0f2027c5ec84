package cmd

import (
	"os"
	"path/filepath"

	"github.com/openswoop/tritondata/pkg/app"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const dbFile = "tritondata/tritondata.db"

var (
	outDir string
	dbPath string
	noDb   bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Scrape grade distributions and CAPEs to CSV files",
	Long: `Collects every grade distribution page, then the CAPEs of each
course found there. Both datasets are written as CSV files to the
output directory and inserted into a local SQLite database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		cfg := app.FetchConfig{Client: client, Limit: limit, OutDir: outDir}
		if !noDb {
			cfg.DbFile = dbPath
			if cfg.DbFile == "" {
				userCacheDir, err := os.UserCacheDir()
				if err != nil {
					return err
				}
				cfg.DbFile = filepath.Join(userCacheDir, dbFile)
			}
		}

		bars := newProgress()
		cfg.Progress = bars
		res, err := app.Fetch(cmd.Context(), cfg)
		bars.Stop()
		if err != nil {
			return err
		}

		printSummary(res)
		logrus.WithField("dir", cfg.OutDir).Info("Wrote CSV files")
		if cfg.DbFile != "" {
			logrus.WithField("file", cfg.DbFile).Info("Saved to database")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&outDir, "out", "o", "out", "Directory the CSV files are written to")
	fetchCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file (default: user cache dir)")
	fetchCmd.Flags().BoolVar(&noDb, "no-db", false, "Skip the SQLite database (default: false)")
}
