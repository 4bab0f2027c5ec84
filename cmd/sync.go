package cmd

import (
	"github.com/openswoop/tritondata/pkg/app"
	"github.com/openswoop/tritondata/pkg/pipeline"
	"github.com/openswoop/tritondata/pkg/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const debugDir = "debug"

var dryRun bool
var debug bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scrape grade distributions and CAPEs to BigQuery",
	Long: `Collects the same data as fetch, merges it into BigQuery, and
publishes a refresh event on Pub/Sub once both tables are up to date.

The target can be changed with TRITONDATA_PROJECT, TRITONDATA_DATASET,
and TRITONDATA_TOPIC, which are also read from a .env file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := newClient()
		if err != nil {
			return err
		}
		cfg := app.SyncConfig{Client: client, Limit: limit}

		switch {
		case debug:
			// Dump what would have been sent and stop there
			cfg.Warehouse = report.NewCsvExporter(debugDir)
			logrus.WithField("dir", debugDir).Warn("Debug: writing CSV files instead of syncing")
		case dryRun:
			cfg.Warehouse = pipeline.MultiExporter{}
			logrus.Warn("Dry run: data will not be inserted")
		default:
			cloudCfg := app.CloudConfigFromEnv()
			logrus.WithFields(logrus.Fields{
				"project": cloudCfg.Project,
				"dataset": cloudCfg.Dataset,
				"topic":   cloudCfg.Topic,
			}).Info("Syncing")
			cloud, err := app.OpenCloud(ctx, cloudCfg)
			if err != nil {
				return err
			}
			defer cloud.Close()
			cfg.Warehouse = cloud.Warehouse
			cfg.Notifier = cloud.Publisher
		}

		bars := newProgress()
		cfg.Progress = bars
		res, err := app.Sync(ctx, cfg)
		bars.Stop()
		if err != nil {
			return err
		}
		printSummary(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without modifying the database (default: false)")
	syncCmd.Flags().BoolVar(&debug, "debug", false, "Dump the collected datasets as CSV files instead (default: false)")
}
