// Package app wires the scraper, the pipeline, and the export sinks into
// the two runs the command line and the cloud function expose.
package app

import (
	"context"
	"fmt"

	"github.com/openswoop/tritondata/pkg/notify"
	"github.com/openswoop/tritondata/pkg/pipeline"
	"github.com/openswoop/tritondata/pkg/report"
	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/sirupsen/logrus"
)

type FetchConfig struct {
	Client   *scrape.Client
	Limit    int
	Progress pipeline.Progress
	// OutDir receives the CSV files
	OutDir string
	// DbFile is the SQLite database, skipped when empty
	DbFile string
}

// Fetch runs the pipeline into CSV files and, optionally, a local database.
func Fetch(ctx context.Context, cfg FetchConfig) (pipeline.Result, error) {
	exporters := pipeline.MultiExporter{report.NewCsvExporter(cfg.OutDir)}
	if cfg.DbFile != "" {
		sqlite, err := OpenSqlite(cfg.DbFile)
		if err != nil {
			return pipeline.Result{}, err
		}
		defer sqlite.Close()
		exporters = append(exporters, sqlite)
	}

	return pipeline.Pipeline{
		Client:   cfg.Client,
		Exporter: exporters,
		Limit:    cfg.Limit,
		Progress: cfg.Progress,
	}.Run(ctx)
}

// Notifier is satisfied by *notify.Publisher
type Notifier interface {
	Publish(context.Context, notify.Refreshed) (string, error)
}

type SyncConfig struct {
	Client    *scrape.Client
	Limit     int
	Progress  pipeline.Progress
	Warehouse pipeline.Exporter
	// Notifier is told once both datasets are in the warehouse
	Notifier Notifier
}

// Sync runs the pipeline into the warehouse and announces the refresh.
// Nothing is published when the run fails.
func Sync(ctx context.Context, cfg SyncConfig) (pipeline.Result, error) {
	res, err := pipeline.Pipeline{
		Client:   cfg.Client,
		Exporter: cfg.Warehouse,
		Limit:    cfg.Limit,
		Progress: cfg.Progress,
	}.Run(ctx)
	if err != nil {
		return res, err
	}

	if cfg.Notifier == nil {
		logrus.Debug("No notifier configured, skipping refresh event")
		return res, nil
	}
	_, err = cfg.Notifier.Publish(ctx, RefreshedEvent(res))
	if err != nil {
		return res, fmt.Errorf("announcing refresh: %w", err)
	}
	return res, nil
}

func RefreshedEvent(res pipeline.Result) notify.Refreshed {
	return notify.Refreshed{
		GradeDistributions: len(res.GradeDistributions),
		CourseEvaluations:  len(res.CourseEvaluations),
		CourseCodes:        len(res.CourseCodes),
	}
}
