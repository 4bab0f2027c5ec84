package app

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/pubsub"
	"github.com/openswoop/tritondata/pkg/database"
	"github.com/openswoop/tritondata/pkg/notify"
	"github.com/openswoop/tritondata/pkg/pipeline"
)

const (
	DefaultProject = "tritondata"
	DefaultDataset = "tritondata"
)

// CloudConfig names the BigQuery dataset and Pub/Sub topic a sync targets
type CloudConfig struct {
	Project string
	Dataset string
	Topic   string
}

// CloudConfigFromEnv reads TRITONDATA_PROJECT, TRITONDATA_DATASET, and
// TRITONDATA_TOPIC, falling back to the defaults for anything unset.
func CloudConfigFromEnv() CloudConfig {
	return CloudConfig{
		Project: getenv("TRITONDATA_PROJECT", DefaultProject),
		Dataset: getenv("TRITONDATA_DATASET", DefaultDataset),
		Topic:   getenv("TRITONDATA_TOPIC", notify.DefaultTopic),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func OpenSqlite(file string) (*database.Sqlite, error) {
	sqlite, err := database.NewSqlite(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file, err)
	}
	return sqlite, nil
}

// Cloud holds the live clients behind a sync. Close releases all of them.
type Cloud struct {
	Warehouse *database.BigQuery
	Publisher *notify.Publisher
	pubsub    *pubsub.Client
}

func OpenCloud(ctx context.Context, cfg CloudConfig) (*Cloud, error) {
	bq, err := database.NewBigQuery(ctx, cfg.Project, cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bigquery: %w", err)
	}
	ps, err := pubsub.NewClient(ctx, cfg.Project)
	if err != nil {
		_ = bq.Close()
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return &Cloud{
		Warehouse: bq,
		Publisher: notify.NewPublisher(ps, cfg.Topic),
		pubsub:    ps,
	}, nil
}

var _ pipeline.Exporter = (*database.BigQuery)(nil)

func (c *Cloud) Close() error {
	c.Publisher.Stop()
	if err := c.pubsub.Close(); err != nil {
		_ = c.Warehouse.Close()
		return err
	}
	return c.Warehouse.Close()
}
