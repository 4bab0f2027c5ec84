// Package refresh is an HTTP cloud function that runs a full sync. Point a
// scheduler at it to keep the warehouse current.
package refresh

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openswoop/tritondata/pkg/app"
	"github.com/openswoop/tritondata/pkg/notify"
	"github.com/openswoop/tritondata/pkg/pipeline"
	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/sirupsen/logrus"
)

type RunFunc func(ctx context.Context) (pipeline.Result, error)

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
}

// Refresh is the function entry point
func Refresh(w http.ResponseWriter, r *http.Request) {
	Handler(syncFromEnv).ServeHTTP(w, r)
}

// Handler runs the sync once per request and answers with the record counts
func Handler(run RunFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := run(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Refresh failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(app.RefreshedEvent(res)); err != nil {
			logrus.WithError(err).Warn("Unable to write response")
		}
	})
}

func syncFromEnv(ctx context.Context) (pipeline.Result, error) {
	// Functions have no persistent disk, so the web cache stays off
	fetcher, err := scrape.NewFetcher(scrape.FetcherOptions{
		UserAgent:   scrape.UserAgent,
		Parallelism: scrape.DefaultLimit,
		Timeout:     scrape.RequestTimeout,
	})
	if err != nil {
		return pipeline.Result{}, err
	}

	cloud, err := app.OpenCloud(ctx, app.CloudConfigFromEnv())
	if err != nil {
		return pipeline.Result{}, err
	}
	defer cloud.Close()

	return app.Sync(ctx, app.SyncConfig{
		Client:    scrape.NewClient(fetcher, scrape.DefaultSources()),
		Limit:     scrape.DefaultLimit,
		Warehouse: cloud.Warehouse,
		Notifier:  cloud.Publisher,
	})
}

var _ app.Notifier = (*notify.Publisher)(nil)
