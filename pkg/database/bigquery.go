package database

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

type BigQuery struct {
	client  *bigquery.Client
	dataset *bigquery.Dataset
}

func NewBigQuery(ctx context.Context, projectID, datasetID string) (*BigQuery, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	dataset := client.Dataset(datasetID)
	if err := dataset.Create(ctx, nil); err != nil {
		if !isDuplicateError(err) {
			return nil, fmt.Errorf("failed to create dataset: %w", err)
		}
	}

	return &BigQuery{client, dataset}, nil
}

// Rows are matched on these columns when merging a new export
var (
	gradeDistKeys = []string{"term", "subject", "course", "instructor"}
	capeKeys      = []string{"term", "subject", "course", "instructor", "title", "enroll"}
)

func (bq *BigQuery) SaveGradeDistributions(ctx context.Context, grades []scrape.GradeDistribution) error {
	return bq.insert(ctx, scrape.GradeDistribution{}, GradeDistTable, grades, gradeDistKeys)
}

func (bq *BigQuery) SaveCourseEvaluations(ctx context.Context, capes []scrape.CourseEvaluation) error {
	return bq.insert(ctx, scrape.CourseEvaluation{}, CapeTable, capes, capeKeys)
}

func (bq *BigQuery) insert(ctx context.Context, st interface{}, tableName string, data interface{}, keys []string) error {
	// Infer the table schema
	schema, err := bigquery.InferSchema(st)
	if err != nil {
		return fmt.Errorf("failed to infer schema: %w", err)
	}

	// Get a reference to the table
	table := bq.dataset.Table(tableName)
	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Create a temp table, a different one each run: https://stackoverflow.com/a/51998193/5623874
	tempName := tableName + "_" + strconv.Itoa(int(time.Now().Unix()))
	newArrivals := bq.dataset.Table(tempName)
	if err := newArrivals.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create arrivals table: %w", err)
		}
	}

	// Upload data
	if err := newArrivals.Inserter().Put(ctx, data); err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}

	// Merge data
	q := bq.client.Query(mergeQuery(bq.dataset.DatasetID, tableName, tempName, keys))
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for merge: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("merge into %s failed: %w", tableName, err)
	}

	// The temp table is kept so insertions can be audited by hand
	logrus.WithFields(logrus.Fields{"table": tableName, "arrivals": tempName}).Info("Merged into BigQuery")
	return nil
}

func mergeQuery(datasetID, tableName, tempName string, keys []string) string {
	conditions := make([]string, len(keys))
	for i, key := range keys {
		conditions[i] = fmt.Sprintf("t.%s = s.%s", key, key)
	}
	return fmt.Sprintf(`
		MERGE %s.%s t
		USING %s.%s s
		ON %s
		WHEN NOT MATCHED THEN
		  INSERT ROW`, datasetID, tableName, datasetID, tempName, strings.Join(conditions, "\n		  AND "))
}

func (bq *BigQuery) Close() error {
	return bq.client.Close()
}

func isDuplicateError(err error) bool {
	var e *googleapi.Error
	if errors.As(err, &e) {
		return e.Code == http.StatusConflict
	}
	return false
}
