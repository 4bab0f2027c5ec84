package database

import (
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func fieldNames(schema bigquery.Schema) map[string]bigquery.FieldType {
	names := make(map[string]bigquery.FieldType, len(schema))
	for _, f := range schema {
		names[f.Name] = f.Type
	}
	return names
}

func TestInferSchema_GradeDistribution(t *testing.T) {
	schema, err := bigquery.InferSchema(scrape.GradeDistribution{})
	require.NoError(t, err)

	fields := fieldNames(schema)
	assert.Len(t, fields, 14)
	assert.Equal(t, bigquery.StringFieldType, fields["term"])
	assert.Equal(t, bigquery.FloatFieldType, fields["percent_np"])
	for _, key := range gradeDistKeys {
		assert.Contains(t, fields, key)
	}
}

func TestInferSchema_CourseEvaluation(t *testing.T) {
	schema, err := bigquery.InferSchema(scrape.CourseEvaluation{})
	require.NoError(t, err)

	fields := fieldNames(schema)
	assert.Len(t, fields, 12)
	assert.Equal(t, bigquery.IntegerFieldType, fields["enroll"])
	assert.Equal(t, bigquery.FloatFieldType, fields["avg_gpa_expected"])
	for _, key := range capeKeys {
		assert.Contains(t, fields, key)
	}
	for _, f := range schema {
		if f.Name == "avg_gpa_received" {
			assert.False(t, f.Required)
		}
	}
}

func TestMergeQuery(t *testing.T) {
	q := mergeQuery("tritondata", "capes", "capes_123", []string{"term", "subject"})
	assert.Contains(t, q, "MERGE tritondata.capes t")
	assert.Contains(t, q, "USING tritondata.capes_123 s")
	assert.Contains(t, q, "t.term = s.term")
	assert.Contains(t, q, "AND t.subject = s.subject")
	assert.Contains(t, q, "INSERT ROW")
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, isDuplicateError(&googleapi.Error{Code: 409}))
	assert.True(t, isDuplicateError(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 409})))
	assert.False(t, isDuplicateError(&googleapi.Error{Code: 404}))
	assert.False(t, isDuplicateError(errors.New("409")))
}
