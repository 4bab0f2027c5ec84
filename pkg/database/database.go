package database

import (
	"context"
	"io"

	"github.com/openswoop/tritondata/pkg/scrape"
)

type Database interface {
	io.Closer
	SaveGradeDistributions(context.Context, []scrape.GradeDistribution) error
	SaveCourseEvaluations(context.Context, []scrape.CourseEvaluation) error
}

var (
	_ Database = (*Sqlite)(nil)
	_ Database = (*BigQuery)(nil)
)
