package report

import (
	"context"
	"sort"
	"strconv"

	"cloud.google.com/go/bigquery"
	"github.com/openswoop/tritondata/pkg/scrape"
)

type capeView struct {
	Term                string  `csv:"term"`
	Subject             string  `csv:"subject"`
	Course              string  `csv:"course"`
	Title               string  `csv:"title"`
	Instructor          string  `csv:"instructor"`
	Enroll              int     `csv:"enroll"`
	EvalsMade           int     `csv:"evalsMade"`
	RecommendClass      float64 `csv:"recommendClass"`
	RecommendInstructor float64 `csv:"recommendInstructor"`
	StudyHoursPerWeek   float64 `csv:"studyHoursPerWeek"`
	AvgGpaExpected      string  `csv:"avgGPAExpected"`
	AvgGpaReceived      string  `csv:"avgGPAReceived"`
}

func toCapeView(c scrape.CourseEvaluation) capeView {
	return capeView{
		Term:                c.Term,
		Subject:             c.Subject,
		Course:              c.Course,
		Title:               c.Title,
		Instructor:          c.Instructor,
		Enroll:              c.Enroll,
		EvalsMade:           c.EvalsMade,
		RecommendClass:      c.RecommendClass,
		RecommendInstructor: c.RecommendInstructor,
		StudyHoursPerWeek:   c.StudyHoursPerWeek,
		AvgGpaExpected:      parseNullFloat64(c.AvgGpaExpected),
		AvgGpaReceived:      parseNullFloat64(c.AvgGpaReceived),
	}
}

func (e CsvExporter) SaveCourseEvaluations(ctx context.Context, capes []scrape.CourseEvaluation) error {
	rows := make(capeReport, len(capes))
	for i, c := range capes {
		rows[i] = toCapeView(c)
	}

	sort.Stable(sort.Reverse(rows))
	return e.write(ctx, rows, CapeFile, len(rows))
}

type capeReport []capeView

func (r capeReport) Len() int {
	return len(r)
}

func (r capeReport) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

func (r capeReport) Less(i, j int) bool {
	return termLess(r[i].Term, r[j].Term)
}

// parseNullFloat64 leaves missing values blank instead of "NULL"
func parseNullFloat64(n bigquery.NullFloat64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}
