package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// CourseEvaluation is one instructor offering from a CAPE results table.
type CourseEvaluation struct {
	Term                string               `db:"term" bigquery:"term"`
	Subject             string               `db:"subject" bigquery:"subject"`
	Course              string               `db:"course" bigquery:"course"`
	Title               string               `db:"title" bigquery:"title"`
	Instructor          string               `db:"instructor" bigquery:"instructor"`
	Enroll              int                  `db:"enroll" bigquery:"enroll"`
	EvalsMade           int                  `db:"evals_made" bigquery:"evals_made"`
	RecommendClass      float64              `db:"recommend_class" bigquery:"recommend_class"`
	RecommendInstructor float64              `db:"recommend_instructor" bigquery:"recommend_instructor"`
	StudyHoursPerWeek   float64              `db:"study_hours_per_week" bigquery:"study_hours_per_week"`
	AvgGpaExpected      bigquery.NullFloat64 `db:"avg_gpa_expected" bigquery:"avg_gpa_expected"`
	AvgGpaReceived      bigquery.NullFloat64 `db:"avg_gpa_received" bigquery:"avg_gpa_received"`
}

func (e CourseEvaluation) Code() CourseCode {
	return CourseCode{e.Subject, e.Course}
}

const (
	capeCells      = 10
	emptyDataId    = "#ctl00_ContentPlaceHolder1_gvCAPEs_ctl01_lblEmptyData"
	noCapesMessage = "No CAPEs submitted"
)

// Looks like "CSE 3 - Fluency/Information Technology (A)"
var subjectCourseTitleR = regexp.MustCompile(`^(\S+)\s+(\S+)\s+-\s+(.+)$`)

// ParseCourseEvaluations extracts the rows of a CAPE results page that
// belong to code. Cross-listed courses share the table and are dropped.
func ParseCourseEvaluations(doc *goquery.Document, code CourseCode) ([]CourseEvaluation, error) {
	if doc.Find(emptyDataId).Length() > 0 {
		return []CourseEvaluation{}, nil
	}

	rows := []CourseEvaluation{}
	var err error
	doc.Find("tbody > tr").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		cells := rowCells(s)
		if len(cells) == 0 {
			return true // header row
		}

		// Courses that were offered but never evaluated
		if len(cells) > 1 && cells[1] == noCapesMessage {
			return true
		}
		if len(cells) != capeCells {
			err = &StructureError{
				What: fmt.Sprintf("CAPE row with %d cells, want %d", len(cells), capeCells),
				Text: strings.Join(cells, " | "),
			}
			return false
		}

		var row CourseEvaluation
		var keep bool
		row, keep, err = decodeCourseEvaluation(cells, code)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"course": code.String(),
				"row":    cells,
			}).Error("Unable to parse CAPE row")
			return false
		}
		if keep {
			rows = append(rows, row)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func decodeCourseEvaluation(cells []string, code CourseCode) (CourseEvaluation, bool, error) {
	matches := subjectCourseTitleR.FindStringSubmatch(cells[1])
	if matches == nil {
		return CourseEvaluation{}, false, &FieldError{Field: "subject/course/title", Text: cells[1], Code: code, Row: cells}
	}

	row := CourseEvaluation{
		Instructor: cells[0],
		Term:       cells[2],
		Subject:    strings.TrimSpace(matches[1]),
		Course:     strings.TrimSpace(matches[2]),
		Title:      stripSuffix(strings.TrimSpace(matches[3])),
	}

	// If the subject and course don't match what we're looking for throw it out
	if row.Code() != code {
		return row, false, nil
	}
	if field := missingKey(row.Term, row.Subject, row.Course, row.Instructor); field != "" {
		return row, false, &FieldError{Field: field, Code: code, Row: cells}
	}

	var err error
	if row.Enroll, err = parseInt(cells[3]); err != nil {
		return row, false, &FieldError{Field: "enroll", Text: cells[3], Code: code, Row: cells}
	}
	if row.EvalsMade, err = parseInt(cells[4]); err != nil {
		return row, false, &FieldError{Field: "evalsMade", Text: cells[4], Code: code, Row: cells}
	}
	if row.RecommendClass, err = parsePercent(cells[5]); err != nil {
		return row, false, &FieldError{Field: "recommendClass", Text: cells[5], Code: code, Row: cells}
	}
	if row.RecommendInstructor, err = parsePercent(cells[6]); err != nil {
		return row, false, &FieldError{Field: "recommendInstructor", Text: cells[6], Code: code, Row: cells}
	}
	if row.StudyHoursPerWeek, err = parseFloat(cells[7]); err != nil {
		return row, false, &FieldError{Field: "studyHoursPerWeek", Text: cells[7], Code: code, Row: cells}
	}

	expected, ok, err := parseLetterGpa(cells[8])
	if err != nil {
		return row, false, &FieldError{Field: "avgGPAExpected", Text: cells[8], Code: code, Row: cells}
	}
	row.AvgGpaExpected = bigquery.NullFloat64{Float64: expected, Valid: ok}

	received, ok, err := parseLetterGpa(cells[9])
	if err != nil {
		return row, false, &FieldError{Field: "avgGPAReceived", Text: cells[9], Code: code, Row: cells}
	}
	row.AvgGpaReceived = bigquery.NullFloat64{Float64: received, Valid: ok}

	return row, true, nil
}

// stripSuffix drops a trailing section annotation like " (A)"
func stripSuffix(title string) string {
	if i := strings.LastIndex(title, "("); i != -1 {
		return strings.TrimSpace(title[:i])
	}
	return title
}

// CourseEvaluations fetches and parses the CAPE page for one course code.
func (c *Client) CourseEvaluations(ctx context.Context, code CourseCode) ([]CourseEvaluation, error) {
	pageUrl := c.Sources.CapePage(code)
	doc, err := c.Fetcher.Fetch(ctx, pageUrl)
	if err != nil {
		return nil, err
	}
	rows, err := ParseCourseEvaluations(doc, code)
	if err != nil {
		return nil, withURL(err, pageUrl)
	}
	return rows, nil
}

// GetCourseEvaluations fetches the CAPEs for every course code.
func (c *Client) GetCourseEvaluations(ctx context.Context, codes []CourseCode, opts CollectOptions) ([]CourseEvaluation, error) {
	return Collect(ctx, codes, c.CourseEvaluations, opts)
}
