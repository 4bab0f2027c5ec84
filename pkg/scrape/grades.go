package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// ResultsPerPage is fixed by the grade distribution site
const ResultsPerPage = 100

type GradeDistribution struct {
	Term       string  `db:"term" bigquery:"term"`
	Subject    string  `db:"subject" bigquery:"subject"`
	Course     string  `db:"course" bigquery:"course"`
	Title      string  `db:"title" bigquery:"title"`
	Instructor string  `db:"instructor" bigquery:"instructor"`
	Gpa        float64 `db:"gpa" bigquery:"gpa"`
	PercentA   float64 `db:"percent_a" bigquery:"percent_a"`
	PercentB   float64 `db:"percent_b" bigquery:"percent_b"`
	PercentC   float64 `db:"percent_c" bigquery:"percent_c"`
	PercentD   float64 `db:"percent_d" bigquery:"percent_d"`
	PercentF   float64 `db:"percent_f" bigquery:"percent_f"`
	PercentW   float64 `db:"percent_w" bigquery:"percent_w"`
	PercentP   float64 `db:"percent_p" bigquery:"percent_p"`
	PercentNP  float64 `db:"percent_np" bigquery:"percent_np"`
}

func (g GradeDistribution) Code() CourseCode {
	return CourseCode{g.Subject, g.Course}
}

const gradeDistCells = 14

var resultsR = regexp.MustCompile(`of\s+([\d,]+)\s+results`)

// ParseResultCount reads the total from a summary like
// "Displaying 1-100 of 14955 results."
func ParseResultCount(doc *goquery.Document) (int, error) {
	text := strings.TrimSpace(doc.Find("#gradedistribution-grid").ChildrenFiltered(".summary").Text())
	matches := resultsR.FindStringSubmatch(text)
	if matches == nil {
		return 0, &StructureError{What: "result count summary", Text: text}
	}
	count, err := strconv.Atoi(strings.ReplaceAll(matches[1], ",", ""))
	if err != nil {
		return 0, &StructureError{What: "result count summary", Text: text}
	}
	return count, nil
}

// PageCount is ceil(results / ResultsPerPage)
func PageCount(results int) int {
	return (results + ResultsPerPage - 1) / ResultsPerPage
}

// ParseGradeDistributions extracts one record per table row, in page order.
func ParseGradeDistributions(doc *goquery.Document) ([]GradeDistribution, error) {
	var rows []GradeDistribution
	var err error
	doc.Find("tbody > tr").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		cells := rowCells(s)
		if len(cells) == 0 {
			return true // header row
		}
		if len(cells) != gradeDistCells {
			err = &StructureError{
				What: fmt.Sprintf("grade distribution row with %d cells, want %d", len(cells), gradeDistCells),
				Text: strings.Join(cells, " | "),
			}
			return false
		}

		var row GradeDistribution
		row, err = decodeGradeDistribution(cells)
		if err != nil {
			logrus.WithField("row", cells).Error("Unable to parse grade distribution row")
			return false
		}
		rows = append(rows, row)
		return true
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func decodeGradeDistribution(cells []string) (GradeDistribution, error) {
	row := GradeDistribution{
		Term:       cells[0],
		Subject:    cells[1],
		Course:     cells[2],
		Title:      cells[3],
		Instructor: cells[4],
	}
	if field := missingKey(row.Term, row.Subject, row.Course, row.Instructor); field != "" {
		return row, &FieldError{Field: field, Row: cells}
	}

	gpa, err := parseFloat(cells[5])
	if err != nil {
		return row, &FieldError{Field: "gpa", Text: cells[5], Row: cells}
	}
	row.Gpa = gpa

	percents := []struct {
		name string
		dst  *float64
	}{
		{"percentA", &row.PercentA},
		{"percentB", &row.PercentB},
		{"percentC", &row.PercentC},
		{"percentD", &row.PercentD},
		{"percentF", &row.PercentF},
		{"percentW", &row.PercentW},
		{"percentP", &row.PercentP},
		{"percentNP", &row.PercentNP},
	}
	for i, p := range percents {
		text := cells[6+i]
		value, err := parsePercent(text)
		if err != nil {
			return row, &FieldError{Field: p.name, Text: text, Row: cells}
		}
		*p.dst = value
	}
	return row, nil
}

// GradeDistributionPage fetches and parses a single result page.
func (c *Client) GradeDistributionPage(ctx context.Context, page int) ([]GradeDistribution, error) {
	pageUrl := c.Sources.GradeDistPage(page)
	doc, err := c.Fetcher.Fetch(ctx, pageUrl)
	if err != nil {
		return nil, err
	}
	rows, err := ParseGradeDistributions(doc)
	if err != nil {
		return nil, withURL(err, pageUrl)
	}
	return rows, nil
}

// GetGradeDistributions discovers how many pages there are from page 1 and
// then fetches the rest. Page 1's rows come first.
func (c *Client) GetGradeDistributions(ctx context.Context, opts CollectOptions) ([]GradeDistribution, error) {
	// Collect reports completion itself; every return before it has to as well
	complete := func() {
		if opts.OnComplete != nil {
			opts.OnComplete()
		}
	}

	firstUrl := c.Sources.GradeDistPage(1)
	first, err := c.Fetcher.Fetch(ctx, firstUrl)
	if err != nil {
		complete()
		return nil, err
	}
	results, err := ParseResultCount(first)
	if err != nil {
		complete()
		return nil, withURL(err, firstUrl)
	}
	numPages := PageCount(results)
	logrus.WithFields(logrus.Fields{"results": results, "pages": numPages}).Info("Found grade distributions")
	if numPages == 0 {
		complete()
		return nil, nil
	}

	firstRows, err := ParseGradeDistributions(first)
	if err != nil {
		complete()
		return nil, withURL(err, firstUrl)
	}
	if opts.OnItemDone != nil {
		opts.OnItemDone()
	}

	pages := make([]int, 0, numPages-1)
	for i := 2; i <= numPages; i++ {
		pages = append(pages, i)
	}
	rest, err := Collect(ctx, pages, c.GradeDistributionPage, opts)
	if err != nil {
		return nil, err
	}
	return append(firstRows, rest...), nil
}

// withURL attaches the page address to structure errors raised while parsing
func withURL(err error, pageUrl string) error {
	if se, ok := err.(*StructureError); ok && se.URL == "" {
		se.URL = pageUrl
	}
	return err
}
