package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var quarters = map[string]int{
	"WI": 1,
	"SP": 2,
	"S1": 3,
	"S2": 4,
	"S3": 5,
	"SU": 6,
	"FA": 7,
}

// TermToId takes a term code like "FA15" and determines a sortable id for
// it (e.g: 20157). Quarters within a year sort in academic calendar order.
func TermToId(term string) (int, error) {
	term = strings.ToUpper(strings.TrimSpace(term))
	if len(term) != 4 {
		return 0, errors.New(term + " is not a valid term")
	}

	quarter, ok := quarters[term[:2]]
	if !ok {
		return 0, errors.New(term + " is not a valid term")
	}
	year, err := strconv.Atoi(term[2:])
	if err != nil {
		return 0, errors.New(term + " is not a valid term")
	}

	return (2000+year)*10 + quarter, nil
}

// rowCells returns the trimmed text of each data cell in a table row
func rowCells(s *goquery.Selection) []string {
	tds := s.ChildrenFiltered("td")
	cells := make([]string, tds.Size())
	tds.Each(func(i int, td *goquery.Selection) {
		cells[i] = strings.TrimSpace(td.Text())
	})
	return cells
}

// missingKey names the first blank identifying field, if any
func missingKey(term, subject, course, instructor string) string {
	switch {
	case term == "":
		return "term"
	case subject == "":
		return "subject"
	case course == "":
		return "course"
	case instructor == "":
		return "instructor"
	}
	return ""
}

// parsePercent turns "45.6%" into 0.456. Blank cells read as zero.
func parsePercent(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(text, "%")), 64)
	if err != nil {
		return 0, err
	}
	fraction := value / 100
	if fraction < 0 || fraction > 1 {
		return 0, fmt.Errorf("%v is outside [0,1]", fraction)
	}
	return fraction, nil
}

func parseFloat(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	return strconv.ParseFloat(text, 64)
}

func parseInt(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.ReplaceAll(text, ",", ""))
}

var letterGradeR = regexp.MustCompile(`^[ABCDF][+-]?\s\((.+)\)$`)

// parseLetterGpa reads cells like "B+ (3.61)". ok is false for "N/A".
func parseLetterGpa(text string) (gpa float64, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "N/A" {
		return 0, false, nil
	}
	matches := letterGradeR.FindStringSubmatch(text)
	if matches == nil {
		return 0, false, errors.New("no letter grade match")
	}
	gpa, err = strconv.ParseFloat(strings.TrimSpace(matches[1]), 64)
	if err != nil {
		return 0, false, err
	}
	return gpa, true, nil
}
