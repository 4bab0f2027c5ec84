package report

import (
	"context"
	"sort"

	"github.com/openswoop/tritondata/pkg/scrape"
)

type gradeDistView struct {
	Term       string  `csv:"term"`
	Subject    string  `csv:"subject"`
	Course     string  `csv:"course"`
	Title      string  `csv:"title"`
	Instructor string  `csv:"instructor"`
	Gpa        float64 `csv:"gpa"`
	PercentA   float64 `csv:"percentA"`
	PercentB   float64 `csv:"percentB"`
	PercentC   float64 `csv:"percentC"`
	PercentD   float64 `csv:"percentD"`
	PercentF   float64 `csv:"percentF"`
	PercentW   float64 `csv:"percentW"`
	PercentP   float64 `csv:"percentP"`
	PercentNP  float64 `csv:"percentNP"`
}

func toGradeDistView(g scrape.GradeDistribution) gradeDistView {
	return gradeDistView{
		Term:       g.Term,
		Subject:    g.Subject,
		Course:     g.Course,
		Title:      g.Title,
		Instructor: g.Instructor,
		Gpa:        g.Gpa,
		PercentA:   g.PercentA,
		PercentB:   g.PercentB,
		PercentC:   g.PercentC,
		PercentD:   g.PercentD,
		PercentF:   g.PercentF,
		PercentW:   g.PercentW,
		PercentP:   g.PercentP,
		PercentNP:  g.PercentNP,
	}
}

func (e CsvExporter) SaveGradeDistributions(ctx context.Context, grades []scrape.GradeDistribution) error {
	rows := make(gradeDistReport, len(grades))
	for i, g := range grades {
		rows[i] = toGradeDistView(g)
	}

	// Newest terms first
	sort.Stable(sort.Reverse(rows))
	return e.write(ctx, rows, GradeDistFile, len(rows))
}

type gradeDistReport []gradeDistView

func (r gradeDistReport) Len() int {
	return len(r)
}

func (r gradeDistReport) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

func (r gradeDistReport) Less(i, j int) bool {
	return termLess(r[i].Term, r[j].Term)
}

// termLess orders by academic term; unknown codes sort first
func termLess(a, b string) bool {
	aTerm, _ := scrape.TermToId(a)
	bTerm, _ := scrape.TermToId(b)
	return aTerm < bTerm
}
