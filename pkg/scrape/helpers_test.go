package scrape

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func tableRow(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func gradeDistRow(term, subject, course, instructor string) string {
	return tableRow(term, subject, course, "Some Title", instructor,
		"3.345", "45.6%", "39.7%", "7.6%", "0.8%", "0.4%", "1.7%", "3.8%", "0.4%")
}

// gradeDistPage mimics the grid markup of the grade distribution site
func gradeDistPage(total int, rows ...string) string {
	return fmt.Sprintf(`<html><body>
<div id="gradedistribution-grid" class="grid-view">
  <div class="summary">Displaying 1-100 of <b>%d</b> results.</div>
  <table class="items">
    <thead><tr><th>Term</th><th>Subject</th><th>Course</th><th>Title</th><th>Instructor</th><th>GPA</th>
    <th>A</th><th>B</th><th>C</th><th>D</th><th>F</th><th>W</th><th>P</th><th>NP</th></tr></thead>
    <tbody>%s</tbody>
  </table>
</div>
</body></html>`, total, strings.Join(rows, "\n"))
}

func capeRow(instructor, combined, term string) string {
	return tableRow(instructor, combined, term, "162", "65", "91.9 %", "71.0 %", "4.07", "B+ (3.61)", "B+ (3.72)")
}

func capePage(rows ...string) string {
	return fmt.Sprintf(`<html><body>
<table id="ctl00_ContentPlaceHolder1_gvCAPEs">
  <thead><tr><th>Instructor</th><th>Course</th><th>Term</th><th>Enroll</th><th>Evals Made</th>
  <th>Rcmnd Class</th><th>Rcmnd Instr</th><th>Study Hrs/wk</th><th>Avg Grade Expected</th><th>Avg Grade Received</th></tr></thead>
  <tbody>%s</tbody>
</table>
</body></html>`, strings.Join(rows, "\n"))
}

const emptyCapePage = `<html><body>
<table id="ctl00_ContentPlaceHolder1_gvCAPEs"><tr><td>
<span id="ctl00_ContentPlaceHolder1_gvCAPEs_ctl01_lblEmptyData">No CAPEs have been submitted that match your search criteria.</span>
</td></tr></table>
</body></html>`
