package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/openswoop/tritondata/pkg/pipeline"
	"github.com/openswoop/tritondata/pkg/scrape"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printSummary(res pipeline.Result) {
	t := newTable()
	t.AppendHeader(table.Row{"Dataset", "Records", "Elapsed"})
	t.AppendRows([]table.Row{
		{"Grade distributions", len(res.GradeDistributions), res.GradeDistElapsed.Round(time.Millisecond)},
		{"Course codes", len(res.CourseCodes), ""},
		{"CAPEs", len(res.CourseEvaluations), res.CapeElapsed.Round(time.Millisecond)},
	})
	t.Render()
}

func printCourseEvaluations(capes []scrape.CourseEvaluation) {
	t := newTable()
	t.AppendHeader(table.Row{"Term", "Instructor", "Title", "Enroll", "Evals", "Rcmnd Class", "Rcmnd Instr", "Hrs/wk", "GPA Exp", "GPA Rcv"})
	for _, c := range capes {
		t.AppendRow(table.Row{
			c.Term, c.Instructor, c.Title, c.Enroll, c.EvalsMade,
			fmt.Sprintf("%.1f%%", c.RecommendClass*100),
			fmt.Sprintf("%.1f%%", c.RecommendInstructor*100),
			c.StudyHoursPerWeek,
			c.AvgGpaExpected, c.AvgGpaReceived,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "", "Rows", len(capes)})
	t.Render()
}
