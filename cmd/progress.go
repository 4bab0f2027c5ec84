package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/openswoop/tritondata/pkg/pipeline"
)

// prettyProgress renders one bar per collection phase on stderr
type prettyProgress struct {
	pw progress.Writer
}

func newProgress() *prettyProgress {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Value = true
	go pw.Render()
	return &prettyProgress{pw: pw}
}

func (p *prettyProgress) Track(name string, total int) pipeline.Tracker {
	t := &progress.Tracker{Message: name, Total: int64(total), Units: progress.UnitsDefault}
	p.pw.AppendTracker(t)
	return tracker{t}
}

func (p *prettyProgress) Stop() {
	p.pw.Stop()
	for p.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

type tracker struct {
	t *progress.Tracker
}

func (t tracker) Increment() {
	t.t.Increment(1)
}

func (t tracker) Done() {
	t.t.MarkAsDone()
}
