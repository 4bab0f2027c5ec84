package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

const (
	GradeDistFile = "gradedist.csv"
	CapeFile      = "cape.csv"
)

// CsvExporter writes each dataset to its own file under Dir.
type CsvExporter struct {
	Dir string
}

func NewCsvExporter(dir string) CsvExporter {
	return CsvExporter{Dir: dir}
}

func (e CsvExporter) path(name string) string {
	return filepath.Join(e.Dir, name)
}

func (e CsvExporter) write(ctx context.Context, in interface{}, name string, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	fileName := e.path(name)
	if err := WriteCsv(in, fileName); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"file": fileName, "rows": count}).Info("Wrote to file")
	return nil
}

// WriteCsv writes a header row followed by one row per element of in
func WriteCsv(in interface{}, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(in, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	return file.Close()
}
