// Package pipeline sequences a full run: grade distributions are collected
// and exported, their course codes drive the CAPE collection, and the CAPEs
// are exported in turn. Each stage waits for the previous one to finish.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/sirupsen/logrus"
)

// Exporter receives each finished dataset exactly once.
type Exporter interface {
	SaveGradeDistributions(context.Context, []scrape.GradeDistribution) error
	SaveCourseEvaluations(context.Context, []scrape.CourseEvaluation) error
}

// MultiExporter hands every dataset to each exporter in order, stopping at
// the first failure.
type MultiExporter []Exporter

func (m MultiExporter) SaveGradeDistributions(ctx context.Context, grades []scrape.GradeDistribution) error {
	for _, e := range m {
		if err := e.SaveGradeDistributions(ctx, grades); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiExporter) SaveCourseEvaluations(ctx context.Context, capes []scrape.CourseEvaluation) error {
	for _, e := range m {
		if err := e.SaveCourseEvaluations(ctx, capes); err != nil {
			return err
		}
	}
	return nil
}

// Progress reports how far along a collection phase is.
type Progress interface {
	Track(name string, total int) Tracker
}

type Tracker interface {
	Increment()
	Done()
}

type Pipeline struct {
	Client   *scrape.Client
	Exporter Exporter
	// Limit caps concurrent fetches in each phase
	Limit    int
	Progress Progress
}

type Result struct {
	GradeDistributions []scrape.GradeDistribution
	CourseCodes        []scrape.CourseCode
	CourseEvaluations  []scrape.CourseEvaluation
	GradeDistElapsed   time.Duration
	CapeElapsed        time.Duration
}

func (p Pipeline) options(name string, total int) scrape.CollectOptions {
	opts := scrape.CollectOptions{Limit: p.Limit}
	if p.Progress == nil {
		return opts
	}
	tracker := p.Progress.Track(name, total)
	opts.OnItemDone = tracker.Increment
	opts.OnComplete = tracker.Done
	return opts
}

func (p Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result

	// 1. Grade distributions. The page count isn't known until page 1 is in,
	// so the tracker starts without a total.
	start := time.Now()
	grades, err := p.Client.GetGradeDistributions(ctx, p.options("Grade distributions", 0))
	if err != nil {
		return res, fmt.Errorf("collecting grade distributions: %w", err)
	}
	res.GradeDistributions = grades
	res.GradeDistElapsed = time.Since(start)
	logrus.WithFields(logrus.Fields{
		"records": len(grades),
		"elapsed": res.GradeDistElapsed.Round(time.Millisecond),
	}).Info("Collected grade distributions")

	// 2.
	if err := p.Exporter.SaveGradeDistributions(ctx, grades); err != nil {
		return res, fmt.Errorf("exporting grade distributions: %w", err)
	}

	// 3.
	codes := scrape.DeriveCourseCodes(grades)
	res.CourseCodes = codes
	logrus.WithField("courses", len(codes)).Info("Derived course codes")

	// 4.
	start = time.Now()
	capes, err := p.Client.GetCourseEvaluations(ctx, codes, p.options("CAPE", len(codes)))
	if err != nil {
		return res, fmt.Errorf("collecting CAPEs: %w", err)
	}
	res.CourseEvaluations = capes
	res.CapeElapsed = time.Since(start)
	logrus.WithFields(logrus.Fields{
		"records": len(capes),
		"elapsed": res.CapeElapsed.Round(time.Millisecond),
	}).Info("Collected CAPEs")

	// 5.
	if err := p.Exporter.SaveCourseEvaluations(ctx, capes); err != nil {
		return res, fmt.Errorf("exporting CAPEs: %w", err)
	}

	return res, nil
}
