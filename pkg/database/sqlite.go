package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/bigquery"
	"github.com/go-gorp/gorp/v3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/openswoop/tritondata/pkg/persist"
	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/sirupsen/logrus"
)

const (
	GradeDistTable = "grade_distributions"
	CapeTable      = "capes"
)

type Sqlite struct {
	db    *sql.DB
	dbmap *gorp.DbMap
}

func NewSqlite(file string) (*Sqlite, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Initialize the database connection
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Initialize the database mapping, creating the tables if it's our first run
	dbmap := &gorp.DbMap{Db: db, Dialect: gorp.SqliteDialect{}, TypeConverter: nullFloatConverter{}}
	dbmap.AddTableWithName(scrape.GradeDistribution{}, GradeDistTable).
		SetUniqueTogether("term", "subject", "course", "instructor")
	dbmap.AddTableWithName(scrape.CourseEvaluation{}, CapeTable).
		SetUniqueTogether("term", "subject", "course", "instructor", "title", "enroll")
	if err := dbmap.CreateTablesIfNotExists(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to create tables: %w", err)
	}

	return &Sqlite{db: db, dbmap: dbmap}, nil
}

func (s *Sqlite) SaveGradeDistributions(ctx context.Context, grades []scrape.GradeDistribution) error {
	insertData := make([]interface{}, 0, len(grades))
	for i := range grades {
		insertData = append(insertData, &grades[i])
	}
	return s.save(ctx, GradeDistTable, insertData)
}

func (s *Sqlite) SaveCourseEvaluations(ctx context.Context, capes []scrape.CourseEvaluation) error {
	insertData := make([]interface{}, 0, len(capes))
	for i := range capes {
		insertData = append(insertData, &capes[i])
	}
	return s.save(ctx, CapeTable, insertData)
}

func (s *Sqlite) save(ctx context.Context, table string, rows []interface{}) error {
	tx, err := s.dbmap.Begin()
	if err != nil {
		return err
	}
	tx = tx.WithContext(ctx).(*gorp.Transaction)

	ignored := 0
	insert := persist.InsertIgnoringDupes(tx, &ignored)
	for _, row := range rows {
		if err := insert.Insert(row); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"table":    table,
		"inserted": len(rows) - ignored,
		"ignored":  ignored,
	}).Info("Saved to database")
	return nil
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}

// nullFloatConverter stores bigquery.NullFloat64 as a nullable REAL
type nullFloatConverter struct{}

func (nullFloatConverter) ToDb(val interface{}) (interface{}, error) {
	if n, ok := val.(bigquery.NullFloat64); ok {
		if !n.Valid {
			return nil, nil
		}
		return n.Float64, nil
	}
	return val, nil
}

func (nullFloatConverter) FromDb(target interface{}) (gorp.CustomScanner, bool) {
	if _, ok := target.(*bigquery.NullFloat64); !ok {
		return gorp.CustomScanner{}, false
	}
	binder := func(holder, target interface{}) error {
		n := holder.(*sql.NullFloat64)
		*target.(*bigquery.NullFloat64) = bigquery.NullFloat64{Float64: n.Float64, Valid: n.Valid}
		return nil
	}
	return gorp.CustomScanner{Holder: new(sql.NullFloat64), Target: target, Binder: binder}, true
}
