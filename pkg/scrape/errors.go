package scrape

import (
	"fmt"
	"net/http"
	"strings"
)

// FetchError is a transport failure or a non-success response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("failed to fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StructureError means a page no longer has the shape we expect: a missing
// summary or marker, or a table row with the wrong number of cells.
type StructureError struct {
	URL  string
	What string
	Text string
}

func (e *StructureError) Error() string {
	msg := "unexpected page structure: " + e.What
	if e.Text != "" {
		msg += fmt.Sprintf(" (text=%q)", e.Text)
	}
	if e.URL != "" {
		msg += " at " + e.URL
	}
	return msg
}

// FieldError is a single cell that doesn't match its expected sub-format.
type FieldError struct {
	Field string
	Text  string
	Code  CourseCode
	Row   []string
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("could not parse %s from %q", e.Field, e.Text)
	if e.Code != (CourseCode{}) {
		msg += " for course " + e.Code.String()
	}
	if len(e.Row) > 0 {
		msg += " in row [" + strings.Join(e.Row, " | ") + "]"
	}
	return msg
}
