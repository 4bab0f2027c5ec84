package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseEvaluations(t *testing.T) {
	doc := mustDoc(t, capePage(
		capeRow("Marx, Susan S", "CSE 3 - Fluency/Information Technology (A)", "FA15"),
		capeRow("Someone, Else", "CSE 3A - Cross Listed Thing (A)", "FA15"),
		tableRow("", "No CAPEs submitted"),
		tableRow("Doe, Jane", "CSE 3 - Fluency/Information Technology (B)", "WI15",
			"40", "10", "100%", "90%", "3.5", "N/A", "A (4.0)"),
	))

	rows, err := ParseCourseEvaluations(doc, CourseCode{"CSE", "3"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "Marx, Susan S", first.Instructor)
	assert.Equal(t, "FA15", first.Term)
	assert.Equal(t, "CSE", first.Subject)
	assert.Equal(t, "3", first.Course)
	assert.Equal(t, "Fluency/Information Technology", first.Title)
	assert.Equal(t, 162, first.Enroll)
	assert.Equal(t, 65, first.EvalsMade)
	assert.InDelta(t, 0.919, first.RecommendClass, 1e-9)
	assert.InDelta(t, 0.71, first.RecommendInstructor, 1e-9)
	assert.InDelta(t, 4.07, first.StudyHoursPerWeek, 1e-9)
	assert.True(t, first.AvgGpaExpected.Valid)
	assert.Equal(t, 3.61, first.AvgGpaExpected.Float64)
	assert.Equal(t, 3.72, first.AvgGpaReceived.Float64)

	second := rows[1]
	assert.Equal(t, "Doe, Jane", second.Instructor)
	assert.False(t, second.AvgGpaExpected.Valid)
	assert.True(t, second.AvgGpaReceived.Valid)
	assert.Equal(t, 4.0, second.AvgGpaReceived.Float64)

	for _, row := range rows {
		assert.Equal(t, CourseCode{"CSE", "3"}, row.Code())
	}
}

func TestParseCourseEvaluations_NoData(t *testing.T) {
	rows, err := ParseCourseEvaluations(mustDoc(t, emptyCapePage), CourseCode{"CSE", "3"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCourseEvaluations_OnlyNoCapesSubmitted(t *testing.T) {
	doc := mustDoc(t, capePage(tableRow("Marx, Susan S", "No CAPEs submitted", "FA15")))
	rows, err := ParseCourseEvaluations(doc, CourseCode{"CSE", "3"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCourseEvaluations_MalformedCourseCell(t *testing.T) {
	doc := mustDoc(t, capePage(capeRow("Marx, Susan S", "CSE3-Title", "FA15")))
	rows, err := ParseCourseEvaluations(doc, CourseCode{"CSE", "3"})
	assert.Nil(t, rows)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "subject/course/title", fieldErr.Field)
	assert.Equal(t, "CSE3-Title", fieldErr.Text)
	assert.Equal(t, CourseCode{"CSE", "3"}, fieldErr.Code)
	assert.Contains(t, err.Error(), "CSE 3")
}

func TestParseCourseEvaluations_MalformedGpa(t *testing.T) {
	row := tableRow("Doe, Jane", "CSE 3 - Fluency (A)", "WI15",
		"40", "10", "100%", "90%", "3.5", "B+ 3.61", "N/A")
	_, err := ParseCourseEvaluations(mustDoc(t, capePage(row)), CourseCode{"CSE", "3"})

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "avgGPAExpected", fieldErr.Field)
	assert.Len(t, fieldErr.Row, 10)
}

func TestParseCourseEvaluations_MissingKey(t *testing.T) {
	for _, tc := range []struct {
		instructor, term, field string
	}{
		{"", "FA15", "instructor"},
		{"Marx, Susan S", "", "term"},
	} {
		t.Run(tc.field, func(t *testing.T) {
			doc := mustDoc(t, capePage(capeRow(tc.instructor, "CSE 3 - Fluency (A)", tc.term)))
			rows, err := ParseCourseEvaluations(doc, CourseCode{"CSE", "3"})
			assert.Nil(t, rows)

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tc.field, fieldErr.Field)
			assert.Equal(t, CourseCode{"CSE", "3"}, fieldErr.Code)
		})
	}
}

func TestParseCourseEvaluations_SiblingCourseIgnoredBeforeNumbers(t *testing.T) {
	// Rows for other courses are dropped before their numbers are read
	row := tableRow("Doe, Jane", "CSE 30 - Other (A)", "WI15",
		"??", "??", "??", "??", "??", "??", "??")
	rows, err := ParseCourseEvaluations(mustDoc(t, capePage(row)), CourseCode{"CSE", "3"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCourseEvaluations_WrongShape(t *testing.T) {
	doc := mustDoc(t, capePage(tableRow("Doe, Jane", "CSE 3 - Fluency (A)", "WI15")))
	_, err := ParseCourseEvaluations(doc, CourseCode{"CSE", "3"})

	var structErr *StructureError
	require.True(t, errors.As(err, &structErr))
}

func TestGetCourseEvaluations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("CourseNumber") {
		case "CSE 3":
			_, _ = w.Write([]byte(capePage(
				capeRow("Marx, Susan S", "CSE 3 - Fluency/Information Technology (A)", "FA15"),
				capeRow("Other, Person", "CSE 3A - Something Else (A)", "FA15"),
			)))
		case "MATH 20A":
			_, _ = w.Write([]byte(capePage(
				capeRow("Doe, Jane", "MATH 20A - Calculus (A)", "FA15"),
				capeRow("Roe, Rick", "MATH 20A - Calculus (B)", "WI16"),
			)))
		default:
			_, _ = w.Write([]byte(emptyCapePage))
		}
	}))
	defer server.Close()

	client := newTestClient(t, Sources{Cape: server.URL + "/Results.aspx?Name=&CourseNumber="})
	codes := []CourseCode{{"CSE", "3"}, {"MATH", "20A"}, {"BILD", "1"}}

	var ticks int32
	rows, err := client.GetCourseEvaluations(context.Background(), codes, CollectOptions{
		Limit:      2,
		OnItemDone: func() { addInt32(&ticks) },
	})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, int32(3), ticks)

	byCode := map[CourseCode]int{}
	for _, row := range rows {
		byCode[row.Code()]++
	}
	assert.Equal(t, map[CourseCode]int{{"CSE", "3"}: 1, {"MATH", "20A"}: 2}, byCode)
}
