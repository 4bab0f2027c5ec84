package scrape

// CourseCode identifies a course independent of term or instructor, and is
// the join key between grade distributions and CAPEs.
type CourseCode struct {
	Subject string
	Course  string
}

func (c CourseCode) String() string {
	return c.Subject + " " + c.Course
}

// DeriveCourseCodes collects the distinct course codes in the order they
// first appear.
func DeriveCourseCodes(grades []GradeDistribution) []CourseCode {
	seen := make(map[CourseCode]bool)
	var codes []CourseCode
	for _, row := range grades {
		code := row.Code()
		if _, found := seen[code]; !found {
			codes = append(codes, code)
			seen[code] = true
		}
	}
	return codes
}
