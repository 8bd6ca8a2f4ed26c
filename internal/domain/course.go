package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Course is a single graded course held by the ledger.
//
// Grade points are derived from Grade and are recomputed on every grade
// change; they cannot be set on their own.
type Course struct {
	ID                  int64
	Name                string
	Code                string
	Credit              float64
	InstructorPrimary   string
	InstructorSecondary string
	Grade               Grade
	CreatedAt           time.Time

	gradePoints float64
}

// NewCourse creates a Course and computes its grade points.
// It does not validate; call Validate before persisting.
func NewCourse(name, code string, credit float64, instructorPrimary, instructorSecondary string, grade Grade) *Course {
	c := &Course{
		Name:                name,
		Code:                code,
		Credit:              credit,
		InstructorPrimary:   instructorPrimary,
		InstructorSecondary: instructorSecondary,
	}
	c.SetGrade(grade)
	return c
}

// SetGrade changes the grade and recomputes the grade points.
func (c *Course) SetGrade(g Grade) {
	c.Grade = g
	c.gradePoints = GradePoints(g)
}

// GradePoints returns the grade points earned by the course.
func (c *Course) GradePoints() float64 {
	return c.gradePoints
}

// WeightedPoints returns credit multiplied by grade points.
func (c *Course) WeightedPoints() float64 {
	return WeightedPoints(c)
}

// Clone returns a copy of the course that shares nothing with the original.
func (c *Course) Clone() *Course {
	cp := *c
	return &cp
}

// Validate checks the fields required for a course to be stored.
// Instructor names are not required at this level; the ledger enforces them
// for interactive input only.
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "course name cannot be empty")
	}
	if strings.TrimSpace(c.Code) == "" {
		return NewValidationError("code", "course code cannot be empty")
	}
	if c.Credit <= 0 || math.IsNaN(c.Credit) || math.IsInf(c.Credit, 0) {
		return NewValidationError("credit", "course credit must be a positive number")
	}
	if !c.Grade.Valid() {
		return NewValidationError("grade", "grade must be one of A+, A, A-, B+, B, B-, C+, C, D, F")
	}
	return nil
}

// courseJSON is the exported shape of a course.
type courseJSON struct {
	CourseName   string  `json:"courseName"`
	CourseCode   string  `json:"courseCode"`
	CourseCredit float64 `json:"courseCredit"`
	Teacher1Name string  `json:"teacher1Name"`
	Teacher2Name string  `json:"teacher2Name"`
	Grade        Grade   `json:"grade"`
	GradePoints  float64 `json:"gradePoints"`
}

// MarshalJSON encodes the course in the export shape.
func (c *Course) MarshalJSON() ([]byte, error) {
	return json.Marshal(courseJSON{
		CourseName:   c.Name,
		CourseCode:   c.Code,
		CourseCredit: c.Credit,
		Teacher1Name: c.InstructorPrimary,
		Teacher2Name: c.InstructorSecondary,
		Grade:        c.Grade,
		GradePoints:  c.gradePoints,
	})
}

// UnmarshalJSON decodes the export shape. The gradePoints value in the input
// is ignored and recomputed from the grade.
func (c *Course) UnmarshalJSON(data []byte) error {
	var v courseJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Course{
		Name:                v.CourseName,
		Code:                v.CourseCode,
		Credit:              v.CourseCredit,
		InstructorPrimary:   v.Teacher1Name,
		InstructorSecondary: v.Teacher2Name,
	}
	c.SetGrade(v.Grade)
	return nil
}

// MarshalCourses encodes courses as an indented JSON array.
func MarshalCourses(courses []*Course) ([]byte, error) {
	if courses == nil {
		courses = []*Course{}
	}
	return json.MarshalIndent(courses, "", "  ")
}

// UnmarshalCourses decodes a JSON array of courses and validates every entry.
// It fails as a whole if any entry is malformed.
func UnmarshalCourses(data []byte) ([]*Course, error) {
	var courses []*Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, &ValidationError{Field: "json", Message: "malformed course list", Err: err}
	}
	for i, c := range courses {
		if c == nil {
			return nil, NewValidationError("json", "course list contains null entries")
		}
		if err := c.Validate(); err != nil {
			return nil, &ValidationError{
				Field:   "json",
				Message: fmt.Sprintf("course %d is invalid", i+1),
				Err:     err,
			}
		}
	}
	return courses, nil
}
