package domain

import "strings"

// Grade is a letter grade from the fixed grading scale.
type Grade string

// Letter grades accepted by the ledger.
const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
)

// gradeScale maps each letter grade to its grade points.
var gradeScale = map[Grade]float64{
	GradeAPlus:  4.00,
	GradeA:      3.75,
	GradeAMinus: 3.50,
	GradeBPlus:  3.25,
	GradeB:      3.00,
	GradeBMinus: 2.75,
	GradeCPlus:  2.50,
	GradeC:      2.25,
	GradeD:      2.00,
	GradeF:      0.00,
}

// Grades returns the letter grades in descending order of grade points.
func Grades() []Grade {
	return []Grade{
		GradeAPlus, GradeA, GradeAMinus,
		GradeBPlus, GradeB, GradeBMinus,
		GradeCPlus, GradeC, GradeD, GradeF,
	}
}

// ParseGrade converts user input into a Grade. Surrounding whitespace is
// ignored and letters are matched case-insensitively.
func ParseGrade(s string) (Grade, bool) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	return g, g.Valid()
}

// Valid reports whether g is one of the fixed letter grades.
func (g Grade) Valid() bool {
	_, ok := gradeScale[g]
	return ok
}

// String returns the letter form of the grade.
func (g Grade) String() string {
	return string(g)
}

// GradePoints returns the grade points for g. Unrecognized grades are worth 0.
func GradePoints(g Grade) float64 {
	if points, ok := gradeScale[g]; ok {
		return points
	}
	return 0.0
}
