package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// WeightedPoints returns the course credit multiplied by the grade points of
// its grade, looked up from the fixed scale.
func WeightedPoints(c *Course) float64 {
	return c.Credit * GradePoints(c.Grade)
}

// Aggregate computes the credit-weighted GPA and the total credits of courses.
// An empty input, or one whose credits sum to zero, yields a GPA of 0.
// Sums are accumulated in decimal so that credits such as 0.1 and 0.2 add up
// exactly; the final division is not rounded.
func Aggregate(courses []*Course) (gpa, totalCredits float64) {
	weighted := decimal.Zero
	total := decimal.Zero
	for _, c := range courses {
		credit := decimal.NewFromFloat(c.Credit)
		total = total.Add(credit)
		weighted = weighted.Add(credit.Mul(decimal.NewFromFloat(GradePoints(c.Grade))))
	}
	totalCredits = total.InexactFloat64()
	if total.IsPositive() {
		gpa = weighted.InexactFloat64() / totalCredits
	}
	return gpa, totalCredits
}

// TotalCredits sums the credits of courses in decimal.
func TotalCredits(courses []*Course) float64 {
	total := decimal.Zero
	for _, c := range courses {
		total = total.Add(decimal.NewFromFloat(c.Credit))
	}
	return total.InexactFloat64()
}

// FormatGPA renders a GPA with two decimal places.
func FormatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', 2, 64)
}

// FormatCredits renders a credit amount with one decimal place.
func FormatCredits(credits float64) string {
	return strconv.FormatFloat(credits, 'f', 1, 64)
}

// QualityPoints sums the weighted points of courses in decimal.
func QualityPoints(courses []*Course) float64 {
	sum := decimal.Zero
	for _, c := range courses {
		sum = sum.Add(decimal.NewFromFloat(c.Credit).Mul(decimal.NewFromFloat(GradePoints(c.Grade))))
	}
	return sum.InexactFloat64()
}

// FormatQualityPoints renders quality points with two decimal places.
func FormatQualityPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', 2, 64)
}
