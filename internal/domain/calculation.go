package domain

import "time"

// CalculationRecord is an immutable snapshot of a successful GPA calculation.
// Courses are value copies taken at calculation time and carry no store IDs.
type CalculationRecord struct {
	ID           int64
	GPA          float64
	TotalCredits float64
	TotalCourses int
	Courses      []*Course
	CreatedAt    time.Time
}

// NewCalculationRecord aggregates courses into an unsaved CalculationRecord.
// The snapshot is cloned so later changes to courses do not leak into it.
func NewCalculationRecord(courses []*Course) *CalculationRecord {
	gpa, total := Aggregate(courses)
	snapshot := make([]*Course, 0, len(courses))
	for _, c := range courses {
		cp := c.Clone()
		cp.ID = 0
		snapshot = append(snapshot, cp)
	}
	return &CalculationRecord{
		GPA:          gpa,
		TotalCredits: total,
		TotalCourses: len(snapshot),
		Courses:      snapshot,
	}
}

// QualityPoints returns the sum of the weighted points of the snapshot.
func (r *CalculationRecord) QualityPoints() float64 {
	return QualityPoints(r.Courses)
}

// Standing returns the performance band of the recorded GPA.
func (r *CalculationRecord) Standing() AcademicStanding {
	return Standing(r.GPA)
}
