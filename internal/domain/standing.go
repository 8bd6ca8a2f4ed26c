package domain

// AcademicStanding describes the performance band a GPA falls into.
type AcademicStanding struct {
	Label   string
	Letter  string
	Message string
}

// String renders the standing as "Label (Letter)", or just the label when
// the band has no letter.
func (s AcademicStanding) String() string {
	if s.Letter == "" {
		return s.Label
	}
	return s.Label + " (" + s.Letter + ")"
}

var standingBands = []struct {
	min      float64
	standing AcademicStanding
}{
	{3.5, AcademicStanding{"Excellent", "A", "Outstanding academic performance. Keep up the excellent work!"}},
	{3.0, AcademicStanding{"Good", "B", "Good academic performance. You are on the right track."}},
	{2.0, AcademicStanding{"Average", "C", "Satisfactory performance. There is room for improvement."}},
}

var belowAverage = AcademicStanding{"Below Average", "", "Your GPA needs attention. Consider seeking academic support."}

// Standing returns the band for gpa. Each lower bound is inclusive.
func Standing(gpa float64) AcademicStanding {
	for _, b := range standingBands {
		if gpa >= b.min {
			return b.standing
		}
	}
	return belowAverage
}
