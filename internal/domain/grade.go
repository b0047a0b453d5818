package domain

// Grade is a letter grade on the 13-step scale.
type Grade string

// Grade values, best to worst.
const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeDPlus  Grade = "D+"
	GradeD      Grade = "D"
	GradeDMinus Grade = "D-"
	GradeF      Grade = "F"
)

// GradePoint pairs a letter grade with its grade-point value.
type GradePoint struct {
	Grade  Grade
	Points float64
}

// gradeScale is ordered best to worst with strictly decreasing points.
// Lookups scan it in order and the first match wins.
var gradeScale = [...]GradePoint{
	{GradeAPlus, 4.3},
	{GradeA, 4.0},
	{GradeAMinus, 3.7},
	{GradeBPlus, 3.3},
	{GradeB, 3.0},
	{GradeBMinus, 2.7},
	{GradeCPlus, 2.3},
	{GradeC, 2.0},
	{GradeCMinus, 1.7},
	{GradeDPlus, 1.3},
	{GradeD, 1.0},
	{GradeDMinus, 0.7},
	{GradeF, 0.0},
}

// GradeScale returns a copy of the scale, best grade first.
func GradeScale() []GradePoint {
	out := make([]GradePoint, len(gradeScale))
	copy(out, gradeScale[:])
	return out
}

// Valid reports whether g is on the scale.
func (g Grade) Valid() bool {
	for _, gp := range gradeScale {
		if gp.Grade == g {
			return true
		}
	}
	return false
}
