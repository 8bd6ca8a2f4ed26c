package sqlstore_test

import (
	"github.com/phrazzld/gpa-ledger/internal/domain"
)

func course(name, code string, credit float64, grade domain.Grade) *domain.Course {
	return domain.NewCourse(name, code, credit, "Dr. Primary", "Dr. Secondary", grade)
}
