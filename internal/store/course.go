package store

import (
	"context"

	"github.com/phrazzld/gpa-ledger/internal/domain"
)

// CourseStore defines the interface for course persistence.
type CourseStore interface {
	// Create inserts a course and sets its ID and CreatedAt.
	// Returns a domain.ValidationError if the course is invalid.
	Create(ctx context.Context, course *domain.Course) error

	// CreateBatch inserts all courses in a single transaction. Either every
	// course is stored or none is.
	CreateBatch(ctx context.Context, courses []*domain.Course) error

	// GetAll returns every course, most recently created first.
	GetAll(ctx context.Context) ([]*domain.Course, error)

	// GetByID retrieves a course by ID.
	// Returns ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Course, error)

	// Search returns courses whose name or code contains query,
	// case-insensitively, most recently created first.
	Search(ctx context.Context, query string) ([]*domain.Course, error)

	// Count returns the number of stored courses.
	Count(ctx context.Context) (int, error)

	// Update replaces every field of the course with the given ID.
	// Returns ErrCourseNotFound if the course does not exist.
	Update(ctx context.Context, id int64, course *domain.Course) error

	// UpdateGrade changes the grade of a course and recomputes its grade points.
	// Returns ErrCourseNotFound if the course does not exist.
	UpdateGrade(ctx context.Context, id int64, grade domain.Grade) error

	// Delete removes the course with the given ID.
	// Returns ErrCourseNotFound if the course does not exist.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every course atomically.
	DeleteAll(ctx context.Context) error

	// ExportJSON serializes all courses as a JSON array.
	ExportJSON(ctx context.Context) (string, error)

	// ImportJSON decodes a JSON array of courses and inserts them all-or-nothing.
	// Returns a domain.ValidationError if the document or any course is invalid.
	ImportJSON(ctx context.Context, data string) ([]*domain.Course, error)
}
