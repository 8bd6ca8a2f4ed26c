package mocks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

// MockCourseStore is a mock of store.CourseStore for use with testify/mock
type MockCourseStore struct {
	mock.Mock
	nextID atomic.Int64
}

// NewMockCourseStore creates a MockCourseStore.
func NewMockCourseStore() *MockCourseStore {
	return &MockCourseStore{}
}

// Ensure MockCourseStore implements store.CourseStore interface
var _ store.CourseStore = (*MockCourseStore)(nil)

func (m *MockCourseStore) assign(c *domain.Course) {
	c.ID = m.nextID.Add(1)
	c.CreatedAt = time.Now().UTC()
}

// Create is a mock implementation of store.CourseStore.Create
func (m *MockCourseStore) Create(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	if err := args.Error(0); err != nil {
		return err
	}
	m.assign(course)
	return nil
}

// CreateBatch is a mock implementation of store.CourseStore.CreateBatch
func (m *MockCourseStore) CreateBatch(ctx context.Context, courses []*domain.Course) error {
	args := m.Called(ctx, courses)
	if err := args.Error(0); err != nil {
		return err
	}
	for _, c := range courses {
		m.assign(c)
	}
	return nil
}

// GetAll is a mock implementation of store.CourseStore.GetAll
func (m *MockCourseStore) GetAll(ctx context.Context) ([]*domain.Course, error) {
	args := m.Called(ctx)
	if courses, ok := args.Get(0).([]*domain.Course); ok {
		return courses, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByID is a mock implementation of store.CourseStore.GetByID
func (m *MockCourseStore) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if course, ok := args.Get(0).(*domain.Course); ok {
		return course, args.Error(1)
	}
	return nil, args.Error(1)
}

// Search is a mock implementation of store.CourseStore.Search
func (m *MockCourseStore) Search(ctx context.Context, query string) ([]*domain.Course, error) {
	args := m.Called(ctx, query)
	if courses, ok := args.Get(0).([]*domain.Course); ok {
		return courses, args.Error(1)
	}
	return nil, args.Error(1)
}

// Count is a mock implementation of store.CourseStore.Count
func (m *MockCourseStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Update is a mock implementation of store.CourseStore.Update
func (m *MockCourseStore) Update(ctx context.Context, id int64, course *domain.Course) error {
	args := m.Called(ctx, id, course)
	if err := args.Error(0); err != nil {
		return err
	}
	course.ID = id
	return nil
}

// UpdateGrade is a mock implementation of store.CourseStore.UpdateGrade
func (m *MockCourseStore) UpdateGrade(ctx context.Context, id int64, grade domain.Grade) error {
	args := m.Called(ctx, id, grade)
	return args.Error(0)
}

// Delete is a mock implementation of store.CourseStore.Delete
func (m *MockCourseStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DeleteAll is a mock implementation of store.CourseStore.DeleteAll
func (m *MockCourseStore) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ExportJSON is a mock implementation of store.CourseStore.ExportJSON
func (m *MockCourseStore) ExportJSON(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ImportJSON is a mock implementation of store.CourseStore.ImportJSON
func (m *MockCourseStore) ImportJSON(ctx context.Context, data string) ([]*domain.Course, error) {
	args := m.Called(ctx, data)
	if courses, ok := args.Get(0).([]*domain.Course); ok {
		return courses, args.Error(1)
	}
	return nil, args.Error(1)
}
