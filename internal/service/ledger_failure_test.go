package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/mocks"
	"github.com/phrazzld/gpa-ledger/internal/service"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

var errDiskFull = store.NewStoreError("course", "create", "write failed", errors.New("disk full"))

func seeded(id int64, code string, credit float64) *domain.Course {
	c := domain.NewCourse("Course "+code, code, credit, "P", "S", domain.GradeA)
	c.ID = id
	return c
}

func newMockLedger(t *testing.T, existing ...*domain.Course) (*service.Ledger, *mocks.MockCourseStore, *mocks.MockCalculationStore) {
	t.Helper()

	courses := mocks.NewMockCourseStore()
	calcs := mocks.NewMockCalculationStore()

	// The store lists newest first.
	newestFirst := make([]*domain.Course, len(existing))
	for i, c := range existing {
		newestFirst[len(existing)-1-i] = c
	}
	courses.On("GetAll", mock.Anything).Return(newestFirst, nil).Once()

	l, err := service.NewLedger(context.Background(), courses, calcs, nil)
	require.NoError(t, err)
	return l, courses, calcs
}

func TestNewLedger_LoadFailure(t *testing.T) {
	courses := mocks.NewMockCourseStore()
	courses.On("GetAll", mock.Anything).Return(nil, errDiskFull)

	_, err := service.NewLedger(context.Background(), courses, mocks.NewMockCalculationStore(), nil)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestNewLedger_RequiresStores(t *testing.T) {
	_, err := service.NewLedger(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}

func TestAddCourse_PersistenceFailureLeavesStateUnchanged(t *testing.T) {
	l, courses, _ := newMockLedger(t, seeded(1, "C1", 3))
	ctx := context.Background()

	_, err := l.SetTarget(ctx, 6)
	require.NoError(t, err)

	courses.On("Create", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(errDiskFull).Once()

	_, err = l.AddCourse(ctx, input("C2", "3", "A"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "add course", perr.Operation)

	assert.Equal(t, 3.0, l.CurrentCredits())
	assert.Len(t, l.Courses(), 1)
	assert.Equal(t, service.StateOpen, l.State())

	courses.On("Create", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(nil).Once()
	added, err := l.AddCourse(ctx, input("C2", "3", "A"))
	require.NoError(t, err)
	assert.Positive(t, added.ID)
	assert.Equal(t, service.StateFulfilled, l.State())

	courses.AssertExpectations(t)
}

func TestAddCourse_ValidationNeverReachesStore(t *testing.T) {
	l, courses, _ := newMockLedger(t)
	ctx := context.Background()

	_, err := l.SetTarget(ctx, 6)
	require.NoError(t, err)

	_, err = l.AddCourse(ctx, input("", "3", "A"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = l.AddCourse(ctx, input("C1", "9", "A"))
	assert.ErrorIs(t, err, domain.ErrCapacity)

	courses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCalculate_PersistenceFailure(t *testing.T) {
	l, _, calcs := newMockLedger(t, seeded(1, "C1", 3))
	ctx := context.Background()

	_, err := l.SetTarget(ctx, 3)
	require.NoError(t, err)

	calcs.On("Create", mock.Anything, mock.Anything).Return(errDiskFull).Once()

	_, err = l.Calculate(ctx)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 3.0, l.CurrentCredits())
	assert.Equal(t, 3.0, l.Target())
	assert.Equal(t, service.StateFulfilled, l.State())
}

func TestClearAll_PersistenceFailure(t *testing.T) {
	l, courses, _ := newMockLedger(t, seeded(1, "C1", 3), seeded(2, "C2", 2))
	ctx := context.Background()

	courses.On("DeleteAll", mock.Anything).Return(errDiskFull).Once()

	err := l.ClearAll(ctx)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Len(t, l.Courses(), 2)
	assert.Equal(t, 5.0, l.CurrentCredits())
}

func TestRemoveCourse_PersistenceFailure(t *testing.T) {
	l, courses, _ := newMockLedger(t, seeded(1, "C1", 3))
	ctx := context.Background()

	courses.On("Delete", mock.Anything, int64(1)).Return(errDiskFull).Once()

	_, err := l.RemoveCourse(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Len(t, l.Courses(), 1)
}

func TestRemoveCourse_StaleViewRefreshFailure(t *testing.T) {
	l, courses, _ := newMockLedger(t, seeded(1, "C1", 3))
	ctx := context.Background()

	courses.On("Delete", mock.Anything, int64(1)).Return(store.ErrCourseNotFound).Once()
	courses.On("GetAll", mock.Anything).Return(nil, errDiskFull).Once()

	_, err := l.RemoveCourse(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestImportJSON_PersistenceFailure(t *testing.T) {
	l, courses, _ := newMockLedger(t)
	ctx := context.Background()

	data := `[{"courseName":"A","courseCode":"A1","courseCredit":1,"grade":"A"}]`
	courses.On("ImportJSON", mock.Anything, data).Return(nil, errDiskFull).Once()

	n, err := l.ImportJSON(ctx, data)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, n)
	assert.Empty(t, l.Courses())
}

func TestEditCourse_PersistenceFailure(t *testing.T) {
	l, courses, _ := newMockLedger(t, seeded(1, "C1", 3))
	ctx := context.Background()

	courses.On("Update", mock.Anything, int64(1), mock.Anything).Return(errDiskFull).Once()

	_, err := l.EditCourse(ctx, 1, input("C1X", "2", "B"))
	assert.ErrorIs(t, err, domain.ErrPersistence)

	c := l.Courses()[0]
	assert.Equal(t, "C1", c.Code)
	assert.Equal(t, 3.0, c.Credit)
}

func TestRegrade_PersistenceFailure(t *testing.T) {
	l, courses, _ := newMockLedger(t, seeded(1, "C1", 3))
	ctx := context.Background()

	courses.On("UpdateGrade", mock.Anything, int64(1), domain.GradeF).Return(errDiskFull).Once()

	_, err := l.Regrade(ctx, 1, "F")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, domain.GradeA, l.Courses()[0].Grade)
}

func TestReadOperations_PersistenceFailure(t *testing.T) {
	l, courses, calcs := newMockLedger(t)
	ctx := context.Background()

	courses.On("ExportJSON", mock.Anything).Return("", errDiskFull).Once()
	courses.On("Search", mock.Anything, "x").Return(nil, errDiskFull).Once()
	calcs.On("History", mock.Anything, service.DefaultHistoryLimit).Return(nil, errDiskFull).Once()
	calcs.On("GetByID", mock.Anything, int64(1)).Return(nil, errDiskFull).Once()
	calcs.On("Delete", mock.Anything, int64(1)).Return(errDiskFull).Once()

	_, err := l.ExportJSON(ctx)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	_, err = l.Search(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	_, err = l.History(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	_, err = l.Calculation(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, l.DeleteCalculation(ctx, 1), domain.ErrPersistence)

	courses.AssertExpectations(t)
	calcs.AssertExpectations(t)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unset", service.StateUnset.String())
	assert.Equal(t, "open", service.StateOpen.String())
	assert.Equal(t, "fulfilled", service.StateFulfilled.String())
	assert.Equal(t, "over_target", service.StateOverTarget.String())
	assert.Equal(t, "state(9)", service.State(9).String())
}
