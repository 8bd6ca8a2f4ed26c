package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/platform/sqlstore"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

func newMock(t *testing.T) (*sqlstore.SQLCourseStore, *sqlstore.SQLCalculationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlstore.NewSQLCourseStore(db, nil), sqlstore.NewSQLCalculationStore(db, nil), mock
}

func TestSQLCourseStore_CreateFailureIsPersistenceError(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO courses").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})

	c := course("Algebra", "MATH100", 3, domain.GradeA)
	err := courses.Create(context.Background(), c)
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrValidation)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "course", storeErr.Entity)
	assert.Equal(t, "create", storeErr.Operation)
	assert.Zero(t, c.ID)
}

func TestSQLCourseStore_CreateBatchRollsBack(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO courses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectQuery("INSERT INTO courses").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	batch := []*domain.Course{
		course("One", "B1", 1, domain.GradeA),
		course("Two", "B2", 2, domain.GradeB),
	}
	err := courses.CreateBatch(context.Background(), batch)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	for _, c := range batch {
		assert.Zero(t, c.ID)
	}
}

func TestSQLCourseStore_CreateBatchCommitFailure(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO courses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := courses.CreateBatch(context.Background(), []*domain.Course{course("One", "B1", 1, domain.GradeA)})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
}

func TestSQLCourseStore_DeleteAllFailure(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectExec("DELETE FROM courses").WillReturnError(errors.New("database is locked"))

	err := courses.DeleteAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestSQLCourseStore_GetAllScanFailure(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM courses").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "course_name", "course_code", "course_credit",
			"teacher1_name", "teacher2_name", "grade", "created_at",
		}).AddRow(1, "X", "X1", 3.0, nil, nil, "A", "not a timestamp"))

	_, err := courses.GetAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestSQLCourseStore_DeleteRowsAffectedFailure(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectExec("DELETE FROM courses WHERE id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no rows info")))

	err := courses.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestSQLCalculationStore_CreateFailure(t *testing.T) {
	_, calcs, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO calculations").WillReturnError(errors.New("disk full"))

	r := domain.NewCalculationRecord([]*domain.Course{course("X", "X1", 3, domain.GradeA)})
	err := calcs.Create(context.Background(), r)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, r.ID)
}

func TestSQLCalculationStore_CorruptSnapshot(t *testing.T) {
	_, calcs, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM calculations WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "gpa", "total_credits", "total_courses", "courses_json", "calculation_date",
		}).AddRow(1, 3.5, 6.0, 2, "{not json", time.Now()))

	_, err := calcs.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestSQLCourseStore_ConstraintViolationIsValidationError(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO courses").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint})

	err := courses.Create(context.Background(), course("Algebra", "MATH100", 3, domain.GradeA))
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NotErrorIs(t, err, domain.ErrPersistence)
}

func TestSQLCourseStore_CreateBatchConstraintViolation(t *testing.T) {
	courses, _, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO courses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectQuery("INSERT INTO courses").
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "courses_course_credit_check"})
	mock.ExpectRollback()

	batch := []*domain.Course{
		course("One", "B1", 1, domain.GradeA),
		course("Two", "B2", 2, domain.GradeB),
	}
	err := courses.CreateBatch(context.Background(), batch)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrPersistence)
	for _, c := range batch {
		assert.Zero(t, c.ID)
	}
}

func TestSQLCalculationStore_NotNullViolationIsValidationError(t *testing.T) {
	_, calcs, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO calculations").
		WillReturnError(&pgconn.PgError{Code: "23502", ColumnName: "courses_json"})

	r := domain.NewCalculationRecord([]*domain.Course{course("X", "X1", 3, domain.GradeA)})
	err := calcs.Create(context.Background(), r)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, r.ID)
}
