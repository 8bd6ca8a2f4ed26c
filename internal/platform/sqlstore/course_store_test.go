package sqlstore_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/platform/sqlstore"
	"github.com/phrazzld/gpa-ledger/internal/store"
	"github.com/phrazzld/gpa-ledger/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLCourseStore_CreateAssignsIDAndTimestamp(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	c := course("Data Structures", "CS210", 3, domain.GradeAMinus)
	require.NoError(t, s.Create(ctx, c))

	assert.Positive(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := s.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", got.Name)
	assert.Equal(t, "CS210", got.Code)
	assert.Equal(t, 3.0, got.Credit)
	assert.Equal(t, "Dr. Primary", got.InstructorPrimary)
	assert.Equal(t, "Dr. Secondary", got.InstructorSecondary)
	assert.Equal(t, domain.GradeAMinus, got.Grade)
	assert.Equal(t, 3.50, got.GradePoints())
	assert.WithinDuration(t, c.CreatedAt, got.CreatedAt, 0)
}

func TestSQLCourseStore_CreateRejectsInvalidCourse(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		course *domain.Course
		field  string
	}{
		{"empty name", course(" ", "CS1", 3, domain.GradeA), "name"},
		{"empty code", course("Intro", "", 3, domain.GradeA), "code"},
		{"zero credit", course("Intro", "CS1", 0, domain.GradeA), "credit"},
		{"bad grade", course("Intro", "CS1", 3, domain.Grade("E")), "grade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Create(ctx, tt.course)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLCourseStore_GetAllMostRecentFirst(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	for _, code := range []string{"C1", "C2", "C3"} {
		require.NoError(t, s.Create(ctx, course("Course "+code, code, 1, domain.GradeB)))
	}

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "C3", all[0].Code)
	assert.Equal(t, "C2", all[1].Code)
	assert.Equal(t, "C1", all[2].Code)
}

func TestSQLCourseStore_GetAllEmpty(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)

	all, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSQLCourseStore_GetByIDNotFound(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)

	_, err := s.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrCourseNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestSQLCourseStore_Search(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, course("Linear Algebra", "MATH221", 4, domain.GradeA)))
	require.NoError(t, s.Create(ctx, course("Operating Systems", "CS350", 3, domain.GradeB)))
	require.NoError(t, s.Create(ctx, course("100% Effort", "PE_101", 1, domain.GradeAPlus)))

	tests := []struct {
		query string
		codes []string
	}{
		{"algebra", []string{"MATH221"}},
		{"cs", []string{"CS350"}},
		{"SYSTEMS", []string{"CS350"}},
		{"%", []string{"PE_101"}},
		{"_", []string{"PE_101"}},
		{"nothing", []string{}},
		{"", []string{"PE_101", "CS350", "MATH221"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			found, err := s.Search(ctx, tt.query)
			require.NoError(t, err)
			codes := make([]string, 0, len(found))
			for _, c := range found {
				codes = append(codes, c.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestSQLCourseStore_UpdateReplacesRow(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	c := course("Physics", "PHY101", 3, domain.GradeC)
	require.NoError(t, s.Create(ctx, c))

	replacement := domain.NewCourse("Physics I", "PHY111", 4, "Feynman", "", domain.GradeBPlus)
	require.NoError(t, s.Update(ctx, c.ID, replacement))
	assert.Equal(t, c.ID, replacement.ID)

	got, err := s.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Physics I", got.Name)
	assert.Equal(t, "PHY111", got.Code)
	assert.Equal(t, 4.0, got.Credit)
	assert.Equal(t, "Feynman", got.InstructorPrimary)
	assert.Empty(t, got.InstructorSecondary)
	assert.Equal(t, 3.25, got.GradePoints())

	err = s.Update(ctx, 999, replacement)
	assert.ErrorIs(t, err, store.ErrCourseNotFound)
}

func TestSQLCourseStore_UpdateGrade(t *testing.T) {
	db := testdb.OpenSQLite(t)
	s := sqlstore.NewSQLCourseStore(db, nil)
	ctx := context.Background()

	c := course("Chemistry", "CHEM101", 3, domain.GradeF)
	require.NoError(t, s.Create(ctx, c))

	require.NoError(t, s.UpdateGrade(ctx, c.ID, domain.GradeAPlus))

	got, err := s.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GradeAPlus, got.Grade)
	assert.Equal(t, 4.0, got.GradePoints())

	var stored float64
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT grade_points FROM courses WHERE id = $1", c.ID).Scan(&stored))
	assert.Equal(t, 4.0, stored)

	assert.ErrorIs(t, s.UpdateGrade(ctx, c.ID, domain.Grade("Z")), domain.ErrValidation)
	assert.ErrorIs(t, s.UpdateGrade(ctx, 999, domain.GradeA), store.ErrCourseNotFound)
}

func TestSQLCourseStore_Delete(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	c := course("History", "HIS100", 2, domain.GradeB)
	require.NoError(t, s.Create(ctx, c))

	require.NoError(t, s.Delete(ctx, c.ID))
	assert.ErrorIs(t, s.Delete(ctx, c.ID), store.ErrCourseNotFound)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLCourseStore_DeleteAll(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	for _, code := range []string{"A1", "A2"} {
		require.NoError(t, s.Create(ctx, course("Course", code, 3, domain.GradeA)))
	}

	require.NoError(t, s.DeleteAll(ctx))
	require.NoError(t, s.DeleteAll(ctx), "deleting from an empty table succeeds")

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLCourseStore_CreateBatchIsAllOrNothing(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	good := course("Good", "G1", 3, domain.GradeA)
	bad := course("Bad", "", 3, domain.GradeA)

	err := s.CreateBatch(ctx, []*domain.Course{good, bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, good.ID)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	batch := []*domain.Course{course("One", "B1", 1, domain.GradeA), course("Two", "B2", 2, domain.GradeB)}
	require.NoError(t, s.CreateBatch(ctx, batch))
	for _, c := range batch {
		assert.Positive(t, c.ID)
	}

	require.NoError(t, s.CreateBatch(ctx, nil))
}

func TestSQLCourseStore_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)

	require.NoError(t, src.Create(ctx, course("Compilers", "CS440", 3, domain.GradeA)))
	require.NoError(t, src.Create(ctx, course("Networks", "CS456", 4, domain.GradeCPlus)))
	require.NoError(t, src.Create(ctx, course("Ethics", "PHI120", 1.5, domain.GradeD)))

	exported, err := src.ExportJSON(ctx)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(exported), &raw))
	require.Len(t, raw, 3)
	assert.Equal(t, "PHI120", raw[0]["courseCode"])
	assert.Equal(t, 2.0, raw[0]["gradePoints"])
	for _, key := range []string{"courseName", "courseCode", "courseCredit", "teacher1Name", "teacher2Name", "grade", "gradePoints"} {
		assert.Contains(t, raw[0], key)
	}

	dst := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	imported, err := dst.ImportJSON(ctx, exported)
	require.NoError(t, err)
	assert.Len(t, imported, 3)

	reexported, err := dst.ExportJSON(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, exported, reexported)
}

func TestSQLCourseStore_ExportEmpty(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)

	exported, err := s.ExportJSON(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, exported)
}

func TestSQLCourseStore_ImportRejectsBadDocuments(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		data string
	}{
		{"malformed", `[{"courseName": }]`},
		{"not an array", `{"courseName": "X"}`},
		{"null entry", `[null]`},
		{"second entry invalid", `[
			{"courseName":"Ok","courseCode":"OK1","courseCredit":3,"grade":"A"},
			{"courseName":"Bad","courseCode":"BAD1","courseCredit":-1,"grade":"A"}
		]`},
		{"unknown grade", `[{"courseName":"X","courseCode":"X1","courseCredit":3,"grade":"Q"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ImportJSON(ctx, tt.data)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "failed imports must not insert anything")
}

func TestSQLCourseStore_ImportRecomputesGradePoints(t *testing.T) {
	s := sqlstore.NewSQLCourseStore(testdb.OpenSQLite(t), nil)
	ctx := context.Background()

	imported, err := s.ImportJSON(ctx,
		`[{"courseName":"Art","courseCode":"ART1","courseCredit":2,"teacher1Name":"Kahlo","grade":"B","gradePoints":4}]`)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, 3.0, imported[0].GradePoints())

	got, err := s.GetByID(ctx, imported[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.GradePoints())
	assert.Equal(t, "Kahlo", got.InstructorPrimary)
}

func TestSQLCourseStore_ReopensAfterClose(t *testing.T) {
	db := testdb.OpenSQLite(t)
	s := sqlstore.NewSQLCourseStore(db, nil)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, course("Music", "MUS100", 1, domain.GradeA)))
	require.NoError(t, db.Close())

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLCourseStore_WithTx(t *testing.T) {
	db := testdb.OpenSQLite(t)
	s := sqlstore.NewSQLCourseStore(db, nil)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txStore := s.WithTx(tx)
	require.NoError(t, txStore.CreateBatch(ctx, []*domain.Course{course("Tx", "TX1", 1, domain.GradeA)}))
	require.NoError(t, tx.Rollback())

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLCourseStore_WithTxRollsBack(t *testing.T) {
	h := testdb.OpenSQLite(t)
	base := sqlstore.NewSQLCourseStore(h, nil)
	ctx := context.Background()

	testdb.WithTx(t, h, func(t *testing.T, tx *sql.Tx) {
		s := base.WithTx(tx)
		require.NoError(t, s.CreateBatch(ctx, []*domain.Course{
			course("Algebra", "MA101", 3, domain.GradeA),
			course("Calculus", "MA102", 4, domain.GradeB),
		}))

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	n, err := base.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
