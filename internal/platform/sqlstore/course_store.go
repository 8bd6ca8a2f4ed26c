package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/platform/logger"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

const courseColumns = `id, course_name, course_code, course_credit, teacher1_name, teacher2_name, grade, created_at`

const insertCourseQuery = `
	INSERT INTO courses (course_name, course_code, course_credit, teacher1_name, teacher2_name, grade, grade_points)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at
`

// SQLCourseStore implements the store.CourseStore interface on top of database/sql.
type SQLCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLCourseStore creates a new SQL implementation of the CourseStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLCourseStore(db store.DBTX, logger *slog.Logger) *SQLCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

// Ensure SQLCourseStore implements store.CourseStore interface
var _ store.CourseStore = (*SQLCourseStore)(nil)

// WithTx returns a store that runs every statement inside tx.
func (s *SQLCourseStore) WithTx(tx *sql.Tx) *SQLCourseStore {
	return &SQLCourseStore{db: tx, logger: s.logger}
}

// Create implements store.CourseStore.Create
// The insert and the read-back of the generated ID happen in one statement.
func (s *SQLCourseStore) Create(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("course validation failed during create",
			slog.String("error", err.Error()),
			slog.String("course_code", course.Code))
		return err
	}

	if err := insertCourse(ctx, s.db, course); err != nil {
		log.Error("failed to create course",
			slog.String("error", err.Error()),
			slog.String("course_code", course.Code))
		return writeError("course", "create", "failed to insert course", err)
	}

	log.Info("course created successfully",
		slog.Int64("course_id", course.ID),
		slog.String("course_code", course.Code),
		slog.Float64("credit", course.Credit))
	return nil
}

// CreateBatch implements store.CourseStore.CreateBatch
// Every course is validated before anything is written. When the store is
// not already bound to a transaction the inserts run in a new one.
func (s *SQLCourseStore) CreateBatch(ctx context.Context, courses []*domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, c := range courses {
		if err := c.Validate(); err != nil {
			log.Warn("course validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("course_code", c.Code))
			return err
		}
	}

	if len(courses) == 0 {
		return nil
	}

	insertAll := func(ctx context.Context, db store.DBTX) error {
		for _, c := range courses {
			if err := insertCourse(ctx, db, c); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if beginner, ok := s.db.(store.TxBeginner); ok {
		err = store.RunInTransaction(ctx, beginner, func(ctx context.Context, tx *sql.Tx) error {
			return insertAll(ctx, tx)
		})
	} else {
		err = insertAll(ctx, s.db)
	}

	if err != nil {
		for _, c := range courses {
			c.ID = 0
		}
		log.Error("failed to create course batch",
			slog.String("error", err.Error()),
			slog.Int("count", len(courses)))
		return writeError("course", "create_batch", "failed to insert courses", err)
	}

	log.Info("course batch created successfully", slog.Int("count", len(courses)))
	return nil
}

// GetAll implements store.CourseStore.GetAll
func (s *SQLCourseStore) GetAll(ctx context.Context) ([]*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC, id DESC`

	courses, err := s.queryCourses(ctx, query)
	if err != nil {
		log.Error("failed to load courses", slog.String("error", err.Error()))
		return nil, store.NewStoreError("course", "get_all", "failed to load courses", MapError(err))
	}

	log.Debug("loaded courses", slog.Int("count", len(courses)))
	return courses, nil
}

// GetByID implements store.CourseStore.GetByID
func (s *SQLCourseStore) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving course by ID", slog.Int64("course_id", id))

	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("course not found", slog.Int64("course_id", id))
			return nil, store.ErrCourseNotFound
		}
		log.Error("failed to get course",
			slog.String("error", err.Error()),
			slog.Int64("course_id", id))
		return nil, store.NewStoreError("course", "get", "failed to retrieve course", MapError(err))
	}

	return course, nil
}

// Search implements store.CourseStore.Search
// An empty query matches every course.
func (s *SQLCourseStore) Search(ctx context.Context, query string) ([]*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query = strings.TrimSpace(query)
	if query == "" {
		return s.GetAll(ctx)
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	sqlQuery := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE LOWER(course_name) LIKE $1 ESCAPE '\'
		   OR LOWER(course_code) LIKE $2 ESCAPE '\'
		ORDER BY created_at DESC, id DESC
	`

	courses, err := s.queryCourses(ctx, sqlQuery, pattern, pattern)
	if err != nil {
		log.Error("failed to search courses",
			slog.String("error", err.Error()),
			slog.String("query", query))
		return nil, store.NewStoreError("course", "search", "failed to search courses", MapError(err))
	}

	log.Debug("searched courses",
		slog.String("query", query),
		slog.Int("count", len(courses)))
	return courses, nil
}

// Count implements store.CourseStore.Count
func (s *SQLCourseStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count courses",
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("course", "count", "failed to count courses", MapError(err))
	}
	return count, nil
}

// Update implements store.CourseStore.Update
// On success course.ID is set to id.
func (s *SQLCourseStore) Update(ctx context.Context, id int64, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("course validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("course_id", id))
		return err
	}

	query := `
		UPDATE courses
		SET course_name = $1, course_code = $2, course_credit = $3,
		    teacher1_name = $4, teacher2_name = $5, grade = $6, grade_points = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		course.Name,
		course.Code,
		course.Credit,
		course.InstructorPrimary,
		course.InstructorSecondary,
		string(course.Grade),
		course.GradePoints(),
		id,
	)
	if err != nil {
		log.Error("failed to update course",
			slog.String("error", err.Error()),
			slog.Int64("course_id", id))
		return writeError("course", "update", "failed to update course", err)
	}

	if err := checkRowsAffected(result, store.ErrCourseNotFound); err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			log.Debug("course not found for update", slog.Int64("course_id", id))
			return err
		}
		return store.NewStoreError("course", "update", "failed to update course", err)
	}

	course.ID = id
	log.Info("course updated successfully", slog.Int64("course_id", id))
	return nil
}

// UpdateGrade implements store.CourseStore.UpdateGrade
func (s *SQLCourseStore) UpdateGrade(ctx context.Context, id int64, grade domain.Grade) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !grade.Valid() {
		return domain.NewValidationError("grade", "grade must be one of A+, A, A-, B+, B, B-, C+, C, D, F")
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE courses SET grade = $1, grade_points = $2 WHERE id = $3`,
		string(grade), domain.GradePoints(grade), id)
	if err != nil {
		log.Error("failed to update course grade",
			slog.String("error", err.Error()),
			slog.Int64("course_id", id))
		return writeError("course", "update_grade", "failed to update grade", err)
	}

	if err := checkRowsAffected(result, store.ErrCourseNotFound); err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			return err
		}
		return store.NewStoreError("course", "update_grade", "failed to update grade", err)
	}

	log.Info("course grade updated",
		slog.Int64("course_id", id),
		slog.String("grade", grade.String()))
	return nil
}

// Delete implements store.CourseStore.Delete
func (s *SQLCourseStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete course",
			slog.String("error", err.Error()),
			slog.Int64("course_id", id))
		return store.NewStoreError("course", "delete", "failed to delete course", MapError(err))
	}

	if err := checkRowsAffected(result, store.ErrCourseNotFound); err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			log.Debug("course not found for delete", slog.Int64("course_id", id))
			return err
		}
		return store.NewStoreError("course", "delete", "failed to delete course", err)
	}

	log.Info("course deleted successfully", slog.Int64("course_id", id))
	return nil
}

// DeleteAll implements store.CourseStore.DeleteAll
func (s *SQLCourseStore) DeleteAll(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM courses`)
	if err != nil {
		log.Error("failed to delete all courses", slog.String("error", err.Error()))
		return store.NewStoreError("course", "delete_all", "failed to delete courses", MapError(err))
	}

	deleted, _ := result.RowsAffected()
	log.Info("all courses deleted", slog.Int64("count", deleted))
	return nil
}

// ExportJSON implements store.CourseStore.ExportJSON
// Courses are listed in store order, newest first.
func (s *SQLCourseStore) ExportJSON(ctx context.Context) (string, error) {
	courses, err := s.GetAll(ctx)
	if err != nil {
		return "", err
	}

	data, err := domain.MarshalCourses(courses)
	if err != nil {
		return "", store.NewStoreError("course", "export", "failed to encode courses", err)
	}
	return string(data), nil
}

// ImportJSON implements store.CourseStore.ImportJSON
// The document is decoded and validated as a whole before any insert, and the
// inserts share one transaction. Entries are inserted from last to first so
// that a re-export lists them in the order they were given.
func (s *SQLCourseStore) ImportJSON(ctx context.Context, data string) ([]*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	courses, err := domain.UnmarshalCourses([]byte(data))
	if err != nil {
		log.Warn("rejected course import", slog.String("error", err.Error()))
		return nil, err
	}

	batch := make([]*domain.Course, len(courses))
	for i, c := range courses {
		batch[len(courses)-1-i] = c
	}

	if err := s.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return courses, nil
}

// insertCourse runs the insert statement on db and copies the generated
// values back into course.
func insertCourse(ctx context.Context, db store.DBTX, course *domain.Course) error {
	var id int64
	created := course.CreatedAt
	err := db.QueryRowContext(ctx, insertCourseQuery,
		course.Name,
		course.Code,
		course.Credit,
		course.InstructorPrimary,
		course.InstructorSecondary,
		string(course.Grade),
		course.GradePoints(),
	).Scan(&id, timestamp{t: &created})
	if err != nil {
		return err
	}
	course.ID = id
	course.CreatedAt = created
	return nil
}

func (s *SQLCourseStore) queryCourses(ctx context.Context, query string, args ...any) ([]*domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	courses := make([]*domain.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	var (
		c       domain.Course
		primary sql.NullString
		second  sql.NullString
		grade   string
	)
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Code,
		&c.Credit,
		&primary,
		&second,
		&grade,
		timestamp{t: &c.CreatedAt},
	)
	if err != nil {
		return nil, err
	}
	c.InstructorPrimary = primary.String
	c.InstructorSecondary = second.String
	c.SetGrade(domain.Grade(grade))
	return &c, nil
}

// escapeLike escapes the LIKE wildcards in s using backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
