package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/platform/logger"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

const calculationColumns = `id, gpa, total_credits, total_courses, courses_json, calculation_date`

// historyPrealloc bounds the slice capacity reserved for a history page;
// the limit itself is caller supplied and may be arbitrarily large.
const historyPrealloc = 32

// SQLCalculationStore implements the store.CalculationStore interface on top of database/sql.
type SQLCalculationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLCalculationStore creates a new SQL implementation of the CalculationStore interface.
// If logger is nil, a default logger will be used.
func NewSQLCalculationStore(db store.DBTX, logger *slog.Logger) *SQLCalculationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLCalculationStore{
		db:     db,
		logger: logger.With(slog.String("component", "calculation_store")),
	}
}

// Ensure SQLCalculationStore implements store.CalculationStore interface
var _ store.CalculationStore = (*SQLCalculationStore)(nil)

// Create implements store.CalculationStore.Create
func (s *SQLCalculationStore) Create(ctx context.Context, record *domain.CalculationRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if record == nil {
		return domain.NewValidationError("calculation", "record cannot be nil")
	}

	snapshot, err := domain.MarshalCourses(record.Courses)
	if err != nil {
		return store.NewStoreError("calculation", "create", "failed to encode course snapshot", err)
	}

	query := `
		INSERT INTO calculations (gpa, total_credits, total_courses, courses_json)
		VALUES ($1, $2, $3, $4)
		RETURNING id, calculation_date
	`

	var id int64
	created := record.CreatedAt
	err = s.db.QueryRowContext(ctx, query,
		record.GPA,
		record.TotalCredits,
		record.TotalCourses,
		string(snapshot),
	).Scan(&id, timestamp{t: &created})
	if err != nil {
		log.Error("failed to create calculation",
			slog.String("error", err.Error()),
			slog.Int("total_courses", record.TotalCourses))
		return writeError("calculation", "create", "failed to insert calculation", err)
	}

	record.ID = id
	record.CreatedAt = created

	log.Info("calculation saved",
		slog.Int64("calculation_id", id),
		slog.Float64("gpa", record.GPA),
		slog.Float64("total_credits", record.TotalCredits))
	return nil
}

// History implements store.CalculationStore.History
func (s *SQLCalculationStore) History(ctx context.Context, limit int) ([]*domain.CalculationRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "history limit must be positive")
	}

	query := `SELECT ` + calculationColumns + ` FROM calculations ORDER BY calculation_date DESC, id DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		log.Error("failed to query calculation history", slog.String("error", err.Error()))
		return nil, store.NewStoreError("calculation", "history", "failed to load history", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	records := make([]*domain.CalculationRecord, 0, min(limit, historyPrealloc))
	for rows.Next() {
		record, err := scanCalculation(rows)
		if err != nil {
			log.Error("failed to scan calculation", slog.String("error", err.Error()))
			return nil, store.NewStoreError("calculation", "history", "failed to read history", MapError(err))
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("calculation", "history", "failed to read history", MapError(err))
	}

	log.Debug("loaded calculation history", slog.Int("count", len(records)))
	return records, nil
}

// GetByID implements store.CalculationStore.GetByID
func (s *SQLCalculationStore) GetByID(ctx context.Context, id int64) (*domain.CalculationRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE id = $1`

	record, err := scanCalculation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("calculation not found", slog.Int64("calculation_id", id))
			return nil, store.ErrCalculationNotFound
		}
		log.Error("failed to get calculation",
			slog.String("error", err.Error()),
			slog.Int64("calculation_id", id))
		return nil, store.NewStoreError("calculation", "get", "failed to retrieve calculation", MapError(err))
	}
	return record, nil
}

// Delete implements store.CalculationStore.Delete
func (s *SQLCalculationStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM calculations WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete calculation",
			slog.String("error", err.Error()),
			slog.Int64("calculation_id", id))
		return store.NewStoreError("calculation", "delete", "failed to delete calculation", MapError(err))
	}

	if err := checkRowsAffected(result, store.ErrCalculationNotFound); err != nil {
		if errors.Is(err, store.ErrCalculationNotFound) {
			return err
		}
		return store.NewStoreError("calculation", "delete", "failed to delete calculation", err)
	}

	log.Info("calculation deleted", slog.Int64("calculation_id", id))
	return nil
}

func scanCalculation(row rowScanner) (*domain.CalculationRecord, error) {
	var (
		r        domain.CalculationRecord
		snapshot string
	)
	if err := row.Scan(
		&r.ID,
		&r.GPA,
		&r.TotalCredits,
		&r.TotalCourses,
		&snapshot,
		timestamp{t: &r.CreatedAt},
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(snapshot), &r.Courses); err != nil {
		return nil, fmt.Errorf("failed to decode course snapshot of calculation %d: %w", r.ID, err)
	}
	return &r, nil
}
