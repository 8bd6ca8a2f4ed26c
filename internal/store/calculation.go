package store

import (
	"context"

	"github.com/phrazzld/gpa-ledger/internal/domain"
)

// CalculationStore defines the interface for the append-only calculation history.
type CalculationStore interface {
	// Create stores a calculation together with a JSON snapshot of its courses
	// and sets the record's ID and CreatedAt.
	Create(ctx context.Context, record *domain.CalculationRecord) error

	// History returns up to limit calculations, most recent first.
	History(ctx context.Context, limit int) ([]*domain.CalculationRecord, error)

	// GetByID retrieves a calculation including its course snapshot.
	// Returns ErrCalculationNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.CalculationRecord, error)

	// Delete removes a calculation.
	// Returns ErrCalculationNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}
