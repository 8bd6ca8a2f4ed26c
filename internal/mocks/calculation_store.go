package mocks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

// MockCalculationStore is a mock of store.CalculationStore for use with testify/mock
type MockCalculationStore struct {
	mock.Mock
	nextID atomic.Int64
}

// NewMockCalculationStore creates a MockCalculationStore.
func NewMockCalculationStore() *MockCalculationStore {
	return &MockCalculationStore{}
}

// Ensure MockCalculationStore implements store.CalculationStore interface
var _ store.CalculationStore = (*MockCalculationStore)(nil)

// Create is a mock implementation of store.CalculationStore.Create
func (m *MockCalculationStore) Create(ctx context.Context, record *domain.CalculationRecord) error {
	args := m.Called(ctx, record)
	if err := args.Error(0); err != nil {
		return err
	}
	record.ID = m.nextID.Add(1)
	record.CreatedAt = time.Now().UTC()
	return nil
}

// History is a mock implementation of store.CalculationStore.History
func (m *MockCalculationStore) History(ctx context.Context, limit int) ([]*domain.CalculationRecord, error) {
	args := m.Called(ctx, limit)
	if records, ok := args.Get(0).([]*domain.CalculationRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByID is a mock implementation of store.CalculationStore.GetByID
func (m *MockCalculationStore) GetByID(ctx context.Context, id int64) (*domain.CalculationRecord, error) {
	args := m.Called(ctx, id)
	if record, ok := args.Get(0).(*domain.CalculationRecord); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete is a mock implementation of store.CalculationStore.Delete
func (m *MockCalculationStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
