package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"autostreamml/internal/core/domain"
	"autostreamml/internal/core/ports/output"
)

// MockSlotStore is a mock of SlotStore.
type MockSlotStore struct {
	mock.Mock
}

func (m *MockSlotStore) Read(ctx context.Context, slot ports.Slot) ([]byte, error) {
	args := m.Called(ctx, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSlotStore) Write(ctx context.Context, slot ports.Slot, data []byte) error {
	args := m.Called(ctx, slot, data)
	return args.Error(0)
}

// MockProfiler is a mock of Profiler.
type MockProfiler struct {
	mock.Mock
}

func (m *MockProfiler) Profile(ctx context.Context, ds *domain.Dataset, title string) (*domain.ProfileReport, error) {
	args := m.Called(ctx, ds, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileReport), args.Error(1)
}

// MockTrainer is a mock of Trainer.
type MockTrainer struct {
	mock.Mock
}

func (m *MockTrainer) Train(ctx context.Context, ds *domain.Dataset, req domain.TrainingRequest) (*domain.TrainingResult, error) {
	args := m.Called(ctx, ds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingResult), args.Error(1)
}

// MemorySlotStore keeps slots in a map. Each instance stands in for one
// durable location shared by every request that uses it.
type MemorySlotStore struct {
	mu    sync.Mutex
	slots map[ports.Slot][]byte
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: make(map[ports.Slot][]byte)}
}

func (s *MemorySlotStore) Read(_ context.Context, slot ports.Slot) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.slots[slot]
	if !ok {
		return nil, domain.ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (s *MemorySlotStore) Write(_ context.Context, slot ports.Slot, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = append([]byte(nil), data...)
	return nil
}

// Has reports whether the slot was ever written.
func (s *MemorySlotStore) Has(slot ports.Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[slot]
	return ok
}

// SampleDataset is a small table with numeric and text columns.
func SampleDataset() *domain.Dataset {
	return domain.NewDataset(
		[]string{"age", "city", "income"},
		[][]string{
			{"23", "Paris", "31000"},
			{"35", "Berlin", "48000"},
			{"41", "Paris", "56000"},
			{"29", "Rome", "39000"},
			{"52", "Berlin", "71000"},
			{"47", "Rome", "63000"},
		},
	)
}

// SampleTrainingResult is a minimal successful trainer response.
func SampleTrainingResult() *domain.TrainingResult {
	return &domain.TrainingResult{
		Setup: []domain.SetupRow{
			{Description: "Target", Value: "income"},
			{Description: "Target type", Value: "Regression"},
		},
		Comparison: []domain.ComparisonRow{
			{Code: "lr", Model: "Linear Regression", R2: 0.97},
			{Code: "dummy", Model: "Dummy Regressor", R2: -0.1},
		},
		Best:    domain.BestModel{Code: "lr", Name: "Linear Regression", Description: "LinearRegression()"},
		Payload: []byte("serialized-pipeline"),
	}
}
