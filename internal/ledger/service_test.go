package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, entry *Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]Entry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Entry), args.Error(1)
}

func (m *MockRepository) SoldTonsByBuyer(ctx context.Context) (map[string]float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]float64), args.Error(1)
}

func TestAppendAssignsDefaults(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())

	ctx := context.Background()
	entry := &Entry{
		TxHash:     NewTxHash(ActionSold, "listing-1", "Amazon Shield", "buyer-1", 500, time.Now()),
		Action:     ActionSold,
		ListingID:  "listing-1",
		From:       "Amazon Shield",
		To:         "buyer-1",
		AmountTons: 500,
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)

	stored, err := service.Append(ctx, entry)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.Timestamp.IsZero())
	mockRepo.AssertExpectations(t)
}

func TestAppendKeepsCallerTimestamp(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())

	ctx := context.Background()
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := &Entry{
		TxHash:    "0xabc",
		Action:    ActionIssued,
		ListingID: "listing-1",
		Timestamp: ts,
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)

	stored, err := service.Append(ctx, entry)

	assert.NoError(t, err)
	assert.Equal(t, ts, stored.Timestamp)
}

func TestAppendRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"missing txHash", Entry{Action: ActionSold, ListingID: "listing-1"}},
		{"missing action", Entry{TxHash: "0xabc", ListingID: "listing-1"}},
		{"missing listingId", Entry{TxHash: "0xabc", Action: ActionSold}},
		{"unknown action", Entry{TxHash: "0xabc", Action: "BURNED", ListingID: "listing-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := NewService(mockRepo, zap.NewNop())

			_, err := service.Append(context.Background(), &tt.entry)

			assert.ErrorIs(t, err, ErrValidation)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestNewTxHashUnique(t *testing.T) {
	ts := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		hash := NewTxHash(ActionSold, "listing-1", "a", "b", 100, ts)
		assert.Len(t, hash, 66) // 0x + 64 hex chars
		assert.False(t, seen[hash], "duplicate tx hash generated")
		seen[hash] = true
	}
}
