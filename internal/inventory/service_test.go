package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, listing *Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Listing), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Listing, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) IncrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) DecrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

func TestIssue(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("IncrementAvailable", ctx, id, int64(5000)).Return(true, nil)

	assert.NoError(t, service.Issue(ctx, id, 5000))
	mockRepo.AssertExpectations(t)
}

func TestIssueRequiresListing(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("IncrementAvailable", ctx, id, int64(5000)).Return(false, nil)

	err := service.Issue(ctx, id, 5000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueRejectsNonPositiveAmount(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())

	for _, amount := range []int64{0, -100} {
		err := service.Issue(context.Background(), uuid.New(), amount)
		assert.ErrorIs(t, err, ErrValidation)
	}
	mockRepo.AssertNotCalled(t, "IncrementAvailable", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecrementForSale(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("DecrementAvailable", ctx, id, int64(500)).Return(true, nil)

	assert.NoError(t, service.DecrementForSale(ctx, id, 500))
	mockRepo.AssertExpectations(t)
}

func TestDecrementForSaleInsufficient(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("DecrementAvailable", ctx, id, int64(2000)).Return(false, nil)
	mockRepo.On("GetByID", ctx, id).Return(&Listing{ID: id, AvailableTons: 1000}, nil)

	err := service.DecrementForSale(ctx, id, 2000)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestDecrementForSaleMissingListing(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("DecrementAvailable", ctx, id, int64(500)).Return(false, nil)
	mockRepo.On("GetByID", ctx, id).Return(nil, nil)

	err := service.DecrementForSale(ctx, id, 500)
	assert.ErrorIs(t, err, ErrNotFound)
}

// memoryListingRepo backs the concurrency test with a mutex-guarded
// conditional decrement, matching the single-statement semantics of the SQL
// implementation.
type memoryListingRepo struct {
	mu      sync.Mutex
	listing Listing
}

func (r *memoryListingRepo) Create(ctx context.Context, listing *Listing) error { return nil }

func (r *memoryListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing := r.listing
	return &listing, nil
}

func (r *memoryListingRepo) List(ctx context.Context) ([]Listing, error) { return nil, nil }

func (r *memoryListingRepo) IncrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listing.AvailableTons += amount
	return true, nil
}

func (r *memoryListingRepo) DecrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listing.AvailableTons < amount {
		return false, nil
	}
	r.listing.AvailableTons -= amount
	return true, nil
}

func TestAvailableTonsNeverNegative(t *testing.T) {
	listingID := uuid.New()
	repo := &memoryListingRepo{listing: Listing{ID: listingID, AvailableTons: 1000}}
	service := NewService(repo, zap.NewNop())
	ctx := context.Background()

	// 20 concurrent sales of 100 tons against 1000 available: exactly 10 may
	// succeed, and the inventory must land on zero, never below.
	var wg sync.WaitGroup
	var succeeded sync.Map
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := service.DecrementForSale(ctx, listingID, 100); err == nil {
				succeeded.Store(i, true)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	succeeded.Range(func(_, _ interface{}) bool { count++; return true })
	assert.Equal(t, 10, count)

	listing, _ := repo.GetByID(ctx, listingID)
	assert.Equal(t, int64(0), listing.AvailableTons)
}
