package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means no listing exists for the id; for issuance this
	// usually means the project has not been verified yet.
	ErrNotFound = errors.New("listing not found")
	// ErrInsufficientInventory means a decrement would drive availableTons
	// negative. The write is rejected and inventory is unchanged.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrValidation marks an out-of-range amount
	ErrValidation = errors.New("validation error")
)

// Service owns available-quantity accounting for credit listings
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new inventory service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateListing registers the tradable listing for a newly verified project
func (s *Service) CreateListing(ctx context.Context, listing *Listing) error {
	if err := s.repo.Create(ctx, listing); err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	s.logger.Info("Credit listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("project_name", listing.ProjectName),
		zap.String("unit_price", listing.UnitPrice.String()))
	return nil
}

// GetListing returns a listing by id, or ErrNotFound
func (s *Service) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrNotFound
	}
	return listing, nil
}

// ListListings returns all listings for the marketplace
func (s *Service) ListListings(ctx context.Context) ([]Listing, error) {
	return s.repo.List(ctx)
}

// Issue increases a listing's available supply. The listing must already
// exist: verify the project first.
func (s *Service) Issue(ctx context.Context, listingID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: issuance amount must be positive", ErrValidation)
	}

	updated, err := s.repo.IncrementAvailable(ctx, listingID, amount)
	if err != nil {
		return fmt.Errorf("failed to issue credits: %w", err)
	}
	if !updated {
		return fmt.Errorf("%w: verify the project first", ErrNotFound)
	}

	s.logger.Info("Credits issued",
		zap.String("listing_id", listingID.String()),
		zap.Int64("amount_tons", amount))
	return nil
}

// DecrementForSale atomically removes sold supply from a listing. Fails with
// ErrInsufficientInventory when the listing holds fewer tons than requested,
// leaving the inventory untouched.
func (s *Service) DecrementForSale(ctx context.Context, listingID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: sale amount must be positive", ErrValidation)
	}

	updated, err := s.repo.DecrementAvailable(ctx, listingID, amount)
	if err != nil {
		return fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if updated {
		return nil
	}

	// Distinguish a missing listing from an insufficient one
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if listing == nil {
		return ErrNotFound
	}
	return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientInventory, amount, listing.AvailableTons)
}
