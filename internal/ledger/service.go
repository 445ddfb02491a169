package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrValidation marks a malformed append request. No entry is written.
var ErrValidation = errors.New("validation error")

// Service provides append and read access to the trading ledger
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new ledger service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Append validates and stores a new entry, assigning a server-side id and
// defaulting the timestamp to now when the caller omits one.
func (s *Service) Append(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry.TxHash == "" {
		return nil, fmt.Errorf("%w: txHash is required", ErrValidation)
	}
	if entry.Action == "" {
		return nil, fmt.Errorf("%w: action is required", ErrValidation)
	}
	if !entry.Action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, entry.Action)
	}
	if entry.ListingID == "" {
		return nil, fmt.Errorf("%w: listingId is required", ErrValidation)
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	s.logger.Info("Ledger entry appended",
		zap.String("tx_hash", entry.TxHash),
		zap.String("action", string(entry.Action)),
		zap.String("listing_id", entry.ListingID),
		zap.Float64("amount_tons", entry.AmountTons))

	return entry, nil
}

// List returns all entries, newest first. Callers sort, filter, and paginate
// client-side.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// SoldTonsByBuyer exposes per-buyer SOLD totals for reconciliation
func (s *Service) SoldTonsByBuyer(ctx context.Context) (map[string]float64, error) {
	return s.repo.SoldTonsByBuyer(ctx)
}
