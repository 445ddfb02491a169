package holdings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"terra-offset/credit-exchange-backend/internal/inventory"
	"terra-offset/credit-exchange-backend/internal/ledger"
	"terra-offset/credit-exchange-backend/pkg/certificates"
)

// MinLotSize is the smallest purchasable quantity; cart quantities must be
// multiples of it.
const MinLotSize = 100

var (
	// ErrValidation marks a malformed cart or purchase request
	ErrValidation = errors.New("validation error")
	// ErrNotFound means the cart line or portfolio item does not exist;
	// for claims this includes items that were already claimed.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateCartLine means the listing already has a line in this
	// buyer's cart. Remove and re-add to change the quantity.
	ErrDuplicateCartLine = errors.New("listing already in cart")
)

// ListingSource exposes the inventory operations purchases need
type ListingSource interface {
	GetListing(ctx context.Context, id uuid.UUID) (*inventory.Listing, error)
	DecrementForSale(ctx context.Context, listingID uuid.UUID, amount int64) error
}

// LedgerAppender mirrors holdings events onto the audit trail
type LedgerAppender interface {
	Append(ctx context.Context, entry *ledger.Entry) (*ledger.Entry, error)
}

// CertificateWriter renders retirement certificates
type CertificateWriter interface {
	Generate(data certificates.Data) (string, error)
}

// Notifier delivers fire-and-forget notifications
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, link string)
}

// Service orchestrates each buyer's cart, portfolio, and claim history.
// The portfolio is the authoritative record of ownership; inventory and
// ledger writes mirror it best-effort and are repaired by reconciliation.
type Service struct {
	repo     Repository
	listings ListingSource
	ledger   LedgerAppender
	certs    CertificateWriter
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a new holdings service
func NewService(
	repo Repository,
	listings ListingSource,
	ledgerSvc LedgerAppender,
	certs CertificateWriter,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		listings: listings,
		ledger:   ledgerSvc,
		certs:    certs,
		notifier: notifier,
		logger:   logger,
	}
}

// AddToCart adds one line for the listing to the buyer's cart, snapshotting
// the current unit price. Quantity must be a multiple of the minimum lot
// size and no more than the listing's available tons.
func (s *Service) AddToCart(ctx context.Context, buyerID, listingID uuid.UUID, quantity int64) (*CartItem, error) {
	if quantity < MinLotSize {
		return nil, fmt.Errorf("%w: minimum quantity is %d tons", ErrValidation, MinLotSize)
	}
	if quantity%MinLotSize != 0 {
		return nil, fmt.Errorf("%w: quantity must be a multiple of %d tons", ErrValidation, MinLotSize)
	}

	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			return nil, fmt.Errorf("%w: listing does not exist", ErrNotFound)
		}
		return nil, err
	}
	if quantity > listing.AvailableTons {
		return nil, fmt.Errorf("%w: only %d tons available", ErrValidation, listing.AvailableTons)
	}

	existing, err := s.repo.GetCartLine(ctx, buyerID, listingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateCartLine
	}

	item := &CartItem{
		ID:          uuid.New(),
		BuyerID:     buyerID,
		ListingID:   listingID,
		ProjectName: listing.ProjectName,
		UnitPrice:   listing.UnitPrice,
		Quantity:    quantity,
		VintageYear: listing.VintageYear,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	return item, nil
}

// RemoveFromCart deletes one cart line
func (s *Service) RemoveFromCart(ctx context.Context, buyerID, itemID uuid.UUID) error {
	deleted, err := s.repo.DeleteCartItem(ctx, buyerID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: cart item does not exist", ErrNotFound)
	}
	return nil
}

// ClearCart deletes every line in the buyer's cart
func (s *Service) ClearCart(ctx context.Context, buyerID uuid.UUID) error {
	return s.repo.ClearCart(ctx, buyerID)
}

// Cart returns the buyer's cart with its total cost
func (s *Service) Cart(ctx context.Context, buyerID uuid.UUID) (*Cart, error) {
	items, err := s.repo.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return &Cart{Items: items, TotalCost: total}, nil
}

// Purchase converts the cart into portfolio holdings one line at a time:
// record ownership, then mirror the sale onto inventory and the ledger, then
// clear the line. Ownership is the authoritative step and fatal on failure;
// the mirrors are advisory and their failures are logged and left for
// reconciliation, never rolled back. Because each line settles completely
// before the next begins, a failure mid-cart leaves earlier lines fully
// purchased and cleared, and a retry buys only what remains in the cart.
func (s *Service) Purchase(ctx context.Context, buyerID uuid.UUID) ([]PortfolioItem, error) {
	cart, err := s.repo.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	now := time.Now().UTC()

	purchased := make([]PortfolioItem, 0, len(cart))
	for _, line := range cart {
		item := &PortfolioItem{
			ID:          uuid.New(),
			BuyerID:     buyerID,
			ListingID:   line.ListingID,
			ProjectName: line.ProjectName,
			VintageYear: line.VintageYear,
			Tons:        line.Quantity,
			PurchasedAt: now,
		}
		if err := s.repo.CreatePortfolioItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to record ownership: %w", err)
		}
		purchased = append(purchased, *item)

		if err := s.listings.DecrementForSale(ctx, line.ListingID, line.Quantity); err != nil {
			// Ownership is already recorded; inventory reconciles later
			s.logger.Warn("Inventory decrement failed after purchase",
				zap.String("listing_id", line.ListingID.String()),
				zap.Int64("quantity", line.Quantity),
				zap.Error(err))
		}

		entry := &ledger.Entry{
			TxHash:     ledger.NewTxHash(ledger.ActionSold, line.ListingID.String(), line.ProjectName, buyerID.String(), float64(line.Quantity), now),
			Action:     ledger.ActionSold,
			ListingID:  line.ListingID.String(),
			From:       line.ProjectName,
			To:         buyerID.String(),
			Timestamp:  now,
			AmountTons: float64(line.Quantity),
		}
		if _, err := s.ledger.Append(ctx, entry); err != nil {
			s.logger.Warn("Failed to append SOLD ledger entry",
				zap.String("listing_id", line.ListingID.String()),
				zap.Error(err))
		}

		// Clearing the line marks it settled; a line left behind would be
		// bought again on retry.
		if _, err := s.repo.DeleteCartItem(ctx, buyerID, line.ID); err != nil {
			s.logger.Warn("Failed to clear cart line after purchase",
				zap.String("cart_item_id", line.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Purchase completed",
		zap.String("buyer_id", buyerID.String()),
		zap.Int("lines", len(cart)))

	return purchased, nil
}

// Claim permanently retires one portfolio item: the item is deleted and a
// claim record created in a single transaction, then the retirement is
// mirrored to the ledger and a certificate rendered. Claims are
// all-or-nothing and irreversible; partial claims are not supported. The
// certificate id is assigned here, never accepted from the caller, so ids
// stay unique and cannot be forged.
func (s *Service) Claim(ctx context.Context, buyerID, portfolioItemID uuid.UUID) (*ClaimRecord, error) {
	item, err := s.repo.GetPortfolioItem(ctx, buyerID, portfolioItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: portfolio item does not exist or was already claimed", ErrNotFound)
	}

	now := time.Now().UTC()
	claim := &ClaimRecord{
		ID:            uuid.New(),
		BuyerID:       buyerID,
		ListingID:     item.ListingID,
		ProjectName:   item.ProjectName,
		Tons:          item.Tons,
		CertificateID: newCertificateID(now),
		ClaimedAt:     now,
	}

	if err := s.repo.RetirePortfolioItem(ctx, item, claim); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: portfolio item does not exist or was already claimed", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retire portfolio item: %w", err)
	}

	entry := &ledger.Entry{
		TxHash:     ledger.NewTxHash(ledger.ActionRetired, item.ListingID.String(), buyerID.String(), "Retired", float64(item.Tons), now),
		Action:     ledger.ActionRetired,
		ListingID:  item.ListingID.String(),
		From:       buyerID.String(),
		To:         "Retired",
		Timestamp:  now,
		AmountTons: float64(item.Tons),
	}
	if _, err := s.ledger.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to append RETIRED ledger entry",
			zap.String("claim_id", claim.ID.String()),
			zap.Error(err))
	}

	if _, err := s.certs.Generate(certificates.Data{
		CertificateID: claim.CertificateID,
		BuyerID:       buyerID.String(),
		ProjectName:   item.ProjectName,
		VintageYear:   item.VintageYear,
		Tons:          item.Tons,
		ClaimedAt:     now,
	}); err != nil {
		s.logger.Warn("Failed to render retirement certificate",
			zap.String("certificate_id", claim.CertificateID),
			zap.Error(err))
	}

	s.notifier.Notify(ctx, buyerID, "Credits Retired",
		fmt.Sprintf("%d tCO2e from %s were permanently retired. Certificate %s.",
			item.Tons, item.ProjectName, claim.CertificateID),
		"/buyer/history")

	s.logger.Info("Portfolio item claimed",
		zap.String("buyer_id", buyerID.String()),
		zap.String("certificate_id", claim.CertificateID),
		zap.Int64("tons", item.Tons))

	return claim, nil
}

// Portfolio returns the buyer's unclaimed holdings and credit balance
func (s *Service) Portfolio(ctx context.Context, buyerID uuid.UUID) (*Portfolio, error) {
	items, err := s.repo.ListPortfolio(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	var balance int64
	for _, item := range items {
		balance += item.Tons
	}
	return &Portfolio{Items: items, CreditBalance: balance}, nil
}

// Claims returns the buyer's retirement history and lifetime offset total
func (s *Service) Claims(ctx context.Context, buyerID uuid.UUID) (*ClaimHistory, error) {
	records, err := s.repo.ListClaims(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, record := range records {
		total += record.Tons
	}
	return &ClaimHistory{Records: records, LifetimeOffset: total}, nil
}

// TotalsByBuyer exposes per-buyer holdings totals for reconciliation
func (s *Service) TotalsByBuyer(ctx context.Context) (map[string]int64, error) {
	return s.repo.TotalsByBuyer(ctx)
}

func newCertificateID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RET-%d-%s", now.Year(), suffix)
}
