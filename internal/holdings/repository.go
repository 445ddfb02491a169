package holdings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists carts, portfolios, and claim records. All reads and
// writes are scoped to a single buyer except the reconciliation totals.
type Repository interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) ([]CartItem, error)
	GetCartLine(ctx context.Context, buyerID, listingID uuid.UUID) (*CartItem, error)
	CreateCartItem(ctx context.Context, item *CartItem) error
	DeleteCartItem(ctx context.Context, buyerID, itemID uuid.UUID) (bool, error)
	ClearCart(ctx context.Context, buyerID uuid.UUID) error

	CreatePortfolioItem(ctx context.Context, item *PortfolioItem) error
	GetPortfolioItem(ctx context.Context, buyerID, itemID uuid.UUID) (*PortfolioItem, error)
	ListPortfolio(ctx context.Context, buyerID uuid.UUID) ([]PortfolioItem, error)

	// RetirePortfolioItem deletes the item and writes the claim record in a
	// single transaction. Retirement is all-or-nothing.
	RetirePortfolioItem(ctx context.Context, item *PortfolioItem, claim *ClaimRecord) error
	ListClaims(ctx context.Context, buyerID uuid.UUID) ([]ClaimRecord, error)

	// TotalsByBuyer returns portfolio tons plus claimed tons per buyer,
	// the authoritative side of the holdings/ledger conservation check.
	TotalsByBuyer(ctx context.Context) (map[string]int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCart(ctx context.Context, buyerID uuid.UUID) ([]CartItem, error) {
	var items []CartItem
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *gormRepository) GetCartLine(ctx context.Context, buyerID, listingID uuid.UUID) (*CartItem, error) {
	var item CartItem
	err := r.db.WithContext(ctx).
		First(&item, "buyer_id = ? AND listing_id = ?", buyerID, listingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) CreateCartItem(ctx context.Context, item *CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) DeleteCartItem(ctx context.Context, buyerID, itemID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("buyer_id = ? AND id = ?", buyerID, itemID).
		Delete(&CartItem{})
	return result.RowsAffected > 0, result.Error
}

func (r *gormRepository) ClearCart(ctx context.Context, buyerID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Delete(&CartItem{}).Error
}

func (r *gormRepository) CreatePortfolioItem(ctx context.Context, item *PortfolioItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) GetPortfolioItem(ctx context.Context, buyerID, itemID uuid.UUID) (*PortfolioItem, error) {
	var item PortfolioItem
	err := r.db.WithContext(ctx).
		First(&item, "buyer_id = ? AND id = ?", buyerID, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) ListPortfolio(ctx context.Context, buyerID uuid.UUID) ([]PortfolioItem, error) {
	var items []PortfolioItem
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("purchased_at DESC").
		Find(&items).Error
	return items, err
}

func (r *gormRepository) RetirePortfolioItem(ctx context.Context, item *PortfolioItem, claim *ClaimRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("buyer_id = ? AND id = ?", item.BuyerID, item.ID).Delete(&PortfolioItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost a race against a concurrent claim of the same item
			return gorm.ErrRecordNotFound
		}
		return tx.Create(claim).Error
	})
}

func (r *gormRepository) ListClaims(ctx context.Context, buyerID uuid.UUID) ([]ClaimRecord, error) {
	var records []ClaimRecord
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("claimed_at DESC").
		Find(&records).Error
	return records, err
}

func (r *gormRepository) TotalsByBuyer(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Buyer string
		Tons  int64
	}

	var portfolioRows []row
	err := r.db.WithContext(ctx).
		Model(&PortfolioItem{}).
		Select("buyer_id::text AS buyer, COALESCE(SUM(tons), 0) AS tons").
		Group("buyer_id").
		Scan(&portfolioRows).Error
	if err != nil {
		return nil, err
	}

	var claimRows []row
	err = r.db.WithContext(ctx).
		Model(&ClaimRecord{}).
		Select("buyer_id::text AS buyer, COALESCE(SUM(tons), 0) AS tons").
		Group("buyer_id").
		Scan(&claimRows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64, len(portfolioRows))
	for _, r := range portfolioRows {
		totals[r.Buyer] += r.Tons
	}
	for _, r := range claimRows {
		totals[r.Buyer] += r.Tons
	}
	return totals, nil
}
