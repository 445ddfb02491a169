package ledger

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists ledger entries. The interface deliberately exposes no
// update or delete: entries are immutable once written.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]Entry, error)
	SoldTonsByBuyer(ctx context.Context) (map[string]float64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns all entries newest first
func (r *gormRepository) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).Order("timestamp DESC").Find(&entries).Error
	return entries, err
}

// SoldTonsByBuyer sums SOLD amounts grouped by the receiving buyer. Used by
// the reconciliation job to compare against holdings totals.
func (r *gormRepository) SoldTonsByBuyer(ctx context.Context) (map[string]float64, error) {
	var rows []struct {
		Buyer string
		Tons  float64
	}
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Select(`"to" AS buyer, COALESCE(SUM(amount_tons), 0) AS tons`).
		Where("action = ?", ActionSold).
		Group(`"to"`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.Buyer] = row.Tons
	}
	return totals, nil
}
