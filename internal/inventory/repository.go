package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists credit listings
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	List(ctx context.Context) ([]Listing, error)
	IncrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error)
	DecrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create is idempotent on the listing id: a verification retried after a
// partial failure reuses the listing it already created.
func (r *gormRepository) Create(ctx context.Context, listing *Listing) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(listing).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var listing Listing
	err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *gormRepository) List(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// IncrementAvailable adds supply to an existing listing. Returns false when
// no listing with the given id exists.
func (r *gormRepository) IncrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Listing{}).
		Where("id = ?", id).
		UpdateColumn("available_tons", gorm.Expr("available_tons + ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementAvailable performs a single conditional decrement: the quantity
// check and the write happen in one statement, so two concurrent sales can
// never both pass the check against a stale read. Returns false when the
// listing is missing or its inventory is insufficient.
func (r *gormRepository) DecrementAvailable(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Listing{}).
		Where("id = ? AND available_tons >= ?", id, amount).
		UpdateColumn("available_tons", gorm.Expr("available_tons - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
