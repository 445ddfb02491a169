package holdings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a buyer's transient pre-purchase selection. One line per
// listing per buyer; quantity changes go through remove-then-re-add.
type CartItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_buyer_listing" json:"buyer_id"`
	ListingID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_buyer_listing" json:"listing_id"`
	ProjectName string          `json:"project_name"`
	// UnitPrice is snapshotted at add time; a later re-pricing of the
	// listing does not change lines already in a cart.
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	VintageYear int             `json:"vintage_year"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LineTotal is the snapshotted price times quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// PortfolioItem is an owned-but-unclaimed holding. Each purchase event
// produces its own item; repeat purchases of the same listing never merge.
type PortfolioItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"buyer_id"`
	ListingID   uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	ProjectName string    `json:"project_name"`
	VintageYear int       `json:"vintage_year"`
	Tons        int64     `gorm:"not null" json:"tons"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// ClaimRecord is the permanent retirement receipt for one claimed portfolio
// item. Never mutated or deleted.
type ClaimRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"buyer_id"`
	ListingID     uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	ProjectName   string    `json:"project_name"`
	Tons          int64     `gorm:"not null" json:"tons"`
	CertificateID string    `gorm:"not null;uniqueIndex" json:"certificate_id"`
	ClaimedAt     time.Time `json:"claimed_at"`
}

// Cart is a buyer's cart with its computed total
type Cart struct {
	Items     []CartItem      `json:"items"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// Portfolio is a buyer's unclaimed holdings with the running credit balance
type Portfolio struct {
	Items         []PortfolioItem `json:"items"`
	CreditBalance int64           `json:"credit_balance"`
}

// ClaimHistory is a buyer's retirement history with the lifetime offset total
type ClaimHistory struct {
	Records       []ClaimRecord `json:"records"`
	LifetimeOffset int64        `json:"lifetime_offset"`
}
