package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is the tradable representation of a verified project. It shares
// its id with the project it was created from, exactly once, at verification
// time. Inventory always starts at zero; supply only exists after an
// explicit issuance.
type Listing struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"project_id"`
	ProjectName    string          `gorm:"not null" json:"project_name"`
	ProjectType    string          `json:"project_type"`
	Country        string          `json:"country"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	IntegrityScore int             `gorm:"not null" json:"integrity_score"`
	AvailableTons  int64           `gorm:"not null;default:0" json:"available_tons"`
	VintageYear    int             `gorm:"not null" json:"vintage_year"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
