package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is the kind of economic event a ledger entry records
type Action string

const (
	ActionIssued      Action = "ISSUED"
	ActionListed      Action = "LISTED"
	ActionSold        Action = "SOLD"
	ActionRetired     Action = "RETIRED"
	ActionTransferred Action = "TRANSFERRED"
)

// IsValid reports whether the action is one of the known ledger actions
func (a Action) IsValid() bool {
	switch a {
	case ActionIssued, ActionListed, ActionSold, ActionRetired, ActionTransferred:
		return true
	}
	return false
}

// Entry is an immutable audit record of one issuance, sale, or retirement
// event. Entries are append-only: the core never updates or deletes them.
type Entry struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TxHash     string    `gorm:"uniqueIndex;not null" json:"txHash"`
	Action     Action    `gorm:"not null;index" json:"action"`
	ListingID  string    `gorm:"not null;index" json:"listingId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	AmountTons float64   `json:"amountTons"`
}

// NewTxHash derives a collision-resistant transaction hash from the entry
// content plus a random nonce. The store additionally enforces uniqueness
// with an index on the column.
func NewTxHash(action Action, listingID, from, to string, amountTons float64, ts time.Time) string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%g|%d|%s",
		action, listingID, from, to, amountTons, ts.UnixNano(), uuid.NewString())
	sum := sha256.Sum256([]byte(payload))
	return "0x" + hex.EncodeToString(sum[:])
}
