package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is an external monetary event synced from the bank aggregator.
// Sign convention: positive = expense, negative = income.
// Rows are owned by the sync collaborator — this engine only reads them and
// links allocations against them; it never mutates amount, name, or date.
type Transaction struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Name     string          `gorm:"not null"`
	Merchant *string
	Date     time.Time `gorm:"not null;index"`
	Category *string
	Pending  bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AbsAmount is the allocatable magnitude of the transaction.
func (t *Transaction) AbsAmount() decimal.Decimal { return t.Amount.Abs() }
