package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation splits a bank transaction's amount across one or more invoices.
// Invariant: the sum of AllocationAmount over all allocations referencing one
// transaction never exceeds that transaction's absolute amount (plus a 0.01
// rounding epsilon). One (transaction, invoice) pair holds at most one row —
// re-linking updates in place.
type Allocation struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID               uuid.UUID        `gorm:"type:uuid;not null;index"`
	TransactionID        uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_alloc_tx_invoice"`
	InvoiceID            uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_alloc_tx_invoice"`
	AllocationAmount     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	AllocationPercentage *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Notes                string

	CreatedAt time.Time
	UpdatedAt time.Time
}
