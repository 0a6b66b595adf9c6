package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the billable unit of work (a "job") whose profitability is
// tracked. TotalActualCost and ActualProfit are derived columns, recomputed
// by the profit engine whenever allocations change. NULL means "no cost data",
// which is distinct from a known zero cost.
type Invoice struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName string          `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"` // revenue
	Status       string          `gorm:"not null;default:'draft'"`
	InvoiceDate  time.Time       `gorm:"not null"`

	TotalActualCost    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActualProfit       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CostOverrideByUser bool             `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID"`
}

// InvoiceLineItem is a plain billing line; it carries no cross-entity
// invariant but must be deleted before its parent invoice (FK order).
type InvoiceLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
}

// QuickBooksInvoiceMap links an invoice to its QuickBooks counterpart.
// Maintained by the accounting-sync collaborator; this engine only deletes
// rows here during cascading invoice purges.
type QuickBooksInvoiceMap struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	QuickBooksID string    `gorm:"not null"`
	SyncedAt     *time.Time
	CreatedAt    time.Time
}

func (QuickBooksInvoiceMap) TableName() string { return "quickbooks_invoice_maps" }
