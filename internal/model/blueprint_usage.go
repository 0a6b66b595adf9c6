package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense types an ExpenseAllocation can be bucketed into.
const (
	ExpenseTypeMaterials = "materials"
	ExpenseTypeLabor     = "labor"
	ExpenseTypeOverhead  = "overhead"
)

// ValidExpenseType reports whether t is one of the three cost buckets.
func ValidExpenseType(t string) bool {
	return t == ExpenseTypeMaterials || t == ExpenseTypeLabor || t == ExpenseTypeOverhead
}

// BlueprintUsage is one concrete instantiation of a Blueprint, optionally
// tied to an invoice. The Actual*Cost fields hold the sum of the usage's
// expense allocations grouped by bucket, or a directly supplied value when
// no allocations exist.
type BlueprintUsage struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	BlueprintID uuid.UUID  `gorm:"type:uuid;not null;index"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index"`

	ActualMaterialsCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ActualLaborCost     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ActualOverheadCost  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ActualSalePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CompletedDate       *time.Time
	Notes               string

	CreatedAt time.Time
	UpdatedAt time.Time

	Blueprint *Blueprint `gorm:"foreignKey:BlueprintID"`
}

// ActualTotalCost is the sum of the three actual-cost buckets.
func (u *BlueprintUsage) ActualTotalCost() decimal.Decimal {
	return u.ActualMaterialsCost.Add(u.ActualLaborCost).Add(u.ActualOverheadCost)
}

// ExpenseAllocation splits a bank transaction's amount into one cost bucket
// of a blueprint usage. Upsert key is (blueprint_usage_id, transaction_id):
// re-linking the same pair updates the row rather than duplicating it.
type ExpenseAllocation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	BlueprintUsageID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_expense_usage_tx"`
	TransactionID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_expense_usage_tx"`
	AllocationAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExpenseType      string          `gorm:"not null"` // materials | labor | overhead

	CreatedAt time.Time
	UpdatedAt time.Time
}
