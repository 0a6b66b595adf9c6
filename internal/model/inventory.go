package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement types recorded in the inventory audit log.
const (
	MovementPurchase       = "purchase"
	MovementUsage          = "usage"
	MovementAdjustment     = "adjustment"
	MovementWaste          = "waste"
	MovementReturn         = "return"
	MovementBlueprintUsage = "blueprint_usage"
)

// ValidMovementType reports whether t is a recognized movement type.
func ValidMovementType(t string) bool {
	switch t {
	case MovementPurchase, MovementUsage, MovementAdjustment, MovementWaste,
		MovementReturn, MovementBlueprintUsage:
		return true
	}
	return false
}

// InventoryItem is a physical stock item. CurrentQuantity is a cached
// projection of the item's movement history; this engine never lets it go
// negative.
type InventoryItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"not null"`
	SKU             *string         `gorm:"index"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MinimumQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLowStock reports whether the item is at or below its minimum quantity.
func (i *InventoryItem) IsLowStock() bool {
	return i.CurrentQuantity.LessThanOrEqual(i.MinimumQuantity)
}

// InventoryMovement is the append-only audit log of every quantity change.
// Rows are created exactly once per change and never mutated; the item's
// CurrentQuantity must stay consistent with the sum of its movements.
type InventoryMovement struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	InventoryItemID uuid.UUID        `gorm:"type:uuid;not null;index"`
	MovementType    string           `gorm:"not null"`
	QuantityChange  decimal.Decimal  `gorm:"type:decimal(12,3);not null"` // positive = in, negative = out
	QuantityBefore  decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	QuantityAfter   decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	UnitCost        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ReferenceID     *uuid.UUID       `gorm:"type:uuid"` // causing blueprint usage or manual request
	ReferenceType   *string
	Notes           string
	CreatedAt       time.Time

	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemID"`
}
