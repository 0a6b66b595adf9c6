package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Blueprint is a reusable cost/price template for a type of work: estimated
// materials/labor/overhead plus a target sale price, optionally linked to the
// inventory items a single run consumes.
type Blueprint struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID                 uuid.UUID `gorm:"type:uuid;not null;index"`
	Name                   string    `gorm:"not null"`
	Description            *string
	EstimatedMaterialsCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EstimatedLaborCost     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EstimatedOverheadCost  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TargetSalePrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []BlueprintItem `gorm:"foreignKey:BlueprintID"`
}

// EstimatedTotalCost is the sum of the three estimate buckets.
func (b *Blueprint) EstimatedTotalCost() decimal.Decimal {
	return b.EstimatedMaterialsCost.Add(b.EstimatedLaborCost).Add(b.EstimatedOverheadCost)
}

// BlueprintItem declares how much of one inventory item a single blueprint
// run requires.
type BlueprintItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BlueprintID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_blueprint_item"`
	InventoryItemID  uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_blueprint_item"`
	QuantityRequired decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	CreatedAt        time.Time

	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemID"`
}
