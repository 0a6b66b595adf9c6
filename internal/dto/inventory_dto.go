package dto

import "github.com/shopspring/decimal"

// AdjustInventoryRequest applies one manual stock movement to an item.
type AdjustInventoryRequest struct {
	InventoryItemID string           `json:"inventory_item_id" validate:"required,uuid"`
	TransactionType string           `json:"transaction_type" validate:"required,oneof=purchase usage adjustment waste return blueprint_usage"`
	QuantityChange  decimal.Decimal  `json:"quantity_change" validate:"required"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceID     *string          `json:"reference_id,omitempty" validate:"omitempty,uuid"`
	ReferenceType   *string          `json:"reference_type,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// InventoryStatus reports the item's quantity around a movement.
type InventoryStatus struct {
	InventoryItemID string          `json:"inventory_item_id"`
	QuantityBefore  decimal.Decimal `json:"quantity_before"`
	QuantityAfter   decimal.Decimal `json:"quantity_after"`
	IsLowStock      bool            `json:"is_low_stock"`
}

type MovementResponse struct {
	ID              string           `json:"id"`
	InventoryItemID string           `json:"inventory_item_id"`
	ItemName        string           `json:"item_name,omitempty"`
	MovementType    string           `json:"movement_type"`
	QuantityChange  decimal.Decimal  `json:"quantity_change"`
	QuantityBefore  decimal.Decimal  `json:"quantity_before"`
	QuantityAfter   decimal.Decimal  `json:"quantity_after"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceID     *string          `json:"reference_id,omitempty"`
	ReferenceType   *string          `json:"reference_type,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       string           `json:"created_at"`
}

type AdjustInventoryResponse struct {
	InventoryTransaction MovementResponse `json:"inventory_transaction"`
	InventoryStatus      InventoryStatus  `json:"inventory_status"`
}

// LowStockAlert flags an item at or below its minimum quantity.
type LowStockAlert struct {
	InventoryItemID string          `json:"inventory_item_id"`
	ItemName        string          `json:"item_name"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
}

// MovementFilter selects movements for listing.
type MovementFilter struct {
	InventoryItemID string `form:"inventory_item_id"`
	MovementType    string `form:"movement_type"`
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
