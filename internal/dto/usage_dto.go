package dto

import "github.com/shopspring/decimal"

// UsageInput is one requested blueprint instantiation.
type UsageInput struct {
	BlueprintID         string           `json:"blueprint_id" validate:"required,uuid"`
	ActualMaterialsCost *decimal.Decimal `json:"actual_materials_cost,omitempty"`
	ActualLaborCost     *decimal.Decimal `json:"actual_labor_cost,omitempty"`
	ActualOverheadCost  *decimal.Decimal `json:"actual_overhead_cost,omitempty"`
	ActualSalePrice     *decimal.Decimal `json:"actual_sale_price" validate:"required"`
	CompletedDate       *string          `json:"completed_date,omitempty"` // YYYY-MM-DD
	Notes               string           `json:"notes,omitempty"`
}

// CreateUsageRequest creates a single blueprint usage.
type CreateUsageRequest struct {
	InvoiceID       *string    `json:"invoice_id,omitempty" validate:"omitempty,uuid"`
	Usage           UsageInput `json:"usage" validate:"required"`
	DeductInventory *bool      `json:"deduct_inventory,omitempty"` // default true
}

// CreateUsageBatchRequest creates several usages in one all-or-nothing batch.
type CreateUsageBatchRequest struct {
	InvoiceID       *string      `json:"invoice_id,omitempty" validate:"omitempty,uuid"`
	Usages          []UsageInput `json:"usages" validate:"required,min=1,dive"`
	DeductInventory *bool        `json:"deduct_inventory,omitempty"` // default true
}

type UsageResponse struct {
	ID                  string          `json:"id"`
	BlueprintID         string          `json:"blueprint_id"`
	BlueprintName       string          `json:"blueprint_name,omitempty"`
	InvoiceID           *string         `json:"invoice_id,omitempty"`
	ActualMaterialsCost decimal.Decimal `json:"actual_materials_cost"`
	ActualLaborCost     decimal.Decimal `json:"actual_labor_cost"`
	ActualOverheadCost  decimal.Decimal `json:"actual_overhead_cost"`
	ActualSalePrice     decimal.Decimal `json:"actual_sale_price"`
	CompletedDate       *string         `json:"completed_date,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           string          `json:"created_at"`
}

// InventoryDeduction reports one item's stock change from a usage batch.
type InventoryDeduction struct {
	InventoryItemID  string          `json:"inventory_item_id"`
	ItemName         string          `json:"item_name"`
	QuantityBefore   decimal.Decimal `json:"quantity_before"`
	QuantityDeducted decimal.Decimal `json:"quantity_deducted"`
	QuantityAfter    decimal.Decimal `json:"quantity_after"`
	IsLowStock       bool            `json:"is_low_stock"`
}

// UsageFinancialSummary aggregates actuals across the created batch.
type UsageFinancialSummary struct {
	TotalActualCost decimal.Decimal `json:"total_actual_cost"`
	TotalSalePrice  decimal.Decimal `json:"total_sale_price"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	UsageCount      int             `json:"usage_count"`
}

// CreateUsageResponse is a partial-success result: Usages are always fully
// created; Warnings surface best-effort deduction failures that occurred
// after the aggregate availability check passed.
type CreateUsageResponse struct {
	Usages              []UsageResponse       `json:"usages"`
	InventoryDeductions []InventoryDeduction  `json:"inventory_deductions"`
	LowStockAlerts      []LowStockAlert       `json:"low_stock_alerts"`
	FinancialSummary    UsageFinancialSummary `json:"financial_summary"`
	Warnings            []string              `json:"warnings,omitempty"`
}
