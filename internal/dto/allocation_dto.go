package dto

import "github.com/shopspring/decimal"

// LinkTransactionRequest links a bank transaction to an invoice.
// Exactly one of AllocationAmount / AllocationPercentage may be given;
// with neither, the transaction's full absolute amount is allocated.
type LinkTransactionRequest struct {
	TransactionID        string           `json:"transaction_id" validate:"required,uuid"`
	InvoiceID            string           `json:"invoice_id" validate:"required,uuid"`
	AllocationAmount     *decimal.Decimal `json:"allocation_amount,omitempty"`
	AllocationPercentage *decimal.Decimal `json:"allocation_percentage,omitempty"`
	Notes                string           `json:"notes,omitempty"`
}

// UnlinkTransactionRequest removes an allocation either by its id or by the
// (transaction, invoice) pair.
type UnlinkTransactionRequest struct {
	AllocationID  string `json:"allocation_id,omitempty" validate:"omitempty,uuid"`
	TransactionID string `json:"transaction_id,omitempty" validate:"omitempty,uuid"`
	InvoiceID     string `json:"invoice_id,omitempty" validate:"omitempty,uuid"`
}

// LinkExpenseRequest links a bank transaction to one cost bucket of a
// blueprint usage.
type LinkExpenseRequest struct {
	TransactionID    string           `json:"transaction_id" validate:"required,uuid"`
	BlueprintUsageID string           `json:"blueprint_usage_id" validate:"required,uuid"`
	ExpenseType      string           `json:"expense_type" validate:"required,oneof=materials labor overhead"`
	AllocationAmount *decimal.Decimal `json:"allocation_amount,omitempty"`
}

type AllocationResponse struct {
	ID                   string           `json:"id"`
	TransactionID        string           `json:"transaction_id"`
	InvoiceID            string           `json:"invoice_id"`
	AllocationAmount     decimal.Decimal  `json:"allocation_amount"`
	AllocationPercentage *decimal.Decimal `json:"allocation_percentage,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	CreatedAt            string           `json:"created_at"`
}

// InvoiceTotals reports the invoice's derived cost fields after a mutation.
// Nil values mean "no cost data" (all allocations removed), not zero.
type InvoiceTotals struct {
	InvoiceID       string           `json:"invoice_id"`
	TotalActualCost *decimal.Decimal `json:"total_actual_cost"`
	ActualProfit    *decimal.Decimal `json:"actual_profit"`
}

type LinkTransactionResponse struct {
	Allocation           AllocationResponse `json:"allocation"`
	InvoiceTotalsUpdated InvoiceTotals      `json:"invoice_totals_updated"`
}

type UnlinkTransactionResponse struct {
	InvoiceTotalsUpdated InvoiceTotals `json:"invoice_totals_updated"`
}

type ExpenseAllocationResponse struct {
	ID               string          `json:"id"`
	TransactionID    string          `json:"transaction_id"`
	BlueprintUsageID string          `json:"blueprint_usage_id"`
	ExpenseType      string          `json:"expense_type"`
	AllocationAmount decimal.Decimal `json:"allocation_amount"`
}

// UsageCosts is the recomputed actual-cost trio of a blueprint usage.
type UsageCosts struct {
	BlueprintUsageID    string          `json:"blueprint_usage_id"`
	ActualMaterialsCost decimal.Decimal `json:"actual_materials_cost"`
	ActualLaborCost     decimal.Decimal `json:"actual_labor_cost"`
	ActualOverheadCost  decimal.Decimal `json:"actual_overhead_cost"`
	ActualTotalCost     decimal.Decimal `json:"actual_total_cost"`
}

type LinkExpenseResponse struct {
	Allocation        ExpenseAllocationResponse `json:"allocation"`
	UsageCostsUpdated UsageCosts                `json:"usage_costs_updated"`
}
