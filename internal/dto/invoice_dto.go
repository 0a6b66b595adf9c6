package dto

import "github.com/shopspring/decimal"

// UpdateInvoiceRequest edits an invoice. The cost override path: setting
// OverrideCost stores a manual cost and flips CostOverrideByUser on;
// ClearOverride removes it and hands the cost back to the profit engine.
type UpdateInvoiceRequest struct {
	CustomerName  *string          `json:"customer_name,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Status        *string          `json:"status,omitempty" validate:"omitempty,oneof=draft sent paid void"`
	InvoiceDate   *string          `json:"invoice_date,omitempty"` // YYYY-MM-DD
	OverrideCost  *decimal.Decimal `json:"override_cost,omitempty"`
	ClearOverride bool             `json:"clear_override,omitempty"`
}

type InvoiceResponse struct {
	ID                 string           `json:"id"`
	CustomerName       string           `json:"customer_name"`
	Amount             decimal.Decimal  `json:"amount"`
	Status             string           `json:"status"`
	InvoiceDate        string           `json:"invoice_date"`
	TotalActualCost    *decimal.Decimal `json:"total_actual_cost"`
	ActualProfit       *decimal.Decimal `json:"actual_profit"`
	CostOverrideByUser bool             `json:"cost_override_by_user"`
}

// ProfitResponse is one invoice's reconciled profitability.
type ProfitResponse struct {
	InvoiceID       string           `json:"invoice_id"`
	Revenue         decimal.Decimal  `json:"revenue"`
	EffectiveCost   decimal.Decimal  `json:"effective_cost"`
	CostSource      string           `json:"cost_source"` // override | transactions | blueprint | none
	Profit          decimal.Decimal  `json:"profit"`
	MarginPct       decimal.Decimal  `json:"margin_pct"`
	EstimatedProfit *decimal.Decimal `json:"estimated_profit,omitempty"`
	Variance        *decimal.Decimal `json:"variance,omitempty"`
}

// ProfitSummaryResponse aggregates reconciled profitability across invoices.
type ProfitSummaryResponse struct {
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	TotalCost        decimal.Decimal  `json:"total_cost"`
	TotalProfit      decimal.Decimal  `json:"total_profit"`
	AverageMarginPct decimal.Decimal  `json:"average_margin_pct"`
	InvoiceCount     int              `json:"invoice_count"`
	CountsBySource   map[string]int   `json:"counts_by_source"`
	Invoices         []ProfitResponse `json:"invoices"`
}

// PurgeRequest guards destructive bulk deletions: absent Confirm, the
// operation is refused and the response only previews what would be deleted.
type PurgeRequest struct {
	Confirm bool `json:"confirm"`
}

// PurgePreview describes what a purge would (or did) remove.
type PurgePreview struct {
	InvoiceCount    int64           `json:"invoice_count,omitempty"`
	UsageCount      int64           `json:"usage_count,omitempty"`
	LineItemCount   int64           `json:"line_item_count,omitempty"`
	AllocationCount int64           `json:"allocation_count,omitempty"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
}

type PurgeResponse struct {
	Deleted  bool         `json:"deleted"`
	Preview  PurgePreview `json:"preview"`
	Warnings []string     `json:"warnings,omitempty"`
}
