package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cost sources, in priority order. The first applicable source wins.
const (
	CostSourceOverride     = "override"
	CostSourceTransactions = "transactions"
	CostSourceBlueprint    = "blueprint"
	CostSourceNone         = "none"
)

var hundred = decimal.NewFromInt(100)

// ProfitInput carries everything a single reconciliation needs. Callers
// pre-fetch the sums; Reconcile itself never touches the store.
type ProfitInput struct {
	Revenue decimal.Decimal

	// OverrideCost is the manually stored cost; only honored when
	// OverrideActive (cost_override_by_user) is set.
	OverrideActive bool
	OverrideCost   *decimal.Decimal

	// TransactionCost is the sum of the invoice's transaction allocations.
	TransactionCost decimal.Decimal

	// BlueprintCost is the sum of blueprint-usage estimated costs linked to
	// the invoice; HasBlueprint distinguishes "no usages" from a zero sum.
	BlueprintCost decimal.Decimal
	HasBlueprint  bool
}

// ProfitBreakdown is the reconciled profitability of one invoice.
type ProfitBreakdown struct {
	EffectiveCost decimal.Decimal
	CostSource    string
	Profit        decimal.Decimal
	MarginPct     decimal.Decimal

	// EstimatedProfit and Variance are set whenever a blueprint estimate
	// exists, independent of which source won — surfaced for budget tracking.
	EstimatedProfit *decimal.Decimal
	Variance        *decimal.Decimal
}

// Reconcile computes the effective cost by the fixed priority order:
// manual override, then linked-transaction allocations, then blueprint
// estimates, then zero. Pure function; callable per invoice or in batch.
func Reconcile(in ProfitInput) ProfitBreakdown {
	var out ProfitBreakdown

	switch {
	case in.OverrideActive && in.OverrideCost != nil:
		out.EffectiveCost = *in.OverrideCost
		out.CostSource = CostSourceOverride
	case in.TransactionCost.IsPositive():
		out.EffectiveCost = in.TransactionCost
		out.CostSource = CostSourceTransactions
	case in.HasBlueprint && in.BlueprintCost.IsPositive():
		out.EffectiveCost = in.BlueprintCost
		out.CostSource = CostSourceBlueprint
	default:
		out.EffectiveCost = decimal.Zero
		out.CostSource = CostSourceNone
	}

	out.Profit = in.Revenue.Sub(out.EffectiveCost)
	if in.Revenue.IsPositive() {
		out.MarginPct = out.Profit.Div(in.Revenue).Mul(hundred).Round(2)
	} else {
		out.MarginPct = decimal.Zero
	}

	if in.HasBlueprint {
		estimated := in.Revenue.Sub(in.BlueprintCost)
		variance := out.Profit.Sub(estimated)
		out.EstimatedProfit = &estimated
		out.Variance = &variance
	}

	return out
}

// BatchInvoice is one invoice's pre-fetched reconciliation inputs.
type BatchInvoice struct {
	InvoiceID uuid.UUID
	Input     ProfitInput
}

// ProfitSummary aggregates a batch reconciliation.
type ProfitSummary struct {
	TotalRevenue   decimal.Decimal
	TotalCost      decimal.Decimal
	TotalProfit    decimal.Decimal
	AverageMargin  decimal.Decimal
	InvoiceCount   int
	CountsBySource map[string]int
	Breakdowns     map[uuid.UUID]ProfitBreakdown
}

// ReconcileBatch reconciles every invoice from pre-fetched inputs — callers
// group allocations and usages by invoice id up front so no per-invoice
// queries are issued here.
func ReconcileBatch(invoices []BatchInvoice) ProfitSummary {
	summary := ProfitSummary{
		TotalRevenue:   decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalProfit:    decimal.Zero,
		AverageMargin:  decimal.Zero,
		CountsBySource: make(map[string]int),
		Breakdowns:     make(map[uuid.UUID]ProfitBreakdown, len(invoices)),
	}

	marginSum := decimal.Zero
	for _, inv := range invoices {
		b := Reconcile(inv.Input)
		summary.Breakdowns[inv.InvoiceID] = b
		summary.TotalRevenue = summary.TotalRevenue.Add(inv.Input.Revenue)
		summary.TotalCost = summary.TotalCost.Add(b.EffectiveCost)
		summary.TotalProfit = summary.TotalProfit.Add(b.Profit)
		summary.CountsBySource[b.CostSource]++
		marginSum = marginSum.Add(b.MarginPct)
	}

	summary.InvoiceCount = len(invoices)
	if summary.InvoiceCount > 0 {
		summary.AverageMargin = marginSum.Div(decimal.NewFromInt(int64(summary.InvoiceCount))).Round(2)
	}
	return summary
}
