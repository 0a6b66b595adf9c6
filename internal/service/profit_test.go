package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_OverrideBeatsEverything(t *testing.T) {
	override := dec("200")
	out := Reconcile(ProfitInput{
		Revenue:         dec("5000"),
		OverrideActive:  true,
		OverrideCost:    &override,
		TransactionCost: dec("1200"),
		BlueprintCost:   dec("900"),
		HasBlueprint:    true,
	})

	assert.Equal(t, CostSourceOverride, out.CostSource)
	assert.True(t, out.EffectiveCost.Equal(dec("200")))
	assert.True(t, out.Profit.Equal(dec("4800")))
	assert.True(t, out.MarginPct.Equal(dec("96")))
}

func TestReconcile_OverrideRequiresFlag(t *testing.T) {
	// A stored cost without the override flag is just the allocation
	// aggregate; the transaction sum still wins.
	stored := dec("200")
	out := Reconcile(ProfitInput{
		Revenue:         dec("5000"),
		OverrideActive:  false,
		OverrideCost:    &stored,
		TransactionCost: dec("1200"),
	})
	assert.Equal(t, CostSourceTransactions, out.CostSource)
	assert.True(t, out.EffectiveCost.Equal(dec("1200")))
}

func TestReconcile_TransactionsBeatBlueprint(t *testing.T) {
	out := Reconcile(ProfitInput{
		Revenue:         dec("1000"),
		TransactionCost: dec("400"),
		BlueprintCost:   dec("700"),
		HasBlueprint:    true,
	})
	assert.Equal(t, CostSourceTransactions, out.CostSource)
	assert.True(t, out.Profit.Equal(dec("600")))
	assert.True(t, out.MarginPct.Equal(dec("60")))
}

func TestReconcile_BlueprintFallback(t *testing.T) {
	out := Reconcile(ProfitInput{
		Revenue:       dec("1000"),
		BlueprintCost: dec("700"),
		HasBlueprint:  true,
	})
	assert.Equal(t, CostSourceBlueprint, out.CostSource)
	assert.True(t, out.EffectiveCost.Equal(dec("700")))
	assert.True(t, out.Profit.Equal(dec("300")))
}

func TestReconcile_NoCostData(t *testing.T) {
	out := Reconcile(ProfitInput{Revenue: dec("1000")})
	assert.Equal(t, CostSourceNone, out.CostSource)
	assert.True(t, out.EffectiveCost.IsZero())
	assert.True(t, out.Profit.Equal(dec("1000")))
	assert.Nil(t, out.EstimatedProfit)
	assert.Nil(t, out.Variance)
}

func TestReconcile_ZeroRevenueMargin(t *testing.T) {
	// Margin must not divide by zero; it reports 0 instead.
	out := Reconcile(ProfitInput{
		Revenue:         decimal.Zero,
		TransactionCost: dec("50"),
	})
	assert.True(t, out.MarginPct.IsZero())
	assert.True(t, out.Profit.Equal(dec("-50")))
}

func TestReconcile_VarianceAgainstEstimate(t *testing.T) {
	// Actual cost 1200 vs estimate 900 on revenue 5000: the job made 300
	// less than estimated.
	out := Reconcile(ProfitInput{
		Revenue:         dec("5000"),
		TransactionCost: dec("1200"),
		BlueprintCost:   dec("900"),
		HasBlueprint:    true,
	})

	require.NotNil(t, out.EstimatedProfit)
	require.NotNil(t, out.Variance)
	assert.True(t, out.EstimatedProfit.Equal(dec("4100")))
	assert.True(t, out.Variance.Equal(dec("-300")))
}

func TestReconcileBatch_Totals(t *testing.T) {
	override := dec("100")
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	summary := ReconcileBatch([]BatchInvoice{
		{InvoiceID: a, Input: ProfitInput{Revenue: dec("1000"), TransactionCost: dec("400")}},
		{InvoiceID: b, Input: ProfitInput{Revenue: dec("500"), OverrideActive: true, OverrideCost: &override}},
		{InvoiceID: c, Input: ProfitInput{Revenue: dec("200")}},
	})

	assert.Equal(t, 3, summary.InvoiceCount)
	assert.True(t, summary.TotalRevenue.Equal(dec("1700")))
	assert.True(t, summary.TotalCost.Equal(dec("500")))
	assert.True(t, summary.TotalProfit.Equal(dec("1200")))
	assert.Equal(t, 1, summary.CountsBySource[CostSourceTransactions])
	assert.Equal(t, 1, summary.CountsBySource[CostSourceOverride])
	assert.Equal(t, 1, summary.CountsBySource[CostSourceNone])

	// margins: 60, 80, 100 → average 80
	assert.True(t, summary.AverageMargin.Equal(dec("80")))
}

func TestReconcileBatch_Empty(t *testing.T) {
	summary := ReconcileBatch(nil)
	assert.Equal(t, 0, summary.InvoiceCount)
	assert.True(t, summary.AverageMargin.IsZero())
}
