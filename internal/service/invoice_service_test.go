package service

import (
	"context"
	"testing"

	"github.com/Enochthedev/mintro-sub001/internal/apierror"
	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceFixture struct {
	invoices    *stubInvoiceRepo
	allocations *stubAllocationRepo
	blueprints  *stubBlueprintRepo
	svc         InvoiceService
	userID      uuid.UUID
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoices:    newStubInvoiceRepo(),
		allocations: newStubAllocationRepo(),
		blueprints:  newStubBlueprintRepo(),
		userID:      uuid.New(),
	}
	f.svc = NewInvoiceService(f.invoices, f.allocations, f.blueprints)
	return f
}

func (f *invoiceFixture) allocate(invoiceID uuid.UUID, amount string) {
	a := &model.Allocation{
		UserID:           f.userID,
		TransactionID:    uuid.New(),
		InvoiceID:        invoiceID,
		AllocationAmount: dec(amount),
	}
	_ = f.allocations.Create(context.Background(), a)
}

func TestInvoiceUpdate_OverridePersists(t *testing.T) {
	f := newInvoiceFixture()
	invoice := f.invoices.add(f.userID, dec("5000"))
	f.allocate(invoice.ID, "1200")

	override := dec("200")
	resp, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		OverrideCost: &override,
	})
	require.NoError(t, err)
	assert.True(t, resp.CostOverrideByUser)
	require.NotNil(t, resp.TotalActualCost)
	assert.True(t, resp.TotalActualCost.Equal(dec("200")))
	assert.True(t, resp.ActualProfit.Equal(dec("4800")))

	// The reconciled profit now reads from the override, not the 1200 of
	// linked transactions.
	profit, err := f.svc.Profit(context.Background(), f.userID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, CostSourceOverride, profit.CostSource)
	assert.True(t, profit.EffectiveCost.Equal(dec("200")))
	assert.True(t, profit.Profit.Equal(dec("4800")))
}

func TestInvoiceUpdate_ClearOverrideRestoresAllocations(t *testing.T) {
	f := newInvoiceFixture()
	invoice := f.invoices.add(f.userID, dec("5000"))
	f.allocate(invoice.ID, "1200")

	override := dec("200")
	_, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		OverrideCost: &override,
	})
	require.NoError(t, err)

	resp, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		ClearOverride: true,
	})
	require.NoError(t, err)
	assert.False(t, resp.CostOverrideByUser)
	require.NotNil(t, resp.TotalActualCost)
	assert.True(t, resp.TotalActualCost.Equal(dec("1200")))
	assert.True(t, resp.ActualProfit.Equal(dec("3800")))
}

func TestInvoiceUpdate_ClearOverrideWithoutAllocations(t *testing.T) {
	f := newInvoiceFixture()
	invoice := f.invoices.add(f.userID, dec("5000"))

	override := dec("200")
	_, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		OverrideCost: &override,
	})
	require.NoError(t, err)

	resp, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		ClearOverride: true,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.TotalActualCost)
	assert.Nil(t, resp.ActualProfit)
}

func TestInvoiceUpdate_OverrideAndClearMutuallyExclusive(t *testing.T) {
	f := newInvoiceFixture()
	invoice := f.invoices.add(f.userID, dec("5000"))

	override := dec("200")
	_, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		OverrideCost:  &override,
		ClearOverride: true,
	})
	require.Error(t, err)
	apiErr, ok := err.(*apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.CodeInvalidArgument, apiErr.Code)
}

func TestInvoiceUpdate_AmountChangeRefreshesStoredProfit(t *testing.T) {
	f := newInvoiceFixture()
	invoice := f.invoices.add(f.userID, dec("5000"))
	cost := dec("1200")
	profit := dec("3800")
	invoice.TotalActualCost = &cost
	invoice.ActualProfit = &profit

	amount := dec("6000")
	resp, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		Amount: &amount,
	})
	require.NoError(t, err)
	assert.True(t, resp.Amount.Equal(dec("6000")))
	assert.True(t, resp.ActualProfit.Equal(dec("4800")))
}

func TestInvoiceUpdate_FieldPatch(t *testing.T) {
	f := newInvoiceFixture()
	invoice := f.invoices.add(f.userID, dec("5000"))

	name := "Acme Fencing"
	status := "paid"
	date := "2025-07-15"
	resp, err := f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		CustomerName: &name,
		Status:       &status,
		InvoiceDate:  &date,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Fencing", resp.CustomerName)
	assert.Equal(t, "paid", resp.Status)
	assert.Equal(t, "2025-07-15", resp.InvoiceDate)

	bad := "15/07/2025"
	_, err = f.svc.Update(context.Background(), f.userID, invoice.ID, dto.UpdateInvoiceRequest{
		InvoiceDate: &bad,
	})
	require.Error(t, err)
}

func TestProfit_BlueprintFallbackWithVariance(t *testing.T) {
	f := newInvoiceFixture()
	invoice := f.invoices.add(f.userID, dec("5000"))

	bp := f.blueprints.addBlueprint(f.userID, "deck")
	bp.EstimatedMaterialsCost = dec("600")
	bp.EstimatedLaborCost = dec("300")
	f.blueprints.addUsage(f.userID, bp.ID, &invoice.ID, dec("4500"))

	resp, err := f.svc.Profit(context.Background(), f.userID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, CostSourceBlueprint, resp.CostSource)
	assert.True(t, resp.EffectiveCost.Equal(dec("900")))
	assert.True(t, resp.Profit.Equal(dec("4100")))

	// The estimate is the effective cost, so variance is zero.
	require.NotNil(t, resp.EstimatedProfit)
	assert.True(t, resp.EstimatedProfit.Equal(dec("4100")))
	assert.True(t, resp.Variance.IsZero())
}

func TestProfit_UnknownInvoice(t *testing.T) {
	f := newInvoiceFixture()
	_, err := f.svc.Profit(context.Background(), f.userID, uuid.New())
	require.Error(t, err)
	apiErr, ok := err.(*apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.CodeNotFound, apiErr.Code)
}

func TestProfitSummary_GroupsAndCounts(t *testing.T) {
	f := newInvoiceFixture()

	// Invoice 1: transaction allocations.
	inv1 := f.invoices.add(f.userID, dec("1000"))
	f.allocate(inv1.ID, "400")

	// Invoice 2: manual override.
	inv2 := f.invoices.add(f.userID, dec("500"))
	override := dec("100")
	profit2 := dec("400")
	inv2.TotalActualCost = &override
	inv2.ActualProfit = &profit2
	inv2.CostOverrideByUser = true

	// Invoice 3: blueprint estimate only.
	inv3 := f.invoices.add(f.userID, dec("800"))
	bp := f.blueprints.addBlueprint(f.userID, "shed")
	bp.EstimatedMaterialsCost = dec("200")
	f.blueprints.addUsage(f.userID, bp.ID, &inv3.ID, dec("800"))

	// Another user's invoice is invisible.
	f.invoices.add(uuid.New(), dec("9999"))

	resp, err := f.svc.ProfitSummary(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.InvoiceCount)
	assert.True(t, resp.TotalRevenue.Equal(dec("2300")))
	assert.True(t, resp.TotalCost.Equal(dec("700")))
	assert.True(t, resp.TotalProfit.Equal(dec("1600")))
	assert.Equal(t, 1, resp.CountsBySource[CostSourceTransactions])
	assert.Equal(t, 1, resp.CountsBySource[CostSourceOverride])
	assert.Equal(t, 1, resp.CountsBySource[CostSourceBlueprint])
	assert.Len(t, resp.Invoices, 3)
}
