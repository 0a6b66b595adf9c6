package service

import (
	"context"
	"time"

	"github.com/Enochthedev/mintro-sub001/internal/apierror"
	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/model"
	"github.com/Enochthedev/mintro-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService edits invoices (including the manual cost override path)
// and serves reconciled profitability, single and batch.
type InvoiceService interface {
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	Profit(ctx context.Context, userID, id uuid.UUID) (*dto.ProfitResponse, error)
	ProfitSummary(ctx context.Context, userID uuid.UUID) (*dto.ProfitSummaryResponse, error)
}

type invoiceService struct {
	invoices    repository.InvoiceRepository
	allocations repository.AllocationRepository
	blueprints  repository.BlueprintRepository
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	allocations repository.AllocationRepository,
	blueprints repository.BlueprintRepository,
) InvoiceService {
	return &invoiceService{invoices: invoices, allocations: allocations, blueprints: blueprints}
}

func (s *invoiceService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	invoice, err := s.invoices.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", id)
	}
	if req.OverrideCost != nil && req.ClearOverride {
		return nil, apierror.InvalidArgument("override_cost and clear_override are mutually exclusive")
	}

	if req.CustomerName != nil {
		invoice.CustomerName = *req.CustomerName
	}
	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	if req.Status != nil {
		invoice.Status = *req.Status
	}
	if req.InvoiceDate != nil {
		d, err := time.Parse("2006-01-02", *req.InvoiceDate)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid invoice_date %q, want YYYY-MM-DD", *req.InvoiceDate)
		}
		invoice.InvoiceDate = d
	}

	switch {
	case req.OverrideCost != nil:
		// Manual override: the stored cost is the user's, until cleared.
		cost := *req.OverrideCost
		profit := invoice.Amount.Sub(cost)
		invoice.TotalActualCost = &cost
		invoice.ActualProfit = &profit
		invoice.CostOverrideByUser = true
	case req.ClearOverride:
		invoice.CostOverrideByUser = false
		if err := s.applyAllocationTotals(ctx, invoice); err != nil {
			return nil, err
		}
	case req.Amount != nil && invoice.TotalActualCost != nil:
		// Revenue changed: the stored profit follows.
		profit := invoice.Amount.Sub(*invoice.TotalActualCost)
		invoice.ActualProfit = &profit
	}

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoiceToResponse(invoice), nil
}

// applyAllocationTotals hands the derived columns back to the allocation
// aggregate after an override is cleared.
func (s *invoiceService) applyAllocationTotals(ctx context.Context, invoice *model.Invoice) error {
	sum, count, err := s.allocations.SumForInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if count == 0 {
		invoice.TotalActualCost = nil
		invoice.ActualProfit = nil
		return nil
	}
	profit := invoice.Amount.Sub(sum)
	invoice.TotalActualCost = &sum
	invoice.ActualProfit = &profit
	return nil
}

func (s *invoiceService) Profit(ctx context.Context, userID, id uuid.UUID) (*dto.ProfitResponse, error) {
	invoice, err := s.invoices.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", id)
	}

	txCost, _, err := s.allocations.SumForInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	usages, err := s.blueprints.ListUsagesByInvoice(ctx, userID, invoice.ID)
	if err != nil {
		return nil, err
	}

	in := profitInputFor(invoice, txCost, usages)
	breakdown := Reconcile(in)
	resp := profitToResponse(invoice.ID, invoice.Amount, breakdown)
	return &resp, nil
}

// ProfitSummary reconciles every invoice in one pass: allocations and usages
// are fetched once and grouped by invoice id, never per invoice.
func (s *invoiceService) ProfitSummary(ctx context.Context, userID uuid.UUID) (*dto.ProfitSummaryResponse, error) {
	invoices, err := s.invoices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	usages, err := s.blueprints.ListUsagesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	costByInvoice := make(map[uuid.UUID]decimal.Decimal)
	for _, a := range allocations {
		costByInvoice[a.InvoiceID] = costByInvoice[a.InvoiceID].Add(a.AllocationAmount)
	}
	usagesByInvoice := make(map[uuid.UUID][]model.BlueprintUsage)
	for _, u := range usages {
		if u.InvoiceID != nil {
			usagesByInvoice[*u.InvoiceID] = append(usagesByInvoice[*u.InvoiceID], u)
		}
	}

	batch := make([]BatchInvoice, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		batch = append(batch, BatchInvoice{
			InvoiceID: inv.ID,
			Input:     profitInputFor(inv, costByInvoice[inv.ID], usagesByInvoice[inv.ID]),
		})
	}
	summary := ReconcileBatch(batch)

	resp := &dto.ProfitSummaryResponse{
		TotalRevenue:     summary.TotalRevenue,
		TotalCost:        summary.TotalCost,
		TotalProfit:      summary.TotalProfit,
		AverageMarginPct: summary.AverageMargin,
		InvoiceCount:     summary.InvoiceCount,
		CountsBySource:   summary.CountsBySource,
		Invoices:         make([]dto.ProfitResponse, 0, len(invoices)),
	}
	for i := range invoices {
		inv := &invoices[i]
		resp.Invoices = append(resp.Invoices, profitToResponse(inv.ID, inv.Amount, summary.Breakdowns[inv.ID]))
	}
	return resp, nil
}

// profitInputFor assembles the pure engine's input from an invoice and its
// pre-fetched allocation sum and blueprint usages. The blueprint cost is the
// sum of the linked blueprints' ESTIMATED costs — actual usage costs already
// flow through expense allocations.
func profitInputFor(inv *model.Invoice, txCost decimal.Decimal, usages []model.BlueprintUsage) ProfitInput {
	in := ProfitInput{
		Revenue:         inv.Amount,
		OverrideActive:  inv.CostOverrideByUser,
		OverrideCost:    inv.TotalActualCost,
		TransactionCost: txCost,
		HasBlueprint:    len(usages) > 0,
		BlueprintCost:   decimal.Zero,
	}
	for i := range usages {
		if usages[i].Blueprint != nil {
			in.BlueprintCost = in.BlueprintCost.Add(usages[i].Blueprint.EstimatedTotalCost())
		}
	}
	return in
}

func profitToResponse(id uuid.UUID, revenue decimal.Decimal, b ProfitBreakdown) dto.ProfitResponse {
	return dto.ProfitResponse{
		InvoiceID:       id.String(),
		Revenue:         revenue,
		EffectiveCost:   b.EffectiveCost,
		CostSource:      b.CostSource,
		Profit:          b.Profit,
		MarginPct:       b.MarginPct,
		EstimatedProfit: b.EstimatedProfit,
		Variance:        b.Variance,
	}
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:                 inv.ID.String(),
		CustomerName:       inv.CustomerName,
		Amount:             inv.Amount,
		Status:             inv.Status,
		InvoiceDate:        inv.InvoiceDate.Format("2006-01-02"),
		TotalActualCost:    inv.TotalActualCost,
		ActualProfit:       inv.ActualProfit,
		CostOverrideByUser: inv.CostOverrideByUser,
	}
}
