package service

import (
	"context"
	"errors"
	"time"

	"github.com/Enochthedev/mintro-sub001/internal/apierror"
	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/model"
	"github.com/Enochthedev/mintro-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// overAllocationEpsilon tolerates floating rounding when comparing the sum of
// a transaction's allocations against its absolute amount.
var overAllocationEpsilon = decimal.NewFromFloat(0.01)

// AllocationService links and unlinks bank transactions against invoices and
// blueprint-usage cost buckets, guarding the over-allocation invariant and
// refreshing the dependent denormalized totals after every mutation.
type AllocationService interface {
	LinkToInvoice(ctx context.Context, userID uuid.UUID, req dto.LinkTransactionRequest) (*dto.LinkTransactionResponse, error)
	Unlink(ctx context.Context, userID uuid.UUID, req dto.UnlinkTransactionRequest) (*dto.UnlinkTransactionResponse, error)
	LinkToUsage(ctx context.Context, userID uuid.UUID, req dto.LinkExpenseRequest) (*dto.LinkExpenseResponse, error)
	UnlinkFromUsage(ctx context.Context, userID, expenseID uuid.UUID) (*dto.UsageCosts, error)
}

type allocationService struct {
	transactions repository.TransactionRepository
	invoices     repository.InvoiceRepository
	allocations  repository.AllocationRepository
	blueprints   repository.BlueprintRepository
}

func NewAllocationService(
	transactions repository.TransactionRepository,
	invoices repository.InvoiceRepository,
	allocations repository.AllocationRepository,
	blueprints repository.BlueprintRepository,
) AllocationService {
	return &allocationService{
		transactions: transactions,
		invoices:     invoices,
		allocations:  allocations,
		blueprints:   blueprints,
	}
}

// ── Link transaction → invoice ───────────────────────────────────────────────

func (s *allocationService) LinkToInvoice(ctx context.Context, userID uuid.UUID, req dto.LinkTransactionRequest) (*dto.LinkTransactionResponse, error) {
	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid transaction_id: %s", req.TransactionID)
	}
	invID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid invoice_id: %s", req.InvoiceID)
	}

	bankTx, err := s.transactions.FindByID(ctx, userID, txID)
	if err != nil {
		return nil, apierror.NotFound("transaction %s not found", txID)
	}
	invoice, err := s.invoices.FindByID(ctx, userID, invID)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", invID)
	}

	amount, err := resolveAllocationAmount(bankTx.AbsAmount(), req.AllocationAmount, req.AllocationPercentage)
	if err != nil {
		return nil, err
	}

	// Upsert by (transaction, invoice): re-linking updates in place.
	var existing *model.Allocation
	var excludeID *uuid.UUID
	if found, findErr := s.allocations.FindByPair(ctx, userID, txID, invID); findErr == nil {
		existing = found
		excludeID = &found.ID
	}

	// Over-allocation guard: a fresh sum of the transaction's OTHER
	// allocations, excluding the row being replaced.
	allocated, err := s.allocations.SumForTransaction(ctx, txID, excludeID)
	if err != nil {
		return nil, err
	}
	if allocated.Add(amount).GreaterThan(bankTx.AbsAmount().Add(overAllocationEpsilon)) {
		return nil, apierror.OverAllocation(txID.String(), bankTx.AbsAmount(), allocated, amount)
	}

	alloc := existing
	if alloc == nil {
		alloc = &model.Allocation{
			UserID:        userID,
			TransactionID: txID,
			InvoiceID:     invID,
		}
	}
	alloc.AllocationAmount = amount
	alloc.AllocationPercentage = req.AllocationPercentage
	alloc.Notes = req.Notes

	if existing == nil {
		err = s.allocations.Create(ctx, alloc)
	} else {
		err = s.allocations.Update(ctx, alloc)
	}
	if err != nil {
		return nil, err
	}

	// The insert/update has committed; recomputation is a fresh aggregate read.
	totals, err := s.recomputeInvoiceTotals(ctx, invoice)
	if err != nil {
		return nil, err
	}

	return &dto.LinkTransactionResponse{
		Allocation:           allocationToResponse(alloc),
		InvoiceTotalsUpdated: *totals,
	}, nil
}

// resolveAllocationAmount picks the allocation amount: explicit fixed amount,
// a percentage of the transaction's absolute amount, or the full amount.
func resolveAllocationAmount(txAbs decimal.Decimal, amount, percentage *decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case amount != nil && percentage != nil:
		return decimal.Zero, apierror.InvalidArgument("allocation_amount and allocation_percentage are mutually exclusive")
	case amount != nil:
		if !amount.IsPositive() {
			return decimal.Zero, apierror.InvalidArgument("allocation_amount must be positive, got %s", amount)
		}
		return *amount, nil
	case percentage != nil:
		if !percentage.IsPositive() || percentage.GreaterThan(hundred) {
			return decimal.Zero, apierror.InvalidArgument("allocation_percentage must be in (0, 100], got %s", percentage)
		}
		return txAbs.Mul(*percentage).Div(hundred).Round(2), nil
	default:
		if txAbs.IsZero() {
			return decimal.Zero, apierror.InvalidArgument("transaction amount is zero; nothing to allocate")
		}
		return txAbs, nil
	}
}

// ── Unlink transaction → invoice ─────────────────────────────────────────────

func (s *allocationService) Unlink(ctx context.Context, userID uuid.UUID, req dto.UnlinkTransactionRequest) (*dto.UnlinkTransactionResponse, error) {
	alloc, err := s.resolveAllocation(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.FindByID(ctx, userID, alloc.InvoiceID)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", alloc.InvoiceID)
	}

	if err := s.allocations.Delete(ctx, alloc.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Conflict("allocation %s already deleted", alloc.ID)
		}
		return nil, err
	}

	// Delete committed first; the recompute below reads a fresh aggregate.
	totals, err := s.recomputeInvoiceTotals(ctx, invoice)
	if err != nil {
		return nil, err
	}
	return &dto.UnlinkTransactionResponse{InvoiceTotalsUpdated: *totals}, nil
}

func (s *allocationService) resolveAllocation(ctx context.Context, userID uuid.UUID, req dto.UnlinkTransactionRequest) (*model.Allocation, error) {
	if req.AllocationID != "" {
		id, err := uuid.Parse(req.AllocationID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid allocation_id: %s", req.AllocationID)
		}
		alloc, err := s.allocations.FindByID(ctx, userID, id)
		if err != nil {
			return nil, apierror.NotFound("allocation %s not found", id)
		}
		return alloc, nil
	}

	if req.TransactionID == "" || req.InvoiceID == "" {
		return nil, apierror.InvalidArgument("either allocation_id or both transaction_id and invoice_id are required")
	}
	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid transaction_id: %s", req.TransactionID)
	}
	invID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid invoice_id: %s", req.InvoiceID)
	}
	alloc, err := s.allocations.FindByPair(ctx, userID, txID, invID)
	if err != nil {
		return nil, apierror.NotFound("no allocation links transaction %s to invoice %s", txID, invID)
	}
	return alloc, nil
}

// recomputeInvoiceTotals refreshes the invoice's derived cost columns from a
// fresh aggregate of its remaining allocations. Zero remaining allocations
// reset both columns to NULL ("no cost data", not "zero cost"). A manual
// override is never clobbered: the stored value belongs to the user until
// the override path clears the flag.
func (s *allocationService) recomputeInvoiceTotals(ctx context.Context, invoice *model.Invoice) (*dto.InvoiceTotals, error) {
	if invoice.CostOverrideByUser {
		return &dto.InvoiceTotals{
			InvoiceID:       invoice.ID.String(),
			TotalActualCost: invoice.TotalActualCost,
			ActualProfit:    invoice.ActualProfit,
		}, nil
	}

	sum, count, err := s.allocations.SumForInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	totals := dto.InvoiceTotals{InvoiceID: invoice.ID.String()}
	if count == 0 {
		if err := s.invoices.UpdateTotals(ctx, invoice.ID, nil, nil); err != nil {
			return nil, err
		}
		return &totals, nil
	}

	profit := invoice.Amount.Sub(sum)
	if err := s.invoices.UpdateTotals(ctx, invoice.ID, &sum, &profit); err != nil {
		return nil, err
	}
	totals.TotalActualCost = &sum
	totals.ActualProfit = &profit
	return &totals, nil
}

// ── Link transaction → blueprint usage ───────────────────────────────────────

func (s *allocationService) LinkToUsage(ctx context.Context, userID uuid.UUID, req dto.LinkExpenseRequest) (*dto.LinkExpenseResponse, error) {
	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid transaction_id: %s", req.TransactionID)
	}
	usageID, err := uuid.Parse(req.BlueprintUsageID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid blueprint_usage_id: %s", req.BlueprintUsageID)
	}
	if !model.ValidExpenseType(req.ExpenseType) {
		return nil, apierror.InvalidArgument("invalid expense_type %q: must be materials, labor, or overhead", req.ExpenseType)
	}

	bankTx, err := s.transactions.FindByID(ctx, userID, txID)
	if err != nil {
		return nil, apierror.NotFound("transaction %s not found", txID)
	}
	if _, err := s.blueprints.FindUsageByID(ctx, userID, usageID); err != nil {
		return nil, apierror.NotFound("blueprint usage %s not found", usageID)
	}

	amount := bankTx.AbsAmount()
	if req.AllocationAmount != nil {
		if !req.AllocationAmount.IsPositive() {
			return nil, apierror.InvalidArgument("allocation_amount must be positive, got %s", req.AllocationAmount)
		}
		amount = *req.AllocationAmount
	}

	// Upsert by (usage, transaction).
	expense, findErr := s.allocations.FindExpenseByPair(ctx, userID, usageID, txID)
	if findErr != nil {
		expense = &model.ExpenseAllocation{
			UserID:           userID,
			BlueprintUsageID: usageID,
			TransactionID:    txID,
		}
	}
	expense.AllocationAmount = amount
	expense.ExpenseType = req.ExpenseType

	if findErr != nil {
		err = s.allocations.CreateExpense(ctx, expense)
	} else {
		err = s.allocations.UpdateExpense(ctx, expense)
	}
	if err != nil {
		return nil, err
	}

	costs, err := s.recomputeUsageCosts(ctx, usageID)
	if err != nil {
		return nil, err
	}

	return &dto.LinkExpenseResponse{
		Allocation: dto.ExpenseAllocationResponse{
			ID:               expense.ID.String(),
			TransactionID:    txID.String(),
			BlueprintUsageID: usageID.String(),
			ExpenseType:      expense.ExpenseType,
			AllocationAmount: expense.AllocationAmount,
		},
		UsageCostsUpdated: *costs,
	}, nil
}

func (s *allocationService) UnlinkFromUsage(ctx context.Context, userID, expenseID uuid.UUID) (*dto.UsageCosts, error) {
	expense, err := s.allocations.FindExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return nil, apierror.NotFound("expense allocation %s not found", expenseID)
	}
	if err := s.allocations.DeleteExpense(ctx, expense.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Conflict("expense allocation %s already deleted", expense.ID)
		}
		return nil, err
	}
	return s.recomputeUsageCosts(ctx, expense.BlueprintUsageID)
}

// recomputeUsageCosts rewrites the usage's actual-cost trio as the sum of its
// expense allocations grouped by bucket.
func (s *allocationService) recomputeUsageCosts(ctx context.Context, usageID uuid.UUID) (*dto.UsageCosts, error) {
	sums, err := s.allocations.SumExpensesByType(ctx, usageID)
	if err != nil {
		return nil, err
	}
	materials := sums[model.ExpenseTypeMaterials]
	labor := sums[model.ExpenseTypeLabor]
	overhead := sums[model.ExpenseTypeOverhead]

	if err := s.blueprints.UpdateUsageCosts(ctx, usageID, materials, labor, overhead); err != nil {
		return nil, err
	}
	return &dto.UsageCosts{
		BlueprintUsageID:    usageID.String(),
		ActualMaterialsCost: materials,
		ActualLaborCost:     labor,
		ActualOverheadCost:  overhead,
		ActualTotalCost:     materials.Add(labor).Add(overhead),
	}, nil
}

func allocationToResponse(a *model.Allocation) dto.AllocationResponse {
	return dto.AllocationResponse{
		ID:                   a.ID.String(),
		TransactionID:        a.TransactionID.String(),
		InvoiceID:            a.InvoiceID.String(),
		AllocationAmount:     a.AllocationAmount,
		AllocationPercentage: a.AllocationPercentage,
		Notes:                a.Notes,
		CreatedAt:            a.CreatedAt.Format(time.RFC3339),
	}
}
