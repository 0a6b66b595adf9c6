package service

import (
	"context"

	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RecalcEnqueuer pushes an aggregate-recomputation job for a user; the worker
// pool picks it up after a destructive operation. Enqueue failures are
// best-effort: the purge itself has already committed.
type RecalcEnqueuer interface {
	EnqueueRecalc(ctx context.Context, userID uuid.UUID) error
}

// PurgeService performs the guarded bulk deletions. Without the confirm flag
// a request only previews what would be deleted (counts and aggregate sums)
// and performs zero writes.
type PurgeService interface {
	DeleteAllInvoices(ctx context.Context, userID uuid.UUID, confirm bool) (*dto.PurgeResponse, error)
	DeleteAllUsages(ctx context.Context, userID uuid.UUID, confirm bool) (*dto.PurgeResponse, error)
}

type purgeService struct {
	invoices    repository.InvoiceRepository
	allocations repository.AllocationRepository
	blueprints  repository.BlueprintRepository
	recalc      RecalcEnqueuer
}

func NewPurgeService(
	invoices repository.InvoiceRepository,
	allocations repository.AllocationRepository,
	blueprints repository.BlueprintRepository,
	recalc RecalcEnqueuer,
) PurgeService {
	return &purgeService{
		invoices:    invoices,
		allocations: allocations,
		blueprints:  blueprints,
		recalc:      recalc,
	}
}

func (s *purgeService) DeleteAllInvoices(ctx context.Context, userID uuid.UUID, confirm bool) (*dto.PurgeResponse, error) {
	// The preview doubles as the audit trail: once the rows are gone these
	// aggregates are the only record of what was deleted.
	agg, err := s.invoices.Aggregates(ctx, userID)
	if err != nil {
		return nil, err
	}
	lineItems, err := s.invoices.CountLineItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	allocCount, err := s.allocations.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	linkedUsages, err := s.blueprints.CountInvoiceLinkedUsages(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PurgeResponse{
		Preview: dto.PurgePreview{
			InvoiceCount:    agg.Count,
			LineItemCount:   lineItems,
			AllocationCount: allocCount,
			UsageCount:      linkedUsages,
			TotalRevenue:    agg.TotalRevenue,
			TotalCost:       agg.TotalCost,
			TotalProfit:     agg.TotalProfit,
		},
	}
	if !confirm {
		return resp, nil
	}

	// FK-safe order: children before parents, expense allocations before the
	// usages they reference.
	err = runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
		if err := s.invoices.DeleteLineItemsTx(tx, userID); err != nil {
			return err
		}
		if err := s.invoices.DeleteQuickBooksMapsTx(tx, userID); err != nil {
			return err
		}
		if err := s.allocations.DeleteExpensesForInvoiceLinkedUsagesTx(tx, userID); err != nil {
			return err
		}
		if err := s.blueprints.DeleteInvoiceLinkedUsagesTx(tx, userID); err != nil {
			return err
		}
		if err := s.allocations.DeleteAllForUserTx(tx, userID); err != nil {
			return err
		}
		return s.invoices.DeleteAllTx(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	resp.Deleted = true
	s.enqueueRecalc(ctx, userID, resp)
	return resp, nil
}

func (s *purgeService) DeleteAllUsages(ctx context.Context, userID uuid.UUID, confirm bool) (*dto.PurgeResponse, error) {
	agg, err := s.blueprints.UsageAggregates(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PurgeResponse{
		Preview: dto.PurgePreview{
			UsageCount:   agg.Count,
			TotalRevenue: agg.TotalSalePrice,
			TotalCost:    agg.TotalCost,
			TotalProfit:  agg.TotalSalePrice.Sub(agg.TotalCost),
		},
	}
	if !confirm {
		return resp, nil
	}

	err = runTx(ctx, s.blueprints.DB(), func(tx *gorm.DB) error {
		if err := s.allocations.DeleteExpensesForUsagesTx(tx, userID); err != nil {
			return err
		}
		return s.blueprints.DeleteAllUsagesTx(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	resp.Deleted = true
	s.enqueueRecalc(ctx, userID, resp)
	return resp, nil
}

// enqueueRecalc asks the worker pool to re-reconcile the surviving invoices.
// The purge has committed; a queue failure is reported, not fatal.
func (s *purgeService) enqueueRecalc(ctx context.Context, userID uuid.UUID, resp *dto.PurgeResponse) {
	if s.recalc == nil {
		return
	}
	if err := s.recalc.EnqueueRecalc(ctx, userID); err != nil {
		log.Warn().Str("user_id", userID.String()).Err(err).Msg("failed to enqueue recalc job")
		resp.Warnings = append(resp.Warnings, "recalculation job could not be enqueued: "+err.Error())
	}
}
