package worker

import (
	"context"
	"encoding/json"

	"github.com/Enochthedev/mintro-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecalcWorker re-reconciles every surviving invoice's derived cost columns
// from a fresh allocation aggregate. Invoices with a manual override keep
// their stored values.
type RecalcWorker struct {
	invoices    repository.InvoiceRepository
	allocations repository.AllocationRepository
}

func NewRecalcWorker(invoices repository.InvoiceRepository, allocations repository.AllocationRepository) *RecalcWorker {
	return &RecalcWorker{invoices: invoices, allocations: allocations}
}

func (w *RecalcWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var p RecalcPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return err
	}

	invoices, err := w.invoices.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	recalced := 0
	for i := range invoices {
		inv := &invoices[i]
		if inv.CostOverrideByUser {
			continue
		}
		sum, count, err := w.allocations.SumForInvoice(ctx, inv.ID)
		if err != nil {
			log.Warn().Str("invoice_id", inv.ID.String()).Err(err).Msg("recalc: aggregate read failed")
			continue
		}
		if count == 0 {
			err = w.invoices.UpdateTotals(ctx, inv.ID, nil, nil)
		} else {
			profit := inv.Amount.Sub(sum)
			err = w.invoices.UpdateTotals(ctx, inv.ID, &sum, &profit)
		}
		if err != nil {
			log.Warn().Str("invoice_id", inv.ID.String()).Err(err).Msg("recalc: totals write failed")
			continue
		}
		recalced++
	}

	log.Info().
		Str("user_id", p.UserID).
		Int("invoices", recalced).
		Msg("invoice totals recalculated")
	return nil
}
