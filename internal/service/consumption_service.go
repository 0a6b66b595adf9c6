package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Enochthedev/mintro-sub001/internal/apierror"
	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/model"
	"github.com/Enochthedev/mintro-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsumptionService instantiates blueprints as usages and deducts the
// inventory they consume. The availability check runs over the AGGREGATE
// demand of the whole batch before anything is written: either every usage
// is created, or none is.
type ConsumptionService interface {
	CreateUsage(ctx context.Context, userID uuid.UUID, req dto.CreateUsageRequest) (*dto.CreateUsageResponse, error)
	CreateUsageBatch(ctx context.Context, userID uuid.UUID, req dto.CreateUsageBatchRequest) (*dto.CreateUsageResponse, error)
}

type consumptionService struct {
	blueprints repository.BlueprintRepository
	inventory  repository.InventoryRepository
	invoices   repository.InvoiceRepository
	maxBatch   int
}

func NewConsumptionService(
	blueprints repository.BlueprintRepository,
	inventory repository.InventoryRepository,
	invoices repository.InvoiceRepository,
	maxBatch int,
) ConsumptionService {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	return &consumptionService{
		blueprints: blueprints,
		inventory:  inventory,
		invoices:   invoices,
		maxBatch:   maxBatch,
	}
}

// CreateUsage is the single-usage entry point; it shares the batch path so
// both shapes get identical validation and deduction behavior.
func (s *consumptionService) CreateUsage(ctx context.Context, userID uuid.UUID, req dto.CreateUsageRequest) (*dto.CreateUsageResponse, error) {
	return s.CreateUsageBatch(ctx, userID, dto.CreateUsageBatchRequest{
		InvoiceID:       req.InvoiceID,
		Usages:          []dto.UsageInput{req.Usage},
		DeductInventory: req.DeductInventory,
	})
}

func (s *consumptionService) CreateUsageBatch(ctx context.Context, userID uuid.UUID, req dto.CreateUsageBatchRequest) (*dto.CreateUsageResponse, error) {
	if len(req.Usages) == 0 {
		return nil, apierror.InvalidArgument("at least one usage is required")
	}
	if len(req.Usages) > s.maxBatch {
		return nil, apierror.InvalidArgument("batch of %d usages exceeds the maximum of %d", len(req.Usages), s.maxBatch)
	}

	// 1. Every referenced blueprint must exist and belong to the caller.
	blueprintIDs := make([]uuid.UUID, 0, len(req.Usages))
	seen := make(map[uuid.UUID]bool)
	for _, in := range req.Usages {
		id, err := uuid.Parse(in.BlueprintID)
		if err != nil {
			continue // reported per-index in step 2
		}
		if !seen[id] {
			seen[id] = true
			blueprintIDs = append(blueprintIDs, id)
		}
	}

	byID := make(map[uuid.UUID]*model.Blueprint, len(blueprintIDs))
	if len(blueprintIDs) > 0 {
		blueprints, err := s.blueprints.FindByIDs(ctx, userID, blueprintIDs)
		if err != nil {
			return nil, err
		}
		for i := range blueprints {
			byID[blueprints[i].ID] = &blueprints[i]
		}
	}
	var missing []string
	for _, id := range blueprintIDs {
		if byID[id] == nil {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, apierror.NotFoundIDs("blueprint", missing)
	}

	// 2. Per-usage required fields, reported by offending index.
	for i, in := range req.Usages {
		if in.BlueprintID == "" {
			return nil, apierror.InvalidArgument("usage %d: blueprint_id is required", i)
		}
		if _, err := uuid.Parse(in.BlueprintID); err != nil {
			return nil, apierror.InvalidArgument("usage %d: invalid blueprint_id %q", i, in.BlueprintID)
		}
		if in.ActualSalePrice == nil {
			return nil, apierror.InvalidArgument("usage %d: actual_sale_price is required", i)
		}
		if in.CompletedDate != nil {
			if _, err := time.Parse("2006-01-02", *in.CompletedDate); err != nil {
				return nil, apierror.InvalidArgument("usage %d: invalid completed_date %q, want YYYY-MM-DD", i, *in.CompletedDate)
			}
		}
	}

	var invoiceID *uuid.UUID
	if req.InvoiceID != nil && *req.InvoiceID != "" {
		id, err := uuid.Parse(*req.InvoiceID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid invoice_id: %s", *req.InvoiceID)
		}
		if _, err := s.invoices.FindByID(ctx, userID, id); err != nil {
			return nil, apierror.NotFound("invoice %s not found", id)
		}
		invoiceID = &id
	}

	deduct := req.DeductInventory == nil || *req.DeductInventory

	// 3. Aggregate demand per inventory item across the WHOLE batch.
	// Checking item-by-item would accept two usages that each fit
	// individually but together over-draw the stock.
	required := make(map[uuid.UUID]decimal.Decimal)
	var itemOrder []uuid.UUID
	if deduct {
		for _, in := range req.Usages {
			bp := byID[uuid.MustParse(in.BlueprintID)]
			for _, item := range bp.Items {
				if _, ok := required[item.InventoryItemID]; !ok {
					itemOrder = append(itemOrder, item.InventoryItemID)
				}
				required[item.InventoryItemID] = required[item.InventoryItemID].Add(item.QuantityRequired)
			}
		}
	}

	// 4. Availability check before any write. Any shortage rejects the
	// entire batch with a structured report.
	minimums := make(map[uuid.UUID]decimal.Decimal)
	if len(itemOrder) > 0 {
		items, err := s.inventory.FindItemsByIDs(ctx, userID, itemOrder)
		if err != nil {
			return nil, err
		}
		currentByID := make(map[uuid.UUID]*model.InventoryItem, len(items))
		for i := range items {
			currentByID[items[i].ID] = &items[i]
			minimums[items[i].ID] = items[i].MinimumQuantity
		}

		var shortages []apierror.Shortage
		for _, id := range itemOrder {
			current := decimal.Zero
			name := id.String()
			if item := currentByID[id]; item != nil {
				current = item.CurrentQuantity
				name = item.Name
			}
			if current.LessThan(required[id]) {
				shortages = append(shortages, apierror.Shortage{
					InventoryItemID: id.String(),
					ItemName:        name,
					Current:         current,
					Required:        required[id],
					Shortage:        required[id].Sub(current),
				})
			}
		}
		if len(shortages) > 0 {
			return nil, apierror.InsufficientInventory(shortages)
		}
	}

	// 5. Create all usage rows. This is the primary write: it either fully
	// succeeds or nothing exists.
	usages := make([]*model.BlueprintUsage, 0, len(req.Usages))
	for _, in := range req.Usages {
		bpID := uuid.MustParse(in.BlueprintID)
		u := &model.BlueprintUsage{
			UserID:              userID,
			BlueprintID:         bpID,
			InvoiceID:           invoiceID,
			ActualMaterialsCost: valueOrZero(in.ActualMaterialsCost),
			ActualLaborCost:     valueOrZero(in.ActualLaborCost),
			ActualOverheadCost:  valueOrZero(in.ActualOverheadCost),
			ActualSalePrice:     *in.ActualSalePrice,
			Notes:               in.Notes,
		}
		if in.CompletedDate != nil {
			d, _ := time.Parse("2006-01-02", *in.CompletedDate)
			u.CompletedDate = &d
		}
		usages = append(usages, u)
	}
	err := runTx(ctx, s.blueprints.DB(), func(tx *gorm.DB) error {
		return s.blueprints.CreateUsagesTx(tx, usages)
	})
	if err != nil {
		return nil, err
	}

	// 6. Best-effort deduction, usage-by-usage in input order. The aggregate
	// check already passed; a per-item failure here (item deleted mid-batch,
	// stock drained concurrently) skips that deduction, logs it, and surfaces
	// it as a warning — the usage rows stand either way.
	var warnings []string
	reports := make(map[uuid.UUID]*dto.InventoryDeduction)
	if deduct {
		for i, u := range usages {
			bp := byID[u.BlueprintID]
			for _, bpItem := range bp.Items {
				if err := s.deductOne(ctx, userID, u.ID, bp.Name, bpItem, minimums, reports); err != nil {
					msg := fmt.Sprintf("usage %d: deduction of item %s failed: %v", i, bpItem.InventoryItemID, err)
					warnings = append(warnings, msg)
					log.Warn().
						Str("usage_id", u.ID.String()).
						Str("inventory_item_id", bpItem.InventoryItemID.String()).
						Err(err).
						Msg("inventory deduction skipped")
				}
			}
		}
	}

	// 7. Assemble response: deduction report, low-stock alerts, financials.
	resp := &dto.CreateUsageResponse{
		Usages:              make([]dto.UsageResponse, 0, len(usages)),
		InventoryDeductions: make([]dto.InventoryDeduction, 0, len(reports)),
		LowStockAlerts:      []dto.LowStockAlert{},
		Warnings:            warnings,
	}

	totalCost := decimal.Zero
	totalSale := decimal.Zero
	for _, u := range usages {
		resp.Usages = append(resp.Usages, usageToResponse(u, byID[u.BlueprintID]))
		totalCost = totalCost.Add(u.ActualTotalCost())
		totalSale = totalSale.Add(u.ActualSalePrice)
	}
	resp.FinancialSummary = dto.UsageFinancialSummary{
		TotalActualCost: totalCost,
		TotalSalePrice:  totalSale,
		TotalProfit:     totalSale.Sub(totalCost),
		UsageCount:      len(usages),
	}

	for _, id := range itemOrder {
		r := reports[id]
		if r == nil {
			continue
		}
		resp.InventoryDeductions = append(resp.InventoryDeductions, *r)
		if r.IsLowStock {
			resp.LowStockAlerts = append(resp.LowStockAlerts, dto.LowStockAlert{
				InventoryItemID: r.InventoryItemID,
				ItemName:        r.ItemName,
				CurrentQuantity: r.QuantityAfter,
				MinimumQuantity: minimums[id],
			})
		}
	}

	return resp, nil
}

// deductOne applies a single (item, usage) deduction inside its own
// transaction: row-lock, re-read, subtract the per-usage requirement, append
// one movement referencing the usage.
func (s *consumptionService) deductOne(
	ctx context.Context,
	userID, usageID uuid.UUID,
	blueprintName string,
	bpItem model.BlueprintItem,
	minimums map[uuid.UUID]decimal.Decimal,
	reports map[uuid.UUID]*dto.InventoryDeduction,
) error {
	return runTx(ctx, s.inventory.DB(), func(tx *gorm.DB) error {
		item, err := s.inventory.FindItemForUpdateTx(tx, userID, bpItem.InventoryItemID)
		if err != nil {
			return err
		}

		newQty := item.CurrentQuantity.Sub(bpItem.QuantityRequired)
		if newQty.IsNegative() {
			// Stock drained between the aggregate check and this deduction.
			return fmt.Errorf("stock of %s is %s, need %s", item.Name, item.CurrentQuantity, bpItem.QuantityRequired)
		}

		if err := s.inventory.UpdateQuantityTx(tx, item.ID, newQty); err != nil {
			return err
		}

		ref := usageID
		refType := model.MovementBlueprintUsage
		mov := &model.InventoryMovement{
			UserID:          userID,
			InventoryItemID: item.ID,
			MovementType:    model.MovementBlueprintUsage,
			QuantityChange:  bpItem.QuantityRequired.Neg(),
			QuantityBefore:  item.CurrentQuantity,
			QuantityAfter:   newQty,
			ReferenceID:     &ref,
			ReferenceType:   &refType,
			Notes:           "consumed by blueprint " + blueprintName,
		}
		if err := s.inventory.CreateMovementTx(tx, mov); err != nil {
			return err
		}

		r := reports[item.ID]
		if r == nil {
			r = &dto.InventoryDeduction{
				InventoryItemID:  item.ID.String(),
				ItemName:         item.Name,
				QuantityBefore:   item.CurrentQuantity,
				QuantityDeducted: decimal.Zero,
			}
			reports[item.ID] = r
		}
		minimums[item.ID] = item.MinimumQuantity
		r.QuantityDeducted = r.QuantityDeducted.Add(bpItem.QuantityRequired)
		r.QuantityAfter = newQty
		r.IsLowStock = newQty.LessThanOrEqual(item.MinimumQuantity)
		return nil
	})
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func usageToResponse(u *model.BlueprintUsage, bp *model.Blueprint) dto.UsageResponse {
	resp := dto.UsageResponse{
		ID:                  u.ID.String(),
		BlueprintID:         u.BlueprintID.String(),
		ActualMaterialsCost: u.ActualMaterialsCost,
		ActualLaborCost:     u.ActualLaborCost,
		ActualOverheadCost:  u.ActualOverheadCost,
		ActualSalePrice:     u.ActualSalePrice,
		Notes:               u.Notes,
		CreatedAt:           u.CreatedAt.Format(time.RFC3339),
	}
	if bp != nil {
		resp.BlueprintName = bp.Name
	}
	if u.InvoiceID != nil {
		id := u.InvoiceID.String()
		resp.InvoiceID = &id
	}
	if u.CompletedDate != nil {
		d := u.CompletedDate.Format("2006-01-02")
		resp.CompletedDate = &d
	}
	return resp
}
