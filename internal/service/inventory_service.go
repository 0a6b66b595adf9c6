package service

import (
	"context"
	"time"

	"github.com/Enochthedev/mintro-sub001/internal/apierror"
	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/model"
	"github.com/Enochthedev/mintro-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService applies manual stock movements and serves the audit views.
type InventoryService interface {
	Adjust(ctx context.Context, userID uuid.UUID, req dto.AdjustInventoryRequest) (*dto.AdjustInventoryResponse, error)
	LowStockAlerts(ctx context.Context, userID uuid.UUID) ([]dto.LowStockAlert, error)
	ListMovements(ctx context.Context, userID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type inventoryService struct {
	inventory repository.InventoryRepository
}

func NewInventoryService(inventory repository.InventoryRepository) InventoryService {
	return &inventoryService{inventory: inventory}
}

// Adjust applies one signed quantity change to an item and appends the
// matching movement row in the same transaction. A change that would drive
// the quantity negative is rejected with no writes.
func (s *inventoryService) Adjust(ctx context.Context, userID uuid.UUID, req dto.AdjustInventoryRequest) (*dto.AdjustInventoryResponse, error) {
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid inventory_item_id: %s", req.InventoryItemID)
	}
	if !model.ValidMovementType(req.TransactionType) {
		return nil, apierror.InvalidArgument("invalid transaction_type %q", req.TransactionType)
	}
	if req.QuantityChange.IsZero() {
		return nil, apierror.InvalidArgument("quantity_change must be non-zero")
	}

	var refID *uuid.UUID
	if req.ReferenceID != nil {
		id, err := uuid.Parse(*req.ReferenceID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid reference_id: %s", *req.ReferenceID)
		}
		refID = &id
	}

	var mov *model.InventoryMovement
	var status dto.InventoryStatus
	txErr := runTx(ctx, s.inventory.DB(), func(tx *gorm.DB) error {
		item, err := s.inventory.FindItemForUpdateTx(tx, userID, itemID)
		if err != nil {
			return apierror.NotFound("inventory item %s not found", itemID)
		}

		newQty := item.CurrentQuantity.Add(req.QuantityChange)
		if newQty.IsNegative() {
			return apierror.InsufficientInventory([]apierror.Shortage{{
				InventoryItemID: item.ID.String(),
				ItemName:        item.Name,
				Current:         item.CurrentQuantity,
				Required:        req.QuantityChange.Abs(),
				Shortage:        newQty.Abs(),
			}})
		}

		if err := s.inventory.UpdateQuantityTx(tx, item.ID, newQty); err != nil {
			return err
		}

		mov = &model.InventoryMovement{
			UserID:          userID,
			InventoryItemID: item.ID,
			MovementType:    req.TransactionType,
			QuantityChange:  req.QuantityChange,
			QuantityBefore:  item.CurrentQuantity,
			QuantityAfter:   newQty,
			UnitCost:        req.UnitCost,
			ReferenceID:     refID,
			ReferenceType:   req.ReferenceType,
			Notes:           req.Notes,
		}
		if err := s.inventory.CreateMovementTx(tx, mov); err != nil {
			return err
		}

		status = dto.InventoryStatus{
			InventoryItemID: item.ID.String(),
			QuantityBefore:  item.CurrentQuantity,
			QuantityAfter:   newQty,
			IsLowStock:      newQty.LessThanOrEqual(item.MinimumQuantity),
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.AdjustInventoryResponse{
		InventoryTransaction: movementToResponse(mov),
		InventoryStatus:      status,
	}, nil
}

func (s *inventoryService) LowStockAlerts(ctx context.Context, userID uuid.UUID) ([]dto.LowStockAlert, error) {
	items, err := s.inventory.ListLowStock(ctx, userID)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.LowStockAlert, 0, len(items))
	for _, item := range items {
		alerts = append(alerts, dto.LowStockAlert{
			InventoryItemID: item.ID.String(),
			ItemName:        item.Name,
			CurrentQuantity: item.CurrentQuantity,
			MinimumQuantity: item.MinimumQuantity,
		})
	}
	return alerts, nil
}

// ListMovements returns a paginated slice of the audit log, newest first.
func (s *inventoryService) ListMovements(ctx context.Context, userID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movements, total, err := s.inventory.ListMovements(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		data = append(data, movementToResponse(&movements[i]))
	}
	return &dto.MovementListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func movementToResponse(m *model.InventoryMovement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:              m.ID.String(),
		InventoryItemID: m.InventoryItemID.String(),
		MovementType:    m.MovementType,
		QuantityChange:  m.QuantityChange,
		QuantityBefore:  m.QuantityBefore,
		QuantityAfter:   m.QuantityAfter,
		UnitCost:        m.UnitCost,
		ReferenceType:   m.ReferenceType,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
	if m.ReferenceID != nil {
		id := m.ReferenceID.String()
		resp.ReferenceID = &id
	}
	if m.InventoryItem != nil {
		resp.ItemName = m.InventoryItem.Name
	}
	return resp
}
