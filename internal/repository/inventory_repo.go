package repository

import (
	"context"

	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository covers stock items and their append-only movement log.
type InventoryRepository interface {
	FindItemByID(ctx context.Context, userID, id uuid.UUID) (*model.InventoryItem, error)
	FindItemsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.InventoryItem, error)

	// FindItemForUpdateTx row-locks the item for a read-modify-write; it
	// closes the check-then-act window on concurrent deductions.
	FindItemForUpdateTx(tx *gorm.DB, userID, id uuid.UUID) (*model.InventoryItem, error)
	UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, newQuantity decimal.Decimal) error

	CreateMovementTx(tx *gorm.DB, m *model.InventoryMovement) error
	ListMovements(ctx context.Context, userID uuid.UUID, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error)
	ListLowStock(ctx context.Context, userID uuid.UUID) ([]model.InventoryItem, error)

	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) FindItemByID(ctx context.Context, userID, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	return &item, err
}

func (r *inventoryRepo) FindItemsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&items).Error
	return items, err
}

func (r *inventoryRepo) FindItemForUpdateTx(tx *gorm.DB, userID, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	return &item, err
}

func (r *inventoryRepo) UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, newQuantity decimal.Decimal) error {
	return tx.Model(&model.InventoryItem{}).Where("id = ?", id).
		Update("current_quantity", newQuantity).Error
}

func (r *inventoryRepo) CreateMovementTx(tx *gorm.DB, m *model.InventoryMovement) error {
	return tx.Create(m).Error
}

func (r *inventoryRepo) ListMovements(ctx context.Context, userID uuid.UUID, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	var movements []model.InventoryMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{}).Where("user_id = ?", userID)
	if filter.InventoryItemID != "" {
		q = q.Where("inventory_item_id = ?", filter.InventoryItemID)
	}
	if filter.MovementType != "" {
		q = q.Where("movement_type = ?", filter.MovementType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("InventoryItem").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).
		Find(&movements).Error
	return movements, total, err
}

func (r *inventoryRepo) ListLowStock(ctx context.Context, userID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND current_quantity <= minimum_quantity", userID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) DB() *gorm.DB { return r.db }
