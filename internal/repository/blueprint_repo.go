package repository

import (
	"context"

	"github.com/Enochthedev/mintro-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UsageAggregates are the pre-deletion totals reported by usage purges.
type UsageAggregates struct {
	Count          int64
	TotalCost      decimal.Decimal
	TotalSalePrice decimal.Decimal
}

// BlueprintRepository covers cost blueprints and their usages.
type BlueprintRepository interface {
	// FindByIDs returns blueprints owned by the caller, Items preloaded.
	// Missing ids are simply absent from the result — callers diff.
	FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.Blueprint, error)

	FindUsageByID(ctx context.Context, userID, id uuid.UUID) (*model.BlueprintUsage, error)
	CreateUsagesTx(tx *gorm.DB, usages []*model.BlueprintUsage) error

	// UpdateUsageCosts writes the recomputed actual-cost trio.
	UpdateUsageCosts(ctx context.Context, id uuid.UUID, materials, labor, overhead decimal.Decimal) error

	// ListUsagesByUser returns all usages with Blueprint preloaded, for batch
	// profit reconciliation grouped by invoice id.
	ListUsagesByUser(ctx context.Context, userID uuid.UUID) ([]model.BlueprintUsage, error)
	ListUsagesByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) ([]model.BlueprintUsage, error)

	UsageAggregates(ctx context.Context, userID uuid.UUID) (*UsageAggregates, error)
	CountInvoiceLinkedUsages(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAllUsagesTx(tx *gorm.DB, userID uuid.UUID) error
	DeleteInvoiceLinkedUsagesTx(tx *gorm.DB, userID uuid.UUID) error

	DB() *gorm.DB
}

type blueprintRepo struct{ db *gorm.DB }

func NewBlueprintRepository(db *gorm.DB) BlueprintRepository { return &blueprintRepo{db: db} }

func (r *blueprintRepo) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.Blueprint, error) {
	var blueprints []model.Blueprint
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&blueprints).Error
	return blueprints, err
}

func (r *blueprintRepo) FindUsageByID(ctx context.Context, userID, id uuid.UUID) (*model.BlueprintUsage, error) {
	var u model.BlueprintUsage
	err := r.db.WithContext(ctx).Preload("Blueprint").
		Where("id = ? AND user_id = ?", id, userID).
		First(&u).Error
	return &u, err
}

func (r *blueprintRepo) CreateUsagesTx(tx *gorm.DB, usages []*model.BlueprintUsage) error {
	for _, u := range usages {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *blueprintRepo) UpdateUsageCosts(ctx context.Context, id uuid.UUID, materials, labor, overhead decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.BlueprintUsage{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"actual_materials_cost": materials,
			"actual_labor_cost":     labor,
			"actual_overhead_cost":  overhead,
		}).Error
}

func (r *blueprintRepo) ListUsagesByUser(ctx context.Context, userID uuid.UUID) ([]model.BlueprintUsage, error) {
	var usages []model.BlueprintUsage
	err := r.db.WithContext(ctx).Preload("Blueprint").
		Where("user_id = ?", userID).Find(&usages).Error
	return usages, err
}

func (r *blueprintRepo) ListUsagesByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) ([]model.BlueprintUsage, error) {
	var usages []model.BlueprintUsage
	err := r.db.WithContext(ctx).Preload("Blueprint").
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Find(&usages).Error
	return usages, err
}

func (r *blueprintRepo) UsageAggregates(ctx context.Context, userID uuid.UUID) (*UsageAggregates, error) {
	var row struct {
		Count          int64
		TotalCost      decimal.Decimal
		TotalSalePrice decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.BlueprintUsage{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(actual_materials_cost + actual_labor_cost + actual_overhead_cost), 0) AS total_cost,
			COALESCE(SUM(actual_sale_price), 0) AS total_sale_price`).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &UsageAggregates{
		Count:          row.Count,
		TotalCost:      row.TotalCost,
		TotalSalePrice: row.TotalSalePrice,
	}, nil
}

func (r *blueprintRepo) CountInvoiceLinkedUsages(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.BlueprintUsage{}).
		Where("user_id = ? AND invoice_id IS NOT NULL", userID).
		Count(&n).Error
	return n, err
}

func (r *blueprintRepo) DeleteAllUsagesTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&model.BlueprintUsage{}).Error
}

func (r *blueprintRepo) DeleteInvoiceLinkedUsagesTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ? AND invoice_id IS NOT NULL", userID).Delete(&model.BlueprintUsage{}).Error
}

func (r *blueprintRepo) DB() *gorm.DB { return r.db }
