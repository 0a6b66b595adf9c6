package repository

import (
	"context"

	"github.com/Enochthedev/mintro-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationRepository is the data access contract for both allocation kinds:
// transaction→invoice rows and transaction→blueprint-usage expense rows.
type AllocationRepository interface {
	// Transaction → invoice
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Allocation, error)
	FindByPair(ctx context.Context, userID, transactionID, invoiceID uuid.UUID) (*model.Allocation, error)
	Create(ctx context.Context, a *model.Allocation) error
	Update(ctx context.Context, a *model.Allocation) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SumForTransaction totals allocation_amount across the transaction's
	// allocations, excluding excludeID when non-nil (the row being replaced).
	SumForTransaction(ctx context.Context, transactionID uuid.UUID, excludeID *uuid.UUID) (decimal.Decimal, error)

	// SumForInvoice is the fresh aggregate the recomputation reads after a
	// mutation commits.
	SumForInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, int64, error)

	// ListByUser returns all of a user's allocations, for batch profit
	// reconciliation (callers group them by invoice id; no per-invoice query).
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Allocation, error)

	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAllForUserTx(tx *gorm.DB, userID uuid.UUID) error

	// Transaction → blueprint usage
	FindExpenseByPair(ctx context.Context, userID, usageID, transactionID uuid.UUID) (*model.ExpenseAllocation, error)
	FindExpenseByID(ctx context.Context, userID, id uuid.UUID) (*model.ExpenseAllocation, error)
	CreateExpense(ctx context.Context, e *model.ExpenseAllocation) error
	UpdateExpense(ctx context.Context, e *model.ExpenseAllocation) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error

	// SumExpensesByType groups the usage's expense allocations into the
	// three cost buckets.
	SumExpensesByType(ctx context.Context, usageID uuid.UUID) (map[string]decimal.Decimal, error)

	DeleteExpensesForUsagesTx(tx *gorm.DB, userID uuid.UUID) error
	DeleteExpensesForInvoiceLinkedUsagesTx(tx *gorm.DB, userID uuid.UUID) error

	DB() *gorm.DB
}

type allocationRepo struct{ db *gorm.DB }

func NewAllocationRepository(db *gorm.DB) AllocationRepository { return &allocationRepo{db: db} }

func (r *allocationRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Allocation, error) {
	var a model.Allocation
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	return &a, err
}

func (r *allocationRepo) FindByPair(ctx context.Context, userID, transactionID, invoiceID uuid.UUID) (*model.Allocation, error) {
	var a model.Allocation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND transaction_id = ? AND invoice_id = ?", userID, transactionID, invoiceID).
		First(&a).Error
	return &a, err
}

func (r *allocationRepo) Create(ctx context.Context, a *model.Allocation) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *allocationRepo) Update(ctx context.Context, a *model.Allocation) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Delete reports gorm.ErrRecordNotFound when no row matched, so callers can
// tell a lost race apart from a successful delete.
func (r *allocationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Allocation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *allocationRepo) SumForTransaction(ctx context.Context, transactionID uuid.UUID, excludeID *uuid.UUID) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&model.Allocation{}).
		Where("transaction_id = ?", transactionID)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var sum decimal.Decimal
	err := q.Select("COALESCE(SUM(allocation_amount), 0)").Scan(&sum).Error
	return sum, err
}

func (r *allocationRepo) SumForInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, int64, error) {
	var row struct {
		Sum   decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&model.Allocation{}).
		Select("COALESCE(SUM(allocation_amount), 0) AS sum, COUNT(*) AS count").
		Where("invoice_id = ?", invoiceID).
		Scan(&row).Error
	return row.Sum, row.Count, err
}

func (r *allocationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Allocation, error) {
	var allocations []model.Allocation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&allocations).Error
	return allocations, err
}

func (r *allocationRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Allocation{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *allocationRepo) DeleteAllForUserTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&model.Allocation{}).Error
}

func (r *allocationRepo) FindExpenseByPair(ctx context.Context, userID, usageID, transactionID uuid.UUID) (*model.ExpenseAllocation, error) {
	var e model.ExpenseAllocation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND blueprint_usage_id = ? AND transaction_id = ?", userID, usageID, transactionID).
		First(&e).Error
	return &e, err
}

func (r *allocationRepo) FindExpenseByID(ctx context.Context, userID, id uuid.UUID) (*model.ExpenseAllocation, error) {
	var e model.ExpenseAllocation
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&e).Error
	return &e, err
}

func (r *allocationRepo) CreateExpense(ctx context.Context, e *model.ExpenseAllocation) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *allocationRepo) UpdateExpense(ctx context.Context, e *model.ExpenseAllocation) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *allocationRepo) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.ExpenseAllocation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *allocationRepo) SumExpensesByType(ctx context.Context, usageID uuid.UUID) (map[string]decimal.Decimal, error) {
	var rows []struct {
		ExpenseType string
		Sum         decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.ExpenseAllocation{}).
		Select("expense_type, COALESCE(SUM(allocation_amount), 0) AS sum").
		Where("blueprint_usage_id = ?", usageID).
		Group("expense_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.ExpenseType] = row.Sum
	}
	return sums, nil
}

func (r *allocationRepo) DeleteExpensesForUsagesTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&model.ExpenseAllocation{}).Error
}

func (r *allocationRepo) DeleteExpensesForInvoiceLinkedUsagesTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("blueprint_usage_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).Model(&model.BlueprintUsage{}).Select("id").
			Where("user_id = ? AND invoice_id IS NOT NULL", userID),
	).Delete(&model.ExpenseAllocation{}).Error
}

func (r *allocationRepo) DB() *gorm.DB { return r.db }
