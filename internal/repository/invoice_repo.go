package repository

import (
	"context"

	"github.com/Enochthedev/mintro-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceAggregates are the pre-deletion totals reported by purge previews.
type InvoiceAggregates struct {
	Count        int64
	TotalRevenue decimal.Decimal
	TotalCost    decimal.Decimal
	TotalProfit  decimal.Decimal
}

// InvoiceRepository is the data access contract for invoices and their
// purge-order dependents (line items, QuickBooks mapping rows).
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type InvoiceRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Invoice, error)
	Update(ctx context.Context, inv *model.Invoice) error

	// UpdateTotals writes the derived cost columns. Nil means SQL NULL
	// ("no cost data"), which is distinct from zero.
	UpdateTotals(ctx context.Context, id uuid.UUID, totalCost, profit *decimal.Decimal) error

	Aggregates(ctx context.Context, userID uuid.UUID) (*InvoiceAggregates, error)
	CountLineItems(ctx context.Context, userID uuid.UUID) (int64, error)

	// Purge deletes — called inside a transaction, FK-safe order is the
	// caller's responsibility.
	DeleteLineItemsTx(tx *gorm.DB, userID uuid.UUID) error
	DeleteQuickBooksMapsTx(tx *gorm.DB, userID uuid.UUID) error
	DeleteAllTx(tx *gorm.DB, userID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("invoice_date DESC").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *invoiceRepo) UpdateTotals(ctx context.Context, id uuid.UUID, totalCost, profit *decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_actual_cost": totalCost,
			"actual_profit":     profit,
		}).Error
}

func (r *invoiceRepo) Aggregates(ctx context.Context, userID uuid.UUID) (*InvoiceAggregates, error) {
	var row struct {
		Count        int64
		TotalRevenue decimal.Decimal
		TotalCost    decimal.Decimal
		TotalProfit  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS total_revenue,
			COALESCE(SUM(total_actual_cost), 0) AS total_cost,
			COALESCE(SUM(actual_profit), 0) AS total_profit`).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &InvoiceAggregates{
		Count:        row.Count,
		TotalRevenue: row.TotalRevenue,
		TotalCost:    row.TotalCost,
		TotalProfit:  row.TotalProfit,
	}, nil
}

func (r *invoiceRepo) CountLineItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InvoiceLineItem{}).
		Joins("JOIN invoices ON invoices.id = invoice_line_items.invoice_id").
		Where("invoices.user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *invoiceRepo) DeleteLineItemsTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("invoice_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).Model(&model.Invoice{}).Select("id").Where("user_id = ?", userID),
	).Delete(&model.InvoiceLineItem{}).Error
}

func (r *invoiceRepo) DeleteQuickBooksMapsTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("invoice_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).Model(&model.Invoice{}).Select("id").Where("user_id = ?", userID),
	).Delete(&model.QuickBooksInvoiceMap{}).Error
}

func (r *invoiceRepo) DeleteAllTx(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&model.Invoice{}).Error
}

func (r *invoiceRepo) DB() *gorm.DB { return r.db }
