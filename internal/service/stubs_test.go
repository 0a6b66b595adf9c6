package service

// In-memory repository stubs shared by the service unit tests. All DB()
// methods return nil, which makes runTx call the body directly without a
// real transaction.

import (
	"context"
	"errors"
	"time"

	"github.com/Enochthedev/mintro-sub001/internal/dto"
	"github.com/Enochthedev/mintro-sub001/internal/model"
	"github.com/Enochthedev/mintro-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("record not found")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── TransactionRepository stub ───────────────────────────────────────────────

type stubTransactionRepo struct {
	transactions map[uuid.UUID]*model.Transaction
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{transactions: make(map[uuid.UUID]*model.Transaction)}
}

func (r *stubTransactionRepo) add(userID uuid.UUID, amount decimal.Decimal) *model.Transaction {
	t := &model.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Amount: amount,
		Name:   "tx " + amount.String(),
		Date:   time.Now(),
	}
	r.transactions[t.ID] = t
	return t
}

func (r *stubTransactionRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok || t.UserID != userID {
		return nil, errNotFound
	}
	return t, nil
}

var _ repository.TransactionRepository = (*stubTransactionRepo)(nil)

// ── InvoiceRepository stub ───────────────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	ops      *[]string // shared purge-order log, optional
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) add(userID uuid.UUID, amount decimal.Decimal) *model.Invoice {
	inv := &model.Invoice{
		ID:           uuid.New(),
		UserID:       userID,
		CustomerName: "customer",
		Amount:       amount,
		Status:       "sent",
		InvoiceDate:  time.Now(),
	}
	r.invoices[inv.ID] = inv
	return inv
}

func (r *stubInvoiceRepo) logOp(op string) {
	if r.ops != nil {
		*r.ops = append(*r.ops, op)
	}
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, errNotFound
	}
	cloned := *inv
	return &cloned, nil
}

func (r *stubInvoiceRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	cloned := *inv
	r.invoices[inv.ID] = &cloned
	return nil
}

func (r *stubInvoiceRepo) UpdateTotals(_ context.Context, id uuid.UUID, totalCost, profit *decimal.Decimal) error {
	inv, ok := r.invoices[id]
	if !ok {
		return errNotFound
	}
	inv.TotalActualCost = totalCost
	inv.ActualProfit = profit
	return nil
}

func (r *stubInvoiceRepo) Aggregates(_ context.Context, userID uuid.UUID) (*repository.InvoiceAggregates, error) {
	agg := &repository.InvoiceAggregates{}
	for _, inv := range r.invoices {
		if inv.UserID != userID {
			continue
		}
		agg.Count++
		agg.TotalRevenue = agg.TotalRevenue.Add(inv.Amount)
		if inv.TotalActualCost != nil {
			agg.TotalCost = agg.TotalCost.Add(*inv.TotalActualCost)
		}
		if inv.ActualProfit != nil {
			agg.TotalProfit = agg.TotalProfit.Add(*inv.ActualProfit)
		}
	}
	return agg, nil
}

func (r *stubInvoiceRepo) CountLineItems(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *stubInvoiceRepo) DeleteLineItemsTx(_ *gorm.DB, _ uuid.UUID) error {
	r.logOp("delete line items")
	return nil
}

func (r *stubInvoiceRepo) DeleteQuickBooksMapsTx(_ *gorm.DB, _ uuid.UUID) error {
	r.logOp("delete quickbooks maps")
	return nil
}

func (r *stubInvoiceRepo) DeleteAllTx(_ *gorm.DB, userID uuid.UUID) error {
	r.logOp("delete invoices")
	for id, inv := range r.invoices {
		if inv.UserID == userID {
			delete(r.invoices, id)
		}
	}
	return nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── AllocationRepository stub ────────────────────────────────────────────────

type stubAllocationRepo struct {
	allocations map[uuid.UUID]*model.Allocation
	expenses    map[uuid.UUID]*model.ExpenseAllocation
	ops         *[]string

	// beforeDelete runs at the top of Delete; tests use it to interleave a
	// concurrent mutation between the read and the delete.
	beforeDelete func()
}

func newStubAllocationRepo() *stubAllocationRepo {
	return &stubAllocationRepo{
		allocations: make(map[uuid.UUID]*model.Allocation),
		expenses:    make(map[uuid.UUID]*model.ExpenseAllocation),
	}
}

func (r *stubAllocationRepo) logOp(op string) {
	if r.ops != nil {
		*r.ops = append(*r.ops, op)
	}
}

func (r *stubAllocationRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*model.Allocation, error) {
	a, ok := r.allocations[id]
	if !ok || a.UserID != userID {
		return nil, errNotFound
	}
	cloned := *a
	return &cloned, nil
}

func (r *stubAllocationRepo) FindByPair(_ context.Context, userID, transactionID, invoiceID uuid.UUID) (*model.Allocation, error) {
	for _, a := range r.allocations {
		if a.UserID == userID && a.TransactionID == transactionID && a.InvoiceID == invoiceID {
			cloned := *a
			return &cloned, nil
		}
	}
	return nil, errNotFound
}

func (r *stubAllocationRepo) Create(_ context.Context, a *model.Allocation) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	cloned := *a
	r.allocations[a.ID] = &cloned
	return nil
}

func (r *stubAllocationRepo) Update(_ context.Context, a *model.Allocation) error {
	cloned := *a
	r.allocations[a.ID] = &cloned
	return nil
}

// Delete mirrors the gorm repo: a vanished row reports gorm.ErrRecordNotFound
// via the RowsAffected check, not a silent no-op.
func (r *stubAllocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.beforeDelete != nil {
		r.beforeDelete()
	}
	if _, ok := r.allocations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.allocations, id)
	return nil
}

func (r *stubAllocationRepo) SumForTransaction(_ context.Context, transactionID uuid.UUID, excludeID *uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range r.allocations {
		if a.TransactionID != transactionID {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		sum = sum.Add(a.AllocationAmount)
	}
	return sum, nil
}

func (r *stubAllocationRepo) SumForInvoice(_ context.Context, invoiceID uuid.UUID) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var count int64
	for _, a := range r.allocations {
		if a.InvoiceID == invoiceID {
			sum = sum.Add(a.AllocationAmount)
			count++
		}
	}
	return sum, count, nil
}

func (r *stubAllocationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Allocation, error) {
	var out []model.Allocation
	for _, a := range r.allocations {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAllocationRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, a := range r.allocations {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubAllocationRepo) DeleteAllForUserTx(_ *gorm.DB, userID uuid.UUID) error {
	r.logOp("delete allocations")
	for id, a := range r.allocations {
		if a.UserID == userID {
			delete(r.allocations, id)
		}
	}
	return nil
}

func (r *stubAllocationRepo) FindExpenseByPair(_ context.Context, userID, usageID, transactionID uuid.UUID) (*model.ExpenseAllocation, error) {
	for _, e := range r.expenses {
		if e.UserID == userID && e.BlueprintUsageID == usageID && e.TransactionID == transactionID {
			cloned := *e
			return &cloned, nil
		}
	}
	return nil, errNotFound
}

func (r *stubAllocationRepo) FindExpenseByID(_ context.Context, userID, id uuid.UUID) (*model.ExpenseAllocation, error) {
	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return nil, errNotFound
	}
	cloned := *e
	return &cloned, nil
}

func (r *stubAllocationRepo) CreateExpense(_ context.Context, e *model.ExpenseAllocation) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cloned := *e
	r.expenses[e.ID] = &cloned
	return nil
}

func (r *stubAllocationRepo) UpdateExpense(_ context.Context, e *model.ExpenseAllocation) error {
	cloned := *e
	r.expenses[e.ID] = &cloned
	return nil
}

func (r *stubAllocationRepo) DeleteExpense(_ context.Context, id uuid.UUID) error {
	if _, ok := r.expenses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *stubAllocationRepo) SumExpensesByType(_ context.Context, usageID uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, e := range r.expenses {
		if e.BlueprintUsageID == usageID {
			sums[e.ExpenseType] = sums[e.ExpenseType].Add(e.AllocationAmount)
		}
	}
	return sums, nil
}

func (r *stubAllocationRepo) DeleteExpensesForUsagesTx(_ *gorm.DB, userID uuid.UUID) error {
	r.logOp("delete expense allocations")
	for id, e := range r.expenses {
		if e.UserID == userID {
			delete(r.expenses, id)
		}
	}
	return nil
}

func (r *stubAllocationRepo) DeleteExpensesForInvoiceLinkedUsagesTx(_ *gorm.DB, userID uuid.UUID) error {
	r.logOp("delete linked expense allocations")
	return nil
}

func (r *stubAllocationRepo) DB() *gorm.DB { return nil }

var _ repository.AllocationRepository = (*stubAllocationRepo)(nil)

// ── BlueprintRepository stub ─────────────────────────────────────────────────

type stubBlueprintRepo struct {
	blueprints map[uuid.UUID]*model.Blueprint
	usages     map[uuid.UUID]*model.BlueprintUsage

	costUpdates map[uuid.UUID][3]decimal.Decimal
	ops         *[]string
}

func newStubBlueprintRepo() *stubBlueprintRepo {
	return &stubBlueprintRepo{
		blueprints:  make(map[uuid.UUID]*model.Blueprint),
		usages:      make(map[uuid.UUID]*model.BlueprintUsage),
		costUpdates: make(map[uuid.UUID][3]decimal.Decimal),
	}
}

func (r *stubBlueprintRepo) logOp(op string) {
	if r.ops != nil {
		*r.ops = append(*r.ops, op)
	}
}

func (r *stubBlueprintRepo) addBlueprint(userID uuid.UUID, name string, items ...model.BlueprintItem) *model.Blueprint {
	bp := &model.Blueprint{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	for i := range items {
		items[i].BlueprintID = bp.ID
	}
	bp.Items = items
	r.blueprints[bp.ID] = bp
	return bp
}

func (r *stubBlueprintRepo) addUsage(userID, blueprintID uuid.UUID, invoiceID *uuid.UUID, salePrice decimal.Decimal) *model.BlueprintUsage {
	u := &model.BlueprintUsage{
		ID:              uuid.New(),
		UserID:          userID,
		BlueprintID:     blueprintID,
		InvoiceID:       invoiceID,
		ActualSalePrice: salePrice,
		Blueprint:       r.blueprints[blueprintID],
	}
	r.usages[u.ID] = u
	return u
}

func (r *stubBlueprintRepo) FindByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.Blueprint, error) {
	var out []model.Blueprint
	for _, id := range ids {
		if bp, ok := r.blueprints[id]; ok && bp.UserID == userID {
			out = append(out, *bp)
		}
	}
	return out, nil
}

func (r *stubBlueprintRepo) FindUsageByID(_ context.Context, userID, id uuid.UUID) (*model.BlueprintUsage, error) {
	u, ok := r.usages[id]
	if !ok || u.UserID != userID {
		return nil, errNotFound
	}
	cloned := *u
	return &cloned, nil
}

func (r *stubBlueprintRepo) CreateUsagesTx(_ *gorm.DB, usages []*model.BlueprintUsage) error {
	for _, u := range usages {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.CreatedAt = time.Now()
		cloned := *u
		r.usages[u.ID] = &cloned
	}
	return nil
}

func (r *stubBlueprintRepo) UpdateUsageCosts(_ context.Context, id uuid.UUID, materials, labor, overhead decimal.Decimal) error {
	r.costUpdates[id] = [3]decimal.Decimal{materials, labor, overhead}
	if u, ok := r.usages[id]; ok {
		u.ActualMaterialsCost = materials
		u.ActualLaborCost = labor
		u.ActualOverheadCost = overhead
	}
	return nil
}

func (r *stubBlueprintRepo) ListUsagesByUser(_ context.Context, userID uuid.UUID) ([]model.BlueprintUsage, error) {
	var out []model.BlueprintUsage
	for _, u := range r.usages {
		if u.UserID == userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubBlueprintRepo) ListUsagesByInvoice(_ context.Context, userID, invoiceID uuid.UUID) ([]model.BlueprintUsage, error) {
	var out []model.BlueprintUsage
	for _, u := range r.usages {
		if u.UserID == userID && u.InvoiceID != nil && *u.InvoiceID == invoiceID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubBlueprintRepo) UsageAggregates(_ context.Context, userID uuid.UUID) (*repository.UsageAggregates, error) {
	agg := &repository.UsageAggregates{}
	for _, u := range r.usages {
		if u.UserID != userID {
			continue
		}
		agg.Count++
		agg.TotalCost = agg.TotalCost.Add(u.ActualTotalCost())
		agg.TotalSalePrice = agg.TotalSalePrice.Add(u.ActualSalePrice)
	}
	return agg, nil
}

func (r *stubBlueprintRepo) CountInvoiceLinkedUsages(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, u := range r.usages {
		if u.UserID == userID && u.InvoiceID != nil {
			n++
		}
	}
	return n, nil
}

func (r *stubBlueprintRepo) DeleteAllUsagesTx(_ *gorm.DB, userID uuid.UUID) error {
	r.logOp("delete usages")
	for id, u := range r.usages {
		if u.UserID == userID {
			delete(r.usages, id)
		}
	}
	return nil
}

func (r *stubBlueprintRepo) DeleteInvoiceLinkedUsagesTx(_ *gorm.DB, userID uuid.UUID) error {
	r.logOp("delete linked usages")
	for id, u := range r.usages {
		if u.UserID == userID && u.InvoiceID != nil {
			delete(r.usages, id)
		}
	}
	return nil
}

func (r *stubBlueprintRepo) DB() *gorm.DB { return nil }

var _ repository.BlueprintRepository = (*stubBlueprintRepo)(nil)

// ── InventoryRepository stub ─────────────────────────────────────────────────

type stubInventoryRepo struct {
	items     map[uuid.UUID]*model.InventoryItem
	movements []model.InventoryMovement

	// lockErr makes FindItemForUpdateTx fail for the given item, simulating
	// stock rows disappearing between the availability check and deduction.
	lockErr map[uuid.UUID]error
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{
		items:   make(map[uuid.UUID]*model.InventoryItem),
		lockErr: make(map[uuid.UUID]error),
	}
}

func (r *stubInventoryRepo) addItem(userID uuid.UUID, name string, current, minimum decimal.Decimal) *model.InventoryItem {
	item := &model.InventoryItem{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		CurrentQuantity: current,
		MinimumQuantity: minimum,
	}
	r.items[item.ID] = item
	return item
}

func (r *stubInventoryRepo) FindItemByID(_ context.Context, userID, id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, errNotFound
	}
	cloned := *item
	return &cloned, nil
}

func (r *stubInventoryRepo) FindItemsByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) FindItemForUpdateTx(_ *gorm.DB, userID, id uuid.UUID) (*model.InventoryItem, error) {
	if err := r.lockErr[id]; err != nil {
		return nil, err
	}
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, errNotFound
	}
	cloned := *item
	return &cloned, nil
}

func (r *stubInventoryRepo) UpdateQuantityTx(_ *gorm.DB, id uuid.UUID, newQuantity decimal.Decimal) error {
	item, ok := r.items[id]
	if !ok {
		return errNotFound
	}
	item.CurrentQuantity = newQuantity
	return nil
}

func (r *stubInventoryRepo) CreateMovementTx(_ *gorm.DB, m *model.InventoryMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubInventoryRepo) ListMovements(_ context.Context, userID uuid.UUID, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	var all []model.InventoryMovement
	for _, m := range r.movements {
		if m.UserID != userID {
			continue
		}
		if filter.InventoryItemID != "" && m.InventoryItemID.String() != filter.InventoryItemID {
			continue
		}
		if filter.MovementType != "" && m.MovementType != filter.MovementType {
			continue
		}
		all = append(all, m)
	}
	total := int64(len(all))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *stubInventoryRepo) ListLowStock(_ context.Context, userID uuid.UUID) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.UserID == userID && item.IsLowStock() {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) DB() *gorm.DB { return nil }

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

// ── RecalcEnqueuer stub ──────────────────────────────────────────────────────

type stubRecalcEnqueuer struct {
	enqueued []uuid.UUID
	err      error
}

func (s *stubRecalcEnqueuer) EnqueueRecalc(_ context.Context, userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, userID)
	return nil
}

var _ RecalcEnqueuer = (*stubRecalcEnqueuer)(nil)
