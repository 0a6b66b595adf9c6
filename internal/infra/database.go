package infra

import (
	"fmt"

	"github.com/Enochthedev/mintro-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// AutoMigrate cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Transaction{},
		&model.Invoice{},
		&model.InvoiceLineItem{},
		&model.QuickBooksInvoiceMap{},
		&model.Allocation{},
		&model.Blueprint{},
		&model.BlueprintItem{},
		&model.BlueprintUsage{},
		&model.ExpenseAllocation{},
		&model.InventoryItem{},
		&model.InventoryMovement{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the low-stock alert scan.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_inventory_items_low_stock') THEN
		    CREATE INDEX idx_inventory_items_low_stock
		        ON inventory_items (user_id)
		        WHERE current_quantity <= minimum_quantity;
		  END IF;
		END $$`,
		// Partial index for invoice-linked usage lookups during purges.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_blueprint_usages_invoice') THEN
		    CREATE INDEX idx_blueprint_usages_invoice
		        ON blueprint_usages (invoice_id)
		        WHERE invoice_id IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
