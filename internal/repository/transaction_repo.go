package repository

import (
	"context"

	"github.com/Enochthedev/mintro-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRepository reads bank transactions. Rows are owned by the sync
// collaborator, so this engine exposes no write methods for them.
type TransactionRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Transaction, error)
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	return &t, err
}
