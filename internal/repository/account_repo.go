package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"andespos/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, a *model.BankAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BankAccount, error)
	ListActive(ctx context.Context) ([]model.BankAccount, error)
}

type accountRepo struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &accountRepo{db: db} }

func (r *accountRepo) Create(ctx context.Context, a *model.BankAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BankAccount, error) {
	var a model.BankAccount
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) ListActive(ctx context.Context) ([]model.BankAccount, error) {
	var accounts []model.BankAccount
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&accounts).Error
	return accounts, err
}
