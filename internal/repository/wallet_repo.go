package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"andespos/internal/model"
	"andespos/internal/money"
)

type WalletRepository interface {
	// FindByClient returns a zero-balance wallet when none exists yet;
	// wallets are materialized lazily on first credit.
	FindByClient(ctx context.Context, clientID uuid.UUID) (*model.ClientWallet, error)
	// AddTx adjusts the balance by delta (signed) and upserts the row.
	AddTx(tx *gorm.DB, clientID uuid.UUID, delta money.Cents) error
	CreateEntryTx(tx *gorm.DB, e *model.WalletEntry) error
	ListEntries(ctx context.Context, clientID uuid.UUID, page, limit int) ([]model.WalletEntry, int64, error)
}

type walletRepo struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) WalletRepository { return &walletRepo{db: db} }

func (r *walletRepo) FindByClient(ctx context.Context, clientID uuid.UUID) (*model.ClientWallet, error) {
	var w model.ClientWallet
	err := r.db.WithContext(ctx).First(&w, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.ClientWallet{ClientID: clientID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepo) AddTx(tx *gorm.DB, clientID uuid.UUID, delta money.Cents) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance_cents": gorm.Expr("client_wallets.balance_cents + ?", int64(delta)),
		}),
	}).Create(&model.ClientWallet{ClientID: clientID, BalanceCents: delta}).Error
}

func (r *walletRepo) CreateEntryTx(tx *gorm.DB, e *model.WalletEntry) error {
	return tx.Create(e).Error
}

func (r *walletRepo) ListEntries(ctx context.Context, clientID uuid.UUID, page, limit int) ([]model.WalletEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.WalletEntry{}).Where("client_id = ?", clientID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []model.WalletEntry
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}
