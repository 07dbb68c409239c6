package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"andespos/internal/model"
)

type CreditNoteRepository interface {
	CreateTx(tx *gorm.DB, n *model.CreditNote) error
	NextNumber(tx *gorm.DB) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CreditNote, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.CreditNote, error)
}

type creditNoteRepo struct{ db *gorm.DB }

func NewCreditNoteRepository(db *gorm.DB) CreditNoteRepository { return &creditNoteRepo{db: db} }

func (r *creditNoteRepo) CreateTx(tx *gorm.DB, n *model.CreditNote) error {
	return tx.Create(n).Error
}

func (r *creditNoteRepo) NextNumber(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Raw("SELECT nextval('credit_note_number_seq')").Scan(&n).Error
	return n, err
}

func (r *creditNoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CreditNote, error) {
	var n model.CreditNote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Refunds").
		First(&n, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *creditNoteRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.CreditNote, error) {
	var notes []model.CreditNote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Refunds").
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}
