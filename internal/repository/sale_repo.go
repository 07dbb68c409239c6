package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"andespos/internal/model"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	NextNumber(tx *gorm.DB) (int64, error)
	// FindByID preloads items and payments with their allocations, so the
	// caller can derive remaining balances without extra queries.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	CreatePaymentEntryTx(tx *gorm.DB, e *model.PaymentEntry) error
	AddReturnedQtyTx(tx *gorm.DB, itemID uuid.UUID, qty int) error
	ListReceivables(ctx context.Context, clientID *uuid.UUID, page, limit int) ([]model.Sale, int64, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) NextNumber(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Raw("SELECT nextval('sale_number_seq')").Scan(&n).Error
	return n, err
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Preload("Payments.Allocations").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) CreatePaymentEntryTx(tx *gorm.DB, e *model.PaymentEntry) error {
	return tx.Create(e).Error
}

func (r *saleRepo) AddReturnedQtyTx(tx *gorm.DB, itemID uuid.UUID, qty int) error {
	return tx.Model(&model.SaleItem{}).
		Where("id = ?", itemID).
		Update("returned_qty", gorm.Expr("returned_qty + ?", qty)).Error
}

// ListReceivables returns sales whose allocated payments do not cover the
// total yet, newest first.
func (r *saleRepo) ListReceivables(ctx context.Context, clientID *uuid.UUID, page, limit int) ([]model.Sale, int64, error) {
	sub := r.db.Table("payment_entries pe").
		Select("COALESCE(SUM(pa.amount_cents), 0)").
		Joins("JOIN payment_allocations pa ON pa.payment_entry_id = pe.id").
		Where("pe.sale_id = sales.id")

	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("total_cents > (?)", sub)
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := q.Preload("Items").
		Preload("Payments").
		Preload("Payments.Allocations").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}
