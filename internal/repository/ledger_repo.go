package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"andespos/internal/model"
	"andespos/internal/money"
)

// MovementQuery is the repository-level filter with all date bounds already
// resolved to UTC instants by the service layer.
type MovementQuery struct {
	BranchID  int
	From, To  *time.Time // [From, To)
	Type      string
	CashOnly  bool
	AccountID *uuid.UUID
	Page      int
	Limit     int
}

// LedgerRepository is append-only by construction: the interface exposes no
// update or delete for movements.
type LedgerRepository interface {
	Create(ctx context.Context, m *model.Movement) error
	CreateTx(tx *gorm.DB, m *model.Movement) error
	List(ctx context.Context, q MovementQuery) ([]model.Movement, int64, error)
	// ListSince returns all movements of a branch at or after `since`,
	// oldest first — used for the session running-balance view.
	ListSince(ctx context.Context, branchID int, since time.Time) ([]model.Movement, error)
	// SumCash returns Σ income − Σ expense of cash movements for the branch
	// within [since, until); nil bounds are unbounded.
	SumCash(ctx context.Context, branchID int, since, until *time.Time) (money.Cents, error)
	// SumAccount is the equivalent for one bank account.
	SumAccount(ctx context.Context, accountID uuid.UUID, until *time.Time) (money.Cents, error)
	DB() *gorm.DB
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) DB() *gorm.DB { return r.db }

func (r *ledgerRepo) Create(ctx context.Context, m *model.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ledgerRepo) CreateTx(tx *gorm.DB, m *model.Movement) error {
	return tx.Create(m).Error
}

func (r *ledgerRepo) List(ctx context.Context, q MovementQuery) ([]model.Movement, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Movement{}).Where("branch_id = ?", q.BranchID)
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at < ?", *q.To)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.CashOnly {
		db = db.Where("method = ?", model.MethodCash)
	}
	if q.AccountID != nil {
		db = db.Where("account_id = ?", *q.AccountID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movs []model.Movement
	err := db.Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).
		Find(&movs).Error
	return movs, total, err
}

func (r *ledgerRepo) ListSince(ctx context.Context, branchID int, since time.Time) ([]model.Movement, error) {
	var movs []model.Movement
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND created_at >= ?", branchID, since).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

const signedSum = "COALESCE(SUM(CASE WHEN type = 'ingreso' THEN amount_cents ELSE -amount_cents END), 0)"

func (r *ledgerRepo) SumCash(ctx context.Context, branchID int, since, until *time.Time) (money.Cents, error) {
	db := r.db.WithContext(ctx).Model(&model.Movement{}).
		Where("branch_id = ? AND method = ?", branchID, model.MethodCash)
	if since != nil {
		db = db.Where("created_at >= ?", *since)
	}
	if until != nil {
		db = db.Where("created_at < ?", *until)
	}
	var sum int64
	err := db.Select(signedSum).Scan(&sum).Error
	return money.Cents(sum), err
}

func (r *ledgerRepo) SumAccount(ctx context.Context, accountID uuid.UUID, until *time.Time) (money.Cents, error) {
	db := r.db.WithContext(ctx).Model(&model.Movement{}).
		Where("account_id = ?", accountID)
	if until != nil {
		db = db.Where("created_at < ?", *until)
	}
	var sum int64
	err := db.Select(signedSum).Scan(&sum).Error
	return money.Cents(sum), err
}
