package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"andespos/internal/model"
)

type CashboxRepository interface {
	CreateSession(ctx context.Context, s *model.CashSession, balances []model.SessionBankBalance) error
	FindOpenSessionByBranch(ctx context.Context, branchID int) (*model.CashSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindLastClosedSession(ctx context.Context, branchID int) (*model.CashSession, error)
	// CloseSession persists the closing fields and the closing bank
	// confirmations in one transaction. There is no generic update: an open
	// session only ever transitions to closed.
	CloseSession(ctx context.Context, s *model.CashSession, balances []model.SessionBankBalance) error
	ListSessions(ctx context.Context, branchID, page, limit int) ([]model.CashSession, int64, error)
}

type cashboxRepo struct{ db *gorm.DB }

func NewCashboxRepository(db *gorm.DB) CashboxRepository { return &cashboxRepo{db: db} }

func (r *cashboxRepo) CreateSession(ctx context.Context, s *model.CashSession, balances []model.SessionBankBalance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		for i := range balances {
			balances[i].SessionID = s.ID
		}
		if len(balances) == 0 {
			return nil
		}
		return tx.Create(&balances).Error
	})
}

func (r *cashboxRepo) FindOpenSessionByBranch(ctx context.Context, branchID int) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND status = ?", branchID, model.SessionOpen).
		Preload("BankBalances").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashboxRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Preload("BankBalances").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashboxRepo) FindLastClosedSession(ctx context.Context, branchID int) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND status = ?", branchID, model.SessionClosed).
		Order("closed_at DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashboxRepo) CloseSession(ctx context.Context, s *model.CashSession, balances []model.SessionBankBalance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"counted_closing_cents":  s.CountedClosingCents,
			"expected_closing_cents": s.ExpectedClosingCents,
			"variance_cents":         s.VarianceCents,
			"status":                 s.Status,
			"closing_notes":          s.ClosingNotes,
			"override_accepted":      s.OverrideAccepted,
			"closed_at":              s.ClosedAt,
		}
		if err := tx.Model(&model.CashSession{}).Where("id = ?", s.ID).Updates(updates).Error; err != nil {
			return err
		}
		for i := range balances {
			balances[i].SessionID = s.ID
		}
		if len(balances) == 0 {
			return nil
		}
		return tx.Create(&balances).Error
	})
}

func (r *cashboxRepo) ListSessions(ctx context.Context, branchID, page, limit int) ([]model.CashSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CashSession{})
	if branchID > 0 {
		q = q.Where("branch_id = ?", branchID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sessions []model.CashSession
	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
