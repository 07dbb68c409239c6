package model

import (
	"time"

	"github.com/google/uuid"

	"andespos/internal/money"
)

// CreditNote reverses part or all of a prior sale. It is created exactly
// once per return event and is immutable afterwards.
// Hard invariant: Σ(Refunds.AmountCents) == TotalRefundCents.
type CreditNote struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number           int64       `gorm:"uniqueIndex;not null"`
	SaleID           uuid.UUID   `gorm:"type:uuid;index;not null"`
	BranchID         int         `gorm:"not null"`
	TotalRefundCents money.Cents `gorm:"not null"`
	UserID           uuid.UUID   `gorm:"type:uuid;not null"`
	CreatedAt        time.Time

	Items   []CreditNoteItem `gorm:"foreignKey:CreditNoteID"`
	Refunds []RefundDetail   `gorm:"foreignKey:CreditNoteID"`
}

type CreditNoteItem struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditNoteID uuid.UUID   `gorm:"type:uuid;index;not null"`
	SaleItemID   uuid.UUID   `gorm:"type:uuid;not null"`
	Quantity     int         `gorm:"not null"`
	UnitPrice    money.Cents `gorm:"not null"`
}

// RefundDetail is one repayment line of a credit note: how much of the
// refund left through which method.
type RefundDetail struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditNoteID uuid.UUID   `gorm:"type:uuid;index;not null"`
	Method       string      `gorm:"type:varchar(20);not null"`
	AmountCents  money.Cents `gorm:"not null"`
	Reference    *string
	AccountID    *uuid.UUID `gorm:"type:uuid"`
}
