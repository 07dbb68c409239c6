package model

import (
	"time"

	"github.com/google/uuid"

	"andespos/internal/money"
)

// Movement types.
const (
	MovementIncome  = "ingreso"
	MovementExpense = "egreso"
)

// Financial classification used by the expense reports.
const (
	FinancialFixed    = "fijo"
	FinancialVariable = "variable"
)

// Movement is an immutable entry in the cash/bank ledger. AmountCents is
// always positive; Type carries the direction. Movements are NEVER updated
// or deleted — reversals create inverse entries (e.g. a credit note).
type Movement struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID int       `gorm:"not null;index"`
	Type     string    `gorm:"type:varchar(10);not null"`
	// AmountCents > 0 — enforced at the service layer before insert
	AmountCents money.Cents `gorm:"not null"`
	Method      string      `gorm:"type:varchar(20);not null"`
	// AccountID is nil for cash movements (the physical drawer)
	AccountID     *uuid.UUID `gorm:"type:uuid;index"`
	Category      string     `gorm:"type:varchar(40);not null"`
	FinancialType string     `gorm:"type:varchar(10);not null;default:'variable'"`
	// ReferenceID links to the originating sale, credit note or wallet entry
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	Concept     string     `gorm:"not null"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}

// Signed returns the amount with the sign implied by the movement type.
func (m *Movement) Signed() money.Cents {
	if m.Type == MovementExpense {
		return -m.AmountCents
	}
	return m.AmountCents
}

// IsCash reports whether the movement changes the physical drawer.
func (m *Movement) IsCash() bool { return m.Method == MethodCash }
