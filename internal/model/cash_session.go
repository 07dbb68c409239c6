package model

import (
	"time"

	"github.com/google/uuid"

	"andespos/internal/money"
)

// Session states. There are no intermediate states: a session is either
// open or it is immutable history.
const (
	SessionOpen   = "abierta"
	SessionClosed = "cerrada"
)

// Bank balance confirmation phases.
const (
	PhaseOpening = "apertura"
	PhaseClosing = "cierre"
)

// CashSession is the open-to-close lifecycle of one drawer shift.
// At most one open session exists per branch at any time.
type CashSession struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID            int         `gorm:"not null;index"`
	UserID              uuid.UUID   `gorm:"type:uuid;not null"`
	CountedOpeningCents money.Cents `gorm:"not null"`
	// Closing fields are nil while the session is open
	CountedClosingCents  *money.Cents
	ExpectedClosingCents *money.Cents
	// VarianceCents = counted − expected at close
	VarianceCents *money.Cents
	Status        string `gorm:"type:varchar(10);not null;default:'abierta'"`
	OpeningNotes  *string
	ClosingNotes  *string
	// OverrideAccepted records that the operator explicitly acknowledged a
	// counted-vs-expected discrepancy at open or close
	OverrideAccepted bool `gorm:"not null;default:false"`
	OpenedAt         time.Time
	ClosedAt         *time.Time

	BankBalances []SessionBankBalance `gorm:"foreignKey:SessionID"`
}

// SessionBankBalance stores the operator-confirmed balance of one bank
// account at open or close time, next to the system expectation, for audit.
type SessionBankBalance struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID      uuid.UUID   `gorm:"type:uuid;index;not null"`
	AccountID      uuid.UUID   `gorm:"type:uuid;not null"`
	Phase          string      `gorm:"type:varchar(10);not null"`
	ConfirmedCents money.Cents `gorm:"not null"`
	ExpectedCents  money.Cents `gorm:"not null"`
	CreatedAt      time.Time
}

// Denominations are the bill and coin values accepted by the drawer count,
// in céntimos (0.10 up to 200 soles).
var Denominations = []money.Cents{10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000}

func KnownDenomination(v money.Cents) bool {
	for _, d := range Denominations {
		if d == v {
			return true
		}
	}
	return false
}
