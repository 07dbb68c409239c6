package model

import (
	"time"

	"github.com/google/uuid"

	"andespos/internal/money"
)

// Wallet entry reasons.
const (
	WalletReasonExcess     = "excedente_pago"
	WalletReasonDeposit    = "deposito"
	WalletReasonWithdrawal = "retiro"
	WalletReasonPayment    = "pago_con_billetera"
	WalletReasonRefund     = "devolucion"
)

// ClientWallet holds a client's stored-value balance. The balance never
// goes negative; every mutation is paired with a WalletEntry and, when
// money crosses the drawer/bank boundary, a Movement.
type ClientWallet struct {
	ClientID     uuid.UUID   `gorm:"type:uuid;primaryKey"`
	BalanceCents money.Cents `gorm:"not null;default:0"`
	UpdatedAt    time.Time
}

// WalletEntry is the append-only audit trail of wallet mutations.
// AmountCents is signed: positive credits, negative debits.
type WalletEntry struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID    uuid.UUID   `gorm:"type:uuid;index;not null"`
	AmountCents money.Cents `gorm:"not null"`
	Reason      string      `gorm:"type:varchar(30);not null"`
	// ReferenceID links to the payment entry, movement or credit note that
	// caused the mutation
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}
