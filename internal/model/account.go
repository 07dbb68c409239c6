package model

import (
	"time"

	"github.com/google/uuid"
)

// BankAccount is a destination or source for non-cash movements (card
// settlements, transfers, Yape). Its balance is never stored — it is
// derived from the movement ledger.
type BankAccount struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string    `gorm:"not null;uniqueIndex"`
	Bank   string    `gorm:"not null"`
	Number *string
	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
