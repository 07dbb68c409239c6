package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a registered customer. Only registered clients can hold a
// wallet balance or accumulate receivables.
type Client struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"not null"`
	// Document is the DNI or RUC
	Document *string `gorm:"uniqueIndex"`
	Phone    *string
	// Email receives payment receipts when present
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
