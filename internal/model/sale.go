package model

import (
	"time"

	"github.com/google/uuid"

	"andespos/internal/money"
)

// Sale is an invoice-like record. TotalCents is fixed at creation; the
// outstanding balance is always derived as total − Σ payment allocations,
// never stored.
type Sale struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number   int64     `gorm:"uniqueIndex;not null"`
	BranchID int       `gorm:"not null;index"`
	// ClientID is nil for anonymous counter sales; wallet operations
	// (excess routing, wallet payment) require a client
	ClientID   *uuid.UUID  `gorm:"type:uuid;index"`
	UserID     uuid.UUID   `gorm:"type:uuid;not null"`
	TotalCents money.Cents `gorm:"not null"`
	CreatedAt  time.Time

	Items    []SaleItem     `gorm:"foreignKey:SaleID"`
	Payments []PaymentEntry `gorm:"foreignKey:SaleID"`
}

type SaleItem struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID         uuid.UUID   `gorm:"type:uuid;index;not null"`
	Description    string      `gorm:"not null"`
	UnitPriceCents money.Cents `gorm:"not null"`
	Quantity       int         `gorm:"not null"`
	// ReturnedQty grows as credit notes return units of this line
	ReturnedQty int `gorm:"not null;default:0"`
}

// LineTotal is price × quantity for the line.
func (i *SaleItem) LineTotal() money.Cents {
	return i.UnitPriceCents * money.Cents(i.Quantity)
}

// PaymentEntry is immutable once created. AmountCents is what physically
// entered via this entry; ExcessCents is the portion beyond the debt that
// was credited to the client wallet, so that
// Σ(allocations) == AmountCents − ExcessCents always holds.
type PaymentEntry struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID   `gorm:"type:uuid;index;not null"`
	Method      string      `gorm:"type:varchar(20);not null"`
	AmountCents money.Cents `gorm:"not null"`
	ExcessCents money.Cents `gorm:"not null;default:0"`
	Reference   *string
	AccountID   *uuid.UUID `gorm:"type:uuid"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time

	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentEntryID"`
}

// PaymentAllocation assigns part of a payment entry to one sale item.
type PaymentAllocation struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaymentEntryID uuid.UUID   `gorm:"type:uuid;index;not null"`
	SaleItemID     uuid.UUID   `gorm:"type:uuid;index;not null"`
	AmountCents    money.Cents `gorm:"not null"`
}

// AllocatedByItem sums the committed allocations of the sale per item.
func (s *Sale) AllocatedByItem() map[uuid.UUID]money.Cents {
	paid := make(map[uuid.UUID]money.Cents, len(s.Items))
	for _, p := range s.Payments {
		for _, a := range p.Allocations {
			paid[a.SaleItemID] += a.AmountCents
		}
	}
	return paid
}

// Balance is the outstanding debt: total − Σ allocations. Never negative
// as long as the allocation engine's clamping invariant holds.
func (s *Sale) Balance() money.Cents {
	var allocated money.Cents
	for _, p := range s.Payments {
		for _, a := range p.Allocations {
			allocated += a.AmountCents
		}
	}
	return s.TotalCents - allocated
}
