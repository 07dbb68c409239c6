package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemAllocation is the operator-proposed amount to pay down one sale item.
// Amounts beyond the item's remaining balance are clamped by the engine.
type ItemAllocation struct {
	SaleItemID string          `json:"sale_item_id" validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount"       validate:"required"`
}

// SaleAllocation groups the item allocations for one sale of the batch.
type SaleAllocation struct {
	SaleID string           `json:"sale_id" validate:"required,uuid"`
	Items  []ItemAllocation `json:"items"   validate:"required,min=1,dive"`
}

// RegisterPaymentRequest commits one payment across one or more sales.
// Received beyond the total allocation is credited to the client wallet.
type RegisterPaymentRequest struct {
	BranchID  int              `json:"branch_id" validate:"required,min=1"`
	Sales     []SaleAllocation `json:"sales"     validate:"required,min=1,dive"`
	Method    string           `json:"method"    validate:"required"`
	Received  decimal.Decimal  `json:"received"  validate:"required"`
	Reference *string          `json:"reference"`
	AccountID *string          `json:"account_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentEntryResponse struct {
	ID          string                     `json:"id"`
	SaleID      string                     `json:"sale_id"`
	Method      string                     `json:"method"`
	Amount      decimal.Decimal            `json:"amount"`
	Excess      decimal.Decimal            `json:"excess"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
	CreatedAt   string                     `json:"created_at"`
}

type RegisterPaymentResponse struct {
	Entries        []PaymentEntryResponse `json:"entries"`
	TotalAllocated decimal.Decimal        `json:"total_allocated"`
	Received       decimal.Decimal        `json:"received"`
	Excess         decimal.Decimal        `json:"excess"`
	// WalletBalance is present when excess was credited or the wallet paid
	WalletBalance *decimal.Decimal `json:"wallet_balance,omitempty"`
}
