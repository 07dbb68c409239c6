package dto

import "github.com/shopspring/decimal"

// WalletOperationRequest deposits to or withdraws from a client wallet.
// Cash operations require an open session; non-cash ones an account.
type WalletOperationRequest struct {
	BranchID  int             `json:"branch_id"  validate:"required,min=1"`
	Amount    decimal.Decimal `json:"amount"     validate:"required"`
	Method    string          `json:"method"     validate:"required"`
	AccountID *string         `json:"account_id" validate:"omitempty,uuid"`
	Reference *string         `json:"reference"`
	Concept   string          `json:"concept"    validate:"omitempty,min=3"`
}

type WalletResponse struct {
	ClientID string          `json:"client_id"`
	Balance  decimal.Decimal `json:"balance"`
}

type WalletEntryResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	ReferenceID *string         `json:"reference_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type WalletEntryListResponse struct {
	ClientID string                `json:"client_id"`
	Balance  decimal.Decimal       `json:"balance"`
	Data     []WalletEntryResponse `json:"data"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
}
