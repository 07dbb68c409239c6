package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ReturnItem struct {
	SaleItemID string `json:"sale_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity"     validate:"required,gt=0"`
}

// RefundLine apportions part of the refund total to one repayment method.
type RefundLine struct {
	Method    string          `json:"method"     validate:"required"`
	Amount    decimal.Decimal `json:"amount"     validate:"required"`
	Reference *string         `json:"reference"`
	AccountID *string         `json:"account_id" validate:"omitempty,uuid"`
}

// CreditNoteRequest returns items of a prior sale and refunds their value.
// The refund lines must cover the computed refund total exactly.
type CreditNoteRequest struct {
	SaleID   string       `json:"sale_id"  validate:"required,uuid"`
	BranchID int          `json:"branch_id" validate:"required,min=1"`
	Items    []ReturnItem `json:"items"    validate:"required,min=1,dive"`
	Refunds  []RefundLine `json:"refunds"  validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RefundLineResponse struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	AccountID *string         `json:"account_id,omitempty"`
}

type CreditNoteItemResponse struct {
	SaleItemID string          `json:"sale_item_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type CreditNoteResponse struct {
	ID          string                   `json:"id"`
	Number      int64                    `json:"number"`
	SaleID      string                   `json:"sale_id"`
	TotalRefund decimal.Decimal          `json:"total_refund"`
	Items       []CreditNoteItemResponse `json:"items"`
	Refunds     []RefundLineResponse     `json:"refunds"`
	CreatedAt   string                   `json:"created_at"`
}
