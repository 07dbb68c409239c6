package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	Description string          `json:"description" validate:"required,min=2"`
	UnitPrice   decimal.Decimal `json:"unit_price"  validate:"required"`
	Quantity    int             `json:"quantity"    validate:"required,gt=0"`
}

// CreateSaleRequest creates a sale as a receivable. Payments are registered
// separately through the allocation engine so that every payment follows
// the same validation and commit path.
type CreateSaleRequest struct {
	BranchID int               `json:"branch_id" validate:"required,min=1"`
	ClientID *string           `json:"client_id" validate:"omitempty,uuid"`
	Items    []SaleItemRequest `json:"items"     validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	ReturnedQty int             `json:"returned_qty"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
}

type SaleResponse struct {
	ID        string                 `json:"id"`
	Number    int64                  `json:"number"`
	BranchID  int                    `json:"branch_id"`
	ClientID  *string                `json:"client_id,omitempty"`
	Total     decimal.Decimal        `json:"total"`
	Balance   decimal.Decimal        `json:"balance"`
	Items     []SaleItemResponse     `json:"items"`
	Payments  []PaymentEntryResponse `json:"payments"`
	CreatedAt string                 `json:"created_at"`
}

type ReceivableListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
