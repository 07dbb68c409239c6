package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovementRequest struct {
	BranchID      int             `json:"branch_id"      validate:"required,min=1"`
	Type          string          `json:"type"           validate:"required,oneof=ingreso egreso"`
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	Method        string          `json:"method"         validate:"required"`
	AccountID     *string         `json:"account_id"     validate:"omitempty,uuid"`
	Category      string          `json:"category"       validate:"required,min=3"`
	FinancialType string          `json:"financial_type" validate:"omitempty,oneof=fijo variable"`
	Concept       string          `json:"concept"        validate:"required,min=3"`
	Reference     *string         `json:"reference"`
	ReferenceID   *string         `json:"reference_id"   validate:"omitempty,uuid"`
}

// MovementFilter narrows the ledger listing. At most one of Date / Week /
// Month / From+To may be set; all bounds are resolved at UTC day
// granularity.
type MovementFilter struct {
	BranchID int    `form:"branch_id" validate:"required,min=1"`
	Date     string `form:"date"`  // YYYY-MM-DD
	Week     string `form:"week"`  // ISO week, YYYY-Www
	Month    string `form:"month"` // YYYY-MM
	From     string `form:"from"`  // YYYY-MM-DD inclusive
	To       string `form:"to"`    // YYYY-MM-DD inclusive
	Type     string `form:"type"`  // ingreso | egreso
	Target   string `form:"target"` // "efectivo" or bank account id
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementResponse struct {
	ID            string          `json:"id"`
	BranchID      int             `json:"branch_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	AccountID     *string         `json:"account_id,omitempty"`
	Category      string          `json:"category"`
	FinancialType string          `json:"financial_type"`
	Concept       string          `json:"concept"`
	ReferenceID   *string         `json:"reference_id,omitempty"`
	UserID        string          `json:"user_id"`
	CreatedAt     string          `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type BalanceResponse struct {
	Target  string          `json:"target"`
	Balance decimal.Decimal `json:"balance"`
	AsOf    *string         `json:"as_of,omitempty"`
}
