package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// DenominationCount is one line of the physical drawer count:
// Value is the bill/coin face value (e.g. 0.50, 20.00), Count how many.
type DenominationCount struct {
	Value decimal.Decimal `json:"value" validate:"required"`
	Count int             `json:"count" validate:"min=0"`
}

// BankBalanceConfirmation is the operator's manually confirmed balance of
// one linked bank account at open/close time.
type BankBalanceConfirmation struct {
	AccountID string          `json:"account_id" validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" validate:"min=0"`
}

type OpenCashboxRequest struct {
	BranchID      int                       `json:"branch_id"     validate:"required,min=1"`
	Denominations []DenominationCount       `json:"denominations" validate:"required,min=1,dive"`
	BankBalances  []BankBalanceConfirmation `json:"bank_balances" validate:"dive"`
	Notes         *string                   `json:"notes"`
	// AcceptDiscrepancies is the operator's explicit override after a first
	// attempt returned the discrepancy list
	AcceptDiscrepancies bool `json:"accept_discrepancies"`
}

type CloseCashboxRequest struct {
	SessionID           string                    `json:"session_id"    validate:"required,uuid"`
	Denominations       []DenominationCount       `json:"denominations" validate:"required,min=1,dive"`
	BankBalances        []BankBalanceConfirmation `json:"bank_balances" validate:"dive"`
	Notes               *string                   `json:"notes"`
	AcceptDiscrepancies bool                      `json:"accept_discrepancies"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionBankBalanceResponse struct {
	AccountID string          `json:"account_id"`
	Phase     string          `json:"phase"`
	Confirmed decimal.Decimal `json:"confirmed"`
	Expected  decimal.Decimal `json:"expected"`
}

type SessionResponse struct {
	ID              string                       `json:"id"`
	BranchID        int                          `json:"branch_id"`
	Status          string                       `json:"status"`
	CountedOpening  decimal.Decimal              `json:"counted_opening"`
	CountedClosing  *decimal.Decimal             `json:"counted_closing,omitempty"`
	ExpectedClosing *decimal.Decimal             `json:"expected_closing,omitempty"`
	Variance        *decimal.Decimal             `json:"variance,omitempty"`
	OverrideUsed    bool                         `json:"override_used"`
	OpeningNotes    *string                      `json:"opening_notes,omitempty"`
	ClosingNotes    *string                      `json:"closing_notes,omitempty"`
	BankBalances    []SessionBankBalanceResponse `json:"bank_balances,omitempty"`
	OpenedAt        string                       `json:"opened_at"`
	ClosedAt        *string                      `json:"closed_at,omitempty"`
}

// RunningBalanceEntry is one ledger movement since session open, annotated
// with the per-target accumulated balance after applying it.
type RunningBalanceEntry struct {
	MovementID  string          `json:"movement_id"`
	Type        string          `json:"type"`
	Method      string          `json:"method"`
	Target      string          `json:"target"` // "efectivo" or account id
	Concept     string          `json:"concept"`
	Amount      decimal.Decimal `json:"amount"`
	Accumulated decimal.Decimal `json:"accumulated"`
	CreatedAt   string          `json:"created_at"`
}
