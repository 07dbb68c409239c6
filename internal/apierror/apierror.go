// Package apierror defines the error envelopes returned to API clients.
// Internal details (stack traces, SQL errors) never reach a response body;
// services produce user-facing messages and handlers wrap them here.
package apierror

import "github.com/shopspring/decimal"

// APIError is the envelope for every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func (e *APIError) Error() string { return e.Detail }

// ValidationError carries per-field binding/validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}

// Discrepancy is one expected-vs-counted difference surfaced when opening
// or closing the cash box. Target is "efectivo" or a bank account id.
type Discrepancy struct {
	Target     string          `json:"target"`
	Expected   decimal.Decimal `json:"expected"`
	Counted    decimal.Decimal `json:"counted"`
	Difference decimal.Decimal `json:"difference"`
}

// DiscrepancyError is returned with HTTP 409: the operation is not applied
// until the operator repeats it with accept_discrepancies=true.
type DiscrepancyError struct {
	Detail        string        `json:"detail"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

func NewDiscrepancies(list []Discrepancy) *DiscrepancyError {
	return &DiscrepancyError{
		Detail:        "Los montos contados no coinciden con los esperados",
		Discrepancies: list,
	}
}

func (e *DiscrepancyError) Error() string { return e.Detail }
