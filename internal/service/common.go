package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"andespos/internal/model"
	"andespos/internal/money"
	"andespos/internal/repository"
)

// ReceiptNotice is the payload of an async payment receipt email.
type ReceiptNotice struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ReceiptEnqueuer queues receipt emails. Nil disables them.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, notice ReceiptNotice) error
}

// runTx executes fn inside a database transaction. A nil db runs fn
// directly, which lets unit tests exercise services against in-memory
// repositories.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// requireOpenSession is shared by every service that moves physical cash:
// cash operations are rejected while no session is open for the branch.
func requireOpenSession(ctx context.Context, repo repository.CashboxRepository, branchID int) (*model.CashSession, error) {
	s, err := repo.FindOpenSessionByBranch(ctx, branchID)
	if err != nil {
		return nil, errors.New("no hay una caja abierta en esta sucursal")
	}
	return s, nil
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s inválido", field)
	}
	return id, nil
}

// toCents converts an API amount, mapping the precision error to a
// field-specific message.
func toCents(field string, d decimal.Decimal) (money.Cents, error) {
	c, err := money.FromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return c, nil
}

// validateMethodTarget enforces the account and reference requirements of a
// payment method and resolves the optional account id. Cash and wallet
// methods never carry an account.
func validateMethodTarget(ctx context.Context, accounts repository.AccountRepository, method string, accountID *string, reference *string) (*uuid.UUID, error) {
	if !model.KnownMethod(method) {
		return nil, errors.New("método de pago no reconocido")
	}
	if model.MethodRequiresReference(method) && (reference == nil || *reference == "") {
		return nil, fmt.Errorf("el método %s requiere un número de operación", method)
	}
	if !model.MethodRequiresAccount(method) {
		if accountID != nil {
			return nil, fmt.Errorf("el método %s no admite cuenta bancaria", method)
		}
		return nil, nil
	}
	if accountID == nil {
		return nil, fmt.Errorf("el método %s requiere una cuenta bancaria", method)
	}
	id, err := parseUUID("account_id", *accountID)
	if err != nil {
		return nil, err
	}
	acc, err := accounts.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cuenta bancaria no encontrada")
	}
	if !acc.Active {
		return nil, errors.New("la cuenta bancaria está inactiva")
	}
	return &acc.ID, nil
}
