package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/money"
)

type paymentEnv struct {
	clock    *fakeClock
	sales    *fakeSaleRepo
	ledger   *fakeLedgerRepo
	wallets  *fakeWalletRepo
	cashbox  *fakeCashboxRepo
	accounts *fakeAccountRepo
	clients  *fakeClientRepo
	svc      PaymentService
	userID   uuid.UUID
}

func newPaymentEnv() *paymentEnv {
	clock := newFakeClock()
	env := &paymentEnv{
		clock:    clock,
		sales:    newFakeSaleRepo(clock),
		ledger:   newFakeLedgerRepo(clock),
		wallets:  newFakeWalletRepo(clock),
		cashbox:  newFakeCashboxRepo(),
		accounts: newFakeAccountRepo(),
		clients:  newFakeClientRepo(),
		userID:   uuid.New(),
	}
	env.svc = NewPaymentService(env.sales, env.ledger, env.wallets, env.cashbox, env.accounts, env.clients, nil, zerolog.Nop())
	return env
}

func (env *paymentEnv) openSession(branch int, opening money.Cents) {
	s := &model.CashSession{
		BranchID:            branch,
		UserID:              env.userID,
		CountedOpeningCents: opening,
		Status:              model.SessionOpen,
		OpenedAt:            env.clock.next(),
	}
	_ = env.cashbox.CreateSession(context.Background(), s, nil)
}

// seedSale creates a sale whose items are (description, unit price, qty)
// triples and returns it with item IDs assigned.
func (env *paymentEnv) seedSale(branch int, clientID *uuid.UUID, items ...model.SaleItem) *model.Sale {
	number, _ := env.sales.NextNumber(nil)
	sale := &model.Sale{
		Number:   number,
		BranchID: branch,
		ClientID: clientID,
		UserID:   env.userID,
		Items:    items,
	}
	for _, it := range items {
		sale.TotalCents += it.UnitPriceCents * money.Cents(it.Quantity)
	}
	_ = env.sales.CreateTx(nil, sale)
	return sale
}

func TestRegisterPaymentClampsAndRoutesExcess(t *testing.T) {
	env := newPaymentEnv()
	env.openSession(1, 10000)
	clientID := uuid.New()
	_ = env.clients.Create(context.Background(), &model.Client{ID: clientID, Name: "Rosa Quispe"})

	sale := env.seedSale(1, &clientID,
		model.SaleItem{Description: "Polo", UnitPriceCents: 10000, Quantity: 1},
		model.SaleItem{Description: "Gorra", UnitPriceCents: 5000, Quantity: 1},
	)

	// Propose 100 + 60: the second item only owes 50, so 60 clamps silently.
	// 200 received − 150 allocated = 50 excess to the client wallet.
	resp, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("200.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items: []dto.ItemAllocation{
				{SaleItemID: sale.Items[0].ID.String(), Amount: dec("100.00")},
				{SaleItemID: sale.Items[1].ID.String(), Amount: dec("60.00")},
			},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "150", resp.TotalAllocated.String())
	assert.Equal(t, "50", resp.Excess.String())
	require.Len(t, resp.Entries, 1)
	entry := resp.Entries[0]
	assert.Equal(t, "200", entry.Amount.String())
	assert.Equal(t, "50", entry.Excess.String())
	assert.Equal(t, "50", entry.Allocations[sale.Items[1].ID.String()].String())

	// The drawer received the full 200, so the cash movement says 200
	require.Len(t, env.ledger.movements, 1)
	assert.Equal(t, money.Cents(20000), env.ledger.movements[0].AmountCents)
	assert.Equal(t, model.MovementIncome, env.ledger.movements[0].Type)
	assert.Equal(t, "cobranza", env.ledger.movements[0].Category)

	// Excess landed in the wallet with its audit entry
	assert.Equal(t, money.Cents(5000), env.wallets.balances[clientID])
	require.Len(t, env.wallets.entries, 1)
	assert.Equal(t, model.WalletReasonExcess, env.wallets.entries[0].Reason)
	require.NotNil(t, resp.WalletBalance)
	assert.Equal(t, "50", resp.WalletBalance.String())

	// Invariant: Σ allocations == amount − excess, and the sale is settled
	assert.Equal(t, money.Cents(0), sale.Balance())
}

func TestRegisterPaymentExcessGoesToLastSale(t *testing.T) {
	env := newPaymentEnv()
	env.openSession(1, 0)
	clientID := uuid.New()
	_ = env.clients.Create(context.Background(), &model.Client{ID: clientID, Name: "Luis Mamani"})

	anon := env.seedSale(1, nil, model.SaleItem{Description: "Casaca", UnitPriceCents: 10000, Quantity: 1})
	withClient := env.seedSale(1, &clientID, model.SaleItem{Description: "Chompa", UnitPriceCents: 5000, Quantity: 1})

	resp, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("140.00"),
		Sales: []dto.SaleAllocation{
			{SaleID: anon.ID.String(), Items: []dto.ItemAllocation{
				{SaleItemID: anon.Items[0].ID.String(), Amount: dec("100.00")},
			}},
			{SaleID: withClient.ID.String(), Items: []dto.ItemAllocation{
				{SaleItemID: withClient.Items[0].ID.String(), Amount: dec("30.00")},
			}},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "100", resp.Entries[0].Amount.String())
	assert.Equal(t, "0", resp.Entries[0].Excess.String())
	// Last entry carries the excess on top of its allocation
	assert.Equal(t, "40", resp.Entries[1].Amount.String())
	assert.Equal(t, "10", resp.Entries[1].Excess.String())

	// One income movement per entry; cash totals match the drawer
	require.Len(t, env.ledger.movements, 2)
	assert.Equal(t, money.Cents(10000), env.ledger.movements[0].AmountCents)
	assert.Equal(t, money.Cents(4000), env.ledger.movements[1].AmountCents)

	assert.Equal(t, money.Cents(1000), env.wallets.balances[clientID])
}

func TestRegisterPaymentExcessRequiresClientOnLastSale(t *testing.T) {
	env := newPaymentEnv()
	env.openSession(1, 0)
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 1})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("60.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}},
		}},
	})
	assert.ErrorContains(t, err, "cliente registrado")
	assert.Empty(t, env.ledger.movements)
}

func TestRegisterPaymentReceivedBelowAllocation(t *testing.T) {
	env := newPaymentEnv()
	env.openSession(1, 0)
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 2})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("80.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("100.00")}},
		}},
	})
	assert.ErrorContains(t, err, "menor a lo asignado")
}

func TestRegisterPaymentFullyClampedIsRejected(t *testing.T) {
	env := newPaymentEnv()
	env.openSession(1, 0)
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 1})

	// First payment settles the sale
	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("50.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}},
		}},
	})
	require.NoError(t, err)

	// Second attempt clamps everything to zero: nothing to commit
	_, err = env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("50.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}},
		}},
	})
	assert.ErrorContains(t, err, "no asigna ningún monto")
}

func TestRegisterPaymentCashRequiresOpenSession(t *testing.T) {
	env := newPaymentEnv()
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 1})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("50.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}},
		}},
	})
	assert.ErrorContains(t, err, "no hay una caja abierta")
}

func TestRegisterPaymentDuplicateSaleRejected(t *testing.T) {
	env := newPaymentEnv()
	env.openSession(1, 0)
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 2})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("100.00"),
		Sales: []dto.SaleAllocation{
			{SaleID: sale.ID.String(), Items: []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}}},
			{SaleID: sale.ID.String(), Items: []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}}},
		},
	})
	assert.ErrorContains(t, err, "venta repetida")
}

func TestRegisterPaymentYapeRecordsAccount(t *testing.T) {
	env := newPaymentEnv()
	account := &model.BankAccount{ID: uuid.New(), Name: "BCP Soles", Bank: "BCP", Active: true}
	_ = env.accounts.Create(context.Background(), account)
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 1})

	ref := "OP-778812"
	accID := account.ID.String()
	resp, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID:  1,
		Method:    model.MethodYape,
		Received:  dec("50.00"),
		Reference: &ref,
		AccountID: &accID,
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "50", resp.TotalAllocated.String())

	require.Len(t, env.ledger.movements, 1)
	require.NotNil(t, env.ledger.movements[0].AccountID)
	assert.Equal(t, account.ID, *env.ledger.movements[0].AccountID)
}

func TestRegisterPaymentYapeRequiresReference(t *testing.T) {
	env := newPaymentEnv()
	account := &model.BankAccount{ID: uuid.New(), Name: "BCP Soles", Bank: "BCP", Active: true}
	_ = env.accounts.Create(context.Background(), account)
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 1})

	accID := account.ID.String()
	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID:  1,
		Method:    model.MethodYape,
		Received:  dec("50.00"),
		AccountID: &accID,
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}},
		}},
	})
	assert.ErrorContains(t, err, "número de operación")
}

func TestRegisterPaymentWalletDebitsBalance(t *testing.T) {
	env := newPaymentEnv()
	clientID := uuid.New()
	_ = env.clients.Create(context.Background(), &model.Client{ID: clientID, Name: "Rosa Quispe"})
	_ = env.wallets.AddTx(nil, clientID, 10000)

	sale := env.seedSale(1, &clientID, model.SaleItem{Description: "Polo", UnitPriceCents: 8000, Quantity: 1})

	resp, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodWallet,
		Received: dec("80.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("80.00")}},
		}},
	})
	require.NoError(t, err)

	// No money crossed the drawer or a bank account
	assert.Empty(t, env.ledger.movements)
	assert.Equal(t, money.Cents(2000), env.wallets.balances[clientID])
	require.NotNil(t, resp.WalletBalance)
	assert.Equal(t, "20", resp.WalletBalance.String())

	require.Len(t, env.wallets.entries, 1)
	assert.Equal(t, model.WalletReasonPayment, env.wallets.entries[0].Reason)
	assert.Equal(t, money.Cents(-8000), env.wallets.entries[0].AmountCents)
}

func TestRegisterPaymentWalletRejectsExcess(t *testing.T) {
	env := newPaymentEnv()
	clientID := uuid.New()
	_ = env.clients.Create(context.Background(), &model.Client{ID: clientID, Name: "Rosa Quispe"})
	_ = env.wallets.AddTx(nil, clientID, 20000)
	sale := env.seedSale(1, &clientID, model.SaleItem{Description: "Polo", UnitPriceCents: 8000, Quantity: 1})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodWallet,
		Received: dec("100.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("80.00")}},
		}},
	})
	assert.ErrorContains(t, err, "no puede exceder la deuda")
}

func TestRegisterPaymentWalletInsufficientBalance(t *testing.T) {
	env := newPaymentEnv()
	clientID := uuid.New()
	_ = env.clients.Create(context.Background(), &model.Client{ID: clientID, Name: "Rosa Quispe"})
	_ = env.wallets.AddTx(nil, clientID, 1000)
	sale := env.seedSale(1, &clientID, model.SaleItem{Description: "Polo", UnitPriceCents: 8000, Quantity: 1})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodWallet,
		Received: dec("80.00"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("80.00")}},
		}},
	})
	assert.ErrorContains(t, err, "saldo insuficiente")
}

func TestRegisterPaymentWalletCannotMixClients(t *testing.T) {
	env := newPaymentEnv()
	clientA, clientB := uuid.New(), uuid.New()
	_ = env.clients.Create(context.Background(), &model.Client{ID: clientA, Name: "Rosa"})
	_ = env.clients.Create(context.Background(), &model.Client{ID: clientB, Name: "Luis"})
	_ = env.wallets.AddTx(nil, clientA, 50000)

	saleA := env.seedSale(1, &clientA, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 1})
	saleB := env.seedSale(1, &clientB, model.SaleItem{Description: "Gorra", UnitPriceCents: 3000, Quantity: 1})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodWallet,
		Received: dec("80.00"),
		Sales: []dto.SaleAllocation{
			{SaleID: saleA.ID.String(), Items: []dto.ItemAllocation{{SaleItemID: saleA.Items[0].ID.String(), Amount: dec("50.00")}}},
			{SaleID: saleB.ID.String(), Items: []dto.ItemAllocation{{SaleItemID: saleB.Items[0].ID.String(), Amount: dec("30.00")}}},
		},
	})
	assert.ErrorContains(t, err, "mezclar clientes")
}

func TestRegisterPaymentRejectsSubCentAmount(t *testing.T) {
	env := newPaymentEnv()
	env.openSession(1, 0)
	sale := env.seedSale(1, nil, model.SaleItem{Description: "Polo", UnitPriceCents: 5000, Quantity: 1})

	_, err := env.svc.RegisterPayment(context.Background(), env.userID, dto.RegisterPaymentRequest{
		BranchID: 1,
		Method:   model.MethodCash,
		Received: dec("50.005"),
		Sales: []dto.SaleAllocation{{
			SaleID: sale.ID.String(),
			Items:  []dto.ItemAllocation{{SaleItemID: sale.Items[0].ID.String(), Amount: dec("50.00")}},
		}},
	})
	assert.ErrorContains(t, err, "dos decimales")
}
