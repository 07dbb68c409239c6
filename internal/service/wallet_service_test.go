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

type walletEnv struct {
	clock    *fakeClock
	wallets  *fakeWalletRepo
	clients  *fakeClientRepo
	ledger   *fakeLedgerRepo
	cashbox  *fakeCashboxRepo
	accounts *fakeAccountRepo
	svc      WalletService
	userID   uuid.UUID
	clientID uuid.UUID
}

func newWalletEnv() *walletEnv {
	clock := newFakeClock()
	env := &walletEnv{
		clock:    clock,
		wallets:  newFakeWalletRepo(clock),
		clients:  newFakeClientRepo(),
		ledger:   newFakeLedgerRepo(clock),
		cashbox:  newFakeCashboxRepo(),
		accounts: newFakeAccountRepo(),
		userID:   uuid.New(),
		clientID: uuid.New(),
	}
	_ = env.clients.Create(context.Background(), &model.Client{ID: env.clientID, Name: "Rosa Quispe"})
	env.svc = NewWalletService(env.wallets, env.clients, env.ledger, env.cashbox, env.accounts, zerolog.Nop())
	return env
}

func (env *walletEnv) openSession(branch int) {
	s := &model.CashSession{
		BranchID: branch,
		UserID:   env.userID,
		Status:   model.SessionOpen,
		OpenedAt: env.clock.next(),
	}
	_ = env.cashbox.CreateSession(context.Background(), s, nil)
}

func TestWalletDepositCash(t *testing.T) {
	env := newWalletEnv()
	env.openSession(1)

	resp, err := env.svc.Deposit(context.Background(), env.userID, env.clientID, dto.WalletOperationRequest{
		BranchID: 1,
		Amount:   dec("100.00"),
		Method:   model.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "100", resp.Balance.String())

	// The cash physically entered the drawer: income movement paired
	require.Len(t, env.ledger.movements, 1)
	mov := env.ledger.movements[0]
	assert.Equal(t, model.MovementIncome, mov.Type)
	assert.Equal(t, "deposito_billetera", mov.Category)
	assert.Equal(t, "Depósito a billetera", mov.Concept)

	require.Len(t, env.wallets.entries, 1)
	assert.Equal(t, model.WalletReasonDeposit, env.wallets.entries[0].Reason)
	assert.Equal(t, money.Cents(10000), env.wallets.entries[0].AmountCents)
}

func TestWalletWithdrawCash(t *testing.T) {
	env := newWalletEnv()
	env.openSession(1)
	_ = env.wallets.AddTx(nil, env.clientID, 10000)

	resp, err := env.svc.Withdraw(context.Background(), env.userID, env.clientID, dto.WalletOperationRequest{
		BranchID: 1,
		Amount:   dec("40.00"),
		Method:   model.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "60", resp.Balance.String())

	require.Len(t, env.ledger.movements, 1)
	mov := env.ledger.movements[0]
	assert.Equal(t, model.MovementExpense, mov.Type)
	assert.Equal(t, "retiro_billetera", mov.Category)
	// Ledger amounts stay positive; the type carries the direction
	assert.Equal(t, money.Cents(4000), mov.AmountCents)

	require.Len(t, env.wallets.entries, 1)
	assert.Equal(t, model.WalletReasonWithdrawal, env.wallets.entries[0].Reason)
	assert.Equal(t, money.Cents(-4000), env.wallets.entries[0].AmountCents)
}

func TestWalletWithdrawInsufficientBalance(t *testing.T) {
	env := newWalletEnv()
	env.openSession(1)
	_ = env.wallets.AddTx(nil, env.clientID, 1000)

	_, err := env.svc.Withdraw(context.Background(), env.userID, env.clientID, dto.WalletOperationRequest{
		BranchID: 1,
		Amount:   dec("40.00"),
		Method:   model.MethodCash,
	})
	assert.ErrorContains(t, err, "saldo insuficiente")
	assert.Empty(t, env.ledger.movements)
}

func TestWalletOperationRejectsWalletMethod(t *testing.T) {
	env := newWalletEnv()

	_, err := env.svc.Deposit(context.Background(), env.userID, env.clientID, dto.WalletOperationRequest{
		BranchID: 1,
		Amount:   dec("40.00"),
		Method:   model.MethodWallet,
	})
	assert.ErrorContains(t, err, "no puede ser el medio")
}

func TestWalletCashOperationNeedsOpenSession(t *testing.T) {
	env := newWalletEnv()

	_, err := env.svc.Deposit(context.Background(), env.userID, env.clientID, dto.WalletOperationRequest{
		BranchID: 1,
		Amount:   dec("40.00"),
		Method:   model.MethodCash,
	})
	assert.ErrorContains(t, err, "no hay una caja abierta")
}

func TestWalletDepositUnknownClient(t *testing.T) {
	env := newWalletEnv()
	env.openSession(1)

	_, err := env.svc.Deposit(context.Background(), env.userID, uuid.New(), dto.WalletOperationRequest{
		BranchID: 1,
		Amount:   dec("40.00"),
		Method:   model.MethodCash,
	})
	assert.ErrorContains(t, err, "cliente no encontrado")
}

func TestWalletEntriesIncludeBalance(t *testing.T) {
	env := newWalletEnv()
	env.openSession(1)

	_, err := env.svc.Deposit(context.Background(), env.userID, env.clientID, dto.WalletOperationRequest{
		BranchID: 1, Amount: dec("100.00"), Method: model.MethodCash,
	})
	require.NoError(t, err)
	_, err = env.svc.Withdraw(context.Background(), env.userID, env.clientID, dto.WalletOperationRequest{
		BranchID: 1, Amount: dec("30.00"), Method: model.MethodCash,
	})
	require.NoError(t, err)

	resp, err := env.svc.Entries(context.Background(), env.clientID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "70", resp.Balance.String())
	assert.EqualValues(t, 2, resp.Total)
	require.Len(t, resp.Data, 2)
	// Newest first
	assert.Equal(t, model.WalletReasonWithdrawal, resp.Data[0].Reason)
	assert.Equal(t, "-30", resp.Data[0].Amount.String())
}
