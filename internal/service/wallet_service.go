package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"
)

type WalletService interface {
	// Deposit adds money to a client wallet; the money physically enters
	// the drawer or an account, so an income movement is paired with it.
	Deposit(ctx context.Context, userID, clientID uuid.UUID, req dto.WalletOperationRequest) (*dto.WalletResponse, error)
	// Withdraw pays stored value back out. The balance never goes negative.
	Withdraw(ctx context.Context, userID, clientID uuid.UUID, req dto.WalletOperationRequest) (*dto.WalletResponse, error)
	Get(ctx context.Context, clientID uuid.UUID) (*dto.WalletResponse, error)
	Entries(ctx context.Context, clientID uuid.UUID, page, limit int) (*dto.WalletEntryListResponse, error)
}

type walletService struct {
	wallets  repository.WalletRepository
	clients  repository.ClientRepository
	ledger   repository.LedgerRepository
	cashbox  repository.CashboxRepository
	accounts repository.AccountRepository
	log      zerolog.Logger
}

func NewWalletService(wallets repository.WalletRepository, clients repository.ClientRepository, ledger repository.LedgerRepository, cashbox repository.CashboxRepository, accounts repository.AccountRepository, log zerolog.Logger) WalletService {
	return &walletService{wallets: wallets, clients: clients, ledger: ledger, cashbox: cashbox, accounts: accounts, log: log}
}

func (s *walletService) Deposit(ctx context.Context, userID, clientID uuid.UUID, req dto.WalletOperationRequest) (*dto.WalletResponse, error) {
	return s.operate(ctx, userID, clientID, req, true)
}

func (s *walletService) Withdraw(ctx context.Context, userID, clientID uuid.UUID, req dto.WalletOperationRequest) (*dto.WalletResponse, error) {
	return s.operate(ctx, userID, clientID, req, false)
}

func (s *walletService) operate(ctx context.Context, userID, clientID uuid.UUID, req dto.WalletOperationRequest, deposit bool) (*dto.WalletResponse, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	amount, err := toCents("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, errors.New("el monto debe ser mayor a cero")
	}
	if req.Method == model.MethodWallet {
		return nil, errors.New("la billetera no puede ser el medio de la operación")
	}
	accID, err := validateMethodTarget(ctx, s.accounts, req.Method, req.AccountID, req.Reference)
	if err != nil {
		return nil, err
	}
	if req.Method == model.MethodCash {
		if _, err := requireOpenSession(ctx, s.cashbox, req.BranchID); err != nil {
			return nil, err
		}
	}

	wallet, err := s.wallets.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !deposit && wallet.BalanceCents < amount {
		return nil, errors.New("saldo insuficiente en la billetera")
	}

	delta := amount
	movType := model.MovementIncome
	reason := model.WalletReasonDeposit
	category := "deposito_billetera"
	concept := req.Concept
	if concept == "" {
		concept = "Depósito a billetera"
	}
	if !deposit {
		delta = -amount
		movType = model.MovementExpense
		reason = model.WalletReasonWithdrawal
		category = "retiro_billetera"
		if req.Concept == "" {
			concept = "Retiro de billetera"
		}
	}

	err = runTx(ctx, s.ledger.DB(), func(tx *gorm.DB) error {
		if err := s.wallets.AddTx(tx, clientID, delta); err != nil {
			return err
		}
		entry := &model.WalletEntry{
			ClientID:    clientID,
			AmountCents: delta,
			Reason:      reason,
			UserID:      userID,
		}
		if err := s.wallets.CreateEntryTx(tx, entry); err != nil {
			return err
		}
		entryID := entry.ID
		mov := &model.Movement{
			BranchID:      req.BranchID,
			Type:          movType,
			AmountCents:   amount,
			Method:        req.Method,
			AccountID:     accID,
			Category:      category,
			FinancialType: model.FinancialVariable,
			ReferenceID:   &entryID,
			Concept:       concept,
			UserID:        userID,
		}
		return s.ledger.CreateTx(tx, mov)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("client_id", clientID.String()).
		Str("reason", reason).
		Str("amount", amount.String()).
		Msg("operación de billetera")

	return s.Get(ctx, clientID)
}

func (s *walletService) Get(ctx context.Context, clientID uuid.UUID) (*dto.WalletResponse, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	wallet, err := s.wallets.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &dto.WalletResponse{
		ClientID: clientID.String(),
		Balance:  wallet.BalanceCents.Decimal(),
	}, nil
}

func (s *walletService) Entries(ctx context.Context, clientID uuid.UUID, page, limit int) (*dto.WalletEntryListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	wallet, err := s.wallets.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	entries, total, err := s.wallets.ListEntries(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.WalletEntryListResponse{
		ClientID: clientID.String(),
		Balance:  wallet.BalanceCents.Decimal(),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for _, e := range entries {
		item := dto.WalletEntryResponse{
			ID:        e.ID.String(),
			Amount:    e.AmountCents.Decimal(),
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if e.ReferenceID != nil {
			id := e.ReferenceID.String()
			item.ReferenceID = &id
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}
