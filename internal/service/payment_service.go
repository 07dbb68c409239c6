package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/money"
	"andespos/internal/repository"
)

type PaymentService interface {
	// RegisterPayment commits one received amount across one or more sales.
	// Per-item amounts beyond the outstanding balance are clamped silently;
	// anything received beyond the total allocation is credited to the
	// client wallet of the LAST sale in request order. All writes happen in
	// a single transaction.
	RegisterPayment(ctx context.Context, userID uuid.UUID, req dto.RegisterPaymentRequest) (*dto.RegisterPaymentResponse, error)
}

type paymentService struct {
	sales    repository.SaleRepository
	ledger   repository.LedgerRepository
	wallets  repository.WalletRepository
	cashbox  repository.CashboxRepository
	accounts repository.AccountRepository
	clients  repository.ClientRepository
	receipts ReceiptEnqueuer
	log      zerolog.Logger
}

func NewPaymentService(sales repository.SaleRepository, ledger repository.LedgerRepository, wallets repository.WalletRepository, cashbox repository.CashboxRepository, accounts repository.AccountRepository, clients repository.ClientRepository, receipts ReceiptEnqueuer, log zerolog.Logger) PaymentService {
	return &paymentService{sales: sales, ledger: ledger, wallets: wallets, cashbox: cashbox, accounts: accounts, clients: clients, receipts: receipts, log: log}
}

// saleAllocation is one sale's resolved share of the payment after clamping.
type saleAllocation struct {
	sale      *model.Sale
	items     []model.PaymentAllocation // without entry id, filled at commit
	allocated money.Cents
}

func (s *paymentService) RegisterPayment(ctx context.Context, userID uuid.UUID, req dto.RegisterPaymentRequest) (*dto.RegisterPaymentResponse, error) {
	received, err := toCents("received", req.Received)
	if err != nil {
		return nil, err
	}
	if !received.IsPositive() {
		return nil, errors.New("el monto recibido debe ser mayor a cero")
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

	allocations, totalAllocated, err := s.resolveAllocations(ctx, req)
	if err != nil {
		return nil, err
	}
	if !totalAllocated.IsPositive() {
		return nil, errors.New("el pago no asigna ningún monto a las ventas")
	}
	if received < totalAllocated {
		return nil, errors.New("el monto recibido es menor a lo asignado")
	}
	excess := received - totalAllocated

	last := allocations[len(allocations)-1]
	if excess.IsPositive() && last.sale.ClientID == nil {
		return nil, errors.New("el excedente requiere que la última venta tenga cliente registrado")
	}

	var walletClient *uuid.UUID
	if req.Method == model.MethodWallet {
		walletClient, err = s.validateWalletPayment(ctx, allocations, received, excess)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]*model.PaymentEntry, 0, len(allocations))
	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		for i, alloc := range allocations {
			isLast := i == len(allocations)-1
			amount := alloc.allocated
			entryExcess := money.Cents(0)
			if isLast {
				amount += excess
				entryExcess = excess
			}
			if !amount.IsPositive() {
				// Fully clamped and no excess to attach: nothing entered
				// through this sale
				continue
			}
			entry := &model.PaymentEntry{
				SaleID:      alloc.sale.ID,
				Method:      req.Method,
				AmountCents: amount,
				ExcessCents: entryExcess,
				Reference:   req.Reference,
				AccountID:   accID,
				UserID:      userID,
				Allocations: alloc.items,
			}
			if err := s.sales.CreatePaymentEntryTx(tx, entry); err != nil {
				return err
			}
			entries = append(entries, entry)

			if req.Method != model.MethodWallet {
				entryID := entry.ID
				mov := &model.Movement{
					BranchID:      req.BranchID,
					Type:          model.MovementIncome,
					AmountCents:   amount,
					Method:        req.Method,
					AccountID:     accID,
					Category:      "cobranza",
					FinancialType: model.FinancialVariable,
					ReferenceID:   &entryID,
					Concept:       fmt.Sprintf("Pago de venta #%d", alloc.sale.Number),
					UserID:        userID,
				}
				if err := s.ledger.CreateTx(tx, mov); err != nil {
					return err
				}
			}

			if isLast && excess.IsPositive() {
				entryID := entry.ID
				if err := s.wallets.AddTx(tx, *last.sale.ClientID, excess); err != nil {
					return err
				}
				walletEntry := &model.WalletEntry{
					ClientID:    *last.sale.ClientID,
					AmountCents: excess,
					Reason:      model.WalletReasonExcess,
					ReferenceID: &entryID,
					UserID:      userID,
				}
				if err := s.wallets.CreateEntryTx(tx, walletEntry); err != nil {
					return err
				}
			}
		}

		if req.Method == model.MethodWallet {
			if err := s.wallets.AddTx(tx, *walletClient, -received); err != nil {
				return err
			}
			var refID *uuid.UUID
			if len(entries) > 0 {
				refID = &entries[0].ID
			}
			walletEntry := &model.WalletEntry{
				ClientID:    *walletClient,
				AmountCents: -received,
				Reason:      model.WalletReasonPayment,
				ReferenceID: refID,
				UserID:      userID,
			}
			if err := s.wallets.CreateEntryTx(tx, walletEntry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("method", req.Method).
		Str("received", received.String()).
		Str("allocated", totalAllocated.String()).
		Str("excess", excess.String()).
		Int("sales", len(allocations)).
		Msg("pago registrado")

	resp := &dto.RegisterPaymentResponse{
		TotalAllocated: totalAllocated.Decimal(),
		Received:       received.Decimal(),
		Excess:         excess.Decimal(),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toPaymentEntryResponse(e))
	}

	// Report the wallet balance whenever the wallet was touched
	switch {
	case req.Method == model.MethodWallet:
		resp.WalletBalance = s.walletBalance(ctx, *walletClient)
	case excess.IsPositive():
		resp.WalletBalance = s.walletBalance(ctx, *last.sale.ClientID)
	}

	s.enqueueReceipt(ctx, last.sale, received, req.Method)
	return resp, nil
}

// enqueueReceipt mails a payment receipt when the client has an email on
// file. Fire-and-forget: the payment is already committed.
func (s *paymentService) enqueueReceipt(ctx context.Context, sale *model.Sale, received money.Cents, method string) {
	if s.receipts == nil || sale.ClientID == nil {
		return
	}
	client, err := s.clients.FindByID(ctx, *sale.ClientID)
	if err != nil || client.Email == nil {
		return
	}
	notice := ReceiptNotice{
		To:      *client.Email,
		Subject: fmt.Sprintf("Constancia de pago — venta #%d", sale.Number),
		Body: fmt.Sprintf("Hola %s,\n\nRegistramos tu pago de S/ %s (%s) aplicado a la venta #%d.\n\nGracias por tu compra.",
			client.Name, received.String(), method, sale.Number),
	}
	if err := s.receipts.EnqueueReceipt(ctx, notice); err != nil {
		s.log.Error().Err(err).Str("to", notice.To).Msg("no se pudo encolar la constancia de pago")
	}
}

// resolveAllocations loads each sale, clamps the proposed per-item amounts
// against the outstanding item balances and returns the effective
// allocations in request order.
func (s *paymentService) resolveAllocations(ctx context.Context, req dto.RegisterPaymentRequest) ([]saleAllocation, money.Cents, error) {
	seen := make(map[uuid.UUID]bool, len(req.Sales))
	out := make([]saleAllocation, 0, len(req.Sales))
	var total money.Cents

	for _, sa := range req.Sales {
		saleID, err := parseUUID("sale_id", sa.SaleID)
		if err != nil {
			return nil, 0, err
		}
		if seen[saleID] {
			return nil, 0, errors.New("venta repetida en la solicitud")
		}
		seen[saleID] = true

		sale, err := s.sales.FindByID(ctx, saleID)
		if err != nil {
			return nil, 0, errors.New("venta no encontrada")
		}
		if sale.BranchID != req.BranchID {
			return nil, 0, errors.New("la venta pertenece a otra sucursal")
		}

		// Remaining balance per item after committed allocations
		paid := sale.AllocatedByItem()
		remaining := make(map[uuid.UUID]money.Cents, len(sale.Items))
		for i := range sale.Items {
			item := &sale.Items[i]
			remaining[item.ID] = item.LineTotal() - paid[item.ID]
		}

		alloc := saleAllocation{sale: sale}
		seenItems := make(map[uuid.UUID]bool, len(sa.Items))
		for _, ia := range sa.Items {
			itemID, err := parseUUID("sale_item_id", ia.SaleItemID)
			if err != nil {
				return nil, 0, err
			}
			if seenItems[itemID] {
				return nil, 0, errors.New("artículo repetido en la asignación")
			}
			seenItems[itemID] = true
			rem, ok := remaining[itemID]
			if !ok {
				return nil, 0, errors.New("el artículo no pertenece a la venta")
			}
			proposed, err := toCents("amount", ia.Amount)
			if err != nil {
				return nil, 0, err
			}
			if !proposed.IsPositive() {
				return nil, 0, errors.New("el monto asignado debe ser mayor a cero")
			}
			// Over-allocation clamps to the item balance, silently
			effective := money.Min(proposed, rem)
			remaining[itemID] = rem - effective
			if effective.IsPositive() {
				alloc.items = append(alloc.items, model.PaymentAllocation{
					SaleItemID:  itemID,
					AmountCents: effective,
				})
				alloc.allocated += effective
			}
		}
		total += alloc.allocated
		out = append(out, alloc)
	}
	return out, total, nil
}

// validateWalletPayment checks that every sale of the batch belongs to one
// registered client and that the wallet covers the amount. Wallet payments
// cannot generate excess: crediting the overpayment back to the same wallet
// would be a no-op round trip.
func (s *paymentService) validateWalletPayment(ctx context.Context, allocations []saleAllocation, received, excess money.Cents) (*uuid.UUID, error) {
	if excess.IsPositive() {
		return nil, errors.New("el pago con billetera no puede exceder la deuda")
	}
	var client *uuid.UUID
	for _, alloc := range allocations {
		if alloc.sale.ClientID == nil {
			return nil, errors.New("el pago con billetera requiere ventas con cliente registrado")
		}
		if client != nil && *client != *alloc.sale.ClientID {
			return nil, errors.New("el pago con billetera no puede mezclar clientes")
		}
		client = alloc.sale.ClientID
	}
	wallet, err := s.wallets.FindByClient(ctx, *client)
	if err != nil {
		return nil, err
	}
	if wallet.BalanceCents < received {
		return nil, errors.New("saldo insuficiente en la billetera")
	}
	return client, nil
}

func (s *paymentService) walletBalance(ctx context.Context, clientID uuid.UUID) *decimal.Decimal {
	wallet, err := s.wallets.FindByClient(ctx, clientID)
	if err != nil {
		return nil
	}
	d := wallet.BalanceCents.Decimal()
	return &d
}

func toPaymentEntryResponse(e *model.PaymentEntry) dto.PaymentEntryResponse {
	resp := dto.PaymentEntryResponse{
		ID:          e.ID.String(),
		SaleID:      e.SaleID.String(),
		Method:      e.Method,
		Amount:      e.AmountCents.Decimal(),
		Excess:      e.ExcessCents.Decimal(),
		Allocations: make(map[string]decimal.Decimal, len(e.Allocations)),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, a := range e.Allocations {
		resp.Allocations[a.SaleItemID.String()] = a.AmountCents.Decimal()
	}
	return resp
}
