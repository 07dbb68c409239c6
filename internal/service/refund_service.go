package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/money"
	"andespos/internal/repository"
)

type RefundService interface {
	// ProcessCreditNote returns items of a prior sale and pays the refund
	// out through the given lines. The lines must cover the computed refund
	// total exactly — no rounding slack, no partial coverage.
	ProcessCreditNote(ctx context.Context, userID uuid.UUID, req dto.CreditNoteRequest) (*dto.CreditNoteResponse, error)
	GetCreditNote(ctx context.Context, id uuid.UUID) (*dto.CreditNoteResponse, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]dto.CreditNoteResponse, error)
}

type refundService struct {
	notes    repository.CreditNoteRepository
	sales    repository.SaleRepository
	ledger   repository.LedgerRepository
	wallets  repository.WalletRepository
	cashbox  repository.CashboxRepository
	accounts repository.AccountRepository
	log      zerolog.Logger
}

func NewRefundService(notes repository.CreditNoteRepository, sales repository.SaleRepository, ledger repository.LedgerRepository, wallets repository.WalletRepository, cashbox repository.CashboxRepository, accounts repository.AccountRepository, log zerolog.Logger) RefundService {
	return &refundService{notes: notes, sales: sales, ledger: ledger, wallets: wallets, cashbox: cashbox, accounts: accounts, log: log}
}

// resolvedRefundLine is a refund line with amounts and targets validated.
type resolvedRefundLine struct {
	method    string
	amount    money.Cents
	reference *string
	accountID *uuid.UUID
}

func (s *refundService) ProcessCreditNote(ctx context.Context, userID uuid.UUID, req dto.CreditNoteRequest) (*dto.CreditNoteResponse, error) {
	saleID, err := parseUUID("sale_id", req.SaleID)
	if err != nil {
		return nil, err
	}
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	if sale.BranchID != req.BranchID {
		return nil, errors.New("la venta pertenece a otra sucursal")
	}

	items, total, err := resolveReturnItems(sale, req.Items)
	if err != nil {
		return nil, err
	}

	lines, err := s.resolveRefundLines(ctx, sale, req.Refunds, total)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if line.method == model.MethodCash {
			if _, err := requireOpenSession(ctx, s.cashbox, req.BranchID); err != nil {
				return nil, err
			}
			break
		}
	}

	note := &model.CreditNote{
		SaleID:           sale.ID,
		BranchID:         req.BranchID,
		TotalRefundCents: total,
		UserID:           userID,
		Items:            items,
	}
	for _, line := range lines {
		note.Refunds = append(note.Refunds, model.RefundDetail{
			Method:      line.method,
			AmountCents: line.amount,
			Reference:   line.reference,
			AccountID:   line.accountID,
		})
	}

	err = runTx(ctx, s.ledger.DB(), func(tx *gorm.DB) error {
		number, err := s.notes.NextNumber(tx)
		if err != nil {
			return err
		}
		note.Number = number
		if err := s.notes.CreateTx(tx, note); err != nil {
			return err
		}

		for _, line := range lines {
			if line.method == model.MethodWallet {
				// Refund to stored value: credit the wallet, no money
				// leaves the drawer or any account
				if err := s.wallets.AddTx(tx, *sale.ClientID, line.amount); err != nil {
					return err
				}
				noteID := note.ID
				entry := &model.WalletEntry{
					ClientID:    *sale.ClientID,
					AmountCents: line.amount,
					Reason:      model.WalletReasonRefund,
					ReferenceID: &noteID,
					UserID:      userID,
				}
				if err := s.wallets.CreateEntryTx(tx, entry); err != nil {
					return err
				}
				continue
			}
			noteID := note.ID
			mov := &model.Movement{
				BranchID:      req.BranchID,
				Type:          model.MovementExpense,
				AmountCents:   line.amount,
				Method:        line.method,
				AccountID:     line.accountID,
				Category:      "devolucion",
				FinancialType: model.FinancialVariable,
				ReferenceID:   &noteID,
				Concept:       fmt.Sprintf("Nota de crédito #%d por venta #%d", note.Number, sale.Number),
				UserID:        userID,
			}
			if err := s.ledger.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		for _, item := range note.Items {
			if err := s.sales.AddReturnedQtyTx(tx, item.SaleItemID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("credit_note", note.Number).
		Str("sale_id", sale.ID.String()).
		Str("total_refund", total.String()).
		Msg("nota de crédito emitida")

	resp := toCreditNoteResponse(note)
	return &resp, nil
}

func (s *refundService) GetCreditNote(ctx context.Context, id uuid.UUID) (*dto.CreditNoteResponse, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("nota de crédito no encontrada")
	}
	resp := toCreditNoteResponse(note)
	return &resp, nil
}

func (s *refundService) ListBySale(ctx context.Context, saleID uuid.UUID) ([]dto.CreditNoteResponse, error) {
	notes, err := s.notes.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreditNoteResponse, len(notes))
	for i := range notes {
		out[i] = toCreditNoteResponse(&notes[i])
	}
	return out, nil
}

// resolveReturnItems validates the returned quantities against what was
// sold minus what previous credit notes already returned, and prices the
// refund at the original unit price.
func resolveReturnItems(sale *model.Sale, items []dto.ReturnItem) ([]model.CreditNoteItem, money.Cents, error) {
	byID := make(map[uuid.UUID]*model.SaleItem, len(sale.Items))
	for i := range sale.Items {
		byID[sale.Items[i].ID] = &sale.Items[i]
	}

	seen := make(map[uuid.UUID]bool, len(items))
	out := make([]model.CreditNoteItem, 0, len(items))
	var total money.Cents
	for _, ri := range items {
		itemID, err := parseUUID("sale_item_id", ri.SaleItemID)
		if err != nil {
			return nil, 0, err
		}
		if seen[itemID] {
			return nil, 0, errors.New("artículo repetido en la devolución")
		}
		seen[itemID] = true
		item, ok := byID[itemID]
		if !ok {
			return nil, 0, errors.New("el artículo no pertenece a la venta")
		}
		if ri.Quantity <= 0 {
			return nil, 0, errors.New("la cantidad a devolver debe ser mayor a cero")
		}
		returnable := item.Quantity - item.ReturnedQty
		if ri.Quantity > returnable {
			return nil, 0, fmt.Errorf("solo quedan %d unidades devolvibles de %s", returnable, item.Description)
		}
		out = append(out, model.CreditNoteItem{
			SaleItemID: itemID,
			Quantity:   ri.Quantity,
			UnitPrice:  item.UnitPriceCents,
		})
		total += item.UnitPriceCents * money.Cents(ri.Quantity)
	}
	return out, total, nil
}

func (s *refundService) resolveRefundLines(ctx context.Context, sale *model.Sale, lines []dto.RefundLine, total money.Cents) ([]resolvedRefundLine, error) {
	out := make([]resolvedRefundLine, 0, len(lines))
	var sum money.Cents
	for _, line := range lines {
		amount, err := toCents("amount", line.Amount)
		if err != nil {
			return nil, err
		}
		if !amount.IsPositive() {
			return nil, errors.New("el monto de devolución debe ser mayor a cero")
		}
		if line.Method == model.MethodWallet && sale.ClientID == nil {
			return nil, errors.New("la devolución a billetera requiere una venta con cliente registrado")
		}
		accID, err := validateMethodTarget(ctx, s.accounts, line.Method, line.AccountID, line.Reference)
		if err != nil {
			return nil, err
		}
		out = append(out, resolvedRefundLine{
			method:    line.Method,
			amount:    amount,
			reference: line.Reference,
			accountID: accID,
		})
		sum += amount
	}
	if sum != total {
		return nil, fmt.Errorf("las líneas de devolución suman %s pero el total a devolver es %s", sum.String(), total.String())
	}
	return out, nil
}

func toCreditNoteResponse(n *model.CreditNote) dto.CreditNoteResponse {
	resp := dto.CreditNoteResponse{
		ID:          n.ID.String(),
		Number:      n.Number,
		SaleID:      n.SaleID.String(),
		TotalRefund: n.TotalRefundCents.Decimal(),
		CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, item := range n.Items {
		resp.Items = append(resp.Items, dto.CreditNoteItemResponse{
			SaleItemID: item.SaleItemID.String(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.Decimal(),
		})
	}
	for _, r := range n.Refunds {
		line := dto.RefundLineResponse{
			Method:    r.Method,
			Amount:    r.AmountCents.Decimal(),
			Reference: r.Reference,
		}
		if r.AccountID != nil {
			id := r.AccountID.String()
			line.AccountID = &id
		}
		resp.Refunds = append(resp.Refunds, line)
	}
	return resp
}
