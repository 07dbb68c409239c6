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
	"andespos/internal/money"
	"andespos/internal/repository"
)

type SaleService interface {
	// CreateSale records the sale as a receivable. Payments are registered
	// separately through the payment endpoint so every payment follows the
	// same validation and commit path.
	CreateSale(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListReceivables(ctx context.Context, clientID *uuid.UUID, page, limit int) (*dto.ReceivableListResponse, error)
}

type saleService struct {
	repo    repository.SaleRepository
	clients repository.ClientRepository
	log     zerolog.Logger
}

func NewSaleService(repo repository.SaleRepository, clients repository.ClientRepository, log zerolog.Logger) SaleService {
	return &saleService{repo: repo, clients: clients, log: log}
}

func (s *saleService) CreateSale(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	var clientID *uuid.UUID
	if req.ClientID != nil {
		id, err := parseUUID("client_id", *req.ClientID)
		if err != nil {
			return nil, err
		}
		if _, err := s.clients.FindByID(ctx, id); err != nil {
			return nil, errors.New("cliente no encontrado")
		}
		clientID = &id
	}

	sale := &model.Sale{
		BranchID: req.BranchID,
		ClientID: clientID,
		UserID:   userID,
	}
	for _, item := range req.Items {
		price, err := toCents("unit_price", item.UnitPrice)
		if err != nil {
			return nil, err
		}
		if !price.IsPositive() {
			return nil, errors.New("el precio unitario debe ser mayor a cero")
		}
		sale.Items = append(sale.Items, model.SaleItem{
			Description:    item.Description,
			UnitPriceCents: price,
			Quantity:       item.Quantity,
		})
		sale.TotalCents += price * money.Cents(item.Quantity)
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextNumber(tx)
		if err != nil {
			return err
		}
		sale.Number = number
		return s.repo.CreateTx(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("sale", sale.Number).
		Str("total", sale.TotalCents.String()).
		Int("branch_id", sale.BranchID).
		Msg("venta registrada")

	resp := toSaleResponse(sale)
	return &resp, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	resp := toSaleResponse(sale)
	return &resp, nil
}

func (s *saleService) ListReceivables(ctx context.Context, clientID *uuid.UUID, page, limit int) (*dto.ReceivableListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sales, total, err := s.repo.ListReceivables(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReceivableListResponse{Total: total, Page: page, Limit: limit}
	for i := range sales {
		resp.Data = append(resp.Data, toSaleResponse(&sales[i]))
	}
	return resp, nil
}

func toSaleResponse(s *model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:        s.ID.String(),
		Number:    s.Number,
		BranchID:  s.BranchID,
		Total:     s.TotalCents.Decimal(),
		Balance:   s.Balance().Decimal(),
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if s.ClientID != nil {
		id := s.ClientID.String()
		resp.ClientID = &id
	}
	paid := s.AllocatedByItem()
	for i := range s.Items {
		item := &s.Items[i]
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			UnitPrice:   item.UnitPriceCents.Decimal(),
			Quantity:    item.Quantity,
			ReturnedQty: item.ReturnedQty,
			Paid:        paid[item.ID].Decimal(),
			Remaining:   (item.LineTotal() - paid[item.ID]).Decimal(),
		})
	}
	for i := range s.Payments {
		resp.Payments = append(resp.Payments, toPaymentEntryResponse(&s.Payments[i]))
	}
	return resp
}
