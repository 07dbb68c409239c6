package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"
)

// CatalogService manages the small reference catalogs: bank accounts and
// registered clients.
type CatalogService interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*dto.AccountResponse, error)
	ListAccounts(ctx context.Context) ([]dto.AccountResponse, error)
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	ListClients(ctx context.Context, page, limit int) ([]dto.ClientResponse, int64, error)
}

type catalogService struct {
	accounts repository.AccountRepository
	clients  repository.ClientRepository
}

func NewCatalogService(accounts repository.AccountRepository, clients repository.ClientRepository) CatalogService {
	return &catalogService{accounts: accounts, clients: clients}
}

func (s *catalogService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	account := &model.BankAccount{
		Name:   req.Name,
		Bank:   req.Bank,
		Number: req.Number,
		Active: true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, errors.New("no se pudo crear la cuenta, el nombre podría estar en uso")
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

func (s *catalogService) ListAccounts(ctx context.Context) ([]dto.AccountResponse, error) {
	accounts, err := s.accounts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = toAccountResponse(&accounts[i])
	}
	return out, nil
}

func (s *catalogService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	client := &model.Client{
		Name:     req.Name,
		Document: req.Document,
		Phone:    req.Phone,
		Email:    req.Email,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, errors.New("no se pudo crear el cliente, el documento podría estar registrado")
	}
	resp := toClientResponse(client)
	return &resp, nil
}

func (s *catalogService) GetClient(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	resp := toClientResponse(client)
	return &resp, nil
}

func (s *catalogService) ListClients(ctx context.Context, page, limit int) ([]dto.ClientResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	clients, total, err := s.clients.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ClientResponse, len(clients))
	for i := range clients {
		out[i] = toClientResponse(&clients[i])
	}
	return out, total, nil
}

func toAccountResponse(a *model.BankAccount) dto.AccountResponse {
	return dto.AccountResponse{
		ID:     a.ID.String(),
		Name:   a.Name,
		Bank:   a.Bank,
		Number: a.Number,
		Active: a.Active,
	}
}

func toClientResponse(c *model.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		Document: c.Document,
		Phone:    c.Phone,
		Email:    c.Email,
	}
}
