package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/repository"
)

type LedgerService interface {
	RecordMovement(ctx context.Context, userID uuid.UUID, req dto.MovementRequest) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, f dto.MovementFilter) (*dto.MovementListResponse, error)
	// Balance returns the current balance of "efectivo" (the drawer of the
	// branch) or of one bank account.
	Balance(ctx context.Context, branchID int, target string) (*dto.BalanceResponse, error)
}

type ledgerService struct {
	repo     repository.LedgerRepository
	cashbox  repository.CashboxRepository
	accounts repository.AccountRepository
	log      zerolog.Logger
}

func NewLedgerService(repo repository.LedgerRepository, cashbox repository.CashboxRepository, accounts repository.AccountRepository, log zerolog.Logger) LedgerService {
	return &ledgerService{repo: repo, cashbox: cashbox, accounts: accounts, log: log}
}

// ── RecordMovement ────────────────────────────────────────────────────────────
// Manual income/expense entry. Movements are immutable: no update or delete
// path exists, corrections are made with inverse entries.

func (s *ledgerService) RecordMovement(ctx context.Context, userID uuid.UUID, req dto.MovementRequest) (*dto.MovementResponse, error) {
	amount, err := toCents("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, errors.New("el monto debe ser mayor a cero")
	}
	if req.Method == model.MethodWallet {
		return nil, errors.New("los movimientos de billetera se registran desde las operaciones de billetera")
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

	var refID *uuid.UUID
	if req.ReferenceID != nil {
		id, err := parseUUID("reference_id", *req.ReferenceID)
		if err != nil {
			return nil, err
		}
		refID = &id
	}

	finType := req.FinancialType
	if finType == "" {
		finType = model.FinancialVariable
	}

	mov := &model.Movement{
		BranchID:      req.BranchID,
		Type:          req.Type,
		AmountCents:   amount,
		Method:        req.Method,
		AccountID:     accID,
		Category:      req.Category,
		FinancialType: finType,
		ReferenceID:   refID,
		Concept:       req.Concept,
		UserID:        userID,
	}
	if err := s.repo.Create(ctx, mov); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("movement_id", mov.ID.String()).
		Str("type", mov.Type).
		Str("amount", mov.AmountCents.String()).
		Int("branch_id", mov.BranchID).
		Msg("movimiento registrado")

	resp := toMovementResponse(mov)
	return &resp, nil
}

// ── ListMovements ─────────────────────────────────────────────────────────────

func (s *ledgerService) ListMovements(ctx context.Context, f dto.MovementFilter) (*dto.MovementListResponse, error) {
	from, to, err := resolveRange(f)
	if err != nil {
		return nil, err
	}
	if f.Type != "" && f.Type != model.MovementIncome && f.Type != model.MovementExpense {
		return nil, errors.New("tipo de movimiento no reconocido")
	}

	q := repository.MovementQuery{
		BranchID: f.BranchID,
		From:     from,
		To:       to,
		Type:     f.Type,
		Page:     f.Page,
		Limit:    f.Limit,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 200 {
		q.Limit = 50
	}
	switch {
	case f.Target == "":
	case f.Target == model.MethodCash:
		q.CashOnly = true
	default:
		id, err := parseUUID("target", f.Target)
		if err != nil {
			return nil, err
		}
		q.AccountID = &id
	}

	movs, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, len(movs))
	for i := range movs {
		out[i] = toMovementResponse(&movs[i])
	}
	return &dto.MovementListResponse{Data: out, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// ── Balance ───────────────────────────────────────────────────────────────────

func (s *ledgerService) Balance(ctx context.Context, branchID int, target string) (*dto.BalanceResponse, error) {
	if target == model.MethodCash {
		return s.cashBalance(ctx, branchID)
	}
	id, err := parseUUID("target", target)
	if err != nil {
		return nil, err
	}
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		return nil, errors.New("cuenta bancaria no encontrada")
	}
	sum, err := s.repo.SumAccount(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{Target: target, Balance: sum.Decimal()}, nil
}

// cashBalance: with an open session, the drawer holds the counted opening
// plus the cash flow since opening; otherwise it holds whatever the last
// close counted.
func (s *ledgerService) cashBalance(ctx context.Context, branchID int) (*dto.BalanceResponse, error) {
	if open, err := s.cashbox.FindOpenSessionByBranch(ctx, branchID); err == nil {
		flow, err := s.repo.SumCash(ctx, branchID, &open.OpenedAt, nil)
		if err != nil {
			return nil, err
		}
		return &dto.BalanceResponse{Target: model.MethodCash, Balance: (open.CountedOpeningCents + flow).Decimal()}, nil
	}
	last, err := s.cashbox.FindLastClosedSession(ctx, branchID)
	if err != nil {
		// No session has ever been opened for the branch
		return &dto.BalanceResponse{Target: model.MethodCash, Balance: decimal.Zero}, nil
	}
	asOf := last.ClosedAt.UTC().Format(time.RFC3339)
	counted := *last.CountedClosingCents
	return &dto.BalanceResponse{Target: model.MethodCash, Balance: counted.Decimal(), AsOf: &asOf}, nil
}

// ── Date range resolution ─────────────────────────────────────────────────────
// All filters operate at UTC day granularity: a "day" is [00:00, 24:00) UTC.

func resolveRange(f dto.MovementFilter) (*time.Time, *time.Time, error) {
	set := 0
	if f.Date != "" {
		set++
	}
	if f.Week != "" {
		set++
	}
	if f.Month != "" {
		set++
	}
	if f.From != "" || f.To != "" {
		set++
	}
	if set > 1 {
		return nil, nil, errors.New("solo se permite un filtro de fecha a la vez")
	}

	switch {
	case f.Date != "":
		day, err := parseDay("date", f.Date)
		if err != nil {
			return nil, nil, err
		}
		end := day.AddDate(0, 0, 1)
		return &day, &end, nil

	case f.Week != "":
		start, err := parseISOWeek(f.Week)
		if err != nil {
			return nil, nil, err
		}
		end := start.AddDate(0, 0, 7)
		return &start, &end, nil

	case f.Month != "":
		t, err := time.Parse("2006-01", f.Month)
		if err != nil {
			return nil, nil, errors.New("month inválido, se espera YYYY-MM")
		}
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		return &start, &end, nil

	case f.From != "" || f.To != "":
		var from, to *time.Time
		if f.From != "" {
			d, err := parseDay("from", f.From)
			if err != nil {
				return nil, nil, err
			}
			from = &d
		}
		if f.To != "" {
			d, err := parseDay("to", f.To)
			if err != nil {
				return nil, nil, err
			}
			end := d.AddDate(0, 0, 1) // "to" day is inclusive
			to = &end
		}
		if from != nil && to != nil && !from.Before(*to) {
			return nil, nil, errors.New("el rango de fechas está invertido")
		}
		return from, to, nil
	}
	return nil, nil, nil
}

func parseDay(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s inválido, se espera YYYY-MM-DD", field)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseISOWeek accepts "2026-W35" and returns the Monday of that ISO week.
func parseISOWeek(value string) (time.Time, error) {
	parts := strings.SplitN(value, "-W", 2)
	if len(parts) != 2 {
		return time.Time{}, errors.New("week inválida, se espera YYYY-Www")
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, errors.New("week inválida, se espera YYYY-Www")
	}
	week, err := strconv.Atoi(parts[1])
	if err != nil || week < 1 || week > 53 {
		return time.Time{}, errors.New("week inválida, se espera YYYY-Www")
	}
	// January 4 is always inside ISO week 1
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (week-1)*7), nil
}

func toMovementResponse(m *model.Movement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:            m.ID.String(),
		BranchID:      m.BranchID,
		Type:          m.Type,
		Amount:        m.AmountCents.Decimal(),
		Method:        m.Method,
		Category:      m.Category,
		FinancialType: m.FinancialType,
		Concept:       m.Concept,
		UserID:        m.UserID.String(),
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.AccountID != nil {
		id := m.AccountID.String()
		resp.AccountID = &id
	}
	if m.ReferenceID != nil {
		id := m.ReferenceID.String()
		resp.ReferenceID = &id
	}
	return resp
}
