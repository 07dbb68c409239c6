package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"andespos/internal/apierror"
	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/money"
	"andespos/internal/repository"
)

// ReportEnqueuer queues the close-of-session report job. A nil enqueuer
// disables reporting (unit tests, minimal deployments).
type ReportEnqueuer interface {
	EnqueueSessionReport(ctx context.Context, sessionID uuid.UUID) error
}

type CashboxService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenCashboxRequest) (*dto.SessionResponse, error)
	Close(ctx context.Context, userID uuid.UUID, req dto.CloseCashboxRequest) (*dto.SessionResponse, error)
	Active(ctx context.Context, branchID int) (*dto.SessionResponse, error)
	Session(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error)
	History(ctx context.Context, branchID, page, limit int) ([]dto.SessionResponse, int64, error)
	// RunningBalances replays the ledger since session open, annotating
	// each movement with the per-target accumulated balance.
	RunningBalances(ctx context.Context, sessionID uuid.UUID) ([]dto.RunningBalanceEntry, error)
}

type cashboxService struct {
	repo     repository.CashboxRepository
	ledger   repository.LedgerRepository
	accounts repository.AccountRepository
	reports  ReportEnqueuer
	log      zerolog.Logger
}

func NewCashboxService(repo repository.CashboxRepository, ledger repository.LedgerRepository, accounts repository.AccountRepository, reports ReportEnqueuer, log zerolog.Logger) CashboxService {
	return &cashboxService{repo: repo, ledger: ledger, accounts: accounts, reports: reports, log: log}
}

// ── Open ──────────────────────────────────────────────────────────────────────
// The counted cash is checked against the previous close; bank balances
// against the ledger, and every active account must be confirmed. Any
// difference comes back as a 409 discrepancy list
// and nothing is persisted until the operator repeats the call with
// accept_discrepancies=true.

func (s *cashboxService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenCashboxRequest) (*dto.SessionResponse, error) {
	if _, err := s.repo.FindOpenSessionByBranch(ctx, req.BranchID); err == nil {
		return nil, errors.New("ya existe una caja abierta en esta sucursal")
	}

	counted, err := countDenominations(req.Denominations)
	if err != nil {
		return nil, err
	}

	var discrepancies []apierror.Discrepancy

	// The first session of a branch has no expectation for cash
	if last, err := s.repo.FindLastClosedSession(ctx, req.BranchID); err == nil {
		expected := *last.CountedClosingCents
		if counted != expected {
			discrepancies = append(discrepancies, cashDiscrepancy(expected, counted))
		}
	}

	balances, bankDiscrepancies, err := s.confirmBankBalances(ctx, req.BankBalances, model.PhaseOpening, nil)
	if err != nil {
		return nil, err
	}
	discrepancies = append(discrepancies, bankDiscrepancies...)

	if len(discrepancies) > 0 && !req.AcceptDiscrepancies {
		return nil, apierror.NewDiscrepancies(discrepancies)
	}

	session := &model.CashSession{
		BranchID:            req.BranchID,
		UserID:              userID,
		CountedOpeningCents: counted,
		Status:              model.SessionOpen,
		OpeningNotes:        req.Notes,
		OverrideAccepted:    len(discrepancies) > 0,
		OpenedAt:            time.Now().UTC(),
	}
	if err := s.repo.CreateSession(ctx, session, balances); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("branch_id", session.BranchID).
		Str("counted_opening", counted.String()).
		Bool("override", session.OverrideAccepted).
		Msg("caja abierta")

	session.BankBalances = balances
	resp := toSessionResponse(session)
	return &resp, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Expected closing cash = counted opening + Σ cash movements during the
// session. The variance is persisted even when overridden, so shortages
// stay visible in history.

func (s *cashboxService) Close(ctx context.Context, userID uuid.UUID, req dto.CloseCashboxRequest) (*dto.SessionResponse, error) {
	sessionID, err := parseUUID("session_id", req.SessionID)
	if err != nil {
		return nil, err
	}
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, errors.New("sesión de caja no encontrada")
	}
	if session.Status != model.SessionOpen {
		return nil, errors.New("la sesión ya está cerrada")
	}
	if session.UserID != userID {
		return nil, errors.New("solo el usuario que abrió la caja puede cerrarla")
	}

	counted, err := countDenominations(req.Denominations)
	if err != nil {
		return nil, err
	}

	flow, err := s.ledger.SumCash(ctx, session.BranchID, &session.OpenedAt, nil)
	if err != nil {
		return nil, err
	}
	expected := session.CountedOpeningCents + flow
	variance := counted - expected

	var discrepancies []apierror.Discrepancy
	if variance != 0 {
		discrepancies = append(discrepancies, cashDiscrepancy(expected, counted))
	}

	now := time.Now().UTC()
	balances, bankDiscrepancies, err := s.confirmBankBalances(ctx, req.BankBalances, model.PhaseClosing, &now)
	if err != nil {
		return nil, err
	}
	discrepancies = append(discrepancies, bankDiscrepancies...)

	if len(discrepancies) > 0 && !req.AcceptDiscrepancies {
		return nil, apierror.NewDiscrepancies(discrepancies)
	}

	session.CountedClosingCents = &counted
	session.ExpectedClosingCents = &expected
	session.VarianceCents = &variance
	session.Status = model.SessionClosed
	session.ClosingNotes = req.Notes
	session.OverrideAccepted = session.OverrideAccepted || len(discrepancies) > 0
	session.ClosedAt = &now

	if err := s.repo.CloseSession(ctx, session, balances); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("expected", expected.String()).
		Str("counted", counted.String()).
		Str("variance", variance.String()).
		Msg("caja cerrada")

	if s.reports != nil {
		if err := s.reports.EnqueueSessionReport(ctx, session.ID); err != nil {
			// Closing succeeded; the report can be regenerated later
			s.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("no se pudo encolar el reporte de cierre")
		}
	}

	session.BankBalances = append(session.BankBalances, balances...)
	resp := toSessionResponse(session)
	return &resp, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *cashboxService) Active(ctx context.Context, branchID int) (*dto.SessionResponse, error) {
	session, err := requireOpenSession(ctx, s.repo, branchID)
	if err != nil {
		return nil, err
	}
	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *cashboxService) Session(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, errors.New("sesión de caja no encontrada")
	}
	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *cashboxService) History(ctx context.Context, branchID, page, limit int) ([]dto.SessionResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessions, total, err := s.repo.ListSessions(ctx, branchID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SessionResponse, len(sessions))
	for i := range sessions {
		out[i] = toSessionResponse(&sessions[i])
	}
	return out, total, nil
}

func (s *cashboxService) RunningBalances(ctx context.Context, sessionID uuid.UUID) ([]dto.RunningBalanceEntry, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, errors.New("sesión de caja no encontrada")
	}
	movs, err := s.ledger.ListSince(ctx, session.BranchID, session.OpenedAt)
	if err != nil {
		return nil, err
	}
	if session.ClosedAt != nil {
		movs = movementsUntil(movs, *session.ClosedAt)
	}

	// Each target accumulates independently: the drawer starts at the
	// counted opening, accounts at their opening confirmation.
	running := map[string]money.Cents{model.MethodCash: session.CountedOpeningCents}
	for _, b := range session.BankBalances {
		if b.Phase == model.PhaseOpening {
			running[b.AccountID.String()] = b.ConfirmedCents
		}
	}

	out := make([]dto.RunningBalanceEntry, 0, len(movs))
	for i := range movs {
		m := &movs[i]
		target := model.MethodCash
		if m.AccountID != nil {
			target = m.AccountID.String()
		}
		running[target] += m.Signed()
		out = append(out, dto.RunningBalanceEntry{
			MovementID:  m.ID.String(),
			Type:        m.Type,
			Method:      m.Method,
			Target:      target,
			Concept:     m.Concept,
			Amount:      m.AmountCents.Decimal(),
			Accumulated: running[target].Decimal(),
			CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// countDenominations totals the physical count, rejecting unknown bill or
// coin values.
func countDenominations(counts []dto.DenominationCount) (money.Cents, error) {
	var total money.Cents
	for _, line := range counts {
		value, err := toCents("value", line.Value)
		if err != nil {
			return 0, err
		}
		if !model.KnownDenomination(value) {
			return 0, errors.New("denominación no reconocida: " + value.String())
		}
		if line.Count < 0 {
			return 0, errors.New("la cantidad de billetes no puede ser negativa")
		}
		total += value * money.Cents(line.Count)
	}
	return total, nil
}

// confirmBankBalances validates each confirmation against the ledger-derived
// account balance as of `until` (nil = now) and returns both the rows to
// persist and the mismatches found. Every active account must appear in the
// confirmation set; a missing one aborts before the discrepancy check.
func (s *cashboxService) confirmBankBalances(ctx context.Context, confirmations []dto.BankBalanceConfirmation, phase string, until *time.Time) ([]model.SessionBankBalance, []apierror.Discrepancy, error) {
	balances := make([]model.SessionBankBalance, 0, len(confirmations))
	var discrepancies []apierror.Discrepancy
	seen := make(map[uuid.UUID]bool, len(confirmations))

	for _, conf := range confirmations {
		accID, err := parseUUID("account_id", conf.AccountID)
		if err != nil {
			return nil, nil, err
		}
		if seen[accID] {
			return nil, nil, errors.New("cuenta bancaria repetida en la confirmación")
		}
		seen[accID] = true
		if _, err := s.accounts.FindByID(ctx, accID); err != nil {
			return nil, nil, errors.New("cuenta bancaria no encontrada")
		}
		confirmed, err := toCents("amount", conf.Amount)
		if err != nil {
			return nil, nil, err
		}
		expected, err := s.ledger.SumAccount(ctx, accID, until)
		if err != nil {
			return nil, nil, err
		}
		if confirmed != expected {
			discrepancies = append(discrepancies, apierror.Discrepancy{
				Target:     accID.String(),
				Expected:   expected.Decimal(),
				Counted:    confirmed.Decimal(),
				Difference: (confirmed - expected).Decimal(),
			})
		}
		balances = append(balances, model.SessionBankBalance{
			AccountID:      accID,
			Phase:          phase,
			ConfirmedCents: confirmed,
			ExpectedCents:  expected,
		})
	}

	active, err := s.accounts.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	var missing []string
	for _, acc := range active {
		if !seen[acc.ID] {
			missing = append(missing, acc.Name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errors.New("falta confirmar el saldo de las cuentas activas: " + strings.Join(missing, ", "))
	}

	return balances, discrepancies, nil
}

func cashDiscrepancy(expected, counted money.Cents) apierror.Discrepancy {
	return apierror.Discrepancy{
		Target:     model.MethodCash,
		Expected:   expected.Decimal(),
		Counted:    counted.Decimal(),
		Difference: (counted - expected).Decimal(),
	}
}

func movementsUntil(movs []model.Movement, cutoff time.Time) []model.Movement {
	out := movs[:0]
	for _, m := range movs {
		if m.CreatedAt.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

func toSessionResponse(s *model.CashSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:             s.ID.String(),
		BranchID:       s.BranchID,
		Status:         s.Status,
		CountedOpening: s.CountedOpeningCents.Decimal(),
		OverrideUsed:   s.OverrideAccepted,
		OpeningNotes:   s.OpeningNotes,
		ClosingNotes:   s.ClosingNotes,
		OpenedAt:       s.OpenedAt.UTC().Format(time.RFC3339),
	}
	if s.CountedClosingCents != nil {
		d := s.CountedClosingCents.Decimal()
		resp.CountedClosing = &d
	}
	if s.ExpectedClosingCents != nil {
		d := s.ExpectedClosingCents.Decimal()
		resp.ExpectedClosing = &d
	}
	if s.VarianceCents != nil {
		d := s.VarianceCents.Decimal()
		resp.Variance = &d
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	for _, b := range s.BankBalances {
		resp.BankBalances = append(resp.BankBalances, dto.SessionBankBalanceResponse{
			AccountID: b.AccountID.String(),
			Phase:     b.Phase,
			Confirmed: b.ConfirmedCents.Decimal(),
			Expected:  b.ExpectedCents.Decimal(),
		})
	}
	return resp
}
