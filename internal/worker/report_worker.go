package worker

// report_worker.go
// Renders the close-of-session PDF and mails it to the configured address.
// The session is re-read from the database so the report always reflects
// committed state, not the job payload.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"andespos/internal/config"
	"andespos/internal/infra"
	"andespos/internal/repository"
	"andespos/internal/service"
)

// SessionReportWorker processes jobs from QueueSessionReport.
type SessionReportWorker struct {
	sessions repository.CashboxRepository
	ledger   repository.LedgerRepository
	mailer   *infra.Mailer
	cfg      *config.Config
}

func NewSessionReportWorker(sessions repository.CashboxRepository, ledger repository.LedgerRepository, mailer *infra.Mailer, cfg *config.Config) *SessionReportWorker {
	return &SessionReportWorker{sessions: sessions, ledger: ledger, mailer: mailer, cfg: cfg}
}

func (w *SessionReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload SessionReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		log.Error().Str("session_id", payload.SessionID).Msg("report_worker: invalid session id")
		return nil
	}

	session, err := w.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("report_worker: load session: %w", err)
	}
	movements, err := w.ledger.ListSince(ctx, session.BranchID, session.OpenedAt)
	if err != nil {
		return fmt.Errorf("report_worker: load movements: %w", err)
	}
	if session.ClosedAt != nil {
		filtered := movements[:0]
		for _, m := range movements {
			if m.CreatedAt.Before(*session.ClosedAt) {
				filtered = append(filtered, m)
			}
		}
		movements = filtered
	}

	pdfPath, err := infra.GenerateSessionReportPDF(session, movements, w.cfg.ReportStoragePath)
	if err != nil {
		return err
	}
	log.Info().Str("path", pdfPath).Str("session_id", sessionID.String()).Msg("report_worker: report generated")

	if w.cfg.ReportEmail == "" {
		return nil
	}
	closedAt := time.Now()
	if session.ClosedAt != nil {
		closedAt = *session.ClosedAt
	}
	subject := fmt.Sprintf("Cierre de caja — sucursal %d, %s", session.BranchID, closedAt.Format("02/01/2006"))
	body := fmt.Sprintf("Se adjunta el reporte de cierre de la sesión %s.", session.ID)
	if err := w.mailer.Send(w.cfg.ReportEmail, subject, body, pdfPath); err != nil {
		return fmt.Errorf("report_worker: send email: %w", err)
	}
	log.Info().Str("to", w.cfg.ReportEmail).Msg("report_worker: report sent")
	return nil
}

// ReceiptWorker processes payment receipt emails from QueueReceipt.
type ReceiptWorker struct {
	mailer *infra.Mailer
}

func NewReceiptWorker(mailer *infra.Mailer) *ReceiptWorker {
	return &ReceiptWorker{mailer: mailer}
}

func (w *ReceiptWorker) Process(_ context.Context, raw json.RawMessage) error {
	var notice service.ReceiptNotice
	if err := json.Unmarshal(raw, &notice); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}
	if notice.To == "" {
		log.Warn().Msg("receipt_worker: empty recipient — skipping")
		return nil
	}
	if err := w.mailer.Send(notice.To, notice.Subject, notice.Body, ""); err != nil {
		return fmt.Errorf("receipt_worker: send email: %w", err)
	}
	log.Info().Str("to", notice.To).Msg("receipt_worker: receipt sent")
	return nil
}
