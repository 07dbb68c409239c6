package infra

// pdf.go — close-of-session report generation using go-pdf/fpdf.
// One A4 page per session: opening/closing counts, variance, and the full
// movement list of the shift.
//
// The output file is saved to storagePath/cierre_{session_id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"andespos/internal/model"
)

// GenerateSessionReportPDF renders the closing report of a cash session.
// Returns the absolute path to the generated file.
func GenerateSessionReportPDF(session *model.CashSession, movements []model.Movement, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s.pdf", session.ID.String())
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "AndesPOS", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Reporte de cierre de caja", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Session summary ──────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Sucursal %d — Sesión %s", session.BranchID, session.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Apertura: "+session.OpenedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if session.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+session.ClosedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW*0.6, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 6, value, "", 1, "R", false, 0, "")
	}
	row("Efectivo contado en apertura", "S/ "+session.CountedOpeningCents.String(), false)
	if session.ExpectedClosingCents != nil {
		row("Efectivo esperado al cierre", "S/ "+session.ExpectedClosingCents.String(), false)
	}
	if session.CountedClosingCents != nil {
		row("Efectivo contado al cierre", "S/ "+session.CountedClosingCents.String(), false)
	}
	if session.VarianceCents != nil {
		row("Diferencia", "S/ "+session.VarianceCents.String(), true)
	}
	if session.OverrideAccepted {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 5, "Diferencias aceptadas explícitamente por el operador", "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Movement table ───────────────────────────────────────────────────────
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.16 // hora
	col2 := contentW * 0.12 // tipo
	col3 := contentW * 0.16 // método
	col4 := contentW * 0.38 // concepto
	col5 := contentW * 0.18 // monto

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 5, "Hora", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Tipo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "Método", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 5, "Concepto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col5, 5, "Monto", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for i := range movements {
		m := &movements[i]
		concept := m.Concept
		if len(concept) > 48 {
			concept = concept[:45] + "..."
		}
		pdf.CellFormat(col1, 5, m.CreatedAt.Format("15:04:05"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, m.Type, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, m.Method, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, concept, "", 0, "L", false, 0, "")
		pdf.CellFormat(col5, 5, "S/ "+m.Signed().String(), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
