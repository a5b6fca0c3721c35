package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"jamii/internal/domain"
	"jamii/internal/domain/models"
	"jamii/internal/repositories"
	"jamii/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReceiptService renders a PDF receipt for a settled levy.
type ReceiptService struct {
	LevyRepo  repositories.LevyRepository
	RequestID string
}

func (s ReceiptService) GenerateReceipt(levyID int64, rc domain.RequestContext) ([]byte, string, error) {
	levy, err := s.LevyRepo.GetForResident(levyID, rc)
	if err != nil {
		return nil, "", err
	}
	if levy.Status != models.LevyPaid {
		return nil, "", domain.ConflictError{Resource: "levy", Msg: "not yet paid"}
	}
	utils.LogEvent(s.RequestID, "receipt", "generate", fmt.Sprintf("levy_id=%d", levyID))
	return buildReceiptPDF(levy)
}

func buildReceiptPDF(l models.Levy) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt No    : %s", safe(l.PaymentReference, "-")),
		fmt.Sprintf("Levy          : %s", safe(l.Description, "-")),
		fmt.Sprintf("Unit          : #%d", l.UnitID),
		fmt.Sprintf("Amount        : %s", utils.FormatKES(l.Amount)),
		fmt.Sprintf("Method        : %s", safe(strings.ToUpper(l.PaymentMethod), "-")),
		fmt.Sprintf("Payment Date  : %s", safe(l.PaymentDate, "-")),
		fmt.Sprintf("Due Date      : %s", safe(l.DueDate, "-")),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Generated %s. Keep this receipt as proof of payment.",
		time.Now().Format("2006-01-02 15:04")), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%d_%s.pdf", l.ID, safeFilenamePart(l.PaymentReference))
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func safeFilenamePart(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(s))
	if out == "" {
		return "receipt"
	}
	return out
}
