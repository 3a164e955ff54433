package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	settlement "rental-cloud/internal/settlement/domain"
)

// BuildSettlementPDF renders a monthly statement PDF for one settlement.
func BuildSettlementPDF(aggregate *settlement.SettlementAggregate, partnerName string) ([]byte, error) {
	figures := aggregate.Figures()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Monthly Settlement Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Partner: %s", partnerName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Month: %s", aggregate.MonthStart().Format("2006-01")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", aggregate.Status()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", aggregate.CreatedAt().Format(time.RFC3339)))
	pdf.Ln(5)
	if !aggregate.PaidAt().IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Paid: %s", aggregate.PaidAt().Format(time.RFC3339)))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Line", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 6, "Value", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	lines := []struct {
		label string
		value string
	}{
		{"Completed bookings", fmt.Sprintf("%d", figures.BookingsCount)},
		{"Gross revenue", figures.GrossRevenue.String()},
		{"Commission rate", figures.CommissionRate.String()},
		{"Commission", figures.CommissionAmount.String()},
		{"Net payout", figures.NetPayout.String()},
	}
	for _, line := range lines {
		pdf.CellFormat(70, 6, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, line.value, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSettlementXLSX renders a monthly statement workbook for one settlement.
func BuildSettlementXLSX(aggregate *settlement.SettlementAggregate, partnerName string) ([]byte, error) {
	figures := aggregate.Figures()

	f := excelize.NewFile()
	sheet := "statement"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Monthly Settlement Statement")
	_ = f.SetCellValue(sheet, "A3", "Partner")
	_ = f.SetCellValue(sheet, "B3", partnerName)
	_ = f.SetCellValue(sheet, "A4", "Month")
	_ = f.SetCellValue(sheet, "B4", aggregate.MonthStart().Format("2006-01"))
	_ = f.SetCellValue(sheet, "A5", "Status")
	_ = f.SetCellValue(sheet, "B5", string(aggregate.Status()))
	_ = f.SetCellValue(sheet, "A6", "Completed bookings")
	_ = f.SetCellValue(sheet, "B6", figures.BookingsCount)
	_ = f.SetCellValue(sheet, "A7", "Gross revenue")
	_ = f.SetCellValue(sheet, "B7", figures.GrossRevenue.String())
	_ = f.SetCellValue(sheet, "A8", "Commission rate")
	_ = f.SetCellValue(sheet, "B8", figures.CommissionRate.String())
	_ = f.SetCellValue(sheet, "A9", "Commission")
	_ = f.SetCellValue(sheet, "B9", figures.CommissionAmount.String())
	_ = f.SetCellValue(sheet, "A10", "Net payout")
	_ = f.SetCellValue(sheet, "B10", figures.NetPayout.String())

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
