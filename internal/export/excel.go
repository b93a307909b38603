package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter writes bookings and quotes into an Excel workbook for
// operator review.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

func (e *Exporter) Export(bookings []*models.Booking, quotes []*models.Quote) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeBookingsSheet(f, bookings); err != nil {
		return "", err
	}
	if err := e.writeQuotesSheet(f, quotes); err != nil {
		return "", err
	}
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("movers_export_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel export created")
	return filePath, nil
}

func (e *Exporter) writeBookingsSheet(f *excelize.File, bookings []*models.Booking) error {
	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "User", "From", "To", "Status", "Approved", "Date", "Time", "Quote ID", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, style)

	for row, b := range bookings {
		date := ""
		if b.Date != nil {
			date = b.Date.Format(models.DateLayout)
		}
		quoteID := ""
		if b.QuoteID != nil {
			quoteID = fmt.Sprintf("%d", *b.QuoteID)
		}
		values := []any{b.ID, b.UserID, b.CurrentLocation, b.NewLocation, b.Status,
			b.Approved, date, b.Time, quoteID, b.CreatedAt.Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "J", 18)
	return nil
}

func (e *Exporter) writeQuotesSheet(f *excelize.File, quotes []*models.Quote) error {
	const sheet = "Quotes"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	headers := []string{"ID", "User", "Company", "Amount", "Distance", "House Type", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, style)

	for row, q := range quotes {
		values := []any{q.ID, q.UserID, q.CompanyName, q.Amount, q.Distance, q.HouseType,
			q.CreatedAt.Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "G", 18)
	return nil
}
