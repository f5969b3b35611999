package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/safetyquiz/internal/records"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Participants"

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatXLSX, FormatCSV, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want xlsx, csv or pdf)", s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Write exports recs to w in format f. now stamps the PDF report.
func Write(w io.Writer, f Format, recs []records.Record, now time.Time) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, recs)
	case FormatCSV:
		return WriteCSV(w, recs)
	case FormatPDF:
		return WritePDF(w, recs, now)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteCSV writes the header and one row per record.
func WriteCSV(w io.Writer, recs []records.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(records.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a single SheetName sheet.
func WriteXLSX(w io.Writer, recs []records.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &records.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.Unit, r.Company, r.Platoon, r.RankName, r.TelegramHandle,
			r.Answer, r.Score, r.Strength, r.Weakness, r.Improvement, r.Row()[10],
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(SheetName, "F", "F", 60); err != nil {
		return err
	}
	return f.Write(w)
}

// WritePDF writes a summary report: completion per company followed by a
// table of participants.
func WritePDF(w io.Writer, recs []records.Record, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SAF Safety Quiz Results", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "SAF Safety Quiz Results")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s  |  %d passing attempts", now.Format("2006-01-02 15:04"), len(recs)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Completion by company (target %d)", TargetPerCompany))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	completion := CompletionByCompany(recs)
	if len(completion) == 0 {
		pdf.Cell(0, 6, NoChartMessage)
		pdf.Ln(8)
	}
	for _, c := range completion {
		pdf.CellFormat(45, 6, c.Label(), "", 0, "L", false, 0, "")
		pdf.SetFillColor(20, 184, 166)
		pdf.CellFormat(120*c.Percent(), 6, "", "", 0, "L", true, 0, "")
		pdf.SetX(175)
		pdf.CellFormat(20, 6, fmt.Sprintf("%d/%d", c.Count, TargetPerCompany), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	cols := []struct {
		title string
		width float64
	}{
		{records.ColUnit, 18}, {records.ColCompany, 20}, {records.ColPlatoon, 20},
		{records.ColRankName, 50}, {records.ColTelegramHandle, 42}, {records.ColScore, 14}, {"Date", 26},
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(226, 232, 240)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, r := range recs {
		date := ""
		if !r.Timestamp.IsZero() {
			date = r.Timestamp.Format("2006-01-02")
		}
		cells := []string{r.Unit, r.Company, r.Platoon, r.RankName, r.TelegramHandle, fmt.Sprintf("%d", r.Score), date}
		for i, c := range cols {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
