package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/divan/num2words"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/pkg/clock"
)

// ErrExportGenerateFail the workbook could not be written
var ErrExportGenerateFail = errors.New("failed to generate the Excel file")

// ExportService spreadsheet exports. Workbooks are returned as buffers; the
// handler sets the response headers.
type ExportService interface {
	// ExportApplications every application matching q, unpaged
	ExportApplications(ctx context.Context, q *dto.ListQuery) (*bytes.Buffer, string, error)
	// ExportPayments every payment matching q, unpaged
	ExportPayments(ctx context.Context, q *dto.ListQuery) (*bytes.Buffer, string, error)
	// PrintInvoice a printable invoice with the total in words
	PrintInvoice(ctx context.Context, invoiceID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clock: clk, logger: logger}
}

// unpaged filter for exports
func exportFilter(q *dto.ListQuery) repository.ListFilter {
	f := listFilter(q)
	f.Offset = 0
	f.Limit = 0
	return f
}

// ────────────────────── Applications ──────────────────────

func (s *exportService) ExportApplications(ctx context.Context, q *dto.ListQuery) (*bytes.Buffer, string, error) {
	apps, _, err := s.repo.Application.List(ctx, exportFilter(q))
	if err != nil {
		s.logger.Error("list applications for export failed", zap.Error(err))
		return nil, "", err
	}

	headers := []string{"Number", "Student", "University", "Course", "Intake", "Year",
		"Application Date", "State", "Outcome", "Service Fee", "University Fee", "Total Fee"}
	rows := make([][]interface{}, 0, len(apps))
	for i := range apps {
		a := &apps[i]
		student, university, course := "", "", ""
		if a.Student != nil {
			student = a.Student.Name
		}
		if a.University != nil {
			university = a.University.Name
		}
		if a.Course != nil {
			course = a.Course.Name
		}
		rows = append(rows, []interface{}{
			a.Name, student, university, course, string(a.Intake), a.IntakeYear,
			a.ApplicationDate.Format(dto.DateLayout), string(a.State), string(a.Outcome),
			a.ServiceFee, a.UniversityFee, a.TotalFee,
		})
	}

	buf, err := s.writeTable("Applications", headers, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("applications_%s.xlsx", clock.Today(s.clock).Format(dto.DateLayout)), nil
}

// ────────────────────── Payments ──────────────────────

func (s *exportService) ExportPayments(ctx context.Context, q *dto.ListQuery) (*bytes.Buffer, string, error) {
	payments, _, err := s.repo.Payment.List(ctx, exportFilter(q))
	if err != nil {
		s.logger.Error("list payments for export failed", zap.Error(err))
		return nil, "", err
	}

	headers := []string{"Number", "Student", "Type", "Method", "Payment Date", "Due Date", "State", "Amount"}
	rows := make([][]interface{}, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		student := ""
		if p.Student != nil {
			student = p.Student.Name
		}
		rows = append(rows, []interface{}{
			p.Name, student, p.PaymentType.Label(), p.PaymentMethod,
			p.PaymentDate.Format(dto.DateLayout), dto.FormatDate(p.DueDate), string(p.State), p.Amount,
		})
	}

	buf, err := s.writeTable("Payments", headers, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("payments_%s.xlsx", clock.Today(s.clock).Format(dto.DateLayout)), nil
}

// writeTable one sheet with a bold header row followed by rows
func (s *exportService) writeTable(sheet string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", colName(len(headers)-1), 18)

	for r, row := range rows {
		for c, v := range row {
			f.SetCellValue(sheet, cell(colName(c), r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ────────────────────── Printable invoice ──────────────────────

func (s *exportService) PrintInvoice(ctx context.Context, invoiceID string) (*bytes.Buffer, string, error) {
	inv, err := s.repo.Invoice.GetByID(ctx, invoiceID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrInvoiceNotFound
		}
		s.logger.Error("get invoice for print failed", zap.String("id", invoiceID), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoice"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	title, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 36)
	f.SetColWidth(sheet, "C", "G", 14)

	f.SetCellValue(sheet, "A1", "Invoice "+inv.Name)
	f.MergeCell(sheet, "A1", "G1")
	f.SetCellStyle(sheet, "A1", "A1", title)

	student := ""
	if inv.Student != nil {
		student = inv.Student.Name
	}
	header := [][2]string{
		{"Bill to", student},
		{"Invoice date", inv.InvoiceDate.Format(dto.DateLayout)},
		{"Due date", dto.FormatDate(inv.DueDate)},
		{"Status", string(inv.State)},
		{"Notes", inv.Notes},
	}
	row := 3
	for _, h := range header {
		f.SetCellValue(sheet, cell("A", row), h[0])
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), bold)
		f.SetCellValue(sheet, cell("B", row), h[1])
		row++
	}

	row++
	for i, h := range []string{"#", "Description", "Quantity", "Unit Price", "Tax %", "Tax", "Total"} {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell("G", row), bold)
	row++

	for i := range inv.Lines {
		l := &inv.Lines[i]
		for c, v := range []interface{}{l.Sequence, l.Description, l.Quantity, l.UnitPrice, l.TaxPercentage, l.TaxAmount, l.Total} {
			f.SetCellValue(sheet, cell(colName(c), row), v)
		}
		row++
	}

	row++
	for _, t := range []struct {
		label string
		value float64
	}{
		{"Subtotal", inv.Subtotal},
		{"Tax", inv.TaxAmount},
		{"Total", inv.TotalAmount},
	} {
		f.SetCellValue(sheet, cell("F", row), t.label)
		f.SetCellStyle(sheet, cell("F", row), cell("F", row), bold)
		f.SetCellValue(sheet, cell("G", row), t.value)
		row++
	}

	row++
	f.SetCellValue(sheet, cell("A", row), "Amount in words: "+AmountInWords(inv.TotalAmount))
	f.MergeCell(sheet, cell("A", row), cell("G", row))

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write invoice workbook failed", zap.String("id", invoiceID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("invoice_%s.xlsx", inv.Name), nil
}

// AmountInWords spells out the whole units and appends the cents as a fraction,
// e.g. 1250.5 → "one thousand two hundred fifty and 50/100"
func AmountInWords(amount float64) string {
	cents := int64(math.Round(amount * 100))
	if cents < 0 {
		cents = -cents
	}
	return fmt.Sprintf("%s and %02d/100", num2words.Convert(int(cents/100)), cents%100)
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

