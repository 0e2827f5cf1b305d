// Package xlsx converts record collections to and from spreadsheet
// workbooks. Each ledger kind has a fixed sheet name and column order;
// uploads replace the whole collection, so a workbook without the expected
// sheet must fail before anything is touched.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"dairyledger/internal/core"
)

// ErrSheetNotFound is returned when the workbook lacks the required sheet.
var ErrSheetNotFound = errors.New("required sheet not found in workbook")

// Sheet names per ledger kind.
const (
	ExpensesSheet = "Expenses"
	IncomeSheet   = "Income"
)

// Codec reads and writes one ledger kind's worksheet.
type Codec struct {
	kind core.Kind
	now  func() time.Time
}

func NewCodec(kind core.Kind) Codec {
	return Codec{kind: kind, now: time.Now}
}

// SheetName returns the required worksheet name for the codec's kind.
func (c Codec) SheetName() string {
	if c.kind == core.KindIncome {
		return IncomeSheet
	}
	return ExpensesSheet
}

// partnerHeader is the counterparty column: who was paid (expenses) or who
// paid (income).
func (c Codec) partnerHeader() string {
	if c.kind == core.KindIncome {
		return "Customer"
	}
	return "Supplier"
}

func (c Codec) headers() []string {
	return []string{
		"ID", "Date", "Category", "Description", "Amount", "Quantity",
		"Unit", c.partnerHeader(), "PaymentMethod", "Notes",
		"CreatedAt", "UpdatedAt",
	}
}

func (c Codec) partner(r core.Record) string {
	if c.kind == core.KindIncome {
		return r.Customer
	}
	return r.Supplier
}

// Write renders the records into a new workbook, one row per record in the
// fixed column order. Absent optional fields render as empty cells.
func (c Codec) Write(records []core.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := c.SheetName()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headers := c.headers()
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header row: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		values := []any{
			r.ID, r.Date, string(r.Category), r.Description, r.Amount,
			emptyIfZero(r.Quantity), r.Unit, c.partner(r),
			string(r.PaymentMethod), r.Notes, r.CreatedAt, r.UpdatedAt,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// Read parses the codec's sheet from a workbook. A missing sheet is an
// error; a malformed row is not. Amounts and quantities default to 0 when
// unparseable, categories fall back to "other", payment methods to "cash",
// and timestamps to now.
func (c Codec) Read(r io.Reader) ([]core.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := c.SheetName()
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("look up sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrSheetNotFound)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []core.Record{}, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[h] = i
	}

	nowTS := core.Timestamp(c.now())
	records := make([]core.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		cell := func(header string) string {
			i, ok := col[header]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := core.Record{
			ID:            cell("ID"),
			Date:          cell("Date"),
			Category:      core.Category(cell("Category")),
			Description:   cell("Description"),
			Amount:        core.ParseAmount(cell("Amount")),
			Quantity:      core.ParseAmount(cell("Quantity")),
			Unit:          cell("Unit"),
			PaymentMethod: core.PaymentMethod(cell("PaymentMethod")),
			Notes:         cell("Notes"),
			CreatedAt:     cell("CreatedAt"),
			UpdatedAt:     cell("UpdatedAt"),
		}
		if c.kind == core.KindIncome {
			rec.Customer = cell("Customer")
		} else {
			rec.Supplier = cell("Supplier")
		}
		if rec.Category == "" {
			rec.Category = core.CategoryOther
		}
		if rec.PaymentMethod == "" {
			rec.PaymentMethod = core.PaymentCash
		}
		if rec.CreatedAt == "" {
			rec.CreatedAt = nowTS
		}
		if rec.UpdatedAt == "" {
			rec.UpdatedAt = nowTS
		}
		records = append(records, rec)
	}

	return records, nil
}

func emptyIfZero(v float64) any {
	if v == 0 {
		return ""
	}
	return v
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
