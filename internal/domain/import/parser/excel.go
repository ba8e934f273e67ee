package parser

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/sniffer"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// headerScanRows bounds how far down a sheet the header is searched.
const headerScanRows = 20

// dateDisplay matches how date number formats render ("3/1/24 00:00",
// "01-03-2024").
var dateDisplay = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}`)

// XLSXDetector reads spreadsheet exports. Text cells are kept as displayed.
// Numeric cells are rewritten from their stored value into the statement
// notation ("-45,90", "01/03/2024") so they go through the same parsers as
// CSV.
type XLSXDetector struct{}

// NewXLSXDetector creates an XLSX detector
func NewXLSXDetector() *XLSXDetector {
	return &XLSXDetector{}
}

func (d *XLSXDetector) Name() string { return "xlsx" }

func (d *XLSXDetector) Detect(ctx context.Context, data []byte) (table RawTable, err error) {
	defer recoverPanic(d.Name(), &err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return RawTable{}, parseError(d.Name(), "failed to open workbook", err)
	}
	defer f.Close()

	sheet := findTransactionSheet(f.GetSheetList())
	if sheet == "" {
		return RawTable{}, parseError(d.Name(), "no sheets in workbook", nil)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return RawTable{}, parseError(d.Name(), "failed to read sheet "+sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return RawTable{}, parseError(d.Name(), "failed to read sheet "+sheet, err)
	}
	numericCells(f, sheet, rows, raw)

	header := findHeaderRow(rows)
	if header < 0 {
		return RawTable{}, nil
	}

	table = RawTable{Columns: cleanRow(rows[header])}
	for _, row := range rows[header+1:] {
		if err := ctx.Err(); err != nil {
			return RawTable{}, err
		}
		if blankRecord(row) {
			continue
		}
		table.Rows = append(table.Rows, cleanRow(row))
	}
	return table, nil
}

// numericCells replaces the displayed text of numeric cells in place. A
// number shown through a date format becomes a statement date; any other
// number that is fractional or formatted becomes a plain decimal with a comma
// mark. Unformatted integers and text cells are left alone.
func numericCells(f *excelize.File, sheet string, shown, raw [][]string) {
	for i, row := range shown {
		if i >= len(raw) {
			return
		}
		for j, display := range row {
			if j >= len(raw[i]) {
				break
			}
			stored := strings.TrimSpace(raw[i][j])
			v, err := strconv.ParseFloat(stored, 64)
			if err != nil {
				continue
			}
			if display == stored && !strings.ContainsAny(stored, ".eE") {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber) {
				continue
			}

			if dateDisplay.MatchString(strings.TrimSpace(display)) {
				if t, err := excelize.ExcelDateToTime(v, false); err == nil {
					row[j] = t.Format(DateLayout)
					continue
				}
			}
			row[j] = money.FormatPlain(decimal.NewFromFloat(v))
		}
	}
}

// findTransactionSheet prefers sheets with statement-like names, falling back
// to the first sheet.
func findTransactionSheet(sheets []string) string {
	if len(sheets) == 0 {
		return ""
	}

	preferredNames := []string{
		"extrato", "movimentos", "lançamentos", "lancamentos",
		"transactions", "statement",
	}
	for _, preferred := range preferredNames {
		for _, sheet := range sheets {
			if strings.Contains(strings.ToLower(sheet), preferred) {
				return sheet
			}
		}
	}
	return sheets[0]
}

// findHeaderRow returns the row with the most header keywords among the first
// rows, or the first non-empty row when no keyword appears. -1 means the sheet
// is empty.
func findHeaderRow(rows [][]string) int {
	best, bestHits, firstNonEmpty := -1, 0, -1
	for i, row := range rows {
		if i >= headerScanRows {
			break
		}
		if blankRecord(row) {
			continue
		}
		if firstNonEmpty < 0 {
			firstNonEmpty = i
		}
		if hits := sniffer.KeywordHits(strings.Join(row, " ")); hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if best >= 0 {
		return best
	}
	return firstNonEmpty
}

func cleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = cleanCell(c)
	}
	return out
}
