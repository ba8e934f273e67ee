package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Sheet names of the summary workbook, in order.
const (
	SheetSummary      = "Resumo"
	SheetLedger       = "Extrato"
	SheetOrigins      = "Origens"
	SheetDestinations = "Destinos"
	SheetCategories   = "Categorias"
	SheetMonths       = "Meses"
)

// excelize built-in number format 4 is "#,##0.00"
const amountNumFmt = 4

type sheetWriter struct {
	f      *excelize.File
	header int
	amount int
}

// WriteWorkbook writes the ledger and every report view to an XLSX file.
// Amounts are stored as numbers; the formatter only renders the summary text.
func WriteWorkbook(w io.Writer, l ledger.Ledger, r *insights.Report, formatter *money.Formatter) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	sw := &sheetWriter{f: f, header: header, amount: amount}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	steps := []func() error{
		func() error { return sw.summary(r, formatter) },
		func() error { return sw.ledger(l) },
		func() error { return sw.groups(SheetOrigins, "Origem", r.TopOrigins) },
		func() error { return sw.groups(SheetDestinations, "Destino", r.TopDestinations) },
		func() error { return sw.categories(r) },
		func() error { return sw.months(r.Months) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (sw *sheetWriter) summary(r *insights.Report, formatter *money.Formatter) error {
	rows := [][]any{
		{"Indicador", "Valor"},
		{"Movimentos", r.Totals.Count},
		{"Entradas", formatter.Format(r.Totals.Inflow)},
		{"Saídas", formatter.Format(r.Totals.Outflow)},
		{"Saldo", formatter.Format(r.Totals.Net)},
	}
	for _, h := range insights.Highlights(r, formatter) {
		rows = append(rows, []any{"Destaque", h})
	}
	if err := sw.rows(SheetSummary, rows, -1); err != nil {
		return err
	}
	return sw.f.SetColWidth(SheetSummary, "A", "B", 40)
}

func (sw *sheetWriter) ledger(l ledger.Ledger) error {
	rows := [][]any{{"Data", "Descrição", "Valor", "Dia", "Ano-Mês", "Categoria", "Tipo", "Contraparte"}}
	for _, t := range l {
		rows = append(rows, []any{
			t.Date.Format("02/01/2006"), t.Description, number(t.Amount),
			t.Day, t.YearMonth, t.Category, t.SignLabel, t.Counterparty,
		})
	}
	if err := sw.rows(SheetLedger, rows, 3); err != nil {
		return err
	}
	return sw.f.SetColWidth(SheetLedger, "B", "B", 45)
}

func (sw *sheetWriter) groups(sheet, label string, groups []insights.Group) error {
	rows := [][]any{{label, "Total", "Movimentos"}}
	for _, g := range groups {
		rows = append(rows, []any{g.Key, number(g.Total), g.Count})
	}
	if err := sw.rows(sheet, rows, 2); err != nil {
		return err
	}
	return sw.f.SetColWidth(sheet, "A", "A", 45)
}

func (sw *sheetWriter) categories(r *insights.Report) error {
	rows := [][]any{{"Direção", "Categoria", "Total", "Movimentos"}}
	for _, g := range r.OutflowByCategory {
		rows = append(rows, []any{"Saídas", g.Key, number(g.Total), g.Count})
	}
	for _, g := range r.InflowByCategory {
		rows = append(rows, []any{"Entradas", g.Key, number(g.Total), g.Count})
	}
	return sw.rows(SheetCategories, rows, 3)
}

func (sw *sheetWriter) months(months []insights.MonthSummary) error {
	rows := [][]any{{"Mês", "Entradas", "Saídas", "Saldo", "Saldo acumulado", "Movimentos"}}
	for _, m := range months {
		rows = append(rows, []any{
			m.YearMonth, number(m.Inflow), number(m.Outflow),
			number(m.Net), number(m.RunningNet), m.Count,
		})
	}
	return sw.rows(SheetMonths, rows, 2, 3, 4, 5)
}

// rows writes rows starting at A1, creating the sheet when needed. The first
// row is bold; amountCols (1-based) get the amount number format.
func (sw *sheetWriter) rows(sheet string, rows [][]any, amountCols ...int) error {
	if idx, _ := sw.f.GetSheetIndex(sheet); idx < 0 {
		if _, err := sw.f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	if len(rows) == 0 {
		return nil
	}
	last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err := sw.f.SetCellStyle(sheet, "A1", last, sw.header); err != nil {
		return err
	}

	if len(rows) < 2 {
		return nil
	}
	for _, col := range amountCols {
		if col < 1 {
			continue
		}
		from, _ := excelize.CoordinatesToCellName(col, 2)
		to, _ := excelize.CoordinatesToCellName(col, len(rows))
		if err := sw.f.SetCellStyle(sheet, from, to, sw.amount); err != nil {
			return err
		}
	}
	return nil
}

func number(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
