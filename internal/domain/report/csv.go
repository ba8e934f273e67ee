// Package report writes an imported ledger and its summary views to files.
package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
)

// LedgerRow is one line of the normalized ledger CSV.
type LedgerRow struct {
	Date         string `csv:"data"`
	Description  string `csv:"descricao"`
	Amount       string `csv:"valor"`
	Day          int    `csv:"dia"`
	YearMonth    string `csv:"ano_mes"`
	Category     string `csv:"categoria"`
	SignLabel    string `csv:"tipo"`
	Counterparty string `csv:"contraparte"`
}

// LedgerRows flattens transactions for export. Dates are ISO-8601 and
// amounts keep a decimal point so the file round-trips through any tool.
func LedgerRows(l ledger.Ledger) []*LedgerRow {
	rows := make([]*LedgerRow, 0, len(l))
	for _, t := range l {
		rows = append(rows, &LedgerRow{
			Date:         t.Date.Format("2006-01-02"),
			Description:  t.Description,
			Amount:       t.Amount.StringFixed(2),
			Day:          t.Day,
			YearMonth:    t.YearMonth,
			Category:     t.Category,
			SignLabel:    t.SignLabel,
			Counterparty: t.Counterparty,
		})
	}
	return rows
}

// WriteLedgerCSV writes the ledger as comma-separated values with a header.
func WriteLedgerCSV(w io.Writer, l ledger.Ledger) error {
	rows := LedgerRows(l)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write ledger csv: %w", err)
	}
	return nil
}
