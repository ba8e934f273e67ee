package insights

import (
	"fmt"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Report bundles every view shown after an import.
type Report struct {
	Totals            Totals
	TopOrigins        []Group
	TopDestinations   []Group
	OutflowByCategory []Group
	InflowByCategory  []Group
	Months            []MonthSummary
	Categories        []string
}

// BuildReport computes all views at once. topN bounds the counterparty
// rankings (DefaultTopN when <= 0).
func BuildReport(l ledger.Ledger, topN int) *Report {
	return &Report{
		Totals:            ComputeTotals(l),
		TopOrigins:        TopCounterparties(l, Inflow, topN),
		TopDestinations:   TopCounterparties(l, Outflow, topN),
		OutflowByCategory: ByCategory(l, Outflow),
		InflowByCategory:  ByCategory(l, Inflow),
		Months:            ByMonth(l),
		Categories:        Categories(l),
	}
}

// Highlights creates short human-readable remarks about the report.
func Highlights(r *Report, f *money.Formatter) []string {
	if r == nil || r.Totals.Count == 0 {
		return nil
	}
	var highlights []string

	// Net position
	switch {
	case r.Totals.Net.IsPositive():
		highlights = append(highlights, fmt.Sprintf("Saldo positivo de %s no período", f.Format(r.Totals.Net)))
	case r.Totals.Net.IsNegative():
		highlights = append(highlights, fmt.Sprintf("Saídas superaram as entradas em %s", f.Format(r.Totals.Net.Abs())))
	}

	if len(r.OutflowByCategory) > 0 {
		top := r.OutflowByCategory[0]
		highlights = append(highlights, fmt.Sprintf("Maior gasto: %s (%s)", top.Key, f.Format(top.Total)))
	}

	if len(r.TopDestinations) > 0 {
		top := r.TopDestinations[0]
		highlights = append(highlights, fmt.Sprintf("Principal destino: %s (%d movimentos)", top.Key, top.Count))
	}

	// Month with the largest outflow, only meaningful with several months
	if len(r.Months) > 1 {
		peak := r.Months[0]
		for _, m := range r.Months[1:] {
			if m.Outflow.GreaterThan(peak.Outflow) {
				peak = m
			}
		}
		highlights = append(highlights, fmt.Sprintf("Mês com mais saídas: %s (%s)", peak.YearMonth, f.Format(peak.Outflow)))
	}

	return highlights
}
