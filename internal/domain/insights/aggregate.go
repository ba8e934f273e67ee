// Package insights computes the summary views of a categorized ledger:
// totals, top origins and destinations, category and month breakdowns.
// Everything here is a pure function of the ledger.
package insights

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// DefaultTopN is the number of counterparties shown when no limit is given.
const DefaultTopN = 20

// Direction selects which side of the ledger an aggregate looks at.
type Direction int

const (
	// Inflow keeps positive amounts (origins).
	Inflow Direction = iota
	// Outflow keeps negative amounts, reported as magnitudes (destinations).
	Outflow
)

func (d Direction) String() string {
	if d == Inflow {
		return "inflow"
	}
	return "outflow"
}

// value returns the amount this direction counts for t and whether t
// belongs to it at all.
func (d Direction) value(t ledger.Transaction) (decimal.Decimal, bool) {
	switch {
	case d == Inflow && t.IsInflow():
		return t.Amount, true
	case d == Outflow && t.IsOutflow():
		return t.Amount.Abs(), true
	}
	return decimal.Zero, false
}

// Totals is the headline of a ledger.
type Totals struct {
	Count        int
	InflowCount  int
	OutflowCount int
	Inflow       decimal.Decimal
	Outflow      decimal.Decimal // magnitude
	Net          decimal.Decimal
}

// Group is one aggregated bucket (a counterparty or a category).
type Group struct {
	Key   string
	Total decimal.Decimal
	Count int
}

// MonthSummary aggregates one calendar month.
type MonthSummary struct {
	YearMonth  string
	Inflow     decimal.Decimal
	Outflow    decimal.Decimal
	Net        decimal.Decimal
	RunningNet decimal.Decimal
	Count      int
}

// ComputeTotals sums inflows (amounts > 0) and outflows (|amounts < 0|).
func ComputeTotals(l ledger.Ledger) Totals {
	var in, out []decimal.Decimal
	for _, t := range l {
		if v, ok := Inflow.value(t); ok {
			in = append(in, v)
		}
		if v, ok := Outflow.value(t); ok {
			out = append(out, v)
		}
	}
	return Totals{
		Count:        len(l),
		InflowCount:  len(in),
		OutflowCount: len(out),
		Inflow:       sum(in),
		Outflow:      sum(out),
		Net:          sum(l.Amounts()),
	}
}

// TopCounterparties groups one direction by counterparty, largest first.
// Ties are broken by key. n <= 0 means DefaultTopN.
func TopCounterparties(l ledger.Ledger, d Direction, n int) []Group {
	if n <= 0 {
		n = DefaultTopN
	}
	groups := groupBy(l, d, counterpartyKey)
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// ByCategory groups one direction by category, largest first.
func ByCategory(l ledger.Ledger, d Direction) []Group {
	return groupBy(l, d, func(t ledger.Transaction) string { return t.Category })
}

// ByMonth summarizes every month present in the ledger in ascending order.
// RunningNet accumulates Net across months.
func ByMonth(l ledger.Ledger) []MonthSummary {
	type bucket struct {
		in, out, all []decimal.Decimal
	}
	buckets := map[string]*bucket{}
	for _, t := range l {
		b, ok := buckets[t.YearMonth]
		if !ok {
			b = &bucket{}
			buckets[t.YearMonth] = b
		}
		b.all = append(b.all, t.Amount)
		if v, ok := Inflow.value(t); ok {
			b.in = append(b.in, v)
		}
		if v, ok := Outflow.value(t); ok {
			b.out = append(b.out, v)
		}
	}

	months := make([]string, 0, len(buckets))
	for ym := range buckets {
		months = append(months, ym)
	}
	sort.Strings(months)

	out := make([]MonthSummary, 0, len(months))
	running := decimal.Zero
	for _, ym := range months {
		b := buckets[ym]
		net := sum(b.all)
		running = running.Add(net)
		out = append(out, MonthSummary{
			YearMonth:  ym,
			Inflow:     sum(b.in),
			Outflow:    sum(b.out),
			Net:        net,
			RunningNet: running,
			Count:      len(b.all),
		})
	}
	return out
}

// DrillDown returns the transactions of one category ordered by date.
func DrillDown(l ledger.Ledger, category string) ledger.Ledger {
	var out ledger.Ledger
	for _, t := range l {
		if t.Category == category {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Categories returns the distinct categories of the ledger, sorted.
func Categories(l ledger.Ledger) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range l {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}

func groupBy(l ledger.Ledger, d Direction, key func(ledger.Transaction) string) []Group {
	amounts := map[string][]decimal.Decimal{}
	for _, t := range l {
		if v, ok := d.value(t); ok {
			k := key(t)
			amounts[k] = append(amounts[k], v)
		}
	}

	groups := make([]Group, 0, len(amounts))
	for k, vs := range amounts {
		groups = append(groups, Group{Key: k, Total: sum(vs), Count: len(vs)})
	}
	sort.Slice(groups, func(i, j int) bool {
		if c := groups[i].Total.Cmp(groups[j].Total); c != 0 {
			return c > 0
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// counterpartyKey falls back to the raw description when noise removal left
// nothing (e.g. a bare "PIX").
func counterpartyKey(t ledger.Transaction) string {
	if t.Counterparty != "" {
		return t.Counterparty
	}
	return strings.ToUpper(strings.TrimSpace(t.Description))
}

func sum(amounts []decimal.Decimal) decimal.Decimal {
	return money.Sum(amounts, money.DefaultCurrency).ToDecimal()
}
