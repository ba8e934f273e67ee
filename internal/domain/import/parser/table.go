package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Header vocabularies for positional tables. Matching is a case-insensitive
// substring test; the first candidate found anywhere in the header wins.
var (
	dateHeaderNames        = []string{"data", "lançamento", "dt"}
	descriptionHeaderNames = []string{"descri", "hist", "texto", "lançamento"}
	amountHeaderNames      = []string{"valor", "r$", "vlr"}
	creditHeaderNames      = []string{"crédito", "credito"}
	debitHeaderNames       = []string{"débito", "debito"}
	natureHeaderNames      = []string{"d/c", "dc", "tipo", "natureza"}
)

// tableDateLayouts are tried in order; the first success wins.
var tableDateLayouts = []string{"02/01/2006", "02/01/06", "2006-01-02"}

// TableRoles holds the resolved column index of each role, -1 when absent.
type TableRoles struct {
	Date        int
	Description int
	Amount      int
	Credit      int
	Debit       int
	Nature      int
}

// HasSplitAmount reports whether separate credit/debit columns exist.
func (r TableRoles) HasSplitAmount() bool {
	return r.Credit >= 0 || r.Debit >= 0
}

// Usable reports whether a row can be built: date, description and some
// amount column are required.
func (r TableRoles) Usable() bool {
	return r.Date >= 0 && r.Description >= 0 && (r.Amount >= 0 || r.HasSplitAmount())
}

// ResolveTableRoles maps header labels to roles.
func ResolveTableRoles(header []string) TableRoles {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(cleanCell(h))
	}
	find := func(names []string) int {
		for _, cand := range names {
			for i, h := range lower {
				if strings.Contains(h, cand) {
					return i
				}
			}
		}
		return -1
	}
	return TableRoles{
		Date:        find(dateHeaderNames),
		Description: find(descriptionHeaderNames),
		Amount:      find(amountHeaderNames),
		Credit:      find(creditHeaderNames),
		Debit:       find(debitHeaderNames),
		Nature:      find(natureHeaderNames),
	}
}

// RowsFromTable converts a positional table (header plus body) into canonical
// date/description/amount rows. Rows without a parseable date, a description
// or an amount are dropped, as are repeated header rows.
func RowsFromTable(header []string, body [][]string) [][]string {
	roles := ResolveTableRoles(header)
	if roles.Date < 0 || roles.Description < 0 {
		return nil
	}
	headerDesc := strings.ToLower(cleanCell(header[roles.Description]))

	var rows [][]string
	for _, r := range body {
		date, ok := parseTableDate(cell(r, roles.Date))
		if !ok {
			continue
		}

		desc := cell(r, roles.Description)
		if desc == "" {
			continue
		}
		if l := strings.ToLower(desc); l == headerDesc || l == "descrição" {
			continue
		}

		amount, ok := tableAmount(r, roles)
		if !ok {
			continue
		}

		rows = append(rows, []string{date.Format(DateLayout), desc, money.FormatPlain(amount)})
	}
	return rows
}

// tableAmount applies the credit/debit rules: credit minus debit when split
// columns exist (single amount column if both cells are empty), otherwise
// the amount column negated for rows flagged as debit.
func tableAmount(r []string, roles TableRoles) (decimal.Decimal, bool) {
	if roles.HasSplitAmount() {
		credit, hasCredit := money.ParseAmount(cell(r, roles.Credit))
		debit, hasDebit := money.ParseAmount(cell(r, roles.Debit))
		if !hasCredit && !hasDebit {
			if roles.Amount >= 0 {
				return money.ParseAmount(cell(r, roles.Amount))
			}
			return decimal.Zero, true
		}
		return credit.Sub(debit), true
	}

	amount, ok := money.ParseAmount(cell(r, roles.Amount))
	if !ok {
		return decimal.Decimal{}, false
	}
	nature := strings.ToUpper(cell(r, roles.Nature))
	if strings.HasPrefix(nature, "D") && amount.IsPositive() {
		amount = amount.Neg()
	}
	return amount, true
}

func parseTableDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range tableDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cell returns the trimmed value at idx, or "" when idx is absent or out of
// range for a short row.
func cell(r []string, idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return cleanCell(r[idx])
}
