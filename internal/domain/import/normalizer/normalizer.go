package normalizer

import (
	"regexp"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/parser"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Role is a semantic column the ledger needs.
type Role string

const (
	RoleDate        Role = "date"
	RoleDescription Role = "description"
	RoleAmount      Role = "amount"
)

// ResolvedBy records which strategy picked a column.
type ResolvedBy string

const (
	ByName      ResolvedBy = "name"
	BySubstring ResolvedBy = "substring"
	ByContent   ResolvedBy = "content"
)

// DropReason explains why a raw row did not reach the ledger.
type DropReason string

const (
	DropInvalidDate   DropReason = "invalid_date"
	DropInvalidAmount DropReason = "invalid_amount"
)

// numericColumnThreshold is the share of numeric-looking cells a column needs
// before content sniffing treats it as the amount.
const numericColumnThreshold = 0.6

var (
	dateCandidates = []string{"data", "date", "Posting Date", "Transaction Date"}
	descCandidates = []string{"descricao", "description", "Memo", "Details", "Descrição", "Histórico", "Historico", "Texto"}
	amtCandidates  = []string{"valor", "amount", "Value"}

	descSubstrings = []string{"desc", "memo", "hist", "texto"}

	dateLike = regexp.MustCompile(`\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2}`)
)

// Resolution is the outcome of looking for one role in a table.
// Column is meaningful only when Resolved is true.
type Resolution struct {
	Role     Role
	Column   int
	Name     string
	Resolved bool
	By       ResolvedBy
}

func unresolved(role Role) Resolution {
	return Resolution{Role: role, Column: -1}
}

func resolved(role Role, idx int, name string, by ResolvedBy) Resolution {
	return Resolution{Role: role, Column: idx, Name: name, Resolved: true, By: by}
}

// Result is a normalized table plus the bookkeeping needed to explain it.
type Result struct {
	Ledger      ledger.Ledger
	Resolutions []Resolution
	Dropped     map[DropReason]int
	TotalRows   int
}

// Unresolved lists the roles that could not be mapped to a column.
func (r Result) Unresolved() []Role {
	var out []Role
	for _, res := range r.Resolutions {
		if !res.Resolved {
			out = append(out, res.Role)
		}
	}
	return out
}

// DroppedRows returns the number of rows discarded for any reason.
func (r Result) DroppedRows() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Normalize maps a raw table onto the canonical ledger. It never fails:
// unresolvable tables yield an empty ledger with Unresolved populated, and
// rows with an unparseable date or amount are dropped and counted.
func Normalize(table parser.RawTable) Result {
	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = strings.TrimSpace(c)
	}

	result := Result{
		Dropped:   map[DropReason]int{},
		TotalRows: len(table.Rows),
	}

	dateRes := ResolveDateColumn(columns, table.Rows)
	descRes := ResolveDescriptionColumn(columns)
	amtRes := ResolveAmountColumn(columns, table.Rows, dateRes, descRes)
	result.Resolutions = []Resolution{dateRes, descRes, amtRes}

	if !dateRes.Resolved || !descRes.Resolved || !amtRes.Resolved {
		return result
	}

	for _, row := range table.Rows {
		amount, ok := money.ParseAmount(cell(row, amtRes.Column))
		if !ok {
			result.Dropped[DropInvalidAmount]++
			continue
		}

		date, ok := ParseDate(cell(row, dateRes.Column))
		if !ok {
			result.Dropped[DropInvalidDate]++
			continue
		}

		desc := strings.TrimSpace(cell(row, descRes.Column))
		result.Ledger = append(result.Ledger, ledger.Transaction{
			Date:         date,
			Description:  desc,
			Amount:       amount,
			Day:          date.Day(),
			YearMonth:    date.Format(ledger.YearMonthLayout),
			Counterparty: Counterparty(desc),
		})
	}

	return result
}

// Table renders a ledger back into the canonical raw shape. Normalizing the
// result yields the same ledger.
func Table(l ledger.Ledger) parser.RawTable {
	table := parser.RawTable{Columns: []string{parser.ColumnDate, parser.ColumnDescription, parser.ColumnAmount}}
	for _, t := range l {
		table.Rows = append(table.Rows, []string{
			t.Date.Format(parser.DateLayout),
			t.Description,
			money.FormatPlain(t.Amount),
		})
	}
	return table
}

// ResolveDateColumn matches known date headers, then falls back to the first
// column holding any date-shaped value.
func ResolveDateColumn(columns []string, rows [][]string) Resolution {
	if idx := pickByName(columns, dateCandidates); idx >= 0 {
		return resolved(RoleDate, idx, columns[idx], ByName)
	}

	for idx := range columns {
		for _, row := range rows {
			if dateLike.MatchString(cell(row, idx)) {
				return resolved(RoleDate, idx, columns[idx], ByContent)
			}
		}
	}
	return unresolved(RoleDate)
}

// ResolveDescriptionColumn matches known description headers, then any
// header containing a description-like fragment.
func ResolveDescriptionColumn(columns []string) Resolution {
	if idx := pickByName(columns, descCandidates); idx >= 0 {
		return resolved(RoleDescription, idx, columns[idx], ByName)
	}

	for idx, c := range columns {
		lower := strings.ToLower(c)
		for _, frag := range descSubstrings {
			if strings.Contains(lower, frag) {
				return resolved(RoleDescription, idx, columns[idx], BySubstring)
			}
		}
	}
	return unresolved(RoleDescription)
}

// ResolveAmountColumn matches known amount headers, then picks the last
// column where more than 60% of the cells look numeric. Columns already
// claimed by the date or description are skipped.
func ResolveAmountColumn(columns []string, rows [][]string, claimed ...Resolution) Resolution {
	if idx := pickByName(columns, amtCandidates); idx >= 0 {
		return resolved(RoleAmount, idx, columns[idx], ByName)
	}
	if len(rows) == 0 {
		return unresolved(RoleAmount)
	}

	taken := map[int]bool{}
	for _, c := range claimed {
		if c.Resolved {
			taken[c.Column] = true
		}
	}

	best := -1
	for idx := range columns {
		if taken[idx] {
			continue
		}
		numeric := 0
		for _, row := range rows {
			if money.LooksNumeric(cell(row, idx)) {
				numeric++
			}
		}
		if float64(numeric)/float64(len(rows)) > numericColumnThreshold {
			best = idx
		}
	}

	if best < 0 {
		return unresolved(RoleAmount)
	}
	return resolved(RoleAmount, best, columns[best], ByContent)
}

// pickByName returns the first candidate (in candidate order) present in
// columns, compared case-insensitively.
func pickByName(columns []string, candidates []string) int {
	for _, cand := range candidates {
		for idx, c := range columns {
			if strings.EqualFold(c, cand) {
				return idx
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// dateLayouts are tried in order; day-first always wins over month-first.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate parses a day-first statement date. Time components are
// discarded; the result is midnight UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if s == "" {
		return time.Time{}, false
	}

	candidates := []string{s}
	if fields := strings.Fields(s); len(fields) > 1 {
		candidates = append(candidates, fields[0])
	}

	for _, c := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}
