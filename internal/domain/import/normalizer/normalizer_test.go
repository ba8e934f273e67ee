package normalizer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/parser"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

func canonical(rows ...[]string) parser.RawTable {
	return parser.RawTable{
		Columns: []string{parser.ColumnDate, parser.ColumnDescription, parser.ColumnAmount},
		Rows:    rows,
	}
}

func TestNormalize_Canonical(t *testing.T) {
	result := Normalize(canonical(
		[]string{"15/03/2024", "PIX RECEBIDO JOAO", "1.500,00"},
		[]string{"16/03/2024", "UBER TRIP", "-18,40"},
	))

	assert.Empty(t, result.Unresolved())
	for _, res := range result.Resolutions {
		assert.Equal(t, ByName, res.By, res.Role)
	}
	require.Len(t, result.Ledger, 2)

	tx := result.Ledger[0]
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "PIX RECEBIDO JOAO", tx.Description)
	assert.True(t, decimal.RequireFromString("1500").Equal(tx.Amount))
	assert.Equal(t, 15, tx.Day)
	assert.Equal(t, "2024-03", tx.YearMonth)
	assert.Equal(t, "RECEBIDO JOAO", tx.Counterparty)

	assert.True(t, decimal.RequireFromString("-18.40").Equal(result.Ledger[1].Amount))
}

func TestNormalize_DropsInvalidRows(t *testing.T) {
	result := Normalize(canonical(
		[]string{"15/03/2024", "OK", "10,00"},
		[]string{"15/03/2024", "SEM VALOR", ""},
		[]string{"15/03/2024", "TRACO", "-"},
		[]string{"99/99/2024", "DATA RUIM", "5,00"},
		[]string{"", "SEM DATA", "5,00"},
		[]string{"15/03/2024"},
	))

	require.Len(t, result.Ledger, 1)
	assert.Equal(t, "OK", result.Ledger[0].Description)
	assert.Equal(t, 6, result.TotalRows)
	assert.Equal(t, 3, result.Dropped[DropInvalidAmount])
	assert.Equal(t, 2, result.Dropped[DropInvalidDate])
	assert.Equal(t, 5, result.DroppedRows())
}

func TestNormalize_Unresolved(t *testing.T) {
	result := Normalize(parser.RawTable{
		Columns: []string{"x", "y"},
		Rows:    [][]string{{"foo", "bar"}},
	})

	assert.Empty(t, result.Ledger)
	assert.ElementsMatch(t, []Role{RoleDate, RoleDescription, RoleAmount}, result.Unresolved())
}

func TestNormalize_Idempotent(t *testing.T) {
	gen := money.NewTestDataGeneratorWithSeed(99)
	table := canonical()
	for _, l := range gen.Lines(40) {
		table.Rows = append(table.Rows, l.Cells())
	}

	first := Normalize(table)
	require.Len(t, first.Ledger, 40)
	assert.Zero(t, first.DroppedRows())

	second := Normalize(Table(first.Ledger))
	assert.Equal(t, first.Ledger, second.Ledger)
	assert.Equal(t, table, Table(second.Ledger))
}

func TestResolveDateColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    [][]string
		want    Resolution
	}{
		{
			name:    "exact name ignoring case",
			columns: []string{"Histórico", "DATA", "Valor"},
			want:    Resolution{Role: RoleDate, Column: 1, Name: "DATA", Resolved: true, By: ByName},
		},
		{
			name:    "candidate order beats column order",
			columns: []string{"Transaction Date", "Date"},
			want:    Resolution{Role: RoleDate, Column: 1, Name: "Date", Resolved: true, By: ByName},
		},
		{
			name:    "content sniffing",
			columns: []string{"Ref", "Quando"},
			rows:    [][]string{{"A1", "2024-03-01"}},
			want:    Resolution{Role: RoleDate, Column: 1, Name: "Quando", Resolved: true, By: ByContent},
		},
		{
			name:    "nothing date-like",
			columns: []string{"a"},
			rows:    [][]string{{"x"}},
			want:    Resolution{Role: RoleDate, Column: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDateColumn(tt.columns, tt.rows))
		})
	}
}

func TestResolveDescriptionColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    Resolution
	}{
		{"accented name", []string{"Data", "Descrição", "Valor"}, Resolution{RoleDescription, 1, "Descrição", true, ByName}},
		{"memo", []string{"date", "memo"}, Resolution{RoleDescription, 1, "memo", true, ByName}},
		{"substring", []string{"Data", "Descrição do lançamento"}, Resolution{RoleDescription, 1, "Descrição do lançamento", true, BySubstring}},
		{"missing", []string{"Data", "Valor"}, Resolution{Role: RoleDescription, Column: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDescriptionColumn(tt.columns))
		})
	}
}

func TestResolveAmountColumn(t *testing.T) {
	t.Run("by name", func(t *testing.T) {
		res := ResolveAmountColumn([]string{"Data", "Valor"}, nil)
		assert.Equal(t, Resolution{RoleAmount, 1, "Valor", true, ByName}, res)
	})

	t.Run("last numeric column wins", func(t *testing.T) {
		columns := []string{"Date", "Memo", "Debit", "Balance"}
		rows := [][]string{
			{"01/03/2024", "A", "-10,00", "1.000,00"},
			{"02/03/2024", "B", "-5,50", "994,50"},
		}
		date := ResolveDateColumn(columns, rows)
		desc := ResolveDescriptionColumn(columns)

		res := ResolveAmountColumn(columns, rows, date, desc)
		assert.Equal(t, 3, res.Column)
		assert.Equal(t, ByContent, res.By)
	})

	t.Run("claimed columns are skipped", func(t *testing.T) {
		columns := []string{"Quando", "Código", "Quanto"}
		rows := [][]string{
			{"20240301", "1234", "x"},
			{"20240302", "5678", "y"},
		}
		claimed := Resolution{Role: RoleDate, Column: 0, Resolved: true}

		res := ResolveAmountColumn(columns, rows, claimed)
		assert.Equal(t, 1, res.Column)
	})

	t.Run("needs more than sixty percent", func(t *testing.T) {
		rows := [][]string{{"1,00"}, {"abc"}, {"2,00"}, {"def"}, {"ghi"}}
		res := ResolveAmountColumn([]string{"Quanto"}, rows)
		assert.False(t, res.Resolved)
	})

	t.Run("no rows", func(t *testing.T) {
		assert.False(t, ResolveAmountColumn([]string{"Quanto"}, nil).Resolved)
	})
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		ok    bool
	}{
		{"05/03/2024", true},
		{"5/3/2024", true},
		{"05/03/24", true},
		{"05-03-2024", true},
		{"05.03.2024", true},
		{"2024-03-05", true},
		{"2024/03/05", true},
		{"20240305", true},
		{"05/03/2024 14:30", true},
		{"2024-03-05T14:30:00Z", true},
		{"05/03/2024 SALDO", true},
		{"\u00a005/03/2024 ", true},
		{"", false},
		{"31/02/2024", false},
		{"março", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, want, got)
			}
		})
	}
}
