package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"brazilian grouped", "1.500,00", "1500", true},
		{"currency symbol", "R$ 1.234,56", "1234.56", true},
		{"negative", "-45,90", "-45.9", true},
		{"negative with symbol", "-R$ 29,90", "-29.9", true},
		{"trailing minus", "45,90-", "-45.9", true},
		{"integer", "1500", "1500", true},
		{"nbsp", "1\u00a0234,00", "1234", true},
		{"spaces", "  12,5  ", "12.5", true},
		{"zero", "0,00", "0", true},
		{"empty", "", "0", false},
		{"blank", "   ", "0", false},
		{"nan", "NaN", "0", false},
		{"none", "None", "0", false},
		{"dash", "-", "0", false},
		{"text only", "abc", "0", false},
		{"two minus", "1-2", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseAmount_RoundTrip(t *testing.T) {
	g := NewTestDataGeneratorWithSeed(99)
	for i := 0; i < 200; i++ {
		d := g.RandomAmount(-1000000, 1000000)
		got, ok := ParseAmount(FormatPlain(d))
		assert.True(t, ok)
		assert.True(t, d.Equal(got), "round trip of %s gave %s", d, got)
	}
}

func TestLooksNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1.500,00", true},
		{"-45,90", true},
		{"R$ 12,00", true},
		{"1500", true},
		{"45.90", true},
		{"15/03/2024", false},
		{"2024-03-15", false},
		{"PIX RECEBIDO", false},
		{"", false},
		{"12,00 D", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksNumeric(tt.input))
		})
	}
}

func TestFormatPlain(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"-45.9", "-45,90"},
		{"1500", "1500,00"},
		{"0", "0,00"},
		{"0.005", "0,005"},
		{"-10.005", "-10,005"},
		{"12.3456", "12,3456"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d := decimal.RequireFromString(tt.amount)
			got := FormatPlain(d)
			assert.Equal(t, tt.want, got)

			back, ok := ParseAmount(got)
			assert.True(t, ok)
			assert.True(t, d.Equal(back), "round trip of %s gave %s", tt.amount, back)
		})
	}
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("")

	tests := []struct {
		amount string
		want   string
	}{
		{"1234.56", "R$ 1.234,56"},
		{"0", "R$ 0,00"},
		{"-45.9", "-R$ 45,90"},
		{"1000000", "R$ 1.000.000,00"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(decimal.RequireFromString(tt.amount)))
		})
	}

	assert.Equal(t, "US$ 10,00", NewFormatter("US$").Format(decimal.NewFromInt(10)))
}
