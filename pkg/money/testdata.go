package money

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic bank statement data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// ============================================================================
// Statement Line Generation
// ============================================================================

// StatementLine is one generated movement as a bank would print it.
type StatementLine struct {
	ID          uuid.UUID
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

// Cells renders the line as CSV cells in statement notation.
func (l StatementLine) Cells() []string {
	return []string{l.Date.Format("02/01/2006"), l.Description, FormatPlain(l.Amount)}
}

var debitDescriptions = []string{
	"COMPRA CARTAO PADARIA %s",
	"PIX ENVIADO %s",
	"PAGAMENTO BOLETO %s",
	"UBER TRIP %s",
	"IFOOD %s",
	"SUPERMERCADO %s",
	"POSTO SHELL %s",
	"DROGARIA %s",
	"TARIFA PACOTE SERVICOS",
	"NETFLIX.COM",
}

var creditDescriptions = []string{
	"PIX RECEBIDO %s",
	"TED RECEBIDA %s",
	"SALARIO %s",
	"ESTORNO COMPRA %s",
}

// Line generates a single random statement line inside the last year.
func (g *TestDataGenerator) Line() StatementLine {
	if g.faker.Number(0, 3) == 0 {
		return g.CreditLine()
	}
	return g.DebitLine()
}

// DebitLine generates an outgoing movement between R$ 1,00 and R$ 500,00.
func (g *TestDataGenerator) DebitLine() StatementLine {
	return StatementLine{
		ID:          uuid.New(),
		Date:        g.date(),
		Description: g.describe(debitDescriptions),
		Amount:      g.RandomAmount(100, 50000).Neg(),
	}
}

// CreditLine generates an incoming movement between R$ 50,00 and R$ 8.000,00.
func (g *TestDataGenerator) CreditLine() StatementLine {
	return StatementLine{
		ID:          uuid.New(),
		Date:        g.date(),
		Description: g.describe(creditDescriptions),
		Amount:      g.RandomAmount(5000, 800000),
	}
}

// Lines generates count random statement lines.
func (g *TestDataGenerator) Lines(count int) []StatementLine {
	lines := make([]StatementLine, count)
	for i := 0; i < count; i++ {
		lines[i] = g.Line()
	}
	return lines
}

// RandomAmount generates a positive decimal within a cent range.
func (g *TestDataGenerator) RandomAmount(minCents, maxCents int64) decimal.Decimal {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	cents := g.faker.Int64() % (maxCents - minCents + 1)
	if cents < 0 {
		cents = -cents
	}
	return New(minCents+cents, DefaultCurrency).ToDecimal()
}

// StatementCSV renders lines as a semicolon-separated export with a short
// metadata preamble, the way most Brazilian banks ship them.
func (g *TestDataGenerator) StatementCSV(lines []StatementLine) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Agência: %04d;Conta: %05d-%d\n", g.faker.Number(1, 9999), g.faker.Number(1, 99999), g.faker.Number(0, 9))
	b.WriteString("\n")
	b.WriteString("Data;Descrição;Valor\n")
	for _, l := range lines {
		b.WriteString(strings.Join(l.Cells(), ";"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func (g *TestDataGenerator) date() time.Time {
	d := g.faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (g *TestDataGenerator) describe(templates []string) string {
	tpl := templates[g.faker.Number(0, len(templates)-1)]
	if !strings.Contains(tpl, "%s") {
		return tpl
	}
	return fmt.Sprintf(tpl, strings.ToUpper(g.faker.FirstName()+" "+g.faker.LastName()))
}
