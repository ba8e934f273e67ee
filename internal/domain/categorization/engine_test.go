package categorization

import (
	"testing"

	"github.com/FACorreiaa/statement-analyzer/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_CategorizeDefaults(t *testing.T) {
	rs := Default()

	tests := []struct {
		description string
		want        string
	}{
		{"PIX RECEBIDO JOAO", "Entradas"},
		{"PIX CRED MARIA SILVA", "Entradas"},
		{"PIX ENVIADO MARIA", "Transferências"},
		{"SALÁRIO EMPRESA X", "Entradas"},
		{"ESTORNO COMPRA LOJA", "Ajustes/Entradas"},
		{"TRANSFERÊNCIA ENVIADA", "Transferências"},
		{"UBER EATS LANCHES", "Alimentação"},
		{"UBER TRIP SAO PAULO", "Transporte"},
		{"Táxi aeroporto", "Transporte"},
		{"SUPERMERCADO EXTRA", "Mercado"},
		{"POSTO IPIRANGA", "Combustível"},
		{"DROGASIL 123", "Saúde"},
		{"NETFLIX.COM", "Assinaturas"},
		{"ALUGUEL APTO", "Moradia"},
		{"TARIFA PACOTE SERVICOS", "Tarifas Bancárias"},
		{"DARF IRPF", "Impostos/Taxas"},
		{"XPTO LTDA", "Outros"},
		{"", "Outros"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.Categorize(tt.description))
		})
	}
}

func TestRuleSet_DefaultsMatchWholeWords(t *testing.T) {
	rs := Default()

	tests := []struct {
		description string
		want        string
	}{
		{"TIM CELULAR", "Telefonia/Internet"},
		{"TIMBAUBA MATERIAIS", "Outros"},
		{"OI FIBRA", "Telefonia/Internet"},
		{"MOINHO PADARIA", "Outros"},
		{"POSTO BR 101", "Combustível"},
		{"MENSALIDADE ABR", "Outros"},
		{"BB SEGUROS", "Bancário/Taxas"},
		{"DOBBY PET SHOP", "Outros"},
		{"BANCO INTER", "Bancário/Taxas"},
		{"INTERNACIONAL FC", "Outros"},
		{"CAIXA ECONOMICA", "Bancário/Taxas"},
		{"C6 BANK", "Bancário/Taxas"},
		{"TAXI COMUM", "Transporte"},
		{"PIX RECEBIDO", "Entradas"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.Categorize(tt.description))
		})
	}
}

func TestRuleSet_FirstMatchWins(t *testing.T) {
	rs, err := NewRuleSet([]CategoryRule{
		{Pattern: `uber`, Category: "First"},
		{Pattern: `uber\s*eats`, Category: "Second"},
	})
	require.NoError(t, err)

	assert.Equal(t, "First", rs.Categorize("UBER EATS"))
}

func TestRuleSet_CaseAndAccentInsensitive(t *testing.T) {
	rs, err := NewRuleSet([]CategoryRule{{Pattern: `credito`, Category: "Crédito"}})
	require.NoError(t, err)

	assert.Equal(t, "Crédito", rs.Categorize("CRÉDITO EM CONTA"))
	assert.Equal(t, "Crédito", rs.Categorize("crédito em conta"))
}

func TestRuleSet_NoCatchAllFallsBackToOutros(t *testing.T) {
	rs, err := NewRuleSet(ParseRules("PIX => Transferências"))
	require.NoError(t, err)

	assert.Equal(t, "Transferências", rs.Categorize("PIX QRS"))
	assert.Equal(t, DefaultCategory, rs.Categorize("BOLETO"))
}

func TestRuleSet_Lookahead(t *testing.T) {
	rs, err := NewRuleSet([]CategoryRule{
		{Pattern: `Uber(?!\s*Eats)`, Category: "Transporte"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Transporte", rs.Categorize("UBER *TRIP"))
	assert.Equal(t, DefaultCategory, rs.Categorize("UBER EATS"))
}

func TestNewRuleSet_InvalidPatterns(t *testing.T) {
	t.Run("bad pattern is skipped and reported", func(t *testing.T) {
		rs, err := NewRuleSet([]CategoryRule{
			{Pattern: `(unclosed`, Category: "Broken"},
			{Pattern: `PIX`, Category: "Transferências"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "(unclosed")
		require.NotNil(t, rs)
		assert.Equal(t, 1, rs.Len())
		assert.Equal(t, "Transferências", rs.Categorize("PIX ENVIADO"))
	})

	t.Run("nothing compiles uses defaults", func(t *testing.T) {
		rs, err := NewRuleSet([]CategoryRule{{Pattern: `[`, Category: "Broken"}})
		require.Error(t, err)
		assert.Equal(t, len(DefaultRules()), rs.Len())
		assert.Equal(t, DefaultRules(), rs.Rules())
	})
}

func TestCategorize_DeterministicAndTotal(t *testing.T) {
	rules := DefaultRules()
	rs, err := NewRuleSet(rules)
	require.NoError(t, err)

	g := money.NewTestDataGeneratorWithSeed(11)
	for _, line := range g.Lines(100) {
		first := rs.Categorize(line.Description)
		assert.NotEmpty(t, first)
		assert.Equal(t, first, rs.Categorize(line.Description))
		assert.Equal(t, first, Categorize(line.Description, rules))
	}
}

func TestStripAccents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Crédito", "Credito"},
		{"AÇÃO", "ACAO"},
		{"Histórico", "Historico"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripAccents(tt.in))
		})
	}
}
