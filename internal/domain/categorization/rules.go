package categorization

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultCategory is assigned when no rule matches.
const DefaultCategory = "Outros"

// ruleSeparator splits a rule line into pattern and category.
const ruleSeparator = "=>"

// CategoryRule maps a case-insensitive regular expression to a category.
// Rules are evaluated in list order and the first match wins.
type CategoryRule struct {
	Pattern  string
	Category string
}

// defaultRules go from specific to generic and end in a catch-all.
var defaultRules = []CategoryRule{
	{`\b(CASHBACK|ESTORNO)\b`, "Ajustes/Entradas"},
	{`\bPIX\s*(RECEB|CRED|ENTR)\w*`, "Entradas"},
	{`\bSal(á|a)rio\b|Proventos|Rendimento|Dep(ó|o)sito|Receb\.`, "Entradas"},
	{`\bPIX\b`, "Transferências"},
	{`\bTED|DOC|TRANSFER(Ê|E)NCIA\b`, "Transferências"},
	{`IFood|iFood|Rappi|Uber\s*Eats`, "Alimentação"},
	{`Mercado\s*Livre|Carrefour|Assa(í|i)|Atacad(ã|a)o|Supermercado|Hiper`, "Mercado"},
	{`\bPosto\b|Combust(í|i)vel|Shell|Ipiranga|\bBR\b`, "Combustível"},
	{`Uber(?!\s*Eats)|99\s?Pop|T(á|a)xi`, "Transporte"},
	{`Farm(á|a)cia|Drogasil|Pague\s*Menos|Drogaria`, "Saúde"},
	{`Brisanet|Vivo|Claro|\bTIM\b|\bOi\b`, "Telefonia/Internet"},
	{`Netflix|Spotify|YouTube|Prime|Disney`, "Assinaturas"},
	{`Aluguel|Imobili(á|a)ria`, "Moradia"},
	{`\b(Anuidade|Tarifa|Pacote\s*Servi(ç|c)os)\b`, "Tarifas Bancárias"},
	{`\bDARF\b|\bGPS\b|\bSEFAZ\b|Imposto`, "Impostos/Taxas"},
	{`\b(CART(Ã|A)O|DEB(IT|IT.)|PAGTO\s*CART|\bCOMPRA\b)`, "Cartão/Débito"},
	{`\bCEF\b|\bCAIXA\b|\bBB\b|Bradesco|Ita(u|ú)|Santander|Nubank|\bInter\b|\bC6\b`, "Bancário/Taxas"},
	{`.*`, DefaultCategory},
}

// DefaultRules returns a copy of the built-in rule list.
func DefaultRules() []CategoryRule {
	rules := make([]CategoryRule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

// ParseRules reads "PATTERN => CATEGORY" lines. Only the first separator
// splits a line, so patterns may not contain "=>" but categories may.
// Lines without a separator or with an empty side are ignored. When nothing
// usable is found the default rules are returned.
func ParseRules(text string) []CategoryRule {
	var rules []CategoryRule
	for _, line := range strings.Split(text, "\n") {
		pattern, category, ok := strings.Cut(line, ruleSeparator)
		if !ok {
			continue
		}
		pattern = strings.TrimSpace(pattern)
		category = strings.TrimSpace(category)
		if pattern == "" || category == "" {
			continue
		}
		rules = append(rules, CategoryRule{Pattern: pattern, Category: category})
	}

	if len(rules) == 0 {
		return DefaultRules()
	}
	return rules
}

// FormatRules renders rules in the same line format ParseRules accepts.
func FormatRules(rules []CategoryRule) string {
	var b strings.Builder
	for i, r := range rules {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s", r.Pattern, ruleSeparator, r.Category)
	}
	return b.String()
}

// LoadRulesFile reads a rules file. An empty path or a missing file yields
// the default rules; any other read error is returned.
func LoadRulesFile(path string) ([]CategoryRule, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRules(), nil
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	return ParseRules(string(data)), nil
}
