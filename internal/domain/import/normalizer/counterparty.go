// Package normalizer turns raw statement tables into the canonical ledger.
// counterparty.go derives a grouping key from free-text descriptions.
package normalizer

import (
	"regexp"
	"strings"
)

// maxCounterpartyRunes bounds the derived counterparty key.
const maxCounterpartyRunes = 60

var (
	// Transaction-kind words that say how money moved, not who was on the other side.
	noiseWords = regexp.MustCompile(`\b(PIX|TED|DOC|PAGAMENTO|COMPRA|DEBITO|DÉBITO|CR[EÉ]DITO|LAN(Ç|C)TO|TRANSFER[ÊE]NCIA)\b`)

	// Terminal/reference numbers at the end (e.g., "123456")
	trailingReference = regexp.MustCompile(`\s+\d{4,}$`)

	// Date patterns at the end (e.g., "12/01")
	trailingDate = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}/?$`)

	whitespace = regexp.MustCompile(`\s+`)
)

// Counterparty normalizes a description into the key used to group origins
// and destinations: upper-cased, transaction-kind words removed, trailing
// references dropped, whitespace collapsed and cut to 60 characters.
func Counterparty(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}

	result := strings.ToUpper(description)
	result = noiseWords.ReplaceAllString(result, " ")
	result = whitespace.ReplaceAllString(result, " ")
	result = strings.TrimSpace(result)

	result = trailingReference.ReplaceAllString(result, "")
	result = trailingDate.ReplaceAllString(result, "")
	result = strings.TrimSpace(result)

	r := []rune(result)
	if len(r) > maxCounterpartyRunes {
		result = strings.TrimSpace(string(r[:maxCounterpartyRunes]))
	}
	return result
}
