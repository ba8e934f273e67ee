// Package sniffer provides automatic detection of CSV/TSV statement layouts.
// It identifies delimiters and the header row below any bank preamble.
package sniffer

import (
	"encoding/csv"
	"errors"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// maxHeaderScanLines bounds how deep into the file the header is searched.
const maxHeaderScanLines = 20

// Common bank statement header keywords (Portuguese first, then English)
var headerKeywords = []string{
	"data", "data mov", "lançamento", "lancamento", "descrição", "descricao",
	"histórico", "historico", "documento", "valor", "débito", "debito",
	"crédito", "credito", "saldo", "categoria", "contraparte",
	"date", "description", "memo", "details", "amount", "debit", "credit",
	"balance", "category", "merchant", "payee",
}

// keywordMatcher is built once. Match mutates per-node counters, so calls
// are serialized.
var (
	keywordMatcher = ahocorasick.NewStringMatcher(headerKeywords)
	matcherMu      sync.Mutex
)

// delimiters in order of preference on ties
var delimiters = []rune{';', '\t', ',', '|'}

// FileConfig holds the detected layout of a CSV/TSV file
type FileConfig struct {
	Delimiter rune     // The field delimiter (';', ',', '\t', '|')
	SkipLines int      // Number of metadata lines before headers
	Headers   []string // Detected header names
}

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find data headers")
)

// DetectConfig analyzes decoded CSV/TSV text and returns its configuration
func DetectConfig(text string) (*FileConfig, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}

	lines := Lines(text)
	delimiter, skipLines, err := findHeaderRow(lines)
	if err != nil {
		return nil, err
	}

	headerLine := cleanLine(lines[skipLines], skipLines == 0)
	reader := csv.NewReader(strings.NewReader(headerLine))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}

	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter: delimiter,
		SkipLines: skipLines,
		Headers:   headers,
	}, nil
}

// Lines splits text into lines, tolerating CRLF and a leading BOM.
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	if len(lines) > 0 {
		lines[0] = strings.TrimPrefix(lines[0], "\uFEFF")
	}
	return lines
}

// KeywordHits counts the distinct header keywords found in a line.
func KeywordHits(line string) int {
	matcherMu.Lock()
	defer matcherMu.Unlock()
	return len(keywordMatcher.Match([]byte(strings.ToLower(line))))
}

// findHeaderRow locates the header row and its delimiter. The line with the
// most distinct keywords wins, earliest first on ties. Without keywords the
// line with the most delimiters is used.
func findHeaderRow(lines []string) (rune, int, error) {
	fallbackIndex := -1
	fallbackDelimiter := rune(0)
	fallbackCount := 0

	keywordIndex := -1
	keywordDelimiter := rune(0)
	keywordHits := 0

	for i, line := range lines {
		if i >= maxHeaderScanLines {
			break
		}

		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}

		delimiter, count := detectDelimiter(line)
		if count < 1 {
			continue
		}

		if hits := KeywordHits(line); hits > keywordHits {
			keywordHits = hits
			keywordDelimiter = delimiter
			keywordIndex = i
		}

		if count > fallbackCount {
			fallbackCount = count
			fallbackDelimiter = delimiter
			fallbackIndex = i
		}
	}

	if keywordIndex >= 0 {
		return keywordDelimiter, keywordIndex, nil
	}

	if fallbackIndex >= 0 && fallbackCount >= 2 {
		return fallbackDelimiter, fallbackIndex, nil
	}

	return 0, 0, ErrNoHeadersFound
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

// detectDelimiter picks the candidate delimiter appearing most often outside
// double quotes.
func detectDelimiter(line string) (rune, int) {
	unquoted := stripQuoted(line)
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(unquoted, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

func stripQuoted(line string) string {
	var b strings.Builder
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			b.WriteRune(r)
		}
	}
	return b.String()
}
