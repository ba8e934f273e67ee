package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/sniffer"
)

var (
	integerPart  = regexp.MustCompile(`^-?(?:\d{1,3}(?:\.\d{3})+|\d+)$`)
	fractionPart = regexp.MustCompile(`^\d{2}$`)
)

// CSVDetector reads delimited text exports. Header row and delimiter are
// sniffed; any bank preamble above the header is skipped.
type CSVDetector struct{}

// NewCSVDetector creates a CSV detector.
func NewCSVDetector() *CSVDetector {
	return &CSVDetector{}
}

func (d *CSVDetector) Name() string { return "csv" }

// Detect decodes the bytes, locates the header and reads every data row.
func (d *CSVDetector) Detect(ctx context.Context, data []byte) (RawTable, error) {
	text, _ := DecodeText(data)

	cfg, err := sniffer.DetectConfig(text)
	if err != nil {
		return RawTable{}, parseError(d.Name(), "could not detect layout", err)
	}

	lines := sniffer.Lines(text)
	body := strings.Join(lines[cfg.SkipLines+1:], "\n")

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = cfg.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // Variable field count

	table := RawTable{Columns: cfg.Headers}
	for {
		if err := ctx.Err(); err != nil {
			return RawTable{}, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return RawTable{}, parseError(d.Name(), "read failed", err)
		}

		if blankRecord(record) {
			continue
		}

		record = repairSplitDecimals(record, len(cfg.Headers))
		for i := range record {
			record[i] = cleanCell(record[i])
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// repairSplitDecimals re-joins Brazilian amounts that an unquoted decimal
// comma split in two ("1.500" + "00" becomes "1.500,00"). It only merges
// while the row is wider than the header, scanning from the right where
// amounts usually sit.
func repairSplitDecimals(record []string, width int) []string {
	if width <= 0 {
		return record
	}
	for len(record) > width {
		merged := false
		for i := len(record) - 2; i >= 0; i-- {
			left := strings.TrimSpace(record[i])
			right := strings.TrimSpace(record[i+1])
			if integerPart.MatchString(left) && fractionPart.MatchString(right) {
				record[i] = left + "," + right
				record = append(record[:i+1], record[i+2:]...)
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}
	return record
}

func blankRecord(record []string) bool {
	for _, c := range record {
		if cleanCell(c) != "" {
			return false
		}
	}
	return true
}
