package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// generateStatementCSV creates a bank-style export with the given row count
func generateStatementCSV(rows int) []byte {
	gen := money.NewTestDataGeneratorWithSeed(42)
	return gen.StatementCSV(gen.Lines(rows))
}

// generateOFX creates an SGML OFX body with the given transaction count
func generateOFX(rows int) []byte {
	var b strings.Builder
	b.WriteString("OFXHEADER:100\nDATA:OFXSGML\nVERSION:102\n\n<OFX><BANKMSGSRSV1><STMTTRNRS><STMTRS><BANKTRANLIST>\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "<STMTTRN>\n<TRNTYPE>DEBIT\n<DTPOSTED>202403%02d\n<TRNAMT>-%d.%02d\n<MEMO>COMPRA %d\n</STMTTRN>\n",
			i%28+1, i%500, i%100, i)
	}
	b.WriteString("</BANKTRANLIST></STMTRS></STMTTRNRS></BANKMSGSRSV1></OFX>\n")
	return []byte(b.String())
}

// BenchmarkCSVDetector measures sniffing plus reading at several sizes
func BenchmarkCSVDetector(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	detector := NewCSVDetector()
	ctx := context.Background()

	for _, size := range sizes {
		data := generateStatementCSV(size)

		b.Run(fmt.Sprintf("CSV_%d_rows", size), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = detector.Detect(ctx, data)
			}
		})
	}
}

// BenchmarkDecodeText compares the decoding paths
func BenchmarkDecodeText(b *testing.B) {
	utf8Data := generateStatementCSV(1000)
	latin1Data, err := charmap.ISO8859_1.NewEncoder().Bytes(utf8Data)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("UTF8", func(b *testing.B) {
		b.SetBytes(int64(len(utf8Data)))
		for i := 0; i < b.N; i++ {
			_, _ = DecodeText(utf8Data)
		}
	})

	b.Run("Latin1", func(b *testing.B) {
		b.SetBytes(int64(len(latin1Data)))
		for i := 0; i < b.N; i++ {
			_, _ = DecodeText(latin1Data)
		}
	})
}

// BenchmarkOFXDetectors compares the structured parser with the regex fallback
func BenchmarkOFXDetectors(b *testing.B) {
	data := generateOFX(1000)
	ctx := context.Background()

	b.Run("Structured", func(b *testing.B) {
		detector := NewOFXDetector()
		for i := 0; i < b.N; i++ {
			_, _ = detector.Detect(ctx, data)
		}
	})

	b.Run("Regex", func(b *testing.B) {
		detector := NewOFXRegexDetector()
		for i := 0; i < b.N; i++ {
			_, _ = detector.Detect(ctx, data)
		}
	})
}

// BenchmarkRepairSplitDecimals measures the split-amount repair on wide rows
func BenchmarkRepairSplitDecimals(b *testing.B) {
	record := []string{"05/03/2024", "PIX ENVIADO", "1.500", "00", "12.345", "67"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := make([]string, len(record))
		copy(r, record)
		_ = repairSplitDecimals(r, 4)
	}
}

// BenchmarkTextLines measures the fixed line pattern over OCR-like output
func BenchmarkTextLines(b *testing.B) {
	lines := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		if i%3 == 0 {
			lines = append(lines, "SALDO ANTERIOR")
			continue
		}
		lines = append(lines, fmt.Sprintf("%02d/03/2024 COMPRA CARTAO %d -1.%03d,%02d", i%28+1, i, i%1000, i%100))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ParseTextLines(lines)
	}
}
