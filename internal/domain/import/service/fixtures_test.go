package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
)

const testDataDir = "testdata"

// TestIngest_BankExports runs real-world shaped exports end to end.
func TestIngest_BankExports(t *testing.T) {
	tests := []struct {
		file       string
		format     string
		source     string
		categories []string
		dropped    map[normalizer.DropReason]int
	}{
		{
			// Latin-1, preamble, balance column and an opening-balance line
			file:       "bb_marco.csv",
			format:     FormatCSV,
			source:     "csv",
			categories: []string{"Entradas", "Mercado", "Assinaturas"},
			dropped:    map[normalizer.DropReason]int{normalizer.DropInvalidAmount: 1},
		},
		{
			file:       "nubank_abril.txt",
			format:     FormatCSV,
			source:     "csv",
			categories: []string{"Combustível", "Saúde", "Transferências"},
		},
		{
			file:       "itau_marco.ofx",
			format:     FormatOFX,
			source:     "ofx",
			categories: []string{"Alimentação", "Entradas"},
		},
	}

	svc := NewImportService(categorization.Default(), nil)

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(testDataDir, tt.file))
			require.NoError(t, err)

			result, err := svc.Ingest(context.Background(), tt.file, data)
			require.NoError(t, err)
			require.True(t, result.Recognized())

			assert.Equal(t, tt.format, result.Format)
			assert.Equal(t, tt.source, result.Source)
			assert.Empty(t, result.Unresolved)

			var categories []string
			for _, tx := range result.Ledger {
				categories = append(categories, tx.Category)
			}
			assert.Equal(t, tt.categories, categories)

			for reason, want := range tt.dropped {
				assert.Equal(t, want, result.Dropped[reason], reason)
			}
		})
	}
}
