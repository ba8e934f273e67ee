package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
	"github.com/FACorreiaa/statement-analyzer/pkg/storage"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Exporter saves the export files of an import run.
type Exporter struct {
	store     storage.Storage
	formatter *money.Formatter
	xlsx      bool
	rules     []categorization.CategoryRule
	logger    *slog.Logger
}

// NewExporter creates an exporter. The workbook is only written when xlsx is
// true; the ledger CSV is always written.
func NewExporter(store storage.Storage, formatter *money.Formatter, xlsx bool, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: store, formatter: formatter, xlsx: xlsx, logger: logger}
}

// WithRules also exports the category rules the run used, in the rules file
// format, so a run can be reproduced with CATEGORY_RULES_FILE.
func (e *Exporter) WithRules(rules []categorization.CategoryRule) *Exporter {
	e.rules = rules
	return e
}

// Export writes the normalized ledger (and the workbook and rules) for
// sourceName under runID and returns the run's stored files. A failed export
// removes the files it already saved.
func (e *Exporter) Export(ctx context.Context, runID uuid.UUID, sourceName string, l ledger.Ledger, r *insights.Report) ([]*storage.FileInfo, error) {
	base := baseName(sourceName)
	var saved []*storage.FileInfo

	save := func(name, contentType string, write func(*bytes.Buffer) error) error {
		var buf bytes.Buffer
		if err := write(&buf); err != nil {
			return err
		}
		info, err := e.store.Save(ctx, runID, name, contentType, &buf)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
		saved = append(saved, info)
		return nil
	}

	steps := []func() error{
		func() error {
			return save(base+"_normalizado.csv", contentTypeCSV, func(b *bytes.Buffer) error {
				return WriteLedgerCSV(b, l)
			})
		},
	}
	if e.xlsx {
		steps = append(steps, func() error {
			return save(base+"_resumo.xlsx", contentTypeXLSX, func(b *bytes.Buffer) error {
				return WriteWorkbook(b, l, r, e.formatter)
			})
		})
	}
	if len(e.rules) > 0 {
		steps = append(steps, func() error {
			return save(base+"_regras.txt", contentTypeText, func(b *bytes.Buffer) error {
				_, err := b.WriteString(categorization.FormatRules(e.rules) + "\n")
				return err
			})
		})
	}

	for _, step := range steps {
		if err := step(); err != nil {
			e.rollback(ctx, runID, saved)
			return nil, err
		}
	}

	files, err := e.store.List(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	e.logger.Debug("exports written",
		"run_id", runID,
		"files", len(files),
	)
	return files, nil
}

func (e *Exporter) rollback(ctx context.Context, runID uuid.UUID, saved []*storage.FileInfo) {
	for _, info := range saved {
		if err := e.store.Delete(ctx, runID, info.ID); err != nil {
			e.logger.Warn("failed to remove partial export",
				"run_id", runID,
				"file", info.Name,
				"error", err,
			)
		}
	}
}

func baseName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		return "extrato"
	}
	return base
}
