// Package service provides the import orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/parser"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
	"github.com/FACorreiaa/statement-analyzer/pkg/metrics"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no chain handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyFile is returned for zero-byte input.
	ErrEmptyFile = errors.New("file is empty")
)

// Source formats, named after the chain that handles them.
const (
	FormatCSV  = "csv"
	FormatOFX  = "ofx"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var tracer = otel.Tracer("github.com/FACorreiaa/statement-analyzer/internal/domain/import/service")

// ImportIssue represents a data quality issue found during import
type ImportIssue struct {
	Type         string `json:"type"`
	AffectedRows int    `json:"affected_rows"`
	Suggestion   string `json:"suggestion"`
}

// Quality contains computed quality metrics for an import
type Quality struct {
	RowQualityScore    float64 // share of raw rows that reached the ledger
	CategorizationRate float64 // share of transactions outside the default category
	EarliestDate       *time.Time
	LatestDate         *time.Time
	Issues             []ImportIssue
}

// Result is everything an import produced, including why rows were lost.
type Result struct {
	RunID      uuid.UUID
	Filename   string
	Format     string
	Source     string // detector that produced the table, "" when none did
	RawTable   parser.RawTable
	Ledger     ledger.Ledger
	Dropped    map[normalizer.DropReason]int
	Attempts   []parser.Attempt
	Unresolved []normalizer.Role
	Quality    Quality
}

// Recognized reports whether at least one transaction was extracted.
func (r *Result) Recognized() bool {
	return len(r.Ledger) > 0
}

type formatChain struct {
	format     string
	detectors  []parser.Detector
	extensions []string
}

// ImportService turns one statement file into a categorized ledger.
type ImportService struct {
	rules          *categorization.RuleSet
	creditPositive bool
	chains         map[string]formatChain // keyed by extension
	metrics        *metrics.Metrics     // Optional: nil disables counters
	logger         *slog.Logger
}

// NewImportService creates a new import service with the CSV, OFX, PDF and
// XLSX chains. OCR is only part of the PDF chain after WithOCR.
func NewImportService(rules *categorization.RuleSet, logger *slog.Logger) *ImportService {
	if rules == nil {
		rules = categorization.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &ImportService{
		rules:          rules,
		creditPositive: true,
		chains:         map[string]formatChain{},
		logger:         logger,
	}
	s.Register(FormatCSV, []string{".csv", ".txt"}, parser.NewCSVDetector())
	s.Register(FormatOFX, []string{".ofx", ".qfx"}, parser.NewOFXDetector(), parser.NewOFXRegexDetector())
	s.Register(FormatPDF, []string{".pdf"}, parser.NewPDFTableDetector(), parser.NewPDFTextDetector())
	s.Register(FormatXLSX, []string{".xlsx"}, parser.NewXLSXDetector())
	return s
}

// Register installs (or replaces) the detector chain for a format.
func (s *ImportService) Register(format string, extensions []string, detectors ...parser.Detector) *ImportService {
	fc := formatChain{format: format, detectors: detectors, extensions: extensions}
	for _, ext := range extensions {
		s.chains[strings.ToLower(ext)] = fc
	}
	return s
}

// WithCreditPositive sets the statement sign convention. When false the
// source signs are reversed and every amount is negated once.
func (s *ImportService) WithCreditPositive(creditPositive bool) *ImportService {
	s.creditPositive = creditPositive
	return s
}

// WithOCR appends the OCR strategy to the PDF chain.
func (s *ImportService) WithOCR(recognizer parser.Recognizer, timeout time.Duration) *ImportService {
	fc := s.chains[".pdf"]
	detectors := append(append([]parser.Detector{}, fc.detectors...), parser.NewOCRDetector(recognizer, timeout))
	return s.Register(FormatPDF, fc.extensions, detectors...)
}

// WithMetrics enables Prometheus counters.
func (s *ImportService) WithMetrics(m *metrics.Metrics) *ImportService {
	s.metrics = m
	return s
}

// Formats returns the supported extensions, sorted.
func (s *ImportService) Formats() []string {
	exts := make([]string, 0, len(s.chains))
	for ext := range s.chains {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Ingest extracts, normalizes and categorizes a statement. A file that
// yields nothing is not an error: the Result is returned with
// Recognized() == false and the attempts that were made.
func (s *ImportService) Ingest(ctx context.Context, filename string, data []byte) (*Result, error) {
	ctx, span := tracer.Start(ctx, "ImportService.Ingest", trace.WithAttributes(
		attribute.String("import.filename", filepath.Base(filename)),
		attribute.Int("import.bytes", len(data)),
	))
	defer span.End()

	start := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))
	fc, ok := s.chains[ext]
	if !ok {
		s.metrics.ObserveImport(ext, metrics.OutcomeUnsupported, 0, time.Since(start))
		err := fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(data) == 0 {
		s.metrics.ObserveImport(fc.format, metrics.OutcomeEmpty, 0, time.Since(start))
		span.SetStatus(codes.Error, ErrEmptyFile.Error())
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), ErrEmptyFile)
	}

	result := &Result{
		RunID:    uuid.New(),
		Filename: filename,
		Format:   fc.format,
	}
	span.SetAttributes(
		attribute.String("import.run_id", result.RunID.String()),
		attribute.String("import.format", fc.format),
	)

	table, source, attempts, err := s.extract(ctx, fc, data)
	result.Attempts = attempts
	if err != nil {
		s.metrics.ObserveImport(fc.format, metrics.OutcomeError, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return nil, fmt.Errorf("failed to extract %s: %w", filepath.Base(filename), err)
	}
	result.RawTable = table
	result.Source = source

	norm := s.normalize(ctx, table)
	result.Dropped = norm.Dropped
	result.Unresolved = norm.Unresolved()
	result.Ledger = s.categorize(ctx, norm.Ledger)
	result.Quality = computeQuality(norm, result.Ledger)

	outcome := metrics.OutcomeOK
	if !result.Recognized() {
		outcome = metrics.OutcomeEmpty
	}
	s.metrics.ObserveImport(fc.format, outcome, len(result.Ledger), time.Since(start))
	span.SetAttributes(
		attribute.String("import.source", source),
		attribute.Int("import.transactions", len(result.Ledger)),
	)

	s.logger.Info("statement imported",
		"run_id", result.RunID,
		"file", filepath.Base(filename),
		"format", fc.format,
		"source", source,
		"raw_rows", len(table.Rows),
		"transactions", len(result.Ledger),
		"dropped", norm.DroppedRows(),
		"duration", time.Since(start),
	)
	return result, nil
}

func (s *ImportService) extract(ctx context.Context, fc formatChain, data []byte) (parser.RawTable, string, []parser.Attempt, error) {
	ctx, span := tracer.Start(ctx, "ImportService.extract")
	defer span.End()

	chain := parser.NewChain(fc.format, s.logger, fc.detectors...).WithObserver(func(a parser.Attempt) {
		outcome := metrics.OutcomeOK
		switch {
		case a.Err != nil:
			outcome = metrics.OutcomeError
		case a.Rows == 0:
			outcome = metrics.OutcomeEmpty
		}
		s.metrics.ObserveAttempt(a.Detector, outcome)
		span.AddEvent("detector", trace.WithAttributes(
			attribute.String("detector", a.Detector),
			attribute.String("outcome", outcome),
			attribute.Int("rows", a.Rows),
		))
	})
	return chain.Run(ctx, data)
}

func (s *ImportService) normalize(ctx context.Context, table parser.RawTable) normalizer.Result {
	_, span := tracer.Start(ctx, "ImportService.normalize")
	defer span.End()

	norm := normalizer.Normalize(table)
	for reason, n := range norm.Dropped {
		s.metrics.ObserveDropped(string(reason), n)
		if n > 0 {
			s.logger.Debug("rows dropped", "reason", reason, "count", n)
		}
	}
	if unresolved := norm.Unresolved(); len(unresolved) > 0 && !table.Empty() {
		s.logger.Debug("columns not resolved",
			"columns", table.Columns,
			"roles", unresolved,
		)
	}
	span.SetAttributes(attribute.Int("normalize.dropped", norm.DroppedRows()))
	return norm
}

// categorize applies the sign convention once, then derives the sign label
// and category from the final amount.
func (s *ImportService) categorize(ctx context.Context, l ledger.Ledger) ledger.Ledger {
	_, span := tracer.Start(ctx, "ImportService.categorize")
	defer span.End()

	out := make(ledger.Ledger, len(l))
	for i, t := range l {
		if !s.creditPositive {
			t.Amount = t.Amount.Neg()
		}
		t.SignLabel = ledger.SignLabelFor(t.Amount)
		t.Category = s.rules.Categorize(t.Description)
		out[i] = t
	}
	return out
}

func computeQuality(norm normalizer.Result, l ledger.Ledger) Quality {
	q := Quality{}
	if norm.TotalRows > 0 {
		q.RowQualityScore = float64(len(l)) / float64(norm.TotalRows)
	}

	uncategorized := 0
	for i := range l {
		d := l[i].Date
		if q.EarliestDate == nil || d.Before(*q.EarliestDate) {
			q.EarliestDate = &d
		}
		if q.LatestDate == nil || d.After(*q.LatestDate) {
			q.LatestDate = &d
		}
		if l[i].Category == categorization.DefaultCategory {
			uncategorized++
		}
	}
	if len(l) > 0 {
		q.CategorizationRate = float64(len(l)-uncategorized) / float64(len(l))
	}

	if n := norm.Dropped[normalizer.DropInvalidDate]; n > 0 {
		q.Issues = append(q.Issues, ImportIssue{
			Type:         string(normalizer.DropInvalidDate),
			AffectedRows: n,
			Suggestion:   "Confira se as datas estão no formato DD/MM/AAAA",
		})
	}
	if n := norm.Dropped[normalizer.DropInvalidAmount]; n > 0 {
		q.Issues = append(q.Issues, ImportIssue{
			Type:         string(normalizer.DropInvalidAmount),
			AffectedRows: n,
			Suggestion:   "Linhas sem valor numérico (saldos, cabeçalhos repetidos) foram ignoradas",
		})
	}
	if uncategorized > 0 {
		q.Issues = append(q.Issues, ImportIssue{
			Type:         "uncategorized",
			AffectedRows: uncategorized,
			Suggestion:   "Adicione regras em CATEGORY_RULES_FILE para reduzir a categoria Outros",
		})
	}
	return q
}
