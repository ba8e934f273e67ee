package main

import (
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/parser"
	importservice "github.com/FACorreiaa/statement-analyzer/internal/domain/import/service"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/report"
	"github.com/FACorreiaa/statement-analyzer/pkg/config"
	"github.com/FACorreiaa/statement-analyzer/pkg/metrics"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
	"github.com/FACorreiaa/statement-analyzer/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config    *config.Config
	Logger    *slog.Logger
	Formatter *money.Formatter
	Metrics   *metrics.Metrics

	// Session rules, read once at startup
	Rules *categorization.RuleSet

	// Services
	ImportService *importservice.ImportService
	FileStorage   *storage.LocalStorage
	Exporter      *report.Exporter
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Formatter: money.NewFormatter(cfg.Display.CurrencySymbol),
		Metrics:   metrics.New(),
	}

	if err := deps.initRules(); err != nil {
		return nil, fmt.Errorf("failed to init rules: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initRules loads the category rules file, falling back to the built-in list
func (d *Dependencies) initRules() error {
	rules, err := categorization.LoadRulesFile(d.Config.Import.RulesFile)
	if err != nil {
		return err
	}

	d.Rules, err = categorization.NewRuleSet(rules)
	if d.Rules == nil {
		return err
	}
	if err != nil {
		d.Logger.Warn("some category rules were skipped",
			"file", d.Config.Import.RulesFile,
			"error", err,
		)
	}

	d.Logger.Debug("category rules loaded",
		"file", d.Config.Import.RulesFile,
		"rules", d.Rules.Len(),
	)
	return nil
}

// initServices initializes the import pipeline
func (d *Dependencies) initServices() error {
	d.ImportService = importservice.NewImportService(d.Rules, d.Logger).
		WithCreditPositive(d.Config.Import.CreditPositive).
		WithMetrics(d.Metrics)

	if d.Config.OCR.Enabled {
		recognizer := parser.NewTesseractRecognizer(
			d.Config.OCR.PdftoppmPath,
			d.Config.OCR.TesseractPath,
			d.Config.OCR.Language,
			d.Config.OCR.DPI,
		)
		if !recognizer.Available() {
			d.Logger.Debug("ocr binaries not found, scanned PDFs will not be read",
				"pdftoppm", recognizer.PdftoppmPath,
				"tesseract", recognizer.TesseractPath,
			)
		}
		d.ImportService.WithOCR(recognizer, d.Config.OCR.Timeout)
	}

	return nil
}

// initStorage prepares the export directory
func (d *Dependencies) initStorage() error {
	store, err := storage.New(&storage.Config{LocalPath: d.Config.Export.Dir})
	if err != nil {
		return err
	}

	d.FileStorage = store
	d.Exporter = report.NewExporter(store, d.Formatter, d.Config.Export.XLSX, d.Logger).
		WithRules(d.Rules.Rules())
	return nil
}
