// Command extrato reads a bank statement export (CSV, OFX, PDF or XLSX),
// prints where the money came from and went to, and writes a normalized
// ledger next to a summary workbook.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	importservice "github.com/FACorreiaa/statement-analyzer/internal/domain/import/service"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/pkg/config"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

const (
	exitOK      = 0
	exitError   = 1
	exitWarning = 2
)

// debugRows bounds the raw preview shown with DEBUG=true.
const debugRows = 50

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuração inválida: %v\n", err)
		return exitError
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Observability.Level()}))
	out := newRenderer(stdout, money.NewFormatter(cfg.Display.CurrencySymbol))

	if len(args) == 0 {
		out.info("Envie um extrato para começar: extrato <arquivo.csv|.ofx|.pdf|.xlsx>")
		return exitOK
	}
	path := args[0]

	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		out.fail(fmt.Sprintf("Erro ao inicializar: %v", err))
		return exitError
	}
	defer deps.writeMetrics()

	data, err := os.ReadFile(path)
	if err != nil {
		out.fail(fmt.Sprintf("Erro ao ler o arquivo: %v", err))
		return exitError
	}

	result, err := deps.ImportService.Ingest(ctx, path, data)
	switch {
	case errors.Is(err, importservice.ErrUnsupportedFormat):
		out.fail(fmt.Sprintf("Formato não suportado (%v). Use CSV, OFX, PDF ou XLSX.", err))
		return exitError
	case errors.Is(err, importservice.ErrEmptyFile):
		out.warn("O arquivo está vazio. Nada para analisar.")
		return exitWarning
	case err != nil:
		out.fail(fmt.Sprintf("Erro ao processar o arquivo: %+v", err))
		return exitError
	}

	if cfg.Observability.Debug {
		out.debug(result, debugRows)
	}

	if !result.Recognized() {
		out.warn("Não foi possível identificar transações neste arquivo. " +
			"Tente exportar o extrato em OFX ou CSV, ou rode com DEBUG=true para ver as linhas lidas.")
		return exitWarning
	}

	rep := insights.BuildReport(result.Ledger, cfg.Display.TopN)
	out.summary(result, rep)

	if category := cfg.Display.DrillDownCategory; category != "" {
		out.drillDown(category, insights.DrillDown(result.Ledger, category))
	}
	if query := cfg.Display.SearchQuery; query != "" {
		out.search(query, insights.Search(result.Ledger, query))
	}

	files, err := deps.Exporter.Export(ctx, result.RunID, path, result.Ledger, rep)
	if err != nil {
		out.fail(fmt.Sprintf("Erro ao exportar: %v", err))
		return exitError
	}
	out.exports(deps.FileStorage, files)

	return exitOK
}

func (d *Dependencies) writeMetrics() {
	path := d.Config.Observability.MetricsFile
	if path == "" {
		return
	}
	if err := d.Metrics.WriteTextfile(path); err != nil {
		d.Logger.Warn("failed to write metrics", "path", path, "error", err)
	}
}
