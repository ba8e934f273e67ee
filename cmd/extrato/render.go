package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	importservice "github.com/FACorreiaa/statement-analyzer/internal/domain/import/service"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
	"github.com/FACorreiaa/statement-analyzer/pkg/storage"
)

// renderer prints the terminal report. Colors are applied to whole lines
// only; tabwriter counts escape codes as width.
type renderer struct {
	w io.Writer
	f *money.Formatter

	title   *color.Color
	muted   *color.Color
	good    *color.Color
	bad     *color.Color
	caution *color.Color
}

func newRenderer(w io.Writer, f *money.Formatter) *renderer {
	return &renderer{
		w:       w,
		f:       f,
		title:   color.New(color.FgCyan, color.Bold),
		muted:   color.New(color.Faint),
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
		caution: color.New(color.FgYellow, color.Bold),
	}
}

func (r *renderer) info(msg string) {
	fmt.Fprintln(r.w, msg)
}

func (r *renderer) warn(msg string) {
	r.caution.Fprintln(r.w, "Aviso: "+msg)
}

func (r *renderer) fail(msg string) {
	r.bad.Fprintln(r.w, "Erro: "+msg)
}

func (r *renderer) section(name string) {
	fmt.Fprintln(r.w)
	r.title.Fprintln(r.w, name)
}

func (r *renderer) table(header string, rows [][]string) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, header+"\t")
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	tw.Flush()
}

func (r *renderer) summary(result *importservice.Result, rep *insights.Report) {
	source := result.Source
	r.title.Fprintf(r.w, "Extrato %s\n", filepath.Base(result.Filename))
	r.muted.Fprintf(r.w, "formato %s, lido por %s, execução %s\n", result.Format, source, result.RunID)

	t := rep.Totals
	r.section("Resumo")
	fmt.Fprintf(r.w, "Movimentos: %d\n", t.Count)
	r.good.Fprintf(r.w, "Entradas:   %s (%d)\n", r.f.Format(t.Inflow), t.InflowCount)
	r.bad.Fprintf(r.w, "Saídas:     %s (%d)\n", r.f.Format(t.Outflow), t.OutflowCount)
	net := r.good
	if t.Net.IsNegative() {
		net = r.bad
	}
	net.Fprintf(r.w, "Saldo:      %s\n", r.f.Format(t.Net))

	if dropped := droppedTotal(result); dropped > 0 {
		r.muted.Fprintf(r.w, "%d linhas ignoradas (data ou valor inválido)\n", dropped)
	}

	r.groups("Principais origens", "Origem", rep.TopOrigins)
	r.groups("Principais destinos", "Destino", rep.TopDestinations)
	r.groups("Saídas por categoria", "Categoria", rep.OutflowByCategory)
	r.groups("Entradas por categoria", "Categoria", rep.InflowByCategory)
	r.months(rep.Months)

	if highlights := insights.Highlights(rep, r.f); len(highlights) > 0 {
		r.section("Destaques")
		for _, h := range highlights {
			fmt.Fprintf(r.w, "- %s\n", h)
		}
	}

	if len(result.Quality.Issues) > 0 {
		r.section("Qualidade da importação")
		for _, issue := range result.Quality.Issues {
			r.muted.Fprintf(r.w, "- %s (%d): %s\n", issue.Type, issue.AffectedRows, issue.Suggestion)
		}
	}

	r.muted.Fprintf(r.w, "\nCategorias para detalhar (DRILLDOWN_CATEGORY): %s\n", strings.Join(rep.Categories, ", "))
}

func (r *renderer) groups(title, label string, groups []insights.Group) {
	if len(groups) == 0 {
		return
	}
	r.section(title)
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Key, r.f.Format(g.Total), fmt.Sprint(g.Count)})
	}
	r.table(label+"\tTotal\tMovimentos", rows)
}

func (r *renderer) months(months []insights.MonthSummary) {
	if len(months) == 0 {
		return
	}
	r.section("Por mês")
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			m.YearMonth,
			r.f.Format(m.Inflow),
			r.f.Format(m.Outflow),
			r.f.Format(m.Net),
			r.f.Format(m.RunningNet),
		})
	}
	r.table("Mês\tEntradas\tSaídas\tSaldo\tAcumulado", rows)
}

func (r *renderer) transactions(l ledger.Ledger) {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{
			t.Date.Format("02/01/2006"),
			t.Description,
			r.f.Format(t.Amount),
			t.Category,
		})
	}
	r.table("Data\tDescrição\tValor\tCategoria", rows)
}

func (r *renderer) drillDown(category string, l ledger.Ledger) {
	r.section(fmt.Sprintf("Detalhe da categoria %q", category))
	if len(l) == 0 {
		r.muted.Fprintln(r.w, "Nenhum movimento nesta categoria.")
		return
	}
	r.transactions(l)
}

func (r *renderer) search(query string, l ledger.Ledger) {
	r.section(fmt.Sprintf("Busca por %q", query))
	if len(l) == 0 {
		r.muted.Fprintln(r.w, "Nenhum movimento encontrado.")
		return
	}
	r.transactions(l)
}

func (r *renderer) debug(result *importservice.Result, limit int) {
	r.section("Depuração")
	for _, a := range result.Attempts {
		status := fmt.Sprintf("%d linhas", a.Rows)
		if a.Err != nil {
			status = a.Err.Error()
		}
		r.muted.Fprintf(r.w, "- %s: %s (%s)\n", a.Detector, status, a.Duration)
	}
	if len(result.Unresolved) > 0 {
		r.muted.Fprintf(r.w, "colunas não identificadas: %v\n", result.Unresolved)
	}

	head := result.RawTable.Head(limit)
	if len(head) == 0 {
		r.muted.Fprintln(r.w, "nenhuma linha extraída")
		return
	}
	r.muted.Fprintf(r.w, "primeiras %d de %d linhas brutas:\n", len(head), len(result.RawTable.Rows))
	r.table(strings.Join(result.RawTable.Columns, "\t"), head)
}

func (r *renderer) exports(store *storage.LocalStorage, files []*storage.FileInfo) {
	r.section("Arquivos gerados")
	for _, f := range files {
		fmt.Fprintf(r.w, "- %s\n", store.AbsPath(f))
	}
}

func droppedTotal(result *importservice.Result) int {
	n := 0
	for _, c := range result.Dropped {
		n += c
	}
	return n
}
