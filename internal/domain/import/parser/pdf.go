package parser

import (
	"bytes"
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// defaultFontSize applies to runs whose size is unknown.
	defaultFontSize = 10.0
	// fallbackAdvance is the width of one glyph, in ems, for fonts without
	// a widths array (the standard 14 fonts may omit it).
	fallbackAdvance = 0.5
	// baselineTolerance is how far apart, in ems, two baselines may be and
	// still form one line.
	baselineTolerance = 0.3
	// wordGap and cellGap, in ems, separate glyphs into words and cells.
	wordGap = 0.15
	cellGap = 1.0
)

// textRun is a stretch of glyphs drawn back to back on one baseline. W is
// the advance reported by the font, zero when the font has no widths.
type textRun struct {
	X, Y, W float64
	Size    float64
	S       string
}

func (r textRun) size() float64 {
	if r.Size > 0 {
		return r.Size
	}
	return defaultFontSize
}

func (r textRun) end() float64 {
	if r.W > 0 {
		return r.X + r.W
	}
	return r.X + float64(utf8.RuneCountInString(r.S))*r.size()*fallbackAdvance
}

// textLine is a row of runs sharing a baseline, sorted left to right.
type textLine struct {
	Y    float64
	Runs []textRun
}

// layoutCell is a group of adjacent runs forming one table cell.
type layoutCell struct {
	X, End float64
	Text   string
}

func (c layoutCell) center() float64 {
	return (c.X + c.End) / 2
}

// readPDFPages returns the text lines of every page, top to bottom. Glyph
// positions come from the page content stream with the full text state
// applied (Td, TD, T*, Tm, TJ offsets, CTM).
func readPDFPages(data []byte) (pages [][]textLine, err error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, textLines(glyphRuns(page.Content().Text)))
	}
	return pages, nil
}

// glyphRuns joins consecutive glyphs into runs while each glyph starts where
// the previous one advanced to. The "\n" glyph emitted after TJ ends a run.
func glyphRuns(glyphs []pdf.Text) []textRun {
	var runs []textRun
	broken := true
	for _, g := range glyphs {
		if g.S == "\n" {
			broken = true
			continue
		}
		if n := len(runs); n > 0 && !broken {
			last := &runs[n-1]
			if sameBaseline(last.Y, g.Y, last.size()) && math.Abs(g.X-(last.X+last.W)) <= wordGap*last.size()/3 {
				last.S += g.S
				last.W += g.W
				continue
			}
		}
		runs = append(runs, textRun{X: g.X, Y: g.Y, W: g.W, Size: g.FontSize, S: g.S})
		broken = false
	}
	return runs
}

// textLines groups runs by baseline, top of the page first.
func textLines(runs []textRun) []textLine {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Y > runs[j].Y })

	var lines []textLine
	for _, r := range runs {
		if strings.TrimSpace(r.S) == "" {
			continue
		}
		if n := len(lines); n > 0 && sameBaseline(lines[n-1].Y, r.Y, r.size()) {
			lines[n-1].Runs = append(lines[n-1].Runs, r)
			continue
		}
		lines = append(lines, textLine{Y: r.Y, Runs: []textRun{r}})
	}
	for _, l := range lines {
		sort.SliceStable(l.Runs, func(i, j int) bool { return l.Runs[i].X < l.Runs[j].X })
	}
	return lines
}

func sameBaseline(a, b, size float64) bool {
	return math.Abs(a-b) <= baselineTolerance*size
}

// lineCells merges runs separated by less than one em into cells. Runs that
// almost touch are concatenated; wider gaps inside a cell become a space.
func lineCells(line textLine) []layoutCell {
	var cells []layoutCell
	for _, run := range line.Runs {
		if n := len(cells); n > 0 {
			last := &cells[n-1]
			gap := run.X - last.End
			if gap < cellGap*run.size() {
				if gap > wordGap*run.size() {
					last.Text += " "
				}
				last.Text += run.S
				last.End = math.Max(last.End, run.end())
				continue
			}
		}
		cells = append(cells, layoutCell{X: run.X, End: run.end(), Text: run.S})
	}
	for i := range cells {
		cells[i].Text = strings.Join(strings.Fields(cells[i].Text), " ")
	}
	return cells
}

// lineText joins a line's cells with single spaces.
func lineText(line textLine) string {
	cells := lineCells(line)
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, " ")
}

// pageTable finds the first header line whose labels resolve to usable roles
// and slots every following line's cells under the nearest header column.
// A page without its own header continues the previous page's columns.
func pageTable(lines []textLine, prev []layoutCell) (header []layoutCell, body [][]string) {
	start := 0
	header = prev
	for i, line := range lines {
		cells := lineCells(line)
		if len(cells) >= 3 && ResolveTableRoles(cellTexts(cells)).Usable() {
			header = cells
			start = i + 1
			break
		}
	}
	if header == nil {
		return nil, nil
	}

	for _, line := range lines[start:] {
		row := make([]string, len(header))
		for _, c := range lineCells(line) {
			idx := nearestColumn(header, c)
			if row[idx] != "" {
				row[idx] += " "
			}
			row[idx] += c.Text
		}
		body = append(body, row)
	}
	return header, body
}

func nearestColumn(header []layoutCell, c layoutCell) int {
	best, bestDist := 0, math.Inf(1)
	for i, h := range header {
		if d := math.Abs(h.center() - c.center()); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func cellTexts(cells []layoutCell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}

// PDFTableDetector rebuilds statement tables from the PDF text layer by
// column position and resolves roles from the header labels.
type PDFTableDetector struct{}

// NewPDFTableDetector creates a layout-table PDF detector.
func NewPDFTableDetector() *PDFTableDetector {
	return &PDFTableDetector{}
}

func (d *PDFTableDetector) Name() string { return "pdf-table" }

func (d *PDFTableDetector) Detect(ctx context.Context, data []byte) (table RawTable, err error) {
	defer recoverPanic(d.Name(), &err)

	pages, err := readPDFPages(data)
	if err != nil {
		return RawTable{}, parseError(d.Name(), "unreadable PDF", err)
	}

	table = canonicalTable()
	var header []layoutCell
	for _, lines := range pages {
		if err := ctx.Err(); err != nil {
			return RawTable{}, err
		}
		var body [][]string
		header, body = pageTable(lines, header)
		if header == nil {
			continue
		}
		table.Rows = append(table.Rows, RowsFromTable(cellTexts(header), body)...)
	}
	return table, nil
}

// PDFTextDetector matches each text-layer line against the fixed
// "DATE DESCRIPTION AMOUNT" shape. It covers statements printed as plain
// lines without column headers.
type PDFTextDetector struct{}

// NewPDFTextDetector creates a line-pattern PDF detector.
func NewPDFTextDetector() *PDFTextDetector {
	return &PDFTextDetector{}
}

func (d *PDFTextDetector) Name() string { return "pdf-text" }

func (d *PDFTextDetector) Detect(ctx context.Context, data []byte) (table RawTable, err error) {
	defer recoverPanic(d.Name(), &err)

	pages, err := readPDFPages(data)
	if err != nil {
		return RawTable{}, parseError(d.Name(), "unreadable PDF", err)
	}

	var lines []string
	for _, page := range pages {
		for _, line := range page {
			lines = append(lines, lineText(line))
		}
	}

	table = canonicalTable()
	table.Rows = ParseTextLines(lines)
	return table, ctx.Err()
}
