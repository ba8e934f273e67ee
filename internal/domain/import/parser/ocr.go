package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// statementLine is the fixed "DATE DESCRIPTION AMOUNT" shape recognized in
// OCR output and PDF text lines. Amounts must be in Brazilian form at the end
// of the line. Low recall on noisy text is expected.
var statementLine = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(-?\d{1,3}(?:\.\d{3})*,\d{2})$`)

// ParseTextLines extracts canonical rows from free text lines. Lines that do
// not match the statement line shape are skipped.
func ParseTextLines(lines []string) [][]string {
	var rows [][]string
	for _, ln := range lines {
		ln = cleanCell(ln)
		if ln == "" {
			continue
		}
		m := statementLine.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		if _, err := time.Parse(DateLayout, m[1]); err != nil {
			continue
		}
		amount, ok := money.ParseAmount(m[3])
		if !ok {
			continue
		}
		rows = append(rows, []string{m[1], strings.TrimSpace(m[2]), money.FormatPlain(amount)})
	}
	return rows
}

// ErrRecognizerUnavailable is returned when the OCR toolchain is missing.
var ErrRecognizerUnavailable = errors.New("ocr recognizer unavailable")

// Recognizer turns an image-only PDF into text lines.
type Recognizer interface {
	Available() bool
	Recognize(ctx context.Context, pdf []byte) ([]string, error)
}

// TesseractRecognizer rasterizes with poppler's pdftoppm and recognizes each
// page with the tesseract CLI.
type TesseractRecognizer struct {
	PdftoppmPath  string
	TesseractPath string
	Language      string
	DPI           int
}

// NewTesseractRecognizer resolves the binaries from PATH when no explicit
// paths are configured.
func NewTesseractRecognizer(pdftoppmPath, tesseractPath, language string, dpi int) *TesseractRecognizer {
	if pdftoppmPath == "" {
		pdftoppmPath = "pdftoppm"
	}
	if tesseractPath == "" {
		tesseractPath = "tesseract"
	}
	if language == "" {
		language = "por"
	}
	if dpi <= 0 {
		dpi = 200
	}
	return &TesseractRecognizer{
		PdftoppmPath:  pdftoppmPath,
		TesseractPath: tesseractPath,
		Language:      language,
		DPI:           dpi,
	}
}

// Available reports whether both binaries can be found.
func (t *TesseractRecognizer) Available() bool {
	if _, err := exec.LookPath(t.PdftoppmPath); err != nil {
		return false
	}
	_, err := exec.LookPath(t.TesseractPath)
	return err == nil
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, pdf []byte) ([]string, error) {
	if !t.Available() {
		return nil, ErrRecognizerUnavailable
	}

	dir, err := os.MkdirTemp("", "extrato-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	raster := exec.CommandContext(ctx, t.PdftoppmPath, "-r", strconv.Itoa(t.DPI), "-png", input, prefix)
	if out, err := raster.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(images)

	var lines []string
	for _, img := range images {
		cmd := exec.CommandContext(ctx, t.TesseractPath, img, "stdout", "-l", t.Language)
		out, err := cmd.Output()
		if err != nil {
			return nil, fmt.Errorf("tesseract %s: %w", filepath.Base(img), err)
		}
		scanner := bufio.NewScanner(strings.NewReader(string(out)))
		for scanner.Scan() {
			if ln := strings.TrimSpace(scanner.Text()); ln != "" {
				lines = append(lines, ln)
			}
		}
	}
	return lines, nil
}

// OCRDetector is the last PDF strategy: recognize page images and match the
// statement line shape. A missing toolchain yields an empty table.
type OCRDetector struct {
	recognizer Recognizer
	timeout    time.Duration
}

// NewOCRDetector creates an OCR detector bounded by timeout (0 means no
// extra bound beyond the caller's context).
func NewOCRDetector(recognizer Recognizer, timeout time.Duration) *OCRDetector {
	return &OCRDetector{recognizer: recognizer, timeout: timeout}
}

func (d *OCRDetector) Name() string { return "ocr" }

func (d *OCRDetector) Detect(ctx context.Context, data []byte) (RawTable, error) {
	if d.recognizer == nil || !d.recognizer.Available() {
		return canonicalTable(), nil
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	lines, err := d.recognizer.Recognize(ctx, data)
	if err != nil {
		return RawTable{}, parseError(d.Name(), "recognition failed", err)
	}

	table := canonicalTable()
	table.Rows = ParseTextLines(lines)
	return table, nil
}
