// Package parser extracts raw statement tables from CSV, OFX, PDF and XLSX
// exports. Each source format is handled by one or more Detector strategies;
// a Chain tries them in order and keeps the first non-empty table.
package parser

import (
	"context"
	"fmt"
	"strings"
)

// Canonical column names emitted by detectors that build their own table
// (OFX, PDF, OCR). The normalizer resolves them by name.
const (
	ColumnDate        = "data"
	ColumnDescription = "descricao"
	ColumnAmount      = "valor"
)

// DateLayout is the day-first layout detectors use for canonical dates.
const DateLayout = "02/01/2006"

// RawTable is an untyped table as found in the source: column names plus
// positional string cells. It may contain garbage, repeated headers and
// short rows.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// Head returns at most n rows, for previews.
func (t RawTable) Head(n int) [][]string {
	if n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}

func canonicalTable() RawTable {
	return RawTable{Columns: []string{ColumnDate, ColumnDescription, ColumnAmount}}
}

// Detector extracts a raw table from file bytes. An error means the strategy
// could not handle the input; the Chain treats it like an empty result.
type Detector interface {
	Name() string
	Detect(ctx context.Context, data []byte) (RawTable, error)
}

// ParseError describes why a strategy gave up on an input.
type ParseError struct {
	Detector string
	Message  string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Detector, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Detector, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseError(detector, message string, err error) *ParseError {
	return &ParseError{Detector: detector, Message: message, Err: err}
}

// recoverPanic converts a panic inside third-party parsing code into a
// ParseError. Use with a named error return.
func recoverPanic(detector string, errp *error) {
	if r := recover(); r != nil {
		*errp = parseError(detector, "parser panicked", fmt.Errorf("%v", r))
	}
}

// cleanCell trims whitespace and non-breaking spaces.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
