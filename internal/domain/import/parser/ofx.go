package parser

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// ofxAmountPrecision bounds the decimal places kept from TRNAMT.
const ofxAmountPrecision = 8

var (
	sgmlEncodingHeader = regexp.MustCompile(`(?m)^ENCODING:.*$`)
	sgmlCharsetHeader  = regexp.MustCompile(`(?m)^CHARSET:.*$`)
	xmlEncodingAttr    = regexp.MustCompile(`(<\?xml[^>]*encoding=)["'][^"']*["']`)
)

// OFXDetector parses OFX/QFX files (SGML 1.x or XML 2.x) with ofxgo and
// collects every bank and credit card statement transaction.
type OFXDetector struct{}

// NewOFXDetector creates a structured OFX detector.
func NewOFXDetector() *OFXDetector {
	return &OFXDetector{}
}

func (d *OFXDetector) Name() string { return "ofx" }

func (d *OFXDetector) Detect(ctx context.Context, data []byte) (table RawTable, err error) {
	defer recoverPanic(d.Name(), &err)

	resp, err := ofxgo.ParseResponse(strings.NewReader(utf8OFX(data)))
	if err != nil {
		return RawTable{}, parseError(d.Name(), "invalid OFX", err)
	}

	table = canonicalTable()
	appendList := func(list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, tx := range list.Transactions {
			if tx.DtPosted.IsZero() {
				continue
			}
			amount := decimal.NewFromBigRat(&tx.TrnAmt.Rat, ofxAmountPrecision)
			table.Rows = append(table.Rows, []string{
				tx.DtPosted.Format(DateLayout),
				ofxDescription(tx),
				money.FormatPlain(amount),
			})
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			appendList(stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			appendList(stmt.BankTranList)
		}
	}

	return table, ctx.Err()
}

// utf8OFX decodes the file with the shared charset detection and rewrites the
// declared encoding to match. ofxgo reads bytes as-is whatever the headers say,
// so a Windows-1252 MEMO would otherwise fail XML validation.
func utf8OFX(data []byte) string {
	text, _ := DecodeText(data)
	text = sgmlEncodingHeader.ReplaceAllString(text, "ENCODING:UTF-8")
	text = sgmlCharsetHeader.ReplaceAllString(text, "CHARSET:NONE")
	return xmlEncodingAttr.ReplaceAllString(text, `${1}"UTF-8"`)
}

// ofxDescription prefers the memo, then the payee name, then the check number.
func ofxDescription(tx ofxgo.Transaction) string {
	candidates := []string{string(tx.Memo), string(tx.Name)}
	if tx.Payee != nil {
		candidates = append(candidates, string(tx.Payee.Name))
	}
	candidates = append(candidates, string(tx.CheckNum))
	for _, c := range candidates {
		if s := cleanCell(c); s != "" {
			return s
		}
	}
	return ""
}

var (
	stmtTrnOpen  = regexp.MustCompile(`(?i)<STMTTRN>`)
	stmtTrnClose = regexp.MustCompile(`(?i)</STMTTRN>`)
	dtPostedTag  = regexp.MustCompile(`(?i)<DTPOSTED>\s*(\d{8})`)
	memoTag      = regexp.MustCompile(`(?i)<MEMO>([^<\r\n]*)`)
	nameTag      = regexp.MustCompile(`(?i)<NAME>([^<\r\n]*)`)
	trnAmtTag    = regexp.MustCompile(`(?i)<TRNAMT>\s*([-+]?\d+(?:[.,]\d+)?)`)
)

// OFXRegexDetector extracts transactions from malformed OFX by pattern
// matching each <STMTTRN> block. It tolerates SGML without closing tags and
// files ofxgo rejects.
type OFXRegexDetector struct{}

// NewOFXRegexDetector creates the fallback OFX detector.
func NewOFXRegexDetector() *OFXRegexDetector {
	return &OFXRegexDetector{}
}

func (d *OFXRegexDetector) Name() string { return "ofx-regex" }

func (d *OFXRegexDetector) Detect(ctx context.Context, data []byte) (RawTable, error) {
	text, _ := DecodeText(data)
	table := canonicalTable()

	starts := stmtTrnOpen.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		table.Rows = zipGlobalTags(text)
		return table, ctx.Err()
	}

	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		block := text[loc[1]:end]
		if closeLoc := stmtTrnClose.FindStringIndex(block); closeLoc != nil {
			block = block[:closeLoc[0]]
		}

		date := firstGroup(dtPostedTag, block)
		desc := firstGroup(memoTag, block)
		if desc == "" {
			desc = firstGroup(nameTag, block)
		}
		amount := firstGroup(trnAmtTag, block)

		if row, ok := ofxRow(date, desc, amount); ok {
			table.Rows = append(table.Rows, row)
		}
	}

	return table, ctx.Err()
}

// zipGlobalTags pairs the n-th date, memo and amount of the whole document.
// Used only for files without <STMTTRN> blocks.
func zipGlobalTags(text string) [][]string {
	dates := allGroups(dtPostedTag, text)
	memos := allGroups(memoTag, text)
	amounts := allGroups(trnAmtTag, text)

	n := min(len(dates), len(memos), len(amounts))
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		if row, ok := ofxRow(dates[i], memos[i], amounts[i]); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// ofxRow converts raw OFX values into a canonical row. OFX amounts use a
// decimal point, though some banks emit a decimal comma.
func ofxRow(rawDate, desc, rawAmount string) ([]string, bool) {
	date, err := time.Parse("20060102", rawDate)
	if err != nil {
		return nil, false
	}
	amount, err := decimal.NewFromString(strings.Replace(rawAmount, ",", ".", 1))
	if err != nil {
		return nil, false
	}
	return []string{date.Format(DateLayout), cleanCell(desc), money.FormatPlain(amount)}, true
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func allGroups(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
