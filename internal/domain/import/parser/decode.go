package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported by DecodeText.
const (
	EncodingUTF16       = "utf-16"
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
	EncodingLossyUTF8   = "utf-8-lossy"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText converts statement bytes to a string by trying, in order:
// UTF-16 (only with a BOM), strict UTF-8, ISO-8859-1 (only when no C1 control
// bytes are present) and Windows-1252. As a last resort invalid sequences are
// replaced. It never fails.
func DecodeText(data []byte) (string, string) {
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out), EncodingUTF16
		}
	}

	trimmed := bytes.TrimPrefix(data, bomUTF8)
	if utf8.Valid(trimmed) {
		return string(trimmed), EncodingUTF8
	}

	if !hasC1Controls(trimmed) {
		if out, ok := decodeWith(charmap.ISO8859_1, trimmed); ok {
			return out, EncodingLatin1
		}
	}

	if out, ok := decodeWith(charmap.Windows1252, trimmed); ok {
		return out, EncodingWindows1252
	}

	return strings.ToValidUTF8(string(trimmed), "\uFFFD"), EncodingLossyUTF8
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// hasC1Controls reports bytes in 0x80-0x9F, which Latin-1 maps to control
// characters but Windows-1252 maps to printable punctuation.
func hasC1Controls(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 && b <= 0x9F {
			return true
		}
	}
	return false
}
