package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestDecodeText(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Data;Descrição")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    []byte
		want     string
		encoding string
	}{
		{
			name:     "plain UTF-8",
			input:    []byte("Data;Descrição;Valor"),
			want:     "Data;Descrição;Valor",
			encoding: EncodingUTF8,
		},
		{
			name:     "UTF-8 with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("Data")...),
			want:     "Data",
			encoding: EncodingUTF8,
		},
		{
			name:     "Latin-1",
			input:    []byte("Descri\xe7\xe3o;Sa\xedda"),
			want:     "Descrição;Saída",
			encoding: EncodingLatin1,
		},
		{
			name:     "Windows-1252 smart quotes",
			input:    []byte("\x93PIX\x94 \x80 10"),
			want:     "“PIX” € 10",
			encoding: EncodingWindows1252,
		},
		{
			name:     "UTF-16 with BOM",
			input:    []byte(utf16),
			want:     "Data;Descrição",
			encoding: EncodingUTF16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc := DecodeText(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.encoding, enc)
		})
	}
}

func TestDecodeText_NeverFails(t *testing.T) {
	got, _ := DecodeText([]byte{0xFF, 0x00, 0x81, 0x8D, 0xC3})
	assert.NotEmpty(t, got)
}
