package categorization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []CategoryRule
	}{
		{
			name:  "skips lines without separator",
			input: "PIX => Transferências\nbadline\nUber.* => Transporte",
			want: []CategoryRule{
				{Pattern: "PIX", Category: "Transferências"},
				{Pattern: "Uber.*", Category: "Transporte"},
			},
		},
		{
			name:  "splits on first separator only",
			input: "a => b => c",
			want:  []CategoryRule{{Pattern: "a", Category: "b => c"}},
		},
		{
			name:  "trims whitespace and carriage returns",
			input: "  \\bDARF\\b   =>  Impostos \r\n",
			want:  []CategoryRule{{Pattern: `\bDARF\b`, Category: "Impostos"}},
		},
		{
			name:  "empty sides ignored",
			input: " => Nada\nALGO => \nOK => Sim",
			want:  []CategoryRule{{Pattern: "OK", Category: "Sim"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRules(tt.input))
		})
	}
}

func TestParseRules_EmptyFallsBackToDefaults(t *testing.T) {
	assert.Equal(t, DefaultRules(), ParseRules(""))
	assert.Equal(t, DefaultRules(), ParseRules("no separators here\nnor here"))
}

func TestFormatRules_RoundTrip(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, rules, ParseRules(FormatRules(rules)))
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.NotEmpty(t, rules)

	last := rules[len(rules)-1]
	assert.Equal(t, ".*", last.Pattern)
	assert.Equal(t, DefaultCategory, last.Category)

	rules[0].Category = "mutated"
	assert.NotEqual(t, "mutated", DefaultRules()[0].Category)

	_, err := NewRuleSet(DefaultRules())
	assert.NoError(t, err, "built-in rules must all compile")
}

func TestLoadRulesFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path", func(t *testing.T) {
		rules, err := LoadRulesFile("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRules(), rules)
	})

	t.Run("missing file", func(t *testing.T) {
		rules, err := LoadRulesFile(filepath.Join(dir, "nope.txt"))
		require.NoError(t, err)
		assert.Equal(t, DefaultRules(), rules)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(dir, "rules.txt")
		require.NoError(t, os.WriteFile(path, []byte("ACADEMIA => Saúde\n.* => Outros\n"), 0o644))

		rules, err := LoadRulesFile(path)
		require.NoError(t, err)
		assert.Equal(t, []CategoryRule{
			{Pattern: "ACADEMIA", Category: "Saúde"},
			{Pattern: ".*", Category: "Outros"},
		}, rules)
	})

	t.Run("directory is an error", func(t *testing.T) {
		_, err := LoadRulesFile(dir)
		assert.Error(t, err)
	})
}
