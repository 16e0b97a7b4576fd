package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTestRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeCSV, false, ModeCSV},
		{ModeText, false, ModeText},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestTable(t *testing.T) {
	cols := []string{"label", "flag"}
	rows := [][]string{{"2021/01/20A-001", "OKAY"}, {"2021/02/20A-002", "BELOW"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		require.NoError(t, r.Table(cols, rows))
		s := out.String()
		assert.Contains(t, s, "| label")
		assert.Contains(t, s, "2021/02/20A-002")
		assert.Contains(t, s, "(2 rows)")
		assert.False(t, ansiPattern.MatchString(s))
	})

	t.Run("csv", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeCSV, false)
		require.NoError(t, r.Table(cols, rows))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "label,flag", lines[0])
		assert.Equal(t, "2021/01/20A-001,OKAY", lines[1])
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText, false)
		require.NoError(t, r.Table(cols, rows))
		assert.Contains(t, out.String(), "BELOW")
		assert.Contains(t, out.String(), "(2 rows)")
	})

	t.Run("text empty", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText, false)
		require.NoError(t, r.Table(cols, nil))
		assert.Equal(t, "(0 rows)\n", out.String())
	})
}

func TestData(t *testing.T) {
	v := map[string]int{"setups": 2}

	t.Run("json", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeJSON, false)
		require.NoError(t, r.Data(v, []string{"setups"}, [][]string{{"2"}}))
		assert.JSONEq(t, `{"setups": 2}`, out.String())
		assert.True(t, r.Structured())
	})

	t.Run("yaml", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeYAML, false)
		require.NoError(t, r.Data(v, []string{"setups"}, [][]string{{"2"}}))
		assert.YAMLEq(t, "setups: 2\n", out.String())
	})

	t.Run("markdown falls back to table", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		require.NoError(t, r.Data(v, []string{"setups"}, [][]string{{"2"}}))
		assert.Contains(t, out.String(), "| setups")
		assert.False(t, r.Structured())
	})
}

func TestHeaderAndKeyValue(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown, false)
	r.Header(2, "Setups")
	r.KeyValue("Dialect", "new")
	assert.Equal(t, "## Setups\n\n- **Dialect:** new\n", out.String())

	r, out, _ = newTestRenderer(ModeText, false)
	r.Header(2, "Setups")
	r.KeyValue("Dialect", "new")
	assert.Equal(t, "Setups\nDialect: new\n", out.String())
}

func TestMessages(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)
	r.Success("ingested 3 observations")
	r.Warning("skipped 1 observation")
	r.Muted("state saved")

	assert.Contains(t, out.String(), "✓ ingested 3 observations")
	assert.Contains(t, out.String(), "state saved")
	assert.Equal(t, "! skipped 1 observation\n", errOut.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Title", FormatHeader(3, "Title"))
	assert.Equal(t, "- **Key:** value", FormatKeyValue("Key", "value"))
}
