package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_ModeResolution(t *testing.T) {
	var out, errw bytes.Buffer

	r := NewRenderer(&out, &errw, ModeJSON)
	assert.Equal(t, ModeJSON, r.Mode())

	// Auto resolves to text; styling depends on a TTY, which tests
	// never run under.
	r = NewRenderer(&out, &errw, ModeAuto)
	assert.Equal(t, ModeText, r.Mode())

	r = NewRenderer(&out, &errw, "")
	assert.Equal(t, ModeText, r.Mode())
}

func TestRenderer_Lines(t *testing.T) {
	var out, errw bytes.Buffer
	r := NewRenderer(&out, &errw, ModeText)

	r.Successf("done %d", 3)
	r.Warnf("careful")
	r.Errorf("broken")

	assert.Equal(t, "done 3\n", out.String())
	assert.Contains(t, errw.String(), "Warning: careful")
	assert.Contains(t, errw.String(), "Error: broken")
}

func TestRenderer_Table(t *testing.T) {
	var out, errw bytes.Buffer
	r := NewRenderer(&out, &errw, ModeText)

	r.Table([]string{"name", "city"}, [][]string{
		{"Alice", "Tokyo"},
		{"Bob"}, // short row is padded
	})

	got := out.String()
	assert.Contains(t, got, "Alice")
	assert.Contains(t, got, "Tokyo")
	assert.Contains(t, got, "Bob")
}

func TestRenderer_JSON(t *testing.T) {
	var out, errw bytes.Buffer
	r := NewRenderer(&out, &errw, ModeJSON)

	require.NoError(t, r.JSON(map[string]any{"valid": true}))
	assert.True(t, strings.Contains(out.String(), `"valid": true`))
}
