package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshape-labs/reshape/internal/cli/config"
	"github.com/reshape-labs/reshape/internal/cli/output"
	"github.com/reshape-labs/reshape/internal/testutil"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunPipeline(t *testing.T) {
	dir := t.TempDir()
	input := writeTempFile(t, dir, "in.csv", "full_address,status\n123 Main St,ok\n456 Oak Ave,stale\n")
	rulesPath := writeTempFile(t, dir, "rules.yaml", `
headerMappings:
  full_address: [street, city]
deleteConditions:
  - column: status
    value: stale
valueReplacements:
  status:
    ok: active
`)
	outPath := filepath.Join(dir, "out.csv")

	var out, errw bytes.Buffer
	r := output.NewRenderer(&out, &errw, output.ModeText)
	cfg := &config.Config{RulesPath: rulesPath, Delimiter: ","}

	err := runPipeline(cfg, r, testutil.NewTestLogger(t), input, outPath)
	require.NoError(t, err)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "street,city,status\n123 Main St,123 Main St,active\n", string(got))
	assert.Contains(t, out.String(), "1 deleted")
}

func TestRunPipeline_RuleWarningsDoNotBlock(t *testing.T) {
	dir := t.TempDir()
	input := writeTempFile(t, dir, "in.csv", "a\n1\n")
	rulesPath := writeTempFile(t, dir, "rules.json", `{}`)
	outPath := filepath.Join(dir, "out.csv")

	var out, errw bytes.Buffer
	r := output.NewRenderer(&out, &errw, output.ModeText)
	cfg := &config.Config{RulesPath: rulesPath}

	err := runPipeline(cfg, r, testutil.NewTestLogger(t), input, outPath)
	require.NoError(t, err)
	assert.Contains(t, errw.String(), "no transformations", "the no-op warning is printed but does not block")

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(got))
}

func TestRunPipeline_EncodingFromRuleFile(t *testing.T) {
	dir := t.TempDir()
	input := writeTempFile(t, dir, "in.csv", "name\n名前\n")
	rulesPath := writeTempFile(t, dir, "rules.json", `{"outputEncoding": "shift_jis"}`)
	outPath := filepath.Join(dir, "out.csv")

	var out, errw bytes.Buffer
	r := output.NewRenderer(&out, &errw, output.ModeText)
	cfg := &config.Config{RulesPath: rulesPath, Encoding: "utf-8"}

	err := runPipeline(cfg, r, testutil.NewTestLogger(t), input, outPath)
	require.NoError(t, err)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotEqual(t, "name\n名前\n", string(got), "outputEncoding in the rule file overrides the config default")
}
