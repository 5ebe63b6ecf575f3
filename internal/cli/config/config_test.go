package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultEncoding, cfg.Encoding)
	assert.Equal(t, DefaultDelimiter, cfg.Delimiter)
	assert.Equal(t, DefaultFormat, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.RulesPath)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "reshape.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("encoding: shift_jis\nrules: rules.json\nverbose: true\n"), 0o644))
	ResetConfig()

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "shift_jis", cfg.Encoding)
	assert.Equal(t, "rules.json", cfg.RulesPath)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "reshape.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("encoding: shift_jis\n"), 0o644))
	ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("encoding", "", "")
	flags.String("delimiter", "", "")
	require.NoError(t, flags.Parse([]string{"--encoding", "euc-jp"}))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "euc-jp", cfg.Encoding, "explicitly set flags win over the config file")
	assert.Equal(t, DefaultDelimiter, cfg.Delimiter, "unset flags do not override defaults")
}

func TestLoadConfig_UpwardSearch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "reshape.yml"), []byte("delimiter: ;\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, ";", cfg.Delimiter)
}

func TestLoadConfig_RejectsBadEncoding(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "reshape.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("encoding: utf-16\n"), 0o644))
	ResetConfig()

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "utf-16")
}

func TestConfig_Comma(t *testing.T) {
	tests := []struct {
		delimiter string
		want      rune
		wantErr   bool
	}{
		{"", ',', false},
		{",", ',', false},
		{";", ';', false},
		{"\t", '\t', false},
		{"ab", 0, true},
	}
	for _, tt := range tests {
		cfg := Config{Delimiter: tt.delimiter}
		got, err := cfg.Comma()
		if tt.wantErr {
			assert.Error(t, err, "delimiter %q", tt.delimiter)
			continue
		}
		require.NoError(t, err, "delimiter %q", tt.delimiter)
		assert.Equal(t, tt.want, got, "delimiter %q", tt.delimiter)
	}
}

func TestConfig_ValidateRulesPath(t *testing.T) {
	cfg := Config{}
	assert.NoError(t, cfg.ValidateRulesPath(), "empty rules path is valid")

	cfg.RulesPath = filepath.Join(t.TempDir(), "absent.json")
	err := cfg.ValidateRulesPath()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
