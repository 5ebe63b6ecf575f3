// Package main provides end-to-end tests for the reshape CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reshape-labs/reshape/internal/cli"
	"github.com/reshape-labs/reshape/internal/cli/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(out, "reshape") {
		t.Errorf("version output should contain 'reshape', got: %s", out)
	}
}

func TestHelpCommand(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}
	for _, sub := range []string{"apply", "validate", "preview"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output should list %q, got: %s", sub, out)
		}
	}
}

func TestApplyCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	input := writeFile(t, dir, "input.csv",
		"name,status,dept\nJ,inactive,IT\nB,inactive,HR\nA,active,HR\n")
	rulesPath := writeFile(t, dir, "rules.json", `{
		"headerMappings": {"name": "employee"},
		"deleteConditions": [
			{"column": "status", "value": "inactive"},
			{"column": "dept", "value": "HR"}
		],
		"columnOrder": ["dept", "employee"]
	}`)
	outPath := filepath.Join(dir, "out.csv")

	_, err := execute(t, "apply", "-i", input, "-o", outPath, "--rules", rulesPath)
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	want := "dept,employee\nIT,J\nHR,A\n"
	if string(got) != want {
		t.Errorf("output = %q, want %q", string(got), want)
	}
}

func TestApplyCommand_PureCopy(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	input := writeFile(t, dir, "input.csv", "a,b\n1,2\n")
	outPath := filepath.Join(dir, "out.csv")

	_, err := execute(t, "apply", "-i", input, "-o", outPath)
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}

	got, _ := os.ReadFile(outPath)
	if string(got) != "a,b\n1,2\n" {
		t.Errorf("pure copy output = %q", string(got))
	}
}

func TestApplyCommand_InvalidRules(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	input := writeFile(t, dir, "input.csv", "a,b\n1,2\n")
	rulesPath := writeFile(t, dir, "rules.json", `{"headerMappings": {"A": "B", "B": "A"}}`)
	outPath := filepath.Join(dir, "out.csv")

	_, err := execute(t, "apply", "-i", input, "-o", outPath, "--rules", rulesPath)
	if err == nil {
		t.Fatal("expected error for circular rule file")
	}
	if !strings.Contains(err.Error(), "circular") {
		t.Errorf("error should mention the circular mapping, got: %v", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Errorf("no output should be written when validation fails")
	}
}

func TestApplyCommand_MissingDeleteColumn(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	input := writeFile(t, dir, "input.csv", "a,b\n1,2\n")
	rulesPath := writeFile(t, dir, "rules.json",
		`{"deleteConditions": [{"column": "ghost", "value": "x"}]}`)
	outPath := filepath.Join(dir, "out.csv")

	_, err := execute(t, "apply", "-i", input, "-o", outPath, "--rules", rulesPath)
	if err == nil {
		t.Fatal("expected error for delete condition on missing column")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the missing column, got: %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	good := writeFile(t, dir, "good.json", `{"columnOrder": ["a", "b"]}`)
	if _, err := execute(t, "validate", good); err != nil {
		t.Errorf("valid rule file should pass, got: %v", err)
	}

	bad := writeFile(t, dir, "bad.json", `{"columnOrder": ["a", "a"]}`)
	_, err := execute(t, "validate", bad)
	if err == nil {
		t.Fatal("expected error for duplicate columnOrder entries")
	}
	if !strings.Contains(err.Error(), "1 error(s)") {
		t.Errorf("error should carry the error count, got: %v", err)
	}
}

func TestPreviewCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	input := writeFile(t, dir, "input.csv", "name,city\nAlice,Tokyo\nBob,Osaka\n")

	out, err := execute(t, "preview", input, "-n", "1")
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	if !strings.Contains(out, "Alice") {
		t.Errorf("preview should show the first row, got: %s", out)
	}
	if strings.Contains(out, "Bob") {
		t.Errorf("preview should honor the row limit, got: %s", out)
	}
}
