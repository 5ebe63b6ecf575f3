// Package output renders CLI results in text or JSON form, with styled
// terminal output when stdout is a TTY.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto Mode = "auto" // TTY: styled text, otherwise plain text
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Renderer writes command output to out and diagnostics to errw.
type Renderer struct {
	out    io.Writer
	errw   io.Writer
	mode   Mode
	styled bool
}

// NewRenderer creates a renderer. ModeAuto resolves to text, styled
// only when stdout is a terminal.
func NewRenderer(out, errw io.Writer, mode Mode) *Renderer {
	styled := false
	resolved := mode
	if mode == ModeAuto || mode == "" {
		resolved = ModeText
		styled = term.IsTerminal(int(os.Stdout.Fd()))
	}
	return &Renderer{out: out, errw: errw, mode: resolved, styled: styled}
}

// Mode returns the resolved output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// Successf prints a success line to out.
func (r *Renderer) Successf(format string, args ...any) {
	r.line(r.out, successStyle, format, args...)
}

// Warnf prints a warning line to errw.
func (r *Renderer) Warnf(format string, args ...any) {
	r.line(r.errw, warnStyle, "Warning: "+format, args...)
}

// Errorf prints an error line to errw.
func (r *Renderer) Errorf(format string, args ...any) {
	r.line(r.errw, errorStyle, "Error: "+format, args...)
}

// Printf prints an unstyled line to out.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

// Table renders headers and rows as a bordered terminal table.
func (r *Renderer) Table(headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		out := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				out[i] = row[i]
			} else {
				out[i] = ""
			}
		}
		t.AppendRow(out)
	}
	t.Render()
}

// JSON writes v as indented JSON to out.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) line(w io.Writer, style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.styled {
		msg = style.Render(msg)
	}
	_, _ = fmt.Fprintln(w, msg)
}
