package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reshape-labs/reshape/internal/cli/output"
	"github.com/reshape-labs/reshape/pkg/rules"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rule-file>",
		Short: "Validate a rule file without touching any data",
		Long: `Statically check a rule file for internal consistency.

Every problem is reported in one pass: blank names, wrong types,
mirrored (circular) mapping pairs, duplicate columnOrder entries,
malformed delete conditions, and unsupported output encodings.
Warnings are advisory and never block execution.`,
		Example: `  # Validate a JSON rule file
  reshape validate rules.json

  # Machine-readable report
  reshape validate rules.yaml -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	r := GetRenderer(cmd.Context())

	doc, err := rules.Load(path)
	if err != nil {
		return err
	}
	res := rules.Validate(doc)

	if r.Mode() == output.ModeJSON {
		if err := r.JSON(res); err != nil {
			return err
		}
	} else {
		renderResult(r, res)
	}

	if !res.Valid {
		return fmt.Errorf("rule file %s has %d error(s)", path, len(res.Errors))
	}
	return nil
}

func renderResult(r *output.Renderer, res rules.Result) {
	if len(res.Errors) == 0 && len(res.Warnings) == 0 {
		r.Successf("Rule file is valid")
		return
	}

	rows := make([][]string, 0, len(res.Errors)+len(res.Warnings))
	for _, e := range res.Errors {
		rows = append(rows, []string{"error", e})
	}
	for _, w := range res.Warnings {
		rows = append(rows, []string{"warning", w})
	}
	r.Table([]string{"Severity", "Message"}, rows)

	if res.Valid {
		r.Successf("Rule file is valid (%d warning(s))", len(res.Warnings))
	}
}
