package commands

import (
	"github.com/spf13/cobra"

	"github.com/reshape-labs/reshape/internal/csvio"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	Input string
	Limit int
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}
	cmd := &cobra.Command{
		Use:   "preview <input>",
		Short: "Dry-run a rule file and show the first rows of the result",
		Long: `Apply the rule file in memory and render the first rows of the
transformed table to the terminal, without writing any output file.`,
		Example: `  # Preview the first 10 transformed rows
  reshape preview input.csv --rules rules.json

  # Show more rows
  reshape preview input.csv --rules rules.json -n 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return runPreview(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Maximum number of rows to show")

	return cmd
}

func runPreview(cmd *cobra.Command, opts *PreviewOptions) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	r := GetRenderer(ctx)

	if err := cfg.ValidateRulesPath(); err != nil {
		return err
	}
	comma, err := cfg.Comma()
	if err != nil {
		return err
	}

	tbl, err := csvio.ReadFile(opts.Input, csvio.Options{Comma: comma})
	if err != nil {
		return err
	}

	rs, warnings, err := loadRules(cfg, tbl.Headers)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		r.Warnf("%s", w)
	}

	out, deleted, err := applyRules(tbl, rs)
	if err != nil {
		return err
	}

	rows := out.Rows
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	r.Table(out.Headers, rows)
	r.Printf("(showing %d of %d rows, %d deleted)", len(rows), len(out.Rows), deleted)
	return nil
}
