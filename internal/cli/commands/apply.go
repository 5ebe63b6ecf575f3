package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/reshape-labs/reshape/internal/cli/config"
	"github.com/reshape-labs/reshape/internal/cli/output"
	"github.com/reshape-labs/reshape/internal/csvio"
	"github.com/reshape-labs/reshape/pkg/engine"
	"github.com/reshape-labs/reshape/pkg/rules"
	"github.com/reshape-labs/reshape/pkg/table"
)

// ApplyOptions holds options for the apply command.
type ApplyOptions struct {
	Input  string
	Output string
	Watch  bool
}

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	opts := &ApplyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a rule file to a CSV and write the result",
		Long: `Read a CSV file, apply the rule file's transformations, and write
the reshaped CSV.

Rows matching every delete condition are removed first (against the
original column names), then headers are mapped, fixed columns
appended, columns reordered, and values replaced. Validation warnings
are printed but never block; validation errors abort before any data
is touched.`,
		Example: `  # Apply rules to a file
  reshape apply -i input.csv -o output.csv --rules rules.json

  # Pure copy (no rule file)
  reshape apply -i input.csv -o output.csv

  # Re-run whenever the input or rule file changes
  reshape apply -i input.csv -o output.csv --rules rules.yaml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Input CSV path (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output CSV path (required)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run on input or rule file changes")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runApply(cmd *cobra.Command, opts *ApplyOptions) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	r := GetRenderer(ctx)
	logger := GetLogger(ctx)

	if err := cfg.ValidateRulesPath(); err != nil {
		return err
	}

	if !opts.Watch {
		return runPipeline(cfg, r, logger, opts.Input, opts.Output)
	}
	return watchAndApply(ctx, cfg, r, logger, opts)
}

// runPipeline executes one full parse -> validate -> delete ->
// transform -> write cycle.
func runPipeline(cfg *config.Config, r *output.Renderer, logger *slog.Logger, input, outputPath string) error {
	start := time.Now()

	comma, err := cfg.Comma()
	if err != nil {
		return err
	}
	csvOpts := csvio.Options{Comma: comma}

	tbl, err := csvio.ReadFile(input, csvOpts)
	if err != nil {
		return err
	}
	logger.Debug("parsed input", "path", input, "columns", len(tbl.Headers), "rows", len(tbl.Rows))

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

	encoding := cfg.Encoding
	if rs.OutputEncoding != "" {
		encoding = rs.OutputEncoding
	}
	if err := csvio.WriteFile(outputPath, out, csvOpts, encoding); err != nil {
		return err
	}

	logger.Debug("wrote output", "path", outputPath, "encoding", encoding, "duration", time.Since(start))
	r.Successf("Wrote %s: %d columns, %d rows (%d deleted)", outputPath, len(out.Headers), len(out.Rows), deleted)
	return nil
}

// loadRules loads, validates, and normalizes the configured rule file.
// With headers known, delete-condition columns are additionally checked
// against the input schema. An empty rules path yields an empty rule
// set, making the pipeline a pure copy.
func loadRules(cfg *config.Config, headers []string) (*rules.RuleSet, []string, error) {
	if cfg.RulesPath == "" {
		return &rules.RuleSet{}, nil, nil
	}

	doc, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, nil, err
	}

	res := rules.Validate(doc)
	errs := res.Errors
	if res.Valid {
		errs = rules.ValidateDeleteConditionsWithHeaders(doc[rules.FieldDeleteConditions], headers)
	}
	if len(errs) > 0 {
		return nil, res.Warnings, fmt.Errorf("rule file %s is invalid:\n  - %s",
			cfg.RulesPath, strings.Join(errs, "\n  - "))
	}

	rs, err := rules.FromDocument(doc)
	if err != nil {
		return nil, res.Warnings, err
	}
	return rs, res.Warnings, nil
}

// applyRules runs row deletion followed by the fixed transform steps,
// returning the result and the number of rows deleted.
func applyRules(tbl table.Table, rs *rules.RuleSet) (table.Table, int, error) {
	out, err := engine.DeleteRows(tbl, rs.DeleteConditions)
	if err != nil {
		return table.Table{}, 0, err
	}
	deleted := len(tbl.Rows) - len(out.Rows)

	out, err = engine.Transform(out, rs)
	if err != nil {
		return table.Table{}, 0, err
	}
	return out, deleted, nil
}

// watchAndApply re-runs the pipeline whenever the input or rule file
// changes, debouncing bursts of filesystem events.
func watchAndApply(ctx context.Context, cfg *config.Config, r *output.Renderer, logger *slog.Logger, opts *ApplyOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch parent directories; editors often replace files rather
	// than writing them in place.
	watched := map[string]struct{}{
		filepath.Clean(opts.Input): {},
	}
	dirs := map[string]struct{}{
		filepath.Dir(opts.Input): {},
	}
	if cfg.RulesPath != "" {
		watched[filepath.Clean(cfg.RulesPath)] = struct{}{}
		dirs[filepath.Dir(cfg.RulesPath)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	run := func() {
		if err := runPipeline(cfg, r, logger, opts.Input, opts.Output); err != nil {
			r.Errorf("%v", err)
		}
	}
	run()
	r.Printf("Watching for changes (Ctrl+C to stop)...")

	var debounce *time.Timer
	var debounceC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, ok := watched[filepath.Clean(event.Name)]; !ok {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if debounce == nil {
				debounce = time.NewTimer(200 * time.Millisecond)
			} else {
				debounce.Reset(200 * time.Millisecond)
			}
			debounceC = debounce.C
		case <-debounceC:
			debounceC = nil
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Debug("watch error", "error", err)
		}
	}
}
