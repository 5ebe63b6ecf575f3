// Package commands implements the reshape CLI subcommands.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/reshape-labs/reshape/internal/cli/config"
	"github.com/reshape-labs/reshape/internal/cli/output"
)

type configKey struct{}
type rendererKey struct{}
type loggerKey struct{}

// NewContext stores the loaded config, renderer, and logger on ctx for
// retrieval inside command Run functions.
func NewContext(ctx context.Context, cfg *config.Config, r *output.Renderer, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	ctx = context.WithValue(ctx, rendererKey{}, r)
	ctx = context.WithValue(ctx, loggerKey{}, logger)
	return ctx
}

// GetConfig retrieves the config from the context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Encoding:     config.DefaultEncoding,
		Delimiter:    config.DefaultDelimiter,
		OutputFormat: config.DefaultFormat,
	}
}

// GetRenderer retrieves the renderer from the context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// GetLogger retrieves the logger from the context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
