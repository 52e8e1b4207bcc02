package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/logadapters"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/config"
)

// newLogger builds the service logger in the configured format, writing to stdout.
func newLogger(cfg config.Log) (catalog.Logger, catalog.ContextualLogger, error) {
	if cfg.Format == config.LogFormatZerolog {
		level, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: log level %q", config.ErrInvalidSetting, cfg.Level)
		}

		logger := logadapters.NewZerologJSONLogger(os.Stdout, level)

		return logger, logger, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("%w: log level %q", config.ErrInvalidSetting, cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case config.LogFormatText, "":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		return nil, nil, fmt.Errorf("%w: log format %q", config.ErrInvalidSetting, cfg.Format)
	}

	logger := slog.New(handler)

	return logger, logger, nil
}
