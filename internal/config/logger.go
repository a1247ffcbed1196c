package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

// SetupLogger creates a *logger.Logger based on the provided LogConfig,
// sets it as the global default via slog.SetDefault, and returns it.
// The caller is responsible for calling Close() on the returned logger.
// Invalid level values default to "info"; when called with an unchecked config,
// invalid format values fall back to "custom".
func SetupLogger(cfg *LogConfig) (*logger.Logger, error) {
	opts := BuildLoggerOpts(cfg)
	if opts == nil {
		return nil, errors.New("log config is nil")
	}

	log, err := logger.New(opts...)
	if err != nil {
		return nil, err
	}

	log.SetDefault()
	return log, nil
}

// BuildLoggerOpts translates cfg into logger options. It returns nil for a
// nil config. File options are added only when FilePath is set, and each
// rotation option only when its value is non-zero.
func BuildLoggerOpts(cfg *LogConfig) []logger.Option {
	if cfg == nil {
		return nil
	}

	var format logger.OutputFormat
	switch strings.ToLower(cfg.Format) {
	case "text":
		format = logger.FormatText
	case "json":
		format = logger.FormatJSON
	default:
		format = logger.FormatCustom
	}

	// nil defaults to true
	colorEnabled := true
	if cfg.Color != nil {
		colorEnabled = *cfg.Color
	}

	opts := []logger.Option{
		logger.WithLevel(parseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(colorEnabled),
	}

	if cfg.FilePath == "" {
		return opts
	}

	opts = append(opts, logger.WithFilePath(cfg.FilePath), logger.WithFileFormat(format))
	if cfg.MaxSizeMB > 0 {
		opts = append(opts, logger.WithMaxSizeMB(cfg.MaxSizeMB))
	}
	if cfg.RetentionDays > 0 {
		opts = append(opts, logger.WithRetentionDays(cfg.RetentionDays))
	}
	if cfg.MaxBackups > 0 {
		opts = append(opts, logger.WithMaxBackups(cfg.MaxBackups))
	}
	if cfg.CompressRotated != nil {
		opts = append(opts, logger.WithCompressRotated(*cfg.CompressRotated))
	}
	return opts
}

// parseLevel converts a string level name to the corresponding slog.Level.
// Unrecognized values default to slog.LevelInfo.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
