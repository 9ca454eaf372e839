package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mama165/sdk-go/logs"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// NewLogger builds the console logger for level. When file is set, records are
// also written as JSON to a rotating file. The closer flushes that file.
func NewLogger(level, file string) (*slog.Logger, io.Closer, error) {
	logger := logs.GetLoggerFromString(level)
	if file == "" {
		return logger, io.NopCloser(nil), nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return logger, io.NopCloser(nil), err
	}

	writer := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	fileHandler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: lvl})
	return slog.New(teeHandler{logger.Handler(), fileHandler}), writer, nil
}

// teeHandler forwards every record to all handlers enabled for its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make(teeHandler, len(t))
	for i, h := range t {
		res[i] = h.WithAttrs(attrs)
	}
	return res
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	res := make(teeHandler, len(t))
	for i, h := range t {
		res[i] = h.WithGroup(name)
	}
	return res
}
