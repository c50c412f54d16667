package testutil

import (
	"bytes"
	"log/slog"

	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/mcoot/codebreaker/internal/logging"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(zapslog.NewHandler(zapcore.NewNopCore()))
}

// CaptureLogger returns a debug-level logger writing the production JSON
// format into the returned buffer
func CaptureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger, _, err := logging.New(&buf, "debug")
	if err != nil {
		panic(err)
	}
	return logger, &buf
}
