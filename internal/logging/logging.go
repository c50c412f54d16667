package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New returns a slog logger backed by a zap JSON core writing to w at the
// given level ("debug", "info", "warn", "error"). The returned sync func
// flushes buffered entries.
func New(w io.Writer, level string) (*slog.Logger, func() error, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeDuration = zapcore.StringDurationEncoder

	sink := zapcore.AddSync(w)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, zap.NewAtomicLevelAt(lvl))

	return slog.New(zapslog.NewHandler(core)), sink.Sync, nil
}

// NewStdout is New writing to standard output
func NewStdout(level string) (*slog.Logger, func() error, error) {
	return New(os.Stdout, level)
}
