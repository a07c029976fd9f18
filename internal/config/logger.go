package config

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the logger every command shares. Output goes to w so
// that command output on stdout stays clean. The development environment
// gets colored console lines; any other environment gets JSON. Debug level
// is on when configured or when DEBUG=true.
func NewLogger(c *Config, w io.Writer) *zap.SugaredLogger {
	var encoder zapcore.Encoder
	if c.Environment == "development" {
		encConfig := zap.NewDevelopmentEncoderConfig()
		encConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encConfig.EncodeCaller = nil
		encConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(time.StampMicro))
		}
		encoder = zapcore.NewConsoleEncoder(encConfig)
	} else {
		encConfig := zap.NewProductionEncoderConfig()
		encConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encConfig)
	}

	level := zapcore.InfoLevel
	if c.Debug || strings.EqualFold(os.Getenv("DEBUG"), "true") {
		level = zapcore.DebugLevel
	}

	ws := zapcore.Lock(zapcore.AddSync(w))
	core := zapcore.NewCore(encoder, ws, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.ErrorOutput(ws)).Sugar().With("version", c.Version)
}
