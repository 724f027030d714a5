package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log and Sugar stay usable before Init; they discard everything until then.
var (
	Log   *zap.Logger        = zap.NewNop()
	Sugar *zap.SugaredLogger = Log.Sugar()
)

// Init initializes the global logger configuration.
// Unknown level names fall back to info.
func Init(level string) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = zapcore.InfoLevel
		}
	}

	// Custom JSON config
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	writer := zapcore.AddSync(os.Stdout)

	// Create Core
	core := zapcore.NewCore(encoder, writer, lvl)

	Log = zap.New(core, zap.AddCaller())
	Sugar = Log.Sugar()
}

// Sync flushes buffered entries. Safe to call on the no-op logger.
func Sync() {
	_ = Log.Sync()
}
