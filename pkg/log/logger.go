package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConfigureGlobalLogger sends the global zap logger to logFile. An empty logFile discards
// the diagnostic log.
func ConfigureGlobalLogger(logFile string) error {
	if logFile == "" {
		zap.ReplaceGlobals(zap.NewNop())
		return nil
	}

	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	logConfig.Encoding = "console"
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logConfig.OutputPaths = []string{logFile}

	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	// Set our configured logger to be accessed globally by zap.L()
	zap.ReplaceGlobals(logger)

	return nil
}
