// Package logger provides the ports.Logger implementations: a zap-backed
// logger for the CLI and a stdlib fallback for tests and early startup.
package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger routes structured logs through zap.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZap builds the production logger. Verbose lowers the level to debug and
// switches to the human-readable console encoding.
func NewZap(verbose bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: z.Sugar()}, nil
}

// Sync flushes buffered log entries. Call it before process exit.
func (l *ZapLogger) Sync() {
	_ = l.sugar.Sync()
}

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.sugar.Debugw(msg, flatten(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.sugar.Infow(msg, flatten(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.sugar.Warnw(msg, flatten(fields)...)
}

func (l *ZapLogger) Error(msg string, err error, fields map[string]interface{}) {
	kvs := flatten(fields)
	if err != nil {
		kvs = append(kvs, "error", err.Error())
	}
	l.sugar.Errorw(msg, kvs...)
}

func flatten(fields map[string]interface{}) []interface{} {
	kvs := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kvs = append(kvs, k, v)
	}
	return kvs
}

// StdLogger is a lightweight implementation backed by Go's log package.
type StdLogger struct {
	verbose bool
}

// NewStd creates a StdLogger.
func NewStd(verbose bool) *StdLogger {
	return &StdLogger{verbose: verbose}
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[DEBUG]", msg, fields)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[INFO]", msg, fields)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[WARN]", msg, fields)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[ERROR]", msg, err, fields)
}
