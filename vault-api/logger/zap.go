package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Env string

const (
	Development Env = "development" // prints debug and above
	Production  Env = "production"  // prints info and above
)

type ZapLogger struct {
	level  zap.AtomicLevel
	logger *zap.Logger
}

var _ Logger = (*ZapLogger)(nil)

func NewZapLogger(service string, env Env) (*ZapLogger, error) {
	var cfg zap.Config
	switch env {
	case Production:
		cfg = zap.NewProductionConfig()
	case Development:
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown environment %q, expected %s or %s", env, Development, Production)
	}
	l, err := cfg.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{level: cfg.Level, logger: l}, nil
}

// NewNopLogger discards everything. Library types fall back to it when no logger is given.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{level: zap.NewAtomicLevel(), logger: zap.NewNop()}
}

func (z *ZapLogger) SetLogLevel(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	z.level.SetLevel(lvl)
}

func (z *ZapLogger) Info(msg string, fields ...Field) {
	z.logger.Info(msg, z.zapFields(fields)...)
}

func (z *ZapLogger) Warn(msg string, fields ...Field) {
	z.logger.Warn(msg, z.zapFields(fields)...)
}

func (z *ZapLogger) Error(msg string, fields ...Field) {
	z.logger.Error(msg, z.zapFields(fields)...)
}

func (z *ZapLogger) Fatal(msg string, fields ...Field) {
	z.logger.Fatal(msg, z.zapFields(fields)...)
}

func (z *ZapLogger) Debug(msg string, fields ...Field) {
	z.logger.Debug(msg, z.zapFields(fields)...)
}

func (z *ZapLogger) Infof(format string, args ...interface{}) {
	z.logger.Sugar().Infof(format, args...)
}

func (z *ZapLogger) Warnf(format string, args ...interface{}) {
	z.logger.Sugar().Warnf(format, args...)
}

func (z *ZapLogger) Errorf(format string, args ...interface{}) {
	z.logger.Sugar().Errorf(format, args...)
}

func (z *ZapLogger) Fatalf(format string, args ...interface{}) {
	z.logger.Sugar().Fatalf(format, args...)
}

func (z *ZapLogger) Debugf(format string, args ...interface{}) {
	z.logger.Sugar().Debugf(format, args...)
}

func (z *ZapLogger) SweetenFields(args []interface{}) []Field {
	return sweeten(args)
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

func (z *ZapLogger) zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, fmtValue(f.Val)))
	}
	return out
}
