package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap is the production Logger backend: structured JSON lines over the
// given writers, one zapcore.Core per Level and above. A Node logs far less
// than an HTTP service does (connection up/down, process spawned/died, a
// dropped frame) so, unlike a request-serving system, there is no buffered
// file sink or per-request field scoping to manage here — every Write call
// already corresponds to an event worth a syscall.
type Zap struct {
	core  *zap.Logger
	sugar *zap.SugaredLogger
}

var _ Logger = (*Zap)(nil)

// NewZap builds a Zap logger at level, writing JSON lines to every writer.
func NewZap(level Level, writers ...io.Writer) *Zap {
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig())
	core := zapcore.NewCore(encoder, zap.CombineWriteSyncers(syncers...), toZapLevel(level))

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Zap{core: zl, sugar: zl.Sugar()}
}

func (z *Zap) Debug(v ...any)                  { z.sugar.Debug(v...) }
func (z *Zap) Debugf(format string, v ...any)  { z.sugar.Debugf(format, v...) }
func (z *Zap) Info(v ...any)                   { z.sugar.Info(v...) }
func (z *Zap) Infof(format string, v ...any)   { z.sugar.Infof(format, v...) }
func (z *Zap) Warn(v ...any)                   { z.sugar.Warn(v...) }
func (z *Zap) Warnf(format string, v ...any)   { z.sugar.Warnf(format, v...) }
func (z *Zap) Error(v ...any)                  { z.sugar.Error(v...) }
func (z *Zap) Errorf(format string, v ...any)  { z.sugar.Errorf(format, v...) }
func (z *Zap) Fatal(v ...any)                  { z.sugar.Fatal(v...) }
func (z *Zap) Fatalf(format string, v ...any)  { z.sugar.Fatalf(format, v...) }

// LogLevel returns the Level this logger's core currently emits at.
func (z *Zap) LogLevel() Level {
	switch z.core.Level() {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarningLevel
	case zapcore.ErrorLevel:
		return ErrorLevel
	case zapcore.FatalLevel:
		return FatalLevel
	default:
		return InvalidLevel
	}
}

// Named scopes every subsequent line with a "node" field set to nodeID —
// used by node.New so every line a Node logs is attributable once many
// Nodes share one process's stdout (as they do in this repo's own tests).
func (z *Zap) Named(nodeID string) *Zap {
	scoped := z.core.With(zap.String("node", nodeID))
	return &Zap{core: scoped, sugar: scoped.Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.DebugLevel
	}
}
