// Package log is the structured JSON logger shared by every stage of a run.
//
// Each entry carries the run identity (run_id, attempt, and job_id and
// parent_run_id when set). Stage-specific values go under "fields".
// CLI code that wants printf-style messages uses Sugar.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/relay/types"
)

// Logger is a zap logger bound to one run.
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
	// ctx holds the fields attached so far, so WithOutput can rebuild
	// the logger on a new core.
	ctx []zap.Field
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:     "timestamp",
	LevelKey:    "level",
	MessageKey:  "message",
	EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
	EncodeLevel: zapcore.LowercaseLevelEncoder,
}

// NewLogger logs to stderr at debug level.
func NewLogger(meta *types.RunMeta) *Logger {
	return NewLoggerWithWriter(meta, os.Stderr)
}

// NewLoggerWithWriter logs to w at debug level.
func NewLoggerWithWriter(meta *types.RunMeta, w io.Writer) *Logger {
	l := &Logger{level: zap.NewAtomicLevelAt(zapcore.DebugLevel), ctx: runFields(meta)}
	l.zap = zap.New(l.core(w)).With(l.ctx...)
	return l
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

func runFields(meta *types.RunMeta) []zap.Field {
	fs := []zap.Field{
		zap.String("run_id", meta.RunID),
		zap.Int("attempt", meta.Attempt),
	}
	if meta.JobID != nil {
		fs = append(fs, zap.String("job_id", *meta.JobID))
	}
	if meta.ParentRunID != nil {
		fs = append(fs, zap.String("parent_run_id", *meta.ParentRunID))
	}
	return fs
}

func (l *Logger) core(w io.Writer) zapcore.Core {
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), l.level)
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(name string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(name)
	if err != nil || lvl > zapcore.ErrorLevel {
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn, or error)", name)
	}
	return lvl, nil
}

// SetLevel changes the minimum level of l and every logger derived from it.
func (l *Logger) SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	return nil
}

// WithOutput rebuilds l on w, keeping attached context.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return &Logger{zap: zap.New(l.core(w)).With(l.ctx...), level: l.level, ctx: l.ctx}
}

// With attaches top-level context fields.
func (l *Logger) With(fields map[string]any) *Logger {
	added := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		added = append(added, zap.Any(k, v))
	}
	ctx := append(append([]zap.Field(nil), l.ctx...), added...)
	return &Logger{zap: l.zap.With(added...), level: l.level, ctx: ctx}
}

func (l *Logger) Debug(msg string, fields map[string]any) { l.log(zapcore.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields map[string]any) { l.log(zapcore.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]any) { l.log(zapcore.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields map[string]any) { l.log(zapcore.ErrorLevel, msg, fields) }

func (l *Logger) log(lvl zapcore.Level, msg string, fields map[string]any) {
	if len(fields) == 0 {
		l.zap.Log(lvl, msg)
		return
	}
	l.zap.Log(lvl, msg, zap.Any("fields", fields))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a printf-style view carrying the same context.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.zap.Sugar()
}
