// Package log provides structured logging for docimportance on top of
// github.com/rs/zerolog.
//
// Components obtain a named logger once and log with alternating key/value
// fields:
//
//	logger := log.GetLoggerWithName("treestats.evaluator")
//	logger.Info("Evaluation started", log.TreesKey, 100, log.DocsKey, 5000)
//
// The underlying zerolog logger is available through GetLogger for call sites
// that prefer zerolog's fluent API.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Well-known field keys.
const (
	ComponentKey  = "component"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	TreeIDKey     = "tree_id"
	IterationKey  = "iteration"
	TreesKey      = "trees"
	DocsKey       = "docs"
	LeafCountKey  = "leaf_count"
	DurationMsKey = "duration_ms"
	LossKey       = "loss"
	MethodKey     = "method"
	ErrorKey      = "error"
)

// Well-known operation and phase values.
const (
	OperationEvaluate = "evaluate"
	OperationLoad     = "load"
	OperationExport   = "export"

	PhaseSetup      = "setup"
	PhaseEvaluation = "evaluation"
	PhaseReport     = "report"
)

// Logger is the logging interface used throughout the module.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider creates named loggers.
type LoggerProvider interface {
	GetLoggerWithName(name string) Logger
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	withFields(l.zl.Debug(), fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	withFields(l.zl.Info(), fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	withFields(l.zl.Warn(), fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	withFields(l.zl.Error(), fields).Msg(msg)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(keyString(fields[i]), fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func withFields(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i < len(fields); i += 2 {
		key := keyString(fields[i])
		if i+1 >= len(fields) {
			e = e.Interface(key, nil)
			break
		}
		switch v := fields[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		case float64:
			e = e.Float64(key, v)
		case time.Duration:
			e = e.Dur(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

func keyString(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// ZerologProvider creates loggers sharing one zerolog root.
type ZerologProvider struct {
	root zerolog.Logger
}

// NewZerologProvider creates a provider writing console output to stderr.
func NewZerologProvider(level zerolog.Level) *ZerologProvider {
	return NewZerologProviderWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

// NewZerologProviderWithWriter creates a provider writing to w.
func NewZerologProviderWithWriter(w io.Writer, level zerolog.Level) *ZerologProvider {
	return &ZerologProvider{root: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// GetLoggerWithName returns a logger tagged with the component name.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.root.With().Str(ComponentKey, name).Logger()}
}

// Zerolog returns the provider's root zerolog logger.
func (p *ZerologProvider) Zerolog() *zerolog.Logger {
	return &p.root
}

var (
	mu       sync.RWMutex
	provider = NewZerologProvider(zerolog.InfoLevel)
)

// ToLogLevel parses a level name; unknown names map to info.
func ToLogLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetupLogger replaces the global provider with a console logger at level.
func SetupLogger(level string) {
	SetProvider(NewZerologProvider(ToLogLevel(level)))
}

// SetProvider replaces the global provider.
func SetProvider(p *ZerologProvider) {
	mu.Lock()
	defer mu.Unlock()
	provider = p
}

// GetLoggerWithName returns a named logger from the global provider.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// GetLogger returns the global zerolog logger.
func GetLogger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return provider.Zerolog()
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	GetLogger().Error().Err(err).Msg(msg)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}
