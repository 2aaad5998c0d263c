package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger writes one JSON object per line. Derived loggers share the writer.
type Logger struct {
	level     Level
	out       io.Writer
	mu        *sync.Mutex
	component string
	fields    map[string]any
}

func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func NewLogger(levelStr string) *Logger {
	return NewLoggerWithWriter(levelStr, os.Stdout)
}

func NewLoggerWithWriter(levelStr string, w io.Writer) *Logger {
	return &Logger{
		level: ParseLevel(levelStr),
		out:   w,
		mu:    &sync.Mutex{},
	}
}

// Nop discards everything.
func Nop() *Logger {
	return NewLoggerWithWriter("error", io.Discard)
}

func (l *Logger) WithComponent(component string) *Logger {
	cp := *l
	cp.component = component
	return &cp
}

// With returns a logger that adds fields to every record.
func (l *Logger) With(fields map[string]any) *Logger {
	cp := *l
	cp.fields = make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		cp.fields[k] = v
	}
	for k, v := range fields {
		cp.fields[k] = v
	}
	return &cp
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Debugw(msg string, fields map[string]any) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Infow(msg string, fields map[string]any) { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warnw(msg string, fields map[string]any) { l.log(LevelWarn, msg, fields) }
func (l *Logger) Errorw(msg string, fields map[string]any) { l.log(LevelError, msg, fields) }

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...), map[string]any{"fatal": true})
	os.Exit(1)
}

func (l *Logger) log(level Level, msg string, fields map[string]any) {
	if level < l.level {
		return
	}
	rec := make(map[string]any, len(l.fields)+len(fields)+4)
	for k, v := range l.fields {
		rec[k] = v
	}
	for k, v := range fields {
		rec[k] = v
	}
	rec["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	rec["level"] = level.String()
	rec["msg"] = msg
	if l.component != "" {
		rec["component"] = l.component
	}

	line, err := json.Marshal(rec)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":"error","msg":"log.marshal_failed","error":%q}`, err.Error()))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}
