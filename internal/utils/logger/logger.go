package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
)

// Logger writes leveled, colorized console lines tagged with a service name.
type Logger struct {
	serviceName string
}

type level struct {
	name  string
	emoji string
	print func(format string, a ...interface{})
}

var (
	levelInfo    = level{"INFO", "ℹ️ ", color.Cyan}
	levelSuccess = level{"SUCCESS", "✅ ", color.Green}
	levelWarn    = level{"WARN", "⚠️ ", color.Yellow}
	levelError   = level{"ERROR", "❌ ", color.Red}
	levelDebug   = level{"DEBUG", "🔍 ", color.Magenta}
)

func New(serviceName string) *Logger {
	return &Logger{serviceName: serviceName}
}

func (l *Logger) log(lv level, msg string) {
	_, file, line, _ := runtime.Caller(2)
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	lv.print("%s | %s | %s | %s:%d | %s | %s",
		lv.emoji,
		timestamp,
		lv.name,
		filepath.Base(file),
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(levelInfo, fmt.Sprintf(msg, args...))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	l.log(levelSuccess, fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(levelWarn, fmt.Sprintf(msg, args...))
}

// Error logs the message and returns it wrapped around err, so call sites
// can log and propagate in one step.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	formatted := fmt.Sprintf(msg, args...)
	l.log(levelError, fmt.Sprintf("%s: %v", formatted, err))
	return fmt.Errorf("%s: %w", formatted, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(levelDebug, fmt.Sprintf(msg, args...))
}
