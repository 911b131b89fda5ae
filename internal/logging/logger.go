// Package logging provides component-scoped, colored, leveled logging used
// across the agent runtime. It never writes the structured JSONL session or
// metrics records — those go through internal/persistence.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level is the severity of a log line.
type Level string

const (
	Debug Level = "DEBUG"
	Info  Level = "INFO"
	Warn  Level = "WARN"
	Error Level = "ERROR"
)

var levelRank = map[Level]int{Debug: 0, Info: 1, Warn: 2, Error: 3}

var (
	debugColor = color.New(color.FgCyan).SprintFunc()
	infoColor  = color.New(color.Reset).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

// Logger is a component-scoped logger.
type Logger struct {
	mu        sync.Mutex
	component string
	out       io.Writer
	minLevel  Level
}

// New creates a Logger for the named component, writing to out (os.Stderr
// if out is nil). Lines below minLevel are discarded cheaply before any
// formatting happens.
func New(component string, out io.Writer, minLevel Level) *Logger {
	if out == nil {
		out = os.Stderr
	}
	if _, ok := levelRank[minLevel]; !ok {
		minLevel = Info
	}
	return &Logger{component: component, out: out, minLevel: minLevel}
}

func (l *Logger) enabled(lvl Level) bool {
	return levelRank[lvl] >= levelRank[l.minLevel]
}

func (l *Logger) log(lvl Level, colorFn func(...interface{}) string, format string, args ...interface{}) {
	if !l.enabled(lvl) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%s [%s] %s %s\n", time.Now().Format(time.RFC3339), lvl, l.component, msg)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, colorFn(line))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(Debug, debugColor, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(Info, infoColor, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(Warn, warnColor, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(Error, errorColor, format, args...) }

// With returns a child logger scoped to "component.sub", inheriting the
// parent's writer and minimum level.
func (l *Logger) With(sub string) *Logger {
	return New(l.component+"."+sub, l.out, l.minLevel)
}
