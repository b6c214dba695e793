package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes one key=value line per entry.
type Logger struct {
	mu     *sync.Mutex
	writer io.Writer
	fields []Field
}

func New() *Logger {
	return &Logger{writer: os.Stdout, mu: &sync.Mutex{}}
}

func NewWithWriter(w io.Writer) *Logger {
	return &Logger{writer: w, mu: &sync.Mutex{}}
}

// Discard returns a logger that drops everything.
func Discard() *Logger { return NewWithWriter(io.Discard) }

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	child := &Logger{writer: l.writer, mu: l.mu}
	child.fields = append(append(child.fields, l.fields...), fields...)
	return child
}

func (l *Logger) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log("WARNING", msg, fields...) }
func (l *Logger) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields...) }

func (l *Logger) log(level, msg string, fields ...Field) {
	output := fmt.Sprintf("LEVEL=%s MESSAGE=%s", level, msg)
	for _, field := range l.fields {
		output += fmt.Sprintf(" %s=%v", field.Key, field.Value)
	}
	for _, field := range fields {
		output += fmt.Sprintf(" %s=%v", field.Key, field.Value)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintln(l.writer, output)
}

type Field struct {
	Key   string
	Value interface{}
}

func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Action(value string) Field  { return F("ACTION", value) }
func Booking(value string) Field { return F("BOOKING", value) }
func Room(value string) Field    { return F("ROOM", value) }
func Count(value int) Field      { return F("COUNT", value) }
func Error(value error) Field    { return F("ERROR", value) }
func Outcome(value string) Field { return F("OUTCOME", value) }
func Event(value string) Field   { return F("EVENT", value) }
func Driver(value string) Field  { return F("DRIVER", value) }
func Addr(value string) Field    { return F("ADDR", value) }
func Reason(value string) Field  { return F("REASON", value) }
