// Package log is the structured logger used across filecat. It wraps logrus
// with a small option-based constructor, a package-level default logger and
// helpers that decorate entries with the fields carried by internal/errors.
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	serr "filecat/internal/errors"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured log lines.
type Logger struct {
	base  *logrus.Logger
	file  *os.File
	debug bool
}

type options struct {
	output   io.Writer
	json     bool
	filePath string
	debug    bool
}

// Option configures a Logger.
type Option func(*options)

// WithOutput sets the writer log lines go to. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile additionally appends every line to the file at path.
func WithFile(path string) Option {
	return func(o *options) { o.filePath = path }
}

// WithDebug enables debug output for this logger regardless of SetDebug.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

// NewLogger creates a logger from the given options.
func NewLogger(opts ...Option) *Logger {
	o := &options{output: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	l := &Logger{base: logrus.New(), debug: o.debug}
	out := o.output
	if o.filePath != "" {
		f, err := os.OpenFile(o.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", o.filePath, err)
		} else {
			l.file = f
			out = io.MultiWriter(out, f)
		}
	}
	l.base.SetOutput(out)
	l.base.SetLevel(logrus.DebugLevel)
	if o.json {
		l.base.SetFormatter(&jsonFormatter{})
	} else {
		l.base.SetFormatter(&textFormatter{})
	}
	return l
}

// Configure replaces the package-level logger.
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// SetDebug toggles debug output for every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

func (l *Logger) entry() *Entry {
	return &Entry{e: logrus.NewEntry(l.base), debug: l.debug}
}

// With returns an entry carrying the given fields.
func (l *Logger) With(fields ...Field) *Entry { return l.entry().With(fields...) }

// WithContext returns an entry bound to ctx.
func (l *Logger) WithContext(ctx context.Context) *Entry {
	return l.entry().WithContext(ctx)
}

func (l *Logger) Info(args ...interface{})                  { l.entry().Info(args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry().Infof(format, args...) }
func (l *Logger) Warn(args ...interface{})                  { l.entry().Warn(args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry().Warnf(format, args...) }
func (l *Logger) Error(args ...interface{})                 { l.entry().Error(args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry().Errorf(format, args...) }
func (l *Logger) Debug(args ...interface{})                 { l.entry().Debug(args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry().Debugf(format, args...) }

// Entry is a log line under construction.
type Entry struct {
	e     *logrus.Entry
	debug bool
}

// With adds fields to the entry.
func (e *Entry) With(fields ...Field) *Entry {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Entry{e: e.e.WithFields(data), debug: e.debug}
}

// WithContext binds ctx to the entry. A nil ctx is allowed.
func (e *Entry) WithContext(ctx context.Context) *Entry {
	if ctx == nil {
		return e
	}
	return &Entry{e: e.e.WithContext(ctx), debug: e.debug}
}

func (e *Entry) log(level logrus.Level, msg string) {
	if level == logrus.DebugLevel && !e.debug && !isDebug.Load() {
		return
	}
	e.e.WithField("caller", callerLocation()).Log(level, msg)
}

func (e *Entry) Info(args ...interface{}) { e.log(logrus.InfoLevel, fmt.Sprint(args...)) }
func (e *Entry) Infof(format string, args ...interface{}) {
	e.log(logrus.InfoLevel, fmt.Sprintf(format, args...))
}
func (e *Entry) Warn(args ...interface{}) { e.log(logrus.WarnLevel, fmt.Sprint(args...)) }
func (e *Entry) Warnf(format string, args ...interface{}) {
	e.log(logrus.WarnLevel, fmt.Sprintf(format, args...))
}
func (e *Entry) Error(args ...interface{}) { e.log(logrus.ErrorLevel, fmt.Sprint(args...)) }
func (e *Entry) Errorf(format string, args ...interface{}) {
	e.log(logrus.ErrorLevel, fmt.Sprintf(format, args...))
}
func (e *Entry) Debug(args ...interface{}) { e.log(logrus.DebugLevel, fmt.Sprint(args...)) }
func (e *Entry) Debugf(format string, args ...interface{}) {
	e.log(logrus.DebugLevel, fmt.Sprintf(format, args...))
}

// LogWithFields returns an entry on the package-level logger.
func LogWithFields(fields ...Field) *Entry {
	return logger.With(fields...)
}

// LogWithError returns an entry describing err. Application errors add their
// kind plus the path, parameter or service they carry.
func LogWithError(err error) *Entry {
	return logger.With(ErrorFields(err)...)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}

// ErrorFields returns the structured fields used to describe err.
func ErrorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{F("error", err.Error())}

	var kinded interface{ Kind() serr.ErrorKind }
	if serr.As(err, &kinded) {
		fields = append(fields, F("error_kind", kinded.Kind().String()))
	}
	var fileErr *serr.FileError
	if serr.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *serr.ConfigError
	if serr.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var inputErr *serr.InvalidInputError
	if serr.As(err, &inputErr) {
		if path, ok := inputErr.Context()["path"]; ok {
			fields = append(fields, F("path", path))
		}
	}
	var emptyErr *serr.EmptyResultError
	if serr.As(err, &emptyErr) && emptyErr.Root() != "" {
		fields = append(fields, F("path", emptyErr.Root()))
	}
	var remoteErr *serr.RemoteError
	if serr.As(err, &remoteErr) {
		fields = append(fields, F("service", remoteErr.Service()))
		if remoteErr.StatusCode() != 0 {
			fields = append(fields, F("status", remoteErr.StatusCode()))
		}
	}
	return fields
}

func Info(args ...interface{})                  { logger.entry().Info(args...) }
func Infof(format string, args ...interface{})  { logger.entry().Infof(format, args...) }
func Warn(args ...interface{})                  { logger.entry().Warn(args...) }
func Warnf(format string, args ...interface{})  { logger.entry().Warnf(format, args...) }
func Error(args ...interface{})                 { logger.entry().Error(args...) }
func Errorf(format string, args ...interface{}) { logger.entry().Errorf(format, args...) }
func Debug(args ...interface{})                 { logger.entry().Debug(args...) }
func Debugf(format string, args ...interface{}) { logger.entry().Debugf(format, args...) }

// callerLocation finds the first frame outside this file and logrus.
func callerLocation() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasSuffix(frame.File, "internal/log/logger.go") &&
			!strings.Contains(frame.Function, "sirupsen/logrus") {
			return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if !more {
			return "unknown"
		}
	}
}

type textFormatter struct{}

func (f *textFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s: %s", entry.Time.Format(timestampFormat), strings.ToUpper(entry.Level.String()), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "caller" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	if caller, ok := entry.Data["caller"]; ok {
		fmt.Fprintf(&b, " caller=%v", caller)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Data)+3)
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	data["timestamp"] = entry.Time.Format(timestampFormat)
	data["level"] = strings.ToUpper(entry.Level.String())
	data["message"] = entry.Message

	line, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(line, '\n'), nil
}
