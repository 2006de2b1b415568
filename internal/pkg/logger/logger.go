package logger

import (
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
)

// Level selects how chatty the logger is.
type Level int

const (
	LevelQuiet Level = iota
	LevelNormal
	LevelVerbose
)

// LevelFromFlags maps --verbose/--quiet onto a Level. Verbose wins.
func LevelFromFlags(verbose, quiet bool) Level {
	switch {
	case verbose:
		return LevelVerbose
	case quiet:
		return LevelQuiet
	default:
		return LevelNormal
	}
}

// CharmLogger implements ports.Logger on top of charmbracelet/log.
type CharmLogger struct {
	log *log.Logger
}

// New creates a CharmLogger writing to stderr.
func New(level Level) *CharmLogger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a CharmLogger writing to w.
func NewWithWriter(w io.Writer, level Level) *CharmLogger {
	verbose := level == LevelVerbose
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    verbose,
		ReportTimestamp: verbose,
		Prefix:          "gpa",
	})
	switch level {
	case LevelVerbose:
		l.SetLevel(log.DebugLevel)
	case LevelQuiet:
		l.SetLevel(log.WarnLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
	return &CharmLogger{log: l}
}

func (l *CharmLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Helper()
	l.log.Debug(msg, keyvals(fields, nil)...)
}

func (l *CharmLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Helper()
	l.log.Info(msg, keyvals(fields, nil)...)
}

func (l *CharmLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Helper()
	l.log.Warn(msg, keyvals(fields, nil)...)
}

func (l *CharmLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.log.Helper()
	l.log.Error(msg, keyvals(fields, err)...)
}

// keyvals flattens fields in key order so output is stable.
func keyvals(fields map[string]interface{}, err error) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]interface{}, 0, len(keys)*2+2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	if err != nil {
		out = append(out, "err", err)
	}
	return out
}

// Nop discards everything. Handy in tests.
type Nop struct{}

func (Nop) Debug(string, map[string]interface{})        {}
func (Nop) Info(string, map[string]interface{})         {}
func (Nop) Warn(string, map[string]interface{})         {}
func (Nop) Error(string, error, map[string]interface{}) {}
