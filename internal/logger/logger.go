package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// Verbose picks the log level for the --verbose flag
func Verbose(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	return log.InfoLevel
}

// NewFileLogger creates a logger that writes to the terminal and appends
// to the file at path
func NewFileLogger(console io.Writer, path string, level log.Level) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return NewWithLevel(io.MultiWriter(console, f), level), cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ConversionStarted logs the start of a run
func (l *Logger) ConversionStarted(input, outputDir string, pages int) {
	l.Info("conversion started",
		"input", input,
		"output_dir", outputDir,
		"pages", pages)
}

// ConversionCompleted logs the end of a run
func (l *Logger) ConversionCompleted(converted, skipped, errors int, duration time.Duration) {
	l.Info("conversion completed",
		"converted", converted,
		"skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// PageConverted logs a written note
func (l *Logger) PageConverted(title, file string, tags []string) {
	l.Info("page converted",
		"title", title,
		"file", file,
		"tags", tags)
}

// PageSkipped logs a page that produced no note
func (l *Logger) PageSkipped(title, reason string) {
	l.Warn("page skipped",
		"title", title,
		"reason", reason)
}

// MediaFetched logs a downloaded or already present media file
func (l *Logger) MediaFetched(title, file string, cached bool) {
	l.Debug("media fetched",
		"title", title,
		"file", file,
		"cached", cached)
}

// MediaFailed logs a media file that could not be resolved or downloaded
func (l *Logger) MediaFailed(title string, err error) {
	l.Warn("media failed",
		"title", title,
		"error", err)
}

// RenderFailed logs a renderer failure; the page falls back to raw markup
func (l *Logger) RenderFailed(title, renderer, stderr string, err error) {
	l.Warn("render failed, keeping raw markup",
		"title", title,
		"renderer", renderer,
		"stderr", stderr,
		"error", err)
}

// IndexWritten logs a tag index note
func (l *Logger) IndexWritten(tag, file string, pages int) {
	l.Debug("index written",
		"tag", tag,
		"file", file,
		"pages", pages)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// ConfigLoaded logs the effective configuration
func (l *Logger) ConfigLoaded(path, renderer, outputDir string) {
	l.Debug("config loaded",
		"path", path,
		"renderer", renderer,
		"output_dir", outputDir)
}
