// Package logger builds the diagnostic loggers injected into widget components.
// It configures structured logging via charmbracelet/log; nothing in this
// package mutates process-wide state.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Options controls how a logger is built.
type Options struct {
	Level  string    // debug|info|warn|error, empty falls back to HAINZELMAN_LOG_LEVEL then info
	File   string    // optional path, logs are appended there instead of Output
	Output io.Writer // defaults to os.Stderr
	Prefix string    // component prefix, rendered with styled level badges when set
}

// New creates a logger from opts. The returned closer releases the log file, if any.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := opts.Level
	if level == "" {
		level = strings.ToLower(os.Getenv("HAINZELMAN_LOG_LEVEL"))
	}

	var output io.Writer = os.Stderr
	if opts.Output != nil {
		output = opts.Output
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, err
		}
		output = file
		closer = file
	}

	l := log.NewWithOptions(output, log.Options{
		Level: ParseLevel(level),
	})
	l.SetTimeFormat("")
	if opts.Prefix != "" {
		l.SetPrefix(opts.Prefix + " ")
		l.SetStyles(componentStyles())
	}
	return l, closer, nil
}

// Nop returns a logger that discards everything. It is injected when the host
// disables diagnostic output.
func Nop() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}

// ForConsole returns the configured logger when console output is enabled and
// a no-op logger otherwise.
func ForConsole(enabled bool, opts Options) (*log.Logger, io.Closer, error) {
	if !enabled {
		return Nop(), nopCloser{}, nil
	}
	return New(opts)
}

// ParseLevel converts string to log level
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func componentStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("33")). // Blue background
		Foreground(lipgloss.Color("15"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("196")). // Red background
		Foreground(lipgloss.Color("15"))

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("240")).
		Foreground(lipgloss.Color("15"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("214")).
		Foreground(lipgloss.Color("15"))

	styles.Keys["operation"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styles.Keys["session_id"] = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	return styles
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
