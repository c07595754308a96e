// Package render turns assistant markdown into styled terminal text.
package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// DefaultWordWrap is used when no positive width is configured.
const DefaultWordWrap = 80

// Styles accepted by Options.Style. Anything else is treated as a path to a
// glamour JSON style file.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
	StyleASCII = "ascii"
)

// Options configures a Markdown renderer.
type Options struct {
	Style    string
	WordWrap int
	// CacheSize bounds the rendered-output cache. Zero uses DefaultCacheSize.
	CacheSize int
	// Output is inspected to resolve StyleAuto. Defaults to stdout.
	Output *termenv.Output
}

// Markdown renders markdown with glamour. It is safe for concurrent use.
type Markdown struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	style    string
	width    int
	cache    *cache
}

// New creates a renderer. A style that glamour cannot load falls back to the
// dark theme before giving up.
func New(opts Options) (*Markdown, error) {
	width := opts.WordWrap
	if width <= 0 {
		width = DefaultWordWrap
	}
	out := opts.Output
	if out == nil {
		out = termenv.NewOutput(os.Stdout)
	}

	style := ResolveStyle(opts.Style, out)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		style = StyleDark
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
		}
	}

	return &Markdown{renderer: renderer, style: style, width: width, cache: newCache(opts.CacheSize)}, nil
}

// ResolveStyle maps StyleAuto to a concrete glamour style for out: notty when
// the terminal has no colour support, otherwise dark or light following the
// background.
func ResolveStyle(style string, out *termenv.Output) string {
	style = strings.TrimSpace(style)
	if style != "" && !strings.EqualFold(style, StyleAuto) {
		return style
	}
	if out == nil || out.Profile == termenv.Ascii {
		return StyleNoTTY
	}
	if out.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}

// Style returns the glamour style in use.
func (m *Markdown) Style() string {
	return m.style
}

// WordWrap returns the configured wrap width.
func (m *Markdown) WordWrap() int {
	return m.width
}

// Render renders markdown. Surrounding blank lines added by glamour are removed.
func (m *Markdown) Render(markdown string) (string, error) {
	if rendered, ok := m.cache.get(markdown); ok {
		return rendered, nil
	}

	m.mu.Lock()
	rendered, err := m.renderer.Render(markdown)
	m.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	rendered = strings.Trim(rendered, "\n")
	m.cache.put(markdown, rendered)
	return rendered, nil
}
