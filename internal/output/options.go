package output

import "io"

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithStyles configures the printer to use the provided StyleProvider.
// A nil or unavailable provider leaves the printer on plain labels.
func WithStyles(provider StyleProvider) Option {
	return func(p *Printer) {
		if provider != nil && provider.IsAvailable() {
			p.styles = provider
		}
	}
}

// WithWriter configures the destination. Default is os.Stdout.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithMode configures the printer to operate in a specific output mode.
func WithMode(mode Mode) Option {
	return func(p *Printer) {
		p.mode = mode
	}
}

// PlainText forces plain output, ignoring any StyleProvider.
func PlainText() Option {
	return WithMode(ModePlain)
}

// JSON configures the printer for one JSON object per message.
func JSON() Option {
	return WithMode(ModeJSON)
}

// WithoutHistory suppresses messages replayed when the session is loaded;
// only messages rendered afterwards are printed.
func WithoutHistory() Option {
	return func(p *Printer) {
		p.skipHistory = true
	}
}

// WithTypingIndicator prints the typing notice while a reply is pending.
func WithTypingIndicator(text string) Option {
	return func(p *Printer) {
		p.typingText = text
	}
}
