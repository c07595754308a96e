package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"hainzelman/internal/gateway"
	"hainzelman/internal/logger"
	"hainzelman/internal/render"
	"hainzelman/internal/storage"
	"hainzelman/internal/tui"
	"hainzelman/internal/version"
	"hainzelman/internal/widget"
	"hainzelman/pkg/widgettypes"
)

// session bundles a controller with the resources it holds open.
type session struct {
	ctrl    *widget.Controller
	store   widgettypes.SessionStore
	log     *log.Logger
	closers []io.Closer
}

func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openSession wires the controller from the loaded configuration. Diagnostic
// logs go to stderr unless quiet is set, in which case they need a log file.
func (a *app) openSession(presenter widgettypes.Presenter, out *termenv.Output, quiet bool) (*session, error) {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{}
	l, closer, err := logger.ForConsole(cfg.Console && (!quiet || cfg.LogFile != ""), logger.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Prefix: "widget",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	s.log = l
	s.closers = append(s.closers, closer)

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	s.store = store
	s.closers = append(s.closers, store)

	deps := widget.Deps{
		Gateway: gateway.New(gateway.Options{
			BaseURL:       cfg.BaseURL,
			Authorization: cfg.Authorization,
			Timeout:       cfg.RequestTimeout,
			Logger:        l.WithPrefix("gateway"),
			UserAgent:     version.UserAgent(),
		}),
		Sessions:  store,
		Presenter: presenter,
		Logger:    l,
	}
	if cfg.Markdown {
		md, err := render.New(render.Options{
			Style:    cfg.MarkdownStyle,
			WordWrap: cfg.WordWrap,
			Output:   out,
		})
		if err != nil {
			l.Warn("Markdown rendering disabled", "error", err)
		} else {
			deps.Markdown = md
		}
	}

	s.ctrl = widget.New(widget.Options{
		GreetingMessage: cfg.Greeting,
		SupportEmail:    cfg.SupportEmail,
		Resume:          cfg.Resume,
	}, deps)
	return s, nil
}

func (a *app) runWidget(cmd *cobra.Command, _ []string) error {
	if !isTerminal(os.Stdout) {
		return errors.New("the chat widget needs a terminal, use 'hainzelman ask' from scripts")
	}

	presenter := tui.NewPresenter()
	s, err := a.openSession(presenter, termenv.NewOutput(os.Stdout), true)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			s.log.Error("Failed to release resources", "error", err)
		}
	}()

	s.log.Info("Starting Hainzelman", "version", version.Version, "backend", a.cfg.BaseURL)

	model := tui.New(cmd.Context(), s.ctrl, tui.Options{
		OpenOnStart: true,
		Logger:      s.log,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	presenter.Attach(p.Send)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat widget failed: %w", err)
	}
	return nil
}
