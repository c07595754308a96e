package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"hainzelman/internal/output"
	"hainzelman/internal/storage"
	"hainzelman/internal/tui"
	"hainzelman/internal/widget"
	"hainzelman/pkg/widgettypes"
)

// errReplyFailed is returned when the backend could not answer.
var errReplyFailed = errors.New("the chat backend did not answer")

type askOptions struct {
	json    bool
	plain   bool
	history bool
}

func newAskCmd(a *app) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message and print the reply",
		Long: `Send a single message in the stored session and print the reply.
Use "-" as the message to read it from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print one JSON object per message")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Print without colours or markdown styling")
	cmd.Flags().BoolVar(&opts.history, "history", false, "Also print the resumed conversation")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, args []string, opts askOptions) error {
	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	terminal := isTerminal(out)

	printerOpts := []output.Option{output.WithWriter(out)}
	switch {
	case opts.json:
		printerOpts = append(printerOpts, output.JSON())
	case opts.plain || !terminal:
		printerOpts = append(printerOpts, output.PlainText())
	default:
		printerOpts = append(printerOpts, output.WithStyles(output.NewRoleStyles()))
	}
	if !opts.history {
		printerOpts = append(printerOpts, output.WithoutHistory())
	}
	if terminal && !opts.json {
		printerOpts = append(printerOpts, output.WithTypingIndicator(tui.TypingIndicator))
	}
	printer := output.NewPrinter(printerOpts...)

	if opts.json || opts.plain {
		a.cfg.Markdown = false
	}
	s, err := a.openSession(printer, termenv.NewOutput(out), false)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			s.log.Error("Failed to release resources", "error", err)
		}
	}()

	ctx := cmd.Context()
	if err := s.ctrl.Bootstrap(ctx); err != nil {
		return err
	}
	if err := s.ctrl.Send(ctx, prompt); err != nil {
		return err
	}

	transcript := s.ctrl.Transcript()
	if len(transcript) > 0 && transcript[len(transcript)-1].Role == widgettypes.RoleAssistantError {
		return errReplyFailed
	}
	// The memory driver forgets the handoff when this process exits.
	if _, volatile := s.store.(*storage.Memory); s.ctrl.State().HandoffActive && !volatile {
		fmt.Fprintln(cmd.ErrOrStderr(), "Your next message goes to our support team.")
	}
	return nil
}

func readPrompt(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, widgettypes.MaxInputLength*4+1))
		if err != nil {
			return "", fmt.Errorf("failed to read message from stdin: %w", err)
		}
		args = []string{strings.TrimRight(string(data), "\n")}
	}

	prompt := strings.Join(args, " ")
	if strings.TrimSpace(prompt) == "" {
		return "", widget.ErrEmptyInput
	}
	if n := len([]rune(prompt)); n > widgettypes.MaxInputLength {
		return "", fmt.Errorf("message is %d characters long, the limit is %d", n, widgettypes.MaxInputLength)
	}
	return prompt, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
