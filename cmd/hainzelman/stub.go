package main

import (
	"github.com/spf13/cobra"

	"hainzelman/internal/devserver"
	"hainzelman/internal/logger"
	"hainzelman/internal/testutils"
)

func newStubServerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub-server",
		Short: "Run an in-memory chat backend for local development",
		Long: `Run a chat backend that keeps sessions in memory. It echoes prompts,
offers a human handoff when asked for one and accepts contact emails.
Requests must carry the configured --auth value when one is set.`,
		Args: cobra.NoArgs,
	}
	var testMode bool
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return a.runStubServer(cmd, testMode)
	}
	cmd.Flags().String("listen", "127.0.0.1:8787", "Address to listen on")
	cmd.Flags().BoolVar(&testMode, "test-mode", false, "Use deterministic session ids and timestamps")
	return cmd
}

func (a *app) runStubServer(cmd *cobra.Command, testMode bool) error {
	l, closer, err := logger.New(logger.Options{
		Level:  a.cfg.LogLevel,
		File:   a.cfg.LogFile,
		Output: cmd.ErrOrStderr(),
		Prefix: "stub",
	})
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	opts := devserver.Options{
		Authorization: a.cfg.Authorization,
		Logger:        l,
	}
	if testMode {
		opts.NewID = testutils.NewSequence().UUID
		opts.Clock = testutils.NewClock().Now
	}
	return devserver.New(opts).ListenAndServe(cmd.Context(), a.cfg.Listen)
}
