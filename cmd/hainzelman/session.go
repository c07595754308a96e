package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hainzelman/internal/gateway"
	"hainzelman/internal/output"
	"hainzelman/internal/storage"
	"hainzelman/internal/version"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or forget the stored chat session",
	}

	var messages bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored session id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showSession(cmd, messages)
		},
	}
	show.Flags().BoolVar(&messages, "messages", false, "Fetch and print the conversation from the backend")

	forget := &cobra.Command{
		Use:   "forget",
		Short: "Remove the stored session id so the next chat starts fresh",
		Args:  cobra.NoArgs,
		RunE:  a.forgetSession,
	}

	cmd.AddCommand(show, forget)
	return cmd
}

func (a *app) showSession(cmd *cobra.Command, messages bool) error {
	store, err := storage.Open(a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open session storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	id, found, err := store.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stored session: %w", err)
	}
	if !found {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored session")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	if !messages {
		return nil
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}
	client := gateway.New(gateway.Options{
		BaseURL:       a.cfg.BaseURL,
		Authorization: a.cfg.Authorization,
		Timeout:       a.cfg.RequestTimeout,
		UserAgent:     version.UserAgent(),
	})
	remote, err := client.FetchSession(cmd.Context(), id)
	if err != nil {
		return err
	}
	printer := output.NewPrinter(output.WithWriter(cmd.OutOrStdout()), output.PlainText())
	for _, msg := range remote.Messages {
		printer.RenderMessage(msg.Content, msg.Role)
	}
	return nil
}

func (a *app) forgetSession(cmd *cobra.Command, _ []string) error {
	store, err := storage.Open(a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open session storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Remove(cmd.Context()); err != nil {
		return fmt.Errorf("failed to remove stored session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Stored session removed")
	return nil
}
