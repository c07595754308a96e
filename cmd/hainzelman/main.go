// Package main provides the Hainzelman CLI entry point.
// Hainzelman hosts the support chat widget in a terminal, answers one-off
// questions from scripts and runs a stub backend for local development.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hainzelman/internal/config"
	"hainzelman/internal/version"
)

type app struct {
	loader     *config.Loader
	configFile string
	cfg        *config.Config
}

func main() {
	rootCmd, err := newRootCmd(config.NewLoader())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flags: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(loader *config.Loader) (*cobra.Command, error) {
	a := &app{loader: loader}

	// rootCmd opens the chat widget; it is the default behaviour
	rootCmd := &cobra.Command{
		Use:   "hainzelman",
		Short: "Hainzelman - support chat in your terminal",
		Long: `Hainzelman talks to a Hainzelman chat backend: it resumes your last
conversation, renders replies as markdown and hands you over to a human when the
assistant cannot help.`,
		Version:           version.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
		RunE:              a.runWidget,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file")
	flags.String(config.KeyBaseURL, "", "Chat backend base URL")
	flags.String(config.KeyAuth, "", "Authorization header value sent to the backend")
	flags.String(config.KeyGreeting, config.DefaultGreeting, "Greeting shown as the first message")
	flags.String(config.KeySupportEmail, "", "Support address passed along with handoff contacts")
	flags.Bool(config.KeyConsole, false, "Enable diagnostic logging")
	flags.String(config.KeyLogLevel, "info", "Set log level (debug|info|warn|error)")
	flags.String(config.KeyLogFile, "", "Write logs to file instead of stderr")
	flags.String(config.KeyStorageDriver, "file", "Session id storage (file|sqlite|redis|memory)")
	flags.String(config.KeyStoragePath, "", "Session file or database path")
	flags.String(config.KeyRedisAddr, "", "Redis address for the redis storage driver")
	flags.String(config.KeyNamespace, "", "Separate stored sessions per widget instance")
	flags.Bool(config.KeyMarkdown, true, "Render assistant replies as markdown")
	flags.String(config.KeyMarkdownStyle, "auto", "Markdown style (auto|dark|light|notty|ascii or a JSON style file)")
	flags.Int(config.KeyWordWrap, 80, "Markdown word wrap width")
	flags.Duration(config.KeyRequestTimeout, 0, "Per-request timeout, 0 disables it")
	flags.Bool(config.KeyResume, true, "Resume the stored session instead of starting a new one")

	if err := bindFlags(loader, flags, configKeys...); err != nil {
		return nil, err
	}

	askCmd := newAskCmd(a)
	stubCmd := newStubServerCmd(a)
	if err := bindFlags(loader, stubCmd.Flags(), config.KeyListen); err != nil {
		return nil, err
	}

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(newSessionCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd, nil
}

var configKeys = []string{
	config.KeyBaseURL,
	config.KeyAuth,
	config.KeyGreeting,
	config.KeySupportEmail,
	config.KeyConsole,
	config.KeyLogLevel,
	config.KeyLogFile,
	config.KeyStorageDriver,
	config.KeyStoragePath,
	config.KeyRedisAddr,
	config.KeyNamespace,
	config.KeyMarkdown,
	config.KeyMarkdownStyle,
	config.KeyWordWrap,
	config.KeyRequestTimeout,
	config.KeyResume,
}

func bindFlags(loader *config.Loader, flags *pflag.FlagSet, keys ...string) error {
	for _, key := range keys {
		if err := loader.Viper().BindPFlag(key, flags.Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", key, err)
		}
	}
	return nil
}

func (a *app) load(_ *cobra.Command, _ []string) error {
	a.loader.ConfigFile = a.configFile
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.Detailed())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show build details")
	return cmd
}
