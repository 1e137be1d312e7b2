package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// rootOptions is shared by every command of one invocation.
type rootOptions struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	config.SetDefaults(opts.v)

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: cli.LedgerIcon + " Personal finance ledger",
		Long: `ledger keeps your wallets, transactions and savings goals in balance.

Every change is validated locally, persisted to the configured backend
(a local SQLite database or the hosted API) and only then applied.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.initConfig,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.config/ledger/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("backend", "", "persistence backend (sqlite, http)")
	flags.String("database", "", "SQLite database path")
	flags.String("base-url", "", "API base URL for the http backend")
	flags.String("session", "", "session file path")

	_ = opts.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = opts.v.BindPFlag("backend", flags.Lookup("backend"))
	_ = opts.v.BindPFlag("database.path", flags.Lookup("database"))
	_ = opts.v.BindPFlag("remote.base_url", flags.Lookup("base-url"))
	_ = opts.v.BindPFlag("session.path", flags.Lookup("session"))

	cmd.AddCommand(registerCmd(opts))
	cmd.AddCommand(loginCmd(opts))
	cmd.AddCommand(logoutCmd(opts))
	cmd.AddCommand(whoamiCmd(opts))
	cmd.AddCommand(walletsCmd(opts))
	cmd.AddCommand(transactionsCmd(opts))
	cmd.AddCommand(savingsCmd(opts))
	cmd.AddCommand(profileCmd(opts))
	cmd.AddCommand(summaryCmd(opts))
	cmd.AddCommand(categoriesCmd(opts))
	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError shows the user-facing part of err.
func printError(w io.Writer, err error) {
	msg := err.Error()
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		msg = userErr.UserMessage
	}
	_, _ = fmt.Fprintln(w, cli.FormatError(msg))
}

func (o *rootOptions) initConfig(_ *cobra.Command, _ []string) error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		o.v.AddConfigPath(config.ConfigDir())
		o.v.AddConfigPath(".")
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
	}

	o.v.SetEnvPrefix("LEDGER")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	o.cfg = cfg

	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func setupLogging(cfg *config.Config) error {
	level, err := common.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	return common.SetupLogger(level, cfg.LogFormat)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ledger %s\n", version)
		},
	}
}
