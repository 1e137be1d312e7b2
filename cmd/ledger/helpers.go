package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/remote"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/session"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// errNotLoggedIn is returned by commands that need a stored session.
var errNotLoggedIn = common.NewUserError("Not logged in. Run 'ledger login' first.", common.ErrNotAuthenticated)

// openRemote connects to the configured backend. The SQLite backend is
// migrated on open.
func (o *rootOptions) openRemote(ctx context.Context) (service.Remote, func(), error) {
	switch o.cfg.Backend {
	case config.BackendHTTP:
		client, err := remote.New(o.cfg.BaseURL,
			remote.WithTimeout(o.cfg.Timeout),
			remote.WithRetry(o.cfg.Retry),
			remote.WithLogger(slog.Default().With("component", "remote")),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	default:
		store, err := o.openStorage(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

func (o *rootOptions) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(o.cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// openSession builds a ledger session restored from the session file. With
// requireAuth set, a missing login is an error.
func (o *rootOptions) openSession(ctx context.Context, requireAuth bool) (*ledger.Session, service.Remote, func(), error) {
	r, closeRemote, err := o.openRemote(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	s := ledger.New(r, session.NewFileStore(o.cfg.SessionPath),
		ledger.WithLogger(slog.Default()),
		ledger.WithObserver(ledger.ObserverFunc(logPhase)),
	)
	if err := s.Restore(ctx); err != nil {
		closeRemote()
		return nil, nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if requireAuth && !s.IsAuthenticated() {
		closeRemote()
		return nil, nil, nil, errNotLoggedIn
	}
	return s, r, closeRemote, nil
}

func logPhase(operation string, phase ledger.Phase, err error) {
	if err != nil {
		common.LogDebug("Operation failed", common.Fields{"operation": operation, "error": err})
		return
	}
	common.LogDebug("Operation phase", common.Fields{"operation": operation, "phase": phase})
}

// withSession runs fn against an authenticated session.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(context.Context, *ledger.Session) error) error {
	ctx := cmd.Context()
	s, _, closeRemote, err := o.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer closeRemote()
	return fn(ctx, s)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("Invalid amount %q", raw), err)
	}
	return amount, nil
}

func parseID(raw string) (model.ID, error) {
	id, err := model.ParseID(raw)
	if err != nil || id.IsZero() {
		return "", common.NewUserError(fmt.Sprintf("Invalid id %q", raw), err)
	}
	return id, nil
}

func parseDate(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	t, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", raw), err)
	}
	return t, nil
}

// walletName returns the display name of a wallet reference.
func walletName(s *ledger.Session, id model.ID) string {
	if id == model.RemovedWalletID {
		return cli.SubtleStyle.Render("(removed)")
	}
	if id.IsZero() {
		return "-"
	}
	w, err := s.Wallet(id)
	if err != nil {
		return id.String()
	}
	return w.Name
}

func currency(s *ledger.Session) string {
	return s.Profile().CurrencyCode()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func printLine(cmd *cobra.Command, text string) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
}

func newPrompter(cmd *cobra.Command) *cli.Prompter {
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

// confirm asks before a destructive change unless --yes was given.
func confirm(cmd *cobra.Command, question string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return nil
	}
	if err := newPrompter(cmd).Confirm(cmd.Context(), question); err != nil {
		return common.NewUserError("Canceled", err)
	}
	return nil
}

// stringFlag returns a pointer to the flag value when it was set.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func idFlag(cmd *cobra.Command, name string) (*model.ID, error) {
	raw := stringFlag(cmd, name)
	if raw == nil {
		return nil, nil
	}
	if *raw == "" {
		var empty model.ID
		return &empty, nil
	}
	id, err := parseID(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func amountFlag(cmd *cobra.Command, name string) (*decimal.Decimal, error) {
	raw := stringFlag(cmd, name)
	if raw == nil {
		return nil, nil
	}
	amount, err := parseAmount(*raw)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}
