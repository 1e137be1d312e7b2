package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the local database schema to the latest version.

Only the sqlite backend has a local schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.Backend != config.BackendSQLite {
				return common.NewUserError("migrate only applies to the sqlite backend", common.ErrInvalidConfig)
			}
			status, _ := cmd.Flags().GetBool("status")
			ctx := cmd.Context()

			if status {
				store, err := storage.NewSQLiteStorage(opts.cfg.DatabasePath)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = store.Close() }()

				current, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				printf(cmd, "Database:       %s\n", store.Path())
				printf(cmd, "Schema version: %d\n", current)
				printf(cmd, "Latest version: %d\n", storage.ExpectedSchemaVersion)
				if current < storage.ExpectedSchemaVersion {
					printLine(cmd, cli.FormatWarning("Pending migrations. Run 'ledger migrate'."))
				}
				return nil
			}

			slog.Info("Running database migrations", "database", opts.cfg.DatabasePath)
			store, err := opts.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().Bool("status", false, "show the schema version without applying changes")

	return cmd
}
