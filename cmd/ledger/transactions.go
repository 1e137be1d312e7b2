package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/ofx"
	"github.com/Veraticus/the-books-must-balance/internal/pattern"
	"github.com/spf13/cobra"
)

func transactionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn", "tx"},
		Short:   "Manage transactions",
		Long:    `List, record, delete and import income and expense transactions.`,
	}

	cmd.AddCommand(listTransactionsCmd(opts))
	cmd.AddCommand(addTransactionCmd(opts))
	cmd.AddCommand(deleteTransactionCmd(opts))
	cmd.AddCommand(importTransactionsCmd(opts))

	return cmd
}

func parseTransactionType(raw string) (model.TransactionType, error) {
	t := model.TransactionType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", common.NewUserError(fmt.Sprintf("Unknown transaction type %q (use income or expense)", raw), nil)
	}
	return t, nil
}

func listTransactionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			walletFilter, err := idFlag(cmd, "wallet")
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			return opts.withSession(cmd, func(_ context.Context, s *ledger.Session) error {
				code := currency(s)
				table := cli.NewTable("ID", "Date", "Wallet", "Category", "Description", "Amount").AlignRight(5)
				for _, txn := range s.Transactions() {
					if walletFilter != nil && txn.WalletID != *walletFilter {
						continue
					}
					if limit > 0 && table.Len() >= limit {
						break
					}
					table.AddRow(
						txn.ID.String(),
						cli.FormatDate(txn.Date),
						walletName(s, txn.WalletID),
						txn.Category,
						txn.Description,
						cli.FormatSigned(txn.Amount, txn.Type, code),
					)
				}

				if table.Len() == 0 {
					printLine(cmd, cli.InfoStyle.Render("No transactions found."))
					return nil
				}
				printLine(cmd, cli.FormatTitle("Transactions"))
				printf(cmd, "%s", table.Render())
				return nil
			})
		},
	}

	cmd.Flags().String("wallet", "", "only show transactions of this wallet id")
	cmd.Flags().IntP("limit", "n", 0, "show at most this many transactions")

	return cmd
}

func addTransactionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an income or expense",
		Long: `Record an income or expense against a wallet. The wallet balance moves
by the amount; expenses larger than the balance are rejected.`,
		Example: `  ledger transactions add 42.50 --wallet 3 --category Groceries -d "Weekly shop"
  ledger transactions add 2500 --wallet 3 --type income --category Salary -d "June salary"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			rawWallet, _ := cmd.Flags().GetString("wallet")
			walletID, err := parseID(rawWallet)
			if err != nil {
				return err
			}
			rawType, _ := cmd.Flags().GetString("type")
			txnType, err := parseTransactionType(rawType)
			if err != nil {
				return err
			}
			rawDate, _ := cmd.Flags().GetString("date")
			category, _ := cmd.Flags().GetString("category")
			description, _ := cmd.Flags().GetString("description")

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				date, err := parseDate(rawDate, model.DateOnly(time.Now()))
				if err != nil {
					return err
				}
				txn, err := s.AddTransaction(ctx, model.TransactionDraft{
					Date:        date,
					WalletID:    walletID,
					Category:    category,
					Description: description,
					Type:        txnType,
					Amount:      amount,
				})
				if err != nil {
					return err
				}

				code := currency(s)
				w, _ := s.Wallet(walletID)
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Recorded %s (#%s) in %s",
					cli.FormatSigned(txn.Amount, txn.Type, code), txn.ID, w.Name)))
				printf(cmd, "  %s balance: %s\n", w.Name, cli.FormatMoney(w.Balance, code))
				return nil
			})
		},
	}

	cmd.Flags().String("wallet", "", "wallet id (required)")
	cmd.Flags().String("type", string(model.TransactionExpense), "income or expense")
	cmd.Flags().String("category", "", "category name")
	cmd.Flags().StringP("description", "d", "", "description")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

func deleteTransactionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and undo its effect on the wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				txn, err := s.Transaction(id)
				if err != nil {
					return err
				}
				code := currency(s)
				if err := confirm(cmd, fmt.Sprintf("Delete %s %s?", txn.Description, cli.FormatMoney(txn.Amount, code))); err != nil {
					return err
				}
				if err := s.DeleteTransaction(ctx, id); err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess("Deleted transaction #"+id.String()))
				if w, err := s.Wallet(txn.WalletID); err == nil {
					printf(cmd, "  %s balance: %s\n", w.Name, cli.FormatMoney(w.Balance, code))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip confirmation")

	return cmd
}

func importTransactionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import transactions from OFX or QFX files exported from your bank into a
wallet. Every record goes through the same checks as 'transactions add';
records that fail are reported and skipped.

Categories come from the statement's transaction type and can be refined
with import.rules in the config file.`,
		Example: `  ledger transactions import ~/Downloads/checking_june.qfx --wallet 3
  ledger transactions import ~/Downloads/*.ofx --wallet 3 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawWallet, _ := cmd.Flags().GetString("wallet")
			walletID, err := parseID(rawWallet)
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			files, err := expandFiles(args)
			if err != nil {
				return err
			}
			drafts, err := parseStatements(cmd.Context(), files, walletID)
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				printLine(cmd, cli.FormatWarning("No transactions found"))
				return nil
			}
			if matcher := pattern.NewMatcher(opts.cfg.ImportRules); matcher.Len() > 0 {
				if n := matcher.Categorize(drafts); n > 0 {
					printLine(cmd, cli.FormatInfo(fmt.Sprintf("Categorized %d transactions from import rules", n)))
				}
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				if _, err := s.Wallet(walletID); err != nil {
					return err
				}
				code := currency(s)

				if dryRun {
					table := cli.NewTable("Date", "Category", "Description", "Amount").AlignRight(3)
					for _, d := range drafts {
						table.AddRow(cli.FormatDate(d.Date), d.Category, d.Description, cli.FormatSigned(d.Amount, d.Type, code))
					}
					printLine(cmd, cli.FormatTitle(fmt.Sprintf("Would import %d transactions", len(drafts))))
					printf(cmd, "%s", table.Render())
					return nil
				}

				handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Import", "Transactions imported so far were kept.")
				ctx, stop := handler.HandleInterrupts(ctx)
				defer stop()

				progress := cli.NewProgress(cmd.OutOrStdout(), len(drafts), "Importing")
				result, err := s.ImportTransactions(ctx, drafts, progress.Set)
				if err == nil {
					progress.Finish()
				}

				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Imported %d of %d transactions", len(result.Imported), len(drafts))))
				common.LogInfo("Import finished", common.Fields{
					"wallet":   walletID,
					"imported": len(result.Imported),
					"failed":   len(result.Failures),
				})
				for _, f := range result.Failures {
					common.LogDebug("Import record failed", common.Fields{
						"date":        f.Draft.Date.Format("2006-01-02"),
						"description": f.Draft.Description,
						"error":       f.Err,
					})
					printLine(cmd, cli.FormatWarning(fmt.Sprintf("%s %s: %v",
						cli.FormatDate(f.Draft.Date), f.Draft.Description, f.Err)))
				}
				if w, werr := s.Wallet(walletID); werr == nil {
					printf(cmd, "  %s balance: %s\n", w.Name, cli.FormatMoney(w.Balance, code))
				}
				return err
			})
		},
	}

	cmd.Flags().String("wallet", "", "wallet id to import into (required)")
	cmd.Flags().Bool("dry-run", false, "preview without saving")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", nil)
	}
	return files, nil
}

func parseStatements(ctx context.Context, files []string, walletID model.ID) ([]model.TransactionDraft, error) {
	parser := ofx.NewParser()
	var drafts []model.TransactionDraft

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		parsed, err := parser.ParseDrafts(ctx, f, walletID)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}

		slog.Info("Parsed statement", "file", filepath.Base(path), "transactions", len(parsed))
		drafts = append(drafts, parsed...)
	}
	return drafts, nil
}
