package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func walletsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wallets",
		Aliases: []string{"wallet"},
		Short:   "Manage wallets",
		Long:    `List, add, update and delete wallets, and move money between them.`,
	}

	cmd.AddCommand(listWalletsCmd(opts))
	cmd.AddCommand(addWalletCmd(opts))
	cmd.AddCommand(updateWalletCmd(opts))
	cmd.AddCommand(deleteWalletCmd(opts))
	cmd.AddCommand(transferCmd(opts))

	return cmd
}

func walletTypeNames() string {
	names := make([]string, len(model.WalletTypes))
	for i, t := range model.WalletTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func parseWalletType(raw string) (model.WalletType, error) {
	t := model.WalletType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", common.NewUserError(fmt.Sprintf("Unknown wallet type %q (use one of: %s)", raw, walletTypeNames()), nil)
	}
	return t, nil
}

func listWalletsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List wallets and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(_ context.Context, s *ledger.Session) error {
				wallets := s.Wallets()
				if len(wallets) == 0 {
					printLine(cmd, cli.InfoStyle.Render("No wallets yet. Use 'ledger wallets add' to create one."))
					return nil
				}

				code := currency(s)
				table := cli.NewTable("ID", "Name", "Type", "Balance").AlignRight(3)
				total := decimal.Zero
				for _, w := range wallets {
					table.AddRow(w.ID.String(), w.Name, string(w.Type), cli.FormatMoney(w.Balance, code))
					total = total.Add(w.Balance)
				}

				printLine(cmd, cli.FormatHeading(cli.WalletIcon, "Wallets"))
				printf(cmd, "%s", table.Render())
				printf(cmd, "\n%s %s\n", cli.BoldStyle.Render("Total:"), cli.FormatMoney(total, code))
				return nil
			})
		},
	}
}

func addWalletCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawType, _ := cmd.Flags().GetString("type")
			walletType, err := parseWalletType(rawType)
			if err != nil {
				return err
			}
			rawBalance, _ := cmd.Flags().GetString("balance")
			balance, err := parseAmount(rawBalance)
			if err != nil {
				return err
			}
			color, _ := cmd.Flags().GetString("color")

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				w, err := s.AddWallet(ctx, model.WalletDraft{
					Name:    args[0],
					Type:    walletType,
					Color:   color,
					Balance: balance,
				})
				if err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created wallet %s (#%s) with %s",
					w.Name, w.ID, cli.FormatMoney(w.Balance, currency(s)))))
				return nil
			})
		},
	}

	cmd.Flags().String("type", string(model.WalletTypeCash), "wallet type ("+walletTypeNames()+")")
	cmd.Flags().String("balance", "0", "starting balance")
	cmd.Flags().String("color", "", "display color")

	return cmd
}

func updateWalletCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a wallet",
		Long: `Update a wallet's name, type, color or balance. Only the flags you
pass are changed. Setting the balance records no transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			update := model.WalletUpdate{
				Name:  stringFlag(cmd, "name"),
				Color: stringFlag(cmd, "color"),
			}
			if raw := stringFlag(cmd, "type"); raw != nil {
				t, err := parseWalletType(*raw)
				if err != nil {
					return err
				}
				update.Type = &t
			}
			if update.Balance, err = amountFlag(cmd, "balance"); err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				w, err := s.UpdateWallet(ctx, id, update)
				if err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated wallet %s: %s",
					w.Name, cli.FormatMoney(w.Balance, currency(s)))))
				return nil
			})
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("type", "", "new type ("+walletTypeNames()+")")
	cmd.Flags().String("color", "", "new display color")
	cmd.Flags().String("balance", "", "new balance")

	return cmd
}

func deleteWalletCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a wallet",
		Long: `Delete a wallet. Its transactions are kept and shown as belonging to a
removed wallet; savings goals linked to it are unlinked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				w, err := s.Wallet(id)
				if err != nil {
					return err
				}
				if err := confirm(cmd, fmt.Sprintf("Delete wallet %s?", w.Name)); err != nil {
					return err
				}
				if err := s.DeleteWallet(ctx, id); err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess("Deleted wallet "+w.Name))
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip confirmation")

	return cmd
}

func transferCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer <from-id> <to-id> <amount>",
		Short: "Move money between two wallets",
		Long: `Move money between two of your wallets. Both sides are recorded as
"Transfer" transactions that net to zero.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID(args[0])
			if err != nil {
				return err
			}
			to, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			description, _ := cmd.Flags().GetString("description")

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				pair, err := s.TransferBalance(ctx, from, to, amount, description)
				if err != nil {
					return err
				}
				code := currency(s)
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Transferred %s", cli.FormatMoney(amount, code))))
				for _, txn := range pair {
					printf(cmd, "  %s  %s\n", cli.FormatSigned(txn.Amount, txn.Type, code), txn.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringP("description", "d", "", "note added to both transfer records")

	return cmd
}
