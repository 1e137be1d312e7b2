package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func savingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "savings",
		Aliases: []string{"goals"},
		Short:   "Manage savings goals",
		Long: `Track savings goals. Individual goals count contributions on their own;
goals linked to a wallet are funded by debiting that wallet.`,
	}

	cmd.AddCommand(listSavingsCmd(opts))
	cmd.AddCommand(addSavingsCmd(opts))
	cmd.AddCommand(updateSavingsCmd(opts))
	cmd.AddCommand(deleteSavingsCmd(opts))
	cmd.AddCommand(contributeCmd(opts))

	return cmd
}

func listSavingsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List savings goals and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(_ context.Context, s *ledger.Session) error {
				goals := s.SavingsGoals()
				if len(goals) == 0 {
					printLine(cmd, cli.InfoStyle.Render("No savings goals yet. Use 'ledger savings add' to create one."))
					return nil
				}

				code := currency(s)
				table := cli.NewTable("ID", "Name", "Target date", "Funded from", "Progress")
				for _, g := range goals {
					source := "-"
					if g.IsLinked() {
						source = walletName(s, g.LinkedWalletID)
					}
					table.AddRow(g.ID.String(), g.Name, cli.FormatDate(g.TargetDate), source,
						cli.FormatProgress(g.CurrentAmount, g.GoalAmount, code))
				}

				printLine(cmd, cli.FormatHeading(cli.GoalIcon, "Savings goals"))
				printf(cmd, "%s", table.Render())
				return nil
			})
		},
	}
}

func addSavingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name> <goal-amount>",
		Short: "Create a savings goal",
		Example: `  ledger savings add "Holiday" 1500 --target 2026-12-01
  ledger savings add "Emergency fund" 5000 --target 2027-06-30 --wallet 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			rawTarget, _ := cmd.Flags().GetString("target")
			target, err := parseDate(rawTarget, time.Time{})
			if err != nil {
				return err
			}
			current := decimal.Zero
			if c, err := amountFlag(cmd, "current"); err != nil {
				return err
			} else if c != nil {
				current = *c
			}
			linked, err := idFlag(cmd, "wallet")
			if err != nil {
				return err
			}
			description, _ := cmd.Flags().GetString("description")

			draft := model.SavingsGoalDraft{
				TargetDate:    target,
				Name:          args[0],
				Description:   description,
				SavingsType:   model.SavingsIndividual,
				GoalAmount:    goal,
				CurrentAmount: current,
			}
			if linked != nil && !linked.IsZero() {
				draft.SavingsType = model.SavingsLinked
				draft.LinkedWalletID = *linked
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				g, err := s.AddSavingsGoal(ctx, draft)
				if err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created savings goal %s (#%s): %s",
					g.Name, g.ID, cli.FormatProgress(g.CurrentAmount, g.GoalAmount, currency(s)))))
				return nil
			})
		},
	}

	cmd.Flags().String("target", "", "target date (YYYY-MM-DD, required)")
	cmd.Flags().String("description", "", "description")
	cmd.Flags().String("current", "", "amount already saved")
	cmd.Flags().String("wallet", "", "fund contributions from this wallet id")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func updateSavingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a savings goal",
		Long: `Update a savings goal. Only the flags you pass are changed. Pass
--wallet "" to stop funding the goal from a wallet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			update := model.SavingsGoalUpdate{
				Name:        stringFlag(cmd, "name"),
				Description: stringFlag(cmd, "description"),
			}
			if update.GoalAmount, err = amountFlag(cmd, "goal"); err != nil {
				return err
			}
			if update.CurrentAmount, err = amountFlag(cmd, "current"); err != nil {
				return err
			}
			if raw := stringFlag(cmd, "target"); raw != nil {
				target, err := parseDate(*raw, time.Time{})
				if err != nil {
					return err
				}
				update.TargetDate = &target
			}
			if update.LinkedWalletID, err = idFlag(cmd, "wallet"); err != nil {
				return err
			}
			if update.LinkedWalletID != nil {
				savingsType := model.SavingsLinked
				if update.LinkedWalletID.IsZero() {
					savingsType = model.SavingsIndividual
				}
				update.SavingsType = &savingsType
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				g, err := s.UpdateSavingsGoal(ctx, id, update)
				if err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated savings goal %s: %s",
					g.Name, cli.FormatProgress(g.CurrentAmount, g.GoalAmount, currency(s)))))
				return nil
			})
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("description", "", "new description")
	cmd.Flags().String("goal", "", "new goal amount")
	cmd.Flags().String("current", "", "new saved amount")
	cmd.Flags().String("target", "", "new target date (YYYY-MM-DD)")
	cmd.Flags().String("wallet", "", "fund from this wallet id, or \"\" to unlink")

	return cmd
}

func deleteSavingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a savings goal",
		Long:  `Delete a savings goal. Contributed amounts are not returned to any wallet.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				g, err := s.SavingsGoal(id)
				if err != nil {
					return err
				}
				if err := confirm(cmd, fmt.Sprintf("Delete savings goal %s?", g.Name)); err != nil {
					return err
				}
				if err := s.DeleteSavingsGoal(ctx, id); err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess("Deleted savings goal "+g.Name))
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip confirmation")

	return cmd
}

func contributeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <id> <amount>",
		Short: "Add money to a savings goal",
		Long: `Add money to a savings goal. For goals linked to a wallet the amount is
debited from that wallet first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *ledger.Session) error {
				g, err := s.ContributeToSavingsGoal(ctx, id, amount)
				if err != nil {
					return err
				}
				code := currency(s)
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Contributed %s to %s: %s",
					cli.FormatMoney(amount, code), g.Name, cli.FormatProgress(g.CurrentAmount, g.GoalAmount, code))))
				if g.IsLinked() {
					if w, err := s.Wallet(g.LinkedWalletID); err == nil {
						printf(cmd, "  %s balance: %s\n", w.Name, cli.FormatMoney(w.Balance, code))
					}
				}
				return nil
			})
		},
	}
}
