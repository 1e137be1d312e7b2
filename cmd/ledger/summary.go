package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/spf13/cobra"
)

func summaryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, monthly trends and top spending categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			months, _ := cmd.Flags().GetInt("months")

			return opts.withSession(cmd, func(_ context.Context, s *ledger.Session) error {
				sum, err := s.Summary(months)
				if err != nil {
					return err
				}
				code := currency(s)

				var b strings.Builder
				for _, row := range [][2]string{
					{"Balance", cli.FormatMoney(sum.TotalBalance, code)},
					{"Income", cli.IncomeStyle.Render(cli.FormatMoney(sum.TotalIncome, code))},
					{"Expense", cli.ExpenseStyle.Render(cli.FormatMoney(sum.TotalExpense, code))},
					{"Net", cli.FormatMoney(sum.Net(), code)},
					{"Saved", cli.FormatMoney(sum.TotalSavings, code)},
					{"Transactions", fmt.Sprintf("%d (avg %s)", sum.TransactionCount, cli.FormatMoney(sum.AverageTransaction(), code))},
				} {
					fmt.Fprintf(&b, "%-13s %s\n", row[0]+":", row[1])
				}
				if sum.TopExpenseCategory != "" {
					fmt.Fprintf(&b, "%-13s %s\n", "Top expense:", sum.TopExpenseCategory)
				}
				if sum.MostUsedCategory != "" {
					fmt.Fprintf(&b, "%-13s %s\n", "Most used:", sum.MostUsedCategory)
				}
				printLine(cmd, cli.RenderBox(cli.ChartIcon+" Summary", strings.TrimRight(b.String(), "\n")))

				trends := cli.NewTable("Month", "Income", "Expense", "Net").AlignRight(1, 2, 3)
				for _, m := range sum.Months {
					trends.AddRow(m.Month.Format("Jan 2006"),
						cli.FormatMoney(m.Income, code),
						cli.FormatMoney(m.Expense, code),
						cli.FormatMoney(m.Net(), code))
				}
				printf(cmd, "\n%s\n%s", cli.BoldStyle.Render("Monthly trend"), trends.Render())

				if len(sum.ExpenseByCategory) > 0 {
					categories := cli.NewTable("Category", "Count", "Spent").AlignRight(1, 2)
					for _, c := range sum.ExpenseByCategory {
						categories.AddRow(c.Category, fmt.Sprintf("%d", c.Count), cli.FormatMoney(c.Amount, code))
					}
					printf(cmd, "\n%s\n%s", cli.BoldStyle.Render("Spending by category"), categories.Render())
				}
				return nil
			})
		},
	}

	cmd.Flags().Int("months", 6, "number of calendar months in the trend")

	return cmd
}
