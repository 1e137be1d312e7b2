package main

import (
	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/spf13/cobra"
)

func categoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List transaction categories",
		Long: `List the categories known to the backend. Transactions may use any
category name; names not in this list are stored as free text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			r, closeRemote, err := opts.openRemote(ctx)
			if err != nil {
				return err
			}
			defer closeRemote()

			categories, err := r.FetchCategories(ctx)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				printLine(cmd, cli.InfoStyle.Render("No categories found."))
				return nil
			}

			table := cli.NewTable("ID", "Name", "Kind")
			for _, c := range categories {
				table.AddRow(c.ID.String(), c.Name, string(c.Kind))
			}
			printLine(cmd, cli.FormatTitle("Categories"))
			printf(cmd, "%s", table.Render())
			return nil
		},
	}
}
