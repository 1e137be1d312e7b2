package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/spf13/cobra"
)

func registerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create a new account. The password is prompted for and never
taken from the command line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			prompter := newPrompter(cmd)

			reg := model.Registration{}
			reg.Name, _ = cmd.Flags().GetString("name")
			reg.Email, _ = cmd.Flags().GetString("email")
			reg.Mobile, _ = cmd.Flags().GetString("mobile")
			reg.DateOfBirth, _ = cmd.Flags().GetString("dob")

			var err error
			if reg.Email == "" {
				if reg.Email, err = prompter.Ask(ctx, "Email", ""); err != nil {
					return err
				}
			}
			if reg.Password, err = prompter.Secret(ctx, "Password"); err != nil {
				return err
			}
			if id, err := idFlag(cmd, "country-id"); err != nil {
				return err
			} else if id != nil {
				reg.CountryID = *id
			}
			if id, err := idFlag(cmd, "currency-id"); err != nil {
				return err
			} else if id != nil {
				reg.CurrencyID = *id
			}

			s, _, closeRemote, err := opts.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer closeRemote()

			if err := s.Register(ctx, reg); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Registered %s. Run 'ledger login' to sign in.", reg.Email)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "your name")
	cmd.Flags().String("email", "", "email address (prompted if omitted)")
	cmd.Flags().String("mobile", "", "mobile number")
	cmd.Flags().String("dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().String("country-id", "", "country id")
	cmd.Flags().String("currency-id", "", "currency id")

	return cmd
}

func loginCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			prompter := newPrompter(cmd)

			email, _ := cmd.Flags().GetString("email")
			var err error
			if email == "" {
				if email, err = prompter.Ask(ctx, "Email", ""); err != nil {
					return err
				}
			}
			password, err := prompter.Secret(ctx, "Password")
			if err != nil {
				return err
			}

			s, _, closeRemote, err := opts.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer closeRemote()

			if err := s.Login(ctx, email, password); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess("Logged in as "+s.Identity().Email))
			printLine(cmd, walletCountLine(s))
			return nil
		},
	}

	cmd.Flags().String("email", "", "email address (prompted if omitted)")

	return cmd
}

func walletCountLine(s *ledger.Session) string {
	return cli.SubtleStyle.Render(fmt.Sprintf("%d wallets, %d transactions, %d savings goals",
		len(s.Wallets()), len(s.Transactions()), len(s.SavingsGoals())))
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, _, closeRemote, err := opts.openSession(ctx, false)
			if err != nil {
				return err
			}
			defer closeRemote()

			if err := s.Logout(); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess("Logged out"))
			return nil
		},
	}
}

func whoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(_ context.Context, s *ledger.Session) error {
				profile := s.Profile()
				name := profile.Name
				if name == "" {
					name = s.Identity().Email
				}
				printf(cmd, "%s %s <%s>\n", cli.BoldStyle.Render(name), cli.SubtleStyle.Render("#"+s.UserID().String()), s.Identity().Email)
				printLine(cmd, walletCountLine(s))
				return nil
			})
		},
	}
}
