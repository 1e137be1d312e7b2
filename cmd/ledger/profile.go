package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/spf13/cobra"
)

// currencyLister is implemented by backends that expose their currency table.
type currencyLister interface {
	FetchCurrencies(ctx context.Context) ([]storage.Currency, error)
}

func profileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
	}

	cmd.AddCommand(showProfileCmd(opts))
	cmd.AddCommand(updateProfileCmd(opts))

	return cmd
}

func showProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, _, closeRemote, err := opts.openSession(ctx, true)
			if err != nil {
				return err
			}
			defer closeRemote()

			p := s.Profile()
			var b strings.Builder
			for _, row := range [][2]string{
				{"Name", p.Name},
				{"Email", p.Email},
				{"Mobile", p.Mobile},
				{"Date of birth", p.DateOfBirth},
				{"Currency", p.CurrencyCode()},
			} {
				value := row[1]
				if value == "" {
					value = cli.SubtleStyle.Render("-")
				}
				fmt.Fprintf(&b, "%-14s %s\n", row[0]+":", value)
			}
			printLine(cmd, cli.RenderBox("Profile", strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}
}

func updateProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		Long:  `Update profile fields. Only the flags you pass are changed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			update := model.ProfileUpdate{
				Name:        stringFlag(cmd, "name"),
				Email:       stringFlag(cmd, "email"),
				Mobile:      stringFlag(cmd, "mobile"),
				DateOfBirth: stringFlag(cmd, "dob"),
			}
			var err error
			if update.CountryID, err = idFlag(cmd, "country-id"); err != nil {
				return err
			}
			if update.CurrencyID, err = idFlag(cmd, "currency-id"); err != nil {
				return err
			}

			s, r, closeRemote, err := opts.openSession(ctx, true)
			if err != nil {
				return err
			}
			defer closeRemote()

			if code := stringFlag(cmd, "currency"); code != nil {
				id, err := resolveCurrency(ctx, r, *code)
				if err != nil {
					return err
				}
				update.CurrencyID = &id
			}

			if _, err := s.UpdateUserProfile(ctx, update); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess("Profile updated"))
			return nil
		},
	}

	cmd.Flags().String("name", "", "name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("mobile", "", "mobile number")
	cmd.Flags().String("dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().String("country-id", "", "country id")
	cmd.Flags().String("currency-id", "", "currency id")
	cmd.Flags().String("currency", "", "currency code such as USD (local backend only)")

	return cmd
}

func resolveCurrency(ctx context.Context, r service.Remote, code string) (model.ID, error) {
	lister, ok := r.(currencyLister)
	if !ok {
		return "", common.NewUserError("This backend cannot look up currency codes; use --currency-id", nil)
	}
	currencies, err := lister.FetchCurrencies(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range currencies {
		if strings.EqualFold(c.Code, code) {
			return c.ID, nil
		}
	}

	codes := make([]string, len(currencies))
	for i, c := range currencies {
		codes[i] = c.Code
	}
	return "", common.NewUserError(fmt.Sprintf("Unknown currency %q (use one of: %s)", code, strings.Join(codes, ", ")), nil)
}
