package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Transfer moves an amount between two wallets of the same owner and records
// the expense and income pair, all in one database transaction.
func (s *SQLiteStorage) Transfer(ctx context.Context, ownerID model.ID, req model.TransferRequest) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	owner, err := rowID("user", ownerID)
	if err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return rejectf("transfer amount must be positive")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		from, fromOwner, err := getWalletTx(ctx, tx, req.FromWalletID)
		if err != nil {
			return err
		}
		to, toOwner, err := getWalletTx(ctx, tx, req.ToWalletID)
		if err != nil {
			return err
		}
		if fromOwner != owner {
			return notFound("wallet", req.FromWalletID)
		}
		if toOwner != owner {
			return notFound("wallet", req.ToWalletID)
		}
		if from.ID == to.ID {
			return rejectf("Source and destination wallets cannot be the same")
		}
		if from.Balance.LessThan(req.Amount) {
			return rejectf("Insufficient balance in source wallet")
		}

		fromKey, _ := from.ID.Int64()
		toKey, _ := to.ID.Int64()
		if err := applyToWalletTx(ctx, tx, fromKey, from.Balance.Sub(req.Amount)); err != nil {
			return err
		}
		if err := applyToWalletTx(ctx, tx, toKey, to.Balance.Add(req.Amount)); err != nil {
			return err
		}

		var categoryID sql.NullInt64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM transaction_categories WHERE name = ?`, model.TransferCategory,
		).Scan(&categoryID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to resolve transfer category: %w", err)
		}

		suffix := ""
		if req.Description != "" {
			suffix = " - " + req.Description
		}
		date := model.DateOnly(s.now()).Format(model.DateLayout)

		legs := []struct {
			txnType     model.TransactionType
			description string
			wallet      int64
		}{
			{model.TransactionExpense, "Transfer to " + to.Name + suffix, fromKey},
			{model.TransactionIncome, "Transfer from " + from.Name + suffix, toKey},
		}
		for _, leg := range legs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO transactions (category_id, category_name, amount, date, type, description, wallet_id, owner_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				categoryID, model.TransferCategory, req.Amount.String(), date,
				string(leg.txnType), leg.description, leg.wallet, owner)
			if err != nil {
				return fmt.Errorf("failed to record transfer: %w", err)
			}
		}

		slog.Debug("Transferred balance",
			"from_wallet_id", req.FromWalletID,
			"to_wallet_id", req.ToWalletID,
			"amount", req.Amount.String())
		return nil
	})
}
