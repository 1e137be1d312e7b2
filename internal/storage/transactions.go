package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/transform"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.date, t.wallet_id, c.name, t.category_name, t.description, t.type, t.amount`

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn          model.Transaction
		id           int64
		date         string
		walletID     sql.NullInt64
		category     sql.NullString
		categoryText sql.NullString
		description  sql.NullString
		txnType      string
	)
	if err := row.Scan(&id, &date, &walletID, &category, &categoryText, &description, &txnType, &txn.Amount); err != nil {
		return model.Transaction{}, err
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q on transaction %d: %w", date, id, err)
	}

	txn.ID = idFromRow(id)
	txn.Date = parsed
	txn.Type = model.TransactionType(txnType)
	txn.Description = description.String

	switch {
	case walletID.Valid:
		txn.WalletID = idFromRow(walletID.Int64)
	default:
		txn.WalletID = model.RemovedWalletID
	}

	switch {
	case category.Valid && category.String != "":
		txn.Category = category.String
	case categoryText.Valid && categoryText.String != "":
		txn.Category = categoryText.String
	default:
		txn.Category, txn.Description = transform.ExtractCategoryFromDescription(txn.Description)
	}

	return txn, nil
}

func getTransactionTx(ctx context.Context, tx *sql.Tx, key int64) (model.Transaction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN transaction_categories c ON c.id = t.category_id
		WHERE t.id = ?`, key)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, notFound("transaction", idFromRow(key))
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// FetchTransactions returns a user's transactions, newest first.
func (s *SQLiteStorage) FetchTransactions(ctx context.Context, ownerID model.ID) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	owner, err := rowID("user", ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN transaction_categories c ON c.id = t.category_id
		WHERE t.owner_id = ?
		ORDER BY t.date DESC, t.id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "owner_id", ownerID, "count", len(txns))
	return txns, nil
}

func applyToWalletTx(ctx context.Context, tx *sql.Tx, walletKey int64, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		balance.String(), walletKey)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	return nil
}

// CreateTransaction records a transaction and applies it to the wallet balance.
// Expenses larger than the wallet balance are rejected.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, ownerID model.ID, txn model.NewTransaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	owner, err := rowID("user", ownerID)
	if err != nil {
		return nil, err
	}
	if !txn.Type.IsValid() {
		return nil, rejectf("invalid transaction type %q", txn.Type)
	}

	var categoryID any
	if txn.CategoryID != nil {
		if categoryID, err = nullableRowID("category", *txn.CategoryID); err != nil {
			return nil, err
		}
	}

	var created model.Transaction
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		wallet, walletOwner, err := getWalletTx(ctx, tx, txn.WalletID)
		if err != nil {
			return err
		}
		if walletOwner != owner {
			return notFound("wallet", txn.WalletID)
		}

		if txn.Type == model.TransactionExpense && wallet.Balance.LessThan(txn.Amount) {
			return rejectf("Insufficient balance. Current balance: %s, Required: %s",
				wallet.Balance.StringFixed(2), txn.Amount.StringFixed(2))
		}

		walletKey, _ := wallet.ID.Int64()
		result, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (category_id, category_name, amount, date, type, description, wallet_id, owner_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			categoryID, nullString(txn.Category), txn.Amount.String(), txn.Date.Format(model.DateLayout),
			string(txn.Type), txn.Description, walletKey, owner)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		balance := wallet.Balance.Add(txn.Amount)
		if txn.Type == model.TransactionExpense {
			balance = wallet.Balance.Sub(txn.Amount)
		}
		if err := applyToWalletTx(ctx, tx, walletKey, balance); err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read transaction id: %w", err)
		}
		created, err = getTransactionTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteTransaction deletes a transaction and reverses its effect on the wallet
// balance, if the wallet still exists.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id model.ID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	key, err := rowID("transaction", id)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		txn, err := getTransactionTx(ctx, tx, key)
		if err != nil {
			return err
		}

		if txn.WalletID != model.RemovedWalletID {
			wallet, _, err := getWalletTx(ctx, tx, txn.WalletID)
			if err != nil {
				return err
			}
			balance := wallet.Balance.Sub(txn.Amount)
			if txn.Type == model.TransactionExpense {
				balance = wallet.Balance.Add(txn.Amount)
			}
			walletKey, _ := wallet.ID.Int64()
			if err := applyToWalletTx(ctx, tx, walletKey, balance); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, key); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
}
