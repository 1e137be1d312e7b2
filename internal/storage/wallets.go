package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

const walletColumns = `w.id, w.name, t.name, w.color, w.balance`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (model.Wallet, error) {
	var (
		w        model.Wallet
		id       int64
		typeName string
	)
	if err := row.Scan(&id, &w.Name, &typeName, &w.Color, &w.Balance); err != nil {
		return model.Wallet{}, err
	}
	w.ID = idFromRow(id)
	w.Type = model.ParseWalletType(typeName)
	return w, nil
}

// FetchWallets returns the wallets owned by a user.
func (s *SQLiteStorage) FetchWallets(ctx context.Context, ownerID model.ID) ([]model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	owner, err := rowID("user", ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+walletColumns+`
		FROM wallets w
		JOIN wallet_types t ON t.id = w.type_id
		WHERE w.owner_id = ?
		ORDER BY w.id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	wallets := []model.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	slog.Debug("retrieved wallets", "owner_id", ownerID, "count", len(wallets))
	return wallets, nil
}

func getWalletTx(ctx context.Context, tx *sql.Tx, id model.ID) (model.Wallet, int64, error) {
	key, err := rowID("wallet", id)
	if err != nil {
		return model.Wallet{}, 0, err
	}

	var owner int64
	row := tx.QueryRowContext(ctx, `
		SELECT `+walletColumns+`, w.owner_id
		FROM wallets w
		JOIN wallet_types t ON t.id = w.type_id
		WHERE w.id = ?`, key)

	var (
		w        model.Wallet
		rawID    int64
		typeName string
	)
	err = row.Scan(&rawID, &w.Name, &typeName, &w.Color, &w.Balance, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Wallet{}, 0, notFound("wallet", id)
	}
	if err != nil {
		return model.Wallet{}, 0, fmt.Errorf("failed to query wallet: %w", err)
	}
	w.ID = idFromRow(rawID)
	w.Type = model.ParseWalletType(typeName)
	return w, owner, nil
}

func walletTypeIDTx(ctx context.Context, tx *sql.Tx, walletType model.WalletType) (int64, error) {
	if !walletType.IsValid() {
		walletType = model.WalletTypeOther
	}
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM wallet_types WHERE name = ?`, string(walletType)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve wallet type %q: %w", walletType, err)
	}
	return id, nil
}

// CreateWallet creates a wallet owned by ownerID.
func (s *SQLiteStorage) CreateWallet(ctx context.Context, ownerID model.ID, draft model.WalletDraft) (*model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	owner, err := rowID("user", ownerID)
	if err != nil {
		return nil, err
	}
	if draft.Color == "" {
		draft.Color = "#000000"
	}

	var created model.Wallet
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		typeID, err := walletTypeIDTx(ctx, tx, draft.Type)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO wallets (name, type_id, balance, color, owner_id)
			VALUES (?, ?, ?, ?, ?)`,
			draft.Name, typeID, draft.Balance.String(), draft.Color, owner)
		if err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read wallet id: %w", err)
		}

		created, _, err = getWalletTx(ctx, tx, idFromRow(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateWallet replaces every field of a wallet with the given record.
func (s *SQLiteStorage) UpdateWallet(ctx context.Context, wallet model.Wallet) (*model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	key, err := rowID("wallet", wallet.ID)
	if err != nil {
		return nil, err
	}

	var updated model.Wallet
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		typeID, err := walletTypeIDTx(ctx, tx, wallet.Type)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE wallets
			SET name = ?, type_id = ?, balance = ?, color = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			wallet.Name, typeID, wallet.Balance.String(), wallet.Color, key)
		if err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("wallet", wallet.ID)
		}

		updated, _, err = getWalletTx(ctx, tx, wallet.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteWallet deletes a wallet. Transactions recorded against it are kept with
// no wallet, and savings goals funded from it are unlinked.
func (s *SQLiteStorage) DeleteWallet(ctx context.Context, id model.ID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	key, err := rowID("wallet", id)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE transactions SET wallet_id = NULL WHERE wallet_id = ?`, key); err != nil {
			return fmt.Errorf("failed to detach transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE savings_goals SET linked_wallet_id = NULL, savings_type = ? WHERE linked_wallet_id = ?`,
			string(model.SavingsIndividual), key); err != nil {
			return fmt.Errorf("failed to unlink savings goals: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, key)
		if err != nil {
			return fmt.Errorf("failed to delete wallet: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("wallet", id)
		}

		slog.Debug("Deleted wallet", "id", id)
		return nil
	})
}
