package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS currencies (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					code TEXT NOT NULL UNIQUE,
					name TEXT NOT NULL,
					symbol TEXT NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS countries (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					code TEXT NOT NULL UNIQUE,
					currency_id INTEGER REFERENCES currencies(id)
				)`,
				`CREATE TABLE IF NOT EXISTS wallet_types (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					display_name TEXT NOT NULL,
					description TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS transaction_categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					description TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS users (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE COLLATE NOCASE,
					password_hash TEXT NOT NULL,
					mobile TEXT,
					dob TEXT,
					country_id INTEGER REFERENCES countries(id),
					currency_id INTEGER REFERENCES currencies(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS wallets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					type_id INTEGER NOT NULL REFERENCES wallet_types(id),
					balance TEXT NOT NULL DEFAULT '0',
					color TEXT NOT NULL DEFAULT '#000000',
					owner_id INTEGER NOT NULL REFERENCES users(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_wallets_owner ON wallets(owner_id)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_id INTEGER REFERENCES transaction_categories(id),
					category_name TEXT,
					amount TEXT NOT NULL,
					date TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					description TEXT,
					wallet_id INTEGER REFERENCES wallets(id),
					owner_id INTEGER NOT NULL REFERENCES users(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_owner ON transactions(owner_id)`,
				`CREATE INDEX idx_transactions_wallet ON transactions(wallet_id)`,
				`CREATE TABLE IF NOT EXISTS savings_goals (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					description TEXT,
					goal_amount TEXT NOT NULL,
					current_amount TEXT NOT NULL DEFAULT '0',
					target_date TEXT,
					savings_type TEXT NOT NULL DEFAULT 'individual' CHECK (savings_type IN ('individual', 'linked')),
					linked_wallet_id INTEGER REFERENCES wallets(id),
					owner_id INTEGER NOT NULL REFERENCES users(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_savings_goals_owner ON savings_goals(owner_id)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Seed reference data",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`INSERT INTO currencies (code, name, symbol) VALUES
					('INR', 'Indian Rupee', '₹'),
					('USD', 'US Dollar', '$'),
					('EUR', 'Euro', '€'),
					('GBP', 'British Pound', '£'),
					('JPY', 'Japanese Yen', '¥')`,
				`INSERT INTO countries (name, code, currency_id) VALUES
					('India', 'IN', (SELECT id FROM currencies WHERE code = 'INR')),
					('United States', 'US', (SELECT id FROM currencies WHERE code = 'USD')),
					('Germany', 'DE', (SELECT id FROM currencies WHERE code = 'EUR')),
					('United Kingdom', 'GB', (SELECT id FROM currencies WHERE code = 'GBP')),
					('Japan', 'JP', (SELECT id FROM currencies WHERE code = 'JPY'))`,
				`INSERT INTO wallet_types (name, display_name, description) VALUES
					('cash', 'Cash', 'Physical cash'),
					('credit_card', 'Credit Card', 'Credit card account'),
					('debit_card', 'Debit Card', 'Debit card linked to a bank account'),
					('gift_card', 'Gift Card', 'Prepaid gift card'),
					('bank_account', 'Bank Account', 'Checking or savings account'),
					('other', 'Other', 'Any other money container')`,
				`INSERT INTO transaction_categories (name, type) VALUES
					('Salary', 'income'),
					('Freelance', 'income'),
					('Investment', 'income'),
					('Interest', 'income'),
					('Gift', 'income'),
					('Food', 'expense'),
					('Transport', 'expense'),
					('Shopping', 'expense'),
					('Bills', 'expense'),
					('Rent', 'expense'),
					('Entertainment', 'expense'),
					('Health', 'expense'),
					('Education', 'expense'),
					('Bank Fees', 'expense'),
					('Cash & ATM', 'expense'),
					('Other', 'expense')`,
			)
		},
	},
	{
		Version:     3,
		Description: "Add transfer category and date index",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`INSERT INTO transaction_categories (name, type, description)
					VALUES ('Transfer', 'expense', 'Movement between two wallets')`,
				`CREATE INDEX idx_transactions_date ON transactions(owner_id, date)`,
			)
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
