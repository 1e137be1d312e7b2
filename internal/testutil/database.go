// Package testutil provides shared fixtures for tests that need a real ledger
// database: a migrated SQLite store with users and wallets seeded through the
// same operations the application uses.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password given to every seeded user.
const DefaultPassword = "secret1"

// Now is the fixed clock used by fixture databases.
var Now = time.Date(2025, 6, 10, 9, 30, 0, 0, time.Local)

// TestDB is a migrated database bound to a test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Path    string
}

// SetupTestDB creates a migrated database file in a temporary directory.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := storage.NewSQLiteStorage(path,
		storage.WithPasswordCost(bcrypt.MinCost),
		storage.WithClock(func() time.Time { return Now }),
	)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, Path: path, t: t}
}

// CreateUser registers a user with DefaultPassword and returns its identity.
func (db *TestDB) CreateUser(email string) model.Identity {
	db.t.Helper()
	ctx := context.Background()

	reg := model.Registration{Name: "Test User", Email: email, Password: DefaultPassword}
	if err := db.Storage.Register(ctx, reg); err != nil {
		db.t.Fatalf("failed to register %q: %v", email, err)
	}

	identity, err := db.Storage.Login(ctx, email, DefaultPassword)
	if err != nil {
		db.t.Fatalf("failed to log in %q: %v", email, err)
	}
	return *identity
}

// CreateWallet creates a bank account wallet with the given starting balance.
func (db *TestDB) CreateWallet(owner model.ID, name, balance string) model.Wallet {
	db.t.Helper()

	w, err := db.Storage.CreateWallet(context.Background(), owner, model.WalletDraft{
		Name:    name,
		Type:    model.WalletTypeBankAccount,
		Balance: decimal.RequireFromString(balance),
	})
	if err != nil {
		db.t.Fatalf("failed to create wallet %q: %v", name, err)
	}
	return *w
}

// Balance returns the stored balance of a wallet.
func (db *TestDB) Balance(owner, walletID model.ID) decimal.Decimal {
	db.t.Helper()

	wallets, err := db.Storage.FetchWallets(context.Background(), owner)
	if err != nil {
		db.t.Fatalf("failed to fetch wallets: %v", err)
	}
	for _, w := range wallets {
		if w.ID == walletID {
			return w.Balance
		}
	}
	db.t.Fatalf("wallet %s not found", walletID)
	return decimal.Zero
}
