package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a user account with a bcrypt password hash.
func (s *SQLiteStorage) Register(ctx context.Context, reg model.Registration) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(reg.Email, "email"); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	countryID, err := nullableRowID("country", reg.CountryID)
	if err != nil {
		return err
	}
	currencyID, err := nullableRowID("currency", reg.CurrencyID)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, reg.Email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: %w", common.ErrRemoteRejected, fmt.Errorf("email already registered: %w", common.ErrDuplicateEntry))
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO users (name, email, password_hash, mobile, dob, country_id, currency_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			reg.Name, reg.Email, string(hash), nullString(reg.Mobile), nullString(reg.DateOfBirth), countryID, currencyID)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		slog.Debug("Created user", "email", reg.Email)
		return nil
	})
}

// Login checks the credentials and returns the user's identity.
func (s *SQLiteStorage) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		id         int64
		storedMail string
		hash       string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email,
	).Scan(&id, &storedMail, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rejectf("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, rejectf("invalid credentials")
	}

	return &model.Identity{UserID: idFromRow(id), Email: storedMail}, nil
}

// FetchUserProfile returns the profile of a user, including its currency code.
func (s *SQLiteStorage) FetchUserProfile(ctx context.Context, userID model.ID) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	id, err := rowID("user", userID)
	if err != nil {
		return nil, err
	}

	var (
		profile    model.UserProfile
		mobile     sql.NullString
		dob        sql.NullString
		currency   sql.NullString
		countryID  sql.NullInt64
		currencyID sql.NullInt64
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT u.name, u.email, u.mobile, u.dob, u.country_id, u.currency_id, c.code
		FROM users u
		LEFT JOIN currencies c ON c.id = u.currency_id
		WHERE u.id = ?`, id,
	).Scan(&profile.Name, &profile.Email, &mobile, &dob, &countryID, &currencyID, &currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	profile.Mobile = mobile.String
	profile.DateOfBirth = dob.String
	profile.Currency = currency.String
	if countryID.Valid {
		profile.CountryID = idFromRow(countryID.Int64)
	}
	if currencyID.Valid {
		profile.CurrencyID = idFromRow(currencyID.Int64)
	}
	return &profile, nil
}

// UpdateUserProfile writes the fields set in update.
func (s *SQLiteStorage) UpdateUserProfile(ctx context.Context, userID model.ID, update model.ProfileUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	id, err := rowID("user", userID)
	if err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Email != nil {
		set("email", *update.Email)
	}
	if update.Mobile != nil {
		set("mobile", nullString(*update.Mobile))
	}
	if update.DateOfBirth != nil {
		set("dob", nullString(*update.DateOfBirth))
	}
	if update.CountryID != nil {
		v, err := nullableRowID("country", *update.CountryID)
		if err != nil {
			return err
		}
		set("country_id", v)
	}
	if update.CurrencyID != nil {
		v, err := nullableRowID("currency", *update.CurrencyID)
		if err != nil {
			return err
		}
		set("currency_id", v)
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(sets, ", "))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %w", common.ErrRemoteRejected, fmt.Errorf("email already registered: %w", common.ErrDuplicateEntry))
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("user", userID)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
