package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// FetchCategories returns all transaction categories.
func (s *SQLiteStorage) FetchCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type
		FROM transaction_categories
		ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var (
			cat  model.Category
			id   int64
			kind string
		)
		if err := rows.Scan(&id, &cat.Name, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.ID = idFromRow(id)
		cat.Kind = model.CategoryKind(kind)
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// Currency is a supported profile currency.
type Currency struct {
	ID     model.ID
	Code   string
	Name   string
	Symbol string
}

// FetchCurrencies returns the currencies a profile can select.
func (s *SQLiteStorage) FetchCurrencies(ctx context.Context) ([]Currency, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, symbol FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	var currencies []Currency
	for rows.Next() {
		var (
			c  Currency
			id int64
		)
		if err := rows.Scan(&id, &c.Code, &c.Name, &c.Symbol); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		c.ID = idFromRow(id)
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}
	return currencies, nil
}
