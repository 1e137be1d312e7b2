package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

const savingsColumns = `id, name, description, goal_amount, current_amount, target_date, savings_type, linked_wallet_id`

func scanSavingsGoal(row rowScanner) (model.SavingsGoal, error) {
	var (
		g           model.SavingsGoal
		id          int64
		description sql.NullString
		targetDate  sql.NullString
		savingsType string
		linked      sql.NullInt64
	)
	if err := row.Scan(&id, &g.Name, &description, &g.GoalAmount, &g.CurrentAmount, &targetDate, &savingsType, &linked); err != nil {
		return model.SavingsGoal{}, err
	}

	g.ID = idFromRow(id)
	g.Description = description.String
	g.SavingsType = model.ParseSavingsType(savingsType)
	if linked.Valid {
		g.LinkedWalletID = idFromRow(linked.Int64)
	}
	if targetDate.Valid && targetDate.String != "" {
		parsed, err := model.ParseDate(targetDate.String)
		if err != nil {
			return model.SavingsGoal{}, fmt.Errorf("invalid target date %q on savings goal %d: %w", targetDate.String, id, err)
		}
		g.TargetDate = parsed
	}
	return g, nil
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(model.DateLayout), Valid: true}
}

func (s *SQLiteStorage) getSavingsGoal(ctx context.Context, key int64) (model.SavingsGoal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+savingsColumns+` FROM savings_goals WHERE id = ?`, key)
	g, err := scanSavingsGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SavingsGoal{}, notFound("savings goal", idFromRow(key))
	}
	if err != nil {
		return model.SavingsGoal{}, fmt.Errorf("failed to query savings goal: %w", err)
	}
	return g, nil
}

// FetchSavingsGoals returns the savings goals owned by a user.
func (s *SQLiteStorage) FetchSavingsGoals(ctx context.Context, ownerID model.ID) ([]model.SavingsGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	owner, err := rowID("user", ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+savingsColumns+` FROM savings_goals WHERE owner_id = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query savings goals: %w", err)
	}
	defer rows.Close()

	goals := []model.SavingsGoal{}
	for rows.Next() {
		g, err := scanSavingsGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan savings goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating savings goals: %w", err)
	}
	return goals, nil
}

// CreateSavingsGoal creates a savings goal owned by ownerID.
func (s *SQLiteStorage) CreateSavingsGoal(ctx context.Context, ownerID model.ID, draft model.SavingsGoalDraft) (*model.SavingsGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	owner, err := rowID("user", ownerID)
	if err != nil {
		return nil, err
	}
	linked, err := nullableRowID("wallet", draft.LinkedWalletID)
	if err != nil {
		return nil, err
	}
	if draft.SavingsType == "" {
		draft.SavingsType = model.SavingsIndividual
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO savings_goals (name, description, goal_amount, current_amount, target_date, savings_type, linked_wallet_id, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Name, nullString(draft.Description), draft.GoalAmount.String(), draft.CurrentAmount.String(),
		nullDate(draft.TargetDate), string(draft.SavingsType), linked, owner)
	if err != nil {
		return nil, rejectf("failed to create savings goal: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read savings goal id: %w", err)
	}

	g, err := s.getSavingsGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateSavingsGoal replaces every field of a goal with the given record.
func (s *SQLiteStorage) UpdateSavingsGoal(ctx context.Context, goal model.SavingsGoal) (*model.SavingsGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	key, err := rowID("savings goal", goal.ID)
	if err != nil {
		return nil, err
	}
	linked, err := nullableRowID("wallet", goal.LinkedWalletID)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = ?, description = ?, goal_amount = ?, current_amount = ?, target_date = ?,
			savings_type = ?, linked_wallet_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		goal.Name, nullString(goal.Description), goal.GoalAmount.String(), goal.CurrentAmount.String(),
		nullDate(goal.TargetDate), string(goal.SavingsType), linked, key)
	if err != nil {
		return nil, rejectf("failed to update savings goal: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, notFound("savings goal", goal.ID)
	}

	g, err := s.getSavingsGoal(ctx, key)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteSavingsGoal deletes a savings goal.
func (s *SQLiteStorage) DeleteSavingsGoal(ctx context.Context, id model.ID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	key, err := rowID("savings goal", id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete savings goal: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFound("savings goal", id)
	}
	return nil
}
