package remote

import (
	"context"
	"net/http"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// FetchSavingsGoals returns a user's savings goals.
func (c *Client) FetchSavingsGoals(ctx context.Context, ownerID model.ID) ([]model.SavingsGoal, error) {
	var dtos []savingsGoalDTO
	if err := c.get(ctx, path("/users/%s/savings_goals/", ownerID), &dtos); err != nil {
		return nil, err
	}

	goals := make([]model.SavingsGoal, 0, len(dtos))
	for _, d := range dtos {
		g, err := d.model()
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// CreateSavingsGoal creates a savings goal owned by ownerID.
func (c *Client) CreateSavingsGoal(ctx context.Context, ownerID model.ID, draft model.SavingsGoalDraft) (*model.SavingsGoal, error) {
	var created savingsGoalDTO
	if err := c.do(ctx, http.MethodPost, path("/users/%s/savings_goals/", ownerID), savingsGoalBody(draft), &created); err != nil {
		return nil, err
	}
	g, err := created.model()
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateSavingsGoal replaces a goal with the given record.
func (c *Client) UpdateSavingsGoal(ctx context.Context, goal model.SavingsGoal) (*model.SavingsGoal, error) {
	var updated savingsGoalDTO
	if err := c.do(ctx, http.MethodPut, path("/savings_goals/%s", goal.ID), savingsGoalBody(goal.Draft()), &updated); err != nil {
		return nil, err
	}
	g, err := updated.model()
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteSavingsGoal deletes a savings goal.
func (c *Client) DeleteSavingsGoal(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, path("/savings_goals/%s", id), nil, nil)
}
