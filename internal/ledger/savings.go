package ledger

import (
	"context"
	"errors"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/transform"
	"github.com/Veraticus/the-books-must-balance/internal/validation"
	"github.com/shopspring/decimal"
)

// AddSavingsGoal creates a savings goal. Linked goals must reference an existing wallet.
func (s *Session) AddSavingsGoal(ctx context.Context, draft model.SavingsGoalDraft) (_ *model.SavingsGoal, err error) {
	const op = "add_savings_goal"
	defer s.finish(op, &err)

	identity, epoch, err := s.authenticated()
	if err != nil {
		return nil, err
	}

	s.phase(op, PhaseValidating, nil)
	if draft.SavingsType == "" {
		draft.SavingsType = model.SavingsIndividual
	}
	if draft.CurrentAmount.IsNegative() {
		draft.CurrentAmount = decimal.Zero
	}
	if err := validation.ValidateSavingsGoal(draft, s.now()); err != nil {
		return nil, err
	}
	if draft.SavingsType == model.SavingsLinked {
		if _, err := s.lookupWallet(draft.LinkedWalletID); err != nil {
			return nil, err
		}
	}

	s.phase(op, PhaseRemote, nil)
	created, err := s.remote.CreateSavingsGoal(remoteContext(ctx), identity.UserID, draft)
	if err != nil {
		return nil, wrap("add savings goal", err)
	}
	goal := *created

	s.phase(op, PhaseApplying, nil)
	if err := s.commit(epoch, func() {
		s.goals = transform.AppendSavingsGoal(s.goals, goal)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Added savings goal", "id", goal.ID, "name", goal.Name, "type", goal.SavingsType)
	return &goal, nil
}

// UpdateSavingsGoal applies a partial update to a goal. The target date is only
// required to be in the future when the update changes it.
func (s *Session) UpdateSavingsGoal(ctx context.Context, id model.ID, update model.SavingsGoalUpdate) (_ *model.SavingsGoal, err error) {
	const op = "update_savings_goal"
	defer s.finish(op, &err)

	_, epoch, err := s.authenticated()
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(goalKey(id))
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	current, err := s.lookupSavingsGoal(id)
	if err != nil {
		return nil, err
	}
	merged := update.Apply(current)

	targetChanged := update.TargetDate != nil && !model.DateOnly(*update.TargetDate).Equal(model.DateOnly(current.TargetDate))
	if err := validation.ValidateSavingsGoalUpdate(merged.Draft(), s.now(), targetChanged); err != nil {
		return nil, err
	}
	if merged.SavingsType == model.SavingsLinked && merged.LinkedWalletID != current.LinkedWalletID {
		if _, err := s.lookupWallet(merged.LinkedWalletID); err != nil {
			return nil, err
		}
	}

	updated, err := s.pushSavingsGoal(ctx, op, epoch, merged)
	if err != nil {
		return nil, wrap("update savings goal", err)
	}

	s.logger.Info("Updated savings goal", "id", updated.ID)
	return updated, nil
}

func (s *Session) pushSavingsGoal(ctx context.Context, op string, epoch uint64, goal model.SavingsGoal) (*model.SavingsGoal, error) {
	s.phase(op, PhaseRemote, nil)
	saved, err := s.remote.UpdateSavingsGoal(remoteContext(ctx), goal)
	if err != nil {
		return nil, err
	}
	result := *saved
	if result.ID.IsZero() {
		result.ID = goal.ID
	}

	s.phase(op, PhaseApplying, nil)
	if err := s.commit(epoch, func() {
		s.goals = transform.UpdateSavingsGoalByID(s.goals, result.ID, result)
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSavingsGoal removes a goal. Amounts already contributed are not returned to any wallet.
func (s *Session) DeleteSavingsGoal(ctx context.Context, id model.ID) (err error) {
	const op = "delete_savings_goal"
	defer s.finish(op, &err)

	_, epoch, err := s.authenticated()
	if err != nil {
		return err
	}

	unlock := s.locks.lock(goalKey(id))
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	if _, err := s.lookupSavingsGoal(id); err != nil {
		return err
	}

	s.phase(op, PhaseRemote, nil)
	if err := s.remote.DeleteSavingsGoal(remoteContext(ctx), id); err != nil {
		return wrap("delete savings goal", err)
	}

	s.phase(op, PhaseApplying, nil)
	if err := s.commit(epoch, func() {
		s.goals = transform.RemoveSavingsGoalByID(s.goals, id)
	}); err != nil {
		return err
	}

	s.logger.Info("Deleted savings goal", "id", id)
	return nil
}

// ContributeToSavingsGoal adds amount to a goal's current amount. For linked
// goals the amount is first debited from the linked wallet; the goal is only
// credited once that debit succeeded. If the credit then fails, the wallet is
// restored to its previous balance. Contributions may exceed the goal amount.
func (s *Session) ContributeToSavingsGoal(ctx context.Context, goalID model.ID, amount decimal.Decimal) (_ *model.SavingsGoal, err error) {
	const op = "contribute_to_savings_goal"
	defer s.finish(op, &err)

	_, epoch, err := s.authenticated()
	if err != nil {
		return nil, err
	}

	s.phase(op, PhaseValidating, nil)
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, err
	}

	unlock := s.lockEntities(func() []string {
		keys := []string{goalKey(goalID)}
		if goal, err := s.lookupSavingsGoal(goalID); err == nil && goal.IsLinked() {
			keys = append(keys, walletKey(goal.LinkedWalletID))
		}
		return keys
	})
	defer unlock()

	goal, err := s.lookupSavingsGoal(goalID)
	if err != nil {
		return nil, err
	}

	var original *model.Wallet
	if goal.IsLinked() {
		wallet, err := s.lookupWallet(goal.LinkedWalletID)
		if err != nil {
			return nil, err
		}
		original = &wallet
	}
	if err := validation.ValidateContribution(amount, original); err != nil {
		return nil, err
	}

	// A debit the remote accepted must be followed by the credit or the
	// restore even when the session ended meanwhile.
	if original != nil {
		debited := *original
		debited.Balance = debited.Balance.Sub(amount)
		if _, err := s.pushWallet(ctx, op, epoch, debited); err != nil && !errors.Is(err, ErrSessionEnded) {
			return nil, wrap("debit linked wallet", err)
		}
	}

	credited := goal
	credited.CurrentAmount = credited.CurrentAmount.Add(amount)
	updated, err := s.pushSavingsGoal(ctx, op, epoch, credited)
	if err != nil {
		creditErr := wrap("credit savings goal", err)
		if original == nil || errors.Is(err, ErrSessionEnded) {
			return nil, creditErr
		}
		if _, restoreErr := s.pushWallet(ctx, op, epoch, *original); restoreErr != nil && !errors.Is(restoreErr, ErrSessionEnded) {
			s.logger.Error("Failed to restore linked wallet after contribution failure",
				"wallet_id", original.ID,
				"goal_id", goalID,
				"error", restoreErr)
			return nil, errors.Join(creditErr, wrap("restore linked wallet", restoreErr))
		}
		return nil, creditErr
	}

	s.logger.Info("Contributed to savings goal",
		"id", goalID,
		"amount", amount.String(),
		"linked", original != nil)
	return updated, nil
}
