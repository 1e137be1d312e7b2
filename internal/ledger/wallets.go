package ledger

import (
	"context"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/transform"
	"github.com/Veraticus/the-books-must-balance/internal/validation"
)

// AddWallet creates a wallet for the current user.
func (s *Session) AddWallet(ctx context.Context, draft model.WalletDraft) (_ *model.Wallet, err error) {
	const op = "add_wallet"
	defer s.finish(op, &err)

	identity, epoch, err := s.authenticated()
	if err != nil {
		return nil, err
	}

	s.phase(op, PhaseValidating, nil)
	if err := validation.ValidateWallet(draft); err != nil {
		return nil, err
	}
	if !draft.Type.IsValid() {
		draft.Type = model.WalletTypeOther
	}

	s.phase(op, PhaseRemote, nil)
	created, err := s.remote.CreateWallet(remoteContext(ctx), identity.UserID, draft)
	if err != nil {
		return nil, wrap("add wallet", err)
	}
	wallet := *created

	s.phase(op, PhaseApplying, nil)
	if err := s.commit(epoch, func() {
		s.wallets = transform.AppendWallet(s.wallets, wallet)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Added wallet", "id", wallet.ID, "name", wallet.Name)
	return &wallet, nil
}

// UpdateWallet applies a partial update to a wallet. The update is merged over
// the wallet's current fields and the full record is sent to the remote, so
// unspecified fields keep their values. Failure is reported through the error.
func (s *Session) UpdateWallet(ctx context.Context, id model.ID, update model.WalletUpdate) (_ *model.Wallet, err error) {
	const op = "update_wallet"
	defer s.finish(op, &err)

	_, epoch, err := s.authenticated()
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(walletKey(id))
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	current, err := s.lookupWallet(id)
	if err != nil {
		return nil, err
	}
	merged := update.Apply(current)
	if err := validation.ValidateWallet(model.WalletDraft{Name: merged.Name}); err != nil {
		return nil, err
	}

	updated, err := s.pushWallet(ctx, op, epoch, merged)
	if err != nil {
		return nil, wrap("update wallet", err)
	}

	s.logger.Info("Updated wallet", "id", updated.ID, "balance", updated.Balance.String())
	return updated, nil
}

// pushWallet sends a full wallet record to the remote and mirrors the canonical
// result locally. Callers hold the wallet lock.
func (s *Session) pushWallet(ctx context.Context, op string, epoch uint64, wallet model.Wallet) (*model.Wallet, error) {
	s.phase(op, PhaseRemote, nil)
	saved, err := s.remote.UpdateWallet(remoteContext(ctx), wallet)
	if err != nil {
		return nil, err
	}
	result := *saved
	if result.ID.IsZero() {
		result.ID = wallet.ID
	}

	s.phase(op, PhaseApplying, nil)
	if err := s.commit(epoch, func() {
		s.wallets = transform.UpdateWalletByID(s.wallets, result.ID, result)
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteWallet removes a wallet. Its transactions stay in the history with
// their wallet reference set to model.RemovedWalletID, and savings goals that
// were funded from it lose their link.
func (s *Session) DeleteWallet(ctx context.Context, id model.ID) (err error) {
	const op = "delete_wallet"
	defer s.finish(op, &err)

	_, epoch, err := s.authenticated()
	if err != nil {
		return err
	}

	unlock := s.locks.lock(walletKey(id))
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	if _, err := s.lookupWallet(id); err != nil {
		return err
	}

	s.phase(op, PhaseRemote, nil)
	if err := s.remote.DeleteWallet(remoteContext(ctx), id); err != nil {
		return wrap("delete wallet", err)
	}

	s.phase(op, PhaseApplying, nil)
	if err := s.commit(epoch, func() {
		s.wallets = transform.RemoveWalletByID(s.wallets, id)
		s.transactions = transform.OrphanTransactions(s.transactions, id)
		s.goals = transform.UnlinkSavingsGoals(s.goals, id)
	}); err != nil {
		return err
	}

	s.logger.Info("Deleted wallet", "id", id)
	return nil
}
