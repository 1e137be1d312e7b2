package ledger

import (
	"context"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/transform"
	"github.com/Veraticus/the-books-must-balance/internal/validation"
	"github.com/shopspring/decimal"
)

// AddTransaction records a new income or expense against one of the user's wallets
// and adjusts that wallet's balance.
func (s *Session) AddTransaction(ctx context.Context, draft model.TransactionDraft) (_ *model.Transaction, err error) {
	const op = "add_transaction"
	defer s.finish(op, &err)

	identity, epoch, err := s.authenticated()
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(walletKey(draft.WalletID))
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	wallet, err := s.lookupWallet(draft.WalletID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateTransaction(draft, wallet); err != nil {
		return nil, err
	}

	s.phase(op, PhaseRemote, nil)
	created, err := s.remote.CreateTransaction(remoteContext(ctx), identity.UserID, model.NewTransaction{
		CategoryID:       s.resolveCategory(draft.Category),
		TransactionDraft: draft,
	})
	if err != nil {
		return nil, wrap("add transaction", err)
	}

	txn := *created
	if txn.Category == "" {
		txn.Category = draft.Category
	}
	if txn.Description == "" {
		txn.Description = draft.Description
	}
	if txn.WalletID.IsZero() {
		txn.WalletID = draft.WalletID
	}

	s.phase(op, PhaseApplying, nil)
	err = s.commit(epoch, func() {
		s.transactions = transform.PrependTransaction(s.transactions, txn)
		s.wallets = transform.UpdateWalletBalance(s.wallets, txn.WalletID, txn.Amount, txn.Type)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Added transaction",
		"id", txn.ID,
		"wallet_id", txn.WalletID,
		"type", txn.Type,
		"amount", txn.Amount.String())
	return &txn, nil
}

// resolveCategory maps a free-text category to the id of a known category.
// Matching ignores case and surrounding whitespace; nil means no match.
func (s *Session) resolveCategory(name string) *model.ID {
	name = strings.TrimSpace(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			id := c.ID
			return &id
		}
	}
	return nil
}

// DeleteTransaction removes a transaction and reverses its effect on the wallet balance.
// Transactions whose wallet has been deleted are removed without touching any balance.
func (s *Session) DeleteTransaction(ctx context.Context, id model.ID) (err error) {
	const op = "delete_transaction"
	defer s.finish(op, &err)

	_, epoch, err := s.authenticated()
	if err != nil {
		return err
	}

	unlock := s.lockEntities(func() []string {
		keys := []string{transactionKey(id)}
		if txn, err := s.lookupTransaction(id); err == nil {
			keys = append(keys, walletKey(txn.WalletID))
		}
		return keys
	})
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	txn, err := s.lookupTransaction(id)
	if err != nil {
		return err
	}

	s.phase(op, PhaseRemote, nil)
	if err := s.remote.DeleteTransaction(remoteContext(ctx), id); err != nil {
		return wrap("delete transaction", err)
	}

	s.phase(op, PhaseApplying, nil)
	err = s.commit(epoch, func() {
		s.transactions = transform.RemoveTransactionByID(s.transactions, id)
		if txn.WalletID != model.RemovedWalletID {
			s.wallets = transform.RestoreWalletBalance(s.wallets, txn.WalletID, txn.Amount, txn.Type)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("Deleted transaction", "id", id, "wallet_id", txn.WalletID)
	return nil
}

// TransferBalance moves amount from one wallet to another. The remote performs
// the transfer in one call; locally both balances change and the expense/income
// pair is recorded in a single commit.
func (s *Session) TransferBalance(ctx context.Context, fromID, toID model.ID, amount decimal.Decimal, description string) (_ [2]model.Transaction, err error) {
	const op = "transfer_balance"
	defer s.finish(op, &err)

	var pair [2]model.Transaction

	identity, epoch, err := s.authenticated()
	if err != nil {
		return pair, err
	}

	unlock := s.locks.lock(walletKey(fromID), walletKey(toID))
	defer unlock()

	s.phase(op, PhaseValidating, nil)
	from, err := s.lookupWallet(fromID)
	if err != nil {
		return pair, err
	}
	to, err := s.lookupWallet(toID)
	if err != nil {
		return pair, err
	}
	if err := validation.ValidateWalletTransfer(from, to, amount, description); err != nil {
		return pair, err
	}

	s.phase(op, PhaseRemote, nil)
	err = s.remote.Transfer(remoteContext(ctx), identity.UserID, model.TransferRequest{
		FromWalletID: fromID,
		ToWalletID:   toID,
		Description:  description,
		Amount:       amount,
	})
	if err != nil {
		return pair, wrap("transfer balance", err)
	}

	records := transform.CreateTransferTransactions(from, to, amount, description, model.DateOnly(s.now()))
	pair = [2]model.Transaction{*records[0], *records[1]}

	s.phase(op, PhaseApplying, nil)
	err = s.commit(epoch, func() {
		s.wallets = transform.UpdateWalletBalance(s.wallets, fromID, amount, model.TransactionExpense)
		s.wallets = transform.UpdateWalletBalance(s.wallets, toID, amount, model.TransactionIncome)
		s.transactions = transform.PrependTransactions(s.transactions, pair[0], pair[1])
	})
	if err != nil {
		return [2]model.Transaction{}, err
	}

	s.logger.Info("Transferred balance",
		"from_wallet_id", fromID,
		"to_wallet_id", toID,
		"amount", amount.String())
	return pair, nil
}
