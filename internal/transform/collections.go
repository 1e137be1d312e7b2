// Package transform computes next-state collections for the ledger.
// Every function is pure: inputs are never mutated, entries that do not change
// are carried over by pointer, and a changed entry is replaced by a fresh copy.
package transform

import "github.com/Veraticus/the-books-must-balance/internal/model"

func prepend[T any](items []*T, head ...*T) []*T {
	out := make([]*T, 0, len(items)+len(head))
	out = append(out, head...)
	return append(out, items...)
}

func appendItem[T any](items []*T, item *T) []*T {
	out := make([]*T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

func removeWhere[T any](items []*T, match func(*T) bool) []*T {
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}

func mapWhere[T any](items []*T, match func(*T) bool, change func(T) T) []*T {
	out := make([]*T, len(items))
	for i, item := range items {
		if match(item) {
			next := change(*item)
			out[i] = &next
			continue
		}
		out[i] = item
	}
	return out
}

func replace[T any](value T) func(T) T {
	return func(T) T { return value }
}

// PrependTransaction returns txns with txn at the front.
func PrependTransaction(txns []*model.Transaction, txn model.Transaction) []*model.Transaction {
	return prepend(txns, &txn)
}

// PrependTransactions returns txns with head placed at the front in the given order.
func PrependTransactions(txns []*model.Transaction, head ...model.Transaction) []*model.Transaction {
	ptrs := make([]*model.Transaction, len(head))
	for i := range head {
		ptrs[i] = &head[i]
	}
	return prepend(txns, ptrs...)
}

// RemoveTransactionByID drops every transaction with the given id.
func RemoveTransactionByID(txns []*model.Transaction, id model.ID) []*model.Transaction {
	return removeWhere(txns, func(t *model.Transaction) bool { return t.ID == id })
}

// UpdateTransactionByID replaces the transaction with the given id.
func UpdateTransactionByID(txns []*model.Transaction, id model.ID, updated model.Transaction) []*model.Transaction {
	return mapWhere(txns, func(t *model.Transaction) bool { return t.ID == id }, replace(updated))
}

// AppendWallet returns wallets with w at the end.
func AppendWallet(wallets []*model.Wallet, w model.Wallet) []*model.Wallet {
	return appendItem(wallets, &w)
}

// RemoveWalletByID drops the wallet with the given id.
func RemoveWalletByID(wallets []*model.Wallet, id model.ID) []*model.Wallet {
	return removeWhere(wallets, func(w *model.Wallet) bool { return w.ID == id })
}

// UpdateWalletByID replaces the wallet with the given id.
func UpdateWalletByID(wallets []*model.Wallet, id model.ID, updated model.Wallet) []*model.Wallet {
	return mapWhere(wallets, func(w *model.Wallet) bool { return w.ID == id }, replace(updated))
}

// AppendSavingsGoal returns goals with g at the end.
func AppendSavingsGoal(goals []*model.SavingsGoal, g model.SavingsGoal) []*model.SavingsGoal {
	return appendItem(goals, &g)
}

// RemoveSavingsGoalByID drops the goal with the given id.
func RemoveSavingsGoalByID(goals []*model.SavingsGoal, id model.ID) []*model.SavingsGoal {
	return removeWhere(goals, func(g *model.SavingsGoal) bool { return g.ID == id })
}

// UpdateSavingsGoalByID replaces the goal with the given id.
func UpdateSavingsGoalByID(goals []*model.SavingsGoal, id model.ID, updated model.SavingsGoal) []*model.SavingsGoal {
	return mapWhere(goals, func(g *model.SavingsGoal) bool { return g.ID == id }, replace(updated))
}

// OrphanTransactions reassigns the transactions of a deleted wallet to model.RemovedWalletID.
func OrphanTransactions(txns []*model.Transaction, walletID model.ID) []*model.Transaction {
	return mapWhere(txns,
		func(t *model.Transaction) bool { return t.WalletID == walletID },
		func(t model.Transaction) model.Transaction {
			t.WalletID = model.RemovedWalletID
			return t
		})
}

// UnlinkSavingsGoals turns every goal funded by walletID into an individual goal.
func UnlinkSavingsGoals(goals []*model.SavingsGoal, walletID model.ID) []*model.SavingsGoal {
	return mapWhere(goals,
		func(g *model.SavingsGoal) bool { return g.LinkedWalletID == walletID },
		func(g model.SavingsGoal) model.SavingsGoal {
			g.LinkedWalletID = ""
			g.SavingsType = model.SavingsIndividual
			return g
		})
}
