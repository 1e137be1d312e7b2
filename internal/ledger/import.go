package ledger

import (
	"context"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// ImportFailure is a draft that could not be recorded.
type ImportFailure struct {
	Err   error
	Draft model.TransactionDraft
	Index int
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Imported []model.Transaction
	Failures []ImportFailure
}

// ImportTransactions records drafts one at a time through AddTransaction, so
// every imported record is validated and moves its wallet balance exactly like a
// manually entered one. A failing draft is reported and the batch continues.
// progress, if non-nil, is called after each draft.
func (s *Session) ImportTransactions(ctx context.Context, drafts []model.TransactionDraft, progress func(done int)) (ImportResult, error) {
	var result ImportResult

	for i, draft := range drafts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		txn, err := s.AddTransaction(ctx, draft)
		if err != nil {
			result.Failures = append(result.Failures, ImportFailure{Index: i, Draft: draft, Err: err})
			s.logger.Warn("Skipping imported transaction",
				"index", i,
				"description", draft.Description,
				"error", err)
		} else {
			result.Imported = append(result.Imported, *txn)
		}

		if progress != nil {
			progress(i + 1)
		}
	}

	return result, nil
}
