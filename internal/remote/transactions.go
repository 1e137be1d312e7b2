package remote

import (
	"context"
	"net/http"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// FetchTransactions returns a user's transactions.
func (c *Client) FetchTransactions(ctx context.Context, ownerID model.ID) ([]model.Transaction, error) {
	var dtos []transactionDTO
	if err := c.get(ctx, path("/users/%s/transactions/", ownerID), &dtos); err != nil {
		return nil, err
	}

	txns := make([]model.Transaction, 0, len(dtos))
	for _, d := range dtos {
		txn, err := d.model()
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// CreateTransaction records a transaction. The API only stores reference
// categories, so a free-text category travels as a "Category: " prefix of the
// description and is split off again on read.
func (c *Client) CreateTransaction(ctx context.Context, ownerID model.ID, txn model.NewTransaction) (*model.Transaction, error) {
	body := transactionCreate{
		WalletID:    wireID(txn.WalletID),
		Amount:      number(txn.Amount),
		Date:        txn.Date.Format(model.DateLayout),
		Type:        string(txn.Type),
		Description: txn.Description,
	}
	if txn.CategoryID != nil {
		body.CategoryID = wireID(*txn.CategoryID)
	} else if txn.Category != "" {
		body.Description = txn.Category + ": " + txn.Description
	}

	var created transactionDTO
	if err := c.do(ctx, http.MethodPost, path("/users/%s/transactions/", ownerID), body, &created); err != nil {
		return nil, err
	}
	result, err := created.model()
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteTransaction deletes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, path("/transactions/%s", id), nil, nil)
}

// Transfer moves balance between two wallets.
func (c *Client) Transfer(ctx context.Context, ownerID model.ID, req model.TransferRequest) error {
	return c.do(ctx, http.MethodPost, path("/users/%s/transfer/", ownerID), transferRequest{
		FromWalletID: wireID(req.FromWalletID),
		ToWalletID:   wireID(req.ToWalletID),
		Amount:       number(req.Amount),
		Description:  req.Description,
	}, nil)
}
