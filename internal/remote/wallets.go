package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// loadWalletTypes fetches the wallet type table once per client.
func (c *Client) loadWalletTypes(ctx context.Context) error {
	c.typesMu.Lock()
	defer c.typesMu.Unlock()
	if c.walletTypes != nil {
		return nil
	}

	var dtos []walletTypeDTO
	if err := c.get(ctx, "/wallet_types/", &dtos); err != nil {
		return fmt.Errorf("failed to fetch wallet types: %w", err)
	}

	byName := make(map[model.WalletType]model.ID, len(dtos))
	byID := make(map[model.ID]model.WalletType, len(dtos))
	for _, d := range dtos {
		t := model.WalletType(d.Name)
		byName[t] = d.ID
		byID[d.ID] = model.ParseWalletType(d.Name)
	}
	c.walletTypes = byName
	c.typeNames = byID
	return nil
}

func (c *Client) walletTypeID(ctx context.Context, t model.WalletType) (model.ID, error) {
	if err := c.loadWalletTypes(ctx); err != nil {
		return "", err
	}
	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	if id, ok := c.walletTypes[t]; ok {
		return id, nil
	}
	if id, ok := c.walletTypes[model.WalletTypeOther]; ok {
		return id, nil
	}
	return "", fmt.Errorf("wallet type %q is not offered by the API", t)
}

func (c *Client) walletModel(d walletDTO) model.Wallet {
	w := model.Wallet{
		ID:      d.ID,
		Name:    d.Name,
		Color:   d.Color,
		Balance: d.Balance,
		Type:    model.WalletTypeOther,
	}
	if d.Type != nil {
		w.Type = model.ParseWalletType(d.Type.Name)
		return w
	}

	c.typesMu.Lock()
	defer c.typesMu.Unlock()
	if t, ok := c.typeNames[d.TypeID]; ok {
		w.Type = t
	}
	return w
}

func (c *Client) walletBody(ctx context.Context, name string, t model.WalletType, w model.Wallet) (walletWrite, error) {
	typeID, err := c.walletTypeID(ctx, t)
	if err != nil {
		return walletWrite{}, err
	}
	return walletWrite{
		Name:    name,
		TypeID:  wireID(typeID),
		Balance: number(w.Balance),
		Color:   w.Color,
	}, nil
}

// FetchWallets returns the wallets owned by a user.
func (c *Client) FetchWallets(ctx context.Context, ownerID model.ID) ([]model.Wallet, error) {
	var dtos []walletDTO
	if err := c.get(ctx, path("/users/%s/wallets/", ownerID), &dtos); err != nil {
		return nil, err
	}

	wallets := make([]model.Wallet, 0, len(dtos))
	for _, d := range dtos {
		wallets = append(wallets, c.walletModel(d))
	}
	return wallets, nil
}

// CreateWallet creates a wallet owned by ownerID.
func (c *Client) CreateWallet(ctx context.Context, ownerID model.ID, draft model.WalletDraft) (*model.Wallet, error) {
	body, err := c.walletBody(ctx, draft.Name, draft.Type, model.Wallet{Balance: draft.Balance, Color: draft.Color})
	if err != nil {
		return nil, err
	}

	var created walletDTO
	if err := c.do(ctx, http.MethodPost, path("/users/%s/wallets/", ownerID), body, &created); err != nil {
		return nil, err
	}
	w := c.walletModel(created)
	return &w, nil
}

// UpdateWallet replaces a wallet with the given record.
func (c *Client) UpdateWallet(ctx context.Context, wallet model.Wallet) (*model.Wallet, error) {
	body, err := c.walletBody(ctx, wallet.Name, wallet.Type, wallet)
	if err != nil {
		return nil, err
	}

	var updated walletDTO
	if err := c.do(ctx, http.MethodPut, path("/wallets/%s", wallet.ID), body, &updated); err != nil {
		return nil, err
	}
	w := c.walletModel(updated)
	return &w, nil
}

// DeleteWallet deletes a wallet.
func (c *Client) DeleteWallet(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, path("/wallets/%s", id), nil, nil)
}
