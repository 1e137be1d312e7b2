package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// MockRemote is a configurable Remote for tests. Every method records its call;
// methods without a function set fall back to echoing their input.
type MockRemote struct {
	LoginFn              func(ctx context.Context, email, password string) (*model.Identity, error)
	RegisterFn           func(ctx context.Context, registration model.Registration) error
	FetchUserProfileFn   func(ctx context.Context, userID model.ID) (*model.UserProfile, error)
	UpdateUserProfileFn  func(ctx context.Context, userID model.ID, update model.ProfileUpdate) error
	FetchWalletsFn       func(ctx context.Context, ownerID model.ID) ([]model.Wallet, error)
	CreateWalletFn       func(ctx context.Context, ownerID model.ID, draft model.WalletDraft) (*model.Wallet, error)
	UpdateWalletFn       func(ctx context.Context, wallet model.Wallet) (*model.Wallet, error)
	DeleteWalletFn       func(ctx context.Context, id model.ID) error
	FetchTransactionsFn  func(ctx context.Context, ownerID model.ID) ([]model.Transaction, error)
	CreateTransactionFn  func(ctx context.Context, ownerID model.ID, txn model.NewTransaction) (*model.Transaction, error)
	DeleteTransactionFn  func(ctx context.Context, id model.ID) error
	FetchSavingsGoalsFn  func(ctx context.Context, ownerID model.ID) ([]model.SavingsGoal, error)
	CreateSavingsGoalFn  func(ctx context.Context, ownerID model.ID, draft model.SavingsGoalDraft) (*model.SavingsGoal, error)
	UpdateSavingsGoalFn  func(ctx context.Context, goal model.SavingsGoal) (*model.SavingsGoal, error)
	DeleteSavingsGoalFn  func(ctx context.Context, id model.ID) error
	TransferFn           func(ctx context.Context, ownerID model.ID, req model.TransferRequest) error
	FetchCategoriesFn    func(ctx context.Context) ([]model.Category, error)

	calls  []MockCall
	mu     sync.Mutex
	nextID int
}

// MockCall records one call made to a MockRemote.
type MockCall struct {
	Method string
	Args   []any
}

// NewMockRemote creates a MockRemote with default behavior.
func NewMockRemote() *MockRemote {
	return &MockRemote{nextID: 1000}
}

func (m *MockRemote) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Args: args})
}

func (m *MockRemote) newID() model.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return model.ID(strconv.Itoa(m.nextID))
}

// Calls returns every recorded call in order.
func (m *MockRemote) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo returns the recorded calls of one method.
func (m *MockRemote) CallsTo(method string) []MockCall {
	var out []MockCall
	for _, c := range m.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// MutatingCalls returns the recorded calls that change remote state.
func (m *MockRemote) MutatingCalls() []MockCall {
	var out []MockCall
	for _, c := range m.Calls() {
		switch c.Method {
		case "Login", "FetchUserProfile", "FetchWallets", "FetchTransactions", "FetchSavingsGoals", "FetchCategories":
			continue
		}
		out = append(out, c)
	}
	return out
}

// Reset clears all call tracking.
func (m *MockRemote) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Login implements AuthService.
func (m *MockRemote) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	m.record("Login", email)
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return &model.Identity{UserID: "1", Email: email}, nil
}

// Register implements AuthService.
func (m *MockRemote) Register(ctx context.Context, registration model.Registration) error {
	m.record("Register", registration.Email)
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, registration)
	}
	return nil
}

// FetchUserProfile implements ProfileService.
func (m *MockRemote) FetchUserProfile(ctx context.Context, userID model.ID) (*model.UserProfile, error) {
	m.record("FetchUserProfile", userID)
	if m.FetchUserProfileFn != nil {
		return m.FetchUserProfileFn(ctx, userID)
	}
	return &model.UserProfile{Currency: model.DefaultCurrency}, nil
}

// UpdateUserProfile implements ProfileService.
func (m *MockRemote) UpdateUserProfile(ctx context.Context, userID model.ID, update model.ProfileUpdate) error {
	m.record("UpdateUserProfile", userID, update)
	if m.UpdateUserProfileFn != nil {
		return m.UpdateUserProfileFn(ctx, userID, update)
	}
	return nil
}

// FetchWallets implements WalletService.
func (m *MockRemote) FetchWallets(ctx context.Context, ownerID model.ID) ([]model.Wallet, error) {
	m.record("FetchWallets", ownerID)
	if m.FetchWalletsFn != nil {
		return m.FetchWalletsFn(ctx, ownerID)
	}
	return []model.Wallet{}, nil
}

// CreateWallet implements WalletService.
func (m *MockRemote) CreateWallet(ctx context.Context, ownerID model.ID, draft model.WalletDraft) (*model.Wallet, error) {
	m.record("CreateWallet", ownerID, draft)
	if m.CreateWalletFn != nil {
		return m.CreateWalletFn(ctx, ownerID, draft)
	}
	return &model.Wallet{
		ID:      m.newID(),
		Name:    draft.Name,
		Type:    draft.Type,
		Color:   draft.Color,
		Balance: draft.Balance,
	}, nil
}

// UpdateWallet implements WalletService.
func (m *MockRemote) UpdateWallet(ctx context.Context, wallet model.Wallet) (*model.Wallet, error) {
	m.record("UpdateWallet", wallet)
	if m.UpdateWalletFn != nil {
		return m.UpdateWalletFn(ctx, wallet)
	}
	return &wallet, nil
}

// DeleteWallet implements WalletService.
func (m *MockRemote) DeleteWallet(ctx context.Context, id model.ID) error {
	m.record("DeleteWallet", id)
	if m.DeleteWalletFn != nil {
		return m.DeleteWalletFn(ctx, id)
	}
	return nil
}

// FetchTransactions implements TransactionService.
func (m *MockRemote) FetchTransactions(ctx context.Context, ownerID model.ID) ([]model.Transaction, error) {
	m.record("FetchTransactions", ownerID)
	if m.FetchTransactionsFn != nil {
		return m.FetchTransactionsFn(ctx, ownerID)
	}
	return []model.Transaction{}, nil
}

// CreateTransaction implements TransactionService.
func (m *MockRemote) CreateTransaction(ctx context.Context, ownerID model.ID, txn model.NewTransaction) (*model.Transaction, error) {
	m.record("CreateTransaction", ownerID, txn)
	if m.CreateTransactionFn != nil {
		return m.CreateTransactionFn(ctx, ownerID, txn)
	}
	return &model.Transaction{
		ID:          m.newID(),
		Date:        txn.Date,
		WalletID:    txn.WalletID,
		Category:    txn.Category,
		Description: txn.Description,
		Type:        txn.Type,
		Amount:      txn.Amount,
	}, nil
}

// DeleteTransaction implements TransactionService.
func (m *MockRemote) DeleteTransaction(ctx context.Context, id model.ID) error {
	m.record("DeleteTransaction", id)
	if m.DeleteTransactionFn != nil {
		return m.DeleteTransactionFn(ctx, id)
	}
	return nil
}

// FetchSavingsGoals implements SavingsService.
func (m *MockRemote) FetchSavingsGoals(ctx context.Context, ownerID model.ID) ([]model.SavingsGoal, error) {
	m.record("FetchSavingsGoals", ownerID)
	if m.FetchSavingsGoalsFn != nil {
		return m.FetchSavingsGoalsFn(ctx, ownerID)
	}
	return []model.SavingsGoal{}, nil
}

// CreateSavingsGoal implements SavingsService.
func (m *MockRemote) CreateSavingsGoal(ctx context.Context, ownerID model.ID, draft model.SavingsGoalDraft) (*model.SavingsGoal, error) {
	m.record("CreateSavingsGoal", ownerID, draft)
	if m.CreateSavingsGoalFn != nil {
		return m.CreateSavingsGoalFn(ctx, ownerID, draft)
	}
	return &model.SavingsGoal{
		ID:             m.newID(),
		TargetDate:     draft.TargetDate,
		LinkedWalletID: draft.LinkedWalletID,
		Name:           draft.Name,
		Description:    draft.Description,
		SavingsType:    draft.SavingsType,
		GoalAmount:     draft.GoalAmount,
		CurrentAmount:  draft.CurrentAmount,
	}, nil
}

// UpdateSavingsGoal implements SavingsService.
func (m *MockRemote) UpdateSavingsGoal(ctx context.Context, goal model.SavingsGoal) (*model.SavingsGoal, error) {
	m.record("UpdateSavingsGoal", goal)
	if m.UpdateSavingsGoalFn != nil {
		return m.UpdateSavingsGoalFn(ctx, goal)
	}
	return &goal, nil
}

// DeleteSavingsGoal implements SavingsService.
func (m *MockRemote) DeleteSavingsGoal(ctx context.Context, id model.ID) error {
	m.record("DeleteSavingsGoal", id)
	if m.DeleteSavingsGoalFn != nil {
		return m.DeleteSavingsGoalFn(ctx, id)
	}
	return nil
}

// Transfer implements TransferService.
func (m *MockRemote) Transfer(ctx context.Context, ownerID model.ID, req model.TransferRequest) error {
	m.record("Transfer", ownerID, req)
	if m.TransferFn != nil {
		return m.TransferFn(ctx, ownerID, req)
	}
	return nil
}

// FetchCategories implements CategoryService.
func (m *MockRemote) FetchCategories(ctx context.Context) ([]model.Category, error) {
	m.record("FetchCategories")
	if m.FetchCategoriesFn != nil {
		return m.FetchCategoriesFn(ctx)
	}
	return []model.Category{}, nil
}

// Ensure MockRemote implements Remote.
var _ Remote = (*MockRemote)(nil)
