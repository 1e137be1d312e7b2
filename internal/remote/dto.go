package remote

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/transform"
	"github.com/shopspring/decimal"
)

// Wire types mirror the JSON documents served by the ledger API.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string   `json:"message"`
	Email   string   `json:"email"`
	UserID  model.ID `json:"user_id"`
}

type userCreate struct {
	CountryID  any    `json:"country_id,omitempty"`
	CurrencyID any    `json:"currency_id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Mobile     string `json:"mobile,omitempty"`
	DOB        string `json:"dob,omitempty"`
}

type currencyDTO struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Symbol string   `json:"symbol"`
	ID     model.ID `json:"id"`
}

type userDTO struct {
	Currency   *currencyDTO `json:"currency"`
	Mobile     *string      `json:"mobile"`
	DOB        *string      `json:"dob"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	ID         model.ID     `json:"id"`
	CountryID  model.ID     `json:"country_id"`
	CurrencyID model.ID     `json:"currency_id"`
}

func (u userDTO) profile() *model.UserProfile {
	p := &model.UserProfile{
		Name:       u.Name,
		Email:      u.Email,
		CountryID:  u.CountryID,
		CurrencyID: u.CurrencyID,
	}
	if u.Mobile != nil {
		p.Mobile = *u.Mobile
	}
	if u.DOB != nil {
		p.DateOfBirth = *u.DOB
	}
	if u.Currency != nil {
		p.Currency = u.Currency.Code
	}
	return p
}

// userUpdate is the full profile document; the API replaces every field.
type userUpdate struct {
	CountryID  any     `json:"country_id"`
	CurrencyID any     `json:"currency_id"`
	Mobile     *string `json:"mobile"`
	DOB        *string `json:"dob"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
}

type walletTypeDTO struct {
	Name string   `json:"name"`
	ID   model.ID `json:"id"`
}

type walletDTO struct {
	Type    *walletTypeDTO  `json:"type"`
	Name    string          `json:"name"`
	Color   string          `json:"color"`
	ID      model.ID        `json:"id"`
	TypeID  model.ID        `json:"type_id"`
	Balance decimal.Decimal `json:"balance"`
}

type walletWrite struct {
	TypeID  any         `json:"type_id"`
	Balance json.Number `json:"balance"`
	Name    string      `json:"name"`
	Color   string      `json:"color"`
}

type categoryDTO struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	ID   model.ID `json:"id"`
}

type transactionDTO struct {
	Category    *categoryDTO    `json:"category"`
	Description *string         `json:"description"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	ID          model.ID        `json:"id"`
	WalletID    model.ID        `json:"wallet_id"`
	Amount      decimal.Decimal `json:"amount"`
}

func (t transactionDTO) model() (model.Transaction, error) {
	date, err := model.ParseDate(datePart(t.Date))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q on transaction %s: %w", t.Date, t.ID, err)
	}

	txn := model.Transaction{
		ID:       t.ID,
		Date:     date,
		WalletID: t.WalletID,
		Type:     model.TransactionType(t.Type),
		Amount:   t.Amount,
	}
	if txn.WalletID.IsZero() {
		txn.WalletID = model.RemovedWalletID
	}
	if t.Description != nil {
		txn.Description = *t.Description
	}
	if t.Category != nil && t.Category.Name != "" {
		txn.Category = t.Category.Name
	} else {
		txn.Category, txn.Description = transform.ExtractCategoryFromDescription(txn.Description)
	}
	return txn, nil
}

type transactionCreate struct {
	CategoryID  any         `json:"category_id"`
	WalletID    any         `json:"wallet_id"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
}

type savingsGoalDTO struct {
	Description    *string         `json:"description"`
	TargetDate     *string         `json:"target_date"`
	SavingsType    *string         `json:"savings_type"`
	Name           string          `json:"name"`
	ID             model.ID        `json:"id"`
	LinkedWalletID model.ID        `json:"linked_wallet_id"`
	GoalAmount     decimal.Decimal `json:"goal_amount"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
}

func (g savingsGoalDTO) model() (model.SavingsGoal, error) {
	goal := model.SavingsGoal{
		ID:             g.ID,
		Name:           g.Name,
		LinkedWalletID: g.LinkedWalletID,
		GoalAmount:     g.GoalAmount,
		CurrentAmount:  g.CurrentAmount,
	}
	if g.Description != nil {
		goal.Description = *g.Description
	}
	if g.SavingsType != nil {
		goal.SavingsType = model.ParseSavingsType(*g.SavingsType)
	}
	if goal.SavingsType != model.SavingsLinked || goal.LinkedWalletID.IsZero() {
		goal.SavingsType = model.SavingsIndividual
	}
	if g.TargetDate != nil && *g.TargetDate != "" {
		target, err := model.ParseDate(datePart(*g.TargetDate))
		if err != nil {
			return model.SavingsGoal{}, fmt.Errorf("invalid target date %q on savings goal %s: %w", *g.TargetDate, g.ID, err)
		}
		goal.TargetDate = target
	}
	return goal, nil
}

type savingsGoalWrite struct {
	TargetDate     *string     `json:"target_date"`
	LinkedWalletID any         `json:"linked_wallet_id"`
	GoalAmount     json.Number `json:"goal_amount"`
	CurrentAmount  json.Number `json:"current_amount"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	SavingsType    string      `json:"savings_type"`
}

func savingsGoalBody(draft model.SavingsGoalDraft) savingsGoalWrite {
	body := savingsGoalWrite{
		Name:           draft.Name,
		Description:    draft.Description,
		GoalAmount:     number(draft.GoalAmount),
		CurrentAmount:  number(draft.CurrentAmount),
		SavingsType:    string(draft.SavingsType),
		LinkedWalletID: wireID(draft.LinkedWalletID),
	}
	if body.SavingsType == "" {
		body.SavingsType = string(model.SavingsIndividual)
	}
	if !draft.TargetDate.IsZero() {
		target := draft.TargetDate.Format(model.DateLayout)
		body.TargetDate = &target
	}
	return body
}

type transferRequest struct {
	FromWalletID any         `json:"from_wallet_id"`
	ToWalletID   any         `json:"to_wallet_id"`
	Amount       json.Number `json:"amount"`
	Description  string      `json:"description"`
}

// errorBody is the error document returned with non-2xx responses. Detail is
// a string for application errors and a list of field errors for bad payloads.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (e errorBody) message() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(e.Detail, &text); err == nil {
		return text
	}
	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &fields); err == nil && len(fields) > 0 {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(e.Detail)
}

// number renders a decimal as a bare JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// wireID sends numeric ids as JSON numbers and absent ids as null.
func wireID(id model.ID) any {
	if id.IsZero() {
		return nil
	}
	if n, err := id.Int64(); err == nil {
		return n
	}
	return id.String()
}

// datePart trims a datetime to its date part.
func datePart(s string) string {
	if len(s) > len(model.DateLayout) {
		return s[:len(model.DateLayout)]
	}
	return s
}
