package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsType decides whether contributions to a goal are funded by a wallet.
type SavingsType string

// Savings types.
const (
	// SavingsIndividual goals track their current amount independently of any wallet.
	SavingsIndividual SavingsType = "individual"
	// SavingsLinked goals are funded by debiting the linked wallet.
	SavingsLinked SavingsType = "linked"
)

// ParseSavingsType maps a name to a SavingsType, defaulting to individual.
func ParseSavingsType(name string) SavingsType {
	if SavingsType(name) == SavingsLinked {
		return SavingsLinked
	}
	return SavingsIndividual
}

// SavingsGoal tracks progress toward a target amount by a target date.
type SavingsGoal struct {
	TargetDate     time.Time
	ID             ID
	LinkedWalletID ID
	Name           string
	Description    string
	SavingsType    SavingsType
	GoalAmount     decimal.Decimal
	CurrentAmount  decimal.Decimal
}

// IsLinked reports whether contributions to the goal debit a wallet.
func (g SavingsGoal) IsLinked() bool {
	return g.SavingsType == SavingsLinked && !g.LinkedWalletID.IsZero()
}

// SavingsGoalDraft carries the fields needed to create a savings goal.
type SavingsGoalDraft struct {
	TargetDate     time.Time
	LinkedWalletID ID
	Name           string
	Description    string
	SavingsType    SavingsType
	GoalAmount     decimal.Decimal
	CurrentAmount  decimal.Decimal
}

// SavingsGoalUpdate is a partial goal update. Nil fields keep their current value.
type SavingsGoalUpdate struct {
	TargetDate     *time.Time
	LinkedWalletID *ID
	Name           *string
	Description    *string
	SavingsType    *SavingsType
	GoalAmount     *decimal.Decimal
	CurrentAmount  *decimal.Decimal
}

// Apply merges the update over g and returns the full resulting goal.
func (u SavingsGoalUpdate) Apply(g SavingsGoal) SavingsGoal {
	if u.TargetDate != nil {
		g.TargetDate = *u.TargetDate
	}
	if u.LinkedWalletID != nil {
		g.LinkedWalletID = *u.LinkedWalletID
	}
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.SavingsType != nil {
		g.SavingsType = *u.SavingsType
	}
	if u.GoalAmount != nil {
		g.GoalAmount = *u.GoalAmount
	}
	if u.CurrentAmount != nil {
		g.CurrentAmount = *u.CurrentAmount
	}
	return g
}

// Draft returns the goal's fields as a draft, for re-validation after an update.
func (g SavingsGoal) Draft() SavingsGoalDraft {
	return SavingsGoalDraft{
		TargetDate:     g.TargetDate,
		LinkedWalletID: g.LinkedWalletID,
		Name:           g.Name,
		Description:    g.Description,
		SavingsType:    g.SavingsType,
		GoalAmount:     g.GoalAmount,
		CurrentAmount:  g.CurrentAmount,
	}
}
