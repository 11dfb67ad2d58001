package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeBusiness AccountType = "business"
)

// Valid reports whether t is one of the supported account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeBusiness:
		return true
	}
	return false
}

// DisplayName returns the label shown next to an account, e.g. "Savings Account".
func (t AccountType) DisplayName() string {
	switch t {
	case AccountTypeChecking:
		return "Checking Account"
	case AccountTypeSavings:
		return "Savings Account"
	case AccountTypeBusiness:
		return "Business Account"
	}
	return "Account"
}

// Account is a single user-owned account. Balance is a cache of the sum of
// the account's transaction amounts.
type Account struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Number    string          `json:"number"` // 16 digits, display only
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

// MaskedNumber returns the account number with all but the last four digits hidden.
func (a Account) MaskedNumber() string {
	last := a.Number
	if len(last) > 4 {
		last = last[len(last)-4:]
	}
	return "**** **** **** " + last
}
