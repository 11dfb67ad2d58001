// Package ledger holds one user's accounts and transactions in memory and is
// the only place balance arithmetic happens.
//
// Every mutation updates the cached account balance and appends the matching
// transaction together, so a reader never observes one without the other.
// A Ledger is owned by a single caller at a time and is not safe for
// concurrent use.
package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/msomdec/bank-portal/internal/domain"
	"github.com/msomdec/bank-portal/internal/ident"
	"github.com/shopspring/decimal"
)

const (
	InitialDepositDescription    = "Initial deposit"
	DefaultDepositDescription    = "Deposit"
	DefaultWithdrawalDescription = "Withdrawal"

	recentActivityLimit = 5
)

// Ledger is the in-memory account book of a single user.
type Ledger struct {
	userID       string
	accounts     []domain.Account
	index        map[string]int // account ID -> position in accounts
	transactions []domain.Transaction
	now          func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used to stamp accounts and transactions.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates an empty ledger for the given user.
func New(userID string, opts ...Option) *Ledger {
	l := &Ledger{
		userID: userID,
		index:  make(map[string]int),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromUser builds a ledger from a stored user record and checks that every
// cached balance agrees with the transaction history.
func FromUser(u *domain.User, opts ...Option) (*Ledger, error) {
	l := New(u.ID, opts...)
	l.Restore(Snapshot{accounts: u.Accounts, transactions: u.Transactions})
	if err := l.Verify(); err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", u.ID, err)
	}
	return l, nil
}

// UserID returns the owner of the ledger.
func (l *Ledger) UserID() string {
	return l.userID
}

// CreateAccount opens a new account. A positive initial deposit is recorded as
// a deposit transaction; zero or negative initial deposits open the account
// empty and record nothing.
func (l *Ledger) CreateAccount(name string, accountType domain.AccountType, initialDeposit decimal.Decimal) (domain.Account, *domain.Transaction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, nil, fmt.Errorf("%w: account name is required", domain.ErrInvalidInput)
	}
	if !accountType.Valid() {
		return domain.Account{}, nil, fmt.Errorf("%w: unknown account type %q", domain.ErrInvalidInput, accountType)
	}
	if initialDeposit.IsPositive() && !isCents(initialDeposit) {
		return domain.Account{}, nil, fmt.Errorf("%w: %s has more than two decimal places", domain.ErrInvalidAmount, initialDeposit)
	}

	now := l.now()
	account := domain.Account{
		ID:        ident.NewID(ident.PrefixAccount),
		UserID:    l.userID,
		Name:      name,
		Type:      accountType,
		Number:    ident.NewAccountNumber(),
		Balance:   decimal.Zero,
		CreatedAt: now,
	}

	var txn *domain.Transaction
	if initialDeposit.IsPositive() {
		account.Balance = initialDeposit
		txn = &domain.Transaction{
			ID:          ident.NewID(ident.PrefixTransaction),
			AccountID:   account.ID,
			UserID:      l.userID,
			Type:        domain.TransactionTypeDeposit,
			Amount:      initialDeposit,
			Description: InitialDepositDescription,
			Date:        now,
		}
	}

	l.index[account.ID] = len(l.accounts)
	l.accounts = append(l.accounts, account)
	if txn != nil {
		l.transactions = append(l.transactions, *txn)
	}
	return account, txn, nil
}

// ApplyDeposit credits amount to the account and records the deposit.
func (l *Ledger) ApplyDeposit(accountID string, amount decimal.Decimal, description string) (domain.Transaction, error) {
	i, ok := l.index[accountID]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	}
	if err := validateAmount(amount); err != nil {
		return domain.Transaction{}, err
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultDepositDescription
	}

	txn := l.newTransaction(accountID, domain.TransactionTypeDeposit, amount, description)
	l.accounts[i].Balance = l.accounts[i].Balance.Add(amount)
	l.transactions = append(l.transactions, txn)
	return txn, nil
}

// ApplyWithdrawal debits amount from the account and records the withdrawal.
// The balance never goes below zero.
func (l *Ledger) ApplyWithdrawal(accountID string, amount decimal.Decimal, description string) (domain.Transaction, error) {
	i, ok := l.index[accountID]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	}
	if err := validateAmount(amount); err != nil {
		return domain.Transaction{}, err
	}
	if amount.GreaterThan(l.accounts[i].Balance) {
		return domain.Transaction{}, fmt.Errorf("%w: balance %s, requested %s",
			domain.ErrInsufficientFunds, l.accounts[i].Balance.StringFixed(2), amount.StringFixed(2))
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultWithdrawalDescription
	}

	txn := l.newTransaction(accountID, domain.TransactionTypeWithdrawal, amount.Neg(), description)
	l.accounts[i].Balance = l.accounts[i].Balance.Sub(amount)
	l.transactions = append(l.transactions, txn)
	return txn, nil
}

func (l *Ledger) newTransaction(accountID string, t domain.TransactionType, amount decimal.Decimal, description string) domain.Transaction {
	return domain.Transaction{
		ID:          ident.NewID(ident.PrefixTransaction),
		AccountID:   accountID,
		UserID:      l.userID,
		Type:        t,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        l.now(),
	}
}

// Account returns a copy of the account with the given ID.
func (l *Ledger) Account(id string) (domain.Account, error) {
	i, ok := l.index[id]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	return l.accounts[i], nil
}

// Accounts returns the accounts in creation order.
func (l *Ledger) Accounts() []domain.Account {
	return slices.Clone(l.accounts)
}

// Transactions returns the full history in insertion order.
func (l *Ledger) Transactions() []domain.Transaction {
	return slices.Clone(l.transactions)
}

// ListTransactions returns the transactions matching filter, most recent
// first. Transactions with equal timestamps keep their insertion order.
func (l *Ledger) ListTransactions(filter domain.TransactionFilter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(l.transactions))
	for _, t := range l.transactions {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// TotalBalance is the sum of all account balances.
func (l *Ledger) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range l.accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Summary aggregates the figures shown on the dashboard.
type Summary struct {
	TotalBalance        decimal.Decimal
	ActiveAccounts      int
	MonthlyTransactions int
	RecentActivity      []domain.Transaction
}

// Summary computes dashboard figures; the monthly count covers the calendar
// month containing now.
func (l *Ledger) Summary(now time.Time) Summary {
	s := Summary{
		TotalBalance:   l.TotalBalance(),
		ActiveAccounts: len(l.accounts),
	}
	year, month, _ := now.Date()
	for _, t := range l.transactions {
		ty, tm, _ := t.Date.In(now.Location()).Date()
		if ty == year && tm == month {
			s.MonthlyTransactions++
		}
	}
	recent := l.ListTransactions(domain.TransactionFilter{})
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	s.RecentActivity = recent
	return s
}

// Verify recomputes every balance from the transaction history and checks the
// model invariants.
func (l *Ledger) Verify() error {
	sums := make(map[string]decimal.Decimal, len(l.accounts))
	for _, t := range l.transactions {
		if _, ok := l.index[t.AccountID]; !ok {
			return fmt.Errorf("%w: transaction %s references unknown account %s", domain.ErrInvalidInput, t.ID, t.AccountID)
		}
		if t.UserID != l.userID {
			return fmt.Errorf("%w: transaction %s belongs to user %s", domain.ErrInvalidInput, t.ID, t.UserID)
		}
		if t.Amount.IsZero() {
			return fmt.Errorf("%w: transaction %s has zero amount", domain.ErrInvalidInput, t.ID)
		}
		sums[t.AccountID] = sums[t.AccountID].Add(t.Amount)
	}
	for _, a := range l.accounts {
		if a.UserID != l.userID {
			return fmt.Errorf("%w: account %s belongs to user %s", domain.ErrInvalidInput, a.ID, a.UserID)
		}
		if !a.Balance.Equal(sums[a.ID]) {
			return fmt.Errorf("%w: account %s balance %s does not match history %s",
				domain.ErrInvalidInput, a.ID, a.Balance.StringFixed(2), sums[a.ID].StringFixed(2))
		}
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, amount)
	}
	if !isCents(amount) {
		return fmt.Errorf("%w: %s has more than two decimal places", domain.ErrInvalidAmount, amount)
	}
	return nil
}

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
