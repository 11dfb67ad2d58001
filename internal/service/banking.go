package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/bank-portal/internal/domain"
	"github.com/msomdec/bank-portal/internal/ledger"
	"github.com/shopspring/decimal"
)

// BankingService runs ledger commands for the signed-in user. Every command
// loads the user's ledger, applies the change, and writes the whole directory
// back; if that write fails the in-memory ledger is restored to its state
// before the command.
type BankingService struct {
	mu        sync.Mutex
	directory *Directory
	sessions  *SessionManager
	now       func() time.Time
	cached    *ledger.Ledger
}

// BankingOption configures a BankingService.
type BankingOption func(*BankingService)

// WithClock sets the time source for new accounts, transactions and summaries.
func WithClock(now func() time.Time) BankingOption {
	return func(s *BankingService) { s.now = now }
}

// NewBankingService creates a new BankingService.
func NewBankingService(directory *Directory, sessions *SessionManager, opts ...BankingOption) *BankingService {
	s := &BankingService{
		directory: directory,
		sessions:  sessions,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount opens an account for the current user.
func (s *BankingService) CreateAccount(ctx context.Context, name string, accountType domain.AccountType, initialDeposit decimal.Decimal) (domain.Account, *domain.Transaction, error) {
	var (
		account domain.Account
		txn     *domain.Transaction
	)
	err := s.execute(ctx, func(l *ledger.Ledger) error {
		var err error
		account, txn, err = l.CreateAccount(name, accountType, initialDeposit)
		return err
	})
	if err != nil {
		return domain.Account{}, nil, err
	}
	slog.Info("account created", "user_id", account.UserID, "account_id", account.ID,
		"type", account.Type, "initial_deposit", account.Balance.StringFixed(2))
	return account, txn, nil
}

// Deposit credits amount to one of the current user's accounts.
func (s *BankingService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (domain.Transaction, error) {
	var txn domain.Transaction
	err := s.execute(ctx, func(l *ledger.Ledger) error {
		var err error
		txn, err = l.ApplyDeposit(accountID, amount, description)
		return err
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	slog.Info("deposit committed", "user_id", txn.UserID, "account_id", accountID, "amount", txn.Amount.StringFixed(2))
	return txn, nil
}

// Withdraw debits amount from one of the current user's accounts.
func (s *BankingService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, description string) (domain.Transaction, error) {
	var txn domain.Transaction
	err := s.execute(ctx, func(l *ledger.Ledger) error {
		var err error
		txn, err = l.ApplyWithdrawal(accountID, amount, description)
		return err
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	slog.Info("withdrawal committed", "user_id", txn.UserID, "account_id", accountID, "amount", txn.Amount.StringFixed(2))
	return txn, nil
}

// Accounts lists the current user's accounts in creation order.
func (s *BankingService) Accounts(ctx context.Context) ([]domain.Account, error) {
	var out []domain.Account
	err := s.view(ctx, func(l *ledger.Ledger) {
		out = l.Accounts()
	})
	return out, err
}

// ListTransactions lists the current user's transactions, newest first.
func (s *BankingService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := s.view(ctx, func(l *ledger.Ledger) {
		out = l.ListTransactions(filter)
	})
	return out, err
}

// TotalBalance sums the balances of the current user's accounts.
func (s *BankingService) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.view(ctx, func(l *ledger.Ledger) {
		total = l.TotalBalance()
	})
	return total, err
}

// Summary returns the dashboard figures for the current user.
func (s *BankingService) Summary(ctx context.Context) (ledger.Summary, error) {
	var out ledger.Summary
	err := s.view(ctx, func(l *ledger.Ledger) {
		out = l.Summary(s.now())
	})
	return out, err
}

// execute runs mutate against the current user's ledger and persists the
// result. Validation errors from mutate leave the ledger untouched.
func (s *BankingService) execute(ctx context.Context, mutate func(*ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, users, idx, err := s.load(ctx)
	if err != nil {
		return err
	}

	snapshot := l.Snapshot()
	if err := mutate(l); err != nil {
		return err
	}

	users[idx].Accounts = l.Accounts()
	users[idx].Transactions = l.Transactions()
	if err := s.directory.Save(ctx, users); err != nil {
		l.Restore(snapshot)
		slog.Warn("command rolled back", "user_id", l.UserID(), "error", err)
		return err
	}
	return nil
}

func (s *BankingService) view(ctx context.Context, read func(*ledger.Ledger)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, _, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	read(l)
	return nil
}

// load resolves the current user and returns their ledger together with the
// full directory and the user's position in it. The ledger is built from the
// directory the first time a user is seen and reused afterwards.
func (s *BankingService) load(ctx context.Context) (*ledger.Ledger, []domain.User, int, error) {
	profile, ok := s.sessions.CurrentUser()
	if !ok {
		return nil, nil, 0, domain.ErrUnauthenticated
	}

	users, err := s.directory.Load(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	idx := indexByID(users, profile.ID)
	if idx < 0 {
		return nil, nil, 0, fmt.Errorf("%w: user %s", domain.ErrNotFound, profile.ID)
	}

	if s.cached == nil || s.cached.UserID() != profile.ID {
		l, err := ledger.FromUser(&users[idx], ledger.WithClock(s.now))
		if err != nil {
			return nil, nil, 0, err
		}
		s.cached = l
	}
	return s.cached, users, idx, nil
}
