package ledger

import (
	"slices"

	"github.com/msomdec/bank-portal/internal/domain"
)

// Snapshot is a point-in-time copy of a ledger's contents.
type Snapshot struct {
	accounts     []domain.Account
	transactions []domain.Transaction
}

// Snapshot copies the current accounts and transactions.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		accounts:     slices.Clone(l.accounts),
		transactions: slices.Clone(l.transactions),
	}
}

// Restore replaces the ledger contents with s.
func (l *Ledger) Restore(s Snapshot) {
	l.accounts = slices.Clone(s.accounts)
	l.transactions = slices.Clone(s.transactions)
	clear(l.index)
	for i, a := range l.accounts {
		l.index[a.ID] = i
	}
}
