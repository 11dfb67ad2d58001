// Package ident generates identifiers for users, accounts and transactions.
package ident

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PrefixUser        = "user"
	PrefixAccount     = "acc"
	PrefixTransaction = "txn"
)

// Replaced in tests.
var (
	now    = time.Now
	random = uuid.New
)

// NewID returns "<prefix>_<unix millis>_<9 hex chars>". The random suffix keeps
// IDs minted within the same millisecond distinct.
func NewID(prefix string) string {
	suffix := strings.ReplaceAll(random().String(), "-", "")[:9]
	return prefix + "_" + strconv.FormatInt(now().UnixMilli(), 10) + "_" + suffix
}

// NewAccountNumber returns a 16-digit numeric account number.
func NewAccountNumber() string {
	id := random()
	var b strings.Builder
	b.Grow(len(id))
	for _, c := range id {
		b.WriteByte('0' + c%10)
	}
	return b.String()
}
