// Package records holds the narrow contracts to the durable account world:
// the per-account player record document and the connection authenticator.
// The world engine only ever reads a record on connect and writes it after
// reward-bearing events; everything else that touches the document (shop,
// goals, mini-games) lives outside this server.
package records

import (
	"context"
	"sync"
)

// Record is the durable per-account progress/economy document. The world
// engine treats it as mostly opaque: it seeds level/exp/hp on connect and
// adds score / updates level, exp, hp after rewards.
type Record struct {
	Score         int      `json:"score"`
	Tickets       int      `json:"tickets"`
	Items         []string `json:"items"`
	EquippedBadge *string  `json:"equipped_badge"`
	Level         int      `json:"level"`
	Exp           int      `json:"exp"`
	HP            int      `json:"hp"`
	LastLoginDate *string  `json:"last_login_date"`
}

// DefaultRecord returns the document for an account that has never played.
func DefaultRecord() Record {
	return Record{
		Items: []string{},
		Level: 1,
		HP:    100,
	}
}

// Store reads and writes player records keyed by account name.
//
// Implementations must be safe for concurrent use. Get for an unknown
// account returns DefaultRecord() with a nil error.
type Store interface {
	Get(ctx context.Context, account string) (Record, error)
	Put(ctx context.Context, account string, rec Record) error
}

// Authenticator resolves a live connection to its authenticated account.
type Authenticator interface {
	// Account returns the account name bound to connID, or ok == false when
	// the connection is not authenticated.
	Account(connID string) (string, bool)
}

// StaticAuth is an in-process Authenticator: the transport layer binds a
// connection to an account at upgrade time and unbinds it on close.
type StaticAuth struct {
	mu       sync.RWMutex
	accounts map[string]string
}

// NewStaticAuth creates an empty StaticAuth.
func NewStaticAuth() *StaticAuth {
	return &StaticAuth{accounts: make(map[string]string)}
}

// Bind associates connID with account, replacing any previous binding.
//
// Precondition: connID and account must be non-empty.
func (a *StaticAuth) Bind(connID, account string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[connID] = account
}

// Unbind removes the binding for connID, if any.
func (a *StaticAuth) Unbind(connID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.accounts, connID)
}

// Account returns the account bound to connID.
func (a *StaticAuth) Account(connID string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	account, ok := a.accounts[connID]
	return account, ok
}
