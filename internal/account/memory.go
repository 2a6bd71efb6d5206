package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps accounts in a map. It backs tests and local
// development; it applies the same "(nil, nil) means not found"
// contract as the Postgres store. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*Account)}
}

func (s *MemoryStore) FindByProviderSubject(
	_ context.Context,
	provider string,
	externalID string,
) (*Account, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Provider == provider && a.ExternalID == externalID {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Save(_ context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if a.ID == "" {
		a.ID = uuid.NewString()
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	s.accounts[a.ID] = clone(a)
	return nil
}

// Len reports the number of stored accounts.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

func clone(a *Account) *Account {
	c := *a
	return &c
}
