package billing

import (
	"context"
	"sync"
	"time"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// Store is the external credential/plan store consumed by the meter.
type Store interface {
	// Get returns the account for a credential, or
	// models.ErrInvalidCredential when unknown.
	Get(ctx context.Context, credentialID string) (*models.UsageAccount, error)
	// IncrementUsage adds one unit of usage and stamps last_used.
	IncrementUsage(ctx context.Context, credentialID string) error
	// SetPlan switches the account's tier and quota.
	SetPlan(ctx context.Context, credentialID string, plan models.Plan, limit int64) error
	// Create persists a new account.
	Create(ctx context.Context, account *models.UsageAccount) error
}

// MemoryStore is the in-process Store used in tests and single-node dev
// deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]models.UsageAccount
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]models.UsageAccount)}
}

func (s *MemoryStore) Get(ctx context.Context, credentialID string) (*models.UsageAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[credentialID]
	if !ok {
		return nil, models.ErrInvalidCredential
	}
	return &acct, nil
}

func (s *MemoryStore) IncrementUsage(ctx context.Context, credentialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[credentialID]
	if !ok {
		return models.ErrInvalidCredential
	}
	acct.Usage++
	acct.LastUsed = time.Now().UTC()
	s.accounts[credentialID] = acct
	return nil
}

func (s *MemoryStore) SetPlan(ctx context.Context, credentialID string, plan models.Plan, limit int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[credentialID]
	if !ok {
		return models.ErrInvalidCredential
	}
	acct.Plan = plan
	acct.Limit = limit
	s.accounts[credentialID] = acct
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, account *models.UsageAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.CredentialID] = *account
	return nil
}
