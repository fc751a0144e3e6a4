package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
	"github.com/feichai0017/ai-ready-data/pkg/metrics"
)

// Meter enforces plan quotas. Check reserves one unit of quota before any
// processing work begins; Commit converts the reservation into persisted
// usage after success; Release drops it after a failure. The
// check-then-increment sequence is serialized per credential so that with K
// credits remaining exactly K concurrent requests are admitted.
type Meter struct {
	store  Store
	plans  *PlanTable
	logger logger.Logger

	mu    sync.Mutex
	creds map[string]*credential
}

type credential struct {
	mu      sync.Mutex
	pending int64
}

func NewMeter(store Store, plans *PlanTable, log logger.Logger) *Meter {
	return &Meter{
		store:  store,
		plans:  plans,
		logger: log,
		creds:  make(map[string]*credential),
	}
}

func (m *Meter) credFor(id string) *credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[id]
	if !ok {
		c = &credential{}
		m.creds[id] = c
	}
	return c
}

// Check admits or rejects one processing request. On admission one unit of
// quota is reserved until Commit or Release.
func (m *Meter) Check(ctx context.Context, credentialID string) (*models.UsageAccount, error) {
	c := m.credFor(credentialID)
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := m.store.Get(ctx, credentialID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredential) {
			metrics.QuotaRejections.WithLabelValues("invalid_credential").Inc()
		}
		return nil, err
	}

	if !acct.Unlimited() && acct.Usage+c.pending >= acct.Limit {
		metrics.QuotaRejections.WithLabelValues("quota_exceeded").Inc()
		m.logger.Warn("Request rejected by quota",
			logger.String("credential", credentialID),
			logger.Int64("usage", acct.Usage),
			logger.Int64("limit", acct.Limit),
		)
		return nil, models.ErrQuotaExceeded
	}

	c.pending++
	return acct, nil
}

// Commit charges exactly one credit for a successfully processed document.
func (m *Meter) Commit(ctx context.Context, credentialID string) error {
	c := m.credFor(credentialID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending > 0 {
		c.pending--
	}
	if err := m.store.IncrementUsage(ctx, credentialID); err != nil {
		return fmt.Errorf("failed to commit usage: %w", err)
	}
	return nil
}

// Release returns a reserved unit of quota after a failed processing call.
// Failed calls never change usage.
func (m *Meter) Release(credentialID string) {
	c := m.credFor(credentialID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending > 0 {
		c.pending--
	}
}

// Account returns the credential's snapshot without reserving quota.
func (m *Meter) Account(ctx context.Context, credentialID string) (*models.UsageAccount, error) {
	return m.store.Get(ctx, credentialID)
}

// CreateAccount provisions a fresh credential on the given plan. The
// credential id doubles as the opaque API key.
func (m *Meter) CreateAccount(ctx context.Context, plan models.Plan) (*models.UsageAccount, error) {
	limit, err := m.plans.LimitFor(plan)
	if err != nil {
		return nil, err
	}

	acct := &models.UsageAccount{
		CredentialID: uuid.New().String(),
		Usage:        0,
		Limit:        limit,
		Plan:         plan,
	}
	if err := m.store.Create(ctx, acct); err != nil {
		return nil, err
	}

	m.logger.Info("Account created",
		logger.String("credential", acct.CredentialID),
		logger.String("plan", string(plan)),
	)
	return acct, nil
}

// SetPlan moves an account to a new tier. An upgrade is one of the two
// external events that can bring a limited account back to active.
func (m *Meter) SetPlan(ctx context.Context, credentialID string, plan models.Plan) (*models.UsageAccount, error) {
	limit, err := m.plans.LimitFor(plan)
	if err != nil {
		return nil, err
	}
	if err := m.store.SetPlan(ctx, credentialID, plan, limit); err != nil {
		return nil, err
	}

	m.logger.Info("Plan changed",
		logger.String("credential", credentialID),
		logger.String("plan", string(plan)),
		logger.Int64("limit", limit),
	)
	return m.store.Get(ctx, credentialID)
}
