package billing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

func newTestMeter(t *testing.T) (*Meter, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewMeter(store, DefaultPlans(), logger.NewTestLogger()), store
}

func seedAccount(t *testing.T, store *MemoryStore, usage, limit int64, plan models.Plan) string {
	t.Helper()
	acct := &models.UsageAccount{
		CredentialID: "cred-" + string(plan),
		Usage:        usage,
		Limit:        limit,
		Plan:         plan,
	}
	require.NoError(t, store.Create(context.Background(), acct))
	return acct.CredentialID
}

func TestCheckUnknownCredential(t *testing.T) {
	m, _ := newTestMeter(t)

	_, err := m.Check(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestCheckAtLimit(t *testing.T) {
	m, store := newTestMeter(t)
	id := seedAccount(t, store, 1000, 1000, models.PlanStarter)

	_, err := m.Check(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
}

func TestCheckUnlimitedPlan(t *testing.T) {
	m, store := newTestMeter(t)
	id := seedAccount(t, store, 1_000_000, models.UnlimitedUsage, models.PlanEnterprise)

	acct, err := m.Check(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, acct.Unlimited())
}

func TestCommitChargesOneCredit(t *testing.T) {
	m, store := newTestMeter(t)
	id := seedAccount(t, store, 0, 100, models.PlanFree)
	ctx := context.Background()

	_, err := m.Check(ctx, id)
	require.NoError(t, err)
	require.NoError(t, m.Commit(ctx, id))

	acct, err := m.Account(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), acct.Usage)
	assert.False(t, acct.LastUsed.IsZero())
}

func TestReleaseDoesNotCharge(t *testing.T) {
	m, store := newTestMeter(t)
	id := seedAccount(t, store, 99, 100, models.PlanFree)
	ctx := context.Background()

	_, err := m.Check(ctx, id)
	require.NoError(t, err)
	m.Release(id)

	acct, err := m.Account(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(99), acct.Usage)

	// The released credit is usable again.
	_, err = m.Check(ctx, id)
	assert.NoError(t, err)
}

func TestReservationBlocksParallelOverdraft(t *testing.T) {
	m, store := newTestMeter(t)
	id := seedAccount(t, store, 99, 100, models.PlanFree)
	ctx := context.Background()

	// One credit left: the first Check reserves it, the second is rejected
	// even though nothing has been committed yet.
	_, err := m.Check(ctx, id)
	require.NoError(t, err)

	_, err = m.Check(ctx, id)
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
}

func TestConcurrentChecksAdmitExactlyRemaining(t *testing.T) {
	const (
		remaining = 5
		attempts  = 40
	)

	m, store := newTestMeter(t)
	id := seedAccount(t, store, 95, 95+remaining, models.PlanFree)
	ctx := context.Background()

	var admitted, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Check(ctx, id); err == nil {
				admitted.Add(1)
				assert.NoError(t, m.Commit(ctx, id))
			} else {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(remaining), admitted.Load())
	assert.Equal(t, int64(attempts-remaining), rejected.Load())

	acct, err := m.Account(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), acct.Usage)
}

func TestCreateAccount(t *testing.T) {
	m, _ := newTestMeter(t)
	ctx := context.Background()

	acct, err := m.CreateAccount(ctx, models.PlanPro)
	require.NoError(t, err)
	assert.NotEmpty(t, acct.CredentialID)
	assert.Equal(t, int64(50000), acct.Limit)
	assert.Equal(t, int64(0), acct.Usage)

	fetched, err := m.Account(ctx, acct.CredentialID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, fetched.Plan)
}

func TestCreateAccountUnknownPlan(t *testing.T) {
	m, _ := newTestMeter(t)

	_, err := m.CreateAccount(context.Background(), models.Plan("gold"))
	assert.Error(t, err)
}

func TestSetPlanKeepsUsage(t *testing.T) {
	m, store := newTestMeter(t)
	id := seedAccount(t, store, 100, 100, models.PlanFree)
	ctx := context.Background()

	// At the limit on free.
	_, err := m.Check(ctx, id)
	require.ErrorIs(t, err, models.ErrQuotaExceeded)

	acct, err := m.SetPlan(ctx, id, models.PlanStarter)
	require.NoError(t, err)
	assert.Equal(t, int64(100), acct.Usage)
	assert.Equal(t, int64(5000), acct.Limit)

	// The upgrade reactivates the credential.
	_, err = m.Check(ctx, id)
	assert.NoError(t, err)
}

func TestPlanTableDefaults(t *testing.T) {
	plans := DefaultPlans()

	tests := []struct {
		plan  models.Plan
		limit int64
	}{
		{models.PlanFree, 100},
		{models.PlanStarter, 5000},
		{models.PlanPro, 50000},
		{models.PlanEnterprise, models.UnlimitedUsage},
	}
	for _, tt := range tests {
		limit, err := plans.LimitFor(tt.plan)
		require.NoError(t, err)
		assert.Equal(t, tt.limit, limit)
	}

	_, err := plans.LimitFor("platinum")
	assert.Error(t, err)
}
