package billing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

func TestLoadPlansOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	content := "free:\n  limit: 250\n  price_usd: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	plans, err := LoadPlans(path)
	require.NoError(t, err)

	limit, err := plans.LimitFor(models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, int64(250), limit)

	// Plans absent from the file keep their defaults.
	limit, err = plans.LimitFor(models.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), limit)
}

func TestLoadPlansRejectsUnknownPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gold:\n  limit: 1\n"), 0644))

	_, err := LoadPlans(path)
	assert.Error(t, err)
}

func TestLoadPlansMissingFile(t *testing.T) {
	_, err := LoadPlans(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
