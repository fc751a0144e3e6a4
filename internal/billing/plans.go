// Package billing implements usage metering and plan enforcement. Every
// processing call is gated by a quota reservation and charged exactly one
// credit per document on success.
package billing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

// PlanSpec describes one billing tier.
type PlanSpec struct {
	// Limit is the document quota per billing cycle; models.UnlimitedUsage
	// disables the quota.
	Limit    int64 `yaml:"limit"`
	PriceUSD int   `yaml:"price_usd"`
}

// PlanTable maps plan names to their specs.
type PlanTable struct {
	specs map[models.Plan]PlanSpec
}

func defaultSpecs() map[models.Plan]PlanSpec {
	return map[models.Plan]PlanSpec{
		models.PlanFree:       {Limit: 100, PriceUSD: 0},
		models.PlanStarter:    {Limit: 5000, PriceUSD: 29},
		models.PlanPro:        {Limit: 50000, PriceUSD: 99},
		models.PlanEnterprise: {Limit: models.UnlimitedUsage, PriceUSD: 499},
	}
}

// DefaultPlans returns the built-in tier table.
func DefaultPlans() *PlanTable {
	return &PlanTable{specs: defaultSpecs()}
}

// LoadPlans reads tier overrides from a YAML file; plans absent from the
// file keep their defaults.
func LoadPlans(path string) (*PlanTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	overrides := make(map[models.Plan]PlanSpec)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}

	specs := defaultSpecs()
	for plan, spec := range overrides {
		if _, known := specs[plan]; !known {
			return nil, fmt.Errorf("unknown plan %q in %s", plan, path)
		}
		specs[plan] = spec
	}
	return &PlanTable{specs: specs}, nil
}

// LimitFor returns the quota for a plan.
func (t *PlanTable) LimitFor(plan models.Plan) (int64, error) {
	spec, ok := t.specs[plan]
	if !ok {
		return 0, fmt.Errorf("unknown plan: %s", plan)
	}
	return spec.Limit, nil
}
