package models

import "time"

// Plan is a named usage tier with an associated quota limit.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// UnlimitedUsage is the limit sentinel for plans without a quota.
const UnlimitedUsage int64 = -1

// UsageAccount is the per-credential billing state. Usage only ever grows by
// successful, completed processing calls, exactly 1 per document.
type UsageAccount struct {
	CredentialID string    `json:"credential_id"`
	Usage        int64     `json:"usage"`
	Limit        int64     `json:"limit"`
	Plan         Plan      `json:"plan"`
	LastUsed     time.Time `json:"last_used,omitempty"`
}

// Unlimited reports whether the account's plan carries no quota.
func (a *UsageAccount) Unlimited() bool {
	return a.Limit == UnlimitedUsage
}

// Remaining returns the credits left before the account is limited.
func (a *UsageAccount) Remaining() int64 {
	if a.Unlimited() {
		return UnlimitedUsage
	}
	if a.Usage >= a.Limit {
		return 0
	}
	return a.Limit - a.Usage
}
