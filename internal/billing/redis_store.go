package billing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/ai-ready-data/internal/models"
)

const accountKeyPrefix = "account:"

// RedisStore keeps one hash per credential in Redis. It is the deployment
// Store; quota serialization still happens in the meter.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, credentialID string) (*models.UsageAccount, error) {
	fields, err := s.client.HGetAll(ctx, accountKeyPrefix+credentialID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if len(fields) == 0 {
		return nil, models.ErrInvalidCredential
	}

	acct := &models.UsageAccount{
		CredentialID: credentialID,
		Plan:         models.Plan(fields["plan"]),
	}
	if acct.Usage, err = strconv.ParseInt(fields["usage"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt usage for %s: %w", credentialID, err)
	}
	if acct.Limit, err = strconv.ParseInt(fields["limit"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt limit for %s: %w", credentialID, err)
	}
	if raw := fields["last_used"]; raw != "" {
		if acct.LastUsed, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, fmt.Errorf("corrupt last_used for %s: %w", credentialID, err)
		}
	}
	return acct, nil
}

func (s *RedisStore) IncrementUsage(ctx context.Context, credentialID string) error {
	key := accountKeyPrefix + credentialID
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "usage", 1)
	pipe.HSet(ctx, key, "last_used", time.Now().UTC().Format(time.RFC3339))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

func (s *RedisStore) SetPlan(ctx context.Context, credentialID string, plan models.Plan, limit int64) error {
	exists, err := s.client.Exists(ctx, accountKeyPrefix+credentialID).Result()
	if err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if exists == 0 {
		return models.ErrInvalidCredential
	}

	err = s.client.HSet(ctx, accountKeyPrefix+credentialID,
		"plan", string(plan),
		"limit", strconv.FormatInt(limit, 10),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	return nil
}

func (s *RedisStore) Create(ctx context.Context, account *models.UsageAccount) error {
	err := s.client.HSet(ctx, accountKeyPrefix+account.CredentialID,
		"usage", strconv.FormatInt(account.Usage, 10),
		"limit", strconv.FormatInt(account.Limit, 10),
		"plan", string(account.Plan),
		"last_used", "",
	).Err()
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}
