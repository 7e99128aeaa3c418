package redisadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	"kdom/contexts/content-governance/governance-service/ports"
)

const (
	userKeyPrefix   = "kdom:users:"
	defaultUserTTL  = 5 * time.Minute
	userFieldRole   = "role"
	userFieldHandle = "username"
)

// CachedUserDirectory is a read-through cache over the authoritative user
// directory. Cache failures fall back to the source.
//
// Roles are owned by the identity service, not by governance. A role change
// made there is seen here once the cached profile expires, so a promotion or
// demotion takes effect within the configured TTL (USER_CACHE_TTL). Callers
// that learn of a change sooner can apply it at once with Invalidate.
type CachedUserDirectory struct {
	source ports.UserDirectory
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedUserDirectory(source ports.UserDirectory, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedUserDirectory {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &CachedUserDirectory{
		source: source,
		client: client,
		ttl:    ttl,
		logger: application.ResolveLogger(logger),
	}
}

func (d *CachedUserDirectory) GetRole(ctx context.Context, userID string) (entities.Role, error) {
	fields, err := d.lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	return entities.Role(fields[userFieldRole]), nil
}

func (d *CachedUserDirectory) GetUsername(ctx context.Context, userID string) (string, error) {
	fields, err := d.lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	return fields[userFieldHandle], nil
}

// Invalidate drops the cached profile so the next lookup reads the source.
func (d *CachedUserDirectory) Invalidate(ctx context.Context, userID string) error {
	return d.client.Del(ctx, userKeyPrefix+userID).Err()
}

func (d *CachedUserDirectory) lookup(ctx context.Context, userID string) (map[string]string, error) {
	key := userKeyPrefix + userID
	cached, err := d.client.HGetAll(ctx, key).Result()
	if err == nil && cached[userFieldRole] != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		d.logger.Warn("user cache read failed",
			"event", "redis_user_cache_read_failed",
			"module", "content-governance/governance-service",
			"layer", "adapter",
			"user_id", userID,
			"error", err.Error(),
		)
	}

	role, err := d.source.GetRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	username, err := d.source.GetUsername(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{
		userFieldRole:   string(role),
		userFieldHandle: username,
	}

	pipe := d.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, d.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		d.logger.Warn("user cache write failed",
			"event", "redis_user_cache_write_failed",
			"module", "content-governance/governance-service",
			"layer", "adapter",
			"user_id", userID,
			"error", err.Error(),
		)
	}
	return fields, nil
}

var _ ports.UserDirectory = (*CachedUserDirectory)(nil)
