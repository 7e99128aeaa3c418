package redisadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	"kdom/contexts/content-governance/governance-service/ports"
)

const (
	signalKeyPrefix = "kdom:signals:"
	bucketLayout    = "20060102"
	// buckets outlive the widest scoring window by a day
	bucketRetention = 366 * 24 * time.Hour
)

// ActivitySignals stores per-item activity counts in one Redis hash per
// signal kind and UTC day: kdom:signals:{kind}:{yyyymmdd} -> {item_id: count}.
type ActivitySignals struct {
	client redis.UniversalClient
	clock  ports.Clock
	logger *slog.Logger
}

func NewActivitySignals(client redis.UniversalClient, clock ports.Clock, logger *slog.Logger) *ActivitySignals {
	return &ActivitySignals{
		client: client,
		clock:  clock,
		logger: application.ResolveLogger(logger),
	}
}

func (s *ActivitySignals) RecordSignal(ctx context.Context, kind entities.SignalKind, itemID string, at time.Time) error {
	key := bucketKey(kind, at)
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, itemID, 1)
	pipe.Expire(ctx, key, bucketRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("activity signal record failed",
			"event", "redis_signal_record_failed",
			"module", "content-governance/governance-service",
			"layer", "adapter",
			"item_id", itemID,
			"signal_kind", string(kind),
			"error", err.Error(),
		)
		return fmt.Errorf("record %s signal: %w", kind, err)
	}
	return nil
}

// RecentCounts sums the last windowDays daily buckets, today included.
func (s *ActivitySignals) RecentCounts(ctx context.Context, kind entities.SignalKind, windowDays int) (map[string]int, error) {
	now := application.ResolveNow(s.clock)
	pipe := s.client.Pipeline()
	commands := make([]*redis.MapStringStringCmd, 0, windowDays)
	for day := 0; day < windowDays; day++ {
		commands = append(commands, pipe.HGetAll(ctx, bucketKey(kind, now.AddDate(0, 0, -day))))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load %s signals: %w", kind, err)
	}

	counts := make(map[string]int)
	for _, cmd := range commands {
		values, err := cmd.Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("load %s signals: %w", kind, err)
		}
		for itemID, raw := range values {
			value, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			counts[itemID] += value
		}
	}
	return counts, nil
}

func bucketKey(kind entities.SignalKind, at time.Time) string {
	return signalKeyPrefix + string(kind) + ":" + at.UTC().Format(bucketLayout)
}

var (
	_ ports.ActivitySignalSource   = (*ActivitySignals)(nil)
	_ ports.ActivitySignalRecorder = (*ActivitySignals)(nil)
)
