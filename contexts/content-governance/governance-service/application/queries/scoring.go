package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

const (
	maxWindowDays       = 365
	defaultTrendingSize = 20
	maxTrendingSize     = 100
)

type TrendingScoreUseCase struct {
	Items   ports.ContentItemRepository
	Signals ports.ActivitySignalSource
	Logger  *slog.Logger
}

func (u TrendingScoreUseCase) Execute(ctx context.Context, itemID string, windowDays int) (services.TrendingCandidate, error) {
	if err := validateWindow(windowDays); err != nil {
		return services.TrendingCandidate{}, err
	}
	item, err := loadLiveItem(ctx, u.Items, itemID)
	if err != nil {
		return services.TrendingCandidate{}, err
	}
	counts, err := loadActivityCounts(ctx, u.Signals, windowDays)
	if err != nil {
		logSignalFailure(u.Logger, err)
		return services.TrendingCandidate{}, err
	}
	itemCounts := counts[item.ItemID]
	return services.TrendingCandidate{
		ItemID:    item.ItemID,
		Title:     item.Title,
		Counts:    itemCounts,
		CreatedAt: item.CreatedAt,
		Score:     services.TrendingScore(itemCounts),
	}, nil
}

type ListTrendingQuery struct {
	WindowDays int
	Limit      int
	Category   string
}

// ListTrendingUseCase ranks approved items with any recent activity.
type ListTrendingUseCase struct {
	Items   ports.ContentItemRepository
	Signals ports.ActivitySignalSource
	Logger  *slog.Logger
}

func (u ListTrendingUseCase) Execute(ctx context.Context, query ListTrendingQuery) ([]services.TrendingCandidate, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := validateWindow(query.WindowDays); err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultTrendingSize
	}
	if limit > maxTrendingSize {
		limit = maxTrendingSize
	}

	counts, err := loadActivityCounts(ctx, u.Signals, query.WindowDays)
	if err != nil {
		logSignalFailure(u.Logger, err)
		return nil, err
	}
	if len(counts) == 0 {
		return []services.TrendingCandidate{}, nil
	}
	ids := make([]string, 0, len(counts))
	for itemID := range counts {
		ids = append(ids, itemID)
	}
	items, err := u.Items.ListItems(ctx, ports.ItemFilter{
		ItemIDs:  ids,
		Status:   entities.ModerationStatusApproved,
		Category: strings.ToLower(strings.TrimSpace(query.Category)),
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]services.TrendingCandidate, 0, len(items))
	for _, item := range items {
		if !item.IsApproved() {
			continue
		}
		candidates = append(candidates, services.TrendingCandidate{
			ItemID:    item.ItemID,
			Title:     item.Title,
			Counts:    counts[item.ItemID],
			CreatedAt: item.CreatedAt,
		})
	}
	ranked := services.RankTrending(candidates)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	logger.Info("trending list computed",
		"event", "governance_trending_computed",
		"module", "content-governance/governance-service",
		"layer", "application",
		"window_days", query.WindowDays,
		"candidates", len(candidates),
		"returned", len(ranked),
	)
	return ranked, nil
}

type AverageProcessingTimeUseCase struct {
	Items  ports.ContentItemRepository
	Logger *slog.Logger
}

// Execute ignores ids that no longer resolve and items still pending.
func (u AverageProcessingTimeUseCase) Execute(ctx context.Context, itemIDs []string) (time.Duration, int, error) {
	if len(itemIDs) == 0 {
		return 0, 0, nil
	}
	items, err := u.Items.ListItems(ctx, ports.ItemFilter{ItemIDs: itemIDs})
	if err != nil {
		return 0, 0, err
	}
	moderated := 0
	for _, item := range items {
		if item.ModeratedAt != nil {
			moderated++
		}
	}
	return services.AverageProcessingTime(items), moderated, nil
}

type ModeratorActivityUseCase struct {
	Audit  ports.AuditRepository
	Gate   application.Gate
	Clock  ports.Clock
	Logger *slog.Logger
}

type ModeratorActivityQuery struct {
	RequesterID string
	WindowDays  int
	Limit       int
}

// Execute is restricted to the dashboard audience since tallies expose
// moderator identities.
func (u ModeratorActivityUseCase) Execute(ctx context.Context, query ModeratorActivityQuery) ([]services.ModeratorTally, error) {
	if strings.TrimSpace(query.RequesterID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	windowDays, limit := query.WindowDays, query.Limit
	if err := validateWindow(windowDays); err != nil {
		return nil, err
	}
	now := application.ResolveNow(u.Clock)
	if err := u.Gate.Check(ctx, services.ActionViewDashboard, query.RequesterID, nil, "moderator_activity", "scoring", now); err != nil {
		return nil, err
	}
	since := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	entries, _, err := u.Audit.QueryAudit(ctx, ports.AuditFilter{
		Actions: entities.ModerationActions,
		From:    &since,
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Error("moderator activity query failed",
			"event", "governance_moderator_activity_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}
	return services.TallyModeratorActivity(entries, since, limit), nil
}

type CalculatePriorityUseCase struct {
	Items ports.ContentItemRepository
	Clock ports.Clock
}

func (u CalculatePriorityUseCase) Execute(ctx context.Context, itemID string) (entities.Priority, time.Duration, error) {
	item, err := loadLiveItem(ctx, u.Items, itemID)
	if err != nil {
		return "", 0, err
	}
	now := application.ResolveNow(u.Clock)
	return services.CalculatePriority(item.CreatedAt, now), now.Sub(item.CreatedAt), nil
}

// loadActivityCounts fetches the four signal kinds concurrently.
func loadActivityCounts(ctx context.Context, source ports.ActivitySignalSource, windowDays int) (map[string]services.ActivityCounts, error) {
	raw := make([]map[string]int, len(entities.AllSignalKinds))
	group, groupCtx := errgroup.WithContext(ctx)
	for index, kind := range entities.AllSignalKinds {
		group.Go(func() error {
			counts, err := source.RecentCounts(groupCtx, kind, windowDays)
			if err != nil {
				return err
			}
			raw[index] = counts
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]services.ActivityCounts)
	for index, kind := range entities.AllSignalKinds {
		for itemID, count := range raw[index] {
			counts := merged[itemID]
			switch kind {
			case entities.SignalPosts:
				counts.Posts += count
			case entities.SignalComments:
				counts.Comments += count
			case entities.SignalFollows:
				counts.Follows += count
			case entities.SignalEdits:
				counts.Edits += count
			}
			merged[itemID] = counts
		}
	}
	return merged, nil
}

func validateWindow(windowDays int) error {
	if windowDays < 1 || windowDays > maxWindowDays {
		return domainerrors.ErrInvalidWindow
	}
	return nil
}

func logSignalFailure(logger *slog.Logger, err error) {
	application.ResolveLogger(logger).Error("activity signal load failed",
		"event", "governance_signal_load_failed",
		"module", "content-governance/governance-service",
		"layer", "application",
		"error", err.Error(),
	)
}
