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

type Dashboard struct {
	ModeratorID           string
	WindowDays            int
	PendingCount          int
	PriorityCounts        map[entities.Priority]int
	Queue                 []services.QueueEntry
	RecentActions         []entities.AuditEntry
	Activity              services.ModeratorTally
	AverageProcessingTime time.Duration
	GeneratedAt           time.Time
}

// GetDashboardUseCase aggregates the moderation queue, recent audit history
// and the caller's own decision counts over the window.
type GetDashboardUseCase struct {
	Items       ports.ContentItemRepository
	Audit       ports.AuditRepository
	Gate        application.Gate
	Clock       ports.Clock
	WindowDays  int
	QueueLimit  int
	RecentLimit int
	Logger      *slog.Logger
}

func (u GetDashboardUseCase) Execute(ctx context.Context, moderatorID string) (Dashboard, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(moderatorID) == "" {
		return Dashboard{}, domainerrors.ErrInvalidInput
	}
	now := application.ResolveNow(u.Clock)
	if err := u.Gate.Check(ctx, services.ActionViewDashboard, moderatorID, nil, "dashboard", moderatorID, now); err != nil {
		return Dashboard{}, err
	}
	windowDays := u.WindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	since := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	var (
		pending   []entities.ContentItem
		moderated []entities.ContentItem
		recent    []entities.AuditEntry
		decisions []entities.AuditEntry
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		pending, err = u.Items.ListItems(groupCtx, ports.ItemFilter{Status: entities.ModerationStatusPending})
		return err
	})
	group.Go(func() error {
		var err error
		moderated, err = u.Items.ListItems(groupCtx, ports.ItemFilter{ModeratedSince: &since})
		return err
	})
	group.Go(func() error {
		var err error
		recent, _, err = u.Audit.QueryAudit(groupCtx, ports.AuditFilter{Limit: u.recentLimit()})
		return err
	})
	group.Go(func() error {
		var err error
		decisions, _, err = u.Audit.QueryAudit(groupCtx, ports.AuditFilter{
			ActorID: moderatorID,
			Actions: entities.ModerationActions,
			From:    &since,
		})
		return err
	})
	if err := group.Wait(); err != nil {
		logger.Error("dashboard aggregation failed",
			"event", "governance_dashboard_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"moderator_id", moderatorID,
			"error", err.Error(),
		)
		return Dashboard{}, err
	}

	queue := services.BuildModerationQueue(pending, now)
	activity := services.ModeratorTally{ModeratorID: moderatorID}
	if tallies := services.TallyModeratorActivity(decisions, since, 1); len(tallies) == 1 {
		activity = tallies[0]
	}

	dashboard := Dashboard{
		ModeratorID:           moderatorID,
		WindowDays:            windowDays,
		PendingCount:          len(queue),
		PriorityCounts:        services.PriorityBreakdown(queue),
		Queue:                 truncateQueue(queue, u.queueLimit()),
		RecentActions:         recent,
		Activity:              activity,
		AverageProcessingTime: services.AverageProcessingTime(moderated),
		GeneratedAt:           now,
	}
	logger.Info("dashboard built",
		"event", "governance_dashboard_built",
		"module", "content-governance/governance-service",
		"layer", "application",
		"moderator_id", moderatorID,
		"pending_count", dashboard.PendingCount,
	)
	return dashboard, nil
}

func (u GetDashboardUseCase) queueLimit() int {
	if u.QueueLimit <= 0 {
		return 25
	}
	return u.QueueLimit
}

func (u GetDashboardUseCase) recentLimit() int {
	if u.RecentLimit <= 0 {
		return 10
	}
	return u.RecentLimit
}

// ModerationQueueUseCase lists pending items oldest-urgent first.
type ModerationQueueUseCase struct {
	Items  ports.ContentItemRepository
	Gate   application.Gate
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u ModerationQueueUseCase) Execute(ctx context.Context, moderatorID string, limit int) ([]services.QueueEntry, error) {
	now := application.ResolveNow(u.Clock)
	if err := u.Gate.Check(ctx, services.ActionViewDashboard, moderatorID, nil, "queue", moderatorID, now); err != nil {
		return nil, err
	}
	pending, err := u.Items.ListItems(ctx, ports.ItemFilter{Status: entities.ModerationStatusPending})
	if err != nil {
		return nil, err
	}
	return truncateQueue(services.BuildModerationQueue(pending, now), limit), nil
}

func truncateQueue(queue []services.QueueEntry, limit int) []services.QueueEntry {
	if limit > 0 && len(queue) > limit {
		return queue[:limit]
	}
	return queue
}
