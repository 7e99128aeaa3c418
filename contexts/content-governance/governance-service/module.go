package governanceservice

import (
	"log/slog"

	"kdom/contexts/content-governance/governance-service/adapters/events"
	httpadapter "kdom/contexts/content-governance/governance-service/adapters/http"
	"kdom/contexts/content-governance/governance-service/adapters/memory"
	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/application/commands"
	"kdom/contexts/content-governance/governance-service/application/queries"
	"kdom/contexts/content-governance/governance-service/application/workers"
	"kdom/contexts/content-governance/governance-service/ports"
)

// Module is the composition surface for content governance.
// Runtime wiring should consume Handler and Relay; Store is set only by
// NewInMemoryModule and exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Items          ports.ContentItemRepository
	Collaborations ports.CollaborationRepository
	Audit          ports.AuditRepository
	Outbox         ports.OutboxRepository
	Users          ports.UserDirectory
	Signals        ports.ActivitySignalSource
	SignalRecorder ports.ActivitySignalRecorder
	Notifier       ports.Notifier
	Publisher      ports.EventPublisher
	Metrics        ports.GovernanceMetrics
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator

	BulkConcurrency   int
	DashboardWindow   int
	OutboxTopic       string
	NotificationTopic string
	OutboxBatchSize   int
	Logger            *slog.Logger
}

// NewModule wires governance use cases against explicit ports.
func NewModule(deps Dependencies) Module {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = events.LogNotifier{Logger: deps.Logger}
	}
	gate := application.Gate{
		Users:  deps.Users,
		Audit:  deps.Audit,
		IDs:    deps.IDGenerator,
		Logger: deps.Logger,
	}

	moderate := commands.ModerateItemUseCase{
		Items:       deps.Items,
		Users:       deps.Users,
		Gate:        gate,
		Notifier:    notifier,
		Metrics:     deps.Metrics,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}

	handler := httpadapter.Handler{
		CreateItem: commands.CreateItemUseCase{
			Items:       deps.Items,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		ReparentItem: commands.ReparentItemUseCase{
			Items:       deps.Items,
			Gate:        gate,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		Moderate: moderate,
		BulkModerate: commands.BulkModerateUseCase{
			Moderation:  moderate,
			Gate:        gate,
			Metrics:     deps.Metrics,
			Clock:       deps.Clock,
			Concurrency: deps.BulkConcurrency,
			Logger:      deps.Logger,
		},
		SubmitRequest: commands.SubmitRequestUseCase{
			Items:          deps.Items,
			Collaborations: deps.Collaborations,
			Users:          deps.Users,
			Gate:           gate,
			Notifier:       notifier,
			Metrics:        deps.Metrics,
			Clock:          deps.Clock,
			IDGenerator:    deps.IDGenerator,
			Logger:         deps.Logger,
		},
		ReviewRequest: commands.ReviewRequestUseCase{
			Items:          deps.Items,
			Collaborations: deps.Collaborations,
			Users:          deps.Users,
			Gate:           gate,
			Notifier:       notifier,
			Metrics:        deps.Metrics,
			Clock:          deps.Clock,
			IDGenerator:    deps.IDGenerator,
			Logger:         deps.Logger,
		},
		RemoveCollaborator: commands.RemoveCollaboratorUseCase{
			Items:          deps.Items,
			Collaborations: deps.Collaborations,
			Gate:           gate,
			Notifier:       notifier,
			Metrics:        deps.Metrics,
			Clock:          deps.Clock,
			IDGenerator:    deps.IDGenerator,
			Logger:         deps.Logger,
		},
		RecordSignal: commands.RecordSignalUseCase{
			Items:    deps.Items,
			Recorder: deps.SignalRecorder,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
		},

		GetItem:      queries.GetItemUseCase{Items: deps.Items, Logger: deps.Logger},
		GetChildren:  queries.GetChildrenUseCase{Items: deps.Items, Logger: deps.Logger},
		GetSiblings:  queries.GetSiblingsUseCase{Items: deps.Items, Logger: deps.Logger},
		GetAncestors: queries.GetAncestorChainUseCase{Items: deps.Items, Logger: deps.Logger},
		Requests: queries.CollaborationRequestsUseCase{
			Items:          deps.Items,
			Collaborations: deps.Collaborations,
			Logger:         deps.Logger,
		},
		QueryAudit: queries.QueryAuditUseCase{
			Audit:  deps.Audit,
			Gate:   gate,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		LastAction: queries.LastActionUseCase{
			Audit:  deps.Audit,
			Gate:   gate,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		TrendingScore: queries.TrendingScoreUseCase{
			Items:   deps.Items,
			Signals: deps.Signals,
			Logger:  deps.Logger,
		},
		ListTrending: queries.ListTrendingUseCase{
			Items:   deps.Items,
			Signals: deps.Signals,
			Logger:  deps.Logger,
		},
		ProcessingTime: queries.AverageProcessingTimeUseCase{Items: deps.Items, Logger: deps.Logger},
		ModeratorActivity: queries.ModeratorActivityUseCase{
			Audit:  deps.Audit,
			Gate:   gate,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		Priority: queries.CalculatePriorityUseCase{Items: deps.Items, Clock: deps.Clock},
		Dashboard: queries.GetDashboardUseCase{
			Items:      deps.Items,
			Audit:      deps.Audit,
			Gate:       gate,
			Clock:      deps.Clock,
			WindowDays: deps.DashboardWindow,
			Logger:     deps.Logger,
		},
		Queue: queries.ModerationQueueUseCase{
			Items:  deps.Items,
			Gate:   gate,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		Logger: deps.Logger,
	}

	return Module{
		Handler: handler,
		Relay: workers.OutboxRelay{
			Outbox:            deps.Outbox,
			Publisher:         deps.Publisher,
			Clock:             deps.Clock,
			Topic:             deps.OutboxTopic,
			NotificationTopic: deps.NotificationTopic,
			BatchSize:         deps.OutboxBatchSize,
			Logger:            deps.Logger,
		},
	}
}

// NewInMemoryModule wires governance use cases against the in-memory store,
// which doubles as user directory, signal source, clock and id generator.
func NewInMemoryModule(seed memory.Seed, logger *slog.Logger) Module {
	store := memory.NewStore(seed, logger)
	module := NewModule(Dependencies{
		Items:          store,
		Collaborations: store,
		Audit:          store,
		Outbox:         store,
		Users:          store,
		Signals:        store,
		SignalRecorder: store,
		Clock:          store,
		IDGenerator:    store,
		Logger:         logger,
	})
	module.Store = store
	return module
}
