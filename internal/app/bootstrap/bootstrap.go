package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	governanceservice "kdom/contexts/content-governance/governance-service"
	"kdom/contexts/content-governance/governance-service/adapters/events"
	"kdom/contexts/content-governance/governance-service/adapters/memory"
	metricsadapter "kdom/contexts/content-governance/governance-service/adapters/metrics"
	postgresadapter "kdom/contexts/content-governance/governance-service/adapters/postgres"
	redisadapter "kdom/contexts/content-governance/governance-service/adapters/redis"
	"kdom/contexts/content-governance/governance-service/application/workers"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	"kdom/contexts/content-governance/governance-service/ports"
	"kdom/internal/platform/config"
	"kdom/internal/platform/db"
	"kdom/internal/platform/httpserver"
	"kdom/internal/platform/messaging"
	redisclient "kdom/internal/platform/redis"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	relay    *workers.OutboxRelay
	interval time.Duration
	infra    infrastructure
	logger   *slog.Logger

	localBus          *messaging.LocalBus
	notificationTopic string
}

type WorkerApp struct {
	outboxRelay  workers.OutboxRelay
	pollInterval time.Duration
	infra        infrastructure
	logger       *slog.Logger
}

type infrastructure struct {
	postgres *db.Postgres
	redis    *redisclient.Client
	producer *messaging.KafkaProducer
}

func (i infrastructure) close() error {
	if i.producer != nil {
		i.producer.Close()
	}
	return errors.Join(i.redis.Close(), i.postgres.Close())
}

// BuildAPI wires the governance module. Without POSTGRES_DSN the API runs on
// the in-memory store and relays its own outbox in-process.
func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var infra infrastructure
	publisher, producer, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	infra.producer = producer

	redisClient, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		_ = infra.close()
		return nil, err
	}
	infra.redis = redisClient

	deps := governanceservice.Dependencies{
		Publisher:         publisher,
		Metrics:           metricsadapter.New(registry),
		BulkConcurrency:   cfg.BulkModerationConcurrency,
		DashboardWindow:   cfg.DashboardWindowDays,
		OutboxTopic:       cfg.OutboxTopic,
		NotificationTopic: cfg.NotificationTopic,
		OutboxBatchSize:   100,
		Logger:            logger,
	}

	inMemory := strings.TrimSpace(cfg.PostgresDSN) == ""
	if inMemory {
		store := memory.NewStore(memory.Seed{Users: devUsers(cfg.DevUsers)}, logger)
		deps.Items = store
		deps.Collaborations = store
		deps.Audit = store
		deps.Outbox = store
		deps.Users = store
		deps.Signals = store
		deps.SignalRecorder = store
		deps.Clock = store
		deps.IDGenerator = store
		logger.Warn("running governance on in-memory store",
			"event", "bootstrap_in_memory_store",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"dev_users", len(cfg.DevUsers),
		)
	} else {
		pg, err := db.Connect(ctx, cfg.PostgresDSN, cfg.Postgres, logger)
		if err != nil {
			_ = infra.close()
			return nil, err
		}
		infra.postgres = pg

		repo := postgresadapter.NewRepository(pg.DB, logger)
		if cfg.EnsureSchema {
			if err := repo.EnsureSchema(ctx); err != nil {
				_ = infra.close()
				return nil, err
			}
		}
		deps.Items = repo
		deps.Collaborations = repo
		deps.Audit = repo
		deps.Outbox = repo
		deps.Users = repo
		deps.Clock = postgresadapter.SystemClock{}
		deps.IDGenerator = postgresadapter.UUIDGenerator{}

		if redisClient == nil {
			// Signals stay process-local until Redis is configured.
			signals := memory.NewStore(memory.Seed{}, logger)
			deps.Signals = signals
			deps.SignalRecorder = signals
		}
	}

	if redisClient != nil {
		signals := redisadapter.NewActivitySignals(redisClient.Client, deps.Clock, logger)
		deps.Signals = signals
		deps.SignalRecorder = signals
		deps.Users = redisadapter.NewCachedUserDirectory(deps.Users, redisClient.Client, cfg.UserCacheTTL, logger)
	}

	deps.Notifier = events.BusNotifier{
		Publisher:   publisher,
		IDGenerator: deps.IDGenerator,
		Clock:       deps.Clock,
		Topic:       cfg.NotificationTopic,
		Logger:      logger,
	}

	module := governanceservice.NewModule(deps)
	app := &APIApp{
		server:            httpserver.New(module, registry, logger, normalizeAddr(cfg.HTTPPort)),
		interval:          cfg.WorkerPollInterval,
		infra:             infra,
		logger:            logger,
		notificationTopic: cfg.NotificationTopic,
	}
	if bus, ok := publisher.(*messaging.LocalBus); ok {
		app.localBus = bus
	}
	if inMemory {
		relay := module.Relay
		app.relay = &relay
	}
	return app, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	var infra infrastructure
	pg, err := db.Connect(ctx, cfg.PostgresDSN, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	infra.postgres = pg

	publisher, producer, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		_ = infra.close()
		return nil, err
	}
	infra.producer = producer

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		outboxRelay: workers.OutboxRelay{
			Outbox:            repo,
			Publisher:         publisher,
			Clock:             postgresadapter.SystemClock{},
			Topic:             cfg.OutboxTopic,
			NotificationTopic: cfg.NotificationTopic,
			BatchSize:         100,
			Logger:            logger,
		},
		pollInterval: cfg.WorkerPollInterval,
		infra:        infra,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"in_process_relay", a.relay != nil,
		)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if a.localBus != nil {
		if err := a.localBus.Subscribe(groupCtx, a.notificationTopic, "notification-log", a.logNotification); err != nil {
			return err
		}
	}
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if a.relay != nil {
		group.Go(func() error {
			return pollRelay(groupCtx, *a.relay, a.interval)
		})
	}
	return group.Wait()
}

// logNotification is the local delivery sink for notifications when no
// broker is configured.
func (a *APIApp) logNotification(_ context.Context, event ports.EventEnvelope) error {
	attributes, err := event.Attributes()
	if err != nil {
		return err
	}
	a.logger.Info("notification delivered",
		"event", "bootstrap_notification_delivered",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"user_id", event.PartitionKey,
		"notification_type", attributes["type"],
		"target_id", attributes["target_id"],
	)
	return nil
}

func (a *APIApp) Close() error {
	return a.infra.close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	return pollRelay(ctx, w.outboxRelay, w.pollInterval)
}

func (w *WorkerApp) Close() error {
	return w.infra.close()
}

func pollRelay(ctx context.Context, relay workers.OutboxRelay, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := relay.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// buildPublisher returns the franz-go producer when Kafka is enabled and the
// in-process bus otherwise.
func buildPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.EventPublisher, *messaging.KafkaProducer, error) {
	if cfg.KafkaEnabled {
		producer, err := messaging.NewKafkaProducer(ctx, cfg.KafkaBrokers, cfg.ServiceName, logger)
		if err != nil {
			return nil, nil, err
		}
		return producer, producer, nil
	}
	return messaging.NewLocalBus(logger), nil, nil
}

func devUsers(users []config.DevUser) []memory.User {
	seeded := make([]memory.User, 0, len(users))
	for _, user := range users {
		seeded = append(seeded, memory.User{
			UserID:   user.UserID,
			Username: user.Username,
			Role:     entities.Role(user.Role),
		})
	}
	return seeded
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
