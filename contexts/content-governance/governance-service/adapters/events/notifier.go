package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "kdom/contexts/content-governance/governance-service/application"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/ports"
	contractsv1 "kdom/contracts/gen/events/v1"
)

const DefaultNotificationTopic = "kdom.notifications"

// BusNotifier hands user notifications to the notification service over the
// event bus, partitioned by recipient.
type BusNotifier struct {
	Publisher   ports.EventPublisher
	IDGenerator ports.IDGenerator
	Clock       ports.Clock
	Topic       string
	Logger      *slog.Logger
}

func (n BusNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	logger := application.ResolveLogger(n.Logger)
	if strings.TrimSpace(notification.UserID) == "" || strings.TrimSpace(notification.Type) == "" {
		return domainerrors.ErrInvalidInput
	}
	eventID, err := n.IDGenerator.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ports.NotificationData(notification))
	if err != nil {
		return err
	}

	topic := n.Topic
	if topic == "" {
		topic = DefaultNotificationTopic
	}
	envelope := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        ports.EventNotificationRequested,
		OccurredAt:       application.ResolveNow(n.Clock).UTC().Truncate(time.Millisecond),
		SourceService:    ports.SourceService,
		SchemaVersion:    contractsv1.CurrentSchemaVersion,
		PartitionKeyPath: "user_id",
		PartitionKey:     notification.UserID,
		Data:             data,
	}
	if err := n.Publisher.Publish(ctx, topic, envelope); err != nil {
		logger.Error("notification publish failed",
			"event", "governance_notification_publish_failed",
			"module", "content-governance/governance-service",
			"layer", "adapter",
			"user_id", notification.UserID,
			"notification_type", notification.Type,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

// LogNotifier only logs; used when no event bus is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, notification ports.Notification) error {
	application.ResolveLogger(n.Logger).Info("notification emitted",
		"event", "governance_notification_logged",
		"module", "content-governance/governance-service",
		"layer", "adapter",
		"user_id", notification.UserID,
		"notification_type", notification.Type,
		"target_id", notification.TargetID,
	)
	return nil
}

var (
	_ ports.Notifier = BusNotifier{}
	_ ports.Notifier = LogNotifier{}
)
