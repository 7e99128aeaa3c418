package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/ports"
)

const (
	defaultGovernanceTopic   = "kdom.governance.events"
	defaultNotificationTopic = "kdom.notifications"
)

// OutboxRelay publishes governance events that were committed with their
// state change. A row is marked sent only after the publish succeeded, so
// delivery is at-least-once.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string

	// NotificationTopic receives committed notification events.
	NotificationTopic string
	BatchSize         int
	Logger            *slog.Logger
}

func (r OutboxRelay) topicFor(eventType string, governanceTopic string) string {
	if eventType != ports.EventNotificationRequested {
		return governanceTopic
	}
	if r.NotificationTopic != "" {
		return r.NotificationTopic
	}
	return defaultNotificationTopic
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	topic := r.Topic
	if topic == "" {
		topic = defaultGovernanceTopic
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "governance_outbox_list_failed",
			"module", "content-governance/governance-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := application.ResolveNow(r.Clock)
	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload decode failed",
				"event", "governance_outbox_decode_failed",
				"module", "content-governance/governance-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := envelope.Validate(); err != nil {
			logger.Error("outbox envelope invalid",
				"event", "governance_outbox_envelope_invalid",
				"module", "content-governance/governance-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}

		if err := r.Publisher.Publish(ctx, r.topicFor(envelope.EventType, topic), envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "governance_outbox_publish_failed",
				"module", "content-governance/governance-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxSent(ctx, message.OutboxID, now); err != nil {
			logger.Error("outbox mark sent failed",
				"event", "governance_outbox_mark_sent_failed",
				"module", "content-governance/governance-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "governance_outbox_relay_completed",
			"module", "content-governance/governance-service",
			"layer", "worker",
			"sent_count", len(pending),
		)
	}
	return nil
}
