package ports

import (
	"encoding/json"
	"time"

	contractsv1 "kdom/contracts/gen/events/v1"
)

const (
	SourceService = "kdom-governance-service"

	// EventNotificationRequested carries a user notification. Outbox rows of
	// this type are partitioned by recipient and relayed to the notification
	// topic.
	EventNotificationRequested = "kdom.notification.requested"
)

// NotificationData is the flat attribute set of a notification event.
func NotificationData(n Notification) map[string]string {
	return map[string]string{
		"user_id":      n.UserID,
		"type":         n.Type,
		"message":      n.Message,
		"target_type":  n.TargetType,
		"target_id":    n.TargetID,
		"triggered_by": n.TriggeredBy,
	}
}

// NewEventEnvelope wraps a governance event in the canonical envelope,
// partitioned by content item id, or by user id for notifications.
func NewEventEnvelope(event GovernanceEvent) (EventEnvelope, error) {
	data := make(map[string]string, len(event.Data)+1)
	for key, value := range event.Data {
		data[key] = value
	}
	if event.ActorID != "" {
		data["actor_id"] = event.ActorID
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return EventEnvelope{}, err
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	keyPath := "item_id"
	if event.EventType == EventNotificationRequested {
		keyPath = "user_id"
	}
	return EventEnvelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    SourceService,
		SchemaVersion:    contractsv1.CurrentSchemaVersion,
		PartitionKeyPath: keyPath,
		PartitionKey:     event.PartitionKey,
		Data:             raw,
	}, nil
}
