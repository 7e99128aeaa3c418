package commands

import (
	"context"
	"log/slog"
	"time"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/ports"
)

const (
	eventItemCreated            = "kdom.item.created"
	eventItemReparented         = "kdom.item.reparented"
	eventItemApproved           = "kdom.item.approved"
	eventItemRejected           = "kdom.item.rejected"
	eventItemDeleted            = "kdom.item.deleted"
	eventCollaborationRequested = "kdom.collaboration.requested"
	eventCollaborationApproved  = "kdom.collaboration.approved"
	eventCollaborationRejected  = "kdom.collaboration.rejected"
	eventCollaboratorRemoved    = "kdom.collaborator.removed"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeConflict  = "conflict"
	outcomeDenied    = "denied"
	outcomeFailed    = "failed"
)

func buildEvent(
	ctx context.Context,
	ids ports.IDGenerator,
	eventType string,
	itemID string,
	actorID string,
	data map[string]string,
	now time.Time,
) (ports.GovernanceEvent, error) {
	eventID, err := ids.NewID(ctx)
	if err != nil {
		return ports.GovernanceEvent{}, err
	}
	if data == nil {
		data = map[string]string{}
	}
	data["item_id"] = itemID
	return ports.GovernanceEvent{
		EventID:      eventID,
		EventType:    eventType,
		PartitionKey: itemID,
		ActorID:      actorID,
		Data:         data,
		OccurredAt:   now,
	}, nil
}

// buildNotificationEvent turns a notification into an outbox event so it is
// only delivered if the surrounding mutation commits.
func buildNotificationEvent(ctx context.Context, ids ports.IDGenerator, notification ports.Notification, now time.Time) (ports.GovernanceEvent, error) {
	eventID, err := ids.NewID(ctx)
	if err != nil {
		return ports.GovernanceEvent{}, err
	}
	return ports.GovernanceEvent{
		EventID:      eventID,
		EventType:    ports.EventNotificationRequested,
		PartitionKey: notification.UserID,
		ActorID:      notification.TriggeredBy,
		Data:         ports.NotificationData(notification),
		OccurredAt:   now,
	}, nil
}

func notify(ctx context.Context, notifier ports.Notifier, logger *slog.Logger, notification ports.Notification) {
	if notifier == nil || notification.UserID == "" {
		return
	}
	if err := notifier.Notify(ctx, notification); err != nil {
		application.ResolveLogger(logger).Warn("notification delivery failed",
			"event", "governance_notification_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"user_id", notification.UserID,
			"notification_type", notification.Type,
			"target_id", notification.TargetID,
			"error", err.Error(),
		)
	}
}

func displayName(ctx context.Context, users ports.UserDirectory, userID string) string {
	if users == nil {
		return userID
	}
	name, err := users.GetUsername(ctx, userID)
	if err != nil || name == "" {
		return userID
	}
	return name
}
