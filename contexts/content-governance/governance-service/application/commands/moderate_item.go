package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

type ModerationDecision string

const (
	DecisionApprove         ModerationDecision = "approve"
	DecisionReject          ModerationDecision = "reject"
	DecisionRejectAndDelete ModerationDecision = "reject_and_delete"
	DecisionForceDelete     ModerationDecision = "force_delete"
)

type ModerationResult struct {
	Item    entities.ContentItem
	Removed bool
}

// ModerateItemUseCase owns the item lifecycle: pending -> approved,
// pending -> rejected (optionally removed), any -> removed by an admin.
// Approve and reject rely on the repository's compare-and-set on pending, so
// of two concurrent moderators exactly one wins and the other gets
// ErrAlreadyModerated.
type ModerateItemUseCase struct {
	Items       ports.ContentItemRepository
	Users       ports.UserDirectory
	Gate        application.Gate
	Notifier    ports.Notifier
	Metrics     ports.GovernanceMetrics
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u ModerateItemUseCase) Approve(ctx context.Context, itemID string, moderatorID string) (ModerationResult, error) {
	return u.decide(ctx, DecisionApprove, itemID, moderatorID, "")
}

func (u ModerateItemUseCase) Reject(ctx context.Context, itemID string, reason string, moderatorID string) (ModerationResult, error) {
	return u.decide(ctx, DecisionReject, itemID, moderatorID, reason)
}

// RejectAndDelete writes Reject then Delete audit entries so the rejection
// reason survives the physical removal.
func (u ModerateItemUseCase) RejectAndDelete(ctx context.Context, itemID string, reason string, moderatorID string) (ModerationResult, error) {
	return u.decide(ctx, DecisionRejectAndDelete, itemID, moderatorID, reason)
}

// ForceDelete is admin-only and valid from any state. The owner notification
// is committed with the removal and ordered ahead of the deleted event.
func (u ModerateItemUseCase) ForceDelete(ctx context.Context, itemID string, requesterID string, reason string) (ModerationResult, error) {
	return u.decide(ctx, DecisionForceDelete, itemID, requesterID, reason)
}

// Execute dispatches on the decision; used by the bulk path.
func (u ModerateItemUseCase) Execute(ctx context.Context, decision ModerationDecision, itemID string, moderatorID string, reason string) (ModerationResult, error) {
	switch decision {
	case DecisionApprove, DecisionReject, DecisionRejectAndDelete, DecisionForceDelete:
		return u.decide(ctx, decision, itemID, moderatorID, reason)
	default:
		return ModerationResult{}, domainerrors.ErrInvalidBulkAction
	}
}

func (u ModerateItemUseCase) decide(
	ctx context.Context,
	decision ModerationDecision,
	itemID string,
	actorID string,
	reason string,
) (ModerationResult, error) {
	logger := application.ResolveLogger(u.Logger)
	itemID = strings.TrimSpace(itemID)
	actorID = strings.TrimSpace(actorID)
	reason = strings.TrimSpace(reason)
	if itemID == "" || actorID == "" {
		return ModerationResult{}, domainerrors.ErrInvalidInput
	}
	if decision != DecisionApprove && reason == "" {
		return ModerationResult{}, domainerrors.ErrReasonRequired
	}
	now := application.ResolveNow(u.Clock)

	logger.Info("moderation decision started",
		"event", "governance_moderation_started",
		"module", "content-governance/governance-service",
		"layer", "application",
		"decision", string(decision),
		"item_id", itemID,
		"actor_id", actorID,
	)

	action := services.ActionModerate
	if decision == DecisionForceDelete {
		action = services.ActionForceDelete
	}
	if err := u.Gate.Check(ctx, action, actorID, nil, entities.TargetTypeContentItem, itemID, now); err != nil {
		u.observe(decision, outcomeDenied)
		return ModerationResult{}, err
	}

	item, err := u.Items.GetItem(ctx, itemID)
	if err != nil {
		u.observe(decision, outcomeFailed)
		return ModerationResult{}, err
	}
	if item.Deleted {
		u.observe(decision, outcomeFailed)
		return ModerationResult{}, domainerrors.ErrItemNotFound
	}
	if decision != DecisionForceDelete && item.Status != entities.ModerationStatusPending {
		u.observe(decision, outcomeConflict)
		return ModerationResult{}, domainerrors.ErrAlreadyModerated
	}

	mutation, err := u.buildMutation(ctx, decision, item, actorID, reason, now)
	if err != nil {
		u.observe(decision, outcomeFailed)
		return ModerationResult{}, err
	}

	updated, err := u.Items.ApplyModeration(ctx, mutation)
	if err != nil {
		outcome := outcomeFailed
		if errors.Is(err, domainerrors.ErrAlreadyModerated) {
			outcome = outcomeConflict
		}
		u.observe(decision, outcome)
		logger.Warn("moderation decision not applied",
			"event", "governance_moderation_apply_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"decision", string(decision),
			"item_id", itemID,
			"actor_id", actorID,
			"error", err.Error(),
		)
		return ModerationResult{}, err
	}

	switch decision {
	case DecisionApprove:
		notify(ctx, u.Notifier, u.Logger, ports.Notification{
			UserID:      item.OwnerID,
			Type:        "kdom_approved",
			Message:     fmt.Sprintf("Your K-Dom %q was approved", item.Title),
			TargetType:  entities.TargetTypeContentItem,
			TargetID:    item.ItemID,
			TriggeredBy: actorID,
		})
	case DecisionReject, DecisionRejectAndDelete:
		notify(ctx, u.Notifier, u.Logger, ports.Notification{
			UserID:      item.OwnerID,
			Type:        "kdom_rejected",
			Message:     fmt.Sprintf("Your K-Dom %q was rejected: %s", item.Title, reason),
			TargetType:  entities.TargetTypeContentItem,
			TargetID:    item.ItemID,
			TriggeredBy: actorID,
		})
	}

	u.observe(decision, outcomeSucceeded)
	logger.Info("moderation decision applied",
		"event", "governance_moderation_applied",
		"module", "content-governance/governance-service",
		"layer", "application",
		"decision", string(decision),
		"item_id", itemID,
		"actor_id", actorID,
		"status", string(updated.Status),
		"removed", mutation.Remove,
	)
	return ModerationResult{Item: updated, Removed: mutation.Remove}, nil
}

func (u ModerateItemUseCase) buildMutation(
	ctx context.Context,
	decision ModerationDecision,
	item entities.ContentItem,
	actorID string,
	reason string,
	now time.Time,
) (ports.ModerationMutation, error) {
	mutation := ports.ModerationMutation{
		ItemID:         item.ItemID,
		ExpectedStatus: entities.ModerationStatusPending,
		ModeratedBy:    actorID,
		ModeratedAt:    now,
	}

	type decisionRecord struct {
		action  entities.AuditAction
		details string
		event   string
	}
	var records []decisionRecord
	switch decision {
	case DecisionApprove:
		mutation.Status = entities.ModerationStatusApproved
		records = []decisionRecord{{entities.AuditActionApprove, item.Title, eventItemApproved}}
	case DecisionReject:
		mutation.Status = entities.ModerationStatusRejected
		mutation.RejectionReason = reason
		records = []decisionRecord{{entities.AuditActionReject, reason, eventItemRejected}}
	case DecisionRejectAndDelete:
		mutation.Status = entities.ModerationStatusRejected
		mutation.RejectionReason = reason
		mutation.Remove = true
		records = []decisionRecord{
			{entities.AuditActionReject, reason, eventItemRejected},
			{entities.AuditActionDelete, "removed after rejection: " + reason, eventItemDeleted},
		}
	case DecisionForceDelete:
		mutation.ExpectedStatus = ""
		mutation.Remove = true
		records = []decisionRecord{{entities.AuditActionForceDelete, reason, eventItemDeleted}}

		notice, err := buildNotificationEvent(ctx, u.IDGenerator, ports.Notification{
			UserID:      item.OwnerID,
			Type:        "kdom_force_deleted",
			Message:     fmt.Sprintf("Your K-Dom %q was removed by %s: %s", item.Title, displayName(ctx, u.Users, actorID), reason),
			TargetType:  entities.TargetTypeContentItem,
			TargetID:    item.ItemID,
			TriggeredBy: actorID,
		}, now)
		if err != nil {
			return ports.ModerationMutation{}, err
		}
		mutation.Events = append(mutation.Events, notice)
	}

	for _, record := range records {
		audit, err := application.BuildAudit(ctx, u.IDGenerator, actorID, record.action, entities.TargetTypeContentItem, item.ItemID, record.details, now)
		if err != nil {
			return ports.ModerationMutation{}, err
		}
		event, err := buildEvent(ctx, u.IDGenerator, record.event, item.ItemID, actorID, map[string]string{
			"owner_id": item.OwnerID,
			"action":   string(record.action),
			"reason":   reason,
		}, now)
		if err != nil {
			return ports.ModerationMutation{}, err
		}
		mutation.Audit = append(mutation.Audit, audit)
		mutation.Events = append(mutation.Events, event)
	}
	return mutation, nil
}

func (u ModerateItemUseCase) observe(decision ModerationDecision, outcome string) {
	if u.Metrics != nil {
		u.Metrics.ObserveModeration(string(decision), outcome)
	}
}
