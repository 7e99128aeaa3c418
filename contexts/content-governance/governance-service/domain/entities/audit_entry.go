package entities

import (
	"strings"
	"time"

	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
)

type AuditAction string

const (
	AuditActionCreate               AuditAction = "create"
	AuditActionReparent             AuditAction = "reparent"
	AuditActionApprove              AuditAction = "approve"
	AuditActionReject               AuditAction = "reject"
	AuditActionDelete               AuditAction = "delete"
	AuditActionForceDelete          AuditAction = "force_delete"
	AuditActionCollaborationRequest AuditAction = "collaboration_request"
	AuditActionCollaborationApprove AuditAction = "collaboration_approve"
	AuditActionCollaborationReject  AuditAction = "collaboration_reject"
	AuditActionCollaboratorRemove   AuditAction = "collaborator_remove"
	AuditActionAuthorizationDenied  AuditAction = "authorization_denied"
)

const (
	TargetTypeContentItem          = "content_item"
	TargetTypeCollaborationRequest = "collaboration_request"
)

// ModerationActions are the actions counted as moderator decisions.
var ModerationActions = []AuditAction{AuditActionApprove, AuditActionReject}

// AuditEntry is immutable once built. ActorID is nil for system events.
type AuditEntry struct {
	EntryID    string
	ActorID    *string
	Action     AuditAction
	TargetType string
	TargetID   string
	Details    string
	CreatedAt  time.Time
}

func NewAuditEntry(
	entryID string,
	actorID string,
	action AuditAction,
	targetType string,
	targetID string,
	details string,
	createdAt time.Time,
) (AuditEntry, error) {
	if strings.TrimSpace(entryID) == "" ||
		strings.TrimSpace(string(action)) == "" ||
		strings.TrimSpace(targetType) == "" ||
		strings.TrimSpace(targetID) == "" {
		return AuditEntry{}, domainerrors.ErrInvalidInput
	}
	entry := AuditEntry{
		EntryID:    entryID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  createdAt.UTC(),
	}
	if actor := strings.TrimSpace(actorID); actor != "" {
		entry.ActorID = &actor
	}
	return entry, nil
}

func (e AuditEntry) Actor() string {
	if e.ActorID == nil {
		return ""
	}
	return *e.ActorID
}

func IsModerationAction(action AuditAction) bool {
	return action == AuditActionApprove || action == AuditActionReject
}
