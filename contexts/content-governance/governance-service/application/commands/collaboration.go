package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

type SubmitRequestCommand struct {
	ItemID  string
	UserID  string
	Message string
}

type SubmitRequestUseCase struct {
	Items          ports.ContentItemRepository
	Collaborations ports.CollaborationRepository
	Users          ports.UserDirectory
	Gate           application.Gate
	Notifier       ports.Notifier
	Metrics        ports.GovernanceMetrics
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

// Execute opens a pending request. The owner, existing collaborators and
// users with a pending request for the same item get a conflict.
func (u SubmitRequestUseCase) Execute(ctx context.Context, cmd SubmitRequestCommand) (entities.CollaborationRequest, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.ItemID) == "" || strings.TrimSpace(cmd.UserID) == "" {
		return entities.CollaborationRequest{}, domainerrors.ErrInvalidInput
	}
	now := application.ResolveNow(u.Clock)

	item, err := u.Items.GetItem(ctx, cmd.ItemID)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	if item.Deleted {
		return entities.CollaborationRequest{}, domainerrors.ErrItemNotFound
	}
	if !item.IsApproved() {
		return entities.CollaborationRequest{}, domainerrors.ErrItemNotApproved
	}
	if item.IsOwner(cmd.UserID) {
		return entities.CollaborationRequest{}, domainerrors.ErrOwnerCannotRequest
	}
	if item.HasCollaborator(cmd.UserID) {
		return entities.CollaborationRequest{}, domainerrors.ErrAlreadyCollaborator
	}
	if err := u.Gate.Check(ctx, services.ActionRequestCollaboration, cmd.UserID, &item, entities.TargetTypeContentItem, item.ItemID, now); err != nil {
		return entities.CollaborationRequest{}, err
	}

	requestID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	request, err := entities.NewCollaborationRequest(requestID, item.ItemID, cmd.UserID, cmd.Message, now)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	audit, err := application.BuildAudit(ctx, u.IDGenerator, cmd.UserID, entities.AuditActionCollaborationRequest, entities.TargetTypeCollaborationRequest, request.RequestID,
		"item="+item.ItemID, now)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	event, err := buildEvent(ctx, u.IDGenerator, eventCollaborationRequested, item.ItemID, cmd.UserID, map[string]string{
		"request_id":   request.RequestID,
		"requester_id": cmd.UserID,
	}, now)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}

	if err := u.Collaborations.CreateRequest(ctx, request, audit, event); err != nil {
		u.observe("submit", err)
		logger.Warn("collaboration request not created",
			"event", "governance_collaboration_request_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"item_id", item.ItemID,
			"user_id", cmd.UserID,
			"error", err.Error(),
		)
		return entities.CollaborationRequest{}, err
	}
	u.observe("submit", nil)

	notify(ctx, u.Notifier, u.Logger, ports.Notification{
		UserID:      item.OwnerID,
		Type:        "collaboration_requested",
		Message:     fmt.Sprintf("%s asked to collaborate on %q", displayName(ctx, u.Users, cmd.UserID), item.Title),
		TargetType:  entities.TargetTypeCollaborationRequest,
		TargetID:    request.RequestID,
		TriggeredBy: cmd.UserID,
	})

	logger.Info("collaboration request created",
		"event", "governance_collaboration_requested",
		"module", "content-governance/governance-service",
		"layer", "application",
		"request_id", request.RequestID,
		"item_id", item.ItemID,
		"user_id", cmd.UserID,
	)
	return request, nil
}

func (u SubmitRequestUseCase) observe(action string, err error) {
	observeCollaboration(u.Metrics, action, err)
}

type ReviewRequestCommand struct {
	ItemID     string
	RequestID  string
	ReviewerID string
	Reason     string
}

// ReviewRequestUseCase transitions a pending request once. Approval adds the
// requester to the collaborator set with set semantics inside the same
// store transaction, so repeated or concurrent approvals never duplicate.
type ReviewRequestUseCase struct {
	Items          ports.ContentItemRepository
	Collaborations ports.CollaborationRepository
	Users          ports.UserDirectory
	Gate           application.Gate
	Notifier       ports.Notifier
	Metrics        ports.GovernanceMetrics
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

func (u ReviewRequestUseCase) Approve(ctx context.Context, cmd ReviewRequestCommand) (entities.CollaborationRequest, error) {
	return u.review(ctx, cmd, entities.RequestStatusApproved)
}

func (u ReviewRequestUseCase) Reject(ctx context.Context, cmd ReviewRequestCommand) (entities.CollaborationRequest, error) {
	return u.review(ctx, cmd, entities.RequestStatusRejected)
}

func (u ReviewRequestUseCase) review(ctx context.Context, cmd ReviewRequestCommand, status entities.RequestStatus) (entities.CollaborationRequest, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.ItemID) == "" ||
		strings.TrimSpace(cmd.RequestID) == "" ||
		strings.TrimSpace(cmd.ReviewerID) == "" {
		return entities.CollaborationRequest{}, domainerrors.ErrInvalidInput
	}
	now := application.ResolveNow(u.Clock)
	action := "approve"
	auditAction := entities.AuditActionCollaborationApprove
	eventType := eventCollaborationApproved
	if status == entities.RequestStatusRejected {
		action = "reject"
		auditAction = entities.AuditActionCollaborationReject
		eventType = eventCollaborationRejected
	}

	item, err := u.Items.GetItem(ctx, cmd.ItemID)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	if item.Deleted {
		return entities.CollaborationRequest{}, domainerrors.ErrItemNotFound
	}
	if err := u.Gate.Check(ctx, services.ActionReviewCollaboration, cmd.ReviewerID, &item, entities.TargetTypeCollaborationRequest, cmd.RequestID, now); err != nil {
		u.observe(action, err)
		return entities.CollaborationRequest{}, err
	}

	request, err := u.Collaborations.GetRequest(ctx, cmd.RequestID)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	if request.ItemID != item.ItemID {
		return entities.CollaborationRequest{}, domainerrors.ErrRequestNotFound
	}
	if !request.IsPending() {
		u.observe(action, domainerrors.ErrRequestAlreadyReviewed)
		return entities.CollaborationRequest{}, domainerrors.ErrRequestAlreadyReviewed
	}

	details := "requester=" + request.RequesterID
	if status == entities.RequestStatusRejected && strings.TrimSpace(cmd.Reason) != "" {
		details += " reason=" + strings.TrimSpace(cmd.Reason)
	}
	audit, err := application.BuildAudit(ctx, u.IDGenerator, cmd.ReviewerID, auditAction, entities.TargetTypeCollaborationRequest, request.RequestID, details, now)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	event, err := buildEvent(ctx, u.IDGenerator, eventType, item.ItemID, cmd.ReviewerID, map[string]string{
		"request_id":   request.RequestID,
		"requester_id": request.RequesterID,
	}, now)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}

	reviewed, err := u.Collaborations.ReviewRequest(ctx, ports.RequestReview{
		RequestID:       request.RequestID,
		ItemID:          item.ItemID,
		Status:          status,
		ReviewerID:      cmd.ReviewerID,
		RejectionReason: strings.TrimSpace(cmd.Reason),
		ReviewedAt:      now,
		Audit:           audit,
		Event:           event,
	})
	if err != nil {
		u.observe(action, err)
		logger.Warn("collaboration review not applied",
			"event", "governance_collaboration_review_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"request_id", request.RequestID,
			"item_id", item.ItemID,
			"error", err.Error(),
		)
		return entities.CollaborationRequest{}, err
	}
	u.observe(action, nil)

	message := fmt.Sprintf("Your request to collaborate on %q was approved", item.Title)
	notificationType := "collaboration_approved"
	if status == entities.RequestStatusRejected {
		message = fmt.Sprintf("Your request to collaborate on %q was declined", item.Title)
		if reviewed.RejectionReason != "" {
			message += ": " + reviewed.RejectionReason
		}
		notificationType = "collaboration_rejected"
	}
	notify(ctx, u.Notifier, u.Logger, ports.Notification{
		UserID:      request.RequesterID,
		Type:        notificationType,
		Message:     message,
		TargetType:  entities.TargetTypeContentItem,
		TargetID:    item.ItemID,
		TriggeredBy: cmd.ReviewerID,
	})

	logger.Info("collaboration request reviewed",
		"event", "governance_collaboration_reviewed",
		"module", "content-governance/governance-service",
		"layer", "application",
		"request_id", reviewed.RequestID,
		"item_id", item.ItemID,
		"status", string(reviewed.Status),
		"reviewer_id", cmd.ReviewerID,
	)
	return reviewed, nil
}

func (u ReviewRequestUseCase) observe(action string, err error) {
	observeCollaboration(u.Metrics, action, err)
}

type RemoveCollaboratorCommand struct {
	ItemID       string
	OwnerID      string
	TargetUserID string
}

type RemoveCollaboratorUseCase struct {
	Items          ports.ContentItemRepository
	Collaborations ports.CollaborationRepository
	Gate           application.Gate
	Notifier       ports.Notifier
	Metrics        ports.GovernanceMetrics
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

func (u RemoveCollaboratorUseCase) Execute(ctx context.Context, cmd RemoveCollaboratorCommand) error {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.ItemID) == "" ||
		strings.TrimSpace(cmd.OwnerID) == "" ||
		strings.TrimSpace(cmd.TargetUserID) == "" {
		return domainerrors.ErrInvalidInput
	}
	now := application.ResolveNow(u.Clock)

	item, err := u.Items.GetItem(ctx, cmd.ItemID)
	if err != nil {
		return err
	}
	if item.Deleted {
		return domainerrors.ErrItemNotFound
	}
	if err := u.Gate.Check(ctx, services.ActionRemoveCollaborator, cmd.OwnerID, &item, entities.TargetTypeContentItem, item.ItemID, now); err != nil {
		observeCollaboration(u.Metrics, "remove", err)
		return err
	}

	audit, err := application.BuildAudit(ctx, u.IDGenerator, cmd.OwnerID, entities.AuditActionCollaboratorRemove, entities.TargetTypeContentItem, item.ItemID,
		"user="+cmd.TargetUserID, now)
	if err != nil {
		return err
	}
	event, err := buildEvent(ctx, u.IDGenerator, eventCollaboratorRemoved, item.ItemID, cmd.OwnerID, map[string]string{
		"user_id": cmd.TargetUserID,
	}, now)
	if err != nil {
		return err
	}

	if err := u.Collaborations.RemoveCollaborator(ctx, item.ItemID, cmd.TargetUserID, audit, event); err != nil {
		observeCollaboration(u.Metrics, "remove", err)
		logger.Warn("collaborator removal failed",
			"event", "governance_collaborator_remove_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"item_id", item.ItemID,
			"user_id", cmd.TargetUserID,
			"error", err.Error(),
		)
		return err
	}
	observeCollaboration(u.Metrics, "remove", nil)

	notify(ctx, u.Notifier, u.Logger, ports.Notification{
		UserID:      cmd.TargetUserID,
		Type:        "collaborator_removed",
		Message:     fmt.Sprintf("You are no longer a collaborator on %q", item.Title),
		TargetType:  entities.TargetTypeContentItem,
		TargetID:    item.ItemID,
		TriggeredBy: cmd.OwnerID,
	})

	logger.Info("collaborator removed",
		"event", "governance_collaborator_removed",
		"module", "content-governance/governance-service",
		"layer", "application",
		"item_id", item.ItemID,
		"user_id", cmd.TargetUserID,
	)
	return nil
}

func observeCollaboration(metrics ports.GovernanceMetrics, action string, err error) {
	if metrics == nil {
		return
	}
	outcome := outcomeSucceeded
	switch {
	case err == nil:
	case errors.Is(err, domainerrors.ErrConflict):
		outcome = outcomeConflict
	case errors.Is(err, domainerrors.ErrUnauthorized):
		outcome = outcomeDenied
	default:
		outcome = outcomeFailed
	}
	metrics.ObserveCollaboration(action, outcome)
}
