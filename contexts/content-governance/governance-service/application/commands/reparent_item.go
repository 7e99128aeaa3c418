package commands

import (
	"context"
	"log/slog"
	"strings"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

type ReparentItemCommand struct {
	ItemID   string
	ActorID  string
	ParentID *string
}

type ReparentItemUseCase struct {
	Items       ports.ContentItemRepository
	Gate        application.Gate
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute moves an item under a new parent, or to the root level when
// ParentID is nil. Owners, collaborators and admins may reparent.
func (u ReparentItemUseCase) Execute(ctx context.Context, cmd ReparentItemCommand) (entities.ContentItem, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.ItemID) == "" || strings.TrimSpace(cmd.ActorID) == "" {
		return entities.ContentItem{}, domainerrors.ErrInvalidInput
	}
	now := application.ResolveNow(u.Clock)

	item, err := u.Items.GetItem(ctx, cmd.ItemID)
	if err != nil {
		return entities.ContentItem{}, err
	}
	if item.Deleted {
		return entities.ContentItem{}, domainerrors.ErrItemNotFound
	}
	if err := u.Gate.Check(ctx, services.ActionEditMetadata, cmd.ActorID, &item, entities.TargetTypeContentItem, item.ItemID, now); err != nil {
		return entities.ContentItem{}, err
	}

	parentID := cmd.ParentID
	if parentID != nil && strings.TrimSpace(*parentID) == "" {
		parentID = nil
	}
	if err := services.ValidateParentAssignment(item.ItemID, parentID, application.ParentLookup(ctx, u.Items)); err != nil {
		logger.Warn("reparent rejected by hierarchy validation",
			"event", "governance_reparent_rejected",
			"module", "content-governance/governance-service",
			"layer", "application",
			"item_id", item.ItemID,
			"error", err.Error(),
		)
		return entities.ContentItem{}, err
	}

	newParent := ""
	if parentID != nil {
		newParent = *parentID
	}
	audit, err := application.BuildAudit(ctx, u.IDGenerator, cmd.ActorID, entities.AuditActionReparent, entities.TargetTypeContentItem, item.ItemID,
		"from="+item.ParentValue()+" to="+newParent, now)
	if err != nil {
		return entities.ContentItem{}, err
	}
	event, err := buildEvent(ctx, u.IDGenerator, eventItemReparented, item.ItemID, cmd.ActorID, map[string]string{
		"previous_parent_id": item.ParentValue(),
		"parent_id":          newParent,
	}, now)
	if err != nil {
		return entities.ContentItem{}, err
	}

	if err := u.Items.UpdateParent(ctx, item.ItemID, parentID, audit, event); err != nil {
		logger.Error("reparent failed on write transaction",
			"event", "governance_reparent_write_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"item_id", item.ItemID,
			"error", err.Error(),
		)
		return entities.ContentItem{}, err
	}
	item.ParentID = parentID

	logger.Info("content item reparented",
		"event", "governance_item_reparented",
		"module", "content-governance/governance-service",
		"layer", "application",
		"item_id", item.ItemID,
		"parent_id", newParent,
		"actor_id", cmd.ActorID,
	)
	return item, nil
}
