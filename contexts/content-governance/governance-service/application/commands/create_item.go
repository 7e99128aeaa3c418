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

type CreateItemCommand struct {
	OwnerID  string
	Title    string
	Category string
	ParentID *string
}

type CreateItemResult struct {
	Item entities.ContentItem
}

type CreateItemUseCase struct {
	Items       ports.ContentItemRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute validates the parent through the hierarchy walk and persists the
// item as pending together with its create audit entry.
func (u CreateItemUseCase) Execute(ctx context.Context, cmd CreateItemCommand) (CreateItemResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.OwnerID) == "" || strings.TrimSpace(cmd.Title) == "" {
		return CreateItemResult{}, domainerrors.ErrInvalidInput
	}
	now := application.ResolveNow(u.Clock)

	itemID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateItemResult{}, err
	}
	item, err := entities.NewContentItem(itemID, cmd.ParentID, cmd.Title, cmd.Category, cmd.OwnerID, now)
	if err != nil {
		return CreateItemResult{}, err
	}

	if err := services.ValidateParentAssignment(item.ItemID, item.ParentID, application.ParentLookup(ctx, u.Items)); err != nil {
		logger.Warn("create item rejected by hierarchy validation",
			"event", "governance_create_item_hierarchy_rejected",
			"module", "content-governance/governance-service",
			"layer", "application",
			"owner_id", cmd.OwnerID,
			"parent_id", item.ParentValue(),
			"error", err.Error(),
		)
		return CreateItemResult{}, err
	}

	audit, err := application.BuildAudit(ctx, u.IDGenerator, cmd.OwnerID, entities.AuditActionCreate, entities.TargetTypeContentItem, item.ItemID, item.Title, now)
	if err != nil {
		return CreateItemResult{}, err
	}
	event, err := buildEvent(ctx, u.IDGenerator, eventItemCreated, item.ItemID, cmd.OwnerID, map[string]string{
		"title":     item.Title,
		"slug":      item.Slug,
		"category":  item.Category,
		"parent_id": item.ParentValue(),
	}, now)
	if err != nil {
		return CreateItemResult{}, err
	}

	saved, err := u.Items.CreateItem(ctx, item, audit, event)
	if err != nil {
		logger.Error("create item failed on write transaction",
			"event", "governance_create_item_write_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"item_id", item.ItemID,
			"owner_id", cmd.OwnerID,
			"error", err.Error(),
		)
		return CreateItemResult{}, err
	}

	logger.Info("content item created",
		"event", "governance_item_created",
		"module", "content-governance/governance-service",
		"layer", "application",
		"item_id", saved.ItemID,
		"owner_id", saved.OwnerID,
		"slug", saved.Slug,
		"parent_id", saved.ParentValue(),
	)
	return CreateItemResult{Item: saved}, nil
}
