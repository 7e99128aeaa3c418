package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

type GetChildrenUseCase struct {
	Items  ports.ContentItemRepository
	Logger *slog.Logger
}

// Execute lists direct children ordered by title then id. A nil parent lists
// root items.
func (u GetChildrenUseCase) Execute(ctx context.Context, parentID *string) ([]entities.ContentItem, error) {
	if parentID != nil {
		if strings.TrimSpace(*parentID) == "" {
			parentID = nil
		} else if _, err := loadLiveItem(ctx, u.Items, *parentID); err != nil {
			return nil, err
		}
	}
	children, err := u.Items.ListChildren(ctx, parentID)
	if err != nil {
		application.ResolveLogger(u.Logger).Error("list children failed",
			"event", "governance_list_children_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}
	return sortByTitle(children), nil
}

type GetSiblingsUseCase struct {
	Items  ports.ContentItemRepository
	Logger *slog.Logger
}

// Execute lists items sharing the item's parent, excluding the item itself.
func (u GetSiblingsUseCase) Execute(ctx context.Context, itemID string) ([]entities.ContentItem, error) {
	item, err := loadLiveItem(ctx, u.Items, itemID)
	if err != nil {
		return nil, err
	}
	all, err := u.Items.ListChildren(ctx, item.ParentID)
	if err != nil {
		return nil, err
	}
	siblings := make([]entities.ContentItem, 0, len(all))
	for _, candidate := range all {
		if candidate.ItemID != item.ItemID {
			siblings = append(siblings, candidate)
		}
	}
	return sortByTitle(siblings), nil
}

type GetAncestorChainUseCase struct {
	Items  ports.ContentItemRepository
	Logger *slog.Logger
}

// Execute returns the ancestors root first, ending with the direct parent.
// Corrupt stored cycles fail with ErrCycleDetected.
func (u GetAncestorChainUseCase) Execute(ctx context.Context, itemID string) ([]entities.ContentItem, error) {
	logger := application.ResolveLogger(u.Logger)
	if _, err := loadLiveItem(ctx, u.Items, itemID); err != nil {
		return nil, err
	}
	ids, err := services.AncestorChain(itemID, application.ParentLookup(ctx, u.Items))
	if err != nil {
		logger.Warn("ancestor chain walk failed",
			"event", "governance_ancestor_chain_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"item_id", itemID,
			"error", err.Error(),
		)
		return nil, err
	}

	chain := make([]entities.ContentItem, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		ancestor, err := u.Items.GetItem(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		chain = append(chain, ancestor)
	}
	return chain, nil
}

type GetItemUseCase struct {
	Items  ports.ContentItemRepository
	Logger *slog.Logger
}

func (u GetItemUseCase) Execute(ctx context.Context, itemID string) (entities.ContentItem, error) {
	return loadLiveItem(ctx, u.Items, itemID)
}

func loadLiveItem(ctx context.Context, items ports.ContentItemRepository, itemID string) (entities.ContentItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return entities.ContentItem{}, domainerrors.ErrInvalidInput
	}
	item, err := items.GetItem(ctx, itemID)
	if err != nil {
		return entities.ContentItem{}, err
	}
	if item.Deleted {
		return entities.ContentItem{}, domainerrors.ErrItemNotFound
	}
	return item, nil
}

func sortByTitle(items []entities.ContentItem) []entities.ContentItem {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := strings.ToLower(items[i].Title), strings.ToLower(items[j].Title)
		if left != right {
			return left < right
		}
		return items[i].ItemID < items[j].ItemID
	})
	return items
}
