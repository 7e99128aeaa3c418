package application

import (
	"context"
	"errors"

	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

// ParentLookup adapts the item repository to the hierarchy walk. Missing and
// deleted items both resolve as not found.
func ParentLookup(ctx context.Context, items ports.ContentItemRepository) services.ParentLookup {
	return func(itemID string) (*string, bool, error) {
		item, err := items.GetItem(ctx, itemID)
		if errors.Is(err, domainerrors.ErrItemNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if item.Deleted {
			return nil, false, nil
		}
		return item.ParentID, true, nil
	}
}
