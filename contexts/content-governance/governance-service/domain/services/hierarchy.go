package services

import (
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
)

// ParentLookup resolves the parent of an existing, non-deleted item.
// found is false when the item does not exist.
type ParentLookup func(itemID string) (parentID *string, found bool, err error)

// ValidateParentAssignment checks that giving itemID the proposed parent keeps
// the parent graph a forest. The ancestor walk tracks visited ids so corrupt
// stored cycles fail closed instead of looping.
func ValidateParentAssignment(itemID string, proposedParentID *string, lookup ParentLookup) error {
	if proposedParentID == nil {
		return nil
	}
	if *proposedParentID == itemID {
		return domainerrors.ErrSelfParent
	}

	current := *proposedParentID
	visited := make(map[string]struct{})
	for {
		if current == itemID {
			return domainerrors.ErrCycleDetected
		}
		if _, seen := visited[current]; seen {
			return domainerrors.ErrCycleDetected
		}
		visited[current] = struct{}{}

		parent, found, err := lookup(current)
		if err != nil {
			return err
		}
		if !found {
			if current == *proposedParentID {
				return domainerrors.ErrParentNotFound
			}
			// dangling weak reference above the proposed parent: treat as root
			return nil
		}
		if parent == nil {
			return nil
		}
		current = *parent
	}
}

// AncestorChain returns the ancestors of itemID, nearest first. It fails with
// ErrCycleDetected when stored data loops.
func AncestorChain(itemID string, lookup ParentLookup) ([]string, error) {
	parent, found, err := lookup(itemID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrItemNotFound
	}

	chain := make([]string, 0, 4)
	visited := map[string]struct{}{itemID: {}}
	for parent != nil {
		current := *parent
		if _, seen := visited[current]; seen {
			return nil, domainerrors.ErrCycleDetected
		}
		visited[current] = struct{}{}

		next, ok, err := lookup(current)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		chain = append(chain, current)
		parent = next
	}
	return chain, nil
}
