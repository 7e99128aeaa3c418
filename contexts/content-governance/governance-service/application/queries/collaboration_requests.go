package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/ports"
)

type RequestView struct {
	Request   entities.CollaborationRequest
	ItemTitle string
}

type RequestGroup struct {
	ItemID       string
	ItemTitle    string
	PendingCount int
	Requests     []entities.CollaborationRequest
}

type AllRequestsResult struct {
	Sent            []RequestView
	Received        []RequestGroup
	SentPending     int
	ReceivedPending int
}

type CollaborationRequestsUseCase struct {
	Items          ports.ContentItemRepository
	Collaborations ports.CollaborationRepository
	Logger         *slog.Logger
}

// Sent lists the user's own requests, newest first.
func (u CollaborationRequestsUseCase) Sent(ctx context.Context, userID string) ([]RequestView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	requests, err := u.Collaborations.ListRequestsByRequester(ctx, userID)
	if err != nil {
		u.logFailure("sent", userID, err)
		return nil, err
	}
	titles, err := u.titles(ctx, requests)
	if err != nil {
		return nil, err
	}

	views := make([]RequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, RequestView{Request: request, ItemTitle: titles[request.ItemID]})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Request.CreatedAt.After(views[j].Request.CreatedAt)
	})
	return views, nil
}

// Received groups requests on items the user owns. Groups are ordered by
// pending count desc then title asc; requests inside a group newest first.
func (u CollaborationRequestsUseCase) Received(ctx context.Context, userID string) ([]RequestGroup, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	owned, err := u.Items.ListItems(ctx, ports.ItemFilter{OwnerID: userID})
	if err != nil {
		u.logFailure("received", userID, err)
		return nil, err
	}
	if len(owned) == 0 {
		return []RequestGroup{}, nil
	}
	itemIDs := make([]string, 0, len(owned))
	groups := make(map[string]*RequestGroup, len(owned))
	for _, item := range owned {
		if item.Deleted {
			continue
		}
		itemIDs = append(itemIDs, item.ItemID)
		groups[item.ItemID] = &RequestGroup{ItemID: item.ItemID, ItemTitle: item.Title}
	}

	requests, err := u.Collaborations.ListRequestsByItems(ctx, itemIDs)
	if err != nil {
		u.logFailure("received", userID, err)
		return nil, err
	}
	for _, request := range requests {
		group, ok := groups[request.ItemID]
		if !ok {
			continue
		}
		group.Requests = append(group.Requests, request)
		if request.IsPending() {
			group.PendingCount++
		}
	}

	out := make([]RequestGroup, 0, len(groups))
	for _, group := range groups {
		if len(group.Requests) == 0 {
			continue
		}
		sort.SliceStable(group.Requests, func(i, j int) bool {
			return group.Requests[i].CreatedAt.After(group.Requests[j].CreatedAt)
		})
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PendingCount != out[j].PendingCount {
			return out[i].PendingCount > out[j].PendingCount
		}
		if out[i].ItemTitle != out[j].ItemTitle {
			return out[i].ItemTitle < out[j].ItemTitle
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

func (u CollaborationRequestsUseCase) All(ctx context.Context, userID string) (AllRequestsResult, error) {
	sent, err := u.Sent(ctx, userID)
	if err != nil {
		return AllRequestsResult{}, err
	}
	received, err := u.Received(ctx, userID)
	if err != nil {
		return AllRequestsResult{}, err
	}

	result := AllRequestsResult{Sent: sent, Received: received}
	for _, view := range sent {
		if view.Request.IsPending() {
			result.SentPending++
		}
	}
	for _, group := range received {
		result.ReceivedPending += group.PendingCount
	}
	return result, nil
}

func (u CollaborationRequestsUseCase) titles(ctx context.Context, requests []entities.CollaborationRequest) (map[string]string, error) {
	seen := make(map[string]struct{}, len(requests))
	ids := make([]string, 0, len(requests))
	for _, request := range requests {
		if _, ok := seen[request.ItemID]; ok {
			continue
		}
		seen[request.ItemID] = struct{}{}
		ids = append(ids, request.ItemID)
	}
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}
	items, err := u.Items.ListItems(ctx, ports.ItemFilter{ItemIDs: ids})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		titles[item.ItemID] = item.Title
	}
	return titles, nil
}

func (u CollaborationRequestsUseCase) logFailure(view string, userID string, err error) {
	application.ResolveLogger(u.Logger).Error("collaboration request listing failed",
		"event", "governance_collaboration_requests_list_failed",
		"module", "content-governance/governance-service",
		"layer", "application",
		"view", view,
		"user_id", userID,
		"error", err.Error(),
	)
}
