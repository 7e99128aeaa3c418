package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/application/commands"
	"kdom/contexts/content-governance/governance-service/application/queries"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	httptransport "kdom/contexts/content-governance/governance-service/transport/http"
)

type Handler struct {
	CreateItem         commands.CreateItemUseCase
	ReparentItem       commands.ReparentItemUseCase
	Moderate           commands.ModerateItemUseCase
	BulkModerate       commands.BulkModerateUseCase
	SubmitRequest      commands.SubmitRequestUseCase
	ReviewRequest      commands.ReviewRequestUseCase
	RemoveCollaborator commands.RemoveCollaboratorUseCase
	RecordSignal       commands.RecordSignalUseCase

	GetItem           queries.GetItemUseCase
	GetChildren       queries.GetChildrenUseCase
	GetSiblings       queries.GetSiblingsUseCase
	GetAncestors      queries.GetAncestorChainUseCase
	Requests          queries.CollaborationRequestsUseCase
	QueryAudit        queries.QueryAuditUseCase
	LastAction        queries.LastActionUseCase
	TrendingScore     queries.TrendingScoreUseCase
	ListTrending      queries.ListTrendingUseCase
	ProcessingTime    queries.AverageProcessingTimeUseCase
	ModeratorActivity queries.ModeratorActivityUseCase
	Priority          queries.CalculatePriorityUseCase
	Dashboard         queries.GetDashboardUseCase
	Queue             queries.ModerationQueueUseCase

	Logger *slog.Logger
}

// CreateItemHandler godoc
// @Summary Create a K-Dom
// @Description Creates a content item in pending moderation status owned by the caller.
// @Tags content-governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Acting user id"
// @Param request body httptransport.CreateItemRequest true "Item payload"
// @Success 201 {object} httptransport.ItemResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms [post]
func (h Handler) CreateItemHandler(ctx context.Context, userID string, req httptransport.CreateItemRequest) (httptransport.ItemResponse, error) {
	result, err := h.CreateItem.Execute(ctx, commands.CreateItemCommand{
		OwnerID:  userID,
		Title:    req.Title,
		Category: req.Category,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.logFailure("create_item", userID, err)
		return httptransport.ItemResponse{}, err
	}
	return httptransport.ItemResponse{Item: mapItem(result.Item)}, nil
}

// GetItemHandler godoc
// @Summary Get a K-Dom
// @Tags content-governance
// @Produce json
// @Param item_id path string true "Item id"
// @Success 200 {object} httptransport.ItemResponse
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms/{item_id} [get]
func (h Handler) GetItemHandler(ctx context.Context, itemID string) (httptransport.ItemResponse, error) {
	item, err := h.GetItem.Execute(ctx, itemID)
	if err != nil {
		return httptransport.ItemResponse{}, err
	}
	return httptransport.ItemResponse{Item: mapItem(item)}, nil
}

// ReparentItemHandler godoc
// @Summary Move a K-Dom under a new parent
// @Description A null parent_id moves the item to the root level. Cycles are rejected.
// @Tags content-governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Acting user id"
// @Param item_id path string true "Item id"
// @Param request body httptransport.ReparentItemRequest true "New parent"
// @Success 200 {object} httptransport.ItemResponse
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms/{item_id}/parent [patch]
func (h Handler) ReparentItemHandler(ctx context.Context, userID string, itemID string, req httptransport.ReparentItemRequest) (httptransport.ItemResponse, error) {
	item, err := h.ReparentItem.Execute(ctx, commands.ReparentItemCommand{
		ItemID:   itemID,
		ActorID:  userID,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.logFailure("reparent_item", userID, err)
		return httptransport.ItemResponse{}, err
	}
	return httptransport.ItemResponse{Item: mapItem(item)}, nil
}

// ListChildrenHandler godoc
// @Summary List direct children
// @Tags content-governance
// @Produce json
// @Param item_id path string true "Parent item id"
// @Success 200 {object} httptransport.ItemListResponse
// @Router /api/kdoms/{item_id}/children [get]
func (h Handler) ListChildrenHandler(ctx context.Context, parentID *string) (httptransport.ItemListResponse, error) {
	items, err := h.GetChildren.Execute(ctx, parentID)
	if err != nil {
		return httptransport.ItemListResponse{}, err
	}
	return mapItemList(items), nil
}

// ListSiblingsHandler godoc
// @Summary List siblings
// @Tags content-governance
// @Produce json
// @Param item_id path string true "Item id"
// @Success 200 {object} httptransport.ItemListResponse
// @Router /api/kdoms/{item_id}/siblings [get]
func (h Handler) ListSiblingsHandler(ctx context.Context, itemID string) (httptransport.ItemListResponse, error) {
	items, err := h.GetSiblings.Execute(ctx, itemID)
	if err != nil {
		return httptransport.ItemListResponse{}, err
	}
	return mapItemList(items), nil
}

// ListAncestorsHandler godoc
// @Summary Ancestor chain, root first
// @Tags content-governance
// @Produce json
// @Param item_id path string true "Item id"
// @Success 200 {object} httptransport.ItemListResponse
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms/{item_id}/ancestors [get]
func (h Handler) ListAncestorsHandler(ctx context.Context, itemID string) (httptransport.ItemListResponse, error) {
	items, err := h.GetAncestors.Execute(ctx, itemID)
	if err != nil {
		return httptransport.ItemListResponse{}, err
	}
	return mapItemList(items), nil
}

// ModerateHandler godoc
// @Summary Apply a moderation decision
// @Description decision is one of approve, reject, reject_and_delete, force_delete.
// @Tags content-governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Moderator id"
// @Param item_id path string true "Item id"
// @Param request body httptransport.ModerationRequest false "Reason"
// @Success 200 {object} httptransport.ModerationResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/kdoms/{item_id}/approve [post]
func (h Handler) ModerateHandler(
	ctx context.Context,
	moderatorID string,
	itemID string,
	decision string,
	req httptransport.ModerationRequest,
) (httptransport.ModerationResponse, error) {
	result, err := h.Moderate.Execute(ctx, commands.ModerationDecision(decision), itemID, moderatorID, req.Reason)
	if err != nil {
		h.logFailure("moderate_"+decision, moderatorID, err)
		return httptransport.ModerationResponse{}, err
	}
	return httptransport.ModerationResponse{
		Item:    mapItem(result.Item),
		Removed: result.Removed,
	}, nil
}

// BulkModerateHandler godoc
// @Summary Moderate up to 500 items
// @Description Per-item failures are reported in the result and do not abort the batch.
// @Tags content-governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Moderator id"
// @Param request body httptransport.BulkModerationRequest true "Batch"
// @Success 200 {object} httptransport.BulkModerationResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/kdoms/bulk [post]
func (h Handler) BulkModerateHandler(ctx context.Context, moderatorID string, req httptransport.BulkModerationRequest) (httptransport.BulkModerationResponse, error) {
	result, err := h.BulkModerate.Execute(ctx, commands.BulkModerateCommand{
		ItemIDs:     req.ItemIDs,
		Action:      commands.ModerationDecision(req.Action),
		Reason:      req.Reason,
		ModeratorID: moderatorID,
	})
	if err != nil {
		h.logFailure("bulk_moderate", moderatorID, err)
		return httptransport.BulkModerationResponse{}, err
	}
	items := make([]httptransport.BulkItemResultDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, httptransport.BulkItemResultDTO(item))
	}
	return httptransport.BulkModerationResponse{
		Items:          items,
		Processed:      result.Processed,
		SucceededCount: result.SucceededCount,
		FailedCount:    result.FailedCount,
	}, nil
}

// PriorityHandler godoc
// @Summary Review priority of an item
// @Tags content-governance
// @Produce json
// @Param item_id path string true "Item id"
// @Success 200 {object} httptransport.PriorityResponse
// @Router /api/moderation/kdoms/{item_id}/priority [get]
func (h Handler) PriorityHandler(ctx context.Context, itemID string) (httptransport.PriorityResponse, error) {
	priority, waiting, err := h.Priority.Execute(ctx, itemID)
	if err != nil {
		return httptransport.PriorityResponse{}, err
	}
	return httptransport.PriorityResponse{
		ItemID:         itemID,
		Priority:       string(priority),
		WaitingSeconds: int64(waiting / time.Second),
	}, nil
}

// DashboardHandler godoc
// @Summary Moderator dashboard
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Moderator id"
// @Success 200 {object} httptransport.DashboardResponse
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/dashboard [get]
func (h Handler) DashboardHandler(ctx context.Context, moderatorID string) (httptransport.DashboardResponse, error) {
	dashboard, err := h.Dashboard.Execute(ctx, moderatorID)
	if err != nil {
		return httptransport.DashboardResponse{}, err
	}
	counts := make(map[string]int, len(dashboard.PriorityCounts))
	for priority, count := range dashboard.PriorityCounts {
		counts[string(priority)] = count
	}
	queue := make([]httptransport.QueueEntryDTO, 0, len(dashboard.Queue))
	for _, entry := range dashboard.Queue {
		queue = append(queue, mapQueueEntry(entry.Item, string(entry.Priority), entry.Waiting))
	}
	return httptransport.DashboardResponse{
		ModeratorID:    dashboard.ModeratorID,
		WindowDays:     dashboard.WindowDays,
		PendingCount:   dashboard.PendingCount,
		PriorityCounts: counts,
		Queue:          queue,
		RecentActions:  mapAuditEntries(dashboard.RecentActions),
		Activity: httptransport.ModeratorActivityDTO{
			ModeratorID: dashboard.Activity.ModeratorID,
			Approved:    dashboard.Activity.Approved,
			Rejected:    dashboard.Activity.Rejected,
			Total:       dashboard.Activity.Total,
		},
		AverageProcessingTimeSeconds: dashboard.AverageProcessingTime.Seconds(),
		GeneratedAt:                  formatTime(dashboard.GeneratedAt),
	}, nil
}

// QueueHandler godoc
// @Summary Pending moderation queue
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Moderator id"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} httptransport.QueueResponse
// @Router /api/moderation/queue [get]
func (h Handler) QueueHandler(ctx context.Context, moderatorID string, limit int) (httptransport.QueueResponse, error) {
	entries, err := h.Queue.Execute(ctx, moderatorID, limit)
	if err != nil {
		return httptransport.QueueResponse{}, err
	}
	items := make([]httptransport.QueueEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, mapQueueEntry(entry.Item, string(entry.Priority), entry.Waiting))
	}
	return httptransport.QueueResponse{Items: items, Count: len(items)}, nil
}

// SubmitRequestHandler godoc
// @Summary Request collaboration on an approved K-Dom
// @Tags content-governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Requesting user id"
// @Param item_id path string true "Item id"
// @Param request body httptransport.SubmitCollaborationRequest false "Message"
// @Success 201 {object} httptransport.CollaborationRequestResponse
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms/{item_id}/collaboration-requests [post]
func (h Handler) SubmitRequestHandler(ctx context.Context, userID string, itemID string, req httptransport.SubmitCollaborationRequest) (httptransport.CollaborationRequestResponse, error) {
	request, err := h.SubmitRequest.Execute(ctx, commands.SubmitRequestCommand{
		ItemID:  itemID,
		UserID:  userID,
		Message: req.Message,
	})
	if err != nil {
		h.logFailure("submit_collaboration_request", userID, err)
		return httptransport.CollaborationRequestResponse{}, err
	}
	return httptransport.CollaborationRequestResponse{Request: mapRequest(request, "")}, nil
}

// ReviewRequestHandler godoc
// @Summary Approve or reject a collaboration request
// @Tags content-governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Reviewer id"
// @Param item_id path string true "Item id"
// @Param request_id path string true "Request id"
// @Param request body httptransport.ReviewCollaborationRequest false "Reason"
// @Success 200 {object} httptransport.CollaborationRequestResponse
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms/{item_id}/collaboration-requests/{request_id}/approve [post]
func (h Handler) ReviewRequestHandler(
	ctx context.Context,
	reviewerID string,
	itemID string,
	requestID string,
	approve bool,
	req httptransport.ReviewCollaborationRequest,
) (httptransport.CollaborationRequestResponse, error) {
	cmd := commands.ReviewRequestCommand{
		ItemID:     itemID,
		RequestID:  requestID,
		ReviewerID: reviewerID,
		Reason:     req.Reason,
	}
	var (
		request entities.CollaborationRequest
		err     error
	)
	if approve {
		request, err = h.ReviewRequest.Approve(ctx, cmd)
	} else {
		request, err = h.ReviewRequest.Reject(ctx, cmd)
	}
	if err != nil {
		h.logFailure("review_collaboration_request", reviewerID, err)
		return httptransport.CollaborationRequestResponse{}, err
	}
	return httptransport.CollaborationRequestResponse{Request: mapRequest(request, "")}, nil
}

// RemoveCollaboratorHandler godoc
// @Summary Remove a collaborator
// @Tags content-governance
// @Security BearerAuth
// @Param X-User-Id header string true "Owner id"
// @Param item_id path string true "Item id"
// @Param user_id path string true "Collaborator id"
// @Success 204
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms/{item_id}/collaborators/{user_id} [delete]
func (h Handler) RemoveCollaboratorHandler(ctx context.Context, ownerID string, itemID string, targetUserID string) error {
	err := h.RemoveCollaborator.Execute(ctx, commands.RemoveCollaboratorCommand{
		ItemID:       itemID,
		OwnerID:      ownerID,
		TargetUserID: targetUserID,
	})
	if err != nil {
		h.logFailure("remove_collaborator", ownerID, err)
	}
	return err
}

// SentRequestsHandler godoc
// @Summary Collaboration requests sent by the caller
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "User id"
// @Success 200 {object} httptransport.SentRequestsResponse
// @Router /api/collaboration-requests/sent [get]
func (h Handler) SentRequestsHandler(ctx context.Context, userID string) (httptransport.SentRequestsResponse, error) {
	views, err := h.Requests.Sent(ctx, userID)
	if err != nil {
		return httptransport.SentRequestsResponse{}, err
	}
	requests, pending := mapRequestViews(views)
	return httptransport.SentRequestsResponse{Requests: requests, PendingCount: pending}, nil
}

// ReceivedRequestsHandler godoc
// @Summary Collaboration requests on items the caller owns, grouped per item
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "User id"
// @Success 200 {object} httptransport.ReceivedRequestsResponse
// @Router /api/collaboration-requests/received [get]
func (h Handler) ReceivedRequestsHandler(ctx context.Context, userID string) (httptransport.ReceivedRequestsResponse, error) {
	groups, err := h.Requests.Received(ctx, userID)
	if err != nil {
		return httptransport.ReceivedRequestsResponse{}, err
	}
	mapped, pending := mapRequestGroups(groups)
	return httptransport.ReceivedRequestsResponse{Groups: mapped, PendingCount: pending}, nil
}

// AllRequestsHandler godoc
// @Summary Sent and received collaboration requests
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "User id"
// @Success 200 {object} httptransport.AllRequestsResponse
// @Router /api/collaboration-requests/all [get]
func (h Handler) AllRequestsHandler(ctx context.Context, userID string) (httptransport.AllRequestsResponse, error) {
	result, err := h.Requests.All(ctx, userID)
	if err != nil {
		return httptransport.AllRequestsResponse{}, err
	}
	sent, _ := mapRequestViews(result.Sent)
	received, _ := mapRequestGroups(result.Received)
	return httptransport.AllRequestsResponse{
		Sent:            sent,
		Received:        received,
		SentPending:     result.SentPending,
		ReceivedPending: result.ReceivedPending,
	}, nil
}

// QueryAuditHandler godoc
// @Summary Query the audit trail
// @Description Moderators and admins only. Results are newest first.
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Requester id"
// @Param actor_id query string false "Actor filter"
// @Param action query []string false "Action filter"
// @Param target_id query string false "Target filter"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} httptransport.AuditPageResponse
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Router /api/audit [get]
func (h Handler) QueryAuditHandler(ctx context.Context, query queries.AuditQuery) (httptransport.AuditPageResponse, error) {
	page, err := h.QueryAudit.Execute(ctx, query)
	if err != nil {
		return httptransport.AuditPageResponse{}, err
	}
	return httptransport.AuditPageResponse{
		Entries: mapAuditEntries(page.Entries),
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}, nil
}

// LastActionHandler godoc
// @Summary Most recent audit entry for a target
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Acting moderator or admin id"
// @Param target_id path string true "Target id"
// @Param action query []string false "Action filter"
// @Success 200 {object} httptransport.LastActionResponse
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /api/audit/targets/{target_id}/last [get]
func (h Handler) LastActionHandler(ctx context.Context, requesterID string, targetID string, actions []string) (httptransport.LastActionResponse, error) {
	entry, err := h.LastAction.Execute(ctx, queries.LastActionQuery{
		RequesterID: requesterID,
		TargetID:    targetID,
		Actions:     parseActions(actions),
	})
	if err != nil {
		return httptransport.LastActionResponse{}, err
	}
	return httptransport.LastActionResponse{Entry: mapAuditEntry(entry)}, nil
}

// ListTrendingHandler godoc
// @Summary Trending approved K-Doms
// @Tags content-governance
// @Produce json
// @Param days query int false "Window in days (1-365)"
// @Param limit query int false "Maximum items (max 100)"
// @Param category query string false "Category filter"
// @Success 200 {object} httptransport.TrendingListResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Router /api/scoring/trending [get]
func (h Handler) ListTrendingHandler(ctx context.Context, windowDays int, limit int, category string) (httptransport.TrendingListResponse, error) {
	ranked, err := h.ListTrending.Execute(ctx, queries.ListTrendingQuery{
		WindowDays: windowDays,
		Limit:      limit,
		Category:   category,
	})
	if err != nil {
		return httptransport.TrendingListResponse{}, err
	}
	items := make([]httptransport.TrendingItemDTO, 0, len(ranked))
	for _, candidate := range ranked {
		items = append(items, mapTrending(candidate))
	}
	return httptransport.TrendingListResponse{WindowDays: windowDays, Items: items}, nil
}

// TrendingScoreHandler godoc
// @Summary Trending score of one K-Dom
// @Tags content-governance
// @Produce json
// @Param item_id path string true "Item id"
// @Param days query int false "Window in days (1-365)"
// @Success 200 {object} httptransport.TrendingScoreResponse
// @Router /api/scoring/kdoms/{item_id}/trending [get]
func (h Handler) TrendingScoreHandler(ctx context.Context, itemID string, windowDays int) (httptransport.TrendingScoreResponse, error) {
	candidate, err := h.TrendingScore.Execute(ctx, itemID, windowDays)
	if err != nil {
		return httptransport.TrendingScoreResponse{}, err
	}
	return httptransport.TrendingScoreResponse{
		WindowDays: windowDays,
		Item:       mapTrending(candidate),
	}, nil
}

// ProcessingTimeHandler godoc
// @Summary Average moderation processing time
// @Tags content-governance
// @Accept json
// @Produce json
// @Param request body httptransport.ProcessingTimeRequest true "Item ids"
// @Success 200 {object} httptransport.ProcessingTimeResponse
// @Router /api/scoring/processing-time [post]
func (h Handler) ProcessingTimeHandler(ctx context.Context, req httptransport.ProcessingTimeRequest) (httptransport.ProcessingTimeResponse, error) {
	average, moderated, err := h.ProcessingTime.Execute(ctx, req.ItemIDs)
	if err != nil {
		return httptransport.ProcessingTimeResponse{}, err
	}
	return httptransport.ProcessingTimeResponse{
		AverageSeconds: average.Seconds(),
		ModeratedCount: moderated,
		RequestedCount: len(req.ItemIDs),
	}, nil
}

// ModeratorActivityHandler godoc
// @Summary Most active moderators
// @Tags content-governance
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Acting moderator or admin id"
// @Param days query int false "Window in days (1-365)"
// @Param limit query int false "Maximum moderators"
// @Success 200 {object} httptransport.ModeratorActivityResponse
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Router /api/scoring/moderators [get]
func (h Handler) ModeratorActivityHandler(ctx context.Context, requesterID string, windowDays int, limit int) (httptransport.ModeratorActivityResponse, error) {
	tallies, err := h.ModeratorActivity.Execute(ctx, queries.ModeratorActivityQuery{
		RequesterID: requesterID,
		WindowDays:  windowDays,
		Limit:       limit,
	})
	if err != nil {
		return httptransport.ModeratorActivityResponse{}, err
	}
	moderators := make([]httptransport.ModeratorActivityDTO, 0, len(tallies))
	for _, tally := range tallies {
		moderators = append(moderators, httptransport.ModeratorActivityDTO{
			ModeratorID: tally.ModeratorID,
			Approved:    tally.Approved,
			Rejected:    tally.Rejected,
			Total:       tally.Total,
		})
	}
	return httptransport.ModeratorActivityResponse{WindowDays: windowDays, Moderators: moderators}, nil
}

// RecordSignalHandler godoc
// @Summary Record an activity signal
// @Description kind is one of posts, comments, follows, edits.
// @Tags content-governance
// @Accept json
// @Produce json
// @Param item_id path string true "Item id"
// @Param request body httptransport.RecordSignalRequest true "Signal"
// @Success 202 {object} httptransport.RecordSignalResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Router /api/kdoms/{item_id}/signals [post]
func (h Handler) RecordSignalHandler(ctx context.Context, itemID string, req httptransport.RecordSignalRequest) (httptransport.RecordSignalResponse, error) {
	kind := entities.SignalKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if err := h.RecordSignal.Execute(ctx, commands.RecordSignalCommand{ItemID: itemID, Kind: kind}); err != nil {
		return httptransport.RecordSignalResponse{}, err
	}
	return httptransport.RecordSignalResponse{ItemID: itemID, Kind: string(kind)}, nil
}

func (h Handler) logFailure(operation string, actorID string, err error) {
	level := slog.LevelWarn
	if domainerrors.KindOf(err) == nil {
		level = slog.LevelError
	}
	application.ResolveLogger(h.Logger).Log(context.Background(), level, "governance request failed",
		"event", "http_"+operation+"_failed",
		"module", "content-governance/governance-service",
		"layer", "transport",
		"actor_id", actorID,
		"error", err.Error(),
	)
}
