package httpadapter

import (
	"strings"
	"time"

	"kdom/contexts/content-governance/governance-service/application/queries"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	"kdom/contexts/content-governance/governance-service/domain/services"
	httptransport "kdom/contexts/content-governance/governance-service/transport/http"
)

func mapItem(item entities.ContentItem) httptransport.ContentItemDTO {
	collaborators := append([]string{}, item.Collaborators...)
	dto := httptransport.ContentItemDTO{
		ItemID:          item.ItemID,
		ParentID:        item.ParentID,
		Title:           item.Title,
		Slug:            item.Slug,
		Category:        item.Category,
		OwnerID:         item.OwnerID,
		Collaborators:   collaborators,
		Status:          string(item.Status),
		RejectionReason: item.RejectionReason,
		ModeratedBy:     item.ModeratedBy,
		CreatedAt:       formatTime(item.CreatedAt),
	}
	if item.ModeratedAt != nil {
		dto.ModeratedAt = formatTime(*item.ModeratedAt)
	}
	return dto
}

func mapItemList(items []entities.ContentItem) httptransport.ItemListResponse {
	out := make([]httptransport.ContentItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, mapItem(item))
	}
	return httptransport.ItemListResponse{Items: out, Count: len(out)}
}

func mapQueueEntry(item entities.ContentItem, priority string, waiting time.Duration) httptransport.QueueEntryDTO {
	return httptransport.QueueEntryDTO{
		Item:           mapItem(item),
		Priority:       priority,
		WaitingSeconds: int64(waiting / time.Second),
	}
}

func mapAuditEntry(entry entities.AuditEntry) httptransport.AuditEntryDTO {
	return httptransport.AuditEntryDTO{
		EntryID:    entry.EntryID,
		ActorID:    entry.ActorID,
		Action:     string(entry.Action),
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Details:    entry.Details,
		CreatedAt:  formatTime(entry.CreatedAt),
	}
}

func mapAuditEntries(entries []entities.AuditEntry) []httptransport.AuditEntryDTO {
	out := make([]httptransport.AuditEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, mapAuditEntry(entry))
	}
	return out
}

func mapRequest(request entities.CollaborationRequest, itemTitle string) httptransport.CollaborationRequestDTO {
	dto := httptransport.CollaborationRequestDTO{
		RequestID:       request.RequestID,
		ItemID:          request.ItemID,
		ItemTitle:       itemTitle,
		RequesterID:     request.RequesterID,
		Status:          string(request.Status),
		Message:         request.Message,
		RejectionReason: request.RejectionReason,
		ReviewerID:      request.ReviewerID,
		CreatedAt:       formatTime(request.CreatedAt),
	}
	if request.ReviewedAt != nil {
		dto.ReviewedAt = formatTime(*request.ReviewedAt)
	}
	return dto
}

func mapRequestViews(views []queries.RequestView) ([]httptransport.CollaborationRequestDTO, int) {
	out := make([]httptransport.CollaborationRequestDTO, 0, len(views))
	pending := 0
	for _, view := range views {
		if view.Request.IsPending() {
			pending++
		}
		out = append(out, mapRequest(view.Request, view.ItemTitle))
	}
	return out, pending
}

func mapRequestGroups(groups []queries.RequestGroup) ([]httptransport.RequestGroupDTO, int) {
	out := make([]httptransport.RequestGroupDTO, 0, len(groups))
	pending := 0
	for _, group := range groups {
		requests := make([]httptransport.CollaborationRequestDTO, 0, len(group.Requests))
		for _, request := range group.Requests {
			requests = append(requests, mapRequest(request, group.ItemTitle))
		}
		pending += group.PendingCount
		out = append(out, httptransport.RequestGroupDTO{
			ItemID:       group.ItemID,
			ItemTitle:    group.ItemTitle,
			PendingCount: group.PendingCount,
			Requests:     requests,
		})
	}
	return out, pending
}

func mapTrending(candidate services.TrendingCandidate) httptransport.TrendingItemDTO {
	return httptransport.TrendingItemDTO{
		ItemID: candidate.ItemID,
		Title:  candidate.Title,
		Score:  candidate.Score,
		Counts: httptransport.ActivityCountsDTO{
			Posts:    candidate.Counts.Posts,
			Comments: candidate.Counts.Comments,
			Follows:  candidate.Counts.Follows,
			Edits:    candidate.Counts.Edits,
		},
		CreatedAt: formatTime(candidate.CreatedAt),
	}
}

func parseActions(raw []string) []entities.AuditAction {
	actions := make([]entities.AuditAction, 0, len(raw))
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				actions = append(actions, entities.AuditAction(part))
			}
		}
	}
	return actions
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
