package httptransport

type ContentItemDTO struct {
	ItemID          string   `json:"item_id"`
	ParentID        *string  `json:"parent_id"`
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Category        string   `json:"category,omitempty"`
	OwnerID         string   `json:"owner_id"`
	Collaborators   []string `json:"collaborators"`
	Status          string   `json:"status"`
	RejectionReason string   `json:"rejection_reason,omitempty"`
	ModeratedBy     string   `json:"moderated_by,omitempty"`
	CreatedAt       string   `json:"created_at"`
	ModeratedAt     string   `json:"moderated_at,omitempty"`
}

type CreateItemRequest struct {
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

type ItemResponse struct {
	Item ContentItemDTO `json:"item"`
}

type ReparentItemRequest struct {
	ParentID *string `json:"parent_id"`
}

type ItemListResponse struct {
	Items []ContentItemDTO `json:"items"`
	Count int              `json:"count"`
}

type ModerationRequest struct {
	Reason string `json:"reason,omitempty"`
}

type ModerationResponse struct {
	Item    ContentItemDTO `json:"item"`
	Removed bool           `json:"removed"`
}

type BulkModerationRequest struct {
	ItemIDs []string `json:"item_ids"`
	Action  string   `json:"action"`
	Reason  string   `json:"reason,omitempty"`
}

type BulkItemResultDTO struct {
	ItemID    string `json:"item_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

type BulkModerationResponse struct {
	Items          []BulkItemResultDTO `json:"items"`
	Processed      int                 `json:"processed"`
	SucceededCount int                 `json:"succeeded_count"`
	FailedCount    int                 `json:"failed_count"`
}

type PriorityResponse struct {
	ItemID         string `json:"item_id"`
	Priority       string `json:"priority"`
	WaitingSeconds int64  `json:"waiting_seconds"`
}

type QueueEntryDTO struct {
	Item           ContentItemDTO `json:"item"`
	Priority       string         `json:"priority"`
	WaitingSeconds int64          `json:"waiting_seconds"`
}

type QueueResponse struct {
	Items []QueueEntryDTO `json:"items"`
	Count int             `json:"count"`
}

type ModeratorActivityDTO struct {
	ModeratorID string `json:"moderator_id"`
	Approved    int    `json:"approved"`
	Rejected    int    `json:"rejected"`
	Total       int    `json:"total"`
}

type AuditEntryDTO struct {
	EntryID    string  `json:"entry_id"`
	ActorID    *string `json:"actor_id"`
	Action     string  `json:"action"`
	TargetType string  `json:"target_type"`
	TargetID   string  `json:"target_id"`
	Details    string  `json:"details,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type DashboardResponse struct {
	ModeratorID                  string               `json:"moderator_id"`
	WindowDays                   int                  `json:"window_days"`
	PendingCount                 int                  `json:"pending_count"`
	PriorityCounts               map[string]int       `json:"priority_counts"`
	Queue                        []QueueEntryDTO      `json:"queue"`
	RecentActions                []AuditEntryDTO      `json:"recent_actions"`
	Activity                     ModeratorActivityDTO `json:"activity"`
	AverageProcessingTimeSeconds float64              `json:"average_processing_time_seconds"`
	GeneratedAt                  string               `json:"generated_at"`
}

type CollaborationRequestDTO struct {
	RequestID       string `json:"request_id"`
	ItemID          string `json:"item_id"`
	ItemTitle       string `json:"item_title,omitempty"`
	RequesterID     string `json:"requester_id"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	ReviewerID      string `json:"reviewer_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	ReviewedAt      string `json:"reviewed_at,omitempty"`
}

type SubmitCollaborationRequest struct {
	Message string `json:"message,omitempty"`
}

type ReviewCollaborationRequest struct {
	Reason string `json:"reason,omitempty"`
}

type CollaborationRequestResponse struct {
	Request CollaborationRequestDTO `json:"request"`
}

type SentRequestsResponse struct {
	Requests     []CollaborationRequestDTO `json:"requests"`
	PendingCount int                       `json:"pending_count"`
}

type RequestGroupDTO struct {
	ItemID       string                    `json:"item_id"`
	ItemTitle    string                    `json:"item_title"`
	PendingCount int                       `json:"pending_count"`
	Requests     []CollaborationRequestDTO `json:"requests"`
}

type ReceivedRequestsResponse struct {
	Groups       []RequestGroupDTO `json:"groups"`
	PendingCount int               `json:"pending_count"`
}

type AllRequestsResponse struct {
	Sent            []CollaborationRequestDTO `json:"sent"`
	Received        []RequestGroupDTO         `json:"received"`
	SentPending     int                       `json:"sent_pending"`
	ReceivedPending int                       `json:"received_pending"`
}

type AuditPageResponse struct {
	Entries []AuditEntryDTO `json:"entries"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type LastActionResponse struct {
	Entry AuditEntryDTO `json:"entry"`
}

type ActivityCountsDTO struct {
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
	Follows  int `json:"follows"`
	Edits    int `json:"edits"`
}

type TrendingItemDTO struct {
	ItemID    string            `json:"item_id"`
	Title     string            `json:"title"`
	Score     int               `json:"score"`
	Counts    ActivityCountsDTO `json:"counts"`
	CreatedAt string            `json:"created_at"`
}

type TrendingListResponse struct {
	WindowDays int               `json:"window_days"`
	Items      []TrendingItemDTO `json:"items"`
}

type TrendingScoreResponse struct {
	WindowDays int             `json:"window_days"`
	Item       TrendingItemDTO `json:"item"`
}

type ProcessingTimeRequest struct {
	ItemIDs []string `json:"item_ids"`
}

type ProcessingTimeResponse struct {
	AverageSeconds float64 `json:"average_seconds"`
	ModeratedCount int     `json:"moderated_count"`
	RequestedCount int     `json:"requested_count"`
}

type ModeratorActivityResponse struct {
	WindowDays int                    `json:"window_days"`
	Moderators []ModeratorActivityDTO `json:"moderators"`
}

type RecordSignalRequest struct {
	Kind string `json:"kind"`
}

type RecordSignalResponse struct {
	ItemID string `json:"item_id"`
	Kind   string `json:"kind"`
}

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status    string    `json:"status"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}
