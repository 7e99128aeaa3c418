package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kdom/contexts/content-governance/governance-service/application/commands"
	"kdom/contexts/content-governance/governance-service/application/queries"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	governanceerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	governancehttp "kdom/contexts/content-governance/governance-service/transport/http"
)

const maxGovernanceBody = 1 << 20

func (s *Server) registerGovernanceRoutes() {
	s.mux.HandleFunc("POST /api/kdoms", s.handleCreateItem)
	s.mux.HandleFunc("GET /api/kdoms/roots", s.handleListRoots)
	s.mux.HandleFunc("GET /api/kdoms/{item_id}", s.handleGetItem)
	s.mux.HandleFunc("PATCH /api/kdoms/{item_id}/parent", s.handleReparentItem)
	s.mux.HandleFunc("GET /api/kdoms/{item_id}/children", s.handleListChildren)
	s.mux.HandleFunc("GET /api/kdoms/{item_id}/siblings", s.handleListSiblings)
	s.mux.HandleFunc("GET /api/kdoms/{item_id}/ancestors", s.handleListAncestors)
	s.mux.HandleFunc("POST /api/kdoms/{item_id}/signals", s.handleRecordSignal)

	s.mux.HandleFunc("POST /api/moderation/kdoms/bulk", s.handleBulkModerate)
	s.mux.HandleFunc("POST /api/moderation/kdoms/{item_id}/approve", s.moderationDecision(commands.DecisionApprove))
	s.mux.HandleFunc("POST /api/moderation/kdoms/{item_id}/reject", s.moderationDecision(commands.DecisionReject))
	s.mux.HandleFunc("POST /api/moderation/kdoms/{item_id}/reject-delete", s.moderationDecision(commands.DecisionRejectAndDelete))
	s.mux.HandleFunc("POST /api/moderation/kdoms/{item_id}/force-delete", s.moderationDecision(commands.DecisionForceDelete))
	s.mux.HandleFunc("GET /api/moderation/kdoms/{item_id}/priority", s.handlePriority)
	s.mux.HandleFunc("GET /api/moderation/dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /api/moderation/queue", s.handleModerationQueue)

	s.mux.HandleFunc("POST /api/kdoms/{item_id}/collaboration-requests", s.handleSubmitCollaboration)
	s.mux.HandleFunc("POST /api/kdoms/{item_id}/collaboration-requests/{request_id}/approve", s.collaborationReview(true))
	s.mux.HandleFunc("POST /api/kdoms/{item_id}/collaboration-requests/{request_id}/reject", s.collaborationReview(false))
	s.mux.HandleFunc("DELETE /api/kdoms/{item_id}/collaborators/{user_id}", s.handleRemoveCollaborator)
	s.mux.HandleFunc("GET /api/collaboration-requests/sent", s.handleSentRequests)
	s.mux.HandleFunc("GET /api/collaboration-requests/received", s.handleReceivedRequests)
	s.mux.HandleFunc("GET /api/collaboration-requests/all", s.handleAllRequests)

	s.mux.HandleFunc("GET /api/audit", s.handleQueryAudit)
	s.mux.HandleFunc("GET /api/audit/targets/{target_id}/last", s.handleLastAction)

	s.mux.HandleFunc("GET /api/scoring/trending", s.handleListTrending)
	s.mux.HandleFunc("GET /api/scoring/kdoms/{item_id}/trending", s.handleTrendingScore)
	s.mux.HandleFunc("POST /api/scoring/processing-time", s.handleProcessingTime)
	s.mux.HandleFunc("GET /api/scoring/moderators", s.handleModeratorActivity)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.CreateItemRequest
	if !decodeGovernanceBody(w, r, &req, true) {
		return
	}
	resp, err := s.governance.Handler.CreateItemHandler(r.Context(), userID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GetItemHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReparentItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.ReparentItemRequest
	if !decodeGovernanceBody(w, r, &req, true) {
		return
	}
	resp, err := s.governance.Handler.ReparentItemHandler(r.Context(), userID, r.PathValue("item_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRoots(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListChildrenHandler(r.Context(), nil)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	parentID := r.PathValue("item_id")
	resp, err := s.governance.Handler.ListChildrenHandler(r.Context(), &parentID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSiblings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListSiblingsHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAncestors(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListAncestorsHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordSignal(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceActor(w, r); !ok {
		return
	}
	var req governancehttp.RecordSignalRequest
	if !decodeGovernanceBody(w, r, &req, true) {
		return
	}
	resp, err := s.governance.Handler.RecordSignalHandler(r.Context(), r.PathValue("item_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) moderationDecision(decision commands.ModerationDecision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moderatorID, ok := requireGovernanceActor(w, r)
		if !ok {
			return
		}
		var req governancehttp.ModerationRequest
		if !decodeGovernanceBody(w, r, &req, false) {
			return
		}
		resp, err := s.governance.Handler.ModerateHandler(r.Context(), moderatorID, r.PathValue("item_id"), string(decision), req)
		if err != nil {
			writeGovernanceDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleBulkModerate(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.BulkModerationRequest
	if !decodeGovernanceBody(w, r, &req, true) {
		return
	}
	resp, err := s.governance.Handler.BulkModerateHandler(r.Context(), moderatorID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireGovernanceActor(w, r); !ok {
		return
	}
	resp, err := s.governance.Handler.PriorityHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.DashboardHandler(r.Context(), moderatorID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModerationQueue(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 50)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.QueueHandler(r.Context(), moderatorID, limit)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitCollaboration(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.SubmitCollaborationRequest
	if !decodeGovernanceBody(w, r, &req, false) {
		return
	}
	resp, err := s.governance.Handler.SubmitRequestHandler(r.Context(), userID, r.PathValue("item_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) collaborationReview(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewerID, ok := requireGovernanceActor(w, r)
		if !ok {
			return
		}
		var req governancehttp.ReviewCollaborationRequest
		if !decodeGovernanceBody(w, r, &req, false) {
			return
		}
		resp, err := s.governance.Handler.ReviewRequestHandler(
			r.Context(),
			reviewerID,
			r.PathValue("item_id"),
			r.PathValue("request_id"),
			approve,
			req,
		)
		if err != nil {
			writeGovernanceDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	err := s.governance.Handler.RemoveCollaboratorHandler(r.Context(), ownerID, r.PathValue("item_id"), r.PathValue("user_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSentRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.SentRequestsHandler(r.Context(), userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReceivedRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ReceivedRequestsHandler(r.Context(), userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAllRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.AllRequestsHandler(r.Context(), userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQueryAudit(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	from, ok := queryTime(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryTime(w, r, "to")
	if !ok {
		return
	}

	actions := make([]entities.AuditAction, 0)
	for _, value := range query["action"] {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				actions = append(actions, entities.AuditAction(part))
			}
		}
	}

	resp, err := s.governance.Handler.QueryAuditHandler(r.Context(), queries.AuditQuery{
		RequesterID: requesterID,
		ActorID:     query.Get("actor_id"),
		Actions:     actions,
		TargetID:    query.Get("target_id"),
		From:        from,
		To:          to,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLastAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.LastActionHandler(r.Context(), userID, r.PathValue("target_id"), r.URL.Query()["action"])
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTrending(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", 7)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ListTrendingHandler(r.Context(), days, limit, r.URL.Query().Get("category"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrendingScore(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", 7)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.TrendingScoreHandler(r.Context(), r.PathValue("item_id"), days)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProcessingTime(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.ProcessingTimeRequest
	if !decodeGovernanceBody(w, r, &req, true) {
		return
	}
	resp, err := s.governance.Handler.ProcessingTimeHandler(r.Context(), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModeratorActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireGovernanceActor(w, r)
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "days", 30)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 10)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ModeratorActivityHandler(r.Context(), userID, days, limit)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireGovernanceActor enforces a bearer token and the X-User-Id header.
// Token verification happens at the gateway; the header carries the subject.
func requireGovernanceActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization bearer token is required", nil)
		return "", false
	}
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Id header is required", nil)
		return "", false
	}
	return userID, true
}

func decodeGovernanceBody(w http.ResponseWriter, r *http.Request, target any, required bool) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxGovernanceBody))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) && !required {
			return true
		}
		writeGovernanceError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON", nil)
		return false
	}
	return true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "INVALID_QUERY", name+" must be an integer", map[string]any{"parameter": name})
		return 0, false
	}
	return value, true
}

func queryTime(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "INVALID_QUERY", name+" must be an RFC3339 timestamp", map[string]any{"parameter": name})
		return nil, false
	}
	return &value, true
}

var governanceErrorCodes = []struct {
	err  error
	code string
}{
	{governanceerrors.ErrItemNotFound, "ITEM_NOT_FOUND"},
	{governanceerrors.ErrParentNotFound, "PARENT_NOT_FOUND"},
	{governanceerrors.ErrRequestNotFound, "REQUEST_NOT_FOUND"},
	{governanceerrors.ErrNotCollaborator, "NOT_COLLABORATOR"},
	{governanceerrors.ErrUserNotFound, "USER_NOT_FOUND"},
	{governanceerrors.ErrAuditEntryAbsent, "AUDIT_ENTRY_NOT_FOUND"},
	{governanceerrors.ErrModeratorRequired, "MODERATOR_REQUIRED"},
	{governanceerrors.ErrAdminRequired, "ADMIN_REQUIRED"},
	{governanceerrors.ErrNotOwner, "NOT_OWNER"},
	{governanceerrors.ErrEditForbidden, "EDIT_FORBIDDEN"},
	{governanceerrors.ErrSelfParent, "SELF_PARENT"},
	{governanceerrors.ErrCycleDetected, "CYCLE_DETECTED"},
	{governanceerrors.ErrAlreadyModerated, "ALREADY_MODERATED"},
	{governanceerrors.ErrDuplicatePendingRequest, "DUPLICATE_PENDING_REQUEST"},
	{governanceerrors.ErrRequestAlreadyReviewed, "REQUEST_ALREADY_REVIEWED"},
	{governanceerrors.ErrOwnerCannotRequest, "OWNER_CANNOT_REQUEST"},
	{governanceerrors.ErrAlreadyCollaborator, "ALREADY_COLLABORATOR"},
	{governanceerrors.ErrItemNotApproved, "ITEM_NOT_APPROVED"},
	{governanceerrors.ErrSlugTaken, "SLUG_TAKEN"},
	{governanceerrors.ErrReasonRequired, "REASON_REQUIRED"},
	{governanceerrors.ErrInvalidBulkAction, "INVALID_BULK_ACTION"},
	{governanceerrors.ErrInvalidWindow, "INVALID_WINDOW"},
	{governanceerrors.ErrInvalidSignalKind, "INVALID_SIGNAL_KIND"},
	{governanceerrors.ErrInvalidInput, "INVALID_REQUEST"},
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	var status int
	switch governanceerrors.KindOf(err) {
	case governanceerrors.ErrNotFound:
		status = http.StatusNotFound
	case governanceerrors.ErrUnauthorized:
		status = http.StatusForbidden
	case governanceerrors.ErrConflict:
		status = http.StatusConflict
	case governanceerrors.ErrValidation:
		status = http.StatusBadRequest
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return
	}

	code := "ERROR"
	for _, candidate := range governanceErrorCodes {
		if errors.Is(err, candidate.err) {
			code = candidate.code
			break
		}
	}
	writeGovernanceError(w, status, code, err.Error(), nil)
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, governancehttp.ErrorEnvelope{
		Status: "error",
		Error: governancehttp.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
