package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	governanceservice "kdom/contexts/content-governance/governance-service"
	"kdom/contexts/content-governance/governance-service/adapters/memory"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	governancehttp "kdom/contexts/content-governance/governance-service/transport/http"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer() *Server {
	module := governanceservice.NewInMemoryModule(memory.Seed{
		Users: []memory.User{
			{UserID: "user-1", Username: "alice", Role: entities.RoleUser},
			{UserID: "user-2", Username: "bob", Role: entities.RoleUser},
			{UserID: "mod-1", Username: "mona", Role: entities.RoleModerator},
			{UserID: "admin-1", Username: "ada", Role: entities.RoleAdmin},
		},
	}, nil)
	return New(module, prometheus.NewRegistry(), nil, "")
}

func doGovernanceRequest(server *Server, method string, path string, userID string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer token")
		req.Header.Set("X-User-Id", userID)
	}
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func createTestItem(t *testing.T, server *Server, ownerID string, title string) governancehttp.ContentItemDTO {
	t.Helper()
	rr := doGovernanceRequest(server, http.MethodPost, "/api/kdoms", ownerID, `{"title":"`+title+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp governancehttp.ItemResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode item response: %v", err)
	}
	return resp.Item
}

func decodeErrorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope governancehttp.ErrorEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rr.Body.String())
	}
	return envelope.Error.Code
}

func TestCreateItemRequiresAuthorization(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/kdoms", bytes.NewReader([]byte(`{"title":"Go"}`)))
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateItemRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/kdoms", bytes.NewReader([]byte(`{"title":"Go"}`)))
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeErrorCode(t, rr); code != "USER_REQUIRED" {
		t.Fatalf("expected USER_REQUIRED, got %s", code)
	}
}

func TestCreateItemRejectsMalformedJSON(t *testing.T) {
	server := newTestServer()
	rr := doGovernanceRequest(server, http.MethodPost, "/api/kdoms", "user-1", `{"title":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeErrorCode(t, rr); code != "INVALID_JSON" {
		t.Fatalf("expected INVALID_JSON, got %s", code)
	}
}

func TestModerationApproveRequiresModeratorRole(t *testing.T) {
	server := newTestServer()
	item := createTestItem(t, server, "user-1", "Distributed Systems")

	rr := doGovernanceRequest(server, http.MethodPost, "/api/moderation/kdoms/"+item.ItemID+"/approve", "user-2", "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeErrorCode(t, rr); code != "MODERATOR_REQUIRED" {
		t.Fatalf("expected MODERATOR_REQUIRED, got %s", code)
	}
}

func TestModerationApproveTwiceConflicts(t *testing.T) {
	server := newTestServer()
	item := createTestItem(t, server, "user-1", "Compilers")

	first := doGovernanceRequest(server, http.MethodPost, "/api/moderation/kdoms/"+item.ItemID+"/approve", "mod-1", "")
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", first.Code, first.Body.String())
	}
	second := doGovernanceRequest(server, http.MethodPost, "/api/moderation/kdoms/"+item.ItemID+"/approve", "mod-1", "")
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", second.Code, second.Body.String())
	}
	if code := decodeErrorCode(t, second); code != "ALREADY_MODERATED" {
		t.Fatalf("expected ALREADY_MODERATED, got %s", code)
	}
}

func TestModerationRejectRequiresReason(t *testing.T) {
	server := newTestServer()
	item := createTestItem(t, server, "user-1", "Databases")

	rr := doGovernanceRequest(server, http.MethodPost, "/api/moderation/kdoms/"+item.ItemID+"/reject", "mod-1", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeErrorCode(t, rr); code != "REASON_REQUIRED" {
		t.Fatalf("expected REASON_REQUIRED, got %s", code)
	}
}

func TestGetUnknownItemReturnsNotFound(t *testing.T) {
	server := newTestServer()
	rr := doGovernanceRequest(server, http.MethodGet, "/api/kdoms/missing", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeErrorCode(t, rr); code != "ITEM_NOT_FOUND" {
		t.Fatalf("expected ITEM_NOT_FOUND, got %s", code)
	}
}

func TestReparentRejectsCycle(t *testing.T) {
	server := newTestServer()
	root := createTestItem(t, server, "user-1", "Root")
	rr := doGovernanceRequest(server, http.MethodPost, "/api/kdoms", "user-1", `{"title":"Child","parent_id":"`+root.ItemID+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var child governancehttp.ItemResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &child); err != nil {
		t.Fatalf("decode child: %v", err)
	}

	rr = doGovernanceRequest(server, http.MethodPatch, "/api/kdoms/"+root.ItemID+"/parent", "user-1", `{"parent_id":"`+child.Item.ItemID+`"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeErrorCode(t, rr); code != "CYCLE_DETECTED" {
		t.Fatalf("expected CYCLE_DETECTED, got %s", code)
	}

	rr = doGovernanceRequest(server, http.MethodGet, "/api/kdoms/"+child.Item.ItemID+"/ancestors", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var ancestors governancehttp.ItemListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &ancestors); err != nil {
		t.Fatalf("decode ancestors: %v", err)
	}
	if ancestors.Count != 1 || ancestors.Items[0].ItemID != root.ItemID {
		t.Fatalf("expected root as sole ancestor, got %+v", ancestors.Items)
	}
}

func TestCollaborationFlowOverHTTP(t *testing.T) {
	server := newTestServer()
	item := createTestItem(t, server, "user-1", "Networking")
	if rr := doGovernanceRequest(server, http.MethodPost, "/api/moderation/kdoms/"+item.ItemID+"/approve", "mod-1", ""); rr.Code != http.StatusOK {
		t.Fatalf("approve failed: %d body=%s", rr.Code, rr.Body.String())
	}

	rr := doGovernanceRequest(server, http.MethodPost, "/api/kdoms/"+item.ItemID+"/collaboration-requests", "user-2", `{"message":"let me help"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var submitted governancehttp.CollaborationRequestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	dup := doGovernanceRequest(server, http.MethodPost, "/api/kdoms/"+item.ItemID+"/collaboration-requests", "user-2", "")
	if dup.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d body=%s", dup.Code, dup.Body.String())
	}

	forbidden := doGovernanceRequest(server, http.MethodPost,
		"/api/kdoms/"+item.ItemID+"/collaboration-requests/"+submitted.Request.RequestID+"/approve", "user-2", "")
	if forbidden.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner review, got %d body=%s", forbidden.Code, forbidden.Body.String())
	}

	approved := doGovernanceRequest(server, http.MethodPost,
		"/api/kdoms/"+item.ItemID+"/collaboration-requests/"+submitted.Request.RequestID+"/approve", "user-1", "")
	if approved.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", approved.Code, approved.Body.String())
	}

	removed := doGovernanceRequest(server, http.MethodDelete, "/api/kdoms/"+item.ItemID+"/collaborators/user-2", "user-1", "")
	if removed.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", removed.Code, removed.Body.String())
	}
	again := doGovernanceRequest(server, http.MethodDelete, "/api/kdoms/"+item.ItemID+"/collaborators/user-2", "user-1", "")
	if again.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", again.Code, again.Body.String())
	}
}

func TestAuditQueryRequiresModerator(t *testing.T) {
	server := newTestServer()
	createTestItem(t, server, "user-1", "Security")

	denied := doGovernanceRequest(server, http.MethodGet, "/api/audit", "user-2", "")
	if denied.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", denied.Code, denied.Body.String())
	}

	rr := doGovernanceRequest(server, http.MethodGet, "/api/audit?action=create&limit=10", "admin-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var page governancehttp.AuditPageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode audit page: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected one create entry, got %d", page.Total)
	}
}

func TestAuditQueryRejectsBadTimestamp(t *testing.T) {
	server := newTestServer()
	rr := doGovernanceRequest(server, http.MethodGet, "/api/audit?from=yesterday", "admin-1", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTrendingRejectsOutOfRangeWindow(t *testing.T) {
	server := newTestServer()
	rr := doGovernanceRequest(server, http.MethodGet, "/api/scoring/trending?days=400", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := decodeErrorCode(t, rr); code != "INVALID_WINDOW" {
		t.Fatalf("expected INVALID_WINDOW, got %s", code)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	server := newTestServer()
	for _, path := range []string{"/healthz", "/metrics"} {
		rr := doGovernanceRequest(server, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}
