package governanceservice

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"kdom/contexts/content-governance/governance-service/adapters/memory"
	"kdom/contexts/content-governance/governance-service/application/queries"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/ports"
	httptransport "kdom/contexts/content-governance/governance-service/transport/http"
)

var testEpoch = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestModule(t *testing.T) Module {
	t.Helper()
	module := NewInMemoryModule(memory.Seed{
		Users: []memory.User{
			{UserID: "1", Username: "owner", Role: entities.RoleUser},
			{UserID: "7", Username: "mod", Role: entities.RoleModerator},
			{UserID: "9", Username: "helper", Role: entities.RoleUser},
			{UserID: "42", Username: "root", Role: entities.RoleAdmin},
		},
	}, nil)
	module.Store.SetClock(testEpoch)
	return module
}

func createItem(t *testing.T, module Module, ownerID string, title string, parentID *string) httptransport.ContentItemDTO {
	t.Helper()
	resp, err := module.Handler.CreateItemHandler(context.Background(), ownerID, httptransport.CreateItemRequest{
		Title:    title,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create item %q: %v", title, err)
	}
	return resp.Item
}

func TestEndToEndModerationAndCollaboration(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	item := createItem(t, module, "1", "Quantum Computing", nil)
	if item.Status != string(entities.ModerationStatusPending) {
		t.Fatalf("expected pending item, got %s", item.Status)
	}

	module.Store.AdvanceClock(8 * 24 * time.Hour)
	priority, err := module.Handler.PriorityHandler(ctx, item.ItemID)
	if err != nil {
		t.Fatalf("priority: %v", err)
	}
	if priority.Priority != string(entities.PriorityUrgent) {
		t.Fatalf("expected urgent, got %s", priority.Priority)
	}

	approved, err := module.Handler.ModerateHandler(ctx, "7", item.ItemID, "approve", httptransport.ModerationRequest{})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Item.Status != string(entities.ModerationStatusApproved) || approved.Item.ModeratedAt == "" {
		t.Fatalf("expected approved item with moderated_at, got %+v", approved.Item)
	}

	approvals := 0
	for _, entry := range module.Store.AuditEntries() {
		if entry.Action == entities.AuditActionApprove && entry.TargetID == item.ItemID {
			approvals++
			if entry.Actor() != "7" {
				t.Fatalf("expected actor 7, got %q", entry.Actor())
			}
		}
	}
	if approvals != 1 {
		t.Fatalf("expected exactly one approve entry, got %d", approvals)
	}

	submitted, err := module.Handler.SubmitRequestHandler(ctx, "9", item.ItemID, httptransport.SubmitCollaborationRequest{Message: "happy to help"})
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	if _, err := module.Handler.ReviewRequestHandler(ctx, "1", item.ItemID, submitted.Request.RequestID, true, httptransport.ReviewCollaborationRequest{}); err != nil {
		t.Fatalf("approve request: %v", err)
	}

	current, err := module.Handler.GetItemHandler(ctx, item.ItemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if len(current.Item.Collaborators) != 1 || current.Item.Collaborators[0] != "9" {
		t.Fatalf("expected collaborators {9}, got %v", current.Item.Collaborators)
	}
}

func TestModerationSecondDecisionConflicts(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	item := createItem(t, module, "1", "Topology", nil)

	if _, err := module.Handler.ModerateHandler(ctx, "7", item.ItemID, "reject", httptransport.ModerationRequest{Reason: "off topic"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := module.Handler.ModerateHandler(ctx, "7", item.ItemID, "approve", httptransport.ModerationRequest{})
	if !errors.Is(err, domainerrors.ErrAlreadyModerated) {
		t.Fatalf("expected already moderated, got %v", err)
	}
	if domainerrors.KindOf(err) != domainerrors.ErrConflict {
		t.Fatalf("expected conflict kind, got %v", domainerrors.KindOf(err))
	}
}

func TestConcurrentApprovalsApplyOnce(t *testing.T) {
	module := newTestModule(t)
	item := createItem(t, module, "1", "Race Conditions", nil)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Handler.ModerateHandler(context.Background(), "7", item.ItemID, "approve", httptransport.ModerationRequest{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domainerrors.ErrAlreadyModerated):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != callers-1 {
		t.Fatalf("expected one success and %d conflicts, got %d/%d", callers-1, successes, conflicts)
	}
}

func TestBulkModerationIsolatesFailures(t *testing.T) {
	module := newTestModule(t)
	ids := make([]string, 0, 5)
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		ids = append(ids, createItem(t, module, "1", title, nil).ItemID)
	}
	ids = append(ids[:2], append([]string{"does-not-exist"}, ids[2:]...)...)

	resp, err := module.Handler.BulkModerateHandler(context.Background(), "7", httptransport.BulkModerationRequest{
		ItemIDs: ids,
		Action:  "approve",
	})
	if err != nil {
		t.Fatalf("bulk moderate: %v", err)
	}
	if resp.Processed != 5 || resp.SucceededCount != 4 || resp.FailedCount != 1 {
		t.Fatalf("expected 4/1 split, got %+v", resp)
	}
	for index, result := range resp.Items {
		if result.ItemID != ids[index] {
			t.Fatalf("results must keep input order: %d=%s", index, result.ItemID)
		}
	}
	if failed := resp.Items[2]; failed.Success || failed.ErrorKind != "not_found" {
		t.Fatalf("expected not_found failure at index 2, got %+v", failed)
	}
}

func TestBulkModerationRejectsInvalidBatch(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	_, err := module.Handler.BulkModerateHandler(ctx, "7", httptransport.BulkModerationRequest{ItemIDs: []string{"a"}, Action: "force_delete", Reason: "x"})
	if !errors.Is(err, domainerrors.ErrInvalidBulkAction) {
		t.Fatalf("expected invalid bulk action, got %v", err)
	}
	_, err = module.Handler.BulkModerateHandler(ctx, "7", httptransport.BulkModerationRequest{ItemIDs: []string{"a"}, Action: "reject"})
	if !errors.Is(err, domainerrors.ErrReasonRequired) {
		t.Fatalf("expected reason required, got %v", err)
	}
	_, err = module.Handler.BulkModerateHandler(ctx, "9", httptransport.BulkModerationRequest{ItemIDs: []string{"a"}, Action: "approve"})
	if !errors.Is(err, domainerrors.ErrModeratorRequired) {
		t.Fatalf("expected moderator required, got %v", err)
	}
}

func TestCollaboratorSetStaysUniqueAcrossLegacyRequests(t *testing.T) {
	moderatedAt := testEpoch.Add(time.Hour)
	module := NewInMemoryModule(memory.Seed{
		Users: []memory.User{
			{UserID: "1", Username: "owner", Role: entities.RoleUser},
			{UserID: "9", Username: "helper", Role: entities.RoleUser},
		},
		Items: []entities.ContentItem{{
			ItemID:        "item-1",
			Title:         "Legacy",
			Slug:          "legacy",
			OwnerID:       "1",
			Collaborators: []string{},
			Status:        entities.ModerationStatusApproved,
			CreatedAt:     testEpoch,
			ModeratedAt:   &moderatedAt,
		}},
		Requests: []entities.CollaborationRequest{
			{RequestID: "req-a", ItemID: "item-1", RequesterID: "9", Status: entities.RequestStatusPending, CreatedAt: testEpoch},
			{RequestID: "req-b", ItemID: "item-1", RequesterID: "9", Status: entities.RequestStatusPending, CreatedAt: testEpoch},
		},
	}, nil)
	ctx := context.Background()

	for _, requestID := range []string{"req-a", "req-b"} {
		if _, err := module.Handler.ReviewRequestHandler(ctx, "1", "item-1", requestID, true, httptransport.ReviewCollaborationRequest{}); err != nil {
			t.Fatalf("approve %s: %v", requestID, err)
		}
	}
	_, err := module.Handler.ReviewRequestHandler(ctx, "1", "item-1", "req-a", true, httptransport.ReviewCollaborationRequest{})
	if !errors.Is(err, domainerrors.ErrRequestAlreadyReviewed) {
		t.Fatalf("expected already reviewed, got %v", err)
	}

	item, err := module.Handler.GetItemHandler(ctx, "item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if len(item.Item.Collaborators) != 1 || item.Item.Collaborators[0] != "9" {
		t.Fatalf("expected a single collaborator entry, got %v", item.Item.Collaborators)
	}
}

func TestSubmitRequestPreconditions(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	item := createItem(t, module, "1", "Category Theory", nil)

	_, err := module.Handler.SubmitRequestHandler(ctx, "9", item.ItemID, httptransport.SubmitCollaborationRequest{})
	if !errors.Is(err, domainerrors.ErrItemNotApproved) {
		t.Fatalf("expected item not approved, got %v", err)
	}
	if _, err := module.Handler.ModerateHandler(ctx, "7", item.ItemID, "approve", httptransport.ModerationRequest{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = module.Handler.SubmitRequestHandler(ctx, "1", item.ItemID, httptransport.SubmitCollaborationRequest{})
	if !errors.Is(err, domainerrors.ErrOwnerCannotRequest) {
		t.Fatalf("expected owner cannot request, got %v", err)
	}
	if _, err := module.Handler.SubmitRequestHandler(ctx, "9", item.ItemID, httptransport.SubmitCollaborationRequest{}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err = module.Handler.SubmitRequestHandler(ctx, "9", item.ItemID, httptransport.SubmitCollaborationRequest{})
	if !errors.Is(err, domainerrors.ErrDuplicatePendingRequest) {
		t.Fatalf("expected duplicate pending, got %v", err)
	}

	received, err := module.Handler.ReceivedRequestsHandler(ctx, "1")
	if err != nil {
		t.Fatalf("received: %v", err)
	}
	if received.PendingCount != 1 || len(received.Groups) != 1 || received.Groups[0].ItemID != item.ItemID {
		t.Fatalf("unexpected received groups %+v", received)
	}
}

func TestHierarchyNavigation(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	root := createItem(t, module, "1", "Science", nil)
	physics := createItem(t, module, "1", "Physics", &root.ItemID)
	createItem(t, module, "1", "Chemistry", &root.ItemID)
	optics := createItem(t, module, "1", "Optics", &physics.ItemID)

	ancestors, err := module.Handler.ListAncestorsHandler(ctx, optics.ItemID)
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	if ancestors.Count != 2 || ancestors.Items[0].ItemID != root.ItemID || ancestors.Items[1].ItemID != physics.ItemID {
		t.Fatalf("expected root-first chain, got %+v", ancestors.Items)
	}

	siblings, err := module.Handler.ListSiblingsHandler(ctx, physics.ItemID)
	if err != nil {
		t.Fatalf("siblings: %v", err)
	}
	if siblings.Count != 1 || siblings.Items[0].Title != "Chemistry" {
		t.Fatalf("unexpected siblings %+v", siblings.Items)
	}

	_, err = module.Handler.ReparentItemHandler(ctx, "1", root.ItemID, httptransport.ReparentItemRequest{ParentID: &optics.ItemID})
	if !errors.Is(err, domainerrors.ErrCycleDetected) {
		t.Fatalf("expected cycle detected, got %v", err)
	}
	_, err = module.Handler.ReparentItemHandler(ctx, "9", optics.ItemID, httptransport.ReparentItemRequest{})
	if !errors.Is(err, domainerrors.ErrEditForbidden) {
		t.Fatalf("expected edit forbidden, got %v", err)
	}
	moved, err := module.Handler.ReparentItemHandler(ctx, "1", optics.ItemID, httptransport.ReparentItemRequest{})
	if err != nil {
		t.Fatalf("detach to root: %v", err)
	}
	if moved.Item.ParentID != nil {
		t.Fatalf("expected root item, got parent %v", *moved.Item.ParentID)
	}
}

func TestDuplicateTitlesGetDistinctSlugs(t *testing.T) {
	module := newTestModule(t)
	first := createItem(t, module, "1", "Graph Theory", nil)
	second := createItem(t, module, "1", "Graph Theory", nil)
	if first.Slug != "graph-theory" || second.Slug != "graph-theory-2" {
		t.Fatalf("unexpected slugs %q and %q", first.Slug, second.Slug)
	}

	stored, err := module.Handler.GetItemHandler(context.Background(), second.ItemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if stored.Item.Slug != second.Slug {
		t.Fatalf("response slug %q differs from stored slug %q", second.Slug, stored.Item.Slug)
	}

	published := map[string]string{}
	for _, envelope := range decodeOutbox(t, module.Store) {
		attributes, err := envelope.Attributes()
		if err != nil {
			t.Fatalf("decode attributes: %v", err)
		}
		published[envelope.PartitionKey] = attributes["slug"]
	}
	if published[first.ItemID] != "graph-theory" || published[second.ItemID] != "graph-theory-2" {
		t.Fatalf("created events carry wrong slugs: %v", published)
	}
}

func TestDeniedActionsAreAudited(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	item := createItem(t, module, "1", "Cryptography", nil)

	_, err := module.Handler.ModerateHandler(ctx, "9", item.ItemID, "force_delete", httptransport.ModerationRequest{Reason: "spam"})
	if !errors.Is(err, domainerrors.ErrAdminRequired) {
		t.Fatalf("expected admin required, got %v", err)
	}

	page, err := module.Handler.QueryAuditHandler(ctx, queries.AuditQuery{
		RequesterID: "42",
		Actions:     []entities.AuditAction{entities.AuditActionAuthorizationDenied},
	})
	if err != nil {
		t.Fatalf("query audit: %v", err)
	}
	if page.Total != 1 || page.Entries[0].ActorID == nil || *page.Entries[0].ActorID != "9" {
		t.Fatalf("expected one denial by user 9, got %+v", page)
	}

	last, err := module.Handler.LastActionHandler(ctx, "42", item.ItemID, nil)
	if err != nil {
		t.Fatalf("last action: %v", err)
	}
	if last.Entry.TargetID != item.ItemID {
		t.Fatalf("unexpected last action %+v", last.Entry)
	}
}

func TestAuditReadsFollowPolicyTable(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	item := createItem(t, module, "1", "Topology", nil)
	if _, err := module.Handler.ModerateHandler(ctx, "7", item.ItemID, "reject", httptransport.ModerationRequest{Reason: "internal moderator note"}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := module.Handler.LastActionHandler(ctx, "9", item.ItemID, nil); !errors.Is(err, domainerrors.ErrModeratorRequired) {
		t.Fatalf("plain user must not read last action, got %v", err)
	}
	if _, err := module.Handler.LastActionHandler(ctx, "", item.ItemID, nil); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("anonymous last action lookup must be rejected, got %v", err)
	}
	if _, err := module.Handler.ModeratorActivityHandler(ctx, "9", 30, 10); !errors.Is(err, domainerrors.ErrModeratorRequired) {
		t.Fatalf("plain user must not read moderator activity, got %v", err)
	}
	if _, err := module.Handler.ModeratorActivityHandler(ctx, "", 30, 10); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("anonymous moderator activity must be rejected, got %v", err)
	}

	last, err := module.Handler.LastActionHandler(ctx, "7", item.ItemID, []string{string(entities.AuditActionReject)})
	if err != nil {
		t.Fatalf("moderator last action: %v", err)
	}
	if last.Entry.Action != string(entities.AuditActionReject) || last.Entry.Details != "internal moderator note" {
		t.Fatalf("unexpected last action %+v", last.Entry)
	}
	activity, err := module.Handler.ModeratorActivityHandler(ctx, "42", 30, 10)
	if err != nil {
		t.Fatalf("admin moderator activity: %v", err)
	}
	if len(activity.Moderators) != 1 || activity.Moderators[0].Rejected != 1 {
		t.Fatalf("unexpected activity %+v", activity.Moderators)
	}

	denials := 0
	for _, entry := range module.Store.AuditEntries() {
		if entry.Action == entities.AuditActionAuthorizationDenied && entry.Actor() == "9" {
			denials++
		}
	}
	if denials != 2 {
		t.Fatalf("expected both denied reads audited, got %d", denials)
	}
}

func TestUnknownCallerIsUnauthorized(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	item := createItem(t, module, "1", "Set Theory", nil)

	_, err := module.Handler.ModerateHandler(ctx, "ghost", item.ItemID, "approve", httptransport.ModerationRequest{})
	if !errors.Is(err, domainerrors.ErrModeratorRequired) || !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown caller, got %v", err)
	}
	if errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("unknown caller must not surface as not found")
	}
	if _, err := module.Handler.ReparentItemHandler(ctx, "ghost", item.ItemID, httptransport.ReparentItemRequest{}); !errors.Is(err, domainerrors.ErrEditForbidden) {
		t.Fatalf("expected edit forbidden for unknown caller, got %v", err)
	}
}

func TestForceDeleteRemovesItemAndDetachesChildren(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	parent := createItem(t, module, "1", "Alchemy", nil)
	child := createItem(t, module, "1", "Transmutation", &parent.ItemID)

	resp, err := module.Handler.ModerateHandler(ctx, "42", parent.ItemID, "force_delete", httptransport.ModerationRequest{Reason: "pseudoscience"})
	if err != nil {
		t.Fatalf("force delete: %v", err)
	}
	if !resp.Removed {
		t.Fatalf("expected removal")
	}
	if _, err := module.Handler.GetItemHandler(ctx, parent.ItemID); !errors.Is(err, domainerrors.ErrItemNotFound) {
		t.Fatalf("expected removed item to be gone, got %v", err)
	}
	orphan, err := module.Handler.GetItemHandler(ctx, child.ItemID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if orphan.Item.ParentID != nil {
		t.Fatalf("expected child detached to root")
	}

	var parentEvents []string
	for _, envelope := range decodeOutbox(t, module.Store) {
		if envelope.EventType == ports.EventNotificationRequested {
			if envelope.PartitionKey != "1" || envelope.PartitionKeyPath != "user_id" {
				t.Fatalf("notification must be keyed by owner, got %+v", envelope)
			}
			attributes, err := envelope.Attributes()
			if err != nil || attributes["type"] != "kdom_force_deleted" || attributes["target_id"] != parent.ItemID {
				t.Fatalf("unexpected notification attributes %v (%v)", attributes, err)
			}
			parentEvents = append(parentEvents, envelope.EventType)
			continue
		}
		if envelope.PartitionKey == parent.ItemID {
			parentEvents = append(parentEvents, envelope.EventType)
		}
	}
	want := []string{"kdom.item.created", ports.EventNotificationRequested, "kdom.item.deleted"}
	if strings.Join(parentEvents, ",") != strings.Join(want, ",") {
		t.Fatalf("expected events %v, got %v", want, parentEvents)
	}

	publisher := &recordingPublisher{}
	relay := module.Relay
	relay.Publisher = publisher
	relay.Topic = "kdom.test.events"
	relay.NotificationTopic = "kdom.test.notifications"
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay: %v", err)
	}
	for i, event := range publisher.events {
		wantTopic := "kdom.test.events"
		if event.EventType == ports.EventNotificationRequested {
			wantTopic = "kdom.test.notifications"
		}
		if publisher.topics[i] != wantTopic {
			t.Fatalf("%s routed to %s, expected %s", event.EventType, publisher.topics[i], wantTopic)
		}
	}
}

type failingModerationStore struct {
	*memory.Store
}

func (failingModerationStore) ApplyModeration(context.Context, ports.ModerationMutation) (entities.ContentItem, error) {
	return entities.ContentItem{}, errors.New("write transaction aborted")
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []ports.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification)
	return nil
}

func TestForceDeleteDoesNotNotifyWhenRemovalFails(t *testing.T) {
	store := memory.NewStore(memory.Seed{Users: []memory.User{
		{UserID: "1", Username: "owner", Role: entities.RoleUser},
		{UserID: "42", Username: "root", Role: entities.RoleAdmin},
	}}, nil)
	store.SetClock(testEpoch)
	notifier := &recordingNotifier{}
	module := NewModule(Dependencies{
		Items:          failingModerationStore{store},
		Collaborations: store,
		Audit:          store,
		Outbox:         store,
		Users:          store,
		Signals:        store,
		SignalRecorder: store,
		Notifier:       notifier,
		Clock:          store,
		IDGenerator:    store,
	})
	module.Store = store
	ctx := context.Background()
	item := createItem(t, module, "1", "Numerology", nil)

	if _, err := module.Handler.ModerateHandler(ctx, "42", item.ItemID, "force_delete", httptransport.ModerationRequest{Reason: "pseudoscience"}); err == nil {
		t.Fatalf("expected force delete to fail")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("owner must not be notified of a removal that did not happen: %+v", notifier.calls)
	}
	for _, envelope := range decodeOutbox(t, store) {
		if envelope.EventType != "kdom.item.created" {
			t.Fatalf("unexpected outbox event %s after failed removal", envelope.EventType)
		}
	}
	if _, err := module.Handler.GetItemHandler(ctx, item.ItemID); err != nil {
		t.Fatalf("item must survive a failed removal: %v", err)
	}
}

func TestRejectAndDeleteAuditsBothStepsAndDetachesChildren(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	parent := createItem(t, module, "1", "Phrenology", nil)
	child := createItem(t, module, "1", "Skull Maps", &parent.ItemID)

	if _, err := module.Handler.ModerateHandler(ctx, "7", parent.ItemID, "reject_and_delete", httptransport.ModerationRequest{}); !errors.Is(err, domainerrors.ErrReasonRequired) {
		t.Fatalf("expected reason required, got %v", err)
	}
	resp, err := module.Handler.ModerateHandler(ctx, "7", parent.ItemID, "reject_and_delete", httptransport.ModerationRequest{Reason: "discredited"})
	if err != nil {
		t.Fatalf("reject and delete: %v", err)
	}
	if !resp.Removed || resp.Item.Status != string(entities.ModerationStatusRejected) {
		t.Fatalf("expected removed rejected item, got %+v", resp)
	}

	var actions []string
	for _, entry := range module.Store.AuditEntries() {
		if entry.TargetID != parent.ItemID {
			continue
		}
		actions = append(actions, string(entry.Action))
		switch entry.Action {
		case entities.AuditActionReject:
			if entry.Details != "discredited" || entry.Actor() != "7" {
				t.Fatalf("reject entry must keep reason and actor, got %+v", entry)
			}
		case entities.AuditActionDelete:
			if !strings.Contains(entry.Details, "discredited") {
				t.Fatalf("delete entry must keep reason, got %q", entry.Details)
			}
		}
	}
	if strings.Join(actions, ",") != "create,reject,delete" {
		t.Fatalf("expected audit sequence create,reject,delete, got %v", actions)
	}

	if _, err := module.Handler.GetItemHandler(ctx, parent.ItemID); !errors.Is(err, domainerrors.ErrItemNotFound) {
		t.Fatalf("expected removed item to be gone, got %v", err)
	}
	orphan, err := module.Handler.GetItemHandler(ctx, child.ItemID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if orphan.Item.ParentID != nil {
		t.Fatalf("expected child detached to root")
	}
	if _, err := module.Handler.ModerateHandler(ctx, "7", parent.ItemID, "reject_and_delete", httptransport.ModerationRequest{Reason: "again"}); !errors.Is(err, domainerrors.ErrItemNotFound) {
		t.Fatalf("expected second removal to find nothing, got %v", err)
	}
}

func TestBulkRejectAndDelete(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	first := createItem(t, module, "1", "Astrology", nil)
	second := createItem(t, module, "1", "Dowsing", nil)
	if _, err := module.Handler.ModerateHandler(ctx, "7", second.ItemID, "approve", httptransport.ModerationRequest{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	resp, err := module.Handler.BulkModerateHandler(ctx, "7", httptransport.BulkModerationRequest{
		ItemIDs: []string{first.ItemID, second.ItemID},
		Action:  "reject_and_delete",
		Reason:  "off topic",
	})
	if err != nil {
		t.Fatalf("bulk reject and delete: %v", err)
	}
	if resp.SucceededCount != 1 || resp.FailedCount != 1 {
		t.Fatalf("expected 1/1 split, got %+v", resp)
	}
	if !resp.Items[0].Success || resp.Items[1].Success || resp.Items[1].ErrorKind != "conflict" {
		t.Fatalf("expected pending item removed and approved item to conflict, got %+v", resp.Items)
	}
	if _, err := module.Handler.GetItemHandler(ctx, first.ItemID); !errors.Is(err, domainerrors.ErrItemNotFound) {
		t.Fatalf("expected first item removed, got %v", err)
	}
	if _, err := module.Handler.GetItemHandler(ctx, second.ItemID); err != nil {
		t.Fatalf("approved item must survive: %v", err)
	}

	var removed []string
	for _, entry := range module.Store.AuditEntries() {
		if entry.TargetID == first.ItemID && entry.Action != entities.AuditActionCreate {
			removed = append(removed, string(entry.Action))
		}
	}
	if strings.Join(removed, ",") != "reject,delete" {
		t.Fatalf("expected reject then delete for bulk removal, got %v", removed)
	}
}

func decodeOutbox(t *testing.T, store *memory.Store) []ports.EventEnvelope {
	t.Helper()
	envelopes := make([]ports.EventEnvelope, 0)
	for _, message := range store.OutboxEvents() {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			t.Fatalf("decode outbox payload: %v", err)
		}
		envelopes = append(envelopes, envelope)
	}
	return envelopes
}

func TestTrendingAndModeratorActivity(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	quiet := createItem(t, module, "1", "Quiet", nil)
	busy := createItem(t, module, "1", "Busy", nil)
	for _, id := range []string{quiet.ItemID, busy.ItemID} {
		if _, err := module.Handler.ModerateHandler(ctx, "7", id, "approve", httptransport.ModerationRequest{}); err != nil {
			t.Fatalf("approve %s: %v", id, err)
		}
	}

	for _, kind := range []string{"posts", "comments", "comments", "follows"} {
		if _, err := module.Handler.RecordSignalHandler(ctx, busy.ItemID, httptransport.RecordSignalRequest{Kind: kind}); err != nil {
			t.Fatalf("record %s: %v", kind, err)
		}
	}
	if _, err := module.Handler.RecordSignalHandler(ctx, quiet.ItemID, httptransport.RecordSignalRequest{Kind: "edits"}); err != nil {
		t.Fatalf("record edit: %v", err)
	}
	if _, err := module.Handler.RecordSignalHandler(ctx, quiet.ItemID, httptransport.RecordSignalRequest{Kind: "likes"}); !errors.Is(err, domainerrors.ErrInvalidSignalKind) {
		t.Fatalf("expected invalid signal kind, got %v", err)
	}

	score, err := module.Handler.TrendingScoreHandler(ctx, busy.ItemID, 7)
	if err != nil {
		t.Fatalf("trending score: %v", err)
	}
	if score.Item.Score != 3+2*2+2 {
		t.Fatalf("unexpected score %d", score.Item.Score)
	}

	list, err := module.Handler.ListTrendingHandler(ctx, 7, 10, "")
	if err != nil {
		t.Fatalf("list trending: %v", err)
	}
	if len(list.Items) == 0 || list.Items[0].ItemID != busy.ItemID {
		t.Fatalf("expected busy item first, got %+v", list.Items)
	}
	if _, err := module.Handler.ListTrendingHandler(ctx, 0, 10, ""); !errors.Is(err, domainerrors.ErrInvalidWindow) {
		t.Fatalf("expected invalid window, got %v", err)
	}

	activity, err := module.Handler.ModeratorActivityHandler(ctx, "7", 30, 5)
	if err != nil {
		t.Fatalf("moderator activity: %v", err)
	}
	if len(activity.Moderators) != 1 || activity.Moderators[0].ModeratorID != "7" || activity.Moderators[0].Approved != 2 {
		t.Fatalf("unexpected activity %+v", activity.Moderators)
	}
}

func TestDashboardSummarizesQueue(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	createItem(t, module, "1", "Old", nil)
	module.Store.AdvanceClock(4 * 24 * time.Hour)
	createItem(t, module, "1", "New", nil)

	dashboard, err := module.Handler.DashboardHandler(ctx, "7")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.PendingCount != 2 {
		t.Fatalf("expected two pending, got %d", dashboard.PendingCount)
	}
	if dashboard.PriorityCounts[string(entities.PriorityHigh)] != 1 || dashboard.PriorityCounts[string(entities.PriorityLow)] != 1 {
		t.Fatalf("unexpected priority counts %v", dashboard.PriorityCounts)
	}
	if dashboard.Queue[0].Item.Title != "Old" {
		t.Fatalf("expected oldest first, got %s", dashboard.Queue[0].Item.Title)
	}

	if _, err := module.Handler.DashboardHandler(ctx, "9"); !errors.Is(err, domainerrors.ErrModeratorRequired) {
		t.Fatalf("expected moderator required, got %v", err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []ports.EventEnvelope
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestOutboxRelayPublishesCommittedEvents(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	item := createItem(t, module, "1", "Event Sourcing", nil)
	if _, err := module.Handler.ModerateHandler(ctx, "7", item.ItemID, "approve", httptransport.ModerationRequest{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	publisher := &recordingPublisher{}
	relay := module.Relay
	relay.Outbox = module.Store
	relay.Publisher = publisher
	relay.Topic = "kdom.test.events"

	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected create and approve events, got %d", len(publisher.events))
	}
	if publisher.events[0].EventType != "kdom.item.created" || publisher.events[1].EventType != "kdom.item.approved" {
		t.Fatalf("unexpected event order %s, %s", publisher.events[0].EventType, publisher.events[1].EventType)
	}
	if publisher.topics[0] != "kdom.test.events" {
		t.Fatalf("unexpected topic %s", publisher.topics[0])
	}

	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("second relay: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("sent events must not be republished, got %d", len(publisher.events))
	}
}
