package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

type User struct {
	UserID   string
	Username string
	Role     entities.Role
}

// Seed preloads state. Requests are inserted as-is, without the
// one-pending-per-requester check, so tests can stage legacy data.
type Seed struct {
	Users    []User
	Items    []entities.ContentItem
	Requests []entities.CollaborationRequest
}

type signal struct {
	kind   entities.SignalKind
	itemID string
	at     time.Time
}

// Store is an in-memory adapter implementing the governance ports for local
// runtime and tests. It is not intended as production persistence.
type Store struct {
	mu           sync.RWMutex
	items        map[string]entities.ContentItem
	requests     map[string]entities.CollaborationRequest
	requestOrder []string
	audit        []entities.AuditEntry
	outbox       map[string]ports.OutboxMessage
	outboxOrder  []string
	outboxSent   map[string]time.Time
	users        map[string]User
	signals      []signal
	clockBase    time.Time
	clockOffset  time.Duration
	sequence     uint64
	logger       *slog.Logger
}

func NewStore(seed Seed, logger *slog.Logger) *Store {
	s := &Store{
		items:       make(map[string]entities.ContentItem, len(seed.Items)),
		requests:    make(map[string]entities.CollaborationRequest, len(seed.Requests)),
		outbox:      make(map[string]ports.OutboxMessage),
		outboxSent:  make(map[string]time.Time),
		users:       make(map[string]User, len(seed.Users)),
		logger:      application.ResolveLogger(logger),
		audit:       make([]entities.AuditEntry, 0),
		outboxOrder: make([]string, 0),
	}
	for _, user := range seed.Users {
		s.users[user.UserID] = user
	}
	for _, item := range seed.Items {
		item.Collaborators = append([]string(nil), item.Collaborators...)
		s.items[item.ItemID] = item
	}
	for _, request := range seed.Requests {
		s.requests[request.RequestID] = request
		s.requestOrder = append(s.requestOrder, request.RequestID)
	}
	return s
}

func (s *Store) CreateItem(_ context.Context, item entities.ContentItem, audit entities.AuditEntry, event ports.GovernanceEvent) (entities.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A single mutex critical section approximates transactional semantics:
	// item insert, audit append and outbox append succeed or fail together.
	if _, exists := s.items[item.ItemID]; exists {
		return entities.ContentItem{}, domainerrors.ErrRepositoryInvariantBroke
	}
	if item.ParentID != nil {
		parent, ok := s.items[*item.ParentID]
		if !ok || parent.Deleted {
			return entities.ContentItem{}, domainerrors.ErrParentNotFound
		}
	}

	item.Slug = s.uniqueSlugLocked(item.Slug)
	event = event.WithAttribute("slug", item.Slug)
	payload, err := encodeEvent(event)
	if err != nil {
		return entities.ContentItem{}, err
	}
	item.Collaborators = append([]string{}, item.Collaborators...)
	s.items[item.ItemID] = item
	s.audit = append(s.audit, audit)
	s.appendOutboxLocked(event, payload)

	s.logger.Info("item persisted in memory store",
		"event", "memory_create_item",
		"module", "content-governance/governance-service",
		"layer", "adapter",
		"item_id", item.ItemID,
		"slug", item.Slug,
		"outbox_event_id", event.EventID,
	)
	return cloneItem(item), nil
}

func (s *Store) GetItem(_ context.Context, itemID string) (entities.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return entities.ContentItem{}, domainerrors.ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (s *Store) ListChildren(_ context.Context, parentID *string) ([]entities.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := make([]entities.ContentItem, 0)
	for _, item := range s.items {
		if item.Deleted {
			continue
		}
		switch {
		case parentID == nil && item.ParentID == nil:
		case parentID != nil && item.ParentID != nil && *item.ParentID == *parentID:
		default:
			continue
		}
		children = append(children, cloneItem(item))
	}
	sortItems(children)
	return children, nil
}

func (s *Store) ListItems(_ context.Context, filter ports.ItemFilter) ([]entities.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wanted map[string]struct{}
	if len(filter.ItemIDs) > 0 {
		wanted = make(map[string]struct{}, len(filter.ItemIDs))
		for _, id := range filter.ItemIDs {
			wanted[id] = struct{}{}
		}
	}

	out := make([]entities.ContentItem, 0)
	for _, item := range s.items {
		if item.Deleted {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[item.ItemID]; !ok {
				continue
			}
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.OwnerID != "" && item.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.ModeratedSince != nil {
			if item.ModeratedAt == nil || item.ModeratedAt.Before(*filter.ModeratedSince) {
				continue
			}
		}
		out = append(out, cloneItem(item))
	}
	sortItems(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) UpdateParent(
	_ context.Context,
	itemID string,
	parentID *string,
	audit entities.AuditEntry,
	event ports.GovernanceEvent,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || item.Deleted {
		return domainerrors.ErrItemNotFound
	}
	// Re-check under the lock so two concurrent moves cannot close a cycle.
	if err := services.ValidateParentAssignment(itemID, parentID, s.parentLookupLocked); err != nil {
		return err
	}
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	if parentID != nil {
		value := *parentID
		item.ParentID = &value
	} else {
		item.ParentID = nil
	}
	s.items[itemID] = item
	s.audit = append(s.audit, audit)
	s.appendOutboxLocked(event, payload)
	return nil
}

func (s *Store) ApplyModeration(_ context.Context, mutation ports.ModerationMutation) (entities.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[mutation.ItemID]
	if !ok || item.Deleted {
		return entities.ContentItem{}, domainerrors.ErrItemNotFound
	}
	// compare-and-set on the status precondition
	if mutation.ExpectedStatus != "" && item.Status != mutation.ExpectedStatus {
		return entities.ContentItem{}, domainerrors.ErrAlreadyModerated
	}

	payloads := make([][]byte, 0, len(mutation.Events))
	for _, event := range mutation.Events {
		payload, err := encodeEvent(event)
		if err != nil {
			return entities.ContentItem{}, err
		}
		payloads = append(payloads, payload)
	}

	if mutation.Status != "" {
		item.Status = mutation.Status
		moderatedAt := mutation.ModeratedAt.UTC()
		item.ModeratedAt = &moderatedAt
		item.ModeratedBy = mutation.ModeratedBy
		if mutation.Status == entities.ModerationStatusRejected {
			item.RejectionReason = mutation.RejectionReason
		}
	}
	s.audit = append(s.audit, mutation.Audit...)
	for i, event := range mutation.Events {
		s.appendOutboxLocked(event, payloads[i])
	}

	if mutation.Remove {
		item.Deleted = true
		delete(s.items, item.ItemID)
		for id, child := range s.items {
			if child.ParentID != nil && *child.ParentID == item.ItemID {
				child.ParentID = nil
				s.items[id] = child
			}
		}
	} else {
		s.items[item.ItemID] = item
	}

	s.logger.Info("moderation applied in memory store",
		"event", "memory_apply_moderation",
		"module", "content-governance/governance-service",
		"layer", "adapter",
		"item_id", item.ItemID,
		"status", string(item.Status),
		"removed", mutation.Remove,
		"audit_count", len(mutation.Audit),
	)
	return cloneItem(item), nil
}

func (s *Store) CreateRequest(
	_ context.Context,
	request entities.CollaborationRequest,
	audit entities.AuditEntry,
	event ports.GovernanceEvent,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[request.RequestID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	for _, existing := range s.requests {
		if existing.ItemID == request.ItemID &&
			existing.RequesterID == request.RequesterID &&
			existing.IsPending() {
			return domainerrors.ErrDuplicatePendingRequest
		}
	}
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	s.requests[request.RequestID] = request
	s.requestOrder = append(s.requestOrder, request.RequestID)
	s.audit = append(s.audit, audit)
	s.appendOutboxLocked(event, payload)
	return nil
}

func (s *Store) GetRequest(_ context.Context, requestID string) (entities.CollaborationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.requests[requestID]
	if !ok {
		return entities.CollaborationRequest{}, domainerrors.ErrRequestNotFound
	}
	return request, nil
}

func (s *Store) ListRequestsByRequester(_ context.Context, requesterID string) ([]entities.CollaborationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.CollaborationRequest, 0)
	for _, id := range s.requestOrder {
		if request := s.requests[id]; request.RequesterID == requesterID {
			out = append(out, request)
		}
	}
	sortRequests(out)
	return out, nil
}

func (s *Store) ListRequestsByItems(_ context.Context, itemIDs []string) ([]entities.CollaborationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	out := make([]entities.CollaborationRequest, 0)
	for _, id := range s.requestOrder {
		request := s.requests[id]
		if _, ok := wanted[request.ItemID]; ok {
			out = append(out, request)
		}
	}
	sortRequests(out)
	return out, nil
}

func (s *Store) ReviewRequest(_ context.Context, review ports.RequestReview) (entities.CollaborationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[review.RequestID]
	if !ok || request.ItemID != review.ItemID {
		return entities.CollaborationRequest{}, domainerrors.ErrRequestNotFound
	}
	if !request.IsPending() {
		return entities.CollaborationRequest{}, domainerrors.ErrRequestAlreadyReviewed
	}
	item, ok := s.items[review.ItemID]
	if !ok || item.Deleted {
		return entities.CollaborationRequest{}, domainerrors.ErrItemNotFound
	}
	payload, err := encodeEvent(review.Event)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}

	reviewedAt := review.ReviewedAt.UTC()
	request.Status = review.Status
	request.ReviewerID = review.ReviewerID
	request.ReviewedAt = &reviewedAt
	if review.Status == entities.RequestStatusRejected {
		request.RejectionReason = review.RejectionReason
	}
	s.requests[request.RequestID] = request

	if review.Status == entities.RequestStatusApproved {
		item.Collaborators = item.WithCollaborator(request.RequesterID)
		s.items[item.ItemID] = item
	}
	s.audit = append(s.audit, review.Audit)
	s.appendOutboxLocked(review.Event, payload)
	return request, nil
}

func (s *Store) RemoveCollaborator(
	_ context.Context,
	itemID string,
	userID string,
	audit entities.AuditEntry,
	event ports.GovernanceEvent,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || item.Deleted {
		return domainerrors.ErrItemNotFound
	}
	if !item.HasCollaborator(userID) {
		return domainerrors.ErrNotCollaborator
	}
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}
	item.Collaborators = item.WithoutCollaborator(userID)
	s.items[itemID] = item
	s.audit = append(s.audit, audit)
	s.appendOutboxLocked(event, payload)
	return nil
}

func (s *Store) AppendAudit(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) QueryAudit(_ context.Context, filter ports.AuditFilter) ([]entities.AuditEntry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.AuditEntry, 0)
	for _, entry := range s.audit {
		if matchesAudit(entry, filter) {
			matched = append(matched, entry)
		}
	}
	sortAudit(matched)

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}
	return append([]entities.AuditEntry(nil), matched[start:end]...), total, nil
}

func (s *Store) LastActionFor(_ context.Context, targetID string, actions []entities.AuditAction) (entities.AuditEntry, bool, error) {
	entries, _, err := s.QueryAudit(context.Background(), ports.AuditFilter{
		TargetID: targetID,
		Actions:  actions,
		Limit:    1,
	})
	if err != nil || len(entries) == 0 {
		return entities.AuditEntry{}, false, err
	}
	return entries[0], true, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

func (s *Store) GetRole(_ context.Context, userID string) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return "", domainerrors.ErrUserNotFound
	}
	return user.Role, nil
}

func (s *Store) GetUsername(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return "", domainerrors.ErrUserNotFound
	}
	return user.Username, nil
}

func (s *Store) PutUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user
}

func (s *Store) RecordSignal(_ context.Context, kind entities.SignalKind, itemID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.signals = append(s.signals, signal{kind: kind, itemID: itemID, at: at.UTC()})
	return nil
}

func (s *Store) RecentCounts(_ context.Context, kind entities.SignalKind, windowDays int) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.nowLocked().Add(-time.Duration(windowDays) * 24 * time.Hour)
	counts := make(map[string]int)
	for _, sig := range s.signals {
		if sig.kind != kind || sig.at.Before(since) {
			continue
		}
		counts[sig.itemID]++
	}
	return counts, nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowLocked()
}

// SetClock pins the store clock; AdvanceClock moves it forward.
func (s *Store) SetClock(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clockBase = now.UTC()
	s.clockOffset = 0
}

func (s *Store) AdvanceClock(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clockOffset += delta
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("kdom-%d", value), nil
}

func (s *Store) OutboxEvents() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.OutboxMessage, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		if evt, ok := s.outbox[id]; ok {
			events = append(events, evt)
		}
	}
	return events
}

func (s *Store) AuditEntries() []entities.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.AuditEntry(nil), s.audit...)
}

func (s *Store) nowLocked() time.Time {
	base := s.clockBase
	if base.IsZero() {
		base = time.Now().UTC()
	}
	return base.Add(s.clockOffset)
}

func (s *Store) parentLookupLocked(itemID string) (*string, bool, error) {
	item, ok := s.items[itemID]
	if !ok || item.Deleted {
		return nil, false, nil
	}
	return item.ParentID, true, nil
}

func (s *Store) uniqueSlugLocked(base string) string {
	taken := make(map[string]struct{}, len(s.items))
	for _, item := range s.items {
		taken[item.Slug] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	for suffix := 2; ; suffix++ {
		candidate := base + "-" + strconv.Itoa(suffix)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func (s *Store) appendOutboxLocked(event ports.GovernanceEvent, payload []byte) {
	s.outbox[event.EventID] = ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	s.outboxOrder = append(s.outboxOrder, event.EventID)
}

func encodeEvent(event ports.GovernanceEvent) ([]byte, error) {
	envelope, err := ports.NewEventEnvelope(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope)
}

func matchesAudit(entry entities.AuditEntry, filter ports.AuditFilter) bool {
	if filter.ActorID != "" && entry.Actor() != filter.ActorID {
		return false
	}
	if filter.TargetID != "" && entry.TargetID != filter.TargetID {
		return false
	}
	if filter.From != nil && entry.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && entry.CreatedAt.After(*filter.To) {
		return false
	}
	if len(filter.Actions) == 0 {
		return true
	}
	for _, action := range filter.Actions {
		if entry.Action == action {
			return true
		}
	}
	return false
}

func cloneItem(item entities.ContentItem) entities.ContentItem {
	item.Collaborators = append([]string{}, item.Collaborators...)
	if item.ParentID != nil {
		parent := *item.ParentID
		item.ParentID = &parent
	}
	if item.ModeratedAt != nil {
		moderatedAt := *item.ModeratedAt
		item.ModeratedAt = &moderatedAt
	}
	return item
}

func sortItems(items []entities.ContentItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ItemID < items[j].ItemID
	})
}

func sortRequests(requests []entities.CollaborationRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
}

// sortAudit orders newest first; entries sharing a timestamp keep reverse
// insertion order.
func sortAudit(entries []entities.AuditEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

var (
	_ ports.ContentItemRepository   = (*Store)(nil)
	_ ports.CollaborationRepository = (*Store)(nil)
	_ ports.AuditRepository         = (*Store)(nil)
	_ ports.OutboxRepository        = (*Store)(nil)
	_ ports.UserDirectory           = (*Store)(nil)
	_ ports.ActivitySignalSource    = (*Store)(nil)
	_ ports.ActivitySignalRecorder  = (*Store)(nil)
	_ ports.Clock                   = (*Store)(nil)
	_ ports.IDGenerator             = (*Store)(nil)
)
