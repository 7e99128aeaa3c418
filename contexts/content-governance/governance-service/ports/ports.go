package ports

import (
	"context"
	"time"

	"kdom/contexts/content-governance/governance-service/domain/entities"
	contractsv1 "kdom/contracts/gen/events/v1"
)

// GovernanceEvent is the outbound integration payload persisted to the outbox
// in the same transaction as the mutation it describes.
type GovernanceEvent struct {
	EventID      string
	EventType    string
	PartitionKey string
	ActorID      string
	Data         map[string]string
	OccurredAt   time.Time
}

// WithAttribute returns a copy of e with Data[key] set to value.
func (e GovernanceEvent) WithAttribute(key string, value string) GovernanceEvent {
	data := make(map[string]string, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value
	e.Data = data
	return e
}

// ItemFilter narrows ListItems. Zero values are ignored.
type ItemFilter struct {
	Status         entities.ModerationStatus
	OwnerID        string
	Category       string
	ItemIDs        []string
	ModeratedSince *time.Time
	Limit          int
}

// ModerationMutation is applied atomically: the status precondition, the
// state change, the audit rows and the outbox events commit together.
type ModerationMutation struct {
	ItemID string
	// ExpectedStatus is the compare-and-set precondition. Empty skips the
	// check (admin force delete).
	ExpectedStatus  entities.ModerationStatus
	Status          entities.ModerationStatus
	RejectionReason string
	ModeratedBy     string
	ModeratedAt     time.Time
	// Remove physically deletes the item after the status change, detaching
	// its children to the root level.
	Remove bool
	Audit  []entities.AuditEntry
	Events []GovernanceEvent
}

// ContentItemRepository owns item persistence and hierarchy edits.
type ContentItemRepository interface {
	// CreateItem returns the stored item. The store owns slug uniqueness and
	// writes the assigned slug into the event's "slug" attribute.
	CreateItem(ctx context.Context, item entities.ContentItem, audit entities.AuditEntry, event GovernanceEvent) (entities.ContentItem, error)
	GetItem(ctx context.Context, itemID string) (entities.ContentItem, error)
	// ListChildren returns non-deleted children; a nil parent lists roots.
	ListChildren(ctx context.Context, parentID *string) ([]entities.ContentItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]entities.ContentItem, error)
	UpdateParent(ctx context.Context, itemID string, parentID *string, audit entities.AuditEntry, event GovernanceEvent) error
	ApplyModeration(ctx context.Context, mutation ModerationMutation) (entities.ContentItem, error)
}

// RequestReview transitions a pending request exactly once. On approval the
// requester joins the item's collaborator set in the same transaction.
type RequestReview struct {
	RequestID       string
	ItemID          string
	Status          entities.RequestStatus
	ReviewerID      string
	RejectionReason string
	ReviewedAt      time.Time
	Audit           entities.AuditEntry
	Event           GovernanceEvent
}

type CollaborationRepository interface {
	// CreateRequest fails with ErrDuplicatePendingRequest when a pending
	// request already exists for the same item and requester.
	CreateRequest(ctx context.Context, request entities.CollaborationRequest, audit entities.AuditEntry, event GovernanceEvent) error
	GetRequest(ctx context.Context, requestID string) (entities.CollaborationRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID string) ([]entities.CollaborationRequest, error)
	ListRequestsByItems(ctx context.Context, itemIDs []string) ([]entities.CollaborationRequest, error)
	ReviewRequest(ctx context.Context, review RequestReview) (entities.CollaborationRequest, error)
	RemoveCollaborator(ctx context.Context, itemID string, userID string, audit entities.AuditEntry, event GovernanceEvent) error
}

// AuditFilter narrows audit queries. Zero values are ignored.
type AuditFilter struct {
	ActorID  string
	Actions  []entities.AuditAction
	TargetID string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// AuditRepository is append-only. Results are ordered by createdAt desc.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry entities.AuditEntry) error
	QueryAudit(ctx context.Context, filter AuditFilter) ([]entities.AuditEntry, int, error)
	LastActionFor(ctx context.Context, targetID string, actions []entities.AuditAction) (entities.AuditEntry, bool, error)
}

type UserDirectory interface {
	GetRole(ctx context.Context, userID string) (entities.Role, error)
	GetUsername(ctx context.Context, userID string) (string, error)
}

type Notification struct {
	UserID      string
	Type        string
	Message     string
	TargetType  string
	TargetID    string
	TriggeredBy string
}

// Notifier is fire-and-forget from the caller's side; returned errors are logged only.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// ActivitySignalSource supplies raw per-item counts over a trailing window.
type ActivitySignalSource interface {
	RecentCounts(ctx context.Context, kind entities.SignalKind, windowDays int) (map[string]int, error)
}

type ActivitySignalRecorder interface {
	RecordSignal(ctx context.Context, kind entities.SignalKind, itemID string, at time.Time) error
}

// GovernanceMetrics is optional; use cases skip it when nil.
type GovernanceMetrics interface {
	ObserveModeration(action string, outcome string)
	ObserveBulkModeration(action string, succeeded int, failed int, elapsed time.Duration)
	ObserveCollaboration(action string, outcome string)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
