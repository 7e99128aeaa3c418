package postgresadapter

import (
	"time"

	"kdom/contexts/content-governance/governance-service/domain/entities"
	"kdom/contexts/content-governance/governance-service/ports"
)

type contentItemModel struct {
	ItemID          string     `gorm:"column:item_id;primaryKey"`
	ParentID        *string    `gorm:"column:parent_id"`
	Title           string     `gorm:"column:title"`
	Slug            string     `gorm:"column:slug"`
	Category        string     `gorm:"column:category"`
	OwnerID         string     `gorm:"column:owner_id"`
	Status          string     `gorm:"column:status"`
	Deleted         bool       `gorm:"column:deleted"`
	RejectionReason string     `gorm:"column:rejection_reason"`
	ModeratedBy     string     `gorm:"column:moderated_by"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	ModeratedAt     *time.Time `gorm:"column:moderated_at"`
}

func (contentItemModel) TableName() string {
	return "kdom_content_items"
}

func contentItemModelFromEntity(item entities.ContentItem) contentItemModel {
	return contentItemModel{
		ItemID:          item.ItemID,
		ParentID:        item.ParentID,
		Title:           item.Title,
		Slug:            item.Slug,
		Category:        item.Category,
		OwnerID:         item.OwnerID,
		Status:          string(item.Status),
		Deleted:         item.Deleted,
		RejectionReason: item.RejectionReason,
		ModeratedBy:     item.ModeratedBy,
		CreatedAt:       item.CreatedAt.UTC(),
		ModeratedAt:     utcPointer(item.ModeratedAt),
	}
}

func (m contentItemModel) toEntity() entities.ContentItem {
	return entities.ContentItem{
		ItemID:          m.ItemID,
		ParentID:        m.ParentID,
		Title:           m.Title,
		Slug:            m.Slug,
		Category:        m.Category,
		OwnerID:         m.OwnerID,
		Collaborators:   []string{},
		Status:          entities.ModerationStatus(m.Status),
		Deleted:         m.Deleted,
		RejectionReason: m.RejectionReason,
		ModeratedBy:     m.ModeratedBy,
		CreatedAt:       m.CreatedAt.UTC(),
		ModeratedAt:     utcPointer(m.ModeratedAt),
	}
}

type collaboratorModel struct {
	ItemID  string    `gorm:"column:item_id;primaryKey"`
	UserID  string    `gorm:"column:user_id;primaryKey"`
	AddedAt time.Time `gorm:"column:added_at"`
}

func (collaboratorModel) TableName() string {
	return "kdom_item_collaborators"
}

type collaborationRequestModel struct {
	RequestID       string     `gorm:"column:request_id;primaryKey"`
	ItemID          string     `gorm:"column:item_id"`
	RequesterID     string     `gorm:"column:requester_id"`
	Status          string     `gorm:"column:status"`
	Message         string     `gorm:"column:message"`
	RejectionReason string     `gorm:"column:rejection_reason"`
	ReviewerID      string     `gorm:"column:reviewer_id"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
}

func (collaborationRequestModel) TableName() string {
	return "kdom_collaboration_requests"
}

func collaborationRequestModelFromEntity(request entities.CollaborationRequest) collaborationRequestModel {
	return collaborationRequestModel{
		RequestID:       request.RequestID,
		ItemID:          request.ItemID,
		RequesterID:     request.RequesterID,
		Status:          string(request.Status),
		Message:         request.Message,
		RejectionReason: request.RejectionReason,
		ReviewerID:      request.ReviewerID,
		CreatedAt:       request.CreatedAt.UTC(),
		ReviewedAt:      utcPointer(request.ReviewedAt),
	}
}

func (m collaborationRequestModel) toEntity() entities.CollaborationRequest {
	return entities.CollaborationRequest{
		RequestID:       m.RequestID,
		ItemID:          m.ItemID,
		RequesterID:     m.RequesterID,
		Status:          entities.RequestStatus(m.Status),
		Message:         m.Message,
		RejectionReason: m.RejectionReason,
		ReviewerID:      m.ReviewerID,
		CreatedAt:       m.CreatedAt.UTC(),
		ReviewedAt:      utcPointer(m.ReviewedAt),
	}
}

// auditEntryModel carries a serial seq column that breaks created_at ties in
// insertion order.
type auditEntryModel struct {
	EntryID    string    `gorm:"column:entry_id;primaryKey"`
	Seq        int64     `gorm:"column:seq;autoIncrement"`
	ActorID    *string   `gorm:"column:actor_id"`
	Action     string    `gorm:"column:action"`
	TargetType string    `gorm:"column:target_type"`
	TargetID   string    `gorm:"column:target_id"`
	Details    string    `gorm:"column:details"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (auditEntryModel) TableName() string {
	return "kdom_audit_entries"
}

func auditEntryModelFromEntity(entry entities.AuditEntry) auditEntryModel {
	return auditEntryModel{
		EntryID:    entry.EntryID,
		ActorID:    nullableString(entry.Actor()),
		Action:     string(entry.Action),
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt.UTC(),
	}
}

func (m auditEntryModel) toEntity() entities.AuditEntry {
	entry := entities.AuditEntry{
		EntryID:    m.EntryID,
		Action:     entities.AuditAction(m.Action),
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		Details:    m.Details,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if actor := derefString(m.ActorID); actor != "" {
		entry.ActorID = &actor
	}
	return entry
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "kdom_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type userModel struct {
	UserID   string `gorm:"column:user_id;primaryKey"`
	Username string `gorm:"column:username"`
	Role     string `gorm:"column:role"`
}

func (userModel) TableName() string {
	return "kdom_users"
}

func utcPointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}
