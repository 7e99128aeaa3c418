package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"

	slugConstraint           = "kdom_content_items_slug_key"
	pendingRequestConstraint = "kdom_collab_requests_one_pending"

	// hierarchyLockKey serialises parent reassignments so two concurrent moves
	// cannot each pass validation and together close a loop.
	hierarchyLockKey = "kdom_hierarchy"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateItem(ctx context.Context, item entities.ContentItem, audit entities.AuditEntry, event ports.GovernanceEvent) (entities.ContentItem, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if item.ParentID != nil {
			var count int64
			if err := tx.Model(&contentItemModel{}).
				Where("item_id = ? AND deleted = ?", *item.ParentID, false).
				Count(&count).
				Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrParentNotFound
			}
		}

		slug, err := nextFreeSlug(tx, item.Slug)
		if err != nil {
			return err
		}
		item.Slug = slug
		payload, err := encodeEvent(event.WithAttribute("slug", slug))
		if err != nil {
			return err
		}

		row := contentItemModelFromEntity(item)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				if constraintName(err) == slugConstraint {
					return domainerrors.ErrSlugTaken
				}
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}
		if err := insertAudit(tx, audit); err != nil {
			return err
		}
		return insertOutbox(tx, event, payload)
	})
	if err != nil {
		return entities.ContentItem{}, err
	}
	return item, nil
}

func (r *Repository) GetItem(ctx context.Context, itemID string) (entities.ContentItem, error) {
	return loadItem(r.db.WithContext(ctx), itemID)
}

func (r *Repository) ListChildren(ctx context.Context, parentID *string) ([]entities.ContentItem, error) {
	tx := r.db.WithContext(ctx).Model(&contentItemModel{}).Where("deleted = ?", false)
	if parentID == nil {
		tx = tx.Where("parent_id IS NULL")
	} else {
		tx = tx.Where("parent_id = ?", *parentID)
	}

	var rows []contentItemModel
	if err := tx.Order("created_at ASC").Order("item_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return withCollaborators(r.db.WithContext(ctx), rows)
}

func (r *Repository) ListItems(ctx context.Context, filter ports.ItemFilter) ([]entities.ContentItem, error) {
	tx := r.db.WithContext(ctx).Model(&contentItemModel{}).Where("deleted = ?", false)
	if len(filter.ItemIDs) > 0 {
		tx = tx.Where("item_id IN ?", filter.ItemIDs)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.OwnerID != "" {
		tx = tx.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", filter.Category)
	}
	if filter.ModeratedSince != nil {
		tx = tx.Where("moderated_at >= ?", filter.ModeratedSince.UTC())
	}
	tx = tx.Order("created_at ASC").Order("item_id ASC")
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []contentItemModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return withCollaborators(r.db.WithContext(ctx), rows)
}

func (r *Repository) UpdateParent(
	ctx context.Context,
	itemID string,
	parentID *string,
	audit entities.AuditEntry,
	event ports.GovernanceEvent,
) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", hierarchyLockKey).Error; err != nil {
			return err
		}

		lookup := func(id string) (*string, bool, error) {
			var row contentItemModel
			err := tx.Select("item_id", "parent_id").
				Where("item_id = ? AND deleted = ?", id, false).
				First(&row).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, false, nil
				}
				return nil, false, err
			}
			return row.ParentID, true, nil
		}
		if _, found, err := lookup(itemID); err != nil {
			return err
		} else if !found {
			return domainerrors.ErrItemNotFound
		}
		if err := services.ValidateParentAssignment(itemID, parentID, lookup); err != nil {
			return err
		}

		result := tx.Model(&contentItemModel{}).
			Where("item_id = ? AND deleted = ?", itemID, false).
			Update("parent_id", parentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrItemNotFound
		}
		if err := insertAudit(tx, audit); err != nil {
			return err
		}
		return insertOutbox(tx, event, payload)
	})
}

func (r *Repository) ApplyModeration(ctx context.Context, mutation ports.ModerationMutation) (entities.ContentItem, error) {
	payloads := make([][]byte, 0, len(mutation.Events))
	for _, event := range mutation.Events {
		payload, err := encodeEvent(event)
		if err != nil {
			return entities.ContentItem{}, err
		}
		payloads = append(payloads, payload)
	}

	var updated entities.ContentItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row contentItemModel
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("item_id = ? AND deleted = ?", mutation.ItemID, false)
		if err := query.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrItemNotFound
			}
			return err
		}

		if mutation.Status != "" {
			updates := map[string]any{
				"status":       string(mutation.Status),
				"moderated_by": mutation.ModeratedBy,
				"moderated_at": mutation.ModeratedAt.UTC(),
			}
			if mutation.Status == entities.ModerationStatusRejected {
				updates["rejection_reason"] = mutation.RejectionReason
			}
			update := tx.Model(&contentItemModel{}).Where("item_id = ?", mutation.ItemID)
			if mutation.ExpectedStatus != "" {
				update = update.Where("status = ?", string(mutation.ExpectedStatus))
			}
			result := update.Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domainerrors.ErrAlreadyModerated
			}
		} else if mutation.ExpectedStatus != "" && row.Status != string(mutation.ExpectedStatus) {
			return domainerrors.ErrAlreadyModerated
		}

		for _, entry := range mutation.Audit {
			if err := insertAudit(tx, entry); err != nil {
				return err
			}
		}
		for i, event := range mutation.Events {
			if err := insertOutbox(tx, event, payloads[i]); err != nil {
				return err
			}
		}

		item, err := loadItem(tx, mutation.ItemID)
		if err != nil {
			return err
		}
		if mutation.Remove {
			if err := removeItem(tx, mutation.ItemID); err != nil {
				return err
			}
			item.Deleted = true
		}
		updated = item
		return nil
	})
	if err != nil {
		return entities.ContentItem{}, err
	}

	r.logger.Info("moderation applied",
		"event", "postgres_apply_moderation",
		"module", "content-governance/governance-service",
		"layer", "adapter",
		"item_id", updated.ItemID,
		"status", string(updated.Status),
		"removed", mutation.Remove,
	)
	return updated, nil
}

func (r *Repository) CreateRequest(
	ctx context.Context,
	request entities.CollaborationRequest,
	audit entities.AuditEntry,
	event ports.GovernanceEvent,
) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := collaborationRequestModelFromEntity(request)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				if constraintName(err) == pendingRequestConstraint {
					return domainerrors.ErrDuplicatePendingRequest
				}
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}
		if err := insertAudit(tx, audit); err != nil {
			return err
		}
		return insertOutbox(tx, event, payload)
	})
}

func (r *Repository) GetRequest(ctx context.Context, requestID string) (entities.CollaborationRequest, error) {
	var row collaborationRequestModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CollaborationRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.CollaborationRequest{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRequestsByRequester(ctx context.Context, requesterID string) ([]entities.CollaborationRequest, error) {
	var rows []collaborationRequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return requestsFromRows(rows), nil
}

func (r *Repository) ListRequestsByItems(ctx context.Context, itemIDs []string) ([]entities.CollaborationRequest, error) {
	if len(itemIDs) == 0 {
		return []entities.CollaborationRequest{}, nil
	}
	var rows []collaborationRequestModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return requestsFromRows(rows), nil
}

func (r *Repository) ReviewRequest(ctx context.Context, review ports.RequestReview) (entities.CollaborationRequest, error) {
	payload, err := encodeEvent(review.Event)
	if err != nil {
		return entities.CollaborationRequest{}, err
	}

	var reviewed entities.CollaborationRequest
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row collaborationRequestModel
		if err := tx.Where("request_id = ? AND item_id = ?", review.RequestID, review.ItemID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRequestNotFound
			}
			return err
		}

		reviewedAt := review.ReviewedAt.UTC()
		updates := map[string]any{
			"status":      string(review.Status),
			"reviewer_id": review.ReviewerID,
			"reviewed_at": reviewedAt,
		}
		if review.Status == entities.RequestStatusRejected {
			updates["rejection_reason"] = review.RejectionReason
		}
		result := tx.Model(&collaborationRequestModel{}).
			Where("request_id = ? AND status = ?", review.RequestID, string(entities.RequestStatusPending)).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrRequestAlreadyReviewed
		}

		if review.Status == entities.RequestStatusApproved {
			var live int64
			if err := tx.Model(&contentItemModel{}).
				Where("item_id = ? AND deleted = ?", review.ItemID, false).
				Count(&live).
				Error; err != nil {
				return err
			}
			if live == 0 {
				return domainerrors.ErrItemNotFound
			}
			// set union: a concurrent approval of the same user is a no-op
			collaborator := collaboratorModel{
				ItemID:  review.ItemID,
				UserID:  row.RequesterID,
				AddedAt: reviewedAt,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "item_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).Create(&collaborator).Error; err != nil {
				return err
			}
		}
		if err := insertAudit(tx, review.Audit); err != nil {
			return err
		}
		if err := insertOutbox(tx, review.Event, payload); err != nil {
			return err
		}

		row.Status = string(review.Status)
		row.ReviewerID = review.ReviewerID
		row.ReviewedAt = &reviewedAt
		if review.Status == entities.RequestStatusRejected {
			row.RejectionReason = review.RejectionReason
		}
		reviewed = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.CollaborationRequest{}, err
	}
	return reviewed, nil
}

func (r *Repository) RemoveCollaborator(
	ctx context.Context,
	itemID string,
	userID string,
	audit entities.AuditEntry,
	event ports.GovernanceEvent,
) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("item_id = ? AND user_id = ?", itemID, userID).Delete(&collaboratorModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrNotCollaborator
		}
		if err := insertAudit(tx, audit); err != nil {
			return err
		}
		return insertOutbox(tx, event, payload)
	})
}

func (r *Repository) AppendAudit(ctx context.Context, entry entities.AuditEntry) error {
	return insertAudit(r.db.WithContext(ctx), entry)
}

func (r *Repository) QueryAudit(ctx context.Context, filter ports.AuditFilter) ([]entities.AuditEntry, int, error) {
	tx := applyAuditFilter(r.db.WithContext(ctx).Model(&auditEntryModel{}), filter)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := applyAuditFilter(r.db.WithContext(ctx).Model(&auditEntryModel{}), filter).
		Order("created_at DESC").
		Order("seq DESC")
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}

	var rows []auditEntryModel
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]entities.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntity())
	}
	return entries, int(total), nil
}

func (r *Repository) LastActionFor(ctx context.Context, targetID string, actions []entities.AuditAction) (entities.AuditEntry, bool, error) {
	entries, _, err := r.QueryAudit(ctx, ports.AuditFilter{
		TargetID: targetID,
		Actions:  actions,
		Limit:    1,
	})
	if err != nil || len(entries) == 0 {
		return entities.AuditEntry{}, false, err
	}
	return entries[0], true, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	return nil
}

func (r *Repository) GetRole(ctx context.Context, userID string) (entities.Role, error) {
	row, err := r.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return entities.Role(row.Role), nil
}

func (r *Repository) GetUsername(ctx context.Context, userID string) (string, error) {
	row, err := r.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return row.Username, nil
}

func (r *Repository) loadUser(ctx context.Context, userID string) (userModel, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userModel{}, domainerrors.ErrUserNotFound
		}
		return userModel{}, err
	}
	return row, nil
}

func loadItem(tx *gorm.DB, itemID string) (entities.ContentItem, error) {
	var row contentItemModel
	err := tx.Where("item_id = ? AND deleted = ?", itemID, false).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ContentItem{}, domainerrors.ErrItemNotFound
		}
		return entities.ContentItem{}, err
	}
	items, err := withCollaborators(tx, []contentItemModel{row})
	if err != nil {
		return entities.ContentItem{}, err
	}
	return items[0], nil
}

func withCollaborators(tx *gorm.DB, rows []contentItemModel) ([]entities.ContentItem, error) {
	items := make([]entities.ContentItem, 0, len(rows))
	if len(rows) == 0 {
		return items, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ItemID)
	}

	var links []collaboratorModel
	if err := tx.Where("item_id IN ?", ids).Order("added_at ASC").Find(&links).Error; err != nil {
		return nil, err
	}
	byItem := make(map[string][]string, len(rows))
	for _, link := range links {
		byItem[link.ItemID] = append(byItem[link.ItemID], link.UserID)
	}
	for _, row := range rows {
		item := row.toEntity()
		if collaborators, ok := byItem[row.ItemID]; ok {
			item.Collaborators = collaborators
		}
		items = append(items, item)
	}
	return items, nil
}

// removeItem deletes the row and its collaborator links; children move to the
// root level.
func removeItem(tx *gorm.DB, itemID string) error {
	if err := tx.Model(&contentItemModel{}).
		Where("parent_id = ?", itemID).
		Update("parent_id", nil).
		Error; err != nil {
		return err
	}
	if err := tx.Where("item_id = ?", itemID).Delete(&collaboratorModel{}).Error; err != nil {
		return err
	}
	result := tx.Where("item_id = ?", itemID).Delete(&contentItemModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	return nil
}

func nextFreeSlug(tx *gorm.DB, base string) (string, error) {
	var taken []string
	if err := tx.Model(&contentItemModel{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &taken).
		Error; err != nil {
		return "", err
	}
	used := make(map[string]struct{}, len(taken))
	for _, slug := range taken {
		used[slug] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base, nil
	}
	for suffix := 2; ; suffix++ {
		candidate := base + "-" + strconv.Itoa(suffix)
		if _, ok := used[candidate]; !ok {
			return candidate, nil
		}
	}
}

func applyAuditFilter(tx *gorm.DB, filter ports.AuditFilter) *gorm.DB {
	if filter.ActorID != "" {
		tx = tx.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetID != "" {
		tx = tx.Where("target_id = ?", filter.TargetID)
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, 0, len(filter.Actions))
		for _, action := range filter.Actions {
			actions = append(actions, string(action))
		}
		sort.Strings(actions)
		tx = tx.Where("action IN ?", actions)
	}
	if filter.From != nil {
		tx = tx.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		tx = tx.Where("created_at <= ?", filter.To.UTC())
	}
	return tx
}

func insertAudit(tx *gorm.DB, entry entities.AuditEntry) error {
	row := auditEntryModelFromEntity(entry)
	if err := tx.Omit("seq").Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func insertOutbox(tx *gorm.DB, event ports.GovernanceEvent, payload []byte) error {
	row := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	if err := tx.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func encodeEvent(event ports.GovernanceEvent) ([]byte, error) {
	envelope, err := ports.NewEventEnvelope(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope)
}

func requestsFromRows(rows []collaborationRequestModel) []entities.CollaborationRequest {
	items := make([]entities.CollaborationRequest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func nullableString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

var (
	_ ports.ContentItemRepository   = (*Repository)(nil)
	_ ports.CollaborationRepository = (*Repository)(nil)
	_ ports.AuditRepository         = (*Repository)(nil)
	_ ports.OutboxRepository        = (*Repository)(nil)
	_ ports.UserDirectory           = (*Repository)(nil)
)
