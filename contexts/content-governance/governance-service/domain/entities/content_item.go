package entities

import (
	"strings"
	"time"
	"unicode"

	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
)

type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusRejected ModerationStatus = "rejected"
)

// ContentItem is a K-Dom page. ParentID is a weak reference used only for
// navigation; it does not imply ownership.
type ContentItem struct {
	ItemID          string
	ParentID        *string
	Title           string
	Slug            string
	Category        string
	OwnerID         string
	Collaborators   []string
	Status          ModerationStatus
	Deleted         bool
	RejectionReason string
	ModeratedBy     string
	CreatedAt       time.Time
	ModeratedAt     *time.Time
}

func NewContentItem(
	itemID string,
	parentID *string,
	title string,
	category string,
	ownerID string,
	createdAt time.Time,
) (ContentItem, error) {
	title = strings.TrimSpace(title)
	if strings.TrimSpace(itemID) == "" ||
		strings.TrimSpace(ownerID) == "" ||
		title == "" ||
		len(title) > 200 {
		return ContentItem{}, domainerrors.ErrInvalidInput
	}
	slug := Slugify(title)
	if slug == "" {
		return ContentItem{}, domainerrors.ErrInvalidInput
	}

	return ContentItem{
		ItemID:        itemID,
		ParentID:      normalizeParent(parentID),
		Title:         title,
		Slug:          slug,
		Category:      strings.ToLower(strings.TrimSpace(category)),
		OwnerID:       ownerID,
		Collaborators: []string{},
		Status:        ModerationStatusPending,
		CreatedAt:     createdAt.UTC(),
	}, nil
}

func (i ContentItem) IsPending() bool {
	return i.Status == ModerationStatusPending && !i.Deleted
}

func (i ContentItem) IsApproved() bool {
	return i.Status == ModerationStatusApproved && !i.Deleted
}

func (i ContentItem) IsOwner(userID string) bool {
	return userID != "" && i.OwnerID == userID
}

func (i ContentItem) HasCollaborator(userID string) bool {
	for _, collaborator := range i.Collaborators {
		if collaborator == userID {
			return true
		}
	}
	return false
}

// WithCollaborator returns the collaborator set with userID added. The owner is
// never stored as a collaborator.
func (i ContentItem) WithCollaborator(userID string) []string {
	if userID == "" || userID == i.OwnerID || i.HasCollaborator(userID) {
		return append([]string(nil), i.Collaborators...)
	}
	return append(append([]string(nil), i.Collaborators...), userID)
}

func (i ContentItem) WithoutCollaborator(userID string) []string {
	out := make([]string, 0, len(i.Collaborators))
	for _, collaborator := range i.Collaborators {
		if collaborator != userID {
			out = append(out, collaborator)
		}
	}
	return out
}

// ParentValue returns the parent id or empty string for root items.
func (i ContentItem) ParentValue() string {
	if i.ParentID == nil {
		return ""
	}
	return *i.ParentID
}

// Slugify lowercases the title and keeps letters and digits, joining words with '-'.
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}

func normalizeParent(parentID *string) *string {
	if parentID == nil {
		return nil
	}
	value := strings.TrimSpace(*parentID)
	if value == "" {
		return nil
	}
	return &value
}
