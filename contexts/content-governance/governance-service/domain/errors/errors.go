package errors

import "errors"

// Kind sentinels. Every specific error below wraps exactly one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

var (
	ErrItemNotFound     = newKindError(ErrNotFound, "content item not found")
	ErrParentNotFound   = newKindError(ErrNotFound, "parent content item not found")
	ErrRequestNotFound  = newKindError(ErrNotFound, "collaboration request not found")
	ErrNotCollaborator  = newKindError(ErrNotFound, "user is not a collaborator")
	ErrUserNotFound     = newKindError(ErrNotFound, "user not found")
	ErrAuditEntryAbsent = newKindError(ErrNotFound, "no audit entry for target")

	ErrModeratorRequired = newKindError(ErrUnauthorized, "moderator or admin role required")
	ErrAdminRequired     = newKindError(ErrUnauthorized, "admin role required")
	ErrNotOwner          = newKindError(ErrUnauthorized, "only the item owner may perform this action")
	ErrEditForbidden     = newKindError(ErrUnauthorized, "caller may not edit this item")

	ErrSelfParent              = newKindError(ErrConflict, "item cannot be its own parent")
	ErrCycleDetected           = newKindError(ErrConflict, "parent assignment would create a cycle")
	ErrAlreadyModerated        = newKindError(ErrConflict, "item has already been moderated")
	ErrDuplicatePendingRequest = newKindError(ErrConflict, "a pending collaboration request already exists")
	ErrRequestAlreadyReviewed  = newKindError(ErrConflict, "collaboration request has already been reviewed")
	ErrOwnerCannotRequest      = newKindError(ErrConflict, "owner cannot request collaboration on own item")
	ErrAlreadyCollaborator     = newKindError(ErrConflict, "user is already a collaborator")
	ErrItemNotApproved         = newKindError(ErrConflict, "item is not approved")
	ErrSlugTaken               = newKindError(ErrConflict, "slug already in use")

	ErrReasonRequired    = newKindError(ErrValidation, "reason is required")
	ErrInvalidInput      = newKindError(ErrValidation, "invalid input")
	ErrInvalidBulkAction = newKindError(ErrValidation, "invalid bulk moderation action")
	ErrInvalidWindow     = newKindError(ErrValidation, "window must be between 1 and 365 days")
	ErrInvalidSignalKind = newKindError(ErrValidation, "unknown activity signal kind")

	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)

type kindError struct {
	kind    error
	message string
}

func newKindError(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

func (e *kindError) Error() string {
	return e.message
}

func (e *kindError) Unwrap() error {
	return e.kind
}

// KindOf returns the kind sentinel err belongs to, or nil for errors raised
// outside the domain (storage, transport).
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrUnauthorized, ErrConflict, ErrValidation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
