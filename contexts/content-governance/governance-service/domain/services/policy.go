package services

import (
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
)

type Action string

const (
	ActionModerate             Action = "moderate"
	ActionForceDelete          Action = "force_delete"
	ActionReviewCollaboration  Action = "review_collaboration"
	ActionRemoveCollaborator   Action = "remove_collaborator"
	ActionRequestCollaboration Action = "request_collaboration"
	ActionEditMetadata         Action = "edit_metadata"
	ActionViewDashboard        Action = "view_dashboard"
	ActionQueryAudit           Action = "query_audit"
)

// Subject describes the caller relative to the target item.
type Subject struct {
	Role           entities.Role
	IsOwner        bool
	IsCollaborator bool
}

type rule struct {
	roles        []entities.Role
	owner        bool
	collaborator bool
	denied       error
}

var policyTable = map[Action]rule{
	ActionModerate: {
		roles:  []entities.Role{entities.RoleModerator, entities.RoleAdmin},
		denied: domainerrors.ErrModeratorRequired,
	},
	ActionForceDelete: {
		roles:  []entities.Role{entities.RoleAdmin},
		denied: domainerrors.ErrAdminRequired,
	},
	ActionReviewCollaboration: {
		owner:  true,
		denied: domainerrors.ErrNotOwner,
	},
	ActionRemoveCollaborator: {
		owner:  true,
		denied: domainerrors.ErrNotOwner,
	},
	ActionRequestCollaboration: {
		roles:  []entities.Role{entities.RoleUser, entities.RoleModerator, entities.RoleAdmin},
		denied: domainerrors.ErrUnauthorized,
	},
	ActionEditMetadata: {
		roles:        []entities.Role{entities.RoleAdmin},
		owner:        true,
		collaborator: true,
		denied:       domainerrors.ErrEditForbidden,
	},
	ActionViewDashboard: {
		roles:  []entities.Role{entities.RoleModerator, entities.RoleAdmin},
		denied: domainerrors.ErrModeratorRequired,
	},
	ActionQueryAudit: {
		roles:  []entities.Role{entities.RoleModerator, entities.RoleAdmin},
		denied: domainerrors.ErrModeratorRequired,
	},
}

// Allow reports whether subject may perform action. Unknown actions are denied.
func Allow(action Action, subject Subject) bool {
	r, ok := policyTable[action]
	if !ok {
		return false
	}
	if r.owner && subject.IsOwner {
		return true
	}
	if r.collaborator && subject.IsCollaborator {
		return true
	}
	for _, role := range r.roles {
		if subject.Role == role {
			return true
		}
	}
	return false
}

// Authorize is Allow with the action's denial error.
func Authorize(action Action, subject Subject) error {
	if Allow(action, subject) {
		return nil
	}
	if r, ok := policyTable[action]; ok && r.denied != nil {
		return r.denied
	}
	return domainerrors.ErrUnauthorized
}
