package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func ResolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

func BuildAudit(
	ctx context.Context,
	ids ports.IDGenerator,
	actorID string,
	action entities.AuditAction,
	targetType string,
	targetID string,
	details string,
	now time.Time,
) (entities.AuditEntry, error) {
	entryID, err := ids.NewID(ctx)
	if err != nil {
		return entities.AuditEntry{}, err
	}
	return entities.NewAuditEntry(entryID, actorID, action, targetType, targetID, details, now)
}

// Gate resolves the caller role and checks the policy table. Denials are
// recorded in the audit trail before the error is returned.
type Gate struct {
	Users  ports.UserDirectory
	Audit  ports.AuditRepository
	IDs    ports.IDGenerator
	Logger *slog.Logger
}

func (g Gate) Check(
	ctx context.Context,
	action services.Action,
	actorID string,
	item *entities.ContentItem,
	targetType string,
	targetID string,
	now time.Time,
) error {
	logger := ResolveLogger(g.Logger)

	role := entities.RoleUser
	known := true
	if g.Users != nil {
		resolved, err := g.Users.GetRole(ctx, actorID)
		switch {
		case errors.Is(err, domainerrors.ErrUserNotFound):
			// An unknown caller holds no role and owns nothing.
			role, known = "", false
		case err != nil:
			return err
		default:
			role = resolved
		}
	}
	subject := services.Subject{Role: role}
	if item != nil && known {
		subject.IsOwner = item.IsOwner(actorID)
		subject.IsCollaborator = item.HasCollaborator(actorID)
	}

	deny := services.Authorize(action, subject)
	if deny == nil {
		return nil
	}

	logger.Warn("governance action denied",
		"event", "governance_authorization_denied",
		"module", "content-governance/governance-service",
		"layer", "application",
		"action", string(action),
		"actor_id", actorID,
		"target_id", targetID,
		"role", string(role),
	)
	if g.Audit != nil && g.IDs != nil && actorID != "" {
		entry, err := BuildAudit(ctx, g.IDs, actorID, entities.AuditActionAuthorizationDenied, targetType, targetID, string(action), now)
		if err == nil {
			err = g.Audit.AppendAudit(ctx, entry)
		}
		if err != nil {
			logger.Error("denied action audit failed",
				"event", "governance_authorization_denied_audit_failed",
				"module", "content-governance/governance-service",
				"layer", "application",
				"actor_id", actorID,
				"target_id", targetID,
				"error", err.Error(),
			)
		}
	}
	return deny
}
