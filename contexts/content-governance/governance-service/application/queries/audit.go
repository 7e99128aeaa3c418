package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

type AuditQuery struct {
	RequesterID string
	ActorID     string
	Actions     []entities.AuditAction
	TargetID    string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

type AuditPage struct {
	Entries []entities.AuditEntry
	Total   int
	Limit   int
	Offset  int
}

// QueryAuditUseCase serves the admin review and dashboard views. Entries come
// back newest first.
type QueryAuditUseCase struct {
	Audit  ports.AuditRepository
	Gate   application.Gate
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u QueryAuditUseCase) Execute(ctx context.Context, query AuditQuery) (AuditPage, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(query.RequesterID) == "" || query.Offset < 0 || query.Limit < 0 {
		return AuditPage{}, domainerrors.ErrInvalidInput
	}
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return AuditPage{}, domainerrors.ErrInvalidInput
	}
	if err := u.Gate.Check(ctx, services.ActionQueryAudit, query.RequesterID, nil, "audit", "query", application.ResolveNow(u.Clock)); err != nil {
		return AuditPage{}, err
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}

	entries, total, err := u.Audit.QueryAudit(ctx, ports.AuditFilter{
		ActorID:  strings.TrimSpace(query.ActorID),
		Actions:  query.Actions,
		TargetID: strings.TrimSpace(query.TargetID),
		From:     query.From,
		To:       query.To,
		Limit:    limit,
		Offset:   query.Offset,
	})
	if err != nil {
		logger.Error("audit query failed",
			"event", "governance_audit_query_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"requester_id", query.RequesterID,
			"error", err.Error(),
		)
		return AuditPage{}, err
	}
	return AuditPage{Entries: entries, Total: total, Limit: limit, Offset: query.Offset}, nil
}

// LastActionUseCase reconstructs who last acted on a target and when. It
// reads the same rows as QueryAuditUseCase and shares its policy.
type LastActionUseCase struct {
	Audit  ports.AuditRepository
	Gate   application.Gate
	Clock  ports.Clock
	Logger *slog.Logger
}

type LastActionQuery struct {
	RequesterID string
	TargetID    string
	Actions     []entities.AuditAction
}

func (u LastActionUseCase) Execute(ctx context.Context, query LastActionQuery) (entities.AuditEntry, error) {
	targetID := strings.TrimSpace(query.TargetID)
	if targetID == "" || strings.TrimSpace(query.RequesterID) == "" {
		return entities.AuditEntry{}, domainerrors.ErrInvalidInput
	}
	if err := u.Gate.Check(ctx, services.ActionQueryAudit, query.RequesterID, nil, "audit", targetID, application.ResolveNow(u.Clock)); err != nil {
		return entities.AuditEntry{}, err
	}
	actions := query.Actions
	entry, found, err := u.Audit.LastActionFor(ctx, targetID, actions)
	if err != nil {
		application.ResolveLogger(u.Logger).Error("last action lookup failed",
			"event", "governance_audit_last_action_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"target_id", targetID,
			"error", err.Error(),
		)
		return entities.AuditEntry{}, err
	}
	if !found {
		return entities.AuditEntry{}, domainerrors.ErrAuditEntryAbsent
	}
	return entry, nil
}
