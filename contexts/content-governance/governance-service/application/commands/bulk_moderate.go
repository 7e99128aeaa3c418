package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/domain/services"
	"kdom/contexts/content-governance/governance-service/ports"
)

const maxBulkItems = 500

type BulkModerateCommand struct {
	ItemIDs     []string
	Action      ModerationDecision
	Reason      string
	ModeratorID string
}

type BulkItemResult struct {
	ItemID  string `json:"item_id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	// ErrorKind is one of not_found, unauthorized, conflict, validation or
	// internal when Success is false.
	ErrorKind string `json:"error_kind,omitempty"`
}

type BulkModerateResult struct {
	Items          []BulkItemResult `json:"items"`
	Processed      int              `json:"processed"`
	SucceededCount int              `json:"succeeded_count"`
	FailedCount    int              `json:"failed_count"`
}

// BulkModerateUseCase applies one decision to many items. Each item is
// moderated independently; a failing item is recorded and never aborts the
// batch. With Concurrency > 1 items run on a bounded pool and results keep
// the input order.
type BulkModerateUseCase struct {
	Moderation  ModerateItemUseCase
	Gate        application.Gate
	Metrics     ports.GovernanceMetrics
	Clock       ports.Clock
	Concurrency int
	Logger      *slog.Logger
}

func (u BulkModerateUseCase) Execute(ctx context.Context, cmd BulkModerateCommand) (BulkModerateResult, error) {
	logger := application.ResolveLogger(u.Logger)
	switch cmd.Action {
	case DecisionApprove, DecisionReject, DecisionRejectAndDelete:
	default:
		return BulkModerateResult{}, domainerrors.ErrInvalidBulkAction
	}
	if strings.TrimSpace(cmd.ModeratorID) == "" || len(cmd.ItemIDs) == 0 || len(cmd.ItemIDs) > maxBulkItems {
		return BulkModerateResult{}, domainerrors.ErrInvalidInput
	}
	if cmd.Action != DecisionApprove && strings.TrimSpace(cmd.Reason) == "" {
		return BulkModerateResult{}, domainerrors.ErrReasonRequired
	}
	started := time.Now()
	now := application.ResolveNow(u.Clock)
	if err := u.Gate.Check(ctx, services.ActionModerate, cmd.ModeratorID, nil, entities.TargetTypeContentItem, "bulk", now); err != nil {
		return BulkModerateResult{}, err
	}

	results := make([]BulkItemResult, len(cmd.ItemIDs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(u.concurrency())
	for index, itemID := range cmd.ItemIDs {
		group.Go(func() error {
			results[index] = u.moderateOne(groupCtx, cmd, itemID)
			return nil
		})
	}
	_ = group.Wait()

	result := BulkModerateResult{Items: results, Processed: len(results)}
	for _, item := range results {
		if item.Success {
			result.SucceededCount++
		} else {
			result.FailedCount++
		}
	}

	if u.Metrics != nil {
		u.Metrics.ObserveBulkModeration(string(cmd.Action), result.SucceededCount, result.FailedCount, time.Since(started))
	}
	logger.Info("bulk moderation completed",
		"event", "governance_bulk_moderation_completed",
		"module", "content-governance/governance-service",
		"layer", "application",
		"action", string(cmd.Action),
		"moderator_id", cmd.ModeratorID,
		"processed", result.Processed,
		"succeeded", result.SucceededCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (u BulkModerateUseCase) moderateOne(ctx context.Context, cmd BulkModerateCommand, itemID string) (result BulkItemResult) {
	result.ItemID = itemID
	defer func() {
		if recovered := recover(); recovered != nil {
			result = BulkItemResult{ItemID: itemID, Error: "internal error", ErrorKind: "internal"}
			application.ResolveLogger(u.Logger).Error("bulk moderation item panicked",
				"event", "governance_bulk_moderation_item_panic",
				"module", "content-governance/governance-service",
				"layer", "application",
				"item_id", itemID,
				"panic", recovered,
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		result.ErrorKind = "internal"
		return result
	}

	moderated, err := u.Moderation.Execute(ctx, cmd.Action, itemID, cmd.ModeratorID, cmd.Reason)
	if err != nil {
		result.Error = err.Error()
		result.ErrorKind = errorKindLabel(err)
		return result
	}
	result.Success = true
	if moderated.Removed {
		result.Message = "rejected and removed"
	} else {
		result.Message = string(moderated.Item.Status)
	}
	return result
}

func (u BulkModerateUseCase) concurrency() int {
	if u.Concurrency <= 0 {
		return 1
	}
	return u.Concurrency
}

func errorKindLabel(err error) string {
	switch domainerrors.KindOf(err) {
	case domainerrors.ErrNotFound:
		return "not_found"
	case domainerrors.ErrUnauthorized:
		return "unauthorized"
	case domainerrors.ErrConflict:
		return "conflict"
	case domainerrors.ErrValidation:
		return "validation"
	default:
		return "internal"
	}
}
