package commands

import (
	"context"
	"log/slog"
	"strings"

	application "kdom/contexts/content-governance/governance-service/application"
	"kdom/contexts/content-governance/governance-service/domain/entities"
	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
	"kdom/contexts/content-governance/governance-service/ports"
)

type RecordSignalCommand struct {
	ItemID string
	Kind   entities.SignalKind
}

// RecordSignalUseCase is the ingestion path for activity counters fed by the
// post, comment, follow and edit subsystems.
type RecordSignalUseCase struct {
	Items    ports.ContentItemRepository
	Recorder ports.ActivitySignalRecorder
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u RecordSignalUseCase) Execute(ctx context.Context, cmd RecordSignalCommand) error {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.ItemID) == "" {
		return domainerrors.ErrInvalidInput
	}
	if !cmd.Kind.Valid() {
		return domainerrors.ErrInvalidSignalKind
	}
	item, err := u.Items.GetItem(ctx, cmd.ItemID)
	if err != nil {
		return err
	}
	if item.Deleted {
		return domainerrors.ErrItemNotFound
	}

	if err := u.Recorder.RecordSignal(ctx, cmd.Kind, item.ItemID, application.ResolveNow(u.Clock)); err != nil {
		logger.Error("activity signal record failed",
			"event", "governance_signal_record_failed",
			"module", "content-governance/governance-service",
			"layer", "application",
			"item_id", cmd.ItemID,
			"kind", string(cmd.Kind),
			"error", err.Error(),
		)
		return err
	}
	return nil
}
