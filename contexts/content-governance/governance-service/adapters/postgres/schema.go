package postgresadapter

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS kdom_users (
		user_id  TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		role     TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'moderator', 'admin'))
	)`,
	`CREATE TABLE IF NOT EXISTS kdom_content_items (
		item_id          TEXT PRIMARY KEY,
		parent_id        TEXT NULL REFERENCES kdom_content_items (item_id) ON DELETE SET NULL,
		title            TEXT NOT NULL,
		slug             TEXT NOT NULL,
		category         TEXT NOT NULL DEFAULT '',
		owner_id         TEXT NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
		deleted          BOOLEAN NOT NULL DEFAULT FALSE,
		rejection_reason TEXT NOT NULL DEFAULT '',
		moderated_by     TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		moderated_at     TIMESTAMPTZ NULL,
		CONSTRAINT kdom_content_items_slug_key UNIQUE (slug),
		CONSTRAINT kdom_content_items_not_self_parent CHECK (parent_id IS NULL OR parent_id <> item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS kdom_content_items_parent_idx ON kdom_content_items (parent_id)`,
	`CREATE INDEX IF NOT EXISTS kdom_content_items_status_idx ON kdom_content_items (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS kdom_item_collaborators (
		item_id  TEXT NOT NULL REFERENCES kdom_content_items (item_id) ON DELETE CASCADE,
		user_id  TEXT NOT NULL,
		added_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (item_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS kdom_collaboration_requests (
		request_id       TEXT PRIMARY KEY,
		item_id          TEXT NOT NULL,
		requester_id     TEXT NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
		message          TEXT NOT NULL DEFAULT '',
		rejection_reason TEXT NOT NULL DEFAULT '',
		reviewer_id      TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		reviewed_at      TIMESTAMPTZ NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS kdom_collab_requests_one_pending
		ON kdom_collaboration_requests (item_id, requester_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS kdom_collab_requests_requester_idx ON kdom_collaboration_requests (requester_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS kdom_audit_entries (
		entry_id    TEXT PRIMARY KEY,
		seq         BIGSERIAL NOT NULL,
		actor_id    TEXT NULL,
		action      TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id   TEXT NOT NULL,
		details     TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS kdom_audit_entries_target_idx ON kdom_audit_entries (target_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS kdom_audit_entries_actor_idx ON kdom_audit_entries (actor_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS kdom_outbox (
		outbox_id     TEXT PRIMARY KEY,
		event_type    TEXT NOT NULL,
		partition_key TEXT NOT NULL,
		payload       BYTEA NOT NULL,
		status        TEXT NOT NULL DEFAULT 'pending',
		created_at    TIMESTAMPTZ NOT NULL,
		sent_at       TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS kdom_outbox_pending_idx ON kdom_outbox (created_at) WHERE status = 'pending'`,
}

// EnsureSchema applies the idempotent DDL for the governance tables.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	for index, statement := range schemaStatements {
		if err := db.Exec(statement).Error; err != nil {
			return fmt.Errorf("apply governance schema statement %d: %w", index, err)
		}
	}
	r.logger.Info("governance schema ensured",
		"event", "postgres_schema_ensured",
		"module", "content-governance/governance-service",
		"layer", "adapter",
		"statements", len(schemaStatements),
	)
	return nil
}
