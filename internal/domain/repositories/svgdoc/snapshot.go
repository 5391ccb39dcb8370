package svgdoc

import (
	"context"

	"vecteditor/internal/domain/models/svgdoc"
)

// SnapshotRepository persists the saved blob of each document
type SnapshotRepository interface {
	// Get returns the latest snapshot, or domain.ErrNotFound
	Get(ctx context.Context, documentID string) (*svgdoc.Snapshot, error)

	// Save upserts the snapshot and sets UpdatedAt
	Save(ctx context.Context, snapshot *svgdoc.Snapshot) error

	// Delete removes a document snapshot and its history
	Delete(ctx context.Context, documentID string) error
}

// MoveLogRepository keeps the history of applied hierarchical moves
type MoveLogRepository interface {
	// Append stores a record, filling ID and CreatedAt when empty
	Append(ctx context.Context, record *svgdoc.MoveRecord) error

	// List returns the newest records first, at most limit of them
	List(ctx context.Context, documentID string, limit int) ([]svgdoc.MoveRecord, error)
}
