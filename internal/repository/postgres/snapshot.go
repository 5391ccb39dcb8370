package postgres

import (
	"context"
	"fmt"
	"time"

	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	svgdocRepo "vecteditor/internal/domain/repositories/svgdoc"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSnapshotRepository stores one row per document
type PostgresSnapshotRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(config *RepositoryConfig) svgdocRepo.SnapshotRepository {
	return &PostgresSnapshotRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves the latest snapshot of a document
func (r *PostgresSnapshotRepository) Get(ctx context.Context, documentID string) (*svgdoc.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT document_id, data, revision, updated_at
		FROM %s
		WHERE document_id = $1
	`, r.tables.Documents)

	var snap svgdoc.Snapshot
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, documentID).Scan(
		&snap.DocumentID,
		&snap.Data,
		&snap.Revision,
		&snap.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return &snap, nil
}

// Save upserts the snapshot. A write must advance the stored revision;
// an equal or older one is a ConflictError.
func (r *PostgresSnapshotRepository) Save(ctx context.Context, snap *svgdoc.Snapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}

	query := upsertSnapshotQuery(r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, snap.DocumentID, snap.Data, snap.Revision, snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("document %s is already at or past revision %d", snap.DocumentID, snap.Revision),
			ResourceType: "document",
			ResourceID:   snap.DocumentID,
		}
	}

	return nil
}

// Delete removes a document; its move log goes with it
func (r *PostgresSnapshotRepository) Delete(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, documentID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return nil
}

// upsertSnapshotQuery only updates a row whose stored revision is lower,
// so two writers that both read revision N cannot both commit N+1.
func upsertSnapshotQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %[1]s (document_id, data, revision, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id) DO UPDATE
		SET data = EXCLUDED.data, revision = EXCLUDED.revision, updated_at = EXCLUDED.updated_at
		WHERE %[1]s.revision < EXCLUDED.revision
	`, table)
}
