package postgres

import (
	"context"
	"fmt"
	"time"

	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	svgdocRepo "vecteditor/internal/domain/repositories/svgdoc"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMoveLogRepository appends applied moves to the history table
type PostgresMoveLogRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMoveLogRepository creates a new move log repository
func NewMoveLogRepository(config *RepositoryConfig) svgdocRepo.MoveLogRepository {
	return &PostgresMoveLogRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Append stores one applied move
func (r *PostgresMoveLogRepository) Append(ctx context.Context, rec *svgdoc.MoveRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, object_id, from_container, from_index,
			to_container, to_index, peer_id, revision, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Moves)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		rec.ID,
		rec.DocumentID,
		rec.ObjectID,
		rec.FromContainer,
		rec.FromIndex,
		rec.ToContainer,
		rec.ToIndex,
		rec.PeerID,
		rec.Revision,
		rec.CreatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", rec.DocumentID, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("move %s already recorded", rec.ID),
				ResourceType: "move",
				ResourceID:   rec.ID,
			}
		}
		return fmt.Errorf("append move: %w", err)
	}

	return nil
}

// List returns the newest moves of a document first
func (r *PostgresMoveLogRepository) List(ctx context.Context, documentID string, limit int) ([]svgdoc.MoveRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, object_id, from_container, from_index,
			to_container, to_index, peer_id, revision, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at DESC, revision DESC
		LIMIT $2
	`, r.tables.Moves)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	records := []svgdoc.MoveRecord{}
	for rows.Next() {
		var rec svgdoc.MoveRecord
		err := rows.Scan(
			&rec.ID,
			&rec.DocumentID,
			&rec.ObjectID,
			&rec.FromContainer,
			&rec.FromIndex,
			&rec.ToContainer,
			&rec.ToIndex,
			&rec.PeerID,
			&rec.Revision,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}

	return records, nil
}
