// Package memory keeps snapshots, move history and change fan-out inside
// the process. The server falls back to it when no database or Redis
// is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	"vecteditor/internal/domain/repositories"
	svgdocRepo "vecteditor/internal/domain/repositories/svgdoc"

	"github.com/google/uuid"
)

// Store holds snapshots and move records in maps
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]svgdoc.Snapshot
	moves     map[string][]svgdoc.MoveRecord
	txMu      sync.Mutex
}

// txKey carries the staged writes of an open transaction
type txKey struct{}

// staged holds writes made inside ExecTx until fn returns successfully
type staged struct {
	snapshots map[string]svgdoc.Snapshot
	moves     []svgdoc.MoveRecord
}

func stagedFrom(ctx context.Context) *staged {
	tx, _ := ctx.Value(txKey{}).(*staged)
	return tx
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		snapshots: make(map[string]svgdoc.Snapshot),
		moves:     make(map[string][]svgdoc.MoveRecord),
	}
}

// Snapshots returns the store as a SnapshotRepository
func (s *Store) Snapshots() svgdocRepo.SnapshotRepository { return snapshotRepo{s} }

// Moves returns the store as a MoveLogRepository
func (s *Store) Moves() svgdocRepo.MoveLogRepository { return moveRepo{s} }

// ExecTx serializes transactions. Writes made through ctx are staged and
// become visible only when fn succeeds; on error they are discarded.
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &staged{snapshots: make(map[string]svgdoc.Snapshot)}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Non-transactional writers may have raced the staged snapshots
	for _, snap := range tx.snapshots {
		if err := s.checkRevision(snap); err != nil {
			return err
		}
	}
	for id, snap := range tx.snapshots {
		s.snapshots[id] = snap
	}
	for _, rec := range tx.moves {
		s.moves[rec.DocumentID] = append(s.moves[rec.DocumentID], rec)
	}
	return nil
}

// checkRevision rejects a snapshot that does not advance the stored
// revision. Caller holds mu.
func (s *Store) checkRevision(snap svgdoc.Snapshot) error {
	if existing, ok := s.snapshots[snap.DocumentID]; ok && existing.Revision >= snap.Revision {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("document %s is already at revision %d", snap.DocumentID, existing.Revision),
			ResourceType: "document",
			ResourceID:   snap.DocumentID,
		}
	}
	return nil
}

var _ repositories.TransactionManager = (*Store)(nil)

type snapshotRepo struct{ s *Store }

func (r snapshotRepo) Get(ctx context.Context, documentID string) (*svgdoc.Snapshot, error) {
	if tx := stagedFrom(ctx); tx != nil {
		if snap, ok := tx.snapshots[documentID]; ok {
			snap.Data = append([]byte(nil), snap.Data...)
			return &snap, nil
		}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	snap, ok := r.s.snapshots[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	snap.Data = append([]byte(nil), snap.Data...)
	return &snap, nil
}

func (r snapshotRepo) Save(ctx context.Context, snap *svgdoc.Snapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	stored := *snap
	stored.Data = append([]byte(nil), snap.Data...)

	tx := stagedFrom(ctx)
	if tx != nil {
		if prev, ok := tx.snapshots[snap.DocumentID]; ok && prev.Revision >= snap.Revision {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s is already at revision %d", snap.DocumentID, prev.Revision),
				ResourceType: "document",
				ResourceID:   snap.DocumentID,
			}
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkRevision(stored); err != nil {
		return err
	}
	if tx != nil {
		tx.snapshots[snap.DocumentID] = stored
		return nil
	}
	r.s.snapshots[snap.DocumentID] = stored
	return nil
}

func (r snapshotRepo) Delete(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.snapshots[documentID]; !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	delete(r.s.snapshots, documentID)
	delete(r.s.moves, documentID)
	return nil
}

type moveRepo struct{ s *Store }

func (r moveRepo) Append(ctx context.Context, rec *svgdoc.MoveRecord) error {
	tx := stagedFrom(ctx)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, exists := r.s.snapshots[rec.DocumentID]
	if !exists && tx != nil {
		_, exists = tx.snapshots[rec.DocumentID]
	}
	if !exists {
		return fmt.Errorf("document %s: %w", rec.DocumentID, domain.ErrNotFound)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if tx != nil {
		tx.moves = append(tx.moves, *rec)
		return nil
	}
	r.s.moves[rec.DocumentID] = append(r.s.moves[rec.DocumentID], *rec)
	return nil
}

func (r moveRepo) List(_ context.Context, documentID string, limit int) ([]svgdoc.MoveRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	records := append([]svgdoc.MoveRecord{}, r.s.moves[documentID]...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Revision > records[j].Revision
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
