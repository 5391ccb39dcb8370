package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
)

// change describes one mutation for persistence and fan-out
type change struct {
	peerID   string
	action   string
	objectID string
	record   *svgdoc.MoveRecord // moves only
}

// apply runs mutate against the session engine, then persists the new
// snapshot (and move record) in one transaction, bumps the revision,
// re-flattens and notifies peers. When persisting fails the engine is
// restored to its previous content; when it fails because another writer
// already committed this revision, the session is also evicted so the
// next request works on the stored document. Caller holds sess.mu.
func (s *service) apply(ctx context.Context, sess *Session, c *change, mutate func() error) error {
	before, err := sess.engine.Save()
	if err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}

	revision := sess.revision + 1
	if err := s.persist(ctx, sess, c, revision); err != nil {
		if restoreErr := sess.engine.Load(before); restoreErr != nil {
			s.logger.Error("failed to restore document after persist error",
				"document_id", sess.documentID,
				"error", restoreErr,
			)
		}
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn("document changed by another writer, reloading",
				"document_id", sess.documentID,
				"revision", revision,
			)
			s.evict(sess)
		}
		return err
	}

	sess.revision = revision
	if err := sess.refresh(); err != nil {
		return err
	}

	s.publish(ctx, &svgdocSvc.ChangeEvent{
		DocumentID: sess.documentID,
		Revision:   revision,
		PeerID:     c.peerID,
		Action:     c.action,
		ObjectID:   c.objectID,
	})
	return nil
}

func (s *service) persist(ctx context.Context, sess *Session, c *change, revision int64) error {
	data, err := sess.engine.Save()
	if err != nil {
		return err
	}
	now := time.Now()

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		snap := &svgdoc.Snapshot{
			DocumentID: sess.documentID,
			Data:       data,
			Revision:   revision,
			UpdatedAt:  now,
		}
		if err := s.snapshots.Save(txCtx, snap); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		if c.record != nil {
			c.record.Revision = revision
			c.record.CreatedAt = now
			if err := s.moves.Append(txCtx, c.record); err != nil {
				return fmt.Errorf("record move: %w", err)
			}
		}
		return nil
	})
}

// publish notifies peers; a failed notification does not undo the change
func (s *service) publish(ctx context.Context, event *svgdocSvc.ChangeEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish change",
			"document_id", event.DocumentID,
			"revision", event.Revision,
			"action", event.Action,
			"error", err,
		)
	}
}
