// Package editor serves the source view of documents: it keeps one
// session per open document, turns drags on the flat sequence into engine
// moves, persists every change and fans it out to other peers.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"vecteditor/internal/config"
	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	"vecteditor/internal/domain/repositories"
	svgdocRepo "vecteditor/internal/domain/repositories/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
	"vecteditor/internal/engine"
	"vecteditor/internal/sourceview"
)

// Reasons reported with a move that was not applied
const (
	ReasonStaleRevision = "stale revision"
	ReasonVanished      = "object no longer exists"
	ReasonUnchanged     = "already in place"
)

// service implements the EditorService interface
type service struct {
	snapshots svgdocRepo.SnapshotRepository
	moves     svgdocRepo.MoveLogRepository
	txManager repositories.TransactionManager
	notifier  svgdocSvc.Notifier
	cfg       *config.Config
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionSlot
}

// sessionSlot loads one document at most once; concurrent first requests
// for the same document wait on the same load.
type sessionSlot struct {
	once sync.Once
	sess *Session
	err  error
}

// NewService creates a new editor service
func NewService(
	snapshots svgdocRepo.SnapshotRepository,
	moves svgdocRepo.MoveLogRepository,
	txManager repositories.TransactionManager,
	notifier svgdocSvc.Notifier,
	cfg *config.Config,
	logger *slog.Logger,
) svgdocSvc.EditorService {
	return &service{
		snapshots: snapshots,
		moves:     moves,
		txManager: txManager,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*sessionSlot),
	}
}

// session returns the open session of a document, loading its snapshot on
// first use. A document without a snapshot starts empty. Only the slot
// lookup runs under s.mu; storage reads happen outside it.
func (s *service) session(ctx context.Context, documentID string) (*Session, error) {
	if err := validateDocumentID(documentID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	slot, ok := s.sessions[documentID]
	if !ok {
		slot = &sessionSlot{}
		s.sessions[documentID] = slot
	}
	s.mu.Unlock()

	slot.once.Do(func() {
		slot.sess, slot.err = s.open(ctx, documentID)
	})
	if slot.err != nil {
		// Let the next request retry the load
		s.mu.Lock()
		if s.sessions[documentID] == slot {
			delete(s.sessions, documentID)
		}
		s.mu.Unlock()
		return nil, slot.err
	}
	return slot.sess, nil
}

// open builds a session from the stored snapshot
func (s *service) open(ctx context.Context, documentID string) (*Session, error) {
	doc := engine.New(documentID)
	var revision int64
	snap, err := s.snapshots.Get(ctx, documentID)
	switch {
	case err == nil:
		if err := doc.Load(snap.Data); err != nil {
			return nil, fmt.Errorf("load document %s: %w", documentID, err)
		}
		revision = snap.Revision
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, err
	}

	sess, err := newSession(documentID, doc, revision, s.cfg.Debug)
	if err != nil {
		return nil, err
	}

	leaves, groups := doc.Tree().Counts()
	s.logger.Info("session opened",
		"document_id", documentID,
		"revision", revision,
		"leaves", leaves,
		"groups", groups,
	)
	return sess, nil
}

// evict drops sess from the cache so the next request reloads the stored
// document. A session that was already replaced is left alone.
func (s *service) evict(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.sessions[sess.documentID]; ok && slot.sess == sess {
		delete(s.sessions, sess.documentID)
	}
}

// GetSourceView returns the flat sequence the source editor renders
func (s *service) GetSourceView(ctx context.Context, documentID string) (*svgdocSvc.SourceView, error) {
	sess, err := s.session(ctx, documentID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// GetTree returns a snapshot of the document tree
func (s *service) GetTree(ctx context.Context, documentID string) (*svgdoc.Tree, error) {
	sess, err := s.session(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return sess.engine.Tree(), nil
}

// MoveObject applies a completed drag. The drag was computed by the client
// against some earlier sequence, so the ids and the optional revision are
// checked against a freshly flattened snapshot before planning.
func (s *service) MoveObject(ctx context.Context, req *svgdocSvc.MoveObjectRequest) (*svgdocSvc.MoveResult, error) {
	if err := validateMoveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	sess, err := s.session(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if req.Revision != nil && *req.Revision != sess.revision {
		return s.skipMove(req, sess, nil, ReasonStaleRevision), nil
	}

	fresh := sourceview.Flatten(sess.engine.Tree())
	if fresh.IndexOf(req.ActiveID) < 0 || fresh.IndexOf(req.OverID) < 0 {
		return s.skipMove(req, sess, nil, ReasonVanished), nil
	}

	plan, err := sourceview.PlanMove(req.ActiveID, req.OverID, fresh)
	if err != nil {
		if errors.Is(err, sourceview.ErrDropIntoSelf) {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return nil, fmt.Errorf("plan move in %s: %w", req.DocumentID, err)
	}

	fromContainer, fromIndex, ok := sourceview.Locate(plan.ObjectID, fresh)
	if !ok {
		return nil, fmt.Errorf("locate %s: %w", plan.ObjectID, sourceview.ErrUnresolved)
	}
	if fromContainer == plan.Container && fromIndex == plan.Index {
		return s.skipMove(req, sess, &plan, ReasonUnchanged), nil
	}

	if !plan.IsRoot() {
		if err := s.checkMoveDepth(sess, plan); err != nil {
			return nil, err
		}
	}

	record := &svgdoc.MoveRecord{
		DocumentID:    req.DocumentID,
		ObjectID:      plan.ObjectID,
		FromContainer: fromContainer,
		FromIndex:     fromIndex,
		ToContainer:   plan.Container,
		ToIndex:       plan.Index,
		PeerID:        req.PeerID,
	}
	change := &change{peerID: req.PeerID, action: svgdocSvc.ActionMove, objectID: plan.ObjectID, record: record}

	err = s.apply(ctx, sess, change, func() error {
		if plan.IsRoot() {
			return sess.engine.MoveToRoot(plan.ObjectID, plan.Index)
		}
		return sess.engine.MoveToGroup(plan.ObjectID, plan.Container, plan.Index)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("object moved",
		"document_id", req.DocumentID,
		"object_id", plan.ObjectID,
		"from", fromContainer,
		"from_index", fromIndex,
		"to", plan.Container,
		"to_index", plan.Index,
		"revision", sess.revision,
		"peer_id", req.PeerID,
	)

	return &svgdocSvc.MoveResult{Applied: true, Plan: &plan, Revision: sess.revision}, nil
}

func (s *service) skipMove(req *svgdocSvc.MoveObjectRequest, sess *Session, plan *sourceview.Plan, reason string) *svgdocSvc.MoveResult {
	s.logger.Debug("move skipped",
		"document_id", req.DocumentID,
		"active_id", req.ActiveID,
		"over_id", req.OverID,
		"revision", sess.revision,
		"reason", reason,
	)
	return &svgdocSvc.MoveResult{Applied: false, Plan: plan, Revision: sess.revision, Reason: reason}
}

// checkMoveDepth rejects moves that would nest groups past the limit
func (s *service) checkMoveDepth(sess *Session, plan sourceview.Plan) error {
	obj, err := sess.engine.Get(plan.ObjectID)
	if err != nil {
		return err
	}
	subtree := &svgdoc.Tree{Children: []*svgdoc.Object{obj}}
	if depth := sess.engine.Depth(plan.Container) + subtree.GroupDepth(); depth > s.cfg.MaxGroupDepth {
		return fmt.Errorf("%w: group nesting %d exceeds %d", domain.ErrValidation, depth, s.cfg.MaxGroupDepth)
	}
	return nil
}

// CreateObject appends a new object to a container
func (s *service) CreateObject(ctx context.Context, req *svgdocSvc.CreateObjectRequest) (*svgdoc.Object, error) {
	if req.ParentID == sourceview.Root {
		req.ParentID = ""
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	sess, err := s.session(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if n := sess.engine.Len(); n >= s.cfg.MaxObjectsPerDocument {
		return nil, fmt.Errorf("%w: document already holds %d objects", domain.ErrValidation, n)
	}
	if req.Type == svgdoc.KindGroup && req.ParentID != "" {
		if depth := sess.engine.Depth(req.ParentID) + 1; depth > s.cfg.MaxGroupDepth {
			return nil, fmt.Errorf("%w: group nesting %d exceeds %d", domain.ErrValidation, depth, s.cfg.MaxGroupDepth)
		}
	}

	var created *svgdoc.Object
	change := &change{peerID: req.PeerID, action: svgdocSvc.ActionCreate}
	err = s.apply(ctx, sess, change, func() error {
		obj, err := sess.engine.AddObject(req.ParentID, req.Type, req.Attributes)
		if err != nil {
			return err
		}
		created = obj
		change.objectID = obj.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("object created",
		"document_id", req.DocumentID,
		"object_id", created.ID,
		"type", created.Type,
		"parent_id", req.ParentID,
		"revision", sess.revision,
	)
	return created, nil
}

// EditObject applies partial field edits to an object
func (s *service) EditObject(ctx context.Context, req *svgdocSvc.EditObjectRequest) (*svgdoc.Object, error) {
	if err := validateEditRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	sess, err := s.session(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var edited *svgdoc.Object
	change := &change{peerID: req.PeerID, action: svgdocSvc.ActionEdit, objectID: req.ObjectID}
	err = s.apply(ctx, sess, change, func() error {
		obj, err := sess.engine.EditObject(req.ObjectID, req.Changes)
		edited = obj
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("object edited", "document_id", req.DocumentID, "object_id", req.ObjectID, "revision", sess.revision)
	return edited, nil
}

// DeleteObject removes an object and its subtree. Peers that had the
// object (or anything inside it) selected fall back to the root.
func (s *service) DeleteObject(ctx context.Context, documentID, peerID, objectID string) error {
	sess, err := s.session(ctx, documentID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	change := &change{peerID: peerID, action: svgdocSvc.ActionDelete, objectID: objectID}
	err = s.apply(ctx, sess, change, func() error {
		return sess.engine.RemoveObject(objectID)
	})
	if err != nil {
		return err
	}
	sess.pruneSelections()

	s.logger.Info("object deleted", "document_id", documentID, "object_id", objectID, "revision", sess.revision)
	return nil
}

// AddPathPoint appends a drawing command to a path
func (s *service) AddPathPoint(ctx context.Context, req *svgdocSvc.AddPathPointRequest) (*svgdoc.PathCommand, error) {
	if err := validatePointRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	sess, err := s.session(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	path, err := sess.engine.Get(req.PathID)
	if err != nil {
		return nil, err
	}
	if len(path.Points) >= config.MaxPathPoints {
		return nil, fmt.Errorf("%w: path %s already has %d points", domain.ErrValidation, req.PathID, len(path.Points))
	}

	var point *svgdoc.PathCommand
	change := &change{peerID: req.PeerID, action: svgdocSvc.ActionPointAdd, objectID: req.PathID}
	err = s.apply(ctx, sess, change, func() error {
		p, err := sess.engine.AddPathPoint(req.PathID, req.Command, req.Pos)
		point = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return point, nil
}

// RemovePathPoint deletes one command from a path
func (s *service) RemovePathPoint(ctx context.Context, documentID, peerID, pathID, pointID string) error {
	sess, err := s.session(ctx, documentID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	change := &change{peerID: peerID, action: svgdocSvc.ActionPointRemove, objectID: pathID}
	return s.apply(ctx, sess, change, func() error {
		return sess.engine.RemovePathPoint(pathID, pointID)
	})
}

// ReplaceTree swaps the whole document content
func (s *service) ReplaceTree(ctx context.Context, documentID, peerID string, tree *svgdoc.Tree) (*svgdocSvc.SourceView, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: tree is required", domain.ErrValidation)
	}
	leaves, groups := tree.Counts()
	if n := leaves + groups; n > s.cfg.MaxObjectsPerDocument {
		return nil, fmt.Errorf("%w: tree holds %d objects, limit is %d", domain.ErrValidation, n, s.cfg.MaxObjectsPerDocument)
	}
	if depth := tree.GroupDepth(); depth > s.cfg.MaxGroupDepth {
		return nil, fmt.Errorf("%w: group nesting %d exceeds %d", domain.ErrValidation, depth, s.cfg.MaxGroupDepth)
	}

	sess, err := s.session(ctx, documentID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	change := &change{peerID: peerID, action: svgdocSvc.ActionReplace}
	err = s.apply(ctx, sess, change, func() error {
		return sess.engine.Replace(tree)
	})
	if err != nil {
		return nil, err
	}
	sess.pruneSelections()

	s.logger.Info("document replaced",
		"document_id", documentID,
		"leaves", leaves,
		"groups", groups,
		"revision", sess.revision,
	)
	return sess.view(), nil
}

// History lists the most recent moves of a document
func (s *service) History(ctx context.Context, documentID string, limit int) ([]svgdoc.MoveRecord, error) {
	if err := validateDocumentID(documentID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	switch {
	case limit <= 0:
		limit = s.cfg.HistoryLimit
	case limit > config.MaxHistoryLimit:
		limit = config.MaxHistoryLimit
	}
	return s.moves.List(ctx, documentID, limit)
}

// Select records what a peer clicked. A GROUP_END id selects its group.
func (s *service) Select(ctx context.Context, documentID, peerID string, sel sourceview.Selection) (sourceview.Selection, error) {
	sess, err := s.session(ctx, documentID)
	if err != nil {
		return sourceview.Selection{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sel.IsRoot() {
		delete(sess.selections, peerID)
		return sourceview.RootSelection, nil
	}

	i := sess.seq.IndexOf(sel.ID)
	if i < 0 {
		return sourceview.Selection{}, fmt.Errorf("object %s: %w", sel.ID, domain.ErrNotFound)
	}
	entry := sess.seq[i]
	selected := sourceview.Selection{ID: entry.GroupID(), Kind: entry.Shape}
	sess.selections[peerID] = selected
	return selected, nil
}

// Selection returns a peer's current selection
func (s *service) Selection(ctx context.Context, documentID, peerID string) (sourceview.Selection, error) {
	sess, err := s.session(ctx, documentID)
	if err != nil {
		return sourceview.Selection{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.selection(peerID), nil
}
