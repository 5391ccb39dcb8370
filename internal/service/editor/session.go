package editor

import (
	"fmt"
	"sync"

	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
	"vecteditor/internal/sourceview"
)

// Session is the editing context of one open document. It owns the
// engine, the flat sequence derived from it, the revision counter and
// each peer's selection. Every field is guarded by mu; mutations of one
// document never overlap.
type Session struct {
	mu         sync.Mutex
	documentID string
	engine     svgdocSvc.Engine
	seq        sourceview.Sequence
	revision   int64
	selections map[string]sourceview.Selection
	debug      bool
}

func newSession(documentID string, engine svgdocSvc.Engine, revision int64, debug bool) (*Session, error) {
	s := &Session{
		documentID: documentID,
		engine:     engine,
		revision:   revision,
		selections: make(map[string]sourceview.Selection),
		debug:      debug,
	}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// refresh re-flattens the engine tree. Caller holds mu.
func (s *Session) refresh() error {
	seq := sourceview.Flatten(s.engine.Tree())
	if s.debug {
		if err := seq.Validate(); err != nil {
			return fmt.Errorf("flatten %s: %w", s.documentID, err)
		}
	}
	s.seq = seq
	return nil
}

// view copies the current sequence. Caller holds mu.
func (s *Session) view() *svgdocSvc.SourceView {
	entries := make(sourceview.Sequence, len(s.seq))
	copy(entries, s.seq)
	return &svgdocSvc.SourceView{
		DocumentID: s.documentID,
		Revision:   s.revision,
		Entries:    entries,
	}
}

// selection returns a peer's selection, falling back to root when the
// selected object no longer exists. Caller holds mu.
func (s *Session) selection(peerID string) sourceview.Selection {
	sel, ok := s.selections[peerID]
	if !ok || sel.IsRoot() {
		return sourceview.RootSelection
	}
	if s.seq.IndexOf(sel.ID) < 0 {
		delete(s.selections, peerID)
		return sourceview.RootSelection
	}
	return sel
}

// pruneSelections resets every selection whose object vanished. Caller holds mu.
func (s *Session) pruneSelections() {
	for peer, sel := range s.selections {
		if !sel.IsRoot() && s.seq.IndexOf(sel.ID) < 0 {
			delete(s.selections, peer)
		}
	}
}
