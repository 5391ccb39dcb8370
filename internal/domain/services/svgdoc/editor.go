package svgdoc

import (
	"context"

	"vecteditor/internal/domain/models/svgdoc"
	"vecteditor/internal/sourceview"
)

// EditorService drives the source view of documents: it flattens the
// tree, plans drag and drop reorders and applies them to the engine.
type EditorService interface {
	// GetSourceView returns the current flat sequence of a document
	GetSourceView(ctx context.Context, documentID string) (*SourceView, error)

	// GetTree returns a snapshot of the document tree
	GetTree(ctx context.Context, documentID string) (*svgdoc.Tree, error)

	// MoveObject applies a completed drag.
	// A drag invalidated by a concurrent change returns Applied=false and no error.
	MoveObject(ctx context.Context, req *MoveObjectRequest) (*MoveResult, error)

	// ReplaceTree swaps the whole document content, as an import does
	ReplaceTree(ctx context.Context, documentID, peerID string, tree *svgdoc.Tree) (*SourceView, error)

	// History lists the most recent moves of a document
	History(ctx context.Context, documentID string, limit int) ([]svgdoc.MoveRecord, error)

	CreateObject(ctx context.Context, req *CreateObjectRequest) (*svgdoc.Object, error)
	EditObject(ctx context.Context, req *EditObjectRequest) (*svgdoc.Object, error)
	DeleteObject(ctx context.Context, documentID, peerID, objectID string) error

	AddPathPoint(ctx context.Context, req *AddPathPointRequest) (*svgdoc.PathCommand, error)
	RemovePathPoint(ctx context.Context, documentID, peerID, pathID, pointID string) error

	// Select records the peer's selection; unknown ids are rejected
	Select(ctx context.Context, documentID, peerID string, sel sourceview.Selection) (sourceview.Selection, error)

	// Selection returns the peer's selection, root when nothing was selected
	Selection(ctx context.Context, documentID, peerID string) (sourceview.Selection, error)
}

// SourceView is the flat rendering of a document at a revision
type SourceView struct {
	DocumentID string              `json:"document_id"`
	Revision   int64               `json:"revision"`
	Entries    sourceview.Sequence `json:"entries"`
}

// MoveObjectRequest is a drag that ended with ActiveID released over OverID
type MoveObjectRequest struct {
	DocumentID string `json:"-"`
	PeerID     string `json:"-"` // Set by handler from auth context
	ActiveID   string `json:"active_id"`
	OverID     string `json:"over_id"`
	Revision   *int64 `json:"revision,omitempty"` // Revision the drag started from
}

// MoveResult reports what a drag did
type MoveResult struct {
	Applied  bool             `json:"applied"`
	Plan     *sourceview.Plan `json:"plan,omitempty"`
	Revision int64            `json:"revision"`
	Reason   string           `json:"reason,omitempty"`
}

// CreateObjectRequest adds a new object at the end of a container
type CreateObjectRequest struct {
	DocumentID string         `json:"-"`
	PeerID     string         `json:"-"`
	Type       svgdoc.Kind    `json:"type"`
	ParentID   string         `json:"parent_id,omitempty"` // Empty or "root" for the document root
	Attributes svgdoc.Partial `json:"attributes"`
}

// EditObjectRequest applies partial field edits
type EditObjectRequest struct {
	DocumentID string         `json:"-"`
	PeerID     string         `json:"-"`
	ObjectID   string         `json:"-"`
	Changes    svgdoc.Partial `json:"changes"`
}

// AddPathPointRequest appends a command to a path
type AddPathPointRequest struct {
	DocumentID string                 `json:"-"`
	PeerID     string                 `json:"-"`
	PathID     string                 `json:"-"`
	Command    svgdoc.PathCommandType `json:"command"`
	Pos        svgdoc.Vec2            `json:"pos"`
}

// Change actions carried by ChangeEvent
const (
	ActionMove        = "move"
	ActionCreate      = "create"
	ActionEdit        = "edit"
	ActionDelete      = "delete"
	ActionPointAdd    = "point_add"
	ActionPointRemove = "point_remove"
	ActionReplace     = "replace"
)

// ChangeEvent tells peers that a document moved to a new revision
type ChangeEvent struct {
	DocumentID string `json:"document_id"`
	Revision   int64  `json:"revision"`
	PeerID     string `json:"peer_id"`
	Action     string `json:"action"`
	ObjectID   string `json:"object_id,omitempty"`
}
