package svgdoc

import (
	"context"

	"vecteditor/internal/domain/models/svgdoc"
)

// Engine is the authoritative store of one document's object tree.
// The in-memory engine.Document implements it.
type Engine interface {
	ID() string
	Tree() *svgdoc.Tree
	Len() int
	Get(id string) (*svgdoc.Object, error)
	Parent(id string) (string, error)
	Depth(groupID string) int

	MoveToRoot(objectID string, index int) error
	MoveToGroup(objectID, groupID string, index int) error

	AddObject(parentID string, kind svgdoc.Kind, attrs svgdoc.Partial) (*svgdoc.Object, error)
	EditObject(id string, edits svgdoc.Partial) (*svgdoc.Object, error)
	RemoveObject(id string) error
	AddPathPoint(pathID string, cmd svgdoc.PathCommandType, pos svgdoc.Vec2) (*svgdoc.PathCommand, error)
	RemovePathPoint(pathID, pointID string) error

	Save() ([]byte, error)
	Load(data []byte) error
	Replace(tree *svgdoc.Tree) error
}

// Notifier fans document changes out to every connected peer
type Notifier interface {
	Publish(ctx context.Context, event *ChangeEvent) error
	Subscribe(ctx context.Context, documentID string) (<-chan ChangeEvent, func(), error)
}
