// Package engine is a single-replica document engine. It owns the
// authoritative object tree of one document and exposes the snapshot
// read and hierarchical mutations the editor works against.
package engine

import (
	"encoding/json"
	"fmt"
	"sync"

	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"

	"github.com/google/uuid"
)

// Document is the in-memory engine for one document.
// All methods are safe for concurrent use; reads return deep copies.
type Document struct {
	mu       sync.RWMutex
	id       string
	children []*svgdoc.Object
	objects  map[string]*svgdoc.Object
	parents  map[string]string // object id -> parent group id, "" for root
}

// New creates an empty document
func New(id string) *Document {
	return &Document{
		id:       id,
		children: []*svgdoc.Object{},
		objects:  make(map[string]*svgdoc.Object),
		parents:  make(map[string]string),
	}
}

// ID returns the document id
func (d *Document) ID() string {
	return d.id
}

// Tree returns a snapshot of the whole document
func (d *Document) Tree() *svgdoc.Tree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return (&svgdoc.Tree{Children: d.children}).Clone()
}

// Len returns the number of objects in the document
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}

// Get returns a copy of one object and its subtree
func (d *Document) Get(id string) (*svgdoc.Object, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	obj, ok := d.objects[id]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	return obj.Clone(), nil
}

// Parent returns the id of the group holding id, or "" for the root
func (d *Document) Parent(id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.objects[id]; !ok {
		return "", fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	return d.parents[id], nil
}

// Depth returns how many groups enclose a container.
// The root has depth 0 and a top-level group has depth 1.
func (d *Document) Depth(groupID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	depth := 0
	for id := groupID; id != ""; id = d.parents[id] {
		if _, ok := d.objects[id]; !ok {
			break
		}
		depth++
	}
	return depth
}

// MoveToRoot moves an object (with its subtree) to index among the root's children
func (d *Document) MoveToRoot(objectID string, index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.move(objectID, "", index)
}

// MoveToGroup moves an object (with its subtree) to index among a group's children
func (d *Document) MoveToGroup(objectID, groupID string, index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.move(objectID, groupID, index)
}

func (d *Document) move(objectID, groupID string, index int) error {
	obj, ok := d.objects[objectID]
	if !ok {
		return fmt.Errorf("object %s: %w", objectID, domain.ErrNotFound)
	}
	if groupID != "" {
		group, ok := d.objects[groupID]
		if !ok {
			return fmt.Errorf("group %s: %w", groupID, domain.ErrNotFound)
		}
		if !group.IsGroup() {
			return fmt.Errorf("%w: %s is not a group", domain.ErrValidation, groupID)
		}
		if d.isAncestor(objectID, groupID) {
			return fmt.Errorf("%w: cannot move %s into itself or its descendants", domain.ErrValidation, objectID)
		}
	}

	d.detach(objectID)
	d.insert(obj, groupID, index)
	return nil
}

// isAncestor reports whether ancestorID is groupID or encloses it
func (d *Document) isAncestor(ancestorID, groupID string) bool {
	for id := groupID; id != ""; id = d.parents[id] {
		if id == ancestorID {
			return true
		}
	}
	return false
}

// AddObject creates a new object of the given kind under parentID ("" = root),
// appended after the existing children.
func (d *Document) AddObject(parentID string, kind svgdoc.Kind, attrs svgdoc.Partial) (*svgdoc.Object, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown object type %q", domain.ErrValidation, kind)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if parentID != "" {
		parent, ok := d.objects[parentID]
		if !ok {
			return nil, fmt.Errorf("group %s: %w", parentID, domain.ErrNotFound)
		}
		if !parent.IsGroup() {
			return nil, fmt.Errorf("%w: %s is not a group", domain.ErrValidation, parentID)
		}
	}

	obj := newObject(kind)
	attrs.Apply(obj)
	for i := range obj.Points {
		if obj.Points[i].ID == "" {
			obj.Points[i].ID = uuid.NewString()
		}
	}

	d.objects[obj.ID] = obj
	d.insert(obj, parentID, -1)
	return obj.Clone(), nil
}

// newObject returns an object with the defaults a fresh shape starts with
func newObject(kind svgdoc.Kind) *svgdoc.Object {
	obj := &svgdoc.Object{Type: kind, ID: uuid.NewString()}
	if kind == svgdoc.KindGroup {
		obj.Children = []*svgdoc.Object{}
		return obj
	}

	fill, stroke, width := svgdoc.DefaultFill, svgdoc.DefaultStroke, svgdoc.DefaultStrokeWidth
	obj.Fill, obj.Stroke, obj.StrokeWidth = &fill, &stroke, &width
	obj.Opacity = 1

	switch kind {
	case svgdoc.KindCircle:
		obj.Radius = 10
	case svgdoc.KindRectangle:
		obj.Width, obj.Height = 20, 20
	case svgdoc.KindPath:
		obj.Points = []svgdoc.PathCommand{}
	}
	return obj
}

// EditObject applies field edits to an object
func (d *Document) EditObject(id string, edits svgdoc.Partial) (*svgdoc.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, ok := d.objects[id]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	if !edits.Apply(obj) {
		return nil, fmt.Errorf("%w: no applicable fields for %s", domain.ErrValidation, obj.Type)
	}
	for i := range obj.Points {
		if obj.Points[i].ID == "" {
			obj.Points[i].ID = uuid.NewString()
		}
	}
	return obj.Clone(), nil
}

// RemoveObject deletes an object and its whole subtree
func (d *Document) RemoveObject(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, ok := d.objects[id]
	if !ok {
		return fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	d.detach(id)

	var forget func(o *svgdoc.Object)
	forget = func(o *svgdoc.Object) {
		delete(d.objects, o.ID)
		delete(d.parents, o.ID)
		for _, child := range o.Children {
			forget(child)
		}
	}
	forget(obj)
	return nil
}

// AddPathPoint appends a command to a path. Bezier handles start at pos.
func (d *Document) AddPathPoint(pathID string, cmd svgdoc.PathCommandType, pos svgdoc.Vec2) (*svgdoc.PathCommand, error) {
	if !cmd.Valid() {
		return nil, fmt.Errorf("%w: unknown path command %q", domain.ErrValidation, cmd)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	path, err := d.path(pathID)
	if err != nil {
		return nil, err
	}

	point := svgdoc.PathCommand{ID: uuid.NewString(), Type: cmd, Pos: pos}
	switch cmd {
	case svgdoc.PathBezier:
		h1, h2 := pos, pos
		point.Handle1, point.Handle2 = &h1, &h2
	case svgdoc.PathBezierReflect, svgdoc.PathBezierQuad:
		h := pos
		point.Handle1 = &h
	}

	path.Points = append(path.Points, point)
	return &point, nil
}

// RemovePathPoint deletes one command from a path
func (d *Document) RemovePathPoint(pathID, pointID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, err := d.path(pathID)
	if err != nil {
		return err
	}
	for i, p := range path.Points {
		if p.ID == pointID {
			path.Points = append(path.Points[:i], path.Points[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("point %s: %w", pointID, domain.ErrNotFound)
}

func (d *Document) path(pathID string) (*svgdoc.Object, error) {
	obj, ok := d.objects[pathID]
	if !ok {
		return nil, fmt.Errorf("path %s: %w", pathID, domain.ErrNotFound)
	}
	if obj.Type != svgdoc.KindPath {
		return nil, fmt.Errorf("%w: %s is not a path", domain.ErrValidation, pathID)
	}
	return obj, nil
}

// Save serializes the document tree
func (d *Document) Save() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, err := json.Marshal(svgdoc.Tree{Children: d.children})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Load replaces the document content with a blob produced by Save
func (d *Document) Load(data []byte) error {
	var tree svgdoc.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("%w: decode document: %v", domain.ErrValidation, err)
	}
	return d.Replace(&tree)
}

// Replace swaps the document content for a copy of tree.
// The tree is checked for unique, non-reserved ids and leaf-only children.
func (d *Document) Replace(tree *svgdoc.Tree) error {
	tree = tree.Clone()
	objects := make(map[string]*svgdoc.Object)
	parents := make(map[string]string)

	var index func(parentID string, children []*svgdoc.Object) error
	index = func(parentID string, children []*svgdoc.Object) error {
		for _, child := range children {
			if child == nil {
				return fmt.Errorf("%w: nil object under %q", domain.ErrValidation, parentID)
			}
			if err := svgdoc.ValidateID(child.ID); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrValidation, err)
			}
			if !child.Type.Valid() {
				return fmt.Errorf("%w: object %s has unknown type %q", domain.ErrValidation, child.ID, child.Type)
			}
			if _, dup := objects[child.ID]; dup {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("duplicate object id %q", child.ID),
					ResourceType: "object",
					ResourceID:   child.ID,
				}
			}
			if !child.IsGroup() && len(child.Children) > 0 {
				return fmt.Errorf("%w: %s %s cannot have children", domain.ErrValidation, child.Type, child.ID)
			}
			objects[child.ID] = child
			parents[child.ID] = parentID
			if child.IsGroup() {
				if child.Children == nil {
					child.Children = []*svgdoc.Object{}
				}
				if err := index(child.ID, child.Children); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := index("", tree.Children); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.children = tree.Children
	if d.children == nil {
		d.children = []*svgdoc.Object{}
	}
	d.objects = objects
	d.parents = parents
	return nil
}

// siblings returns a pointer to the child list of a container
func (d *Document) siblings(parentID string) *[]*svgdoc.Object {
	if parentID == "" {
		return &d.children
	}
	return &d.objects[parentID].Children
}

// detach unlinks an object from its parent's child list
func (d *Document) detach(id string) {
	list := d.siblings(d.parents[id])
	for i, child := range *list {
		if child.ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// insert links obj into a container at index; out-of-range indexes append
func (d *Document) insert(obj *svgdoc.Object, parentID string, index int) {
	list := d.siblings(parentID)
	if index < 0 || index > len(*list) {
		index = len(*list)
	}
	*list = append(*list, nil)
	copy((*list)[index+1:], (*list)[index:])
	(*list)[index] = obj
	d.parents[obj.ID] = parentID
}

var _ svgdocSvc.Engine = (*Document)(nil)
