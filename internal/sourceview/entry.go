// Package sourceview linearizes a document tree into the flat, tagged
// sequence shown by the source editor, and translates drags on that flat
// list back into hierarchical moves.
package sourceview

import (
	"fmt"
	"strings"

	"vecteditor/internal/domain/models/svgdoc"
)

// Root is the container id of objects that are not inside any group
const Root = svgdoc.RootID

// EndPrefix marks the id of a GROUP_END entry. The group id follows it.
const EndPrefix = svgdoc.EndPrefix

// EntryKind tags an entry of a flat sequence
type EntryKind string

const (
	KindLeaf       EntryKind = "LEAF"
	KindGroupStart EntryKind = "GROUP_START"
	KindGroupEnd   EntryKind = "GROUP_END"
)

// Entry is one line of the linearized document
type Entry struct {
	Kind  EntryKind   `json:"kind"`
	ID    string      `json:"id"`
	Depth int         `json:"depth"`
	Shape svgdoc.Kind `json:"shape,omitempty"`
}

// GroupID returns the id of the group a GROUP_START or GROUP_END entry
// belongs to, and the entry's own id for leaves.
func (e Entry) GroupID() string {
	if e.Kind == KindGroupEnd {
		return strings.TrimPrefix(e.ID, EndPrefix)
	}
	return e.ID
}

// EndID returns the GROUP_END id paired with a group id
func EndID(groupID string) string {
	return EndPrefix + groupID
}

// Sequence is an ordered, immutable flattening of a document tree
type Sequence []Entry

// IndexOf returns the position of the entry with the given id, or -1
func (s Sequence) IndexOf(id string) int {
	for i, e := range s {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// matchEnd returns the position of the GROUP_END paired with the
// GROUP_START at start.
func (s Sequence) matchEnd(start int) (int, bool) {
	endID := EndID(s[start].ID)
	for i := start + 1; i < len(s); i++ {
		if s[i].Kind == KindGroupEnd && s[i].ID == endID {
			return i, true
		}
	}
	return -1, false
}

// span returns the inclusive range covered by the entry at i:
// the entry itself for a leaf, START through END for a group.
func (s Sequence) span(i int) (int, int, bool) {
	if s[i].Kind != KindGroupStart {
		return i, i, true
	}
	end, ok := s.matchEnd(i)
	return i, end, ok
}

// Validate checks that every GROUP_START is closed by its own GROUP_END
// and that group intervals never partially overlap.
func (s Sequence) Validate() error {
	var open []string
	for i, e := range s {
		switch e.Kind {
		case KindGroupStart:
			open = append(open, e.ID)
		case KindGroupEnd:
			if len(open) == 0 {
				return fmt.Errorf("entry %d: %q closes no open group", i, e.ID)
			}
			top := open[len(open)-1]
			if e.GroupID() != top {
				return fmt.Errorf("entry %d: %q closes group %q while %q is open", i, e.ID, e.GroupID(), top)
			}
			open = open[:len(open)-1]
		case KindLeaf:
		default:
			return fmt.Errorf("entry %d: unknown kind %q", i, e.Kind)
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("group %q is never closed", open[len(open)-1])
	}
	return nil
}
