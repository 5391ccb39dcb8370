package sourceview

import "vecteditor/internal/domain/models/svgdoc"

// Selection is the entity a peer has clicked in the source view.
// The zero value selects the root.
type Selection struct {
	ID   string      `json:"id"`
	Kind svgdoc.Kind `json:"kind,omitempty"`
}

// RootSelection selects the document root
var RootSelection = Selection{ID: Root}

// IsRoot reports whether the root is selected
func (s Selection) IsRoot() bool {
	return s.ID == "" || s.ID == Root
}

// IsSelected reports whether id is the selected entity.
// A GROUP_END id matches its group.
func (s Selection) IsSelected(id string) bool {
	if s.IsRoot() {
		return id == Root
	}
	if id == EndID(s.ID) {
		return true
	}
	return s.ID == id
}
