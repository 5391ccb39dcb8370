package svgdoc

// PathCommandType is the drawing command of a single path point
type PathCommandType string

const (
	PathStart             PathCommandType = "START"               // M
	PathLine              PathCommandType = "LINE"                // L
	PathClose             PathCommandType = "CLOSE"               // Z
	PathBezier            PathCommandType = "BEZIER"              // C
	PathBezierReflect     PathCommandType = "BEZIER_REFLECT"      // S
	PathBezierQuad        PathCommandType = "BEZIER_QUAD"         // Q
	PathBezierQuadReflect PathCommandType = "BEZIER_QUAD_REFLECT" // T
)

// Valid reports whether t is a known path command
func (t PathCommandType) Valid() bool {
	switch t {
	case PathStart, PathLine, PathClose, PathBezier,
		PathBezierReflect, PathBezierQuad, PathBezierQuadReflect:
		return true
	}
	return false
}

// PathCommand is one point of a path.
// Handle1 is used by BEZIER, BEZIER_REFLECT and BEZIER_QUAD; Handle2 only by BEZIER.
type PathCommand struct {
	ID      string          `json:"id" yaml:"id"`
	Type    PathCommandType `json:"type" yaml:"type"`
	Pos     Vec2            `json:"pos" yaml:"pos"`
	Handle1 *Vec2           `json:"handle1,omitempty" yaml:"handle1,omitempty"`
	Handle2 *Vec2           `json:"handle2,omitempty" yaml:"handle2,omitempty"`
}

// Clone returns a copy that shares no handles with c
func (c PathCommand) Clone() PathCommand {
	if c.Handle1 != nil {
		h := *c.Handle1
		c.Handle1 = &h
	}
	if c.Handle2 != nil {
		h := *c.Handle2
		c.Handle2 = &h
	}
	return c
}
