package svgdoc

// Kind identifies the type of a document object
type Kind string

const (
	KindCircle    Kind = "CIRCLE"
	KindRectangle Kind = "RECTANGLE"
	KindPath      Kind = "PATH"
	KindGroup     Kind = "GROUP"
)

// Valid reports whether k is one of the known object kinds
func (k Kind) Valid() bool {
	switch k {
	case KindCircle, KindRectangle, KindPath, KindGroup:
		return true
	}
	return false
}

// Vec2 is an integer point in document coordinates
type Vec2 struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Color is an RGBA color. Channels are 0-255, alpha is 0-1.
type Color struct {
	Red     int     `json:"red" yaml:"red"`
	Green   int     `json:"green" yaml:"green"`
	Blue    int     `json:"blue" yaml:"blue"`
	Opacity float32 `json:"opacity" yaml:"opacity"`
}

// Default styling applied to newly created leaves
var (
	DefaultFill        = Color{Red: 0, Green: 0, Blue: 0, Opacity: 1}
	DefaultStroke      = Color{Red: 0, Green: 0, Blue: 0, Opacity: 1}
	DefaultStrokeWidth = 1
)

// Object is a single node of the document tree.
// Leaves (circle, rectangle, path) never have children.
// Groups carry optional styling inherited by their children.
type Object struct {
	Type Kind   `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`

	// Geometry
	Pos    Vec2          `json:"pos" yaml:"pos"`
	Radius int           `json:"radius,omitempty" yaml:"radius,omitempty"`
	Width  int           `json:"width,omitempty" yaml:"width,omitempty"`
	Height int           `json:"height,omitempty" yaml:"height,omitempty"`
	Points []PathCommand `json:"points,omitempty" yaml:"points,omitempty"`

	// Style (nil on groups = inherit)
	Fill        *Color  `json:"fill,omitempty" yaml:"fill,omitempty"`
	Stroke      *Color  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth *int    `json:"stroke_width,omitempty" yaml:"stroke_width,omitempty"`
	Opacity     float32 `json:"opacity,omitempty" yaml:"opacity,omitempty"`

	Children []*Object `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsGroup reports whether the object can own children
func (o *Object) IsGroup() bool {
	return o.Type == KindGroup
}

// Clone returns a deep copy of the object and its subtree
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	if o.Points != nil {
		c.Points = make([]PathCommand, len(o.Points))
		for i, pt := range o.Points {
			c.Points[i] = pt.Clone()
		}
	}
	if o.Fill != nil {
		fill := *o.Fill
		c.Fill = &fill
	}
	if o.Stroke != nil {
		stroke := *o.Stroke
		c.Stroke = &stroke
	}
	if o.StrokeWidth != nil {
		w := *o.StrokeWidth
		c.StrokeWidth = &w
	}
	if o.Children != nil {
		c.Children = make([]*Object, len(o.Children))
		for i, child := range o.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Tree is a snapshot of a whole document: the ordered children of the root
type Tree struct {
	Children []*Object `json:"children" yaml:"children"`
}

// Clone returns a deep copy of the tree
func (t *Tree) Clone() *Tree {
	if t == nil {
		return &Tree{Children: []*Object{}}
	}
	out := &Tree{Children: make([]*Object, len(t.Children))}
	for i, child := range t.Children {
		out.Children[i] = child.Clone()
	}
	return out
}

// Counts returns the number of leaves and groups in the tree
func (t *Tree) Counts() (leaves, groups int) {
	var walk func(objs []*Object)
	walk = func(objs []*Object) {
		for _, o := range objs {
			if o.IsGroup() {
				groups++
				walk(o.Children)
				continue
			}
			leaves++
		}
	}
	if t != nil {
		walk(t.Children)
	}
	return leaves, groups
}

// GroupDepth returns the deepest group nesting in the tree; 0 when there are no groups
func (t *Tree) GroupDepth() int {
	var walk func(objs []*Object, depth int) int
	walk = func(objs []*Object, depth int) int {
		deepest := depth
		for _, o := range objs {
			if o.IsGroup() {
				if d := walk(o.Children, depth+1); d > deepest {
					deepest = d
				}
			}
		}
		return deepest
	}
	if t == nil {
		return 0
	}
	return walk(t.Children, 0)
}
