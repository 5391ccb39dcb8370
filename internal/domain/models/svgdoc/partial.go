package svgdoc

// Partial holds optional field edits for an object.
// Nil fields are left untouched; fields that do not apply to the
// object's kind are ignored.
type Partial struct {
	Pos         *Vec2         `json:"pos,omitempty"`
	Radius      *int          `json:"radius,omitempty"`
	Width       *int          `json:"width,omitempty"`
	Height      *int          `json:"height,omitempty"`
	Fill        *Color        `json:"fill,omitempty"`
	Stroke      *Color        `json:"stroke,omitempty"`
	StrokeWidth *int          `json:"stroke_width,omitempty"`
	Opacity     *float32      `json:"opacity,omitempty"`
	Points      []PathCommand `json:"points,omitempty"`
}

// IsEmpty reports whether the partial carries no edits
func (p *Partial) IsEmpty() bool {
	return p.Pos == nil && p.Radius == nil && p.Width == nil && p.Height == nil &&
		p.Fill == nil && p.Stroke == nil && p.StrokeWidth == nil &&
		p.Opacity == nil && p.Points == nil
}

// Apply writes the partial onto obj and reports whether anything changed
func (p *Partial) Apply(obj *Object) bool {
	applied := false
	if p.Pos != nil {
		obj.Pos = *p.Pos
		applied = true
	}
	if p.Fill != nil {
		fill := *p.Fill
		obj.Fill = &fill
		applied = true
	}
	if p.Stroke != nil {
		stroke := *p.Stroke
		obj.Stroke = &stroke
		applied = true
	}
	if p.StrokeWidth != nil {
		w := *p.StrokeWidth
		obj.StrokeWidth = &w
		applied = true
	}

	switch obj.Type {
	case KindCircle:
		if p.Radius != nil {
			obj.Radius = *p.Radius
			applied = true
		}
	case KindRectangle:
		if p.Width != nil {
			obj.Width = *p.Width
			applied = true
		}
		if p.Height != nil {
			obj.Height = *p.Height
			applied = true
		}
	case KindPath:
		if p.Points != nil {
			obj.Points = make([]PathCommand, len(p.Points))
			for i, pt := range p.Points {
				obj.Points[i] = pt.Clone()
			}
			applied = true
		}
	}

	if obj.Type != KindGroup && p.Opacity != nil {
		obj.Opacity = *p.Opacity
		applied = true
	}

	return applied
}
