// Package pack implements periodic random circle packing of a
// rectangular cell. Circles are placed by rejection sampling under
// periodic boundary conditions: a circle straddling a cell edge is
// duplicated on the opposite side so the cell tiles seamlessly.
package pack

import "math"

// Circle is a disk given by its center and radius.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Area returns the disk area pi*r^2.
func (c Circle) Area() float64 {
	return math.Pi * c.R * c.R
}

// Overlaps reports whether two circles overlap. Circles touching at
// exactly one point (d == r1+r2) do not overlap.
func (c Circle) Overlaps(o Circle) bool {
	d := math.Hypot(o.X-c.X, o.Y-c.Y)
	return d < c.R+o.R
}

// Rect is the primary cell [0,Lx] x [0,Ly].
type Rect struct {
	Lx float64 `json:"lx"`
	Ly float64 `json:"ly"`
}

// Area returns Lx*Ly.
func (r Rect) Area() float64 {
	return r.Lx * r.Ly
}

// Validate checks the cell dimensions.
func (r Rect) Validate() error {
	if r.Lx <= 0 {
		return &ConfigError{Field: "Lx", Reason: "must be positive"}
	}
	if r.Ly <= 0 {
		return &ConfigError{Field: "Ly", Reason: "must be positive"}
	}
	return nil
}

// Images returns the periodic positions of c: the primary position
// first, followed by edge images (left, right, bottom, top order) and
// corner images for candidates straddling two edges at once. A circle
// never produces more than 3 images.
func (r Rect) Images(c Circle) []Circle {
	out := []Circle{c}

	left := c.X-c.R < 0
	right := c.X+c.R > r.Lx
	bottom := c.Y-c.R < 0
	top := c.Y+c.R > r.Ly

	if left {
		out = append(out, Circle{X: c.X + r.Lx, Y: c.Y, R: c.R})
	}
	if right {
		out = append(out, Circle{X: c.X - r.Lx, Y: c.Y, R: c.R})
	}
	if bottom {
		out = append(out, Circle{X: c.X, Y: c.Y + r.Ly, R: c.R})
	}
	if top {
		out = append(out, Circle{X: c.X, Y: c.Y - r.Ly, R: c.R})
	}

	if left && bottom {
		out = append(out, Circle{X: c.X + r.Lx, Y: c.Y + r.Ly, R: c.R})
	}
	if right && bottom {
		out = append(out, Circle{X: c.X - r.Lx, Y: c.Y + r.Ly, R: c.R})
	}
	if left && top {
		out = append(out, Circle{X: c.X + r.Lx, Y: c.Y - r.Ly, R: c.R})
	}
	if right && top {
		out = append(out, Circle{X: c.X - r.Lx, Y: c.Y - r.Ly, R: c.R})
	}

	return out
}

// ContainedFraction approximates the fraction of the circle's area
// lying inside the cell by clipping the circle's bounding box against
// the cell. This deliberately overestimates the true circular-segment
// overlap; the approximation is part of the placement contract and
// must not be replaced with an exact intersection.
func (r Rect) ContainedFraction(c Circle) float64 {
	xOverlap := math.Max(0, math.Min(c.X+c.R, r.Lx)-math.Max(c.X-c.R, 0))
	yOverlap := math.Max(0, math.Min(c.Y+c.R, r.Ly)-math.Max(c.Y-c.R, 0))
	return xOverlap * yOverlap / c.Area()
}

// EnoughInside reports whether the circle keeps at least minFraction
// of its (bounding-box approximated) area inside the cell.
func (r Rect) EnoughInside(c Circle, minFraction float64) bool {
	return r.ContainedFraction(c) >= minFraction
}

// PlacedCircle is one entry of the packing: either a primary circle or
// one of its periodic images.
type PlacedCircle struct {
	Circle
	Image bool `json:"image,omitempty"`
}

// Result holds the completed packing and its area statistics.
type Result struct {
	Rect Rect `json:"rect"`

	// Placed lists primaries and images in placement order: each
	// primary is immediately followed by its images.
	Placed []PlacedCircle `json:"placed"`

	// CircleArea sums pi*r^2 over primary circles only. Periodic
	// images are duplicates of mass already counted.
	CircleArea float64 `json:"circleArea"`

	// RectArea is the cell area Lx*Ly.
	RectArea float64 `json:"rectArea"`

	// AreaFraction is 100 * CircleArea / RectArea.
	AreaFraction float64 `json:"areaFraction"`

	// Attempts counts every candidate drawn, accepted or not.
	Attempts int `json:"attempts"`
}

// Primaries returns the primary circles in placement order.
func (res *Result) Primaries() []Circle {
	var out []Circle
	for _, p := range res.Placed {
		if !p.Image {
			out = append(out, p.Circle)
		}
	}
	return out
}

// Circles returns every stored circle (primaries and images) in
// placement order.
func (res *Result) Circles() []Circle {
	out := make([]Circle, len(res.Placed))
	for i, p := range res.Placed {
		out[i] = p.Circle
	}
	return out
}
