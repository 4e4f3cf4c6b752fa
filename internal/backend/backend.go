// Package backend hands a finished packing to an external geometry/
// meshing toolchain. Implementations share a validated export model;
// the toolchain itself (boolean fragmentation, mesh generation, mesh
// file formats) stays outside this repository.
package backend

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/rvegen/internal/pack"
)

// EdgeTol is the midpoint tolerance used to classify boundary edges.
const EdgeTol = 1e-6

// DefaultMeshSize is the characteristic mesh element size handed to
// the mesher when the configuration leaves it unset.
const DefaultMeshSize = 0.5

// Boundary-edge physical groups, tag numbers fixed by the downstream
// FEM setup.
type EdgeGroup int

const (
	EdgeBottom EdgeGroup = 1
	EdgeRight  EdgeGroup = 2
	EdgeTop    EdgeGroup = 3
	EdgeLeft   EdgeGroup = 4
)

// Surface physical group tags.
const (
	SurfaceCircles    = 1
	SurfaceBackground = 2
)

func (g EdgeGroup) String() string {
	switch g {
	case EdgeBottom:
		return "Bottom"
	case EdgeRight:
		return "Right"
	case EdgeTop:
		return "Top"
	case EdgeLeft:
		return "Left"
	}
	return "Unknown"
}

// ClassifyEdge buckets an edge by its midpoint: an edge belongs to a
// cell side when the midpoint coordinate matches that side within
// EdgeTol. Interior edges (circle arcs, fragment seams) match nothing.
func ClassifyEdge(midX, midY float64, rect pack.Rect) (EdgeGroup, bool) {
	switch {
	case math.Abs(midX) < EdgeTol:
		return EdgeLeft, true
	case math.Abs(midX-rect.Lx) < EdgeTol:
		return EdgeRight, true
	case math.Abs(midY) < EdgeTol:
		return EdgeBottom, true
	case math.Abs(midY-rect.Ly) < EdgeTol:
		return EdgeTop, true
	}
	return 0, false
}

// CircleError reports a circle the backend refuses to export.
type CircleError struct {
	Index  int
	Circle pack.Circle
	Reason string
}

func (e *CircleError) Error() string {
	return fmt.Sprintf("circle %d (x=%g y=%g r=%g): %s",
		e.Index, e.Circle.X, e.Circle.Y, e.Circle.R, e.Reason)
}

// Model is a validated geometry export. Circles that fail validation
// land in Skipped instead of aborting the export; they are excluded
// from surface tagging only, since area accounting happened upstream
// in the packing result.
type Model struct {
	Rect     pack.Rect
	Circles  []pack.Circle
	Skipped  []*CircleError
	MeshSize float64
}

// NewModel validates every circle individually and builds the export
// model. The returned model is usable even when some circles were
// skipped; a model with no valid circles is still a legal (pure
// background) geometry.
func NewModel(rect pack.Rect, circles []pack.Circle, meshSize float64) (*Model, error) {
	if err := rect.Validate(); err != nil {
		return nil, err
	}
	if meshSize <= 0 {
		meshSize = DefaultMeshSize
	}

	m := &Model{Rect: rect, MeshSize: meshSize}
	for i, c := range circles {
		if reason, ok := degenerate(c); ok {
			m.Skipped = append(m.Skipped, &CircleError{Index: i, Circle: c, Reason: reason})
			continue
		}
		m.Circles = append(m.Circles, c)
	}
	return m, nil
}

func degenerate(c pack.Circle) (string, bool) {
	switch {
	case math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsNaN(c.R):
		return "coordinate is NaN", true
	case math.IsInf(c.X, 0) || math.IsInf(c.Y, 0) || math.IsInf(c.R, 0):
		return "coordinate is infinite", true
	case c.R <= 0:
		return "radius must be positive", true
	}
	return "", false
}

// Backend writes an export model in one toolchain's input format.
type Backend interface {
	// Name identifies the backend (used for logging and file naming).
	Name() string

	// Ext is the file extension the backend's output conventionally
	// carries, without the dot.
	Ext() string

	// Export writes the model to path.
	Export(m *Model, path string) error
}

// writeAtomic writes through fn to path using the temp file + rename
// pattern so a crashed export never leaves a truncated file behind.
func writeAtomic(path string, fn func(w io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := fn(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close export file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename export file: %w", err)
	}
	return nil
}
