package backend

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// DXFBackend writes the packed geometry as a DXF drawing for CAD
// review: the four cell edges on one layer per physical group
// (assigned through the same midpoint classification the mesher
// contract uses) and every circle on a Circles layer.
type DXFBackend struct{}

func (DXFBackend) Name() string { return "dxf" }

func (DXFBackend) Ext() string { return "dxf" }

func (DXFBackend) Export(m *Model, path string) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	type edge struct {
		x1, y1, x2, y2 float64
	}
	rect := m.Rect
	edges := []edge{
		{0, 0, rect.Lx, 0},             // bottom
		{rect.Lx, 0, rect.Lx, rect.Ly}, // right
		{rect.Lx, rect.Ly, 0, rect.Ly}, // top
		{0, rect.Ly, 0, 0},             // left
	}

	layerColors := map[EdgeGroup]color.ColorNumber{
		EdgeBottom: color.Red,
		EdgeRight:  color.Green,
		EdgeTop:    color.Cyan,
		EdgeLeft:   color.Magenta,
	}

	for _, e := range edges {
		group, ok := ClassifyEdge((e.x1+e.x2)/2, (e.y1+e.y2)/2, rect)
		if !ok {
			return fmt.Errorf("cell edge (%g,%g)-(%g,%g) did not classify against its own cell",
				e.x1, e.y1, e.x2, e.y2)
		}
		if _, err := d.AddLayer(group.String(), layerColors[group], table.LT_CONTINUOUS, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", group, err)
		}
		if _, err := d.Line(e.x1, e.y1, 0, e.x2, e.y2, 0); err != nil {
			return fmt.Errorf("failed to draw %s edge: %w", group, err)
		}
	}

	if _, err := d.AddLayer("Circles", color.Yellow, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("failed to add circle layer: %w", err)
	}
	for i, c := range m.Circles {
		if _, err := d.Circle(c.X, c.Y, 0, c.R); err != nil {
			return fmt.Errorf("failed to draw circle %d: %w", i, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// backends in registration order.
var All = []Backend{GmshBackend{}, DXFBackend{}}

// ForName returns the backend matching name.
func ForName(name string) (Backend, error) {
	for _, b := range All {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unknown backend: %s", name)
}

// compile-time interface checks
var (
	_ Backend = GmshBackend{}
	_ Backend = DXFBackend{}
)
