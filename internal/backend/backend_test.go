package backend

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rvegen/internal/pack"
)

func TestClassifyEdge(t *testing.T) {
	rect := pack.Rect{Lx: 10, Ly: 4}

	cases := []struct {
		name   string
		x, y   float64
		group  EdgeGroup
		onEdge bool
	}{
		{"bottom midpoint", 5, 0, EdgeBottom, true},
		{"right midpoint", 10, 2, EdgeRight, true},
		{"top midpoint", 5, 4, EdgeTop, true},
		{"left midpoint", 0, 2, EdgeLeft, true},
		{"within tolerance", 1e-7, 2, EdgeLeft, true},
		{"outside tolerance", 1e-5, 2, 0, false},
		{"interior", 5, 2, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			group, ok := ClassifyEdge(tc.x, tc.y, rect)
			assert.Equal(t, tc.onEdge, ok)
			if tc.onEdge {
				assert.Equal(t, tc.group, group)
			}
		})
	}
}

func TestEdgeGroupNamesAndTags(t *testing.T) {
	assert.Equal(t, "Bottom", EdgeBottom.String())
	assert.Equal(t, "Right", EdgeRight.String())
	assert.Equal(t, "Top", EdgeTop.String())
	assert.Equal(t, "Left", EdgeLeft.String())

	// Tag numbering is part of the downstream FEM contract.
	assert.Equal(t, 1, int(EdgeBottom))
	assert.Equal(t, 2, int(EdgeRight))
	assert.Equal(t, 3, int(EdgeTop))
	assert.Equal(t, 4, int(EdgeLeft))
}

func TestNewModelSkipsDegenerateCircles(t *testing.T) {
	rect := pack.Rect{Lx: 10, Ly: 10}
	circles := []pack.Circle{
		{X: 2, Y: 2, R: 1},
		{X: math.NaN(), Y: 2, R: 1},
		{X: 3, Y: 3, R: 0},
		{X: 4, Y: 4, R: -1},
		{X: math.Inf(1), Y: 1, R: 1},
		{X: 8, Y: 8, R: 0.5},
	}

	m, err := NewModel(rect, circles, 0.25)
	require.NoError(t, err)

	assert.Len(t, m.Circles, 2, "valid circles survive")
	require.Len(t, m.Skipped, 4, "degenerate circles are skipped, not fatal")

	// Skip records keep the original index and the reason.
	assert.Equal(t, 1, m.Skipped[0].Index)
	assert.Contains(t, m.Skipped[0].Error(), "NaN")
	assert.Equal(t, 2, m.Skipped[1].Index)
	assert.Contains(t, m.Skipped[1].Error(), "radius")
}

func TestNewModelDefaultsMeshSize(t *testing.T) {
	m, err := NewModel(pack.Rect{Lx: 10, Ly: 10}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMeshSize, m.MeshSize)
}

func TestNewModelRejectsDegenerateRect(t *testing.T) {
	_, err := NewModel(pack.Rect{Lx: 0, Ly: 10}, nil, 0.5)
	assert.Error(t, err)
}

func TestGmshScriptContents(t *testing.T) {
	m, err := NewModel(pack.Rect{Lx: 20, Ly: 20}, []pack.Circle{
		{X: 2, Y: 3, R: 1},
		{X: 10, Y: 10, R: 1.5},
	}, 0.5)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, GmshBackend{}.Write(m, &sb))
	script := sb.String()

	assert.Contains(t, script, `SetFactory("OpenCASCADE");`)
	assert.Contains(t, script, "Mesh.CharacteristicLengthMax = 0.5;")
	assert.Contains(t, script, "Rectangle(1) = {0, 0, 0, 20, 20};")
	assert.Contains(t, script, "Disk(2) = {2, 3, 0, 1, 1};")
	assert.Contains(t, script, "Disk(3) = {10, 10, 0, 1.5, 1.5};")
	assert.Contains(t, script, "BooleanFragments{ Surface{1}; Delete; }{ Surface{2:3}; Delete; }")
	assert.Contains(t, script, `Physical Curve("Bottom", 1) = bottom();`)
	assert.Contains(t, script, `Physical Curve("Right", 2) = right();`)
	assert.Contains(t, script, `Physical Curve("Top", 3) = top();`)
	assert.Contains(t, script, `Physical Curve("Left", 4) = left();`)
	assert.Contains(t, script, `Physical Surface("Circles", 1) = circles();`)
	assert.Contains(t, script, `Physical Surface("Background", 2) = background();`)
}

func TestGmshScriptWithoutCircles(t *testing.T) {
	m, err := NewModel(pack.Rect{Lx: 5, Ly: 5}, nil, 0.5)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, GmshBackend{}.Write(m, &sb))

	// No disks means nothing to fragment against.
	assert.NotContains(t, sb.String(), "BooleanFragments")
	assert.Contains(t, sb.String(), `Physical Surface("Background", 2)`)
}

func TestGmshExportAtomic(t *testing.T) {
	m, err := NewModel(pack.Rect{Lx: 10, Ly: 10}, []pack.Circle{{X: 5, Y: 5, R: 1}}, 0.5)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "model.geo")
	require.NoError(t, GmshBackend{}.Export(m, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not survive a successful export")
}

func TestDXFExportWritesDrawing(t *testing.T) {
	m, err := NewModel(pack.Rect{Lx: 10, Ly: 10}, []pack.Circle{
		{X: 2, Y: 2, R: 1},
		{X: 7, Y: 7, R: 1.5},
	}, 0.5)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "geometry.dxf")
	require.NoError(t, DXFBackend{}.Export(m, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	// Layer names follow the physical-group names; entities land in
	// the ENTITIES section.
	assert.Contains(t, text, "Bottom")
	assert.Contains(t, text, "Right")
	assert.Contains(t, text, "Top")
	assert.Contains(t, text, "Left")
	assert.Contains(t, text, "Circles")
	assert.Contains(t, text, "CIRCLE")
	assert.Contains(t, text, "LINE")
}

func TestForName(t *testing.T) {
	b, err := ForName("gmsh")
	require.NoError(t, err)
	assert.Equal(t, "geo", b.Ext())

	b, err = ForName("dxf")
	require.NoError(t, err)
	assert.Equal(t, "dxf", b.Ext())

	_, err = ForName("step")
	assert.Error(t, err)
}
