package backend

import (
	"fmt"
	"io"
)

// GmshBackend writes a gmsh .geo script: the cell rectangle and every
// circle as OpenCASCADE surfaces, a boolean fragmentation of the cell
// against the disks, and the physical groups the FEM setup expects
// (Bottom/Right/Top/Left curves, Circles/Background surfaces). Mesh
// generation itself is gmsh's job:
//
//	gmsh model.geo -2 -o model.msh
type GmshBackend struct{}

func (GmshBackend) Name() string { return "gmsh" }

func (GmshBackend) Ext() string { return "geo" }

// Export writes the .geo script atomically.
func (b GmshBackend) Export(m *Model, path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		return b.Write(m, w)
	})
}

// Write emits the .geo script to w.
func (GmshBackend) Write(m *Model, w io.Writer) error {
	p := &geoPrinter{w: w}

	p.printf("SetFactory(\"OpenCASCADE\");\n")
	p.printf("Mesh.CharacteristicLengthMax = %g;\n\n", m.MeshSize)

	p.printf("Rectangle(1) = {0, 0, 0, %g, %g};\n", m.Rect.Lx, m.Rect.Ly)
	for i, c := range m.Circles {
		p.printf("Disk(%d) = {%g, %g, 0, %g, %g};\n", i+2, c.X, c.Y, c.R, c.R)
	}

	if n := len(m.Circles); n > 0 {
		p.printf("\nBooleanFragments{ Surface{1}; Delete; }{ Surface{2:%d}; Delete; }\n", n+1)
	}

	// Boundary-edge groups are selected geometrically after the
	// fragmentation renumbers everything. The tolerance matches
	// ClassifyEdge.
	p.printf("\ntol = %g;\n", EdgeTol)
	p.printf("bottom() = Curve In BoundingBox{-tol, -tol, -tol, %g+tol, tol, tol};\n", m.Rect.Lx)
	p.printf("right() = Curve In BoundingBox{%g-tol, -tol, -tol, %g+tol, %g+tol, tol};\n", m.Rect.Lx, m.Rect.Lx, m.Rect.Ly)
	p.printf("top() = Curve In BoundingBox{-tol, %g-tol, -tol, %g+tol, %g+tol, tol};\n", m.Rect.Ly, m.Rect.Lx, m.Rect.Ly)
	p.printf("left() = Curve In BoundingBox{-tol, -tol, -tol, tol, %g+tol, tol};\n", m.Rect.Ly)
	p.printf("Physical Curve(\"%s\", %d) = bottom();\n", EdgeBottom, EdgeBottom)
	p.printf("Physical Curve(\"%s\", %d) = right();\n", EdgeRight, EdgeRight)
	p.printf("Physical Curve(\"%s\", %d) = top();\n", EdgeTop, EdgeTop)
	p.printf("Physical Curve(\"%s\", %d) = left();\n", EdgeLeft, EdgeLeft)

	p.printf("\ncircles() = {};\n")
	for _, c := range m.Circles {
		p.printf("circles() += Surface In BoundingBox{%g-tol, %g-tol, -tol, %g+tol, %g+tol, tol};\n",
			c.X-c.R, c.Y-c.R, c.X+c.R, c.Y+c.R)
	}
	p.printf("Physical Surface(\"Circles\", %d) = circles();\n", SurfaceCircles)
	p.printf("background() = Surface \"*\";\n")
	p.printf("background() -= circles();\n")
	p.printf("Physical Surface(\"Background\", %d) = background();\n", SurfaceBackground)

	return p.err
}

// geoPrinter collects the first write error so every line does not
// need its own check.
type geoPrinter struct {
	w   io.Writer
	err error
}

func (p *geoPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
