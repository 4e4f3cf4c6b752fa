// Package preview rasterizes a packing to a PNG image for quick
// visual inspection of a generated cell.
package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/cwbudde/rvegen/internal/pack"
)

// DefaultScale is the default number of pixels per model unit.
const DefaultScale = 24

var (
	background = color.NRGBA{255, 255, 255, 255}
	primaryCol = color.NRGBA{70, 130, 180, 255}  // steel blue
	imageCol   = color.NRGBA{176, 196, 222, 255} // light steel blue
	borderCol  = color.NRGBA{0, 0, 0, 255}
)

// Render rasterizes the cell: filled disks for primaries, lighter
// fill for periodic images, black cell border. scale <= 0 falls back
// to DefaultScale. Image y points down, so model y is flipped.
func Render(res *pack.Result, scale float64) *image.NRGBA {
	if scale <= 0 {
		scale = DefaultScale
	}

	w := int(math.Ceil(res.Rect.Lx * scale))
	h := int(math.Ceil(res.Rect.Ly * scale))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, background)
		}
	}

	// Images first so overlapping primaries (tangent at wrap seams)
	// stay visible on top.
	for _, p := range res.Placed {
		if p.Image {
			renderCircle(img, p.Circle, res.Rect, scale, imageCol)
		}
	}
	for _, p := range res.Placed {
		if !p.Image {
			renderCircle(img, p.Circle, res.Rect, scale, primaryCol)
		}
	}

	for x := 0; x < w; x++ {
		img.SetNRGBA(x, 0, borderCol)
		img.SetNRGBA(x, h-1, borderCol)
	}
	for y := 0; y < h; y++ {
		img.SetNRGBA(0, y, borderCol)
		img.SetNRGBA(w-1, y, borderCol)
	}

	return img
}

// renderCircle fills the disk via a bounding-box scan.
func renderCircle(img *image.NRGBA, c pack.Circle, rect pack.Rect, scale float64, col color.NRGBA) {
	bounds := img.Bounds()

	cx := c.X * scale
	cy := (rect.Ly - c.Y) * scale
	r := c.R * scale

	minX := int(math.Max(0, math.Floor(cx-r)))
	maxX := int(math.Min(float64(bounds.Max.X-1), math.Ceil(cx+r)))
	minY := int(math.Max(0, math.Floor(cy-r)))
	maxY := int(math.Min(float64(bounds.Max.Y-1), math.Ceil(cy+r)))

	r2 := r * r
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}

// WritePNG encodes the rendered preview to w.
func WritePNG(w io.Writer, res *pack.Result, scale float64) error {
	return png.Encode(w, Render(res, scale))
}
