package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/cwbudde/rvegen/internal/pack"
)

func testResult() *pack.Result {
	return &pack.Result{
		Rect: pack.Rect{Lx: 10, Ly: 10},
		Placed: []pack.PlacedCircle{
			{Circle: pack.Circle{X: 5, Y: 5, R: 2}},
			{Circle: pack.Circle{X: 0.5, Y: 5, R: 1}},
			{Circle: pack.Circle{X: 10.5, Y: 5, R: 1}, Image: true},
		},
	}
}

func TestRenderDimensions(t *testing.T) {
	img := Render(testResult(), 10)

	bounds := img.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Fatalf("Expected 100x100 image at scale 10, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderFillsCircleInterior(t *testing.T) {
	img := Render(testResult(), 10)

	// Center of the primary circle at (5,5): pixel (50, 50).
	if got := img.NRGBAAt(50, 50); got != primaryCol {
		t.Errorf("Circle center should be filled, got %+v", got)
	}

	// (8, 8) in model space is outside every circle: pixel (80, 20).
	if got := img.NRGBAAt(80, 20); got != background {
		t.Errorf("Empty region should stay white, got %+v", got)
	}
}

func TestRenderDistinguishesImages(t *testing.T) {
	img := Render(testResult(), 10)

	// The image circle at x=10.5 pokes into the right side of the
	// canvas around pixel (99, 50); its fill differs from primaries.
	if got := img.NRGBAAt(98, 50); got != imageCol {
		t.Errorf("Periodic image should use the image fill, got %+v", got)
	}
}

func TestRenderDefaultScale(t *testing.T) {
	img := Render(testResult(), 0)
	if img.Bounds().Dx() != 10*DefaultScale {
		t.Errorf("Zero scale should fall back to DefaultScale, got width %d", img.Bounds().Dx())
	}
}

func TestWritePNGProducesDecodableImage(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testResult(), 4); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("PNG did not decode: %v", err)
	}
	if img.Bounds().Dx() != 40 {
		t.Errorf("Expected width 40, got %d", img.Bounds().Dx())
	}
}
