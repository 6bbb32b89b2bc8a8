package easel

import (
	"fmt"
	"math"
)

// ViewportTransform describes how the logical canvas is fitted into its
// container. It is a value: a resize produces a new transform that replaces
// the old one wholesale.
type ViewportTransform struct {
	// Scale maps logical units to container units. It is always the smaller
	// of the two axis-fit ratios, so content is letterboxed, never stretched.
	Scale float64
	// CanvasPixelWidth and CanvasPixelHeight are the backing store size in
	// physical pixels (display size times pixel density).
	CanvasPixelWidth, CanvasPixelHeight int
	// DisplayWidth and DisplayHeight are the on-screen size of the canvas in
	// container units, unscaled by pixel density.
	DisplayWidth, DisplayHeight float64
	// PixelDensity is the device pixel density the transform was fitted for.
	PixelDensity float64
	// Bounds is the fitted canvas rectangle within the container, centered on
	// both axes.
	Bounds Rect
}

// RenderScale returns the factor that maps logical units to backing store
// pixels.
func (t ViewportTransform) RenderScale() float64 {
	return t.Scale * t.PixelDensity
}

// ContainerToLogical converts a point in container coordinates to logical
// canvas coordinates. ok is false when the point falls in the letterbox.
func (t ViewportTransform) ContainerToLogical(x, y float64) (lx, ly float64, ok bool) {
	if t.Scale <= 0 || !t.Bounds.Contains(x, y) {
		return 0, 0, false
	}
	return (x - t.Bounds.X) / t.Scale, (y - t.Bounds.Y) / t.Scale, true
}

// FitViewport fits a logical design size into a container without distortion.
// It is a pure function of its inputs.
//
// Non-positive container dimensions or pixel density return
// ErrInvalidViewport; a non-positive logical size returns
// ErrInvalidConfiguration.
func FitViewport(logical, container Size, pixelDensity float64) (ViewportTransform, error) {
	if !logical.positive() {
		return ViewportTransform{}, fmt.Errorf("%w: logical size %vx%v", ErrInvalidConfiguration, logical.Width, logical.Height)
	}
	if !container.positive() {
		return ViewportTransform{}, fmt.Errorf("%w: container size %vx%v", ErrInvalidViewport, container.Width, container.Height)
	}
	if !finitePositive(pixelDensity) {
		return ViewportTransform{}, fmt.Errorf("%w: pixel density %v", ErrInvalidViewport, pixelDensity)
	}

	containerRatio := container.Width / container.Height
	logicalRatio := logical.Width / logical.Height

	// The products are formed before dividing so that integral inputs with
	// matching ratios land exactly on the container edge.
	var fitW, fitH float64
	if containerRatio > logicalRatio {
		fitH = container.Height
		fitW = math.Min(math.Floor(container.Height*logical.Width/logical.Height), container.Width)
	} else {
		fitW = container.Width
		fitH = math.Min(math.Floor(container.Width*logical.Height/logical.Width), container.Height)
	}

	scale := math.Min(container.Width/logical.Width, container.Height/logical.Height)

	return ViewportTransform{
		Scale:             scale,
		CanvasPixelWidth:  int(math.Round(fitW * pixelDensity)),
		CanvasPixelHeight: int(math.Round(fitH * pixelDensity)),
		DisplayWidth:      fitW,
		DisplayHeight:     fitH,
		PixelDensity:      pixelDensity,
		Bounds: Rect{
			X:      (container.Width - fitW) / 2,
			Y:      (container.Height - fitH) / 2,
			Width:  fitW,
			Height: fitH,
		},
	}, nil
}
