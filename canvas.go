package easel

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Image is an image-like resource such as a sprite sheet. *ebiten.Image and
// every image.Image satisfy it.
type Image interface {
	Bounds() image.Rectangle
}

// Canvas is the rendering target handed to content and animations. Drawing
// coordinates are logical units; the canvas applies its current scale.
type Canvas interface {
	// Size returns the backing store size in pixels.
	Size() (w, h int)
	// Resize replaces the backing store with one of the given pixel size.
	Resize(w, h int)
	// SetScale replaces the canvas transform with a uniform scale.
	SetScale(scale float64)
	// Clear fills the backing store with transparent black.
	Clear()
	// Fill fills the entire backing store with c.
	Fill(c Color)
	// DrawRegion draws the src sub-rectangle of sheet with its top-left corner
	// at (x, y) in logical units.
	DrawRegion(sheet Image, src image.Rectangle, x, y float64)
}

// ImageCanvas is a Canvas backed by an *ebiten.Image. It is the backing store
// the engine draws into and the host presents.
type ImageCanvas struct {
	image *ebiten.Image
	w, h  int
	scale float64

	// converted caches ebiten copies of non-ebiten sheets.
	converted map[Image]*ebiten.Image
}

// NewImageCanvas creates a backing store of the given pixel size.
func NewImageCanvas(w, h int) *ImageCanvas {
	return &ImageCanvas{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
		scale: 1,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (c *ImageCanvas) Image() *ebiten.Image {
	return c.image
}

// Size returns the backing store size in pixels.
func (c *ImageCanvas) Size() (w, h int) {
	return c.w, c.h
}

// Scale returns the current logical-to-pixel scale.
func (c *ImageCanvas) Scale() float64 {
	return c.scale
}

// Resize deallocates the old image and creates a new one at the given
// dimensions. Resizing to the current size keeps the existing image.
func (c *ImageCanvas) Resize(w, h int) {
	if c.image != nil && w == c.w && h == c.h {
		return
	}
	if c.image != nil {
		c.image.Deallocate()
	}
	c.image = ebiten.NewImage(w, h)
	c.w = w
	c.h = h
}

// SetScale replaces the canvas transform with a uniform scale.
func (c *ImageCanvas) SetScale(scale float64) {
	c.scale = scale
}

// Clear fills the canvas with transparent black.
func (c *ImageCanvas) Clear() {
	c.image.Clear()
}

// Fill fills the entire canvas with the given color.
func (c *ImageCanvas) Fill(col Color) {
	c.image.Fill(col.toRGBA())
}

// DrawRegion draws the src sub-rectangle of sheet at (x, y) in logical units.
func (c *ImageCanvas) DrawRegion(sheet Image, src image.Rectangle, x, y float64) {
	img := c.ebitenImage(sheet)
	if img == nil {
		return
	}
	sub := img.SubImage(src).(*ebiten.Image)

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(x, y)
	op.GeoM.Scale(c.scale, c.scale)
	c.image.DrawImage(sub, &op)
}

// DebugText prints msg at pixel position (x, y), ignoring the canvas scale.
func (c *ImageCanvas) DebugText(msg string, x, y int) {
	ebitenutil.DebugPrintAt(c.image, msg, x, y)
}

// ReadPixels copies the backing store into dst as premultiplied RGBA.
func (c *ImageCanvas) ReadPixels(dst []byte) {
	c.image.ReadPixels(dst)
}

// Dispose deallocates the underlying image. The canvas should not be used
// after calling Dispose.
func (c *ImageCanvas) Dispose() {
	if c.image != nil {
		c.image.Deallocate()
		c.image = nil
	}
	for _, img := range c.converted {
		img.Deallocate()
	}
	c.converted = nil
}

// ebitenImage resolves sheet to an *ebiten.Image, converting and caching
// plain image.Image values on first use.
func (c *ImageCanvas) ebitenImage(sheet Image) *ebiten.Image {
	switch s := sheet.(type) {
	case *ebiten.Image:
		return s
	case image.Image:
		if img, ok := c.converted[sheet]; ok {
			return img
		}
		if c.converted == nil {
			c.converted = make(map[Image]*ebiten.Image)
		}
		img := ebiten.NewImageFromImage(s)
		c.converted[sheet] = img
		return img
	default:
		return nil
	}
}

// debugTexter is implemented by canvases that can print debug text.
type debugTexter interface {
	DebugText(msg string, x, y int)
}

// pixelReader is implemented by canvases whose pixels can be read back.
type pixelReader interface {
	Size() (w, h int)
	ReadPixels(dst []byte)
}
