package easel

import (
	"errors"
	"fmt"
	"image"
)

// manualClock is a Clock that only moves when told to.
type manualClock struct {
	now float64
}

func (c *manualClock) Now() float64 { return c.now }

// recordingCanvas is a Canvas that records calls instead of drawing.
type recordingCanvas struct {
	w, h   int
	scale  float64
	calls  []string
	draws  []drawCall
	fills  []Color
	resize [][2]int
}

type drawCall struct {
	sheet Image
	src   image.Rectangle
	x, y  float64
	scale float64
}

func newRecordingCanvas(w, h int) *recordingCanvas {
	return &recordingCanvas{w: w, h: h, scale: 1}
}

func (c *recordingCanvas) Size() (int, int) { return c.w, c.h }

func (c *recordingCanvas) Resize(w, h int) {
	c.w, c.h = w, h
	c.resize = append(c.resize, [2]int{w, h})
	c.calls = append(c.calls, "resize")
}

func (c *recordingCanvas) SetScale(scale float64) {
	c.scale = scale
	c.calls = append(c.calls, fmt.Sprintf("scale %g", scale))
}

func (c *recordingCanvas) Clear() { c.calls = append(c.calls, "clear") }

func (c *recordingCanvas) Fill(col Color) {
	c.fills = append(c.fills, col)
	c.calls = append(c.calls, "fill")
}

func (c *recordingCanvas) DrawRegion(sheet Image, src image.Rectangle, x, y float64) {
	c.draws = append(c.draws, drawCall{sheet: sheet, src: src, x: x, y: y, scale: c.scale})
	c.calls = append(c.calls, "draw")
}

// testContent is Content that records lifecycle calls and can be told to fail.
type testContent struct {
	inits, updates, drawsN int
	deltas                 []float64
	updateErr, drawErr     error
	initErr                error
	onUpdate               func(ctx *Context, delta float64)
	onDraw                 func(ctx *Context)
}

func (c *testContent) Init(ctx *Context) error {
	c.inits++
	return c.initErr
}

func (c *testContent) Update(ctx *Context, delta float64) error {
	c.updates++
	c.deltas = append(c.deltas, delta)
	if c.onUpdate != nil {
		c.onUpdate(ctx, delta)
	}
	return c.updateErr
}

func (c *testContent) Draw(ctx *Context) error {
	c.drawsN++
	if c.onDraw != nil {
		c.onDraw(ctx)
	}
	return c.drawErr
}

// listeningContent adds resize and key callbacks to testContent.
type listeningContent struct {
	testContent
	resizes []ResizeEvent
	keys    []string
}

func (c *listeningContent) Resize(ctx *Context, ev ResizeEvent) {
	c.resizes = append(c.resizes, ev)
}

func (c *listeningContent) KeyDown(ctx *Context, code string, ev KeyEvent) {
	c.keys = append(c.keys, "down "+code)
}

func (c *listeningContent) KeyUp(ctx *Context, code string, ev KeyEvent) {
	c.keys = append(c.keys, "up "+code)
}

var errBoom = errors.New("boom")

// newTestEngine builds an engine on a manual clock, FrameTicks and a
// recording canvas.
func newTestEngine(cfg Config, content Content) (*Engine, *manualClock, *FrameTicks, *recordingCanvas, error) {
	clock := &manualClock{}
	ticks := &FrameTicks{}
	var canvas *recordingCanvas
	e, err := New(cfg, content,
		WithClock(clock),
		WithTickSource(ticks),
		WithCanvas(func(w, h int) Canvas {
			canvas = newRecordingCanvas(w, h)
			return canvas
		}),
		WithLogOutput(discard{}),
	)
	return e, clock, ticks, canvas, err
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// sheet returns an in-memory sprite sheet of the given size.
func sheet(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
